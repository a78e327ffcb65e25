// Package api is the JSON transport shared by every client of the API gateway.
//
// Responses come in two shapes. Auth and payment endpoints wrap their payload
// in an Envelope and report failures with success=false, sometimes with HTTP
// 200, so Call branches on the envelope and not on the status alone. Order and
// user listings return a bare Page, decoded with Do.
//
// The package holds no credentials. Bearer tokens are attached by whatever
// http.RoundTripper the caller configured on the http.Client, normally
// authorizer.Transport.
package api
