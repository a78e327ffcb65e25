// Package fakegateway is an in-process stand-in for the API gateway. It
// issues HS256 access tokens and opaque refresh tokens, validates them, and
// serves a few protected order, user and payment endpoints so the client can
// be exercised end to end without the real backend.
//
// Access tokens carry a generation claim; ExpireAccessTokens bumps the
// generation so every outstanding token is rejected with 401, which is how
// tests force the refresh path deterministically.
package fakegateway
