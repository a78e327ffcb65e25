package authorizer_test

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/jrsteele09/go-order-portal/api"
	"github.com/jrsteele09/go-order-portal/authorizer"
	"github.com/jrsteele09/go-order-portal/gateway"
	"github.com/jrsteele09/go-order-portal/internal/errors"
	"github.com/jrsteele09/go-order-portal/internal/fakegateway"
	"github.com/jrsteele09/go-order-portal/orders"
	"github.com/jrsteele09/go-order-portal/session"
	"github.com/jrsteele09/go-order-portal/session/repofake"
	"github.com/stretchr/testify/require"
)

type gatewayFixture struct {
	fake    *fakegateway.Server
	store   *session.Store
	orders  *orders.Client
	reauths int
}

func setupGatewayFixture(t *testing.T) *gatewayFixture {
	t.Helper()
	fake := fakegateway.New()
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	f := &gatewayFixture{fake: fake, store: session.NewStore(repofake.NewFakeSessionRepo())}
	gw := gateway.New(api.NewClient(srv.URL, srv.Client()))

	tr := authorizer.New(srv.Client().Transport, f.store, gw)
	tr.OnReauthRequired = func(error) { f.reauths++ }
	f.orders = orders.NewClient(api.NewClient(srv.URL, tr.Client(0)))

	tokens, err := gw.Login(context.Background(), fakegateway.UserEmail, fakegateway.UserPassword)
	require.NoError(t, err)
	f.store.SetTokens(tokens.AccessToken, tokens.RefreshToken)
	return f
}

func TestGateway_ExpiredTokenIsRefreshed(t *testing.T) {
	f := setupGatewayFixture(t)
	oldAccess, oldRefresh := f.store.AccessToken(), f.store.RefreshToken()

	f.fake.ExpireAccessTokens()
	page, err := f.orders.List(context.Background(), orders.ListParams{})
	require.NoError(t, err)
	require.Len(t, page.Content, 1)

	require.Equal(t, 1, f.fake.Requests(gateway.RefreshPath))
	require.Equal(t, 2, f.fake.Requests("/api/v1/orders"))
	require.NotEqual(t, oldAccess, f.store.AccessToken())
	require.NotEqual(t, oldRefresh, f.store.RefreshToken())
	require.Equal(t, []string{"Bearer " + oldAccess, "Bearer " + f.store.AccessToken()}, f.fake.Authorizations("/api/v1/orders"))
	require.Equal(t, []string{""}, f.fake.Authorizations(gateway.RefreshPath))
	require.Zero(t, f.reauths)
}

func TestGateway_FailedRefreshForcesReauth(t *testing.T) {
	f := setupGatewayFixture(t)

	f.fake.ExpireAccessTokens()
	f.fake.FailRefresh(true)
	_, err := f.orders.List(context.Background(), orders.ListParams{})
	require.ErrorIs(t, err, errors.ErrUnauthorized)

	require.Equal(t, 1, f.fake.Requests(gateway.RefreshPath))
	require.Equal(t, 1, f.fake.Requests("/api/v1/orders"))
	require.False(t, f.store.IsAuthenticated())
	require.Equal(t, 1, f.reauths)

	// logged out now: the next call goes out bare and does not refresh again
	_, err = f.orders.List(context.Background(), orders.ListParams{})
	require.ErrorIs(t, err, errors.ErrUnauthorized)
	require.Equal(t, 1, f.fake.Requests(gateway.RefreshPath))
	require.Equal(t, 2, f.reauths)
}
