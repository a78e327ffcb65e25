// Package portal wires one explicitly constructed instance of every client
// component: session store, gateway client, authorizing transport, navigator
// and resource clients.
package portal

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/jrsteele09/go-order-portal/api"
	"github.com/jrsteele09/go-order-portal/authorizer"
	"github.com/jrsteele09/go-order-portal/gateway"
	"github.com/jrsteele09/go-order-portal/guard"
	"github.com/jrsteele09/go-order-portal/internal/config"
	"github.com/jrsteele09/go-order-portal/internal/errors"
	"github.com/jrsteele09/go-order-portal/orders"
	"github.com/jrsteele09/go-order-portal/pages"
	"github.com/jrsteele09/go-order-portal/payments"
	"github.com/jrsteele09/go-order-portal/session"
	"github.com/jrsteele09/go-order-portal/session/filerepo"
	"github.com/jrsteele09/go-order-portal/session/redisrepo"
	"github.com/jrsteele09/go-order-portal/session/repofake"
	"github.com/jrsteele09/go-order-portal/users"
	"github.com/rs/zerolog/log"
)

type Portal struct {
	Session   *session.Store
	Gateway   *gateway.Client
	Navigator *guard.Navigator
	Orders    *orders.Client
	Payments  *payments.Client
	Users     *users.Client

	closers []func() error
}

type options struct {
	gatewayURL string
	backend    string
	repo       session.Repo
	transport  http.RoundTripper
}

type Option func(*options)

// WithGatewayURL overrides API_GATEWAY_URL.
func WithGatewayURL(url string) Option {
	return func(o *options) { o.gatewayURL = url }
}

// WithSessionBackend overrides SESSION_BACKEND.
func WithSessionBackend(backend string) Option {
	return func(o *options) { o.backend = backend }
}

// WithRepo uses repo for the session instead of the configured backend.
func WithRepo(repo session.Repo) Option {
	return func(o *options) { o.repo = repo }
}

// WithTransport sets the network transport under the authorizer.
func WithTransport(rt http.RoundTripper) Option {
	return func(o *options) { o.transport = rt }
}

// New builds the portal from cfg. Close releases the session storage.
func New(ctx context.Context, cfg config.Config, opts ...Option) (*Portal, error) {
	o := options{
		gatewayURL: cfg.GetAPIGatewayURL(),
		backend:    cfg.GetSessionBackend(),
		transport:  http.DefaultTransport,
	}
	for _, opt := range opts {
		opt(&o)
	}

	p := &Portal{}
	repo := o.repo
	if repo == nil {
		var err error
		repo, err = p.openRepo(ctx, o.backend, cfg)
		if err != nil {
			return nil, err
		}
	}
	p.Session = session.NewStore(repo)

	timeout := cfg.GetRequestTimeout()
	baseURL := strings.TrimRight(o.gatewayURL, "/")
	plain := &http.Client{Transport: o.transport, Timeout: timeout}
	p.Gateway = gateway.New(api.NewClient(baseURL, plain)).WithTokenSource(p.Session)
	p.Navigator = guard.NewNavigator(p.Session, nil)

	tr := authorizer.New(o.transport, p.Session, p.Gateway)
	tr.OnReauthRequired = p.onReauthRequired
	authorized := api.NewClient(baseURL, tr.Client(timeout))

	p.Orders = orders.NewClient(authorized)
	p.Payments = payments.NewClient(authorized)
	p.Users = users.NewClient(authorized)

	log.Debug().Str("gateway", baseURL).Str("backend", o.backend).Msg("portal ready")
	return p, nil
}

func (p *Portal) openRepo(ctx context.Context, backend string, cfg config.StorageConfig) (session.Repo, error) {
	switch strings.ToLower(backend) {
	case config.BackendMemory:
		return repofake.NewFakeSessionRepo(), nil
	case config.BackendRedis:
		client, err := redisrepo.NewClient(ctx, cfg.GetRedisURL())
		if err != nil {
			return nil, fmt.Errorf("[portal.New] %w", err)
		}
		p.closers = append(p.closers, client.Close)
		return redisrepo.New(client, cfg.GetSessionRedisKey()), nil
	case config.BackendFile, "":
		return filerepo.New(cfg.GetSessionFile()), nil
	default:
		return nil, fmt.Errorf("[portal.New] %w: unknown session backend %q", errors.ErrValidation, backend)
	}
}

// onReauthRequired sends the navigator to sign-in, remembering where it was.
func (p *Portal) onReauthRequired(reason error) {
	current := p.Navigator.Current()
	target := guard.SignInPath
	if current != "" && !strings.HasPrefix(current, guard.SignInPath) {
		target = guard.SignInURL(current)
	}
	log.Info().Err(reason).Str("redirect", target).Msg("signing in again")
	p.Navigator.Navigate(target)
}

// Close releases the session storage.
func (p *Portal) Close() error {
	var firstErr error
	for _, c := range p.closers {
		if err := c(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (p *Portal) LoginPage(ctx context.Context, returnURL string) *pages.LoginPage {
	return pages.NewLoginPage(ctx, p.Gateway, p.Session, p.Navigator, returnURL)
}

func (p *Portal) RegisterPage(ctx context.Context) *pages.RegisterPage {
	return pages.NewRegisterPage(ctx, p.Gateway, p.Navigator)
}

// Visit navigates to target and reports whether the navigation landed there.
func (p *Portal) Visit(target string) (string, bool) {
	resolved := p.Navigator.Navigate(target)
	return resolved, guard.JoinSegments(guard.Segments(resolved)) == guard.JoinSegments(guard.Segments(target))
}

// Whoami asks the gateway who holds the stored access token and refreshes the
// session identity with the answer. A token the gateway rejects is refreshed
// once; if that fails the session is cleared.
func (p *Portal) Whoami(ctx context.Context) (*session.Identity, error) {
	access := p.Session.AccessToken()
	if access == "" {
		return nil, errors.ErrNotAuthenticated
	}

	v, err := p.Gateway.Validate(ctx, access)
	if errors.Is(err, errors.ErrInvalidToken) {
		v, err = p.refreshAndValidate(ctx)
	}
	if err != nil {
		if errors.Is(err, errors.ErrInvalidToken) || errors.Is(err, errors.ErrNoRefreshToken) {
			p.Session.Logout()
		}
		return nil, fmt.Errorf("[portal.Whoami] %w", err)
	}

	id := &session.Identity{Email: v.Email, Role: v.Role}
	if err := p.Session.SetIdentity(id); err != nil {
		return nil, fmt.Errorf("[portal.Whoami] %w", err)
	}
	return id, nil
}

func (p *Portal) refreshAndValidate(ctx context.Context) (*gateway.TokenValidation, error) {
	refresh := p.Session.RefreshToken()
	if refresh == "" {
		return nil, errors.ErrNoRefreshToken
	}
	tokens, err := p.Gateway.Refresh(ctx, refresh)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, errors.Wrapf(errors.ErrInvalidToken, "refresh failed: %v", err)
	}
	p.Session.SetTokens(tokens.AccessToken, tokens.RefreshToken)
	return p.Gateway.Validate(ctx, tokens.AccessToken)
}
