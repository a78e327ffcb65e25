package guard

import (
	"sync"

	"github.com/rs/zerolog/log"
)

const maxRedirects = 8

// Route is one entry of the route table. Path is the first segment with a
// leading slash; "/" matches the empty path.
type Route struct {
	Path       string
	RedirectTo string
	CanMatch   func(auth AuthState, segments []string) Decision
}

// DefaultRoutes is the portal's route table.
var DefaultRoutes = []Route{
	{Path: "/", RedirectTo: HomePath},
	{Path: SignInPath},
	{Path: OrdersPath, CanMatch: AuthCanMatch},
	{Path: PaymentsPath, CanMatch: AuthCanMatch},
	{Path: UsersPath, CanMatch: AdminCanMatch},
}

// Navigator resolves navigation targets through the route table, evaluating
// guards afresh on every attempt.
type Navigator struct {
	auth   AuthState
	routes []Route

	lock      sync.Mutex
	current   string
	observers map[uint64]func(string)
	nextID    uint64
}

func NewNavigator(auth AuthState, routes []Route) *Navigator {
	if routes == nil {
		routes = DefaultRoutes
	}
	return &Navigator{
		auth:      auth,
		routes:    routes,
		observers: make(map[uint64]func(string)),
	}
}

// Navigate follows target through guards and redirects and returns where the
// navigation ended. Unknown paths fall back to HomePath.
func (n *Navigator) Navigate(target string) string {
	resolved := n.resolve(target)

	n.lock.Lock()
	n.current = resolved
	observers := make([]func(string), 0, len(n.observers))
	for _, fn := range n.observers {
		observers = append(observers, fn)
	}
	n.lock.Unlock()

	for _, fn := range observers {
		fn(resolved)
	}
	return resolved
}

func (n *Navigator) resolve(target string) string {
	for hop := 0; hop < maxRedirects; hop++ {
		segments := Segments(target)
		route, ok := n.match(segments)
		if !ok {
			log.Debug().Str("target", target).Msg("unknown route")
			target = HomePath
			continue
		}
		if route.RedirectTo != "" {
			target = route.RedirectTo
			continue
		}
		if route.CanMatch == nil {
			return target
		}
		d := route.CanMatch(n.auth, segments)
		if d.Allowed() {
			return target
		}
		log.Debug().Str("target", target).Stringer("outcome", d.Outcome).Str("redirect", d.Redirect).Msg("navigation redirected")
		target = d.Redirect
	}
	log.Warn().Str("target", target).Msg("too many redirects")
	return SignInPath
}

func (n *Navigator) match(segments []string) (Route, bool) {
	first := "/"
	if len(segments) > 0 {
		first = "/" + segments[0]
	}
	for _, r := range n.routes {
		if r.Path == first {
			return r, true
		}
	}
	return Route{}, false
}

// Current is the last resolved location, "" before the first navigation.
func (n *Navigator) Current() string {
	n.lock.Lock()
	defer n.lock.Unlock()
	return n.current
}

// Subscribe calls fn with every resolved location. The returned func removes it.
func (n *Navigator) Subscribe(fn func(location string)) (unsubscribe func()) {
	n.lock.Lock()
	defer n.lock.Unlock()
	n.nextID++
	id := n.nextID
	n.observers[id] = fn
	return func() {
		n.lock.Lock()
		defer n.lock.Unlock()
		delete(n.observers, id)
	}
}
