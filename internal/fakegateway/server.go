package fakegateway

import (
	"crypto/rand"
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/jrsteele09/go-order-portal/api"
	"github.com/jrsteele09/go-order-portal/orders"
	"github.com/jrsteele09/go-order-portal/payments"
	"github.com/jrsteele09/go-order-portal/users"
	"github.com/rs/zerolog/log"
)

const issuer = "fake-gateway"

// Server is the fake gateway. It is safe for concurrent use.
type Server struct {
	mux       *http.ServeMux
	secret    []byte
	accessTTL time.Duration

	lock          sync.Mutex
	accounts      map[string]*account // email -> account
	refreshTokens map[string]string   // refresh token -> email
	generation    int
	failRefresh   bool
	nextUserID    int64
	orders        []*orders.Order
	payments      []*payments.Payment

	requests      map[string]int
	authorization map[string][]string
}

type Option func(*Server)

// WithAccessTTL sets the access token lifetime reported as expiresIn.
func WithAccessTTL(ttl time.Duration) Option {
	return func(s *Server) { s.accessTTL = ttl }
}

// WithSecret fixes the HS256 signing secret.
func WithSecret(secret []byte) Option {
	return func(s *Server) { s.secret = secret }
}

// New creates a gateway seeded with an admin, a user and one order each.
func New(opts ...Option) *Server {
	s := &Server{
		mux:           http.NewServeMux(),
		accessTTL:     15 * time.Minute,
		accounts:      make(map[string]*account),
		refreshTokens: make(map[string]string),
		requests:      make(map[string]int),
		authorization: make(map[string][]string),
	}
	for _, opt := range opts {
		opt(s)
	}
	if len(s.secret) == 0 {
		s.secret = make([]byte, 32)
		_, _ = rand.Read(s.secret)
	}

	admin := s.addAccount(users.User{Name: "Ada", Surname: "Admin", Email: AdminEmail, BirthDate: "1990-01-01", Role: users.RoleAdmin, Active: true}, AdminPassword)
	user := s.addAccount(users.User{Name: "Uma", Surname: "User", Email: UserEmail, BirthDate: "1995-05-05", Role: users.RoleUser, Active: true}, UserPassword)
	s.addOrder(admin, []orders.ItemRequest{{ItemID: 1, Quantity: 1}})
	s.addOrder(user, []orders.ItemRequest{{ItemID: 2, Quantity: 3}})

	s.initRoutes()
	return s
}

func (s *Server) initRoutes() {
	s.mux.HandleFunc("POST /api/v1/auth/login", s.loginHandler)
	s.mux.HandleFunc("POST /api/v1/auth/refresh", s.refreshHandler)
	s.mux.HandleFunc("POST /api/v1/auth/validate", s.validateHandler)
	s.mux.HandleFunc("POST /api/v1/auth/register", chainMiddleware(s.registerHandler, s.requireAuth))

	s.mux.HandleFunc("GET /api/v1/orders", chainMiddleware(s.listOrdersHandler, s.requireAuth))
	s.mux.HandleFunc("POST /api/v1/orders", chainMiddleware(s.createOrderHandler, s.requireAuth))
	s.mux.HandleFunc("GET /api/v1/orders/{id}", chainMiddleware(s.getOrderHandler, s.requireAuth))
	s.mux.HandleFunc("GET /api/v1/users", chainMiddleware(s.listUsersHandler, s.requireAuth, s.requireAdmin))
	s.mux.HandleFunc("GET /api/v1/payments/search", chainMiddleware(s.searchPaymentsHandler, s.requireAuth))
	s.mux.HandleFunc("POST /api/v1/payments", chainMiddleware(s.createPaymentHandler, s.requireAuth))
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.lock.Lock()
	s.requests[r.URL.Path]++
	s.authorization[r.URL.Path] = append(s.authorization[r.URL.Path], r.Header.Get("Authorization"))
	s.lock.Unlock()

	log.Debug().Str("method", r.Method).Str("path", r.URL.Path).Msg("fake gateway request")
	recoverMiddleware(s.mux.ServeHTTP)(w, r)
}

// ExpireAccessTokens invalidates every access token issued so far.
func (s *Server) ExpireAccessTokens() {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.generation++
}

// FailRefresh makes refresh answer HTTP 200 with success=false.
func (s *Server) FailRefresh(fail bool) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.failRefresh = fail
}

// Requests returns how many requests hit path.
func (s *Server) Requests(path string) int {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.requests[path]
}

// Authorizations returns the Authorization header of every request to path, in order.
func (s *Server) Authorizations(path string) []string {
	s.lock.Lock()
	defer s.lock.Unlock()
	return append([]string(nil), s.authorization[path]...)
}

func (s *Server) addAccount(u users.User, password string) *users.User {
	hash, err := hashPassword(password)
	if err != nil {
		panic(err)
	}
	s.nextUserID++
	u.ID = s.nextUserID
	u.CreatedAt = NowTimeFunc().UTC().Format(time.RFC3339)
	u.UpdatedAt = u.CreatedAt
	s.accounts[strings.ToLower(u.Email)] = &account{user: u, passwordHash: hash}
	return &s.accounts[strings.ToLower(u.Email)].user
}

func writeEnvelope[T any](w http.ResponseWriter, status int, success bool, message string, data T) {
	writeJSON(w, status, api.Envelope[T]{
		Success:   success,
		Message:   message,
		Data:      data,
		Timestamp: NowTimeFunc().UTC().Format(time.RFC3339),
	})
}

func writeFailure(w http.ResponseWriter, status int, message string) {
	writeEnvelope[any](w, status, false, message, nil)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Err(err).Msg("fake gateway encode failed")
	}
}
