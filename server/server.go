package server

import (
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/jrsteele09/casnet-auth/access"
	"github.com/jrsteele09/casnet-auth/auth"
	"github.com/jrsteele09/casnet-auth/internal/config"
	"github.com/jrsteele09/casnet-auth/password"
	"github.com/jrsteele09/casnet-auth/principal"
	"github.com/jrsteele09/casnet-auth/ratelimit"
	"github.com/jrsteele09/casnet-auth/store"
	"github.com/jrsteele09/casnet-auth/token"
	"github.com/rs/zerolog/log"
)

type Server struct {
	env      string
	mux      *http.ServeMux
	routes   []string
	store    store.Store
	hasher   password.Hasher
	auth     *auth.Service
	resolver *auth.Resolver
	guard    *access.Guard
	limiter  ratelimit.Limiter
	validate *validator.Validate
}

type Option func(*Server)

// WithRateLimiter throttles POST /auth/login per client address.
func WithRateLimiter(limiter ratelimit.Limiter) Option {
	return func(s *Server) {
		s.limiter = limiter
	}
}

func New(cfg config.EnvConfig, st store.Store, hasher password.Hasher, tokens *token.Manager, options ...Option) (*Server, error) {
	principals := principal.NewStore(st.Users(), st.Memberships())

	authService, err := auth.NewService(st.Users(), hasher, tokens, principals)
	if err != nil {
		return nil, fmt.Errorf("[Server New] failed to create auth service: %w", err)
	}

	s := &Server{
		env:      cfg.GetEnv(),
		mux:      http.NewServeMux(),
		store:    st,
		hasher:   hasher,
		auth:     authService,
		resolver: auth.NewResolver(tokens, principals),
		guard:    access.NewGuard(),
		validate: newValidator(),
	}
	for _, opt := range options {
		opt(s)
	}

	s.initRoutes()
	s.logRoutes()

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) RegisterRouteHandler(pattern string, handler http.Handler) {
	s.routes = append(s.routes, pattern)
	s.mux.Handle(pattern, handler)
}

func (s *Server) RegisterRouteFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handler)
}

func (s *Server) logRoutes() {
	if s.env != config.EnvDevelopment {
		return // Skip logging in non-development environments
	}
	for _, route := range s.routes {
		parts := strings.SplitN(route, " ", 2)

		if len(parts) > 1 {
			logRoute(parts[0], parts[1])
		} else {
			logRoute("", parts[0])
		}
	}
}

func logRoute(method, path string) {
	var displayMethod string
	paddedMethod := fmt.Sprintf(" %-7s", method)
	if color, ok := methodColors[method]; ok {
		displayMethod = color + paddedMethod + ResetColor
	} else {
		displayMethod = Gray + paddedMethod + ResetColor
	}
	log.Info().Msgf("[%-19s] %s", displayMethod, path)
}

// newValidator reports field errors under their json names.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}
