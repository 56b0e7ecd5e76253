package api

import (
	"context"
	"net/http"
	"os"
	"strings"
	"sync"

	"golang.org/x/time/rate"

	"wavepick/internal/auth"
	"wavepick/internal/store"
	"wavepick/internal/wave"
)

type Server struct {
	Store  store.Store
	Auth   *auth.Verifier
	Broker EventBroker
	Seed   wave.SeedSolver

	limMu    sync.Mutex
	limiters map[string]*rate.Limiter
}

// NewServer creates a Server. If DATABASE_URL is unset, uses in-memory store.
func NewServer(seed wave.SeedSolver) (*Server, error) {
	dsn := os.Getenv("DATABASE_URL")
	var s store.Store
	if strings.TrimSpace(dsn) == "" {
		s = store.NewMemory()
	} else {
		sp, err := store.NewPostgres(dsn)
		if err != nil {
			return nil, err
		}
		// Run migrations (dev helper)
		if os.Getenv("DB_MIGRATE") != "false" {
			_ = sp.MigrateDir("db/migrations")
		}
		s = sp
	}
	// Broker selection
	var broker EventBroker
	if os.Getenv("REDIS_URL") != "" {
		if rb, err := NewRedisBroker(); err == nil {
			broker = rb
		} else {
			broker = NewBroker()
		}
	} else {
		broker = NewBroker()
	}
	return &Server{
		Store:    s,
		Auth:     auth.NewVerifierFromEnv(),
		Broker:   broker,
		Seed:     seed,
		limiters: map[string]*rate.Limiter{},
	}, nil
}

func (s *Server) withTenant(r *http.Request) (context.Context, string) {
	tenant := ""
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		if p, err := s.Auth.Verify(strings.TrimPrefix(h, "Bearer ")); err == nil {
			tenant = p.Tenant
		}
	}
	if tenant == "" {
		tenant = r.Header.Get("X-Tenant-Id")
	}
	if tenant == "" {
		tenant = "t_demo"
	}
	ctx := context.WithValue(r.Context(), ctxKeyTenant{}, tenant)
	return ctx, tenant
}

type ctxKeyTenant struct{}

// limiter returns the per-client rate limiter, keyed by tenant.
func (s *Server) limiter(tenant string) *rate.Limiter {
	s.limMu.Lock()
	defer s.limMu.Unlock()
	l, ok := s.limiters[tenant]
	if !ok {
		l = rate.NewLimiter(rate.Limit(20), 40)
		s.limiters[tenant] = l
	}
	return l
}

// RateLimit rejects requests beyond the per-tenant budget with 429.
func (s *Server) RateLimit(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, tenant := s.withTenant(r)
		if !s.limiter(tenant).Allow() {
			writeProblem(w, http.StatusTooManyRequests, "rate limit exceeded", "", r.URL.Path)
			return
		}
		next(w, r)
	}
}
