// Package http exposes the tracker over a JSON API: accounts,
// transactions, recurring rules, monthly materialization and projection,
// budget categories, snapshots and the derived insights.
package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/Philou1985/SLC-APP-BUDGET/internal/cache"
	"github.com/Philou1985/SLC-APP-BUDGET/internal/core"
	"github.com/Philou1985/SLC-APP-BUDGET/internal/engine"
	"github.com/Philou1985/SLC-APP-BUDGET/internal/middleware/ratelimit"
	"github.com/Philou1985/SLC-APP-BUDGET/internal/middleware/security"
	"github.com/Philou1985/SLC-APP-BUDGET/internal/middleware/trace"
)

// Store is what the API needs from persistence beyond the engine's own
// ports: account and rule CRUD plus snapshots.
type Store interface {
	engine.Store

	AccountByName(ctx context.Context, name string) (core.Account, error)
	SaveAccount(ctx context.Context, a core.Account) (core.Account, error)
	DeleteAccount(ctx context.Context, name string) error

	SaveRecurringRule(ctx context.Context, rule core.RecurringRule) error
	DeleteRecurringRule(ctx context.Context, id string) error

	SaveSnapshot(ctx context.Context, snap core.Snapshot) (core.Snapshot, error)
	ListSnapshots(ctx context.Context) ([]core.Snapshot, error)
}

type Server struct {
	http.Server

	store        Store
	transactions *engine.TransactionService
	materializer *engine.Materializer
	calculator   *engine.Calculator

	limiter         *ratelimit.Limiter
	projectionCache *cache.LRUCache[*engine.ProjectionResult]
	cacheManager    *cache.Manager
	shutdownOnce    sync.Once
}

// NewServer wires routes and middleware, returning a server ready for
// ListenAndServe.
func NewServer(addr string, store Store, transactions *engine.TransactionService, materializer *engine.Materializer, calculator *engine.Calculator) *Server {
	mux := http.NewServeMux()

	s := &Server{
		store:           store,
		transactions:    transactions,
		materializer:    materializer,
		calculator:      calculator,
		limiter:         ratelimit.NewLimiter(ratelimit.DefaultConfig()),
		projectionCache: cache.NewLRUCache[*engine.ProjectionResult](100, 5*time.Minute),
		cacheManager:    cache.NewManager(),
	}
	s.cacheManager.Register(s.projectionCache)
	s.cacheManager.StartCleanup(10 * time.Minute)

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	mux.HandleFunc("GET /api/accounts", s.handleListAccounts)
	mux.HandleFunc("PUT /api/accounts/{name}", s.handleSaveAccount)
	mux.HandleFunc("DELETE /api/accounts/{name}", s.handleDeleteAccount)

	mux.HandleFunc("POST /api/transactions", s.handleCreateTransaction)
	mux.HandleFunc("POST /api/transactions/clear", s.handleClearTransactions)
	mux.HandleFunc("POST /api/transfers", s.handleCreateTransfer)
	mux.HandleFunc("POST /api/cards/{name}/settlements", s.handleCardSettlement)

	mux.HandleFunc("GET /api/rules", s.handleListRules)
	mux.HandleFunc("PUT /api/rules/{id}", s.handleSaveRule)
	mux.HandleFunc("DELETE /api/rules/{id}", s.handleDeleteRule)

	mux.HandleFunc("GET /api/months/{key}/ledger", s.handleGetLedger)
	mux.HandleFunc("PUT /api/months/{key}/categories", s.handleSaveCategories)
	mux.HandleFunc("POST /api/months/{key}/materialize", s.handleMaterialize)
	mux.HandleFunc("GET /api/months/{key}/projection", s.handleProjection)
	mux.HandleFunc("DELETE /api/months/{key}/transactions/{id}", s.handleDeleteTransaction)

	mux.HandleFunc("POST /api/snapshots", s.handleTakeSnapshot)
	mux.HandleFunc("GET /api/snapshots", s.handleListSnapshots)

	mux.HandleFunc("GET /api/suggestions", s.handleSuggestCategory)
	mux.HandleFunc("GET /api/rule-candidates", s.handleRuleCandidates)
	mux.HandleFunc("GET /api/analysis", s.handleAnalysis)

	var handler http.Handler = mux
	handler = s.rateLimitMutations(handler)
	handler = security.Headers(handler)
	handler = security.DetectProbes(handler)
	handler = trace.Middleware(handler)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// rateLimitMutations throttles writes per client IP. Reads are never
// limited.
func (s *Server) rateLimitMutations(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost, http.MethodPut, http.MethodDelete:
			if !s.limiter.Allow(trace.ClientIP(r)) {
				w.Header().Set("Retry-After", "60")
				respondError(w, r, http.StatusTooManyRequests, "rate limit exceeded")
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

// Shutdown stops the background goroutines before draining the listener.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		s.cacheManager.Stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}

// invalidateProjection drops the cached projection for the given months,
// or the whole cache when called with none. Transaction mutations always
// clear everything: an uncleared transaction carries forward into every
// later month's projection. Only ledger-local edits (budget categories)
// use the targeted form.
func (s *Server) invalidateProjection(months ...core.YearMonth) {
	if len(months) == 0 {
		s.projectionCache.Clear()
		return
	}
	for _, m := range months {
		s.projectionCache.Delete(m.Key())
	}
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if _, err := s.store.LoadAccounts(r.Context()); err != nil {
		http.Error(w, "store unavailable", http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
