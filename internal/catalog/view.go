package catalog

import (
	"context"
	"log/slog"
	"slices"
	"sync"
)

// Status is the lifecycle state of a catalog view.
type Status string

const (
	StatusIdle    Status = "idle"
	StatusLoading Status = "loading"
	StatusSuccess Status = "success"
	StatusEmpty   Status = "empty"
	StatusError   Status = "error"
)

// Fetcher loads the products answering a query.
type Fetcher func(ctx context.Context, q Query) ([]Product, error)

// ViewState is a snapshot of a View.
type ViewState struct {
	Status   Status    `json:"status"`
	Query    Query     `json:"query"`
	Products []Product `json:"products"`
	// Err keeps the cause of the last failed fetch.
	Err   error  `json:"-"`
	Error string `json:"error,omitempty"`
	Token uint64 `json:"token"`
}

// View holds the result of the most recent catalog query.
// Every refresh is stamped with an increasing token and a result older than
// the one already applied is discarded, so a slow superseded fetch can never
// overwrite a newer answer.
type View struct {
	mu      sync.Mutex
	fetch   Fetcher
	logger  *slog.Logger
	issued  uint64
	applied uint64
	state   ViewState
}

// NewView creates an idle view backed by fetch.
func NewView(fetch Fetcher, logger *slog.Logger) *View {
	return &View{
		fetch:  fetch,
		logger: logger,
		state:  ViewState{Status: StatusIdle, Products: []Product{}},
	}
}

// Begin marks the view as loading q and returns the token the result must be completed with.
func (v *View) Begin(q Query) uint64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.issued++
	v.state.Status = StatusLoading
	v.state.Query = q
	return v.issued
}

// Complete applies the outcome of the fetch identified by token.
// It returns false when the result was stale and has been dropped.
func (v *View) Complete(ctx context.Context, token uint64, q Query, products []Product, err error) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	if token <= v.applied {
		v.logger.DebugContext(ctx, "Dropping stale catalog result", "token", token, "applied", v.applied)
		return false
	}
	v.applied = token
	next := ViewState{Query: q, Token: token, Products: []Product{}}
	switch {
	case err != nil:
		v.logger.ErrorContext(ctx, "Catalog fetch failed", "token", token, "error", err)
		next.Status = StatusError
		next.Err = err
		next.Error = err.Error()
	case len(products) == 0:
		next.Status = StatusEmpty
	default:
		next.Status = StatusSuccess
		next.Products = products
	}
	v.state = next
	return true
}

// Refresh runs q through the fetcher and returns the resulting state.
func (v *View) Refresh(ctx context.Context, q Query) ViewState {
	token := v.Begin(q)
	products, err := v.fetch(ctx, q)
	v.Complete(ctx, token, q, products, err)
	return v.State()
}

// State returns a copy of the current state.
func (v *View) State() ViewState {
	v.mu.Lock()
	defer v.mu.Unlock()
	s := v.state
	s.Products = slices.Clone(v.state.Products)
	return s
}
