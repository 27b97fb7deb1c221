package prices

import (
	"context"
	"fmt"
	"time"

	"github.com/angelmondragon/brandprices-backend/pkg/db/models"
	"github.com/angelmondragon/brandprices-backend/pkg/metrics"
)

// Matcher is the slice of Store the resolver needs.
type Matcher interface {
	FindMatching(ctx context.Context, at time.Time, productID, brandID int64) ([]models.Price, error)
}

// Resolver selects the applicable price for a (timestamp, product, brand) triple.
type Resolver struct {
	store   Matcher
	metrics *metrics.ResolverMetrics
	now     func() time.Time
}

// NewResolver builds a resolver over store. m may be nil.
func NewResolver(store Matcher, m *metrics.ResolverMetrics) (*Resolver, error) {
	if store == nil {
		return nil, fmt.Errorf("price store required")
	}
	return &Resolver{store: store, metrics: m, now: time.Now}, nil
}

// Resolve returns the matching price with the highest priority. The boolean is false
// when nothing matches, which is not an error. On equal priority the record the store
// returned first is kept, so the store's ordering decides ties.
func (r *Resolver) Resolve(ctx context.Context, at time.Time, productID, brandID int64) (models.Price, bool, error) {
	start := r.now()

	candidates, err := r.store.FindMatching(ctx, at, productID, brandID)
	if err != nil {
		r.metrics.Observe(metrics.OutcomeError, 0, r.now().Sub(start))
		return models.Price{}, false, fmt.Errorf("finding prices for product %d brand %d: %w", productID, brandID, err)
	}

	best, ok := pickHighestPriority(candidates)
	outcome := metrics.OutcomeMiss
	if ok {
		outcome = metrics.OutcomeHit
	}
	r.metrics.Observe(outcome, len(candidates), r.now().Sub(start))
	return best, ok, nil
}

func pickHighestPriority(candidates []models.Price) (models.Price, bool) {
	if len(candidates) == 0 {
		return models.Price{}, false
	}
	best := candidates[0]
	for _, candidate := range candidates[1:] {
		if candidate.Priority > best.Priority {
			best = candidate
		}
	}
	return best, true
}
