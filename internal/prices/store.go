package prices

import (
	"context"
	"time"

	"github.com/angelmondragon/brandprices-backend/pkg/db/models"
)

// Store is the persistence contract the resolver and price service depend on.
//
// FindMatching returns every record whose inclusive window contains at for the exact
// product and brand, ordered by ascending id. CreatePrice is create-with-association:
// it checks that the brand exists and the id is free, then inserts, as one atomic
// unit. Implementations report db.ErrNotFound, db.ErrDuplicateKey and
// db.ErrMissingReference.
type Store interface {
	FindMatching(ctx context.Context, at time.Time, productID, brandID int64) ([]models.Price, error)
	ListPrices(ctx context.Context) ([]models.Price, error)
	GetPrice(ctx context.Context, id int64) (*models.Price, error)
	CreatePrice(ctx context.Context, price *models.Price) error
	UpdatePrice(ctx context.Context, price *models.Price) error
	DeletePrice(ctx context.Context, id int64) error
}
