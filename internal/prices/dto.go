package prices

import (
	"strings"
	"time"

	"github.com/angelmondragon/brandprices-backend/pkg/db/models"
	"github.com/angelmondragon/brandprices-backend/pkg/types"
	"github.com/shopspring/decimal"
)

// PriceDTO is the full representation of a stored price.
type PriceDTO struct {
	ID        int64               `json:"priceId"`
	BrandID   int64               `json:"brandId"`
	StartDate types.LocalDateTime `json:"startDate"`
	EndDate   types.LocalDateTime `json:"endDate"`
	PriceList int                 `json:"priceList"`
	ProductID int64               `json:"productId"`
	Priority  int                 `json:"priority"`
	Price     string              `json:"price"`
	Currency  string              `json:"curr"`
}

// ResolvedPriceDTO is the answer to a resolution request.
type ResolvedPriceDTO struct {
	ProductID int64               `json:"productId"`
	BrandID   int64               `json:"brandId"`
	PriceList int                 `json:"priceList"`
	Priority  int                 `json:"priority"`
	Price     string              `json:"price"`
	Currency  string              `json:"currency"`
	StartDate types.LocalDateTime `json:"startDate"`
	EndDate   types.LocalDateTime `json:"endDate"`
}

// PriceInput carries the validated fields of a create or update request.
type PriceInput struct {
	ID        int64
	BrandID   int64
	ProductID int64
	StartDate time.Time
	EndDate   time.Time
	PriceList int
	Priority  int
	Amount    decimal.Decimal
	Currency  string
}

// ToPriceDTO maps a model to its API shape.
func ToPriceDTO(p models.Price) PriceDTO {
	return PriceDTO{
		ID:        p.ID,
		BrandID:   p.BrandID,
		StartDate: types.NewLocalDateTime(p.StartDate),
		EndDate:   types.NewLocalDateTime(p.EndDate),
		PriceList: p.PriceList,
		ProductID: p.ProductID,
		Priority:  p.Priority,
		Price:     formatAmount(p.Amount),
		Currency:  p.Currency,
	}
}

// ToPriceDTOs maps a slice of models.
func ToPriceDTOs(rows []models.Price) []PriceDTO {
	out := make([]PriceDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, ToPriceDTO(row))
	}
	return out
}

func toResolvedPriceDTO(p models.Price) ResolvedPriceDTO {
	return ResolvedPriceDTO{
		ProductID: p.ProductID,
		BrandID:   p.BrandID,
		PriceList: p.PriceList,
		Priority:  p.Priority,
		Price:     formatAmount(p.Amount),
		Currency:  p.Currency,
		StartDate: types.NewLocalDateTime(p.StartDate),
		EndDate:   types.NewLocalDateTime(p.EndDate),
	}
}

func (in PriceInput) toModel() *models.Price {
	return &models.Price{
		ID:        in.ID,
		BrandID:   in.BrandID,
		StartDate: in.StartDate.UTC(),
		EndDate:   in.EndDate.UTC(),
		PriceList: in.PriceList,
		ProductID: in.ProductID,
		Priority:  in.Priority,
		Amount:    in.Amount,
		Currency:  strings.ToUpper(strings.TrimSpace(in.Currency)),
	}
}

func formatAmount(amount decimal.Decimal) string {
	return amount.StringFixed(2)
}
