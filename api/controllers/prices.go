package controllers

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/brandprices-backend/api/responses"
	"github.com/angelmondragon/brandprices-backend/api/validators"
	"github.com/angelmondragon/brandprices-backend/internal/prices"
	pkgerrors "github.com/angelmondragon/brandprices-backend/pkg/errors"
	"github.com/angelmondragon/brandprices-backend/pkg/logger"
	"github.com/angelmondragon/brandprices-backend/pkg/types"
)

// priceRequest is the body accepted by the create and update price routes. The amount may
// be sent as a JSON number or a decimal string.
type priceRequest struct {
	ID        int64               `json:"priceId" validate:"gte=0"`
	BrandID   int64               `json:"brandId" validate:"required,gt=0"`
	StartDate types.LocalDateTime `json:"startDate"`
	EndDate   types.LocalDateTime `json:"endDate"`
	PriceList int                 `json:"priceList" validate:"gte=0"`
	ProductID int64               `json:"productId" validate:"required,gt=0"`
	Priority  int                 `json:"priority"`
	Price     decimal.Decimal     `json:"price"`
	Currency  string              `json:"curr" validate:"required,iso4217"`
}

func (r priceRequest) toInput() prices.PriceInput {
	return prices.PriceInput{
		ID:        r.ID,
		BrandID:   r.BrandID,
		ProductID: r.ProductID,
		StartDate: r.StartDate.Time,
		EndDate:   r.EndDate.Time,
		PriceList: r.PriceList,
		Priority:  r.Priority,
		Amount:    r.Price,
		Currency:  r.Currency,
	}
}

func ListPrices(svc prices.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := svc.ListPrices(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

func GetPrice(svc prices.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParsePathID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		ctx := logg.WithPriceID(r.Context(), id)

		price, err := svc.GetPrice(ctx, id)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, price)
	}
}

// ResolvePrice answers GET /api/prices/resolve?date=&productId=&brandId=.
func ResolvePrice(svc prices.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		at, err := validators.ParseQueryTimestamp(r, "date")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		productID, err := validators.ParseQueryID(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		brandID, err := validators.ParseQueryID(r, "brandId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		writeResolution(w, r, svc, logg, at, productID, brandID)
	}
}

// ResolveApplicablePrice answers GET /api/prices/applicable/{date}/{productId}/{brandId}.
func ResolveApplicablePrice(svc prices.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		at, err := validators.ParsePathTimestamp(r, "date")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		productID, err := validators.ParsePathID(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		brandID, err := validators.ParsePathID(r, "brandId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		writeResolution(w, r, svc, logg, at, productID, brandID)
	}
}

// writeResolution renders the winning price, or {"data": null} when nothing applies.
func writeResolution(w http.ResponseWriter, r *http.Request, svc prices.Service, logg *logger.Logger, at types.LocalDateTime, productID, brandID int64) {
	ctx := logg.WithFields(logg.WithBrandID(r.Context(), brandID), map[string]any{
		"product_id": productID,
		"at":         at.String(),
	})

	resolved, ok, err := svc.ResolvePrice(ctx, at.Time, productID, brandID)
	if err != nil {
		responses.WriteError(ctx, logg, w, err)
		return
	}
	if !ok {
		logg.Debug(ctx, "price.resolve.miss")
		responses.WriteSuccess(w, nil)
		return
	}
	responses.WriteSuccess(w, resolved)
}

func CreatePrice(svc prices.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req priceRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		ctx := logg.WithBrandID(r.Context(), req.BrandID)

		created, err := svc.CreatePrice(ctx, req.toInput())
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		logg.Info(logg.WithPriceID(ctx, created.ID), "price.created")
		responses.WriteSuccessStatus(w, http.StatusCreated, created)
	}
}

func UpdatePrice(svc prices.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParsePathID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var req priceRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if req.ID != 0 && req.ID != id {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "priceId does not match path").
				WithDetails(map[string]any{"path_id": id, "body_id": req.ID}))
			return
		}
		ctx := logg.WithPriceID(r.Context(), id)

		updated, err := svc.UpdatePrice(ctx, id, req.toInput())
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		logg.Info(ctx, "price.updated")
		responses.WriteSuccess(w, updated)
	}
}

func DeletePrice(svc prices.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParsePathID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		ctx := logg.WithPriceID(r.Context(), id)

		if err := svc.DeletePrice(ctx, id); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		logg.Info(ctx, "price.deleted")
		responses.WriteNoContent(w)
	}
}
