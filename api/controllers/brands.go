package controllers

import (
	"net/http"

	"github.com/angelmondragon/brandprices-backend/api/responses"
	"github.com/angelmondragon/brandprices-backend/api/validators"
	"github.com/angelmondragon/brandprices-backend/internal/brands"
	"github.com/angelmondragon/brandprices-backend/pkg/logger"
)

const (
	brandNameMaxLen        = 255
	brandDescriptionMaxLen = 1024
)

type brandRequest struct {
	ID          int64  `json:"id" validate:"gte=0"`
	Name        string `json:"name" validate:"required,max=255"`
	Description string `json:"description"`
}

func (r brandRequest) toInput() brands.BrandInput {
	return brands.BrandInput{
		ID:          r.ID,
		Name:        validators.SanitizeString(r.Name, brandNameMaxLen),
		Description: validators.SanitizeString(r.Description, brandDescriptionMaxLen),
	}
}

func ListBrands(svc brands.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := svc.ListBrands(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

func GetBrand(svc brands.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParsePathID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		ctx := logg.WithBrandID(r.Context(), id)

		brand, err := svc.GetBrand(ctx, id)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, brand)
	}
}

// ListBrandPrices returns every price owned by the brand.
func ListBrandPrices(svc brands.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParsePathID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		ctx := logg.WithBrandID(r.Context(), id)

		list, err := svc.ListBrandPrices(ctx, id)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

func CreateBrand(svc brands.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req brandRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		created, err := svc.CreateBrand(r.Context(), req.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		logg.Info(logg.WithBrandID(r.Context(), created.ID), "brand.created")
		responses.WriteSuccessStatus(w, http.StatusCreated, created)
	}
}

func UpdateBrand(svc brands.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParsePathID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var req brandRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		ctx := logg.WithBrandID(r.Context(), id)

		updated, err := svc.UpdateBrand(ctx, id, req.toInput())
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		logg.Info(ctx, "brand.updated")
		responses.WriteSuccess(w, updated)
	}
}

// DeleteBrand removes the brand and its prices.
func DeleteBrand(svc brands.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParsePathID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		ctx := logg.WithBrandID(r.Context(), id)

		if err := svc.DeleteBrand(ctx, id); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		logg.Info(ctx, "brand.deleted")
		responses.WriteNoContent(w)
	}
}
