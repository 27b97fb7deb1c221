package brands

import (
	"strings"

	"github.com/angelmondragon/brandprices-backend/pkg/db/models"
)

type BrandDTO struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// BrandInput carries the fields of a create or update request.
type BrandInput struct {
	ID          int64
	Name        string
	Description string
}

func ToBrandDTO(b models.Brand) BrandDTO {
	return BrandDTO{ID: b.ID, Name: b.Name, Description: b.Description}
}

func toBrandDTOs(rows []models.Brand) []BrandDTO {
	out := make([]BrandDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, ToBrandDTO(row))
	}
	return out
}

func (in BrandInput) toModel() *models.Brand {
	return &models.Brand{
		ID:          in.ID,
		Name:        strings.TrimSpace(in.Name),
		Description: strings.TrimSpace(in.Description),
	}
}
