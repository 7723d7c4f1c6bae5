package products

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/arcacommerce/arca-backend/pkg/db/models"
	"github.com/arcacommerce/arca-backend/pkg/pagination"
)

type ProductDTO struct {
	ID        uuid.UUID       `json:"id"`
	SKU       *string         `json:"sku,omitempty"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Stock     int             `json:"stock"`
	IsActive  bool            `json:"is_active"`
	CreatedAt time.Time       `json:"created_at"`
}

type CreateProductInput struct {
	SKU   *string
	Name  string
	Price decimal.Decimal
	Cost  decimal.Decimal
	Stock int
}

// UpdateProductInput changes catalogue attributes. Nil fields are left untouched.
type UpdateProductInput struct {
	Name     *string
	Price    *decimal.Decimal
	Cost     *decimal.Decimal
	IsActive *bool
}

type ListProductsInput struct {
	Search          string
	IncludeInactive bool
	pagination.Params
}

func FromModel(p models.Product) ProductDTO {
	return ProductDTO{
		ID:        p.ID,
		SKU:       p.SKU,
		Name:      p.Name,
		Price:     p.Price,
		Stock:     p.Stock,
		IsActive:  p.IsActive,
		CreatedAt: p.CreatedAt,
	}
}

func cursorOf(p ProductDTO) pagination.Cursor {
	return pagination.Cursor{CreatedAt: p.CreatedAt, ID: p.ID}
}
