package products

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/arcacommerce/arca-backend/pkg/auth"
	"github.com/arcacommerce/arca-backend/pkg/db"
	"github.com/arcacommerce/arca-backend/pkg/db/models"
	pkgerrors "github.com/arcacommerce/arca-backend/pkg/errors"
	"github.com/arcacommerce/arca-backend/pkg/money"
	"github.com/arcacommerce/arca-backend/pkg/pagination"
)

// Service manages the catalogue. Stock only moves here through Restock; orders use the repository directly.
type Service interface {
	Create(ctx context.Context, actor auth.Actor, input CreateProductInput) (*ProductDTO, error)
	Update(ctx context.Context, actor auth.Actor, productID uuid.UUID, input UpdateProductInput) (*ProductDTO, error)
	Restock(ctx context.Context, actor auth.Actor, productID uuid.UUID, delta int) (*ProductDTO, error)
	Get(ctx context.Context, productID uuid.UUID) (*ProductDTO, error)
	List(ctx context.Context, actor auth.Actor, input ListProductsInput) (pagination.Page[ProductDTO], error)
}

type service struct {
	repo *Repository
}

func NewService(repo *Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("products repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Create(ctx context.Context, actor auth.Actor, input CreateProductInput) (*ProductDTO, error) {
	if !actor.IsBackOffice() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "staff or admin required")
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	if !input.Price.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price must be positive")
	}
	if input.Cost.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cost must not be negative")
	}
	if input.Stock < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "stock must not be negative")
	}
	product := &models.Product{
		SKU:      input.SKU,
		Name:     name,
		Price:    money.RoundHalfUp(input.Price),
		Cost:     money.RoundHalfUp(input.Cost),
		Stock:    input.Stock,
		IsActive: true,
	}
	if err := s.repo.Create(ctx, product); err != nil {
		if db.IsUniqueViolation(err, "ux_products_sku") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "sku already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create product")
	}
	dto := FromModel(*product)
	return &dto, nil
}

func (s *service) Update(ctx context.Context, actor auth.Actor, productID uuid.UUID, input UpdateProductInput) (*ProductDTO, error) {
	if !actor.IsBackOffice() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "staff or admin required")
	}
	product, err := s.load(ctx, productID)
	if err != nil {
		return nil, err
	}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
		}
		product.Name = name
	}
	if input.Price != nil {
		if !input.Price.IsPositive() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "price must be positive")
		}
		product.Price = money.RoundHalfUp(*input.Price)
	}
	if input.Cost != nil {
		if input.Cost.IsNegative() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "cost must not be negative")
		}
		product.Cost = money.RoundHalfUp(*input.Cost)
	}
	if input.IsActive != nil {
		product.IsActive = *input.IsActive
	}
	if err := s.repo.Update(ctx, product); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update product")
	}
	dto := FromModel(*product)
	return &dto, nil
}

// Restock adds delta units, or removes them when delta is negative and enough stock remains.
func (s *service) Restock(ctx context.Context, actor auth.Actor, productID uuid.UUID, delta int) (*ProductDTO, error) {
	if !actor.IsBackOffice() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "staff or admin required")
	}
	if delta == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "delta must not be zero")
	}
	if _, err := s.load(ctx, productID); err != nil {
		return nil, err
	}
	if delta > 0 {
		if err := s.repo.IncrementStock(ctx, productID, delta); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "restock product")
		}
	} else {
		ok, err := s.repo.DecrementStock(ctx, productID, -delta)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reduce stock")
		}
		if !ok {
			return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "stock cannot go below zero")
		}
	}
	return s.Get(ctx, productID)
}

func (s *service) Get(ctx context.Context, productID uuid.UUID) (*ProductDTO, error) {
	product, err := s.load(ctx, productID)
	if err != nil {
		return nil, err
	}
	dto := FromModel(*product)
	return &dto, nil
}

// List shows inactive products only to back office callers that ask for them.
func (s *service) List(ctx context.Context, actor auth.Actor, input ListProductsInput) (pagination.Page[ProductDTO], error) {
	activeOnly := !(input.IncludeInactive && actor.IsBackOffice())
	rows, err := s.repo.List(ctx, activeOnly, input.Search, input.Params)
	if err != nil {
		if errors.Is(err, pagination.ErrInvalidCursor) {
			return pagination.Page[ProductDTO]{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
		}
		return pagination.Page[ProductDTO]{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}
	dtos := make([]ProductDTO, 0, len(rows))
	for _, row := range rows {
		dtos = append(dtos, FromModel(row))
	}
	return pagination.Build(dtos, input.Params, cursorOf), nil
}

func (s *service) load(ctx context.Context, productID uuid.UUID) (*models.Product, error) {
	product, err := s.repo.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	return product, nil
}
