package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/mbenitez/tienda/internal/logging"
	"github.com/mbenitez/tienda/internal/models"
	"github.com/mbenitez/tienda/internal/pagination"
	"github.com/mbenitez/tienda/internal/repo"
)

type CatalogService struct {
	Repo    *repo.GormRepo
	Events  EventPublisher
	Indexer ProductIndexer
}

type ListParams struct {
	Query    string
	Category string
	Sort     string
	Page     int
	Limit    int
}

type ProductInput struct {
	Name        string
	Description string
	Price       decimal.Decimal
	Stock       int
	Category    string
	Status      *bool
	Thumbnail   string
	Owner       string
}

type ProductUpdate struct {
	Name        *string
	Description *string
	Price       *decimal.Decimal
	Stock       *int
	Category    *string
	Status      *bool
	Thumbnail   *string
}

func (s *CatalogService) Get(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	product, err := s.Repo.GetProduct(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("product %s: %w", id, ErrNotFound)
	}
	return product, err
}

func (s *CatalogService) List(ctx context.Context, p ListParams) ([]models.Product, pagination.Meta, error) {
	offset, limit, page := pagination.Normalize(p.Page, p.Limit)

	total, items, err := s.Repo.GetProducts(ctx, repo.ProductFilter{
		Query:    p.Query,
		Category: p.Category,
		Sort:     p.Sort,
	}, offset, limit)
	if err != nil {
		return nil, pagination.Meta{}, err
	}
	return items, pagination.BuildMeta(page, limit, total), nil
}

func (s *CatalogService) Create(ctx context.Context, in ProductInput) (*models.Product, error) {
	if in.Name == "" {
		return nil, fmt.Errorf("name is required: %w", ErrValidation)
	}
	if in.Price.IsNegative() {
		return nil, fmt.Errorf("price cannot be negative: %w", ErrValidation)
	}
	if in.Stock < 0 {
		return nil, fmt.Errorf("stock cannot be negative: %w", ErrValidation)
	}
	if in.Owner == "" {
		in.Owner = models.AdminOwner
	}

	product := models.Product{
		Name:        in.Name,
		Description: in.Description,
		Price:       in.Price,
		Stock:       in.Stock,
		Category:    in.Category,
		Status:      true,
		Thumbnail:   in.Thumbnail,
		Owner:       in.Owner,
	}
	if in.Status != nil {
		product.Status = *in.Status
	}

	if err := s.Repo.CreateProduct(ctx, &product); err != nil {
		return nil, err
	}

	s.productEvent(ctx, "product_created", &product)
	s.reindex(ctx, &product)
	return &product, nil
}

func (s *CatalogService) Update(ctx context.Context, id uuid.UUID, upd ProductUpdate) (*models.Product, error) {
	product, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if upd.Name != nil {
		product.Name = *upd.Name
	}
	if upd.Description != nil {
		product.Description = *upd.Description
	}
	if upd.Price != nil {
		if upd.Price.IsNegative() {
			return nil, fmt.Errorf("price cannot be negative: %w", ErrValidation)
		}
		product.Price = *upd.Price
	}
	if upd.Stock != nil {
		if *upd.Stock < 0 {
			return nil, fmt.Errorf("stock cannot be negative: %w", ErrValidation)
		}
		product.Stock = *upd.Stock
	}
	if upd.Category != nil {
		product.Category = *upd.Category
	}
	if upd.Status != nil {
		product.Status = *upd.Status
	}
	if upd.Thumbnail != nil {
		product.Thumbnail = *upd.Thumbnail
	}

	if err := s.Repo.SaveProduct(ctx, product); err != nil {
		return nil, err
	}

	s.productEvent(ctx, "product_updated", product)
	s.reindex(ctx, product)
	return product, nil
}

func (s *CatalogService) Delete(ctx context.Context, id uuid.UUID) error {
	err := s.Repo.DeleteProduct(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("product %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return err
	}

	l := logging.FromContext(ctx)
	if s.Events != nil {
		event := map[string]any{"type": "product_deleted", "productID": id.String()}
		if err := s.Events.Publish(ctx, "product_events", id.String(), event); err != nil {
			l.Error("publish product event", "error", err)
		}
	}
	if s.Indexer != nil {
		if err := s.Indexer.RemoveProduct(ctx, id); err != nil {
			l.Error("remove product from index", "error", err)
		}
	}
	return nil
}

func (s *CatalogService) productEvent(ctx context.Context, kind string, product *models.Product) {
	if s.Events == nil {
		return
	}
	event := map[string]any{
		"type":      kind,
		"productID": product.ID.String(),
		"name":      product.Name,
	}
	if err := s.Events.Publish(ctx, "product_events", product.ID.String(), event); err != nil {
		logging.FromContext(ctx).Error("publish product event", "error", err)
	}
}

func (s *CatalogService) reindex(ctx context.Context, product *models.Product) {
	if s.Indexer == nil {
		return
	}
	if err := s.Indexer.IndexProduct(ctx, product); err != nil {
		logging.FromContext(ctx).Error("index product", "error", err)
	}
}
