package httpserver

import (
	"context"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/mbenitez/tienda/internal/logging"
	"github.com/mbenitez/tienda/internal/models"
	"github.com/mbenitez/tienda/internal/pagination"
	"github.com/mbenitez/tienda/internal/service"
)

// Searcher is the full-text search boundary; nil when the search
// backend is disabled.
type Searcher interface {
	Search(ctx context.Context, query string, from, size int) (int64, []models.Product, error)
}

type ProductHTTP struct {
	Svc    *service.CatalogService
	Search Searcher
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if v, err := strconv.Atoi(s); err == nil {
		return v
	}
	return def
}

func (h *ProductHTTP) List(c echo.Context) error {
	ctx := c.Request().Context()

	items, meta, err := h.Svc.List(ctx, service.ListParams{
		Query:    c.QueryParam("query"),
		Category: c.QueryParam("category"),
		Sort:     c.QueryParam("sort"),
		Page:     parseIntDefault(c.QueryParam("page"), 1),
		Limit:    parseIntDefault(c.QueryParam("limit"), pagination.DefaultPageSize),
	})
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"status":      "success",
		"payload":     items,
		"totalPages":  meta.TotalPages,
		"page":        meta.Page,
		"hasPrevPage": meta.HasPrevPage,
		"hasNextPage": meta.HasNextPage,
		"prevPage":    meta.PrevPage,
		"nextPage":    meta.NextPage,
	})
}

func (h *ProductHTTP) SearchProducts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.search")

	if h.Search == nil {
		return respondError(c, http.StatusServiceUnavailable, "search is not available")
	}

	query := c.QueryParam("query")
	if query == "" {
		return respondError(c, http.StatusBadRequest, "query is required")
	}

	page := parseIntDefault(c.QueryParam("page"), 1)
	limit := parseIntDefault(c.QueryParam("limit"), pagination.DefaultPageSize)
	offset, limit, page := pagination.Normalize(page, limit)

	total, items, err := h.Search.Search(ctx, query, offset, limit)
	if err != nil {
		l.Error("search_failed", "error", err)
		return respondError(c, http.StatusInternalServerError, "internal server error")
	}

	meta := pagination.BuildMeta(page, limit, total)
	return c.JSON(http.StatusOK, echo.Map{
		"status":      "success",
		"payload":     items,
		"totalPages":  meta.TotalPages,
		"page":        meta.Page,
		"hasPrevPage": meta.HasPrevPage,
		"hasNextPage": meta.HasNextPage,
		"prevPage":    meta.PrevPage,
		"nextPage":    meta.NextPage,
	})
}

func (h *ProductHTTP) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("pid"))
	if err != nil {
		return respondError(c, http.StatusBadRequest, "invalid product id")
	}

	product, err := h.Svc.Get(c.Request().Context(), id)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"status": "success", "data": product})
}

type productRequest struct {
	Name        *string          `json:"name"`
	Description *string          `json:"description"`
	Price       *decimal.Decimal `json:"price"`
	Stock       *int             `json:"stock"`
	Category    *string          `json:"category"`
	Status      *bool            `json:"status"`
	Thumbnail   *string          `json:"thumbnail"`
}

func (h *ProductHTTP) Create(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.create")

	p, ok := GetPrincipal(c)
	if !ok {
		return respondError(c, http.StatusUnauthorized, "unauthorized")
	}

	var req productRequest
	if err := c.Bind(&req); err != nil {
		return respondError(c, http.StatusBadRequest, "invalid body")
	}

	in := service.ProductInput{Status: req.Status}
	if req.Name != nil {
		in.Name = *req.Name
	}
	if req.Description != nil {
		in.Description = *req.Description
	}
	if req.Price != nil {
		in.Price = *req.Price
	}
	if req.Stock != nil {
		in.Stock = *req.Stock
	}
	if req.Category != nil {
		in.Category = *req.Category
	}
	if req.Thumbnail != nil {
		in.Thumbnail = *req.Thumbnail
	}
	if p.Role == models.RoleAdmin {
		in.Owner = models.AdminOwner
	} else {
		in.Owner = p.Email
	}

	product, err := h.Svc.Create(ctx, in)
	if err != nil {
		l.Warn("create_product_failed", "error", err)
		return respondServiceError(c, err)
	}

	l.Info("product created", "product_id", product.ID)
	return c.JSON(http.StatusCreated, echo.Map{"status": "success", "message": "product created", "data": product})
}

// ownerAccess allows admins everywhere and premium users on their own
// products.
func (h *ProductHTTP) ownerAccess(c echo.Context, id uuid.UUID) (*models.Product, bool) {
	p, ok := GetPrincipal(c)
	if !ok {
		_ = respondError(c, http.StatusUnauthorized, "unauthorized")
		return nil, false
	}

	product, err := h.Svc.Get(c.Request().Context(), id)
	if err != nil {
		_ = respondServiceError(c, err)
		return nil, false
	}
	if p.Role != models.RoleAdmin && product.Owner != p.Email {
		_ = respondError(c, http.StatusForbidden, "product belongs to another owner")
		return nil, false
	}
	return product, true
}

func (h *ProductHTTP) Update(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := uuid.Parse(c.Param("pid"))
	if err != nil {
		return respondError(c, http.StatusBadRequest, "invalid product id")
	}
	if _, ok := h.ownerAccess(c, id); !ok {
		return nil
	}

	var req productRequest
	if err := c.Bind(&req); err != nil {
		return respondError(c, http.StatusBadRequest, "invalid body")
	}

	product, err := h.Svc.Update(ctx, id, service.ProductUpdate{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Stock:       req.Stock,
		Category:    req.Category,
		Status:      req.Status,
		Thumbnail:   req.Thumbnail,
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"status": "success", "message": "product updated", "data": product})
}

func (h *ProductHTTP) Delete(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.delete")

	id, err := uuid.Parse(c.Param("pid"))
	if err != nil {
		return respondError(c, http.StatusBadRequest, "invalid product id")
	}
	if _, ok := h.ownerAccess(c, id); !ok {
		return nil
	}

	if err := h.Svc.Delete(ctx, id); err != nil {
		l.Error("delete_product_failed", "error", err)
		return respondServiceError(c, err)
	}

	l.Info("product deleted", "product_id", id)
	return respondOK(c, "product deleted")
}

func (h *ProductHTTP) RegenerateMocks(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.mocks")

	count := parseIntDefault(c.QueryParam("count"), 100)
	n, err := h.Svc.RegenerateMocks(ctx, count)
	if err != nil {
		l.Error("regenerate_mocks_failed", "error", err)
		return respondServiceError(c, err)
	}

	l.Info("mock products regenerated", "count", n)
	return respondOK(c, "mock products regenerated")
}
