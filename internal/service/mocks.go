package service

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/shopspring/decimal"

	"github.com/mbenitez/tienda/internal/models"
)

// MockOwner marks generated catalog entries so a regenerate run can
// replace them without touching real products.
const MockOwner = "mocking"

var (
	mockAdjectives = []string{"Rustic", "Sleek", "Ergonomic", "Handcrafted", "Refined", "Practical", "Gorgeous", "Incredible"}
	mockMaterials  = []string{"Steel", "Wooden", "Cotton", "Granite", "Rubber", "Leather", "Bronze"}
	mockNouns      = []string{"Chair", "Lamp", "Keyboard", "Mug", "Backpack", "Wallet", "Bottle", "Notebook"}
	mockCategories = []string{"Home", "Electronics", "Clothing", "Sports", "Toys", "Garden"}
)

// GenerateMockProducts builds n pseudo-random catalog entries in the
// shape real products have.
func GenerateMockProducts(n int) []models.Product {
	products := make([]models.Product, 0, n)
	for i := 0; i < n; i++ {
		name := fmt.Sprintf("%s %s %s",
			mockAdjectives[rand.Intn(len(mockAdjectives))],
			mockMaterials[rand.Intn(len(mockMaterials))],
			mockNouns[rand.Intn(len(mockNouns))],
		)
		price := decimal.NewFromInt(int64(rand.Intn(99000)+1000)).Div(decimal.NewFromInt(100))
		products = append(products, models.Product{
			Name:        name,
			Description: fmt.Sprintf("Mock listing #%d for %s", i+1, name),
			Price:       price,
			Stock:       rand.Intn(91) + 10,
			Category:    mockCategories[rand.Intn(len(mockCategories))],
			Status:      true,
			Thumbnail:   fmt.Sprintf("/images/mock/%03d.jpg", i+1),
			Owner:       MockOwner,
		})
	}
	return products
}

// RegenerateMocks replaces the previously generated mock catalog with a
// fresh batch of n entries.
func (s *CatalogService) RegenerateMocks(ctx context.Context, n int) (int, error) {
	if n <= 0 {
		n = 100
	}
	if err := s.Repo.DeleteProductsByOwner(ctx, MockOwner); err != nil {
		return 0, err
	}
	products := GenerateMockProducts(n)
	if err := s.Repo.CreateProducts(ctx, products); err != nil {
		return 0, err
	}
	return len(products), nil
}
