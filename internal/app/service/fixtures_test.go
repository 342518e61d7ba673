package service

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/ikkim/shoplive-catalog/internal/app/model"
	"github.com/ikkim/shoplive-catalog/internal/app/repository"
	"github.com/ikkim/shoplive-catalog/internal/db"
	"github.com/ikkim/shoplive-catalog/internal/variant"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

type countingRepo struct {
	repository.ProductRepository
	finds int
}

func (r *countingRepo) FindByID(id uint) (*model.Product, error) {
	r.finds++
	return r.ProductRepository.FindByID(id)
}

type testEnv struct {
	repo     *countingRepo
	cache    *IndexCache
	products ProductService
	variants VariantService
	audit    CatalogAuditService
	redis    *miniredis.Miniredis
}

func setupServiceTest(t *testing.T) *testEnv {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.CleanupTestDB(testDB) })

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	repo := &countingRepo{ProductRepository: repository.NewProductRepository(testDB)}
	cache := NewIndexCache(repo, nil, time.Hour)

	return &testEnv{
		repo:     repo,
		cache:    cache,
		products: NewProductService(repo, cache),
		variants: NewVariantService(cache, repository.NewSelectionStore(client, 30*time.Minute)),
		audit:    NewCatalogAuditService(repo, nil),
		redis:    mr,
	}
}

// teeProduct is a 2x2 color/size catalog. TEE-BLUE-M is out of stock and
// TEE-RED-M has a two image gallery.
func teeProduct() *model.Product {
	return &model.Product{
		Name:  "Crew Tee",
		Brand: "Shoplive",
		SKUs: []model.SKU{
			{Code: "TEE-RED-S", Price: 19000, StockQuantity: 4, Media: []model.SKUMedia{
				{URL: "https://cdn.example/red-s.jpg"},
			}},
			{Code: "TEE-RED-M", Price: 19000, StockQuantity: 2, Media: []model.SKUMedia{
				{Position: 0, URL: "https://cdn.example/red-m.jpg"},
				{Position: 1, URL: "https://cdn.example/red-m-back.jpg"},
			}},
			{Code: "TEE-BLUE-S", Price: 21000, StockQuantity: 1},
			{Code: "TEE-BLUE-M", Price: 21000, StockQuantity: 0},
		},
		Dimensions: []model.VariantDimension{
			{Name: "Size", Values: []model.VariantValue{
				{Name: "M", SKUCodes: []string{"TEE-RED-M", "TEE-BLUE-M"}},
				{Name: "S", SKUCodes: []string{"TEE-RED-S", "TEE-BLUE-S"}},
			}},
			{Name: "Color", Values: []model.VariantValue{
				{Name: "Red", SKUCodes: []string{"TEE-RED-S", "TEE-RED-M"}},
				{Name: "Blue", SKUCodes: []string{"TEE-BLUE-S", "TEE-BLUE-M"}},
			}},
		},
	}
}

func createTee(t *testing.T, env *testEnv) *model.Product {
	product := teeProduct()
	require.NoError(t, env.products.CreateProduct(product))
	return product
}

func valueID(t *testing.T, product *model.Product, name string) variant.ValueID {
	for _, dim := range product.Dimensions {
		for _, v := range dim.Values {
			if v.Name == name {
				return variant.ValueID(v.ID)
			}
		}
	}
	t.Fatalf("no value named %s", name)
	return 0
}

func skuID(t *testing.T, product *model.Product, code string) uint {
	for _, sku := range product.SKUs {
		if sku.Code == code {
			return sku.ID
		}
	}
	t.Fatalf("no sku %s", code)
	return 0
}

var bg = context.Background()
