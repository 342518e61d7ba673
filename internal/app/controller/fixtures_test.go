package controller

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/ikkim/shoplive-catalog/config"
	"github.com/ikkim/shoplive-catalog/internal/app/model"
	"github.com/ikkim/shoplive-catalog/internal/app/repository"
	"github.com/ikkim/shoplive-catalog/internal/app/service"
	"github.com/ikkim/shoplive-catalog/internal/db"
	"github.com/ikkim/shoplive-catalog/internal/middleware"
	"github.com/ikkim/shoplive-catalog/internal/storage"
	"github.com/ikkim/shoplive-catalog/internal/variant"
	ws "github.com/ikkim/shoplive-catalog/internal/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

type controllerEnv struct {
	router   *gin.Engine
	products service.ProductService
	variants service.VariantService
	hub      *ws.Hub
	redis    *miniredis.Miniredis
}

func setupControllerTest(t *testing.T) *controllerEnv {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.CleanupTestDB(testDB) })

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	s3 := storage.NewS3Storage(config.S3Config{
		Region:          "ap-northeast-2",
		Bucket:          "shoplive-media",
		AccessKeyID:     "AKIATESTKEY",
		SecretAccessKey: "test-secret",
		BaseURL:         "https://cdn.example.com",
	})

	repo := repository.NewProductRepository(testDB)
	cache := service.NewIndexCache(repo, s3, time.Hour)
	hub := ws.NewHub()
	t.Cleanup(hub.CloseAll)

	products := service.NewProductService(repo, service.Invalidators{cache, hub})
	variants := service.NewVariantService(cache, repository.NewSelectionStore(client, 30*time.Minute))
	audit := service.NewCatalogAuditService(repo, s3)

	productCtrl := NewProductController(products)
	variantCtrl := NewVariantController(variants)
	socketCtrl := NewVariantSocketController(variants, hub, []string{"http://localhost:3000"})
	uploadCtrl := NewUploadController(s3, products)
	auditCtrl := NewAuditController(audit)

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(middleware.LoggingMiddleware())

	v1 := router.Group("/api/v1")
	v1.GET("/products", productCtrl.ListProducts)
	v1.GET("/products/:id", productCtrl.GetProductByID)
	v1.POST("/products", productCtrl.CreateProduct)
	v1.POST("/products/import", productCtrl.ImportProduct)
	v1.DELETE("/products/:id", productCtrl.DeleteProduct)
	v1.PATCH("/products/:id/skus/:skuId/stock", productCtrl.UpdateStock)
	v1.POST("/products/:id/skus/:skuId/media", productCtrl.AttachMedia)
	v1.GET("/products/:id/variants", variantCtrl.GetView)
	v1.POST("/products/:id/variants/sessions", variantCtrl.StartSession)
	v1.GET("/products/:id/variants/live", socketCtrl.Live)
	v1.GET("/products/:id/audit", auditCtrl.AuditProduct)
	v1.GET("/variants/sessions/:sessionId", variantCtrl.GetSession)
	v1.POST("/variants/sessions/:sessionId/choose", variantCtrl.Choose)
	v1.POST("/variants/sessions/:sessionId/reset", variantCtrl.ResetSession)
	v1.DELETE("/variants/sessions/:sessionId", variantCtrl.EndSession)
	v1.POST("/uploads/sku-media", uploadCtrl.GeneratePresignedURL)

	return &controllerEnv{
		router:   router,
		products: products,
		variants: variants,
		hub:      hub,
		redis:    mr,
	}
}

// teeRequest is a 2x2 color/size catalog. TEE-BLUE-M is out of stock.
func teeRequest() CreateProductRequest {
	return CreateProductRequest{
		Name:  "Crew Tee",
		Brand: "Shoplive",
		SKUs: []SKURequest{
			{Code: "TEE-RED-S", Price: 19000, StockQuantity: 4, Media: []SKUMediaRequest{
				{URL: "https://cdn.example/red-s.jpg"},
			}},
			{Code: "TEE-RED-M", Price: 19000, StockQuantity: 2},
			{Code: "TEE-BLUE-S", Price: 21000, StockQuantity: 1},
			{Code: "TEE-BLUE-M", Price: 21000, StockQuantity: 0},
		},
		Dimensions: []VariantDimensionRequest{
			{Name: "Size", Values: []VariantValueRequest{
				{Name: "S", SKUCodes: []string{"TEE-RED-S", "TEE-BLUE-S"}},
				{Name: "M", SKUCodes: []string{"TEE-RED-M", "TEE-BLUE-M"}},
			}},
			{Name: "Color", Values: []VariantValueRequest{
				{Name: "Red", SKUCodes: []string{"TEE-RED-S", "TEE-RED-M"}},
				{Name: "Blue", SKUCodes: []string{"TEE-BLUE-S", "TEE-BLUE-M"}},
			}},
		},
	}
}

func createTee(t *testing.T, env *controllerEnv) *model.Product {
	product := teeRequest().toModel()
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

func doJSON(t *testing.T, router http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			require.NoError(t, json.NewEncoder(&buf).Encode(body))
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	var body errorBody
	decode(t, w, &body)
	return body.Error
}
