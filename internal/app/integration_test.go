package app

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/ikkim/shoplive-catalog/config"
	"github.com/ikkim/shoplive-catalog/internal/app/controller"
	"github.com/ikkim/shoplive-catalog/internal/app/model"
	"github.com/ikkim/shoplive-catalog/internal/app/repository"
	"github.com/ikkim/shoplive-catalog/internal/app/service"
	"github.com/ikkim/shoplive-catalog/internal/db"
	"github.com/ikkim/shoplive-catalog/internal/middleware"
	"github.com/ikkim/shoplive-catalog/internal/router"
	"github.com/ikkim/shoplive-catalog/internal/storage"
	"github.com/ikkim/shoplive-catalog/internal/variant"
	ws "github.com/ikkim/shoplive-catalog/internal/websocket"
	"github.com/ikkim/shoplive-catalog/pkg/util"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testJWTSecret = "integration-secret"

type TestServer struct {
	Router     *gin.Engine
	AdminToken string
}

func setupIntegrationTest(t *testing.T) *TestServer {
	gin.SetMode(gin.TestMode)

	// Setup database
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.CleanupTestDB(testDB) })

	// Setup redis
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	cfg := &config.Config{
		Server:  config.ServerConfig{GinMode: gin.TestMode},
		CORS:    config.CORSConfig{AllowedOrigins: []string{"http://localhost:3000"}},
		Session: config.SessionConfig{TTL: 30 * time.Minute},
		S3: config.S3Config{
			Region:          "ap-northeast-2",
			Bucket:          "shoplive-media",
			AccessKeyID:     "AKIATESTKEY",
			SecretAccessKey: "test-secret",
			BaseURL:         "https://cdn.example.com",
		},
	}
	s3 := storage.NewS3Storage(cfg.S3)

	// Setup repositories and services
	productRepo := repository.NewProductRepository(testDB)
	hub := ws.NewHub()
	t.Cleanup(hub.CloseAll)
	indexCache := service.NewIndexCache(productRepo, s3, service.DefaultIndexTTL)
	productService := service.NewProductService(productRepo, service.Invalidators{indexCache, hub})
	variantService := service.NewVariantService(indexCache, repository.NewSelectionStore(client, cfg.Session.TTL))
	auditService := service.NewCatalogAuditService(productRepo, s3)

	r := router.NewRouter(
		controller.NewProductController(productService),
		controller.NewVariantController(variantService),
		controller.NewVariantSocketController(variantService, hub, cfg.CORS.AllowedOrigins),
		controller.NewUploadController(s3, productService),
		controller.NewAuditController(auditService),
		middleware.NewAuthMiddleware(testJWTSecret),
		testDB,
		client,
		cfg,
	)

	token, err := util.GenerateToken("catalog-ops", middleware.RoleAdmin, testJWTSecret, time.Hour)
	require.NoError(t, err)

	return &TestServer{
		Router:     r.Setup(),
		AdminToken: token,
	}
}

func (s *TestServer) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.Router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}

func findValue(t *testing.T, product model.Product, name string) variant.ValueID {
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

func findSKU(t *testing.T, product model.Product, code string) uint {
	for _, sku := range product.SKUs {
		if sku.Code == code {
			return sku.ID
		}
	}
	t.Fatalf("no sku %s", code)
	return 0
}

var teeCatalog = map[string]interface{}{
	"name":  "Crew Tee",
	"brand": "Shoplive",
	"skus": []map[string]interface{}{
		{"code": "TEE-RED-S", "price": 19000, "stock_quantity": 4, "media": []map[string]interface{}{
			{"url": "https://cdn.example/red-s.jpg"},
		}},
		{"code": "TEE-RED-M", "price": 19000, "stock_quantity": 2},
		{"code": "TEE-BLUE-S", "price": 21000, "stock_quantity": 1},
		{"code": "TEE-BLUE-M", "price": 21000, "stock_quantity": 0},
	},
	"dimensions": []map[string]interface{}{
		{"name": "Size", "values": []map[string]interface{}{
			{"name": "S", "sku_codes": []string{"TEE-RED-S", "TEE-BLUE-S"}},
			{"name": "M", "sku_codes": []string{"TEE-RED-M", "TEE-BLUE-M"}},
		}},
		{"name": "Color", "values": []map[string]interface{}{
			{"name": "Red", "sku_codes": []string{"TEE-RED-S", "TEE-RED-M"}},
			{"name": "Blue", "sku_codes": []string{"TEE-BLUE-S", "TEE-BLUE-M"}},
		}},
	},
}

func TestIntegration_ShopperFlow(t *testing.T) {
	server := setupIntegrationTest(t)

	// Admin creates the catalog
	w := server.do(t, http.MethodPost, "/api/v1/products", server.AdminToken, teeCatalog)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var created struct {
		Product model.Product `json:"product"`
	}
	decodeBody(t, w, &created)
	product := created.Product
	require.NotZero(t, product.ID)
	red, blue, m := findValue(t, product, "Red"), findValue(t, product, "Blue"), findValue(t, product, "M")

	// Shopper sees the default view
	var page struct {
		ProductID uint         `json:"product_id"`
		View      variant.View `json:"view"`
	}
	viewPath := fmt.Sprintf("/api/v1/products/%d/variants", product.ID)
	w = server.do(t, http.MethodGet, viewPath, "", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	decodeBody(t, w, &page)
	assert.Equal(t, []variant.ValueID{red}, page.View.Selection)
	assert.Nil(t, page.View.ResolvedSKU)

	// Shopper starts a session and picks a size
	w = server.do(t, http.MethodPost, viewPath+"/sessions", "", nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var session service.SessionView
	decodeBody(t, w, &session)
	sessionPath := "/api/v1/variants/sessions/" + session.SessionID

	w = server.do(t, http.MethodPost, sessionPath+"/choose", "", map[string]interface{}{
		"value_id":        m,
		"dimension_index": 1,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	decodeBody(t, w, &session)
	assert.True(t, session.IsSelectionComplete)
	require.NotNil(t, session.ResolvedSKU)
	assert.Equal(t, "TEE-RED-M", session.ResolvedSKU.Code)

	// Blue M is sold out but still resolves
	w = server.do(t, http.MethodGet, fmt.Sprintf("%s?selected=%d,%d", viewPath, blue, m), "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	decodeBody(t, w, &page)
	require.NotNil(t, page.View.ResolvedSKU)
	assert.Equal(t, "TEE-BLUE-M", page.View.ResolvedSKU.Code)
	assert.False(t, page.View.ResolvedSKU.InStock)

	// Admin restocks it and shoppers see fresh data
	blueM := findSKU(t, product, "TEE-BLUE-M")
	w = server.do(t, http.MethodPatch, fmt.Sprintf("/api/v1/products/%d/skus/%d/stock", product.ID, blueM), server.AdminToken,
		map[string]int{"stock_quantity": 5})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = server.do(t, http.MethodGet, fmt.Sprintf("%s?selected=%d,%d", viewPath, blue, m), "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	decodeBody(t, w, &page)
	require.NotNil(t, page.View.ResolvedSKU)
	assert.True(t, page.View.ResolvedSKU.InStock)

	// Audit is clean
	w = server.do(t, http.MethodGet, fmt.Sprintf("/api/v1/products/%d/audit", product.ID), server.AdminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var audit struct {
		Report service.AuditReport `json:"report"`
		Clean  bool                `json:"clean"`
	}
	decodeBody(t, w, &audit)
	assert.True(t, audit.Clean)
	assert.Equal(t, 0, audit.Report.OutOfStockSKUs)

	// Deleting the product ends its sessions
	w = server.do(t, http.MethodDelete, fmt.Sprintf("/api/v1/products/%d", product.ID), server.AdminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = server.do(t, http.MethodGet, viewPath, "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = server.do(t, http.MethodGet, sessionPath, "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestIntegration_ShopperCannotEditCatalog(t *testing.T) {
	server := setupIntegrationTest(t)

	w := server.do(t, http.MethodPost, "/api/v1/products", "", teeCatalog)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = server.do(t, http.MethodPost, "/api/v1/products", "not-a-token", teeCatalog)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = server.do(t, http.MethodGet, "/api/v1/products", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list struct {
		Count int `json:"count"`
	}
	decodeBody(t, w, &list)
	assert.Equal(t, 0, list.Count)
}
