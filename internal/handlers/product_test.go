package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/prudhivi99/Distributed-Systems/opencatalog/internal/catalog"
	"github.com/prudhivi99/Distributed-Systems/opencatalog/internal/models"
	"github.com/prudhivi99/Distributed-Systems/opencatalog/internal/opencatalog"
)

const productXML = `<?xml version="1.0" encoding="UTF-8"?>
<ICECAT-interface>
  <Product Code="1" ID="1234" Prod_id="2X7X3EA" Name="ProBook 450 G8" Title="HP ProBook 450 G8">
    <Supplier ID="1" Name="HP"/>
  </Product>
</ICECAT-interface>`

type MockService struct {
	LookupFunc         func(ctx context.Context, req models.LookupRequest) (*opencatalog.Product, error)
	ParseXMLFunc       func(xmlData string) (*opencatalog.Product, error)
	EnqueueFunc        func(ctx context.Context, req models.LookupRequest) (string, error)
	RecentProductsFunc func(ctx context.Context, limit int) ([]models.ArchivedProduct, error)
	PurgeCacheFunc     func(ctx context.Context) (int, error)

	lookups []models.LookupRequest
}

func (m *MockService) Lookup(ctx context.Context, req models.LookupRequest) (*opencatalog.Product, error) {
	m.lookups = append(m.lookups, req)
	return m.LookupFunc(ctx, req)
}

func (m *MockService) ParseXML(xmlData string) (*opencatalog.Product, error) {
	return m.ParseXMLFunc(xmlData)
}

func (m *MockService) Enqueue(ctx context.Context, req models.LookupRequest) (string, error) {
	return m.EnqueueFunc(ctx, req)
}

func (m *MockService) RecentProducts(ctx context.Context, limit int) ([]models.ArchivedProduct, error) {
	return m.RecentProductsFunc(ctx, limit)
}

func (m *MockService) PurgeCache(ctx context.Context) (int, error) {
	return m.PurgeCacheFunc(ctx)
}

func newRouter(svc ProductService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewProductHandler(svc, "catalog-service").Register(r)
	return r
}

func serve(r http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func parsedProduct(t *testing.T) *opencatalog.Product {
	t.Helper()
	p, err := opencatalog.ParseProduct([]byte(productXML), "")
	if err != nil {
		t.Fatalf("fixture: %v", err)
	}
	return p
}

func TestLookupRoutes(t *testing.T) {
	product := parsedProduct(t)
	svc := &MockService{
		LookupFunc: func(context.Context, models.LookupRequest) (*opencatalog.Product, error) {
			return product, nil
		},
	}
	r := newRouter(svc)

	tests := []struct {
		path string
		want models.LookupRequest
	}{
		{"/products/gtin/0194850123456?lang=nl", models.LookupRequest{Lang: "nl", GTIN: "0194850123456", AccessToken: "tok"}},
		{"/products/id/1234", models.LookupRequest{ProductID: 1234, AccessToken: "tok"}},
		{"/products/brand/HP/sku/2X7X3EA?lang=de", models.LookupRequest{Lang: "de", Brand: "HP", SKU: "2X7X3EA", AccessToken: "tok"}},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, tt.path, nil)
		req.Header.Set(opencatalog.AccessTokenHeader, "tok")
		rec := serve(r, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("%s status got=%d want=%d body=%s", tt.path, rec.Code, http.StatusOK, rec.Body)
		}
		got := svc.lookups[len(svc.lookups)-1]
		if got != tt.want {
			t.Errorf("%s request got=%+v want=%+v", tt.path, got, tt.want)
		}

		var summary models.ProductSummary
		if err := json.Unmarshal(rec.Body.Bytes(), &summary); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if summary.Title != "HP ProBook 450 G8" || summary.Brand != "HP" {
			t.Errorf("%s summary got=%+v", tt.path, summary)
		}
		if summary.Data != nil {
			t.Errorf("data must only be included on request")
		}
	}
}

func TestLookupIncludeDataAndRawXML(t *testing.T) {
	product := parsedProduct(t)
	r := newRouter(&MockService{
		LookupFunc: func(context.Context, models.LookupRequest) (*opencatalog.Product, error) {
			return product, nil
		},
	})

	rec := serve(r, httptest.NewRequest(http.MethodGet, "/products/gtin/1?include=data", nil))
	var summary models.ProductSummary
	if err := json.Unmarshal(rec.Body.Bytes(), &summary); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if _, ok := summary.Data["ICECAT-interface"]; !ok {
		t.Errorf("expected generic mapping in response, got %v", summary.Data)
	}

	rec = serve(r, httptest.NewRequest(http.MethodGet, "/products/gtin/1?format=xml", nil))
	if rec.Body.String() != productXML {
		t.Errorf("raw xml got=%q", rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/xml") {
		t.Errorf("content type got=%q", ct)
	}
}

func TestLookupErrorStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not found", fmt.Errorf("%w: no such product", catalog.ErrNotFound), http.StatusNotFound},
		{"invalid", catalog.ErrInvalidLookup, http.StatusBadRequest},
		{"parse", &opencatalog.ParseError{Err: errors.New("EOF")}, http.StatusBadGateway},
		{"transport", errors.New("connection refused"), http.StatusBadGateway},
		{"timeout", context.DeadlineExceeded, http.StatusGatewayTimeout},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newRouter(&MockService{
				LookupFunc: func(context.Context, models.LookupRequest) (*opencatalog.Product, error) {
					return nil, tt.err
				},
			})
			rec := serve(r, httptest.NewRequest(http.MethodGet, "/products/gtin/1", nil))
			if rec.Code != tt.want {
				t.Errorf("status got=%d want=%d", rec.Code, tt.want)
			}
		})
	}
}

func TestGetByIDRejectsBadID(t *testing.T) {
	svc := &MockService{}
	r := newRouter(svc)

	for _, path := range []string{"/products/id/abc", "/products/id/0", "/products/id/-3"} {
		rec := serve(r, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s status got=%d want=%d", path, rec.Code, http.StatusBadRequest)
		}
	}
	if len(svc.lookups) != 0 {
		t.Errorf("service must not be called for a bad id")
	}
}

func TestParseXMLRoute(t *testing.T) {
	var posted string
	r := newRouter(&MockService{
		ParseXMLFunc: func(xmlData string) (*opencatalog.Product, error) {
			posted = xmlData
			if xmlData == "" {
				return nil, &opencatalog.ParseError{Err: errors.New("EOF")}
			}
			return opencatalog.ParseProduct([]byte(xmlData), "")
		},
	})

	rec := serve(r, httptest.NewRequest(http.MethodPost, "/products/xml", strings.NewReader(productXML)))
	if rec.Code != http.StatusOK {
		t.Fatalf("status got=%d body=%s", rec.Code, rec.Body)
	}
	if posted != productXML {
		t.Errorf("body must reach the parser unchanged")
	}

	rec = serve(r, httptest.NewRequest(http.MethodPost, "/products/xml", strings.NewReader("")))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("empty document status got=%d want=%d", rec.Code, http.StatusBadRequest)
	}
}

func TestEnqueueLookup(t *testing.T) {
	var queued models.LookupRequest
	svc := &MockService{
		EnqueueFunc: func(_ context.Context, req models.LookupRequest) (string, error) {
			queued = req
			if req.AccessToken != "" {
				return "", catalog.ErrQueuedToken
			}
			if req.GTIN == "" {
				return "", catalog.ErrInvalidLookup
			}
			return "req-1", nil
		},
	}
	r := newRouter(svc)

	req := httptest.NewRequest(http.MethodPost, "/lookups", strings.NewReader(`{"gtin":"123","lang":"en","access_token":"ignored"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := serve(r, req)

	if rec.Code != http.StatusAccepted {
		t.Fatalf("status got=%d want=%d", rec.Code, http.StatusAccepted)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["request_id"] != "req-1" {
		t.Errorf("request id got=%q", body["request_id"])
	}
	if queued.AccessToken != "" {
		t.Errorf("a token in the body must not be bound, got %q", queued.AccessToken)
	}

	req = httptest.NewRequest(http.MethodPost, "/lookups", strings.NewReader(`{"gtin":"123"}`))
	req.Header.Set(opencatalog.AccessTokenHeader, "tok")
	rec = serve(r, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("tokened lookup status got=%d want=%d", rec.Code, http.StatusBadRequest)
	}
	if queued.AccessToken != "tok" {
		t.Errorf("token header must reach the service to be refused, got %q", queued.AccessToken)
	}

	rec = serve(r, httptest.NewRequest(http.MethodPost, "/lookups", strings.NewReader(`{"lang":"en"}`)))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("invalid lookup status got=%d want=%d", rec.Code, http.StatusBadRequest)
	}

	svc.EnqueueFunc = func(context.Context, models.LookupRequest) (string, error) {
		return "", catalog.ErrQueueDisabled
	}
	rec = serve(r, httptest.NewRequest(http.MethodPost, "/lookups", strings.NewReader(`{"gtin":"1"}`)))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("disabled queue status got=%d want=%d", rec.Code, http.StatusServiceUnavailable)
	}
}

func TestPurgeCache(t *testing.T) {
	svc := &MockService{
		PurgeCacheFunc: func(context.Context) (int, error) { return 3, nil },
	}
	r := newRouter(svc)

	rec := serve(r, httptest.NewRequest(http.MethodDelete, "/cache", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status got=%d want=%d", rec.Code, http.StatusOK)
	}
	var body map[string]int
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["purged"] != 3 {
		t.Errorf("purged got=%d want=3", body["purged"])
	}

	svc.PurgeCacheFunc = func(context.Context) (int, error) { return 0, catalog.ErrCacheDisabled }
	rec = serve(r, httptest.NewRequest(http.MethodDelete, "/cache", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("disabled cache status got=%d want=%d", rec.Code, http.StatusServiceUnavailable)
	}
}

func TestListArchive(t *testing.T) {
	var gotLimit int
	svc := &MockService{
		RecentProductsFunc: func(_ context.Context, limit int) ([]models.ArchivedProduct, error) {
			gotLimit = limit
			return []models.ArchivedProduct{{ID: 1, URL: "https://catalog.example.com?lang=en", Title: "HP ProBook 450 G8"}}, nil
		},
	}
	r := newRouter(svc)

	rec := serve(r, httptest.NewRequest(http.MethodGet, "/archive", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status got=%d", rec.Code)
	}
	if gotLimit != defaultArchiveLimit {
		t.Errorf("limit got=%d want=%d", gotLimit, defaultArchiveLimit)
	}

	serve(r, httptest.NewRequest(http.MethodGet, "/archive?limit=5", nil))
	if gotLimit != 5 {
		t.Errorf("limit got=%d want=5", gotLimit)
	}

	rec = serve(r, httptest.NewRequest(http.MethodGet, "/archive?limit=zero", nil))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad limit status got=%d want=%d", rec.Code, http.StatusBadRequest)
	}

	svc.RecentProductsFunc = func(context.Context, int) ([]models.ArchivedProduct, error) {
		return nil, catalog.ErrArchiveDisabled
	}
	rec = serve(r, httptest.NewRequest(http.MethodGet, "/archive", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("disabled archive status got=%d want=%d", rec.Code, http.StatusServiceUnavailable)
	}
}

func TestHealthCheck(t *testing.T) {
	rec := serve(newRouter(&MockService{}), httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "catalog-service") {
		t.Errorf("health got=%d %s", rec.Code, rec.Body)
	}
}
