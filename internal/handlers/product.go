package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/prudhivi99/Distributed-Systems/opencatalog/internal/catalog"
	"github.com/prudhivi99/Distributed-Systems/opencatalog/internal/models"
	"github.com/prudhivi99/Distributed-Systems/opencatalog/internal/opencatalog"
)

const defaultArchiveLimit = 20

type ProductService interface {
	Lookup(ctx context.Context, req models.LookupRequest) (*opencatalog.Product, error)
	ParseXML(xmlData string) (*opencatalog.Product, error)
	Enqueue(ctx context.Context, req models.LookupRequest) (string, error)
	RecentProducts(ctx context.Context, limit int) ([]models.ArchivedProduct, error)
	PurgeCache(ctx context.Context) (int, error)
}

type ProductHandler struct {
	service     ProductService
	serviceName string
}

func NewProductHandler(service ProductService, serviceName string) *ProductHandler {
	return &ProductHandler{service: service, serviceName: serviceName}
}

// Register mounts the product routes on r.
func (h *ProductHandler) Register(r gin.IRoutes) {
	r.GET("/health", h.HealthCheck)
	r.GET("/products/gtin/:gtin", h.GetByGTIN)
	r.GET("/products/id/:id", h.GetByID)
	r.GET("/products/brand/:brand/sku/:sku", h.GetBySKU)
	r.POST("/products/xml", h.ParseXML)
	r.POST("/lookups", h.EnqueueLookup)
	r.GET("/archive", h.ListArchive)
	r.DELETE("/cache", h.PurgeCache)
}

// HealthCheck returns server status
func (h *ProductHandler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy", "service": h.serviceName})
}

func (h *ProductHandler) GetByGTIN(c *gin.Context) {
	req := lookupRequest(c)
	req.GTIN = c.Param("gtin")
	h.lookup(c, req)
}

func (h *ProductHandler) GetByID(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product ID"})
		return
	}

	req := lookupRequest(c)
	req.ProductID = id
	h.lookup(c, req)
}

func (h *ProductHandler) GetBySKU(c *gin.Context) {
	req := lookupRequest(c)
	req.Brand = c.Param("brand")
	req.SKU = c.Param("sku")
	h.lookup(c, req)
}

// ParseXML maps a posted OpenCatalog document without calling the catalog.
func (h *ProductHandler) ParseXML(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	product, err := h.service.ParseXML(string(body))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, catalog.Summarize(product, includeData(c)))
}

// EnqueueLookup queues a lookup for the background consumer.
func (h *ProductHandler) EnqueueLookup(c *gin.Context) {
	var req models.LookupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.AccessToken == "" {
		req.AccessToken = c.GetHeader(opencatalog.AccessTokenHeader)
	}

	id, err := h.service.Enqueue(c.Request.Context(), req)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"request_id": id})
}

// ListArchive returns the most recently archived data-sheets.
func (h *ProductHandler) ListArchive(c *gin.Context) {
	limit := defaultArchiveLimit
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		limit = n
	}

	products, err := h.service.RecentProducts(c.Request.Context(), limit)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, products)
}

// PurgeCache empties the product cache.
func (h *ProductHandler) PurgeCache(c *gin.Context) {
	n, err := h.service.PurgeCache(c.Request.Context())
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"purged": n})
}

func (h *ProductHandler) lookup(c *gin.Context, req models.LookupRequest) {
	product, err := h.service.Lookup(c.Request.Context(), req)
	if err != nil {
		log.Debug().Err(err).Str("path", c.FullPath()).Msg("lookup failed")
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	if c.Query("format") == "xml" {
		c.Data(http.StatusOK, "application/xml; charset=utf-8", []byte(product.XML))
		return
	}
	c.JSON(http.StatusOK, catalog.Summarize(product, includeData(c)))
}

func lookupRequest(c *gin.Context) models.LookupRequest {
	return models.LookupRequest{
		Lang:        c.Query("lang"),
		AccessToken: c.GetHeader(opencatalog.AccessTokenHeader),
	}
}

func includeData(c *gin.Context) bool {
	return c.Query("include") == "data"
}

func statusFor(err error) int {
	var parseErr *opencatalog.ParseError
	switch {
	case errors.Is(err, catalog.ErrInvalidLookup), errors.Is(err, catalog.ErrQueuedToken):
		return http.StatusBadRequest
	case errors.Is(err, catalog.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, catalog.ErrArchiveDisabled), errors.Is(err, catalog.ErrQueueDisabled),
		errors.Is(err, catalog.ErrCacheDisabled):
		return http.StatusServiceUnavailable
	case errors.As(err, &parseErr):
		return http.StatusBadGateway
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusBadGateway
	}
}
