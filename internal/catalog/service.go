package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/prudhivi99/Distributed-Systems/opencatalog/internal/cache"
	"github.com/prudhivi99/Distributed-Systems/opencatalog/internal/metrics"
	"github.com/prudhivi99/Distributed-Systems/opencatalog/internal/models"
	"github.com/prudhivi99/Distributed-Systems/opencatalog/internal/opencatalog"
)

var (
	ErrNotFound        = errors.New("product not found")
	ErrInvalidLookup   = errors.New("lookup needs a gtin, a product id or a brand and sku")
	ErrArchiveDisabled = errors.New("product archive is not configured")
	ErrQueueDisabled   = errors.New("lookup queue is not configured")
	ErrCacheDisabled   = errors.New("product cache is not configured")
	ErrQueuedToken     = errors.New("queued lookups use the service access token; send caller tokens to the product routes")
)

// Catalog is the subset of *opencatalog.Client the service drives.
type Catalog interface {
	GetProduct(ctx context.Context, lang, gtin, accessToken string) (*opencatalog.Product, error)
	GetProductByIDWithToken(ctx context.Context, lang string, productID int, accessToken string) (*opencatalog.Product, error)
	GetProductBySKUWithToken(ctx context.Context, lang, brand, sku, accessToken string) (*opencatalog.Product, error)
	GetProductByXMLData(xmlData string) (*opencatalog.Product, error)
	ProductURL(q opencatalog.Query) string
}

type Cache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}) error
	Purge(ctx context.Context) (int, error)
}

type Archive interface {
	Save(ctx context.Context, p *models.ArchivedProduct) error
	ListRecent(ctx context.Context, limit int) ([]models.ArchivedProduct, error)
}

type Publisher interface {
	PublishProductFetched(ctx context.Context, event models.ProductFetchedEvent) error
	PublishLookup(ctx context.Context, req models.LookupRequest) error
}

// Options carries the optional collaborators; nil fields are skipped.
type Options struct {
	Cache       Cache
	Archive     Archive
	Publisher   Publisher
	DefaultLang string
	AccessToken string
}

type Service struct {
	catalog Catalog
	opts    Options
}

func NewService(catalog Catalog, opts Options) *Service {
	if opts.DefaultLang == "" {
		opts.DefaultLang = "en"
	}
	return &Service{catalog: catalog, opts: opts}
}

// cachedProduct is what the cache keeps per request URL.
type cachedProduct struct {
	XML string `json:"xml"`
}

// Lookup resolves one product. A document whose return code is not "1"
// yields ErrNotFound; transport and parse errors come back from the client
// untouched.
func (s *Service) Lookup(ctx context.Context, req models.LookupRequest) (*opencatalog.Product, error) {
	const funcName = "Lookup"

	q := s.query(req)
	kind := q.Kind()
	if kind == opencatalog.KindNone {
		metrics.ObserveLookup(kind, "invalid")
		return nil, ErrInvalidLookup
	}
	if req.RequestID == "" {
		req.RequestID = uuid.NewString()
	}
	token := req.AccessToken
	if token == "" {
		token = s.opts.AccessToken
	}

	requestURL := s.catalog.ProductURL(q)
	safeURL := opencatalog.RedactURL(requestURL)

	logger := log.With().
		Str("func", funcName).
		Str("request_id", req.RequestID).
		Str("kind", string(kind)).
		Str("lang", q.Lang).
		Logger()

	cacheKey := cache.ProductKey(safeURL, token)
	if product := s.fromCache(ctx, cacheKey, requestURL); product != nil {
		logger.Debug().Msg("cache hit")
		metrics.ObserveLookup(kind, "cached")
		s.publish(ctx, req.RequestID, q.Lang, safeURL, product, true)
		return product, nil
	}

	logger.Info().Msg("fetching product")

	product, err := s.fetch(ctx, q, token)
	if err != nil {
		logger.Warn().Err(err).Msg("lookup failed")
		metrics.ObserveLookup(kind, "error")
		return nil, err
	}

	s.publish(ctx, req.RequestID, q.Lang, safeURL, product, false)

	if !product.Found() {
		metrics.ObserveLookup(kind, "not_found")
		if msg := product.ErrorMessage(); msg != "" {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, msg)
		}
		return nil, ErrNotFound
	}

	metrics.ObserveLookup(kind, "found")
	s.toCache(ctx, cacheKey, product)
	s.archive(ctx, q.Lang, safeURL, product)
	return product, nil
}

// ParseXML maps a caller supplied document; nothing is cached or archived.
func (s *Service) ParseXML(xmlData string) (*opencatalog.Product, error) {
	return s.catalog.GetProductByXMLData(xmlData)
}

// Enqueue hands a lookup to the queue consumer and returns its request ID.
// Queued lookups run with the configured access token; caller tokens never
// enter the queue.
func (s *Service) Enqueue(ctx context.Context, req models.LookupRequest) (string, error) {
	if s.opts.Publisher == nil {
		return "", ErrQueueDisabled
	}
	if req.AccessToken != "" {
		return "", ErrQueuedToken
	}
	if s.query(req).Kind() == opencatalog.KindNone {
		return "", ErrInvalidLookup
	}
	if req.RequestID == "" {
		req.RequestID = uuid.NewString()
	}
	if req.Lang == "" {
		req.Lang = s.opts.DefaultLang
	}
	if err := s.opts.Publisher.PublishLookup(ctx, req); err != nil {
		return "", err
	}
	return req.RequestID, nil
}

// PurgeCache drops every cached data-sheet and reports how many went.
func (s *Service) PurgeCache(ctx context.Context) (int, error) {
	if s.opts.Cache == nil {
		return 0, ErrCacheDisabled
	}
	n, err := s.opts.Cache.Purge(ctx)
	if err != nil {
		return n, err
	}
	log.Info().Int("entries", n).Msg("product cache purged")
	return n, nil
}

// RecentProducts lists the latest archived data-sheets.
func (s *Service) RecentProducts(ctx context.Context, limit int) ([]models.ArchivedProduct, error) {
	if s.opts.Archive == nil {
		return nil, ErrArchiveDisabled
	}
	return s.opts.Archive.ListRecent(ctx, limit)
}

func (s *Service) query(req models.LookupRequest) opencatalog.Query {
	lang := req.Lang
	if lang == "" {
		lang = s.opts.DefaultLang
	}
	return opencatalog.Query{
		Lang:      lang,
		GTIN:      req.GTIN,
		ProductID: req.ProductID,
		Brand:     req.Brand,
		SKU:       req.SKU,
	}
}

func (s *Service) fetch(ctx context.Context, q opencatalog.Query, token string) (*opencatalog.Product, error) {
	switch q.Kind() {
	case opencatalog.KindGTIN:
		return s.catalog.GetProduct(ctx, q.Lang, q.GTIN, token)
	case opencatalog.KindProductID:
		return s.catalog.GetProductByIDWithToken(ctx, q.Lang, q.ProductID, token)
	default:
		return s.catalog.GetProductBySKUWithToken(ctx, q.Lang, q.Brand, q.SKU, token)
	}
}

func (s *Service) fromCache(ctx context.Context, key, requestURL string) *opencatalog.Product {
	if s.opts.Cache == nil {
		return nil
	}

	var entry cachedProduct
	err := s.opts.Cache.Get(ctx, key, &entry)
	if errors.Is(err, cache.ErrMiss) {
		metrics.ObserveCache("miss")
		return nil
	}
	if err != nil {
		metrics.ObserveCache("error")
		log.Warn().Err(err).Str("key", key).Msg("cache read failed")
		return nil
	}

	product, err := opencatalog.ParseProduct([]byte(entry.XML), requestURL)
	if err != nil {
		metrics.ObserveCache("error")
		log.Warn().Err(err).Str("key", key).Msg("cached product is unreadable")
		return nil
	}
	metrics.ObserveCache("hit")
	return product
}

func (s *Service) toCache(ctx context.Context, key string, product *opencatalog.Product) {
	if s.opts.Cache == nil {
		return
	}
	if err := s.opts.Cache.Set(ctx, key, cachedProduct{XML: product.XML}); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("failed to cache product")
	}
}

func (s *Service) archive(ctx context.Context, lang, key string, product *opencatalog.Product) {
	if s.opts.Archive == nil {
		return
	}
	record := &models.ArchivedProduct{
		URL:      key,
		Lang:     lang,
		IcecatID: product.ID(),
		ProdID:   product.ProdID(),
		Brand:    product.Brand(),
		Title:    product.Title(),
		RawXML:   product.XML,
	}
	if err := s.opts.Archive.Save(ctx, record); err != nil {
		log.Warn().Err(err).Str("url", key).Msg("failed to archive product")
	}
}

func (s *Service) publish(ctx context.Context, requestID, lang, key string, product *opencatalog.Product, cached bool) {
	if s.opts.Publisher == nil {
		return
	}
	event := models.ProductFetchedEvent{
		RequestID: requestID,
		URL:       key,
		Lang:      lang,
		IcecatID:  product.ID(),
		ProdID:    product.ProdID(),
		Brand:     product.Brand(),
		Title:     product.Title(),
		Found:     product.Found(),
		Cached:    cached,
	}
	if err := s.opts.Publisher.PublishProductFetched(ctx, event); err != nil {
		log.Warn().Err(err).Str("request_id", requestID).Msg("failed to publish event")
	}
}
