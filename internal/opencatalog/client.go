package opencatalog

import (
	"context"
	"net/http"

	"github.com/rs/zerolog/log"
)

// Client looks products up in the OpenCatalog service. It is safe for
// concurrent use; calls share only the immutable config and the Getter.
type Client struct {
	cfg    ClientConfig
	getter Getter
}

// NewClient builds a client. A nil getter falls back to an HTTPGetter with
// no timeout of its own.
func NewClient(cfg ClientConfig, getter Getter) *Client {
	if getter == nil {
		getter = NewHTTPGetter(0)
	}
	return &Client{
		cfg:    cfg,
		getter: getter,
	}
}

// GetProduct fetches a product by GTIN (EAN/UPC). A non-empty accessToken is
// sent in the Api-Token header.
func (c *Client) GetProduct(ctx context.Context, lang, gtin, accessToken string) (*Product, error) {
	return c.requestProduct(ctx, c.gtinURL(lang, gtin), accessToken)
}

// GetProductByID fetches a product by its catalog product ID.
func (c *Client) GetProductByID(ctx context.Context, lang string, productID int) (*Product, error) {
	return c.requestProduct(ctx, c.productIDURL(lang, productID), "")
}

// GetProductByIDWithToken is GetProductByID with an Api-Token header.
func (c *Client) GetProductByIDWithToken(ctx context.Context, lang string, productID int, accessToken string) (*Product, error) {
	return c.requestProduct(ctx, c.productIDURL(lang, productID), accessToken)
}

// GetProductBySKU fetches a product by vendor and vendor part number.
func (c *Client) GetProductBySKU(ctx context.Context, lang, brand, sku string) (*Product, error) {
	return c.requestProduct(ctx, c.skuURL(lang, brand, sku), "")
}

// GetProductBySKUWithToken is GetProductBySKU with an Api-Token header.
func (c *Client) GetProductBySKUWithToken(ctx context.Context, lang, brand, sku, accessToken string) (*Product, error) {
	return c.requestProduct(ctx, c.skuURL(lang, brand, sku), accessToken)
}

// GetProductByXMLData parses an XML document without touching the network.
// The returned product has no request URL.
func (c *Client) GetProductByXMLData(xmlData string) (*Product, error) {
	return ParseProduct([]byte(xmlData), "")
}

// Fetch dispatches a Query to the lookup matching its identifier and
// forwards the access token whatever the identifier kind.
func (c *Client) Fetch(ctx context.Context, q Query, accessToken string) (*Product, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	return c.requestProduct(ctx, c.ProductURL(q), accessToken)
}

// ProductURL returns the request URL a lookup would use, for callers that
// key caches or archives on it.
func (c *Client) ProductURL(q Query) string {
	switch q.Kind() {
	case KindGTIN:
		return c.gtinURL(q.Lang, q.GTIN)
	case KindProductID:
		return c.productIDURL(q.Lang, q.ProductID)
	default:
		return c.skuURL(q.Lang, q.Brand, q.SKU)
	}
}

func (c *Client) requestProduct(ctx context.Context, requestURL, accessToken string) (*Product, error) {
	header := http.Header{}
	if accessToken != "" {
		header.Set(AccessTokenHeader, accessToken)
	}

	log.Debug().Str("url", RedactURL(requestURL)).Msg("requesting product")

	body, err := c.getter.Get(ctx, requestURL, header)
	if err != nil {
		return nil, err
	}
	return ParseProduct(body, requestURL)
}
