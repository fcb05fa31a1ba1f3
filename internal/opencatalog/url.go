package opencatalog

import (
	"net/url"
	"strconv"
	"strings"
)

const outputFormat = "productxml"

// Query string keys understood by the service.
const (
	keyLang      = "lang"
	keyOutput    = "output"
	keyGTIN      = "ean_upc"
	keyProductID = "product_id"
	keySKU       = "prod_id"
	keyVendor    = "vendor"
)

func (c *Client) baseURL(lang string) string {
	var b strings.Builder
	b.WriteString(c.cfg.scheme())
	b.WriteString("://")
	if c.cfg.HTTPAuth != "" {
		b.WriteString(c.cfg.HTTPAuth)
		b.WriteString("@")
	}
	b.WriteString(c.cfg.HTTPURL)
	b.WriteString("?")
	b.WriteString(clause(keyLang, lang))
	b.WriteString(";")
	b.WriteString(clause(keyOutput, outputFormat))
	return b.String()
}

func (c *Client) gtinURL(lang, gtin string) string {
	return c.baseURL(lang) + ";" + clause(keyGTIN, gtin)
}

func (c *Client) productIDURL(lang string, productID int) string {
	return c.baseURL(lang) + ";" + clause(keyProductID, strconv.Itoa(productID))
}

// skuURL puts prod_id before vendor.
func (c *Client) skuURL(lang, brand, sku string) string {
	return c.baseURL(lang) + ";" + clause(keySKU, sku) + ";" + clause(keyVendor, brand)
}

func clause(key, value string) string {
	return key + "=" + escape(value)
}

// escape keeps ';' and '&' inside a value from splitting the query.
func escape(v string) string {
	return strings.ReplaceAll(url.QueryEscape(v), "+", "%20")
}

// RedactURL hides the embedded credentials before a URL is logged.
func RedactURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "<unparseable url>"
	}
	return u.Redacted()
}
