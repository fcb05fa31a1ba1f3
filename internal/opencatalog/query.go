package opencatalog

import "errors"

// ErrEmptyQuery is returned when a Query carries no identifier.
var ErrEmptyQuery = errors.New("query has no product identifier")

// Kind names the identifier scheme of a Query.
type Kind string

const (
	KindNone      Kind = ""
	KindGTIN      Kind = "gtin"
	KindProductID Kind = "product_id"
	KindSKU       Kind = "sku"
)

// Query identifies one product. Only one identifier is used: GTIN wins over
// ProductID, which wins over Brand+SKU.
type Query struct {
	Lang      string `json:"lang"`
	GTIN      string `json:"gtin,omitempty"`
	ProductID int    `json:"product_id,omitempty"`
	Brand     string `json:"brand,omitempty"`
	SKU       string `json:"sku,omitempty"`
}

func (q Query) Kind() Kind {
	switch {
	case q.GTIN != "":
		return KindGTIN
	case q.ProductID != 0:
		return KindProductID
	case q.Brand != "" && q.SKU != "":
		return KindSKU
	default:
		return KindNone
	}
}

// Validate only checks that some identifier is present; the values
// themselves are left to the service.
func (q Query) Validate() error {
	if q.Kind() == KindNone {
		return ErrEmptyQuery
	}
	return nil
}
