package models

// LookupRequest asks for one product. Exactly one identifier is used: GTIN,
// then ProductID, then Brand+SKU. AccessToken is never serialized, so it
// stays out of queued messages.
type LookupRequest struct {
	RequestID   string `json:"request_id"`
	Lang        string `json:"lang"`
	GTIN        string `json:"gtin,omitempty"`
	ProductID   int    `json:"product_id,omitempty"`
	Brand       string `json:"brand,omitempty"`
	SKU         string `json:"sku,omitempty"`
	AccessToken string `json:"-"`
}

// ProductFetchedEvent is published after every lookup that reached the
// catalog service.
type ProductFetchedEvent struct {
	RequestID string `json:"request_id"`
	URL       string `json:"url"`
	Lang      string `json:"lang"`
	IcecatID  string `json:"icecat_id,omitempty"`
	ProdID    string `json:"prod_id,omitempty"`
	Brand     string `json:"brand,omitempty"`
	Title     string `json:"title,omitempty"`
	Found     bool   `json:"found"`
	Cached    bool   `json:"cached"`
}
