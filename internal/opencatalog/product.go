package opencatalog

import (
	"fmt"
	"sort"
	"strings"

	"github.com/clbanning/mxj/v2"
)

const (
	rootElement    = "ICECAT-interface"
	productElement = "Product"

	// CodeFound is the Product@Code value of a successful lookup.
	CodeFound = "1"
	// CodeNotFound is the Product@Code value the service uses for errors.
	CodeNotFound = "-1"
)

// ParseError reports an XML document that could not be mapped. No Product is
// ever returned alongside it.
type ParseError struct {
	URL string
	Err error
}

func (e *ParseError) Error() string {
	if e.URL == "" {
		return fmt.Sprintf("failed to parse product xml: %v", e.Err)
	}
	return fmt.Sprintf("failed to parse product xml from %s: %v", RedactURL(e.URL), e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Product is one parsed OpenCatalog document. Data is the generic mapping of
// the XML: attributes under "#attr", text under "#text" and document order
// under "#seq". XML and URL record where it came from.
type Product struct {
	Data mxj.MapSeq `json:"data"`
	XML  string  `json:"-"`
	URL  string  `json:"-"`
}

// ParseProduct maps raw XML into a Product tagged with the request URL.
// Anything but a single well-formed root element is a ParseError.
func ParseProduct(raw []byte, requestURL string) (*Product, error) {
	label, err := checkDocument(raw)
	if err != nil {
		return nil, &ParseError{URL: requestURL, Err: err}
	}
	m, err := decodeSeq(raw, label)
	if err != nil {
		return nil, &ParseError{URL: requestURL, Err: err}
	}
	if len(m) == 0 {
		return nil, &ParseError{URL: requestURL, Err: errNoRoot}
	}
	return &Product{
		Data: m,
		XML:  string(raw),
		URL:  requestURL,
	}, nil
}

// Spec is one presented feature value of a product.
type Spec struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

func (p *Product) product() map[string]interface{} {
	root, _ := p.Data[rootElement].(map[string]interface{})
	return child(root, productElement)
}

// Code is the service's return code; "1" on success.
func (p *Product) Code() string { return attr(p.product(), "Code") }

// Found reports whether the service returned a data-sheet.
func (p *Product) Found() bool { return p.Code() == CodeFound }

func (p *Product) ErrorMessage() string { return attr(p.product(), "ErrorMessage") }

// ID is the catalog's numeric product ID, as text.
func (p *Product) ID() string { return attr(p.product(), "ID") }

// ProdID is the vendor part number.
func (p *Product) ProdID() string { return attr(p.product(), "Prod_id") }

func (p *Product) Name() string { return attr(p.product(), "Name") }

func (p *Product) Title() string { return attr(p.product(), "Title") }

func (p *Product) ReleaseDate() string { return attr(p.product(), "ReleaseDate") }

func (p *Product) HighPic() string { return attr(p.product(), "HighPic") }

func (p *Product) Brand() string {
	return attr(child(p.product(), "Supplier"), "Name")
}

func (p *Product) BrandLogo() string {
	return attr(child(p.product(), "Supplier"), "LogoPic")
}

func (p *Product) Category() string {
	return attr(child(child(p.product(), "Category"), "Name"), "Value")
}

func (p *Product) EANs() []string {
	var eans []string
	for _, v := range list(p.product()["EANCode"]) {
		m, _ := v.(map[string]interface{})
		if ean := attr(m, "EAN"); ean != "" {
			eans = append(eans, ean)
		}
	}
	return eans
}

func (p *Product) ShortDescription() string {
	return attr(child(p.product(), "ProductDescription"), "ShortDesc")
}

func (p *Product) LongDescription() string {
	return attr(child(p.product(), "ProductDescription"), "LongDesc")
}

func (p *Product) ShortSummary() string {
	return text(first(child(p.product(), "SummaryDescription")["ShortSummaryDescription"]))
}

func (p *Product) LongSummary() string {
	return text(first(child(p.product(), "SummaryDescription")["LongSummaryDescription"]))
}

// Images lists the main picture followed by the gallery, without duplicates.
func (p *Product) Images() []string {
	var images []string
	seen := make(map[string]bool)
	add := func(u string) {
		if u == "" || seen[u] {
			return
		}
		seen[u] = true
		images = append(images, u)
	}

	add(p.HighPic())
	for _, v := range list(child(p.product(), "ProductGallery")["ProductPicture"]) {
		m, _ := v.(map[string]interface{})
		add(attr(m, "Pic"))
	}
	return images
}

func (p *Product) Specs() []Spec {
	var specs []Spec
	for _, v := range list(p.product()["ProductFeature"]) {
		m, _ := v.(map[string]interface{})
		name := attr(child(child(m, "Feature"), "Name"), "Value")
		if name == "" {
			continue
		}
		specs = append(specs, Spec{
			Name:  name,
			Value: attr(m, "Presentation_Value"),
		})
	}
	return specs
}

// Elements lists the child elements of Product in document order, a
// repeated element once per occurrence.
func (p *Product) Elements() []string {
	type entry struct {
		name string
		seq  int
	}
	var entries []entry
	for name, v := range p.product() {
		if strings.HasPrefix(name, "#") {
			continue
		}
		for _, item := range list(v) {
			m, _ := item.(map[string]interface{})
			seq, _ := m["#seq"].(int)
			entries = append(entries, entry{name: name, seq: seq})
		}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].seq < entries[j].seq })

	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.name
	}
	return names
}

func first(v interface{}) interface{} {
	if s, ok := v.([]interface{}); ok {
		if len(s) == 0 {
			return nil
		}
		return s[0]
	}
	return v
}

func list(v interface{}) []interface{} {
	switch t := v.(type) {
	case nil:
		return nil
	case []interface{}:
		return t
	default:
		return []interface{}{t}
	}
}

// child returns the first element called name; nil maps are safe to index.
func child(m map[string]interface{}, name string) map[string]interface{} {
	c, _ := first(m[name]).(map[string]interface{})
	return c
}

func attr(m map[string]interface{}, name string) string {
	attrs, _ := m["#attr"].(map[string]interface{})
	return text(attrs[name])
}

func text(v interface{}) string {
	switch t := v.(type) {
	case string:
		return t
	case map[string]interface{}:
		s, _ := t["#text"].(string)
		return s
	}
	return ""
}
