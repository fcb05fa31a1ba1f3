package catalog

import (
	"github.com/prudhivi99/Distributed-Systems/opencatalog/internal/models"
	"github.com/prudhivi99/Distributed-Systems/opencatalog/internal/opencatalog"
)

// Summarize flattens a product for JSON responses. withData also attaches
// the generic XML mapping.
func Summarize(p *opencatalog.Product, withData bool) models.ProductSummary {
	summary := models.ProductSummary{
		IcecatID:         p.ID(),
		ProdID:           p.ProdID(),
		Name:             p.Name(),
		Title:            p.Title(),
		Brand:            p.Brand(),
		Category:         p.Category(),
		ReleaseDate:      p.ReleaseDate(),
		EANs:             p.EANs(),
		ShortDescription: p.ShortDescription(),
		LongDescription:  p.LongDescription(),
		ShortSummary:     p.ShortSummary(),
		Images:           p.Images(),
	}
	for _, spec := range p.Specs() {
		summary.Specs = append(summary.Specs, models.SpecSummary{Name: spec.Name, Value: spec.Value})
	}
	if withData {
		summary.Data = p.Data
	}
	return summary
}
