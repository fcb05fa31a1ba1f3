package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/prudhivi99/Distributed-Systems/opencatalog/internal/models"
)

// ProductRepository archives fetched data-sheets, one row per request URL.
type ProductRepository struct {
	db *sql.DB
}

func NewProductRepository(database *PostgresDB) *ProductRepository {
	return &ProductRepository{db: database.Conn}
}

// Save inserts the product or refreshes the row already stored for its URL.
func (r *ProductRepository) Save(ctx context.Context, p *models.ArchivedProduct) error {
	query := `
		INSERT INTO archived_products (url, lang, icecat_id, prod_id, brand, title, raw_xml)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (url) DO UPDATE
		   SET lang = EXCLUDED.lang,
		       icecat_id = EXCLUDED.icecat_id,
		       prod_id = EXCLUDED.prod_id,
		       brand = EXCLUDED.brand,
		       title = EXCLUDED.title,
		       raw_xml = EXCLUDED.raw_xml,
		       fetched_at = NOW()
		RETURNING id, fetched_at
	`

	err := r.db.QueryRowContext(ctx, query, p.URL, p.Lang, p.IcecatID, p.ProdID, p.Brand, p.Title, p.RawXML).
		Scan(&p.ID, &p.FetchedAt)
	if err != nil {
		return fmt.Errorf("failed to save product: %w", err)
	}
	return nil
}

// ListRecent returns the most recently fetched products, without raw XML.
func (r *ProductRepository) ListRecent(ctx context.Context, limit int) ([]models.ArchivedProduct, error) {
	query := `
		SELECT id, url, lang, icecat_id, prod_id, brand, title, fetched_at
		  FROM archived_products
		 ORDER BY fetched_at DESC
		 LIMIT $1
	`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	products := []models.ArchivedProduct{}
	for rows.Next() {
		var p models.ArchivedProduct
		if err := rows.Scan(&p.ID, &p.URL, &p.Lang, &p.IcecatID, &p.ProdID, &p.Brand, &p.Title, &p.FetchedAt); err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, p)
	}
	return products, rows.Err()
}
