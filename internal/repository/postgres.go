package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"chatimmo/internal/model"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// PostgresRepository reads the property catalog from PostgreSQL. It only
// ever issues SELECT statements.
type PostgresRepository struct {
	db *sqlx.DB
}

// propertyRow mirrors a property_item row; numeric columns are nullable in the
// source table and are checked before a Listing is built.
type propertyRow struct {
	ID        int64           `db:"id"`
	Title     sql.NullString  `db:"pi_title"`
	Content   sql.NullString  `db:"pi_content"`
	Bedrooms  sql.NullFloat64 `db:"pi_attr_bed"`
	Bathrooms sql.NullFloat64 `db:"pi_attr_bath"`
	Surface   sql.NullFloat64 `db:"pi_attr_surface"`
	Price     sql.NullFloat64 `db:"pi_price_tnd"`
	Parking   sql.NullBool    `db:"pi_attr_parking"`
	Alias     sql.NullString  `db:"pi_alias"`
}

const selectCatalogQuery = `
	SELECT
		id, pi_title, pi_content, pi_attr_bed, pi_attr_bath,
		pi_attr_surface, pi_price_tnd, pi_attr_parking, pi_alias
	FROM property_item
	ORDER BY id
`

// NewPostgresRepository creates a new PostgreSQL repository
func NewPostgresRepository(dsn string, maxConn, maxIdleConn int) (*PostgresRepository, error) {
	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(maxConn)
	db.SetMaxIdleConns(maxIdleConn)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(2 * time.Minute)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresRepository{db: db}, nil
}

// Close closes the database connection
func (r *PostgresRepository) Close() error {
	return r.db.Close()
}

// LoadCatalog reads every property_item row in id order. A NULL numeric
// column fails the load the same way a malformed CSV cell does.
func (r *PostgresRepository) LoadCatalog(ctx context.Context) (model.Catalog, error) {
	var rows []propertyRow
	if err := r.db.SelectContext(ctx, &rows, selectCatalogQuery); err != nil {
		return nil, fmt.Errorf("failed to fetch property items: %w", err)
	}

	catalog := make(model.Catalog, 0, len(rows))
	for _, row := range rows {
		listing, err := row.toListing()
		if err != nil {
			return nil, err
		}
		catalog = append(catalog, listing)
	}
	return catalog, nil
}

func (row propertyRow) toListing() (model.Listing, error) {
	fail := func(col string, err error) (model.Listing, error) {
		return model.Listing{}, &LoadError{Line: int(row.ID), Column: col, Err: err}
	}
	errNull := errors.New("NULL value")

	if !row.Bedrooms.Valid {
		return fail(ColBedrooms, errNull)
	}
	bedrooms, err := parseCount(formatNumber(row.Bedrooms.Float64))
	if err != nil {
		return fail(ColBedrooms, err)
	}
	if !row.Bathrooms.Valid {
		return fail(ColBathrooms, errNull)
	}
	bathrooms, err := parseCount(formatNumber(row.Bathrooms.Float64))
	if err != nil {
		return fail(ColBathrooms, err)
	}
	if !row.Surface.Valid {
		return fail(ColSurface, errNull)
	}
	if row.Surface.Float64 <= 0 {
		return fail(ColSurface, fmt.Errorf("surface must be > 0, got %g", row.Surface.Float64))
	}
	if !row.Price.Valid {
		return fail(ColPrice, errNull)
	}
	if row.Price.Float64 < 0 {
		return fail(ColPrice, fmt.Errorf("must be >= 0, got %g", row.Price.Float64))
	}

	return model.Listing{
		Title:       row.Title.String,
		Description: row.Content.String,
		Bedrooms:    bedrooms,
		Bathrooms:   bathrooms,
		Surface:     row.Surface.Float64,
		Price:       row.Price.Float64,
		Parking:     row.Parking.Valid && row.Parking.Bool,
		Location:    DeriveLocation(row.Content.String),
		Link:        row.Alias.String,
	}, nil
}

func formatNumber(f float64) string {
	return fmt.Sprintf("%g", f)
}
