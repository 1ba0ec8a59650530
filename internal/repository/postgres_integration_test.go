//go:build integration

package repository

import (
	"context"
	"testing"
	"time"

	"chatimmo/internal/model"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

const propertySchema = `
	CREATE TABLE property_item (
		id              SERIAL PRIMARY KEY,
		pi_title        TEXT,
		pi_content      TEXT,
		pi_attr_bed     NUMERIC,
		pi_attr_bath    NUMERIC,
		pi_attr_surface NUMERIC,
		pi_price_tnd    NUMERIC,
		pi_attr_parking BOOLEAN,
		pi_alias        TEXT
	);
`

func setupPostgres(t *testing.T) string {
	t.Helper()
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("chatimmo_test"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("Failed to terminate postgres container: %v", err)
		}
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := sqlx.Connect("postgres", dsn)
	require.NoError(t, err)
	defer db.Close()
	db.MustExec(propertySchema)

	return dsn
}

func TestPostgresRepository_LoadCatalog(t *testing.T) {
	dsn := setupPostgres(t)

	db, err := sqlx.Connect("postgres", dsn)
	require.NoError(t, err)
	defer db.Close()
	db.MustExec(`INSERT INTO property_item
		(pi_title, pi_content, pi_attr_bed, pi_attr_bath, pi_attr_surface, pi_price_tnd, pi_attr_parking, pi_alias)
		VALUES
		('S+2', 'Appartement Lac2', 2, 1, 110, 1500, true, 's-2'),
		('Studio', 'Studio Tunis', 0, 1, 35, 450, NULL, 'studio')`)

	repo, err := NewPostgresRepository(dsn, 5, 2)
	require.NoError(t, err)
	defer repo.Close()

	catalog, err := repo.LoadCatalog(context.Background())
	require.NoError(t, err)
	require.Len(t, catalog, 2)

	assert.Equal(t, "S+2", catalog[0].Title)
	assert.Equal(t, model.LocationLac2, catalog[0].Location)
	assert.True(t, catalog[0].Parking)
	assert.Equal(t, model.LocationTunis, catalog[1].Location)
	assert.False(t, catalog[1].Parking)
}

func TestPostgresRepository_NullNumericFailsLoad(t *testing.T) {
	dsn := setupPostgres(t)

	db, err := sqlx.Connect("postgres", dsn)
	require.NoError(t, err)
	defer db.Close()
	db.MustExec(`INSERT INTO property_item (pi_title, pi_content, pi_attr_bed, pi_attr_bath, pi_attr_surface, pi_price_tnd)
		VALUES ('Broken', 'Tunis', 2, 1, 80, NULL)`)

	repo, err := NewPostgresRepository(dsn, 5, 2)
	require.NoError(t, err)
	defer repo.Close()

	_, err = repo.LoadCatalog(context.Background())
	var loadErr *LoadError
	require.ErrorAs(t, err, &loadErr)
	assert.Equal(t, ColPrice, loadErr.Column)
}
