package seeders

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/inventory/app/models"
	"github.com/shashiranjanraj/inventory/pkg/testkit"
)

func TestRunAllSeedsProductsOnce(t *testing.T) {
	db := testkit.OpenDB(t, &models.Product{})
	ctx := context.Background()

	var out bytes.Buffer
	require.NoError(t, RunAll(ctx, db, &out))
	assert.Contains(t, out.String(), "Running seeder: products")

	require.NoError(t, RunAll(ctx, db, &out))

	var products []models.Product
	require.NoError(t, db.Order("id").Find(&products).Error)
	require.Len(t, products, len(sampleProducts))
	assert.Equal(t, "Laptop", products[0].Name)
	assert.False(t, products[0].Favorite)
	assert.Nil(t, products[2].Description)
}

func TestRunAllStopsOnError(t *testing.T) {
	db := testkit.OpenDB(t)

	var out bytes.Buffer
	err := RunAll(context.Background(), db, &out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `seeder "products"`)
	assert.Contains(t, out.String(), "FAILED")
}
