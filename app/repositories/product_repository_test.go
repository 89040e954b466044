package repositories

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/shashiranjanraj/inventory/app/models"
	"github.com/shashiranjanraj/inventory/pkg/testkit"
)

func newRepo(t *testing.T) *ProductRepository {
	t.Helper()
	return NewProductRepository(testkit.OpenDB(t, &models.Product{}))
}

func strPtr(s string) *string { return &s }

func mustCreate(t *testing.T, r *ProductRepository, p models.Product) models.Product {
	t.Helper()
	require.NoError(t, r.Create(context.Background(), &p))
	return p
}

func TestCreateThenList(t *testing.T) {
	ctx := context.Background()
	r := newRepo(t)

	empty, err := r.List(ctx)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	created := mustCreate(t, r, models.Product{Name: "Widget", Amount: 5, Price: 9.99, Description: strPtr("blue"), Favorite: true})
	assert.NotZero(t, created.ID)
	assert.False(t, created.Favorite, "new products are never favorites")

	list, err := r.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, created, list[0])
}

func TestListOrdersByID(t *testing.T) {
	ctx := context.Background()
	r := newRepo(t)
	a := mustCreate(t, r, models.Product{Name: "b", Amount: 1, Price: 1})
	b := mustCreate(t, r, models.Product{Name: "a", Amount: 1, Price: 1})

	list, err := r.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, []uint{a.ID, b.ID}, []uint{list[0].ID, list[1].ID})
}

func TestNegativeValuesArePreserved(t *testing.T) {
	ctx := context.Background()
	r := newRepo(t)
	p := mustCreate(t, r, models.Product{Name: "Debt", Amount: -3, Price: -1.25})

	got, err := r.Find(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, -3, got.Amount)
	assert.Equal(t, -1.25, got.Price)
	assert.Nil(t, got.Description)
}

func TestUpdateOnlyChangesPresentFields(t *testing.T) {
	ctx := context.Background()
	r := newRepo(t)
	p := mustCreate(t, r, models.Product{Name: "Widget", Amount: 5, Price: 9.99, Description: strPtr("blue")})
	p, err := r.ToggleFavorite(ctx, p.ID)
	require.NoError(t, err)

	var patch models.ProductPatch
	require.NoError(t, json.Unmarshal([]byte(`{"price": 12.5}`), &patch))

	updated, err := r.Update(ctx, p.ID, patch)
	require.NoError(t, err)

	want := p
	want.Price = 12.5
	assert.Equal(t, want, updated)

	stored, err := r.Find(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, want, stored)
}

func TestUpdateClearsDescriptionAndFavorite(t *testing.T) {
	ctx := context.Background()
	r := newRepo(t)
	p := mustCreate(t, r, models.Product{Name: "Widget", Amount: 5, Price: 1, Description: strPtr("blue")})
	_, err := r.ToggleFavorite(ctx, p.ID)
	require.NoError(t, err)

	var patch models.ProductPatch
	require.NoError(t, json.Unmarshal([]byte(`{"description": null, "favorite": false, "amount": 0}`), &patch))

	updated, err := r.Update(ctx, p.ID, patch)
	require.NoError(t, err)
	assert.Nil(t, updated.Description)
	assert.False(t, updated.Favorite)
	assert.Zero(t, updated.Amount)

	stored, err := r.Find(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, updated, stored)
}

func TestUpdateEmptyPatchReturnsCurrent(t *testing.T) {
	r := newRepo(t)
	p := mustCreate(t, r, models.Product{Name: "Widget", Amount: 5, Price: 1})

	got, err := r.Update(context.Background(), p.ID, models.ProductPatch{})
	require.NoError(t, err)
	assert.Equal(t, p, got)
}

func TestUpdateOfRowDeletedAfterLookupIsNotFound(t *testing.T) {
	ctx := context.Background()
	db := testkit.OpenDB(t, &models.Product{})
	r := NewProductRepository(db)
	p := mustCreate(t, r, models.Product{Name: "Widget", Amount: 5, Price: 1})

	// Remove the row right after Update has read it, as a concurrent
	// DELETE committing between the read and the write would.
	var armed atomic.Bool
	armed.Store(true)
	require.NoError(t, db.Callback().Query().After("gorm:query").Register("test:delete_after_lookup", func(d *gorm.DB) {
		if d.Statement.Table != "products" || !armed.CompareAndSwap(true, false) {
			return
		}
		require.NoError(t, d.Session(&gorm.Session{NewDB: true}).Exec("DELETE FROM products WHERE id = ?", p.ID).Error)
	}))

	var patch models.ProductPatch
	require.NoError(t, json.Unmarshal([]byte(`{"name": "Renamed"}`), &patch))

	_, err := r.Update(ctx, p.ID, patch)
	assert.ErrorIs(t, err, ErrProductNotFound)

	all, err := r.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, all, "the deleted product must not come back")
}

func TestUpdateWithUnchangedValuesSucceeds(t *testing.T) {
	r := newRepo(t)
	p := mustCreate(t, r, models.Product{Name: "Widget", Amount: 5, Price: 1})

	var patch models.ProductPatch
	require.NoError(t, json.Unmarshal([]byte(`{"name": "Widget", "amount": 5}`), &patch))

	got, err := r.Update(context.Background(), p.ID, patch)
	require.NoError(t, err)
	assert.Equal(t, p, got)
}

func TestDeleteRemoves(t *testing.T) {
	ctx := context.Background()
	r := newRepo(t)
	keep := mustCreate(t, r, models.Product{Name: "Keep", Amount: 1, Price: 1})
	gone := mustCreate(t, r, models.Product{Name: "Gone", Amount: 1, Price: 1})

	require.NoError(t, r.Delete(ctx, gone.ID))

	list, err := r.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []models.Product{keep}, list)

	assert.ErrorIs(t, r.Delete(ctx, gone.ID), ErrProductNotFound)
	_, err = r.Update(ctx, gone.ID, models.ProductPatch{Price: models.Some(2.0)})
	assert.ErrorIs(t, err, ErrProductNotFound)
	_, err = r.ToggleFavorite(ctx, gone.ID)
	assert.ErrorIs(t, err, ErrProductNotFound)
	_, err = r.Find(ctx, gone.ID)
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestToggleFavoriteIsAnInvolution(t *testing.T) {
	ctx := context.Background()
	r := newRepo(t)
	p := mustCreate(t, r, models.Product{Name: "Widget", Amount: 1, Price: 1})

	once, err := r.ToggleFavorite(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, once.Favorite)

	twice, err := r.ToggleFavorite(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, p, twice)
}

func TestCreateManyAndCount(t *testing.T) {
	ctx := context.Background()
	r := newRepo(t)

	require.NoError(t, r.CreateMany(ctx, nil))
	require.NoError(t, r.CreateMany(ctx, []models.Product{
		{ID: 10, Name: "a", Amount: 1, Price: 1, Favorite: true},
		{ID: 11, Name: "b", Amount: 2, Price: 2},
	}))

	n, err := r.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	got, err := r.Find(ctx, 10)
	require.NoError(t, err)
	assert.True(t, got.Favorite)
}

func TestCreateAfterCreateManyGetsNextID(t *testing.T) {
	ctx := context.Background()
	r := newRepo(t)

	require.NoError(t, r.CreateMany(ctx, []models.Product{
		{ID: 1, Name: "a", Amount: 1, Price: 1},
		{ID: 2, Name: "b", Amount: 1, Price: 1},
		{ID: 3, Name: "c", Amount: 1, Price: 1},
	}))

	p := mustCreate(t, r, models.Product{Name: "d", Amount: 1, Price: 1})
	assert.EqualValues(t, 4, p.ID)
}

func TestSyncIDSequence(t *testing.T) {
	sqlite := testkit.OpenDB(t)
	assert.Empty(t, sqlite.ToSQL(func(tx *gorm.DB) *gorm.DB { return syncIDSequence(tx) }))

	pg, err := gorm.Open(postgres.New(postgres.Config{DSN: "host=127.0.0.1 port=1 user=x dbname=x sslmode=disable"}), &gorm.Config{
		DryRun:               true,
		DisableAutomaticPing: true,
	})
	require.NoError(t, err)

	sql := pg.ToSQL(func(tx *gorm.DB) *gorm.DB { return syncIDSequence(tx) })
	assert.Contains(t, sql, "setval(pg_get_serial_sequence('products', 'id')")
	assert.Contains(t, sql, "MAX(id)")
}
