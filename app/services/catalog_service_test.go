package services

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/inventory/app/chatbot"
	"github.com/shashiranjanraj/inventory/app/models"
	"github.com/shashiranjanraj/inventory/app/repositories"
	"github.com/shashiranjanraj/inventory/pkg/cache"
	"github.com/shashiranjanraj/inventory/pkg/event"
	"github.com/shashiranjanraj/inventory/pkg/metrics"
	"github.com/shashiranjanraj/inventory/pkg/storage"
	"github.com/shashiranjanraj/inventory/pkg/testkit"
)

type recordingFeed struct {
	mu     sync.Mutex
	frames []ProductEvent
}

func (f *recordingFeed) Broadcast(data []byte) bool {
	var ev ProductEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		return false
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.frames = append(f.frames, ev)
	return true
}

func (f *recordingFeed) events() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.frames))
	for i, ev := range f.frames {
		out[i] = ev.Event
	}
	return out
}

func newService(t *testing.T) (*CatalogService, *event.Dispatcher) {
	t.Helper()
	repo := repositories.NewProductRepository(testkit.OpenDB(t, &models.Product{}))
	d := event.NewDispatcher(1)
	t.Cleanup(d.Close)
	return NewCatalogService(repo, nil, d, time.Minute), d
}

func newCachedService(t *testing.T) (*CatalogService, *repositories.ProductRepository, *cache.Store) {
	t.Helper()
	mr := miniredis.RunT(t)
	store, err := cache.Connect(context.Background(), mr.Addr(), "", 0)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	repo := repositories.NewProductRepository(testkit.OpenDB(t, &models.Product{}))
	return NewCatalogService(repo, store, nil, time.Minute), repo, store
}

func input(name string, amount int, price float64) models.ProductInput {
	return models.ProductInput{Name: name, Amount: &amount, Price: &price}
}

func TestLifecycleFiresEvents(t *testing.T) {
	ctx := context.Background()
	svc, d := newService(t)
	feed := &recordingFeed{}
	RegisterListeners(d, feed)

	before := testutil.ToFloat64(metrics.CatalogEvents.WithLabelValues(EventProductDeleted))

	p, err := svc.Create(ctx, input("Widget", 2, 9.99))
	require.NoError(t, err)

	_, err = svc.Update(ctx, p.ID, models.ProductPatch{Amount: models.Some(3)})
	require.NoError(t, err)

	fav, err := svc.ToggleFavorite(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, fav.Favorite)

	require.NoError(t, svc.Delete(ctx, p.ID))

	// A single worker runs listeners in submission order.
	require.Eventually(t, func() bool { return len(feed.events()) == 4 }, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, []string{EventProductCreated, EventProductUpdated, EventProductFavorited, EventProductDeleted}, feed.events())

	feed.mu.Lock()
	last := feed.frames[3]
	feed.mu.Unlock()
	assert.Equal(t, p.ID, last.ProductID)
	assert.Nil(t, last.Product)

	assert.Equal(t, before+1, testutil.ToFloat64(metrics.CatalogEvents.WithLabelValues(EventProductDeleted)))
}

func TestFailedWritesFireNothing(t *testing.T) {
	ctx := context.Background()
	svc, d := newService(t)
	feed := &recordingFeed{}
	RegisterListeners(d, feed)

	assert.ErrorIs(t, svc.Delete(ctx, 99), repositories.ErrProductNotFound)
	_, err := svc.ToggleFavorite(ctx, 99)
	assert.ErrorIs(t, err, repositories.ErrProductNotFound)

	d.Close()
	assert.Empty(t, feed.events())
}

func TestAskUsesCurrentCatalog(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)

	reply, err := svc.Ask(ctx, "how many products?")
	require.NoError(t, err)
	assert.Equal(t, chatbot.RuleEmpty, reply.Rule)

	for _, in := range []models.ProductInput{input("Widget", 1, 9.99), input("Gadget", 1, 1), input("Gizmo", 1, 2)} {
		_, err := svc.Create(ctx, in)
		require.NoError(t, err)
	}

	before := testutil.ToFloat64(metrics.ChatbotReplies.WithLabelValues(chatbot.RulePrice))
	reply, err = svc.Ask(ctx, "what is the price of Widget")
	require.NoError(t, err)
	assert.Equal(t, "The price of Widget is $9.99.", reply.Text)
	assert.Equal(t, before+1, testutil.ToFloat64(metrics.ChatbotReplies.WithLabelValues(chatbot.RulePrice)))

	reply, err = svc.Ask(ctx, "how many products do you have")
	require.NoError(t, err)
	assert.Equal(t, "There are 3 products.", reply.Text)
	assert.Equal(t, 3.0, testutil.ToFloat64(metrics.CatalogProducts))
}

func TestExportImportRoundTrip(t *testing.T) {
	ctx := context.Background()
	disk, err := storage.NewLocal(t.TempDir(), "")
	require.NoError(t, err)

	src, _ := newService(t)
	desc := "blue"
	a, err := src.Create(ctx, models.ProductInput{Name: "Widget", Amount: ptr(1), Price: ptr(9.99), Description: &desc})
	require.NoError(t, err)
	b, err := src.Create(ctx, input("Gadget", -1, 0))
	require.NoError(t, err)
	b, err = src.ToggleFavorite(ctx, b.ID)
	require.NoError(t, err)

	n, err := src.Export(ctx, disk, "exports/catalog.json", false)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	_, err = src.Export(ctx, disk, "exports/catalog.json", false)
	assert.ErrorIs(t, err, ErrExportExists)
	n, err = src.Export(ctx, disk, "exports/catalog.json", true)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	dst := NewCatalogService(
		repositories.NewProductRepository(testkit.OpenDB(t, &models.Product{})), nil, nil, time.Minute)
	n, err = dst.Import(ctx, disk, "exports/catalog.json")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	got, err := dst.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []models.Product{a, b}, got)

	_, err = dst.Import(ctx, disk, "exports/missing.json")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func ptr[T any](v T) *T { return &v }

func TestListIsCachedUntilAWrite(t *testing.T) {
	ctx := context.Background()
	svc, repo, _ := newCachedService(t)

	_, err := svc.Create(ctx, input("Widget", 1, 1))
	require.NoError(t, err)

	first, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, first, 1)

	// Bypasses the service, so the cached list is still served.
	require.NoError(t, repo.Create(ctx, &models.Product{Name: "Gadget", Amount: 1, Price: 1}))
	cached, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, first, cached)

	_, err = svc.Create(ctx, input("Gizmo", 1, 1))
	require.NoError(t, err)
	fresh, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, fresh, 3)
}

func TestListReadBeforeAWriteIsNeverServedAfterIt(t *testing.T) {
	ctx := context.Background()
	svc, _, store := newCachedService(t)

	// A reader takes the generation and loads the empty catalog...
	gen, ok := store.Generation(ctx, GenerationKey)
	require.True(t, ok)
	stale := []models.Product{}

	// ...a create commits and invalidates...
	p, err := svc.Create(ctx, input("Widget", 1, 1))
	require.NoError(t, err)

	// ...then the reader stores what it loaded.
	require.NoError(t, store.Set(ctx, CacheKey, gen, stale, time.Minute))

	got, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []models.Product{p}, got)
}

func TestImportInvalidatesCachedList(t *testing.T) {
	ctx := context.Background()
	disk, err := storage.NewLocal(t.TempDir(), "")
	require.NoError(t, err)
	require.NoError(t, disk.Put(ctx, "catalog.json", []byte(`[{"id":7,"name":"Widget","amount":1,"price":2,"description":null,"favorite":false}]`)))

	svc, _, _ := newCachedService(t)
	empty, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, empty)

	_, err = svc.Import(ctx, disk, "catalog.json")
	require.NoError(t, err)

	got, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.EqualValues(t, 7, got[0].ID)
}

func TestPruneExportsKeepsNewest(t *testing.T) {
	ctx := context.Background()
	disk, err := storage.NewLocal(t.TempDir(), "")
	require.NoError(t, err)

	svc, _ := newService(t)
	for _, ts := range []string{"20260101000000", "20260102000000", "20260103000000"} {
		_, err := svc.Export(ctx, disk, "exports/catalog-"+ts+".json", false)
		require.NoError(t, err)
	}
	require.NoError(t, disk.Put(ctx, "exports/README.txt", []byte("keep me")))

	removed, err := svc.PruneExports(ctx, disk, "exports", 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"exports/catalog-20260101000000.json"}, removed)

	files, err := disk.Files(ctx, "exports")
	require.NoError(t, err)
	assert.Equal(t, []string{"exports/README.txt", "exports/catalog-20260102000000.json", "exports/catalog-20260103000000.json"}, files)

	removed, err = svc.PruneExports(ctx, disk, "exports", 5)
	require.NoError(t, err)
	assert.Empty(t, removed)
}
