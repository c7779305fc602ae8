package sqlite

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veldt-labs/corpora-cli/internal/core/domain"
)

// setupTestStore creates a temporary SQLite store for testing.
func setupTestStore(t *testing.T) (*Store, func()) {
	t.Helper()

	tempDir, err := os.MkdirTemp("", "corpora-test-*")
	require.NoError(t, err)

	store, err := Open(tempDir)
	require.NoError(t, err)
	require.NotNil(t, store)

	cleanup := func() {
		assert.NoError(t, store.Close())
		assert.NoError(t, os.RemoveAll(tempDir))
	}

	return store, cleanup
}

// testRecord builds a record with a deterministic embedding.
func testRecord(id string, page, index int) domain.Record {
	return domain.Record{
		ID:        id,
		Embedding: []float32{float32(index), 0.5, -1.25},
		Text:      "chunk text " + id,
		Metadata: domain.RecordMetadata{
			Page:      page,
			Index:     index,
			WordStart: index * 384,
			WordEnd:   index*384 + 512,
			Source:    "report.pdf",
		},
	}
}

func TestOpen_CreatesDatabase(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	assert.FileExists(t, store.Path())
	assert.Equal(t, "vectors.db", filepath.Base(store.Path()))
}

func TestOpen_Reopen(t *testing.T) {
	tempDir := t.TempDir()

	store, err := Open(tempDir)
	require.NoError(t, err)
	require.NoError(t, store.OpenCollection(context.Background(), "docs", domain.MetricCosine, 3))
	require.NoError(t, store.Close())

	// Migrations must be idempotent across reopens.
	store, err = Open(tempDir)
	require.NoError(t, err)
	defer store.Close()

	infos, err := store.List(context.Background())
	require.NoError(t, err)
	require.Len(t, infos, 1)
	assert.Equal(t, "docs", infos[0].Name)
}

func TestOpenCollection(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	t.Run("creates collection", func(t *testing.T) {
		require.NoError(t, store.OpenCollection(ctx, "docs", domain.MetricCosine, 3))

		infos, err := store.List(ctx)
		require.NoError(t, err)
		require.Len(t, infos, 1)
		assert.Equal(t, domain.MetricCosine, infos[0].Metric)
		assert.Equal(t, 3, infos[0].Dimensions)
		assert.Equal(t, 0, infos[0].Records)
	})

	t.Run("idempotent reopen", func(t *testing.T) {
		require.NoError(t, store.OpenCollection(ctx, "docs", domain.MetricCosine, 3))
	})

	t.Run("metric mismatch rejected", func(t *testing.T) {
		err := store.OpenCollection(ctx, "docs", domain.MetricL2, 3)
		require.ErrorIs(t, err, domain.ErrStoreWrite)
		assert.Contains(t, err.Error(), "metric")
	})

	t.Run("dimension mismatch rejected", func(t *testing.T) {
		err := store.OpenCollection(ctx, "docs", domain.MetricCosine, 768)
		require.ErrorIs(t, err, domain.ErrStoreWrite)
	})

	t.Run("empty name rejected", func(t *testing.T) {
		err := store.OpenCollection(ctx, "", domain.MetricCosine, 3)
		require.ErrorIs(t, err, domain.ErrStoreWrite)
	})

	t.Run("unknown dimensions pinned on first use", func(t *testing.T) {
		require.NoError(t, store.OpenCollection(ctx, "lazy", domain.MetricCosine, 0))
		require.NoError(t, store.OpenCollection(ctx, "lazy", domain.MetricCosine, 5))

		err := store.OpenCollection(ctx, "lazy", domain.MetricCosine, 7)
		require.ErrorIs(t, err, domain.ErrStoreWrite)
	})
}

func TestUpsert_RoundTrip(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	require.NoError(t, store.OpenCollection(ctx, "docs", domain.MetricCosine, 3))
	require.NoError(t, store.Upsert(ctx, "docs", []domain.Record{
		testRecord("p1_c0", 1, 0),
		testRecord("p1_c1", 1, 1),
	}))

	record, err := store.Get(ctx, "docs", "p1_c1")
	require.NoError(t, err)
	assert.Equal(t, "chunk text p1_c1", record.Text)
	assert.Equal(t, []float32{1, 0.5, -1.25}, record.Embedding)
	assert.Equal(t, 1, record.Metadata.Page)
	assert.Equal(t, 1, record.Metadata.Index)
	assert.Equal(t, 384, record.Metadata.WordStart)
	assert.Equal(t, 896, record.Metadata.WordEnd)
	assert.Equal(t, "report.pdf", record.Metadata.Source)

	count, err := store.Count(ctx, "docs")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestUpsert_ReplacesExisting(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	require.NoError(t, store.OpenCollection(ctx, "docs", domain.MetricCosine, 3))
	require.NoError(t, store.Upsert(ctx, "docs", []domain.Record{testRecord("p1_c0", 1, 0)}))

	// Re-ingesting the same id must overwrite, not duplicate.
	updated := testRecord("p1_c0", 1, 0)
	updated.Text = "revised text"
	updated.Embedding = []float32{9, 9, 9}
	require.NoError(t, store.Upsert(ctx, "docs", []domain.Record{updated}))

	count, err := store.Count(ctx, "docs")
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	record, err := store.Get(ctx, "docs", "p1_c0")
	require.NoError(t, err)
	assert.Equal(t, "revised text", record.Text)
	assert.Equal(t, []float32{9, 9, 9}, record.Embedding)
}

func TestUpsert_Validation(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	require.NoError(t, store.OpenCollection(ctx, "docs", domain.MetricCosine, 3))

	t.Run("missing collection", func(t *testing.T) {
		err := store.Upsert(ctx, "ghost", []domain.Record{testRecord("p1_c0", 1, 0)})
		require.ErrorIs(t, err, domain.ErrStoreWrite)
		assert.Contains(t, err.Error(), "does not exist")
	})

	t.Run("dimension mismatch", func(t *testing.T) {
		bad := testRecord("p1_c0", 1, 0)
		bad.Embedding = []float32{1, 2}
		err := store.Upsert(ctx, "docs", []domain.Record{bad})
		require.ErrorIs(t, err, domain.ErrStoreWrite)
	})

	t.Run("empty id", func(t *testing.T) {
		bad := testRecord("", 1, 0)
		err := store.Upsert(ctx, "docs", []domain.Record{bad})
		require.ErrorIs(t, err, domain.ErrStoreWrite)
	})

	t.Run("failed batch writes nothing", func(t *testing.T) {
		good := testRecord("p2_c5", 2, 5)
		bad := testRecord("p2_c6", 2, 6)
		bad.Embedding = nil

		err := store.Upsert(ctx, "docs", []domain.Record{good, bad})
		require.ErrorIs(t, err, domain.ErrStoreWrite)

		// The transaction rolled back the whole batch.
		_, err = store.Get(ctx, "docs", "p2_c5")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("empty batch is a no-op", func(t *testing.T) {
		assert.NoError(t, store.Upsert(ctx, "docs", nil))
	})
}

func TestGet_NotFound(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	require.NoError(t, store.OpenCollection(ctx, "docs", domain.MetricCosine, 3))

	record, err := store.Get(ctx, "docs", "p9_c99")
	assert.Nil(t, record)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestList_MultipleCollections(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	require.NoError(t, store.OpenCollection(ctx, "reports", domain.MetricCosine, 3))
	require.NoError(t, store.OpenCollection(ctx, "manuals", domain.MetricL2, 3))
	require.NoError(t, store.Upsert(ctx, "reports", []domain.Record{
		testRecord("p1_c0", 1, 0),
		testRecord("p1_c1", 1, 1),
	}))

	infos, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, infos, 2)

	// Ordered by name.
	assert.Equal(t, "manuals", infos[0].Name)
	assert.Equal(t, 0, infos[0].Records)
	assert.Equal(t, "reports", infos[1].Name)
	assert.Equal(t, 2, infos[1].Records)
}

func TestFloat32BlobCodec(t *testing.T) {
	tests := []struct {
		name   string
		floats []float32
	}{
		{"nil", nil},
		{"single", []float32{1.5}},
		{"negative and fractional", []float32{-0.125, 3.75, 0}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.floats, bytesToFloat32Slice(float32SliceToBytes(tc.floats)))
		})
	}
}
