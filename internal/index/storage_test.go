package index

import (
	"testing"

	"github.com/blevesearch/bleve/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/docshelf/backend-go/internal/config"
	"github.com/docshelf/backend-go/internal/models"
)

func newMemoryStorage(t *testing.T) *Storage {
	t.Helper()
	s := NewStorage(config.IndexConfig{Provider: config.IndexProviderMemory}, zap.NewNop())
	require.NoError(t, s.Open())
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func newDiskStorage(t *testing.T, dir string) *Storage {
	t.Helper()
	return NewStorage(config.IndexConfig{Provider: config.IndexProviderDisk, Dir: dir}, zap.NewNop())
}

func searchField(t *testing.T, idx bleve.Index, field, term string) []string {
	t.Helper()
	q := bleve.NewMatchQuery(term)
	q.SetField(field)
	req := bleve.NewSearchRequestOptions(q, 100, 0, false)
	result, err := idx.Search(req)
	require.NoError(t, err)

	ids := make([]string, 0, len(result.Hits))
	for _, hit := range result.Hits {
		ids = append(ids, hit.ID)
	}
	return ids
}

func storageIndex(t *testing.T, s *Storage) bleve.Index {
	t.Helper()
	idx, _, err := s.Snapshot()
	require.NoError(t, err)
	return idx
}

func TestStorageAddAndSearch(t *testing.T) {
	s := newMemoryStorage(t)

	doc := &models.Document{DocumentID: 1, Title: "Invoice March", Description: "monthly billing"}
	require.NoError(t, s.Add(NewDocumentRecord(doc)))

	ids := searchField(t, storageIndex(t, s), FieldTitle, "invoice")
	assert.Equal(t, []string{"document:1"}, ids)
}

func TestStorageOverwriteDropsMissingFields(t *testing.T) {
	s := newMemoryStorage(t)

	withDescription := &models.Document{DocumentID: 7, Title: "Contract", Description: "renewal terms"}
	require.NoError(t, s.Add(NewDocumentRecord(withDescription)))
	require.Len(t, searchField(t, storageIndex(t, s), FieldDescription, "renewal"), 1)

	withoutDescription := &models.Document{DocumentID: 7, Title: "Contract"}
	require.NoError(t, s.Add(NewDocumentRecord(withoutDescription)))

	assert.Empty(t, searchField(t, storageIndex(t, s), FieldDescription, "renewal"))
	assert.Len(t, searchField(t, storageIndex(t, s), FieldTitle, "contract"), 1)
}

func TestStorageDeleteIsIdempotent(t *testing.T) {
	s := newMemoryStorage(t)

	assert.NoError(t, s.Delete(DocumentKey(999)))

	require.NoError(t, s.Add(NewDocumentRecord(&models.Document{DocumentID: 3, Title: "Report"})))
	assert.NoError(t, s.Delete(DocumentKey(3)))
	assert.NoError(t, s.Delete(DocumentKey(3)))

	count, err := s.DocCount()
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestStorageDeleteAll(t *testing.T) {
	s := newMemoryStorage(t)

	records := []*Record{
		NewDocumentRecord(&models.Document{DocumentID: 1, Title: "one"}),
		NewDocumentRecord(&models.Document{DocumentID: 2, Title: "two"}),
		NewFileRecord(&models.DocFile{FileID: 1, DocumentID: 1, FileName: "a.txt", Content: "hello"}),
	}
	require.NoError(t, s.ApplyBatch(records))

	count, err := s.DocCount()
	require.NoError(t, err)
	require.EqualValues(t, 3, count)

	require.NoError(t, s.DeleteAll())

	count, err = s.DocCount()
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestStorageFileRecordCarriesDocumentID(t *testing.T) {
	s := newMemoryStorage(t)

	file := &models.DocFile{FileID: 5, DocumentID: 42, FileName: "notes.txt", Content: "quarterly figures"}
	require.NoError(t, s.Add(NewFileRecord(file)))

	ids := searchField(t, storageIndex(t, s), FieldContent, "quarterly")
	require.Equal(t, []string{"file:5"}, ids)
}

func TestStoragePersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir() + "/index"

	s := newDiskStorage(t, dir)
	require.NoError(t, s.Open())
	require.NoError(t, s.Add(NewDocumentRecord(&models.Document{DocumentID: 1, Title: "durable"})))
	require.NoError(t, s.Close())

	reopened := newDiskStorage(t, dir)
	require.NoError(t, reopened.Open())
	defer reopened.Close()

	assert.False(t, reopened.RebuildRequired())
	ids := searchField(t, storageIndex(t, reopened), FieldTitle, "durable")
	assert.Equal(t, []string{"document:1"}, ids)
}

func TestStorageSchemaMismatchTriggersRebuild(t *testing.T) {
	dir := t.TempDir() + "/index"

	s := newDiskStorage(t, dir)
	require.NoError(t, s.Open())
	require.NoError(t, s.Add(NewDocumentRecord(&models.Document{DocumentID: 1, Title: "stale"})))
	require.NoError(t, s.Close())

	// 模拟旧版本代码写入的索引
	idx, err := bleve.Open(dir)
	require.NoError(t, err)
	require.NoError(t, idx.SetInternal([]byte(schemaVersionKey), []byte("0")))
	require.NoError(t, idx.Close())

	reopened := newDiskStorage(t, dir)
	require.NoError(t, reopened.Open())
	defer reopened.Close()

	assert.True(t, reopened.RebuildRequired())

	count, err := reopened.DocCount()
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestStorageFirstRunNeedsNoRebuild(t *testing.T) {
	s := newDiskStorage(t, t.TempDir()+"/index")
	require.NoError(t, s.Open())
	defer s.Close()

	assert.False(t, s.RebuildRequired())
}
