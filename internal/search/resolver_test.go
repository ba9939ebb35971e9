package search

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/docshelf/backend-go/internal/config"
	"github.com/docshelf/backend-go/internal/index"
	"github.com/docshelf/backend-go/internal/models"
)

var testSearchConfig = config.SearchConfig{
	MaxFulltextHits: 1000,
	DefaultPageSize: 20,
	MaxPageSize:     50,
}

func newTestIndex(t *testing.T) (*index.Storage, *index.ReaderManager) {
	t.Helper()
	s := index.NewStorage(config.IndexConfig{Provider: config.IndexProviderMemory}, zap.NewNop())
	require.NoError(t, s.Open())
	t.Cleanup(func() { _ = s.Close() })
	return s, index.NewReaderManager(s)
}

func newResolver(t *testing.T, gdb *gorm.DB, readers *index.ReaderManager) *Resolver {
	t.Helper()
	return NewResolver(gdb, readers, testSearchConfig, zap.NewNop())
}

func pageRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"document_id", "title", "description", "create_time", "update_time",
		"language", "shared_count", "file_count", "active_route_id",
	})
}

func TestSearchFulltextResolvesDocumentAndFileHits(t *testing.T) {
	storage, readers := newTestIndex(t)
	require.NoError(t, storage.Add(index.NewDocumentRecord(
		&models.Document{DocumentID: 1, Title: "Invoice March"})))
	require.NoError(t, storage.Add(index.NewFileRecord(
		&models.DocFile{FileID: 5, DocumentID: 2, FileName: "scan.pdf", Content: "invoice attachment"})))

	r := newResolver(t, nil, readers)
	ids := r.fulltextCandidates(context.Background(), &SearchCriteria{FullText: "invoice"})

	assert.ElementsMatch(t, []uint{1, 2}, ids)
}

func TestSearchFulltextRequiresAdjacentTerms(t *testing.T) {
	storage, readers := newTestIndex(t)
	require.NoError(t, storage.Add(index.NewDocumentRecord(
		&models.Document{DocumentID: 1, Title: "Invoice March Report"})))

	r := newResolver(t, nil, readers)

	// 短语匹配：相邻词序命中，跳词不命中
	assert.Equal(t, []uint{1},
		r.fulltextCandidates(context.Background(), &SearchCriteria{SimpleText: "invoice march"}))
	assert.Empty(t,
		r.fulltextCandidates(context.Background(), &SearchCriteria{SimpleText: "invoice report"}))
}

func TestSearchSimpleTermsDoNotMatchContent(t *testing.T) {
	storage, readers := newTestIndex(t)
	require.NoError(t, storage.Add(index.NewFileRecord(
		&models.DocFile{FileID: 5, DocumentID: 2, Content: "hidden payload"})))

	r := newResolver(t, nil, readers)

	assert.Empty(t, r.fulltextCandidates(context.Background(), &SearchCriteria{SimpleText: "payload"}))
	assert.Equal(t, []uint{2}, r.fulltextCandidates(context.Background(), &SearchCriteria{FullText: "payload"}))
}

func TestSearchAssemblesResultsFromPageQuery(t *testing.T) {
	storage, readers := newTestIndex(t)
	require.NoError(t, storage.Add(index.NewDocumentRecord(
		&models.Document{DocumentID: 1, Title: "Invoice March"})))

	gdb, mock := newMockDB(t)
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT count\(\*\) FROM documents AS d`).WillReturnRows(
		sqlmock.NewRows([]string{"count"}).AddRow(2))
	mock.ExpectQuery(`SELECT d\.document_id`).WillReturnRows(
		pageRows().
			AddRow(1, "Invoice March", "billing run", now, now, "en", 3, 2, 9).
			AddRow(2, "Bare Document", nil, now, now, nil, nil, nil, nil))
	mock.ExpectQuery(`SELECT .* FROM "routes"`).WillReturnRows(
		sqlmock.NewRows([]string{"route_id", "name"}).AddRow(9, "Approval"))

	r := newResolver(t, gdb, readers)
	result, err := r.Search(context.Background(), &SearchCriteria{FullText: "invoice"}, SortCriteria{Field: "title"})
	require.NoError(t, err)

	assert.EqualValues(t, 2, result.Total)
	assert.Equal(t, 20, result.Limit)
	require.Len(t, result.Results, 2)

	first := result.Results[0]
	assert.EqualValues(t, 1, first.ID)
	assert.Equal(t, "Invoice March", first.Title)
	assert.Equal(t, "billing run", first.Description)
	assert.Equal(t, 3, first.SharedCount)
	assert.Equal(t, 2, first.FileCount)
	assert.EqualValues(t, 9, first.ActiveRouteID)
	assert.Equal(t, "Approval", first.ActiveRouteName)

	// NULL聚合值归一化为零值
	second := result.Results[1]
	assert.Empty(t, second.Description)
	assert.Zero(t, second.SharedCount)
	assert.Zero(t, second.FileCount)
	assert.Zero(t, second.ActiveRouteID)
	assert.Empty(t, second.ActiveRouteName)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSearchFulltextNoMatchFailsClosed(t *testing.T) {
	storage, readers := newTestIndex(t)
	require.NoError(t, storage.Add(index.NewDocumentRecord(
		&models.Document{DocumentID: 1, Title: "Invoice March"})))

	gdb, mock := newMockDB(t)
	// 哨兵ID进入关系查询，count确定返回零
	mock.ExpectQuery(`SELECT count\(\*\) FROM documents AS d`).WillReturnRows(
		sqlmock.NewRows([]string{"count"}).AddRow(0))

	r := newResolver(t, gdb, readers)
	result, err := r.Search(context.Background(), &SearchCriteria{FullText: "zzz-nothing"}, SortCriteria{})
	require.NoError(t, err)

	assert.Zero(t, result.Total)
	assert.Empty(t, result.Results)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSearchIndexNotReadyYieldsEmptyNotError(t *testing.T) {
	s := index.NewStorage(config.IndexConfig{Provider: config.IndexProviderMemory}, zap.NewNop())
	readers := index.NewReaderManager(s)

	gdb, mock := newMockDB(t)
	mock.ExpectQuery(`SELECT count\(\*\) FROM documents AS d`).WillReturnRows(
		sqlmock.NewRows([]string{"count"}).AddRow(0))

	r := newResolver(t, gdb, readers)
	result, err := r.Search(context.Background(), &SearchCriteria{SimpleText: "anything"}, SortCriteria{})
	require.NoError(t, err)
	assert.Zero(t, result.Total)
}

func TestSearchUnsupportedLanguageFailsClosed(t *testing.T) {
	_, readers := newTestIndex(t)
	gdb, mock := newMockDB(t)

	mock.ExpectQuery(`SELECT count\(\*\) FROM documents AS d`).WillReturnRows(
		sqlmock.NewRows([]string{"count"}).AddRow(0))

	r := newResolver(t, gdb, readers)
	result, err := r.Search(context.Background(), &SearchCriteria{Language: "tlh"}, SortCriteria{})
	require.NoError(t, err)
	assert.Zero(t, result.Total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSearchTargetsGatePredicatesBothQueries(t *testing.T) {
	_, readers := newTestIndex(t)
	gdb, mock := newMockDB(t)

	// 直接ACL与标签继承ACL必须同时出现在count与分页查询中
	aclPattern := `(?s)SELECT .* FROM documents AS d WHERE .*EXISTS \(SELECT 1 FROM document_acls da .*can_read.*EXISTS \(SELECT 1 FROM document_tags dt INNER JOIN tag_acls ta`
	mock.ExpectQuery(aclPattern).WillReturnRows(
		sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(aclPattern).WillReturnRows(pageRows().
		AddRow(7, "Visible", nil, time.Now(), time.Now(), nil, nil, nil, nil))

	r := newResolver(t, gdb, readers)
	result, err := r.Search(context.Background(),
		&SearchCriteria{TargetIDs: []uint{3, 4}}, SortCriteria{})
	require.NoError(t, err)

	require.Len(t, result.Results, 1)
	assert.EqualValues(t, 7, result.Results[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSearchPagesPartitionOrderedResults(t *testing.T) {
	_, readers := newTestIndex(t)
	gdb, mock := newMockDB(t)
	now := time.Now()

	// 固定total为3，limit 2：两页窗口必须不重叠地覆盖全部行
	mock.ExpectQuery(`SELECT count\(\*\) FROM documents AS d`).WillReturnRows(
		sqlmock.NewRows([]string{"count"}).AddRow(3))
	mock.ExpectQuery(`(?s)SELECT d\.document_id.*LIMIT \$\d+`).
		WithArgs(models.RouteStepPending, false, 2).
		WillReturnRows(pageRows().
			AddRow(3, "Newest", nil, now, now, nil, nil, nil, nil).
			AddRow(2, "Middle", nil, now, now, nil, nil, nil, nil))
	mock.ExpectQuery(`SELECT count\(\*\) FROM documents AS d`).WillReturnRows(
		sqlmock.NewRows([]string{"count"}).AddRow(3))
	mock.ExpectQuery(`(?s)SELECT d\.document_id.*LIMIT \$\d+ OFFSET \$\d+`).
		WithArgs(models.RouteStepPending, false, 2, 2).
		WillReturnRows(pageRows().
			AddRow(1, "Oldest", nil, now, now, nil, nil, nil, nil))

	r := newResolver(t, gdb, readers)

	first, err := r.Search(context.Background(), &SearchCriteria{Limit: 2, Offset: 0}, SortCriteria{})
	require.NoError(t, err)
	second, err := r.Search(context.Background(), &SearchCriteria{Limit: 2, Offset: 2}, SortCriteria{})
	require.NoError(t, err)

	assert.EqualValues(t, 3, first.Total)
	assert.EqualValues(t, 3, second.Total)
	assert.Equal(t, 2, second.Offset)

	seen := make(map[uint]bool)
	for _, res := range append(first.Results, second.Results...) {
		assert.False(t, seen[res.ID])
		seen[res.ID] = true
	}
	assert.Len(t, seen, 3)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSearchTagGroupsExpandBeforeFiltering(t *testing.T) {
	_, readers := newTestIndex(t)
	gdb, mock := newMockDB(t)

	// 标签1展开出子标签2，再无下层
	mock.ExpectQuery(`SELECT .* FROM "tags"`).WillReturnRows(
		sqlmock.NewRows([]string{"tag_id"}).AddRow(2))
	mock.ExpectQuery(`SELECT .* FROM "tags"`).WillReturnRows(
		sqlmock.NewRows([]string{"tag_id"}))
	mock.ExpectQuery(`SELECT count\(\*\) FROM documents AS d`).WillReturnRows(
		sqlmock.NewRows([]string{"count"}).AddRow(0))

	r := newResolver(t, gdb, readers)
	result, err := r.Search(context.Background(),
		&SearchCriteria{TagGroups: [][]uint{{1}}}, SortCriteria{})
	require.NoError(t, err)
	assert.Zero(t, result.Total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNormalizePage(t *testing.T) {
	r := &Resolver{cfg: testSearchConfig}

	limit, offset := r.normalizePage(0, -5)
	assert.Equal(t, 20, limit)
	assert.Zero(t, offset)

	limit, _ = r.normalizePage(500, 0)
	assert.Equal(t, 50, limit)

	limit, offset = r.normalizePage(10, 30)
	assert.Equal(t, 10, limit)
	assert.Equal(t, 30, offset)
}

func TestAssembleResultNormalizesNulls(t *testing.T) {
	row := documentRow{
		DocumentID: 4,
		Title:      "Plain",
		Description: sql.NullString{},
		SharedCount: sql.NullInt64{},
		FileCount:   sql.NullInt64{},
	}

	result := assembleResult(row, nil)
	assert.EqualValues(t, 4, result.ID)
	assert.Empty(t, result.Description)
	assert.Zero(t, result.SharedCount)
	assert.Zero(t, result.FileCount)
	assert.Zero(t, result.ActiveRouteID)
}
