package indexer

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	apperrors "github.com/docshelf/backend-go/internal/errors"
	"github.com/docshelf/backend-go/internal/index"
	"github.com/docshelf/backend-go/internal/models"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	gdb, err := gorm.Open(postgres.New(postgres.Config{
		Conn:                 db,
		PreferSimpleProtocol: true,
	}), &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)})
	require.NoError(t, err)
	return gdb, mock
}

func documentRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"document_id", "title", "description", "language", "deleted"})
}

func fileRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"file_id", "document_id", "file_name", "content", "deleted"})
}

func TestRebuildReplacesStaleRecords(t *testing.T) {
	storage := newMemoryStorage(t)
	require.NoError(t, storage.Add(index.NewDocumentRecord(&models.Document{DocumentID: 99, Title: "obsolete entry"})))

	gdb, mock := newMockDB(t)
	mock.ExpectQuery(`SELECT .* FROM "documents"`).WillReturnRows(
		documentRows().
			AddRow(1, "Invoice March", "unique banana term", "en", false).
			AddRow(2, "Contract April", "", "de", false))
	mock.ExpectQuery(`SELECT .* FROM "doc_files"`).WillReturnRows(
		fileRows().AddRow(5, 1, "scan.pdf", "attachment text", false))

	r := NewRebuilder(gdb, storage, 200, zap.NewNop())
	require.NoError(t, r.Rebuild(context.Background()))

	assert.Empty(t, searchField(t, storage, index.FieldTitle, "obsolete"))
	assert.Equal(t, []string{"document:1"}, searchField(t, storage, index.FieldDescription, "banana"))
	assert.Equal(t, []string{"file:5"}, searchField(t, storage, index.FieldContent, "attachment"))
	assert.NoError(t, mock.ExpectationsWereMet())

	status := r.Status()
	assert.False(t, status.Running)
	assert.Empty(t, status.LastError)
	assert.False(t, status.LastRun.IsZero())
}

func TestRebuildIsIdempotent(t *testing.T) {
	storage := newMemoryStorage(t)
	gdb, mock := newMockDB(t)

	for i := 0; i < 2; i++ {
		mock.ExpectQuery(`SELECT .* FROM "documents"`).WillReturnRows(
			documentRows().AddRow(1, "Invoice March", "", "en", false))
		mock.ExpectQuery(`SELECT .* FROM "doc_files"`).WillReturnRows(fileRows())
	}

	r := NewRebuilder(gdb, storage, 200, zap.NewNop())
	require.NoError(t, r.Rebuild(context.Background()))
	require.NoError(t, r.Rebuild(context.Background()))

	count, err := storage.DocCount()
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRebuildFailureIsRetryable(t *testing.T) {
	storage := newMemoryStorage(t)
	gdb, mock := newMockDB(t)

	mock.ExpectQuery(`SELECT .* FROM "documents"`).WillReturnError(assert.AnError)

	r := NewRebuilder(gdb, storage, 200, zap.NewNop())
	err := r.Rebuild(context.Background())
	require.Error(t, err)

	appErr, ok := err.(*apperrors.AppError)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrCodeRebuildFailed, appErr.Code)
	assert.NotEmpty(t, r.Status().LastError)

	// 失败后可重试
	mock.ExpectQuery(`SELECT .* FROM "documents"`).WillReturnRows(
		documentRows().AddRow(1, "Recovered", "", "en", false))
	mock.ExpectQuery(`SELECT .* FROM "doc_files"`).WillReturnRows(fileRows())

	require.NoError(t, r.Rebuild(context.Background()))
	assert.Equal(t, []string{"document:1"}, searchField(t, storage, index.FieldTitle, "recovered"))
}
