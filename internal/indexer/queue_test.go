package indexer

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/docshelf/backend-go/internal/models"
)

// recordingWriter 记录收到的调用，用于队列测试
type recordingWriter struct {
	mu      sync.Mutex
	indexed []uint
	deleted []uint
	block   chan struct{}
}

func (w *recordingWriter) IndexDocument(_ context.Context, doc *models.Document) {
	if w.block != nil {
		<-w.block
	}
	w.mu.Lock()
	w.indexed = append(w.indexed, doc.DocumentID)
	w.mu.Unlock()
}

func (w *recordingWriter) UpdateDocument(ctx context.Context, doc *models.Document) {
	w.IndexDocument(ctx, doc)
}

func (w *recordingWriter) IndexFile(_ context.Context, _ *models.DocFile) {}

func (w *recordingWriter) UpdateFile(_ context.Context, _ *models.DocFile) {}

func (w *recordingWriter) DeleteRecord(_ context.Context, id uint) {
	w.mu.Lock()
	w.deleted = append(w.deleted, id)
	w.mu.Unlock()
}

func TestQueueProcessesEventsInOrder(t *testing.T) {
	writer := &recordingWriter{}
	q := NewEventQueue(16, writer, zap.NewNop())
	q.Start(context.Background())

	q.Publish(Event{Type: EventIndexDocument, Document: &models.Document{DocumentID: 1}})
	q.Publish(Event{Type: EventUpdateDocument, Document: &models.Document{DocumentID: 2}})
	q.Publish(Event{Type: EventDeleteRecord, RecordID: 3})

	q.Stop()

	assert.Equal(t, []uint{1, 2}, writer.indexed)
	assert.Equal(t, []uint{3}, writer.deleted)
}

func TestQueueDropsWhenFull(t *testing.T) {
	writer := &recordingWriter{block: make(chan struct{})}
	q := NewEventQueue(1, writer, zap.NewNop())
	q.Start(context.Background())

	// 第一条事件占住worker，第二条占满队列，第三条被丢弃
	q.Publish(Event{Type: EventIndexDocument, Document: &models.Document{DocumentID: 1}})
	q.Publish(Event{Type: EventIndexDocument, Document: &models.Document{DocumentID: 2}})
	q.Publish(Event{Type: EventIndexDocument, Document: &models.Document{DocumentID: 3}})

	close(writer.block)
	q.Stop()

	writer.mu.Lock()
	defer writer.mu.Unlock()
	assert.LessOrEqual(t, len(writer.indexed), 2)
	assert.Contains(t, writer.indexed, uint(1))
}

func TestQueuePublishAfterStopIsSafe(t *testing.T) {
	writer := &recordingWriter{}
	q := NewEventQueue(4, writer, zap.NewNop())
	q.Start(context.Background())
	q.Stop()
	q.Stop()

	q.Publish(Event{Type: EventIndexDocument, Document: &models.Document{DocumentID: 1}})
	assert.Empty(t, writer.indexed)
}
