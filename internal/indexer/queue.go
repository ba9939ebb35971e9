package indexer

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/docshelf/backend-go/internal/index"
	"github.com/docshelf/backend-go/internal/interfaces"
	"github.com/docshelf/backend-go/internal/models"
)

// EventType 实体变更事件类型
type EventType string

const (
	EventIndexDocument  EventType = "index_document"
	EventUpdateDocument EventType = "update_document"
	EventIndexFile      EventType = "index_file"
	EventUpdateFile     EventType = "update_file"
	EventDeleteRecord   EventType = "delete_record"
)

// Event 实体变更事件，携带完整填充的实体
type Event struct {
	Type     EventType
	Document *models.Document
	File     *models.DocFile
	RecordID uint
}

// EventQueue 有界事件队列
// 索引更新相对触发它的事务异步执行，业务操作不等待索引写入
type EventQueue struct {
	events chan Event
	writer interfaces.IndexWriterInterface
	logger *zap.Logger

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

// NewEventQueue 创建事件队列
func NewEventQueue(size int, writer interfaces.IndexWriterInterface, logger *zap.Logger) *EventQueue {
	return &EventQueue{
		events: make(chan Event, size),
		writer: writer,
		logger: logger,
	}
}

// Start 启动消费协程
func (q *EventQueue) Start(ctx context.Context) {
	q.wg.Add(1)
	go func() {
		defer q.wg.Done()
		q.logger.Info("Index event worker started")
		for event := range q.events {
			q.dispatch(ctx, event)
			index.SetQueueDepth(len(q.events))
		}
		q.logger.Info("Index event worker stopped")
	}()
}

// Publish 投递事件，队列满时丢弃并记录（索引可通过重建补齐）
func (q *EventQueue) Publish(event Event) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		q.logger.Warn("Event queue is closed, dropping event", zap.String("type", string(event.Type)))
		index.ObserveDroppedEvent()
		return
	}

	select {
	case q.events <- event:
		index.SetQueueDepth(len(q.events))
	default:
		q.logger.Warn("Event queue is full, dropping event", zap.String("type", string(event.Type)))
		index.ObserveDroppedEvent()
	}
}

// Depth 当前待处理事件数
func (q *EventQueue) Depth() int {
	return len(q.events)
}

// Stop 停止接收新事件并等待已入队事件处理完成
func (q *EventQueue) Stop() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	close(q.events)
	q.mu.Unlock()

	q.wg.Wait()
}

// dispatch 按事件类型调用索引器
func (q *EventQueue) dispatch(ctx context.Context, event Event) {
	switch event.Type {
	case EventIndexDocument:
		q.writer.IndexDocument(ctx, event.Document)
	case EventUpdateDocument:
		q.writer.UpdateDocument(ctx, event.Document)
	case EventIndexFile:
		q.writer.IndexFile(ctx, event.File)
	case EventUpdateFile:
		q.writer.UpdateFile(ctx, event.File)
	case EventDeleteRecord:
		q.writer.DeleteRecord(ctx, event.RecordID)
	default:
		q.logger.Warn("Unknown index event type", zap.String("type", string(event.Type)))
	}
}
