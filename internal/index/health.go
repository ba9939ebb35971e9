package index

import (
	"context"

	"go.uber.org/zap"

	"github.com/docshelf/backend-go/internal/interfaces"
)

// EnsureReady 启动时打开索引并校验结构版本
// 版本不符或索引损坏时异步触发全量重建，启动流程不因此失败
func EnsureReady(storage *Storage, rebuilder interfaces.RebuilderInterface, logger *zap.Logger) error {
	if err := storage.Open(); err != nil {
		return err
	}

	if !storage.RebuildRequired() {
		return nil
	}

	if rebuilder == nil {
		logger.Warn("Index requires full rebuild but no rebuilder is configured")
		return nil
	}

	logger.Warn("Index requires full rebuild, scheduling in background")
	go func() {
		if err := rebuilder.Rebuild(context.Background()); err != nil {
			logger.Error("Background index rebuild failed", zap.Error(err))
		}
	}()
	return nil
}
