package index

import (
	"sync"

	"github.com/blevesearch/bleve/v2"
)

// ReaderManager 索引读取端管理器
// 通过别名切换保证读取端始终指向最新的索引实例，切换对并发搜索安全
type ReaderManager struct {
	storage *Storage

	mu         sync.Mutex
	alias      bleve.IndexAlias
	current    bleve.Index
	generation uint64
}

// NewReaderManager 创建读取端管理器
func NewReaderManager(storage *Storage) *ReaderManager {
	return &ReaderManager{storage: storage}
}

// Reader 返回反映当前索引状态的可搜索快照
// 索引尚未就绪时返回ErrNotReady，调用方应按零命中处理而非报错
func (rm *ReaderManager) Reader() (bleve.Index, error) {
	idx, generation, err := rm.storage.Snapshot()
	if err != nil {
		return nil, ErrNotReady
	}

	rm.mu.Lock()
	defer rm.mu.Unlock()

	if rm.alias == nil {
		rm.alias = bleve.NewIndexAlias(idx)
		rm.current = idx
		rm.generation = generation
		return rm.alias, nil
	}

	// 代数只增不减，保证同一管理器返回的快照单调向前
	if generation > rm.generation {
		rm.alias.Swap([]bleve.Index{idx}, []bleve.Index{rm.current})
		rm.current = idx
		rm.generation = generation
	}
	return rm.alias, nil
}
