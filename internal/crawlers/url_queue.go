package crawlers

import (
	"sync"

	"github.com/RecoveryAshes/urlrecon/internal/models"
)

// VisitedSet 已抓取URL集合
// 职责: 记录本次运行中已抓取的URL,只增不减,按字符串精确比较(不做规范化)
type VisitedSet struct {
	// 已访问URL标记集合
	visited map[string]struct{}

	// 保护visited的读写锁
	mu sync.RWMutex
}

// NewVisitedSet 创建已访问集合
func NewVisitedSet() *VisitedSet {
	return &VisitedSet{
		visited: make(map[string]struct{}),
	}
}

// MarkIfUnvisited 原子地检查并标记URL
// 返回true表示URL此前未访问且已被本次调用标记
func (v *VisitedSet) MarkIfUnvisited(urlStr string) bool {
	v.mu.Lock()
	defer v.mu.Unlock()

	if _, ok := v.visited[urlStr]; ok {
		return false
	}
	v.visited[urlStr] = struct{}{}
	return true
}

// IsVisited 检查URL是否已访问
func (v *VisitedSet) IsVisited(urlStr string) bool {
	v.mu.RLock()
	defer v.mu.RUnlock()
	_, ok := v.visited[urlStr]
	return ok
}

// Len 返回已访问URL数量
func (v *VisitedSet) Len() int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return len(v.visited)
}

// WorkQueue (URL, 深度) 工作队列
// 先进先出,使每个URL尽量在最浅的深度被抓取
type WorkQueue struct {
	items []models.URLItem
}

// NewWorkQueue 创建工作队列
func NewWorkQueue() *WorkQueue {
	return &WorkQueue{
		items: make([]models.URLItem, 0, 16),
	}
}

// Push 添加URL到队列尾部
// 深度和已访问检查在出队时进行
func (q *WorkQueue) Push(item models.URLItem) {
	q.items = append(q.items, item)
}

// Pop 取出队首元素
func (q *WorkQueue) Pop() (models.URLItem, bool) {
	if len(q.items) == 0 {
		return models.URLItem{}, false
	}
	item := q.items[0]
	q.items[0] = models.URLItem{}
	q.items = q.items[1:]
	return item, true
}

// PendingCount 返回当前待处理数量
func (q *WorkQueue) PendingCount() int {
	return len(q.items)
}
