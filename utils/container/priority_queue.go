package container

import "container/heap"

// item 优先队列中单个元素
type item[T any] struct {
	Value    T       // 元素的值
	Priority float64 // 优先级（越小越优先）
	seq      uint64  // 入队序号，优先级相同时先入先出
	index    int     // 项在堆中的索引，由heap.Interface维护
}

// priorityQueue 实现了heap.Interface
type priorityQueue[T any] []*item[T]

func (pq priorityQueue[T]) Len() int { return len(pq) }

// Less 优先级小的在前，优先级相同时按入队顺序
func (pq priorityQueue[T]) Less(i, j int) bool {
	if pq[i].Priority != pq[j].Priority {
		return pq[i].Priority < pq[j].Priority
	}
	return pq[i].seq < pq[j].seq
}

func (pq priorityQueue[T]) Swap(i, j int) {
	pq[i], pq[j] = pq[j], pq[i]
	pq[i].index = i
	pq[j].index = j
}

func (pq *priorityQueue[T]) Push(x any) {
	n := len(*pq)
	item := x.(*item[T])
	item.index = n
	*pq = append(*pq, item)
}

func (pq *priorityQueue[T]) Pop() any {
	old := *pq
	n := len(old)
	item := old[n-1]
	old[n-1] = nil  // 避免内存泄漏
	item.index = -1 // 为了安全起见
	*pq = old[0 : n-1]
	return item
}

// PriorityQueue 稳定的最小优先队列
// 功能：仿真时间线用它按触发时间排列等待中的任务
// 说明：优先级相同的元素按入队顺序出队，保证仿真结果可复现
type PriorityQueue[T any] struct {
	queue priorityQueue[T]
	seq   uint64
}

// NewPriorityQueue 创建优先队列
func NewPriorityQueue[T any]() *PriorityQueue[T] {
	return &PriorityQueue[T]{queue: make(priorityQueue[T], 0)}
}

// Len 获取当前队列长度
func (q *PriorityQueue[T]) Len() int {
	return len(q.queue)
}

// First 查看优先级数值最小的元素（不移除）
func (q *PriorityQueue[T]) First() (value T, priority float64) {
	return q.queue[0].Value, q.queue[0].Priority
}

// HeapPush 加入元素并维护堆结构
func (q *PriorityQueue[T]) HeapPush(value T, priority float64) {
	q.seq++
	heap.Push(&q.queue, &item[T]{
		Value:    value,
		Priority: priority,
		seq:      q.seq,
	})
}

// HeapPop 弹出优先级数值最小的元素
func (q *PriorityQueue[T]) HeapPop() (value T, priority float64) {
	item := heap.Pop(&q.queue).(*item[T])
	return item.Value, item.Priority
}
