package container

// IIncrementalItem 支持增量更新的元素接口
// 功能：元素记录自己在数组中的位置，删除时O(1)定位
type IIncrementalItem interface {
	Index() int         // 获取元素的索引
	SetIndex(index int) // 设置元素的索引
}

// IncrementalItemBase 增量元素基类
// 功能：可作为嵌入字段快速实现IIncrementalItem接口
type IncrementalItemBase struct {
	index int // 元素在数组中的索引
}

// Index 获取元素的索引
func (b *IncrementalItemBase) Index() int {
	return b.index
}

// SetIndex 设置元素的索引
func (b *IncrementalItemBase) SetIndex(index int) {
	b.index = index
}

type incrementalOp[T any] struct {
	value T
	add   bool
}

// IncrementalArray 增量数组
// 功能：Add/Remove先写入缓冲，Prepare时按调用顺序统一生效
// 说明：同一步内的读取总是看到上一步的成员，避免更新顺序导致的抖动
type IncrementalArray[T interface {
	comparable
	IIncrementalItem
}] struct {
	data []T                // 主数据数组
	ops  []incrementalOp[T] // 待执行的增删操作
}

// NewIncrementalArray 创建增量数组
func NewIncrementalArray[T interface {
	comparable
	IIncrementalItem
}]() *IncrementalArray[T] {
	return &IncrementalArray[T]{
		data: make([]T, 0),
		ops:  make([]incrementalOp[T], 0),
	}
}

// Len 获取当前数组长度
func (a *IncrementalArray[T]) Len() int {
	return len(a.data)
}

// Data 获取已生效的数据
// 说明：返回内部切片，调用方不应修改
func (a *IncrementalArray[T]) Data() []T {
	return a.data
}

// Pending 待执行的操作数量
func (a *IncrementalArray[T]) Pending() int {
	return len(a.ops)
}

// Add 增加元素（等到Prepare时才会真正增加）
func (a *IncrementalArray[T]) Add(value T) {
	a.ops = append(a.ops, incrementalOp[T]{value: value, add: true})
}

// Remove 删除元素（等到Prepare时才会真正删除）
func (a *IncrementalArray[T]) Remove(value T) {
	a.ops = append(a.ops, incrementalOp[T]{value: value})
}

// Prepare 执行增量操作
// 功能：按调用顺序执行所有缓冲的增删操作
// 算法说明：
// 1. 增：追加到末尾并记录索引
// 2. 删：用末尾元素填补被删除的位置（swap-remove），更新被移动元素的索引
// 3. 删除不在数组中的元素时忽略该操作
// 说明：同一元素在一步内先删后增（或先增后删）按顺序生效
func (a *IncrementalArray[T]) Prepare() {
	for _, op := range a.ops {
		if op.add {
			op.value.SetIndex(len(a.data))
			a.data = append(a.data, op.value)
			continue
		}
		ind := op.value.Index()
		if ind < 0 || ind >= len(a.data) || a.data[ind] != op.value {
			continue
		}
		last := len(a.data) - 1
		if ind != last {
			a.data[ind] = a.data[last]
			a.data[ind].SetIndex(ind)
		}
		var zero T
		a.data[last] = zero
		a.data = a.data[:last]
		op.value.SetIndex(-1)
	}
	a.ops = a.ops[:0]
}
