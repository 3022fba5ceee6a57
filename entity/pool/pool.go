// 对象池，按类别标签预分配并回收实体
package pool

import (
	"errors"
	"fmt"

	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
	"github.com/tsinghua-fib-lab/crossway-sim/entity"
	"github.com/tsinghua-fib-lab/crossway-sim/utils/container"
)

var log = logrus.WithField("module", "pool")

var (
	ErrUnknownTag    = errors.New("pool: unknown tag")
	ErrUnknownHandle = errors.New("pool: handle does not belong to this pool")
	ErrNotInUse      = errors.New("pool: handle is not in use")
)

// Kind 一类池化实体的声明
type Kind[T any] struct {
	Tag        string
	Amount     int       // 预分配数量；可扩展时也是每次扩展的数量
	Expandable bool      // 全部在用时是否追加Amount个新实体
	New        func() T  // 创建实体
	OnSpawn    func(v T) // 每次取出时的初始化，nil表示该类实体没有初始化动作
}

type entry[T any] struct {
	value T
	tag   string
	inUse bool
}

type bucket[T any] struct {
	kind Kind[T]
	list *container.List[*entry[T]]
}

// Pool 对象池
// 功能：按标签维护"可用在前"的实体链表，取出采用first-fit，取出后移到链表尾部
// 说明：池大小在初始化时确定，除非该类声明为可扩展；全部在用时Acquire失败而不是阻塞
type Pool[T comparable] struct {
	buckets map[string]*bucket[T]
	nodes   map[T]*container.ListNode[*entry[T]]
}

// New 创建对象池并预分配所有实体
// 说明：标签重复、数量非正或没有构造函数时panic
func New[T comparable](kinds ...Kind[T]) *Pool[T] {
	p := &Pool[T]{
		buckets: make(map[string]*bucket[T]),
		nodes:   make(map[T]*container.ListNode[*entry[T]]),
	}
	for _, k := range kinds {
		if _, ok := p.buckets[k.Tag]; ok {
			log.Panicf("duplicated pool tag %q", k.Tag)
		}
		if k.Amount <= 0 || k.New == nil {
			log.Panicf("pool %q needs amount > 0 and a constructor", k.Tag)
		}
		b := &bucket[T]{kind: k, list: &container.List[*entry[T]]{ID: k.Tag}}
		p.buckets[k.Tag] = b
		p.grow(b)
		log.Infof("pool %q: %d entries (expandable=%v)", k.Tag, k.Amount, k.Expandable)
	}
	return p
}

// grow 追加Amount个实体
// 返回：第一个新实体的节点
func (p *Pool[T]) grow(b *bucket[T]) *container.ListNode[*entry[T]] {
	var first *container.ListNode[*entry[T]]
	for i := 0; i < b.kind.Amount; i++ {
		v := b.kind.New()
		if _, ok := p.nodes[v]; ok {
			log.Panicf("pool %q: constructor returned a handle already pooled", b.kind.Tag)
		}
		node := container.NewListNode(&entry[T]{value: v, tag: b.kind.Tag})
		b.list.PushBack(node)
		p.nodes[v] = node
		if first == nil {
			first = node
		}
	}
	return first
}

// Acquire 取出一个空闲实体
// 功能：从链表头部找到第一个空闲实体，标记为在用并移到尾部，然后执行OnSpawn
// 参数：tag-类别标签
// 返回：实体；标签不存在返回ErrUnknownTag，全部在用且不可扩展返回ErrResourceExhausted
func (p *Pool[T]) Acquire(tag string) (T, error) {
	var zero T
	b, ok := p.buckets[tag]
	if !ok {
		return zero, fmt.Errorf("%w: %q", ErrUnknownTag, tag)
	}
	node := b.list.Find(func(e *entry[T]) bool { return !e.inUse })
	if node == nil {
		if !b.kind.Expandable {
			err := fmt.Errorf("%w: pool %q has all %d entries in use", entity.ErrResourceExhausted, tag, b.list.Len())
			log.Warn(err)
			return zero, err
		}
		node = p.grow(b)
		log.Infof("pool %q expanded to %d entries", tag, b.list.Len())
	}
	node.Value.inUse = true
	b.list.MoveToBack(node)
	if b.kind.OnSpawn != nil {
		b.kind.OnSpawn(node.Value.value)
	}
	return node.Value.value, nil
}

// Release 归还实体
// 返回：实体不属于本池或已经空闲时返回错误，池状态不变
func (p *Pool[T]) Release(v T) error {
	node, ok := p.nodes[v]
	if !ok {
		err := fmt.Errorf("%w: %v", ErrUnknownHandle, v)
		log.Warn(err)
		return err
	}
	if !node.Value.inUse {
		err := fmt.Errorf("%w: %v (tag %q)", ErrNotInUse, v, node.Value.tag)
		log.Warn(err)
		return err
	}
	node.Value.inUse = false
	return nil
}

// Size 某类实体的总数
func (p *Pool[T]) Size(tag string) int {
	if b, ok := p.buckets[tag]; ok {
		return b.list.Len()
	}
	return 0
}

// InUse 某类实体在用的数量
func (p *Pool[T]) InUse(tag string) int {
	b, ok := p.buckets[tag]
	if !ok {
		return 0
	}
	return lo.CountBy(b.list.Values(), func(e *entry[T]) bool { return e.inUse })
}

// Tags 所有类别标签
func (p *Pool[T]) Tags() []string {
	return lo.Keys(p.buckets)
}
