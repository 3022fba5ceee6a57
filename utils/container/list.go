package container

import (
	"fmt"
	"log"
)

// ListNode 双向链表中的节点
// 功能：表示双向链表中的一个节点，节点只能同时属于一个链表
type ListNode[T any] struct {
	parent     *List[T]     // 所属链表
	prev, next *ListNode[T] // 前驱和后继节点
	Value      T            // 节点值
}

// NewListNode 创建游离节点
func NewListNode[T any](value T) *ListNode[T] {
	return &ListNode[T]{Value: value}
}

func (n *ListNode[T]) String() string {
	return fmt.Sprintf("Node{Value:%+v}", n.Value)
}

// Prev 获取节点的前一个节点，第一个节点返回nil
func (n *ListNode[T]) Prev() *ListNode[T] {
	return n.prev
}

// Next 获取节点的下一个节点，最后一个节点返回nil
func (n *ListNode[T]) Next() *ListNode[T] {
	return n.next
}

// Parent 获取节点所在的链表，游离节点返回nil
func (n *ListNode[T]) Parent() *List[T] {
	return n.parent
}

// InsertBefore 在节点前插入新节点
// 功能：在当前节点之前插入一个游离节点
// 参数：add-要插入的新节点
// 算法说明：
// 1. 检查新节点是否已经在其他链表中
// 2. 设置新节点的父链表和前后指针
// 3. 如果新节点成为第一个节点，更新链表头指针
func (n *ListNode[T]) InsertBefore(add *ListNode[T]) {
	if add.parent != nil {
		log.Panic("insert node who already in list")
	}
	add.parent = n.parent
	add.next = n
	add.prev = n.prev
	n.prev = add
	if add.prev != nil {
		add.prev.next = add
	} else {
		add.parent.head = add
	}
	n.parent.length++
}

// InsertAfter 在节点后插入新节点
// 功能：在当前节点之后插入一个游离节点
// 参数：add-要插入的新节点
func (n *ListNode[T]) InsertAfter(add *ListNode[T]) {
	if add.parent != nil {
		log.Panic("insert node who already in list")
	}
	add.parent = n.parent
	add.prev = n
	add.next = n.next
	n.next = add
	if add.next != nil {
		add.next.prev = add
	} else {
		add.parent.tail = add
	}
	n.parent.length++
}

// List 双向链表
// 功能：通用双向链表，对象池用它维护"可用在前"的顺序
type List[T any] struct {
	ID         string       // 链表标识符
	head, tail *ListNode[T] // 头尾节点指针
	length     int          // 链表长度
}

func (l *List[T]) String() string {
	return fmt.Sprintf("List{ID:%v, Len:%v}", l.ID, l.length)
}

// Values 按顺序获取所有节点的值
func (l *List[T]) Values() []T {
	values := make([]T, l.length)
	for i, node := 0, l.head; node != nil; i, node = i+1, node.next {
		values[i] = node.Value
	}
	return values
}

// Len 获取双向链表长度
func (l *List[T]) Len() int {
	return l.length
}

// PushFront 向链表头部插入节点
func (l *List[T]) PushFront(add *ListNode[T]) {
	if add.parent != nil {
		log.Panic("push front node who already in list")
	}
	add.next = nil
	add.prev = nil
	if l.head == nil {
		add.parent = l
		l.head = add
		l.tail = add
		l.length++
	} else {
		// length++和add.parent在InsertBefore中处理
		l.head.InsertBefore(add)
	}
}

// PushBack 向链表尾部插入节点
func (l *List[T]) PushBack(add *ListNode[T]) {
	if add.parent != nil {
		log.Panic("push back node who already in list")
	}
	add.next = nil
	add.prev = nil
	if l.tail == nil {
		add.parent = l
		l.head = add
		l.tail = add
		l.length++
	} else {
		// length++和add.parent在InsertAfter中处理
		l.tail.InsertAfter(add)
	}
}

// Remove 从链表中移除节点
// 功能：删除指定节点并将其置为游离状态，可再次插入
func (l *List[T]) Remove(node *ListNode[T]) {
	if node.parent != l {
		log.Panic("remove node from wrong list")
	}
	if node.prev != nil {
		node.prev.next = node.next
	} else {
		l.head = node.next
	}
	if node.next != nil {
		node.next.prev = node.prev
	} else {
		l.tail = node.prev
	}
	node.prev = nil
	node.next = nil
	node.parent = nil
	l.length--
}

// MoveToBack 将链表中的节点移动到尾部
func (l *List[T]) MoveToBack(node *ListNode[T]) {
	if node == l.tail {
		return
	}
	l.Remove(node)
	l.PushBack(node)
}

// First 获取链表头部节点
func (l *List[T]) First() *ListNode[T] {
	return l.head
}

// Last 获取链表尾部节点
func (l *List[T]) Last() *ListNode[T] {
	return l.tail
}

// Find 从头部开始查找第一个满足条件的节点（first-fit）
// 返回：找到的节点，找不到返回nil
func (l *List[T]) Find(pred func(T) bool) *ListNode[T] {
	for node := l.head; node != nil; node = node.next {
		if pred(node.Value) {
			return node
		}
	}
	return nil
}
