package ecs

import "fmt"

// Handle 池化对象的句柄
//
// 由槽位下标和代数组成。对象每次被取出时代数加一，
// 因此释放后再被重新取出的对象不会被旧句柄访问到。
// 零值句柄无效（代数从 1 开始，0 保留为无效值）。
type Handle struct {
	index      uint32
	generation uint32
}

// IsValid 句柄是否指向过某个对象（不保证对象仍然存活）
func (h Handle) IsValid() bool {
	return h.generation != 0
}

// Index 返回槽位下标
func (h Handle) Index() int {
	return int(h.index)
}

// Generation 返回代数
func (h Handle) Generation() uint32 {
	return h.generation
}

// String 返回句柄的调试表示
func (h Handle) String() string {
	return fmt.Sprintf("Handle(%d#%d)", h.index, h.generation)
}

// poolSlot 对象池槽位
type poolSlot[T any] struct {
	obj        *T
	generation uint32
	inUse      bool
}

// ObjectPool 固定容量的对象池
//
// 职责：
//   - 复用对象，避免每帧分配
//   - 通过带代数的句柄检测过期引用
//
// 对象在首次需要时才创建，创建后常驻复用。
// 非线程安全，只能在游戏主循环中使用。
type ObjectPool[T any] struct {
	newFn    func() *T // 创建新对象
	resetFn  func(*T)  // 对象归还时重置（可为 nil）
	slots    []poolSlot[T]
	free     []uint32 // 空闲槽位下标（栈）
	capacity int
	live     int
	strict   bool // 严格模式：耗尽时 panic
}

// NewObjectPool 创建对象池
//
// 参数：
//   - capacity: 最大同时存活的对象数量
//   - newFn: 创建新对象的函数
//   - resetFn: 对象归还时调用的重置函数，可为 nil
func NewObjectPool[T any](capacity int, newFn func() *T, resetFn func(*T)) *ObjectPool[T] {
	if capacity < 0 {
		capacity = 0
	}
	return &ObjectPool[T]{
		newFn:    newFn,
		resetFn:  resetFn,
		slots:    make([]poolSlot[T], 0, capacity),
		free:     make([]uint32, 0, capacity),
		capacity: capacity,
	}
}

// SetStrict 设置严格模式
// 严格模式下池耗尽视为配置错误，直接 panic（调试用）
func (p *ObjectPool[T]) SetStrict(strict bool) {
	p.strict = strict
}

// SetCapacity 修改池容量
//
// 正在使用的对象不受影响；超出新容量的空闲对象被丢弃，
// 超出新容量的在用对象归还时被丢弃。
func (p *ObjectPool[T]) SetCapacity(n int) {
	if n < 0 {
		n = 0
	}
	p.capacity = n

	p.free = p.free[:0]
	for i := range p.slots {
		slot := &p.slots[i]
		if slot.inUse {
			continue
		}
		if i < n {
			p.free = append(p.free, uint32(i))
		} else {
			slot.obj = nil
		}
	}
}

// Capacity 返回池容量
func (p *ObjectPool[T]) Capacity() int {
	return p.capacity
}

// Live 返回当前正在使用的对象数量
func (p *ObjectPool[T]) Live() int {
	return p.live
}

// Acquire 从池中取出一个对象
//
// 返回：
//   - Handle: 对象句柄
//   - *T: 对象指针
//   - bool: 池耗尽时返回 false（严格模式下直接 panic）
func (p *ObjectPool[T]) Acquire() (Handle, *T, bool) {
	var idx uint32
	switch {
	case len(p.free) > 0:
		idx = p.free[len(p.free)-1]
		p.free = p.free[:len(p.free)-1]
	case len(p.slots) < p.capacity:
		p.slots = append(p.slots, poolSlot[T]{})
		idx = uint32(len(p.slots) - 1)
	default:
		if p.strict {
			panic(fmt.Sprintf("object pool exhausted: capacity %d, live %d", p.capacity, p.live))
		}
		return Handle{}, nil, false
	}

	slot := &p.slots[idx]
	if slot.obj == nil {
		slot.obj = p.newFn()
	}
	slot.generation++
	if slot.generation == 0 {
		slot.generation = 1
	}
	slot.inUse = true
	p.live++

	return Handle{index: idx, generation: slot.generation}, slot.obj, true
}

// Get 通过句柄获取对象
// 句柄已过期（对象已归还或被重新取出）时返回 false
func (p *ObjectPool[T]) Get(h Handle) (*T, bool) {
	slot, ok := p.slotFor(h)
	if !ok {
		return nil, false
	}
	return slot.obj, true
}

// Release 归还对象
// 句柄已过期时返回 false，同一个句柄不会被归还两次
func (p *ObjectPool[T]) Release(h Handle) bool {
	slot, ok := p.slotFor(h)
	if !ok {
		return false
	}

	slot.inUse = false
	p.live--
	if p.resetFn != nil {
		p.resetFn(slot.obj)
	}

	if int(h.index) < p.capacity {
		p.free = append(p.free, h.index)
	} else {
		slot.obj = nil
	}
	return true
}

// ForEachLive 遍历所有正在使用的对象
func (p *ObjectPool[T]) ForEachLive(fn func(Handle, *T)) {
	for i := range p.slots {
		slot := &p.slots[i]
		if slot.inUse {
			fn(Handle{index: uint32(i), generation: slot.generation}, slot.obj)
		}
	}
}

func (p *ObjectPool[T]) slotFor(h Handle) (*poolSlot[T], bool) {
	if !h.IsValid() || int(h.index) >= len(p.slots) {
		return nil, false
	}
	slot := &p.slots[h.index]
	if !slot.inUse || slot.generation != h.generation {
		return nil, false
	}
	return slot, true
}
