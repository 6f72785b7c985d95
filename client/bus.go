package client

import "sync"

// Listener 事件回调
type Listener func(Event)

type subscription struct {
	id   uint64
	kind EventKind // 0 表示订阅全部事件
	fn   Listener
}

// Bus 进程内发布/订阅：同步、按注册顺序、在发布者所在协程上回调
type Bus struct {
	mu     sync.RWMutex
	nextID uint64
	subs   []subscription
}

func NewBus() *Bus {
	return &Bus{}
}

// Subscribe 订阅某一类事件，返回取消订阅函数（可重复调用）
func (b *Bus) Subscribe(kind EventKind, fn Listener) (unsubscribe func()) {
	return b.add(kind, fn)
}

// SubscribeAll 订阅全部事件
func (b *Bus) SubscribeAll(fn Listener) (unsubscribe func()) {
	return b.add(0, fn)
}

func (b *Bus) add(kind EventKind, fn Listener) func() {
	b.mu.Lock()
	b.nextID++
	id := b.nextID
	b.subs = append(b.subs, subscription{id: id, kind: kind, fn: fn})
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { b.remove(id) })
	}
}

func (b *Bus) remove(id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, s := range b.subs {
		if s.id == id {
			// 复制而非原地修改，正在进行的 Emit 持有的是旧切片
			next := make([]subscription, 0, len(b.subs)-1)
			next = append(next, b.subs[:i]...)
			next = append(next, b.subs[i+1:]...)
			b.subs = next
			return
		}
	}
}

// Emit 发布事件；回调执行期间不持锁，回调里可以订阅或取消订阅
func (b *Bus) Emit(ev Event) int {
	b.mu.RLock()
	subs := b.subs
	b.mu.RUnlock()

	n := 0
	for _, s := range subs {
		if s.kind == 0 || s.kind == ev.Kind() {
			s.fn(ev)
			n++
		}
	}
	return n
}

// Len 当前订阅数
func (b *Bus) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

// On 以具体事件类型订阅，省去调用方的类型断言
//
//	client.On(bus, func(ev client.RoomState) { ... })
func On[E Event](b *Bus, fn func(E)) (unsubscribe func()) {
	var zero E
	return b.Subscribe(zero.Kind(), func(ev Event) {
		if e, ok := ev.(E); ok {
			fn(e)
		}
	})
}
