package client

import (
	"encoding/json"
	"fmt"
	"sync"
)

// Handler 单个标签的处理函数；返回的 error 已由工厂给出字段路径
type Handler func(data json.RawMessage) error

type route struct {
	category Category
	handle   Handler
}

// Router 入站标签到处理函数的绑定表；每个标签在连接生命周期内只绑定一次
type Router struct {
	mu     sync.RWMutex
	routes map[string]route
}

func NewRouter() *Router {
	return &Router{routes: make(map[string]route)}
}

// Bind 绑定标签；重复绑定返回 ErrDuplicateBinding
func (r *Router) Bind(tag string, category Category, h Handler) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if prev, ok := r.routes[tag]; ok {
		return fmt.Errorf("%w: %q (%s)", ErrDuplicateBinding, tag, prev.category)
	}
	r.routes[tag] = route{category: category, handle: h}
	return nil
}

// Category 返回标签绑定的类别
func (r *Router) Category(tag string) (Category, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rt, ok := r.routes[tag]
	return rt.category, ok
}

// Dispatch 按标签分发；未绑定的标签返回 handled=false，不视为错误
func (r *Router) Dispatch(tag string, data json.RawMessage) (handled bool, err error) {
	r.mu.RLock()
	rt, ok := r.routes[tag]
	r.mu.RUnlock()
	if !ok {
		return false, nil
	}
	return true, tagged(tag, rt.handle(data))
}

// Len 已绑定的标签数
func (r *Router) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.routes)
}
