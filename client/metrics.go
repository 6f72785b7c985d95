package client

import (
	"sync/atomic"
)

// SessionMetrics 记录会话运行期的关键指标（用于监控与调试）
type SessionMetrics struct {
	MessagesReceived int64 // 收到的入站帧
	UnknownTags      int64 // 未绑定标签，被忽略
	DecodeErrors     int64 // 载荷校验失败
	EventsEmitted    int64 // 已发布事件
	ActionsSent      int64 // 已发送的玩家动作
	SendsRejected    int64 // 因未就绪或队列满被拒绝的发送
	HandleTotalNs    int64 // 入站处理累计耗时（纳秒）
}

func (m *SessionMetrics) IncReceived()       { atomic.AddInt64(&m.MessagesReceived, 1) }
func (m *SessionMetrics) IncUnknownTag()     { atomic.AddInt64(&m.UnknownTags, 1) }
func (m *SessionMetrics) IncDecodeError()    { atomic.AddInt64(&m.DecodeErrors, 1) }
func (m *SessionMetrics) IncEmitted()        { atomic.AddInt64(&m.EventsEmitted, 1) }
func (m *SessionMetrics) IncActionSent()     { atomic.AddInt64(&m.ActionsSent, 1) }
func (m *SessionMetrics) IncSendRejected()   { atomic.AddInt64(&m.SendsRejected, 1) }
func (m *SessionMetrics) AddHandle(ns int64) { atomic.AddInt64(&m.HandleTotalNs, ns) }

// Snapshot 返回只读副本，便于 HTTP 输出
func (m *SessionMetrics) Snapshot() map[string]any {
	recv := atomic.LoadInt64(&m.MessagesReceived)
	total := atomic.LoadInt64(&m.HandleTotalNs)
	var avgMs float64
	if recv > 0 {
		avgMs = float64(total) / float64(recv) / 1e6
	}
	return map[string]any{
		"messages_received": recv,
		"unknown_tags":      atomic.LoadInt64(&m.UnknownTags),
		"decode_errors":     atomic.LoadInt64(&m.DecodeErrors),
		"events_emitted":    atomic.LoadInt64(&m.EventsEmitted),
		"actions_sent":      atomic.LoadInt64(&m.ActionsSent),
		"sends_rejected":    atomic.LoadInt64(&m.SendsRejected),
		"avg_handle_ms":     avgMs,
	}
}
