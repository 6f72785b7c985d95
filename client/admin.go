package client

import (
	"encoding/json"
	"net/http"
)

// NewDebugMux 本地调试接口（只读）
// GET /state    当前会话状态与快照
// GET /metrics  运行指标
// GET /healthz  存活检查
func NewDebugMux(s *Session) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/state", HandleState(s))
	mux.HandleFunc("/metrics", HandleMetrics(s))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})
	return mux
}

// HandleState 输出会话持有的快照副本
func HandleState(s *Session) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		payload := map[string]any{
			"player":  s.ID(),
			"state":   s.State().String(),
			"players": s.Players(),
			"fruits":  s.Fruits(),
		}
		if c, ok := s.Course(); ok {
			payload["course"] = c
		}
		if hs, ok := s.Handshake(); ok {
			payload["messages"] = hs.Messages
		}
		writeJSON(w, payload)
	}
}

// HandleMetrics 输出会话运行指标
func HandleMetrics(s *Session) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		writeJSON(w, map[string]any{
			"player":  s.ID(),
			"state":   s.State().String(),
			"metrics": s.Metrics().Snapshot(),
		})
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		Log.Warnw("encode response failed", "error", err)
	}
}
