package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/google/uuid"
)

// State 会话生命周期状态
type State int32

const (
	StateDisconnected State = iota
	StateConnecting
	StateAwaitingHandshake
	StateReady
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateAwaitingHandshake:
		return "awaiting-handshake"
	case StateReady:
		return "ready"
	case StateClosed:
		return "closed"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

// Session 与权威服务端的单条连接。
// 入站消息在唯一的读协程上逐条处理：解码 → 替换快照 → 发布事件，处理完一条才读下一条。
// 快照只由 Session 修改，订阅方拿到的都是副本。
type Session struct {
	id      string
	cfg     Config
	dialer  Dialer
	bus     *Bus
	router  *Router
	metrics *SessionMetrics

	mu        sync.RWMutex
	state     State
	conn      Conn
	handshake *Handshake
	announced bool
	players   []Player
	fruits    []Fruit
	course    *Course
	closeErr  error // 本地关闭原因，nil 表示调用方主动 Close
	hsTimer   *time.Timer

	done     chan struct{}
	doneOnce sync.Once
}

// NewSession 创建会话；dialer 为 nil 时使用 WebSocket
func NewSession(cfg Config, dialer Dialer) *Session {
	if cfg.PlayerID == "" {
		cfg.PlayerID = uuid.NewString()
	}
	if dialer == nil {
		dialer = WSDialer{SendQueue: cfg.SendQueue}
	}
	return &Session{
		id:      cfg.PlayerID,
		cfg:     cfg,
		dialer:  dialer,
		bus:     NewBus(),
		router:  NewRouter(),
		metrics: &SessionMetrics{},
		state:   StateDisconnected,
		done:    make(chan struct{}),
	}
}

// Connect 建立传输并开始等待握手；成功与否通过 Connected / Disconnected 事件异步观察。
// 重复调用返回 ErrAlreadyConnected，Close 之后返回 ErrSessionClosed。
func (s *Session) Connect(ctx context.Context) error {
	s.mu.Lock()
	switch s.state {
	case StateDisconnected:
	case StateClosed:
		s.mu.Unlock()
		return ErrSessionClosed
	default:
		s.mu.Unlock()
		return ErrAlreadyConnected
	}
	s.state = StateConnecting
	s.mu.Unlock()

	target, err := s.dialURL()
	if err != nil {
		s.resetConnecting()
		return err
	}
	conn, err := s.dialer.Dial(ctx, target)
	if err != nil {
		s.resetConnecting()
		return fmt.Errorf("dial %s: %w", target, err)
	}

	s.mu.Lock()
	if s.state != StateConnecting {
		// 拨号期间被 Close
		s.mu.Unlock()
		_ = conn.Close()
		return ErrSessionClosed
	}
	s.conn = conn
	s.state = StateAwaitingHandshake
	if s.cfg.HandshakeTimeout > 0 {
		s.hsTimer = time.AfterFunc(s.cfg.HandshakeTimeout, s.onHandshakeTimeout)
	}
	s.mu.Unlock()

	Log.Infow("connected, awaiting handshake", "url", target, "player", s.id)
	go s.readLoop(conn)
	return nil
}

func (s *Session) resetConnecting() {
	s.mu.Lock()
	if s.state == StateConnecting {
		s.state = StateDisconnected
	}
	s.mu.Unlock()
}

// dialURL 在服务端地址上附加 player 查询参数
func (s *Session) dialURL() (string, error) {
	u, err := url.Parse(s.cfg.ServerURL)
	if err != nil {
		return "", fmt.Errorf("server url: %w", err)
	}
	q := u.Query()
	q.Set("player", s.id)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// SendAction 发送玩家动作；握手完成前返回 ErrNotReady 且不会写出任何数据
func (s *Session) SendAction(a Action) error {
	conn, hs, err := s.readyConn()
	if err != nil {
		s.metrics.IncSendRejected()
		return err
	}
	wire, err := hs.Actions.wire(a)
	if err != nil {
		return err
	}
	b, err := encodeEnvelope(hs.Messages.PlayerAction, wire)
	if err != nil {
		return err
	}
	if err := conn.WriteMessage(b); err != nil {
		s.metrics.IncSendRejected()
		return fmt.Errorf("send action %s: %w", a, err)
	}
	s.metrics.IncActionSent()
	Log.Debugw("action sent", "action", a.String(), "tag", hs.Messages.PlayerAction)
	return nil
}

// AnnounceReady 通知服务端本地加载完成，请求首个状态消息；每个会话只发送一次
func (s *Session) AnnounceReady() error {
	conn, hs, err := s.readyConn()
	if err != nil {
		s.metrics.IncSendRejected()
		return err
	}
	s.mu.Lock()
	if s.announced {
		s.mu.Unlock()
		return ErrAlreadyAnnounced
	}
	s.announced = true
	s.mu.Unlock()

	b, err := encodeEnvelope(hs.Messages.ClientLoaded, nil)
	if err == nil {
		err = conn.WriteMessage(b)
	}
	if err != nil {
		s.mu.Lock()
		s.announced = false
		s.mu.Unlock()
		s.metrics.IncSendRejected()
		return fmt.Errorf("announce ready: %w", err)
	}
	Log.Debugw("client loaded announced", "tag", hs.Messages.ClientLoaded)
	return nil
}

func (s *Session) readyConn() (Conn, Handshake, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	switch s.state {
	case StateReady:
		return s.conn, *s.handshake, nil
	case StateClosed:
		return nil, Handshake{}, ErrSessionClosed
	default:
		return nil, Handshake{}, ErrNotReady
	}
}

// Close 终止会话并关闭传输；读协程退出时发布 Disconnected（Err 为 nil）
func (s *Session) Close() error {
	s.mu.Lock()
	if s.state == StateClosed {
		s.mu.Unlock()
		return nil
	}
	s.state = StateClosed
	s.stopTimerLocked()
	conn := s.conn
	s.mu.Unlock()

	if conn == nil {
		s.closeDone()
		return nil
	}
	return conn.Close()
}

// Done 在读协程退出后关闭
func (s *Session) Done() <-chan struct{} { return s.done }

func (s *Session) closeDone() {
	s.doneOnce.Do(func() { close(s.done) })
}

func (s *Session) stopTimerLocked() {
	if s.hsTimer != nil {
		s.hsTimer.Stop()
		s.hsTimer = nil
	}
}

func (s *Session) onHandshakeTimeout() {
	s.mu.Lock()
	if s.state != StateAwaitingHandshake {
		s.mu.Unlock()
		return
	}
	s.state = StateClosed
	s.closeErr = ErrHandshakeTimeout
	s.hsTimer = nil
	conn := s.conn
	s.mu.Unlock()

	Log.Warnw("handshake timed out", "timeout", s.cfg.HandshakeTimeout)
	_ = conn.Close()
}

// readLoop 唯一的入站处理协程
func (s *Session) readLoop(conn Conn) {
	var readErr error
	for {
		data, err := conn.ReadMessage()
		if err != nil {
			readErr = err
			break
		}
		s.handleMessage(data)
	}

	s.mu.Lock()
	reason := s.closeErr
	if s.state != StateClosed {
		// 连接意外断开
		s.state = StateClosed
		reason = readErr
	}
	s.stopTimerLocked()
	s.mu.Unlock()

	_ = conn.Close()
	if reason != nil {
		Log.Warnw("disconnected", "player", s.id, "error", reason)
	} else {
		Log.Infow("disconnected", "player", s.id)
	}
	s.emit(Disconnected{Err: reason})
	s.closeDone()
}

// handleMessage 处理一条入站帧，返回前事件已全部发布完毕
func (s *Session) handleMessage(data []byte) {
	start := time.Now()
	s.metrics.IncReceived()
	defer func() { s.metrics.AddHandle(time.Since(start).Nanoseconds()) }()

	if s.State() == StateClosed {
		return
	}

	env, err := decodeEnvelope(data)
	if err != nil {
		s.reportDecode(asDecodeError("", err))
		return
	}
	if env.Type == HandshakeTag {
		s.onHandshake(env.Data)
		return
	}

	handled, err := s.router.Dispatch(env.Type, env.Data)
	if !handled {
		s.metrics.IncUnknownTag()
		Log.Debugw("ignoring unbound tag", "tag", env.Type)
		return
	}
	if err != nil {
		s.reportDecode(asDecodeError(env.Type, err))
	}
}

func (s *Session) onHandshake(data json.RawMessage) {
	switch s.State() {
	case StateAwaitingHandshake:
	case StateReady:
		// 标签表一经确定不可变
		Log.Warnw("ignoring repeated handshake", "player", s.id)
		return
	default:
		return
	}

	hs, err := DecodeHandshake(data)
	if err != nil {
		s.reportDecode(asDecodeError(HandshakeTag, err))
		return
	}
	if err := s.bind(hs.Messages); err != nil {
		s.reportDecode(&DecodeError{Tag: HandshakeTag, Field: "settings.messages", Err: err})
		return
	}

	s.mu.Lock()
	if s.state != StateAwaitingHandshake {
		s.mu.Unlock()
		return
	}
	s.handshake = &hs
	s.state = StateReady
	s.stopTimerLocked()
	s.mu.Unlock()

	Log.Infow("handshake complete", "player", s.id, "routes", s.router.Len())
	s.emit(Connected{Handshake: hs, Payload: hs.Raw})
}

// bind 为每个已配置的入站标签绑定唯一处理函数
func (s *Session) bind(t MessageTable) error {
	handlers := map[Category]Handler{
		CategoryRoomState:          s.onRoomState,
		CategoryGameRoundCountdown: s.onCountdown,
		CategoryGameState:          s.onGameState,
		CategoryFruitCollected:     s.notify(FruitCollected{}),
		CategoryPlayerDied:         s.notify(PlayerDied{}),
		CategoryPlayerReduction:    s.notify(PlayerReduction{}),
	}
	for c, tag := range t.Inbound() {
		if err := s.router.Bind(tag, c, handlers[c]); err != nil {
			return err
		}
	}
	return nil
}

func (s *Session) onRoomState(data json.RawMessage) error {
	snap, err := DecodeRoomState(data)
	if err != nil {
		return err
	}
	course := snap.Course
	s.mu.Lock()
	s.players = snap.Players
	s.course = &course
	s.mu.Unlock()

	Log.Debugw("room state", "players", len(snap.Players), "walls", len(snap.Course.Walls))
	s.emit(RoomState{Players: clonePlayers(snap.Players), Course: snap.Course.Clone()})
	return nil
}

func (s *Session) onGameState(data json.RawMessage) error {
	snap, err := DecodeGameState(data)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.players = snap.Players
	s.fruits = snap.Fruits
	s.mu.Unlock()

	s.emit(GameState{Players: clonePlayers(snap.Players), Fruits: cloneFruits(snap.Fruits)})
	return nil
}

func (s *Session) onCountdown(data json.RawMessage) error {
	v, err := DecodeCountdown(data)
	if err != nil {
		return err
	}
	s.emit(GameRoundCountdown{Value: v})
	return nil
}

// notify 无载荷的通知类消息
func (s *Session) notify(ev Event) Handler {
	return func(json.RawMessage) error {
		Log.Debugw("notification", "event", ev.Kind().String())
		s.emit(ev)
		return nil
	}
}

func (s *Session) emit(ev Event) {
	s.metrics.IncEmitted()
	s.bus.Emit(ev)
}

func (s *Session) reportDecode(de *DecodeError) {
	s.metrics.IncDecodeError()
	Log.Warnw("decode failed", "tag", de.Tag, "field", de.Field, "error", de.Err)
	s.emit(DecodeFailed{Err: de})
}

func asDecodeError(tag string, err error) *DecodeError {
	var de *DecodeError
	if errors.As(err, &de) {
		if de.Tag == "" {
			de.Tag = tag
		}
		return de
	}
	return &DecodeError{Tag: tag, Err: err}
}

// ID 本客户端的玩家标识，连接时以 player 参数发给服务端
func (s *Session) ID() string { return s.id }

func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

func (s *Session) Bus() *Bus { return s.bus }

func (s *Session) Metrics() *SessionMetrics { return s.metrics }

// Handshake 返回协商结果；握手前 ok 为 false
func (s *Session) Handshake() (hs Handshake, ok bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.handshake == nil {
		return Handshake{}, false
	}
	return *s.handshake, true
}

// Players 当前玩家集合（副本）
func (s *Session) Players() []Player {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return clonePlayers(s.players)
}

// Fruits 当前果实集合（副本）
func (s *Session) Fruits() []Fruit {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneFruits(s.fruits)
}

// Course 当前场地（副本）；尚未收到 room-state 时 ok 为 false
func (s *Session) Course() (c Course, ok bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.course == nil {
		return Course{}, false
	}
	return s.course.Clone(), true
}

// Self 在当前玩家集合中查找自己
func (s *Session) Self() (Player, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.players {
		if p.ID == s.id {
			return p, true
		}
	}
	return Player{}, false
}
