package client

import "encoding/json"

// EventKind 生命周期事件的封闭枚举
type EventKind int

const (
	EventConnected EventKind = iota + 1
	EventRoomState
	EventGameRoundCountdown
	EventGameState
	EventFruitCollected
	EventPlayerDied
	EventPlayerReduction
	EventDecodeFailed
	EventDisconnected
)

func (k EventKind) String() string {
	switch k {
	case EventConnected:
		return "connected"
	case EventRoomState:
		return "room-state"
	case EventGameRoundCountdown:
		return "game-round-countdown"
	case EventGameState:
		return "game-state"
	case EventFruitCollected:
		return "fruit-collected"
	case EventPlayerDied:
		return "player-died"
	case EventPlayerReduction:
		return "player-reduction"
	case EventDecodeFailed:
		return "decode-failed"
	case EventDisconnected:
		return "disconnected"
	default:
		return "unknown"
	}
}

// Event 事件接口；只有本包内的类型可以实现（sealed）
type Event interface {
	Kind() EventKind
	sealed()
}

// Connected 握手完成，会话进入 Ready
type Connected struct {
	Handshake Handshake
	Payload   json.RawMessage
}

// RoomState 新的玩家集合与场地
type RoomState struct {
	Players []Player
	Course  Course
}

// GameRoundCountdown 回合倒计时
type GameRoundCountdown struct {
	Value int
}

// GameState 新的玩家集合与果实集合
type GameState struct {
	Players []Player
	Fruits  []Fruit
}

type FruitCollected struct{}

type PlayerDied struct{}

type PlayerReduction struct{}

// DecodeFailed 入站载荷无法解码；会话持有的旧快照保持不变
type DecodeFailed struct {
	Err *DecodeError
}

// Disconnected 读循环退出；Err 为 nil 表示本地主动 Close
type Disconnected struct {
	Err error
}

func (Connected) Kind() EventKind          { return EventConnected }
func (RoomState) Kind() EventKind          { return EventRoomState }
func (GameRoundCountdown) Kind() EventKind { return EventGameRoundCountdown }
func (GameState) Kind() EventKind          { return EventGameState }
func (FruitCollected) Kind() EventKind     { return EventFruitCollected }
func (PlayerDied) Kind() EventKind         { return EventPlayerDied }
func (PlayerReduction) Kind() EventKind    { return EventPlayerReduction }
func (DecodeFailed) Kind() EventKind       { return EventDecodeFailed }
func (Disconnected) Kind() EventKind       { return EventDisconnected }

func (Connected) sealed()          {}
func (RoomState) sealed()          {}
func (GameRoundCountdown) sealed() {}
func (GameState) sealed()          {}
func (FruitCollected) sealed()     {}
func (PlayerDied) sealed()         {}
func (PlayerReduction) sealed()    {}
func (DecodeFailed) sealed()       {}
func (Disconnected) sealed()       {}
