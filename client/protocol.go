package client

import (
	"encoding/json"
	"fmt"
)

// HandshakeTag 握手消息的固定标签；其余标签全部由握手协商得到
const HandshakeTag = "you-connected"

// Envelope 所有 WebSocket 文本帧的外层结构
// 示例：{"type":"rs","data":{"players":[...],"course":{...}}}
type Envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// Category 消息语义类别，与服务端实际使用的标签字符串解耦
type Category int

const (
	CategoryRoomState Category = iota + 1
	CategoryGameRoundCountdown
	CategoryGameState
	CategoryFruitCollected
	CategoryPlayerDied
	CategoryPlayerReduction
	CategoryPlayerAction
	CategoryClientLoaded
)

func (c Category) String() string {
	switch c {
	case CategoryRoomState:
		return "room-state"
	case CategoryGameRoundCountdown:
		return "game-round-countdown"
	case CategoryGameState:
		return "game-state"
	case CategoryFruitCollected:
		return "fruit-collected"
	case CategoryPlayerDied:
		return "player-died"
	case CategoryPlayerReduction:
		return "player-reduction"
	case CategoryPlayerAction:
		return "player-action"
	case CategoryClientLoaded:
		return "client-loaded"
	default:
		return fmt.Sprintf("category(%d)", int(c))
	}
}

// MessageTable 握手时协商的标签表，会话生命周期内不可变
type MessageTable struct {
	RoomState          string `json:"ROOM_STATE"`
	GameRoundCountdown string `json:"GAME_ROUND_COUNTDOWN"`
	GameState          string `json:"GAME_STATE"`
	FruitCollected     string `json:"FRUIT_COLLECTED"`
	PlayerDied         string `json:"PLAYER_DIED"`
	PlayerReduction    string `json:"PLAYER_REDUCTION"`
	PlayerAction       string `json:"PLAYER_ACTION"`
	ClientLoaded       string `json:"CLIENT_LOADED"`
}

// Inbound 返回服务端推送类别及其标签；未配置（空串）的类别不出现
func (t MessageTable) Inbound() map[Category]string {
	all := map[Category]string{
		CategoryRoomState:          t.RoomState,
		CategoryGameRoundCountdown: t.GameRoundCountdown,
		CategoryGameState:          t.GameState,
		CategoryFruitCollected:     t.FruitCollected,
		CategoryPlayerDied:         t.PlayerDied,
		CategoryPlayerReduction:    t.PlayerReduction,
	}
	for c, tag := range all {
		if tag == "" {
			delete(all, c)
		}
	}
	return all
}

// validate 出站标签必填；任意两个类别不得共用同一标签
func (t MessageTable) validate() *DecodeError {
	if t.PlayerAction == "" {
		return missing("settings.messages.PLAYER_ACTION")
	}
	if t.ClientLoaded == "" {
		return missing("settings.messages.CLIENT_LOADED")
	}
	seen := map[string]Category{}
	tags := t.Inbound()
	tags[CategoryPlayerAction] = t.PlayerAction
	tags[CategoryClientLoaded] = t.ClientLoaded
	for c := CategoryRoomState; c <= CategoryClientLoaded; c++ {
		tag, ok := tags[c]
		if !ok {
			continue
		}
		if tag == HandshakeTag {
			return invalid("settings.messages", fmt.Errorf("%s reuses handshake tag %q", c, tag))
		}
		if prev, dup := seen[tag]; dup {
			return invalid("settings.messages", fmt.Errorf("tag %q used by both %s and %s", tag, prev, c))
		}
		seen[tag] = c
	}
	return nil
}

// ActionTable 动作在线路上的取值，握手可覆盖，缺省为小写动作名
type ActionTable struct {
	Up      string `json:"UP"`
	Down    string `json:"DOWN"`
	Left    string `json:"LEFT"`
	Right   string `json:"RIGHT"`
	Inverse string `json:"INVERSE"`
}

func defaultActionTable() ActionTable {
	return ActionTable{Up: "up", Down: "down", Left: "left", Right: "right", Inverse: "inverse"}
}

// merge 用 o 中的非空值覆盖 t
func (t ActionTable) merge(o ActionTable) ActionTable {
	if o.Up != "" {
		t.Up = o.Up
	}
	if o.Down != "" {
		t.Down = o.Down
	}
	if o.Left != "" {
		t.Left = o.Left
	}
	if o.Right != "" {
		t.Right = o.Right
	}
	if o.Inverse != "" {
		t.Inverse = o.Inverse
	}
	return t
}

// Handshake 握手载荷解码结果
type Handshake struct {
	Messages        MessageTable
	Actions         ActionTable
	GridSize        int
	BackgroundColor string
	// Raw 原始载荷，随 Connected 事件原样交给订阅方
	Raw json.RawMessage
}

// 线路上的原始结构，指针字段用于区分“缺失”和“零值”
type (
	wireHandshake struct {
		Settings *struct {
			Messages        *MessageTable `json:"messages"`
			PlayerActions   *ActionTable  `json:"playerActions"`
			GridSize        int           `json:"GRID_SIZE"`
			BackgroundColor string        `json:"BACKGROUND_COLOR"`
		} `json:"settings"`
	}

	wirePosition struct {
		X *int `json:"x"`
		Y *int `json:"y"`
	}

	wirePlayer struct {
		ID        *string       `json:"id"`
		Position  *wirePosition `json:"position"`
		Color     string        `json:"color"`
		Direction string        `json:"direction"`
		Alive     *bool         `json:"alive"`
	}

	wireFruit struct {
		ID       json.RawMessage `json:"id"`
		Position *wirePosition   `json:"position"`
		Value    json.RawMessage `json:"value"`
	}

	wireCourse struct {
		Settings *CourseSettings `json:"settings"`
		Walls    *[]wirePosition `json:"walls"`
	}

	wireRoomState struct {
		Players *[]wirePlayer `json:"players"`
		Course  *wireCourse   `json:"course"`
	}

	wireGameState struct {
		Players *[]wirePlayer `json:"players"`
		Fruits  *[]wireFruit  `json:"fruits"`
	}
)

// encodeEnvelope 出站消息编码；data 为 nil 时省略 data 字段
func encodeEnvelope(tag string, data any) ([]byte, error) {
	env := Envelope{Type: tag}
	if data != nil {
		raw, err := json.Marshal(data)
		if err != nil {
			return nil, err
		}
		env.Data = raw
	}
	return json.Marshal(env)
}

// decodeEnvelope 入站帧解码
func decodeEnvelope(b []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(b, &env); err != nil {
		return env, invalid("", err)
	}
	if env.Type == "" {
		return env, missing("type")
	}
	return env, nil
}
