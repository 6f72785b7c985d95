package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// 快照工厂：纯函数，校验并把原始载荷转换为领域快照。
// 任何必填字段缺失都返回 *DecodeError，不会产出部分构建的快照。

// RoomStateSnapshot room-state 解码结果
type RoomStateSnapshot struct {
	Players []Player
	Course  Course
}

// GameStateSnapshot game-state 解码结果
type GameStateSnapshot struct {
	Players []Player
	Fruits  []Fruit
}

// DecodeHandshake 解码握手载荷并校验标签表
func DecodeHandshake(data []byte) (Handshake, error) {
	var w wireHandshake
	if err := unmarshalPayload(data, &w); err != nil {
		return Handshake{}, tagged(HandshakeTag, err)
	}
	if w.Settings == nil {
		return Handshake{}, tagged(HandshakeTag, missing("settings"))
	}
	if w.Settings.Messages == nil {
		return Handshake{}, tagged(HandshakeTag, missing("settings.messages"))
	}
	if err := w.Settings.Messages.validate(); err != nil {
		return Handshake{}, tagged(HandshakeTag, err)
	}
	hs := Handshake{
		Messages:        *w.Settings.Messages,
		Actions:         defaultActionTable(),
		GridSize:        w.Settings.GridSize,
		BackgroundColor: w.Settings.BackgroundColor,
		Raw:             append(json.RawMessage(nil), data...),
	}
	if w.Settings.PlayerActions != nil {
		hs.Actions = hs.Actions.merge(*w.Settings.PlayerActions)
	}
	return hs, nil
}

// DecodeRoomState 解码 room-state：完整玩家集合 + 场地
func DecodeRoomState(data []byte) (RoomStateSnapshot, error) {
	var w wireRoomState
	if err := unmarshalPayload(data, &w); err != nil {
		return RoomStateSnapshot{}, err
	}
	if w.Players == nil {
		return RoomStateSnapshot{}, missing("players")
	}
	if w.Course == nil {
		return RoomStateSnapshot{}, missing("course")
	}
	players, err := buildPlayers(*w.Players)
	if err != nil {
		return RoomStateSnapshot{}, err
	}
	course, err := buildCourse(*w.Course)
	if err != nil {
		return RoomStateSnapshot{}, withPrefix("course", err)
	}
	return RoomStateSnapshot{Players: players, Course: course}, nil
}

// DecodeGameState 解码 game-state：完整玩家集合 + 完整果实集合
func DecodeGameState(data []byte) (GameStateSnapshot, error) {
	var w wireGameState
	if err := unmarshalPayload(data, &w); err != nil {
		return GameStateSnapshot{}, err
	}
	if w.Players == nil {
		return GameStateSnapshot{}, missing("players")
	}
	if w.Fruits == nil {
		return GameStateSnapshot{}, missing("fruits")
	}
	players, err := buildPlayers(*w.Players)
	if err != nil {
		return GameStateSnapshot{}, err
	}
	fruits, err := buildFruits(*w.Fruits)
	if err != nil {
		return GameStateSnapshot{}, err
	}
	return GameStateSnapshot{Players: players, Fruits: fruits}, nil
}

// DecodeCountdown 解码倒计时数值
func DecodeCountdown(data []byte) (int, error) {
	if isAbsent(data) {
		return 0, missing("")
	}
	var v json.Number
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&v); err != nil {
		return 0, invalid("", err)
	}
	n, err := strconv.Atoi(v.String())
	if err != nil {
		return 0, invalid("", err)
	}
	return n, nil
}

// DecodePlayers 解码玩家数组
func DecodePlayers(data []byte) ([]Player, error) {
	var ws []wirePlayer
	if err := unmarshalPayload(data, &ws); err != nil {
		return nil, err
	}
	if ws == nil {
		return nil, missing("")
	}
	ps, derr := buildPlayers(ws)
	if derr != nil {
		return nil, derr
	}
	return ps, nil
}

// DecodeFruits 解码果实数组
func DecodeFruits(data []byte) ([]Fruit, error) {
	var ws []wireFruit
	if err := unmarshalPayload(data, &ws); err != nil {
		return nil, err
	}
	if ws == nil {
		return nil, missing("")
	}
	fs, derr := buildFruits(ws)
	if derr != nil {
		return nil, derr
	}
	return fs, nil
}

// DecodeCourse 解码场地
func DecodeCourse(data []byte) (Course, error) {
	var w wireCourse
	if err := unmarshalPayload(data, &w); err != nil {
		return Course{}, err
	}
	c, derr := buildCourse(w)
	if derr != nil {
		return Course{}, derr
	}
	return c, nil
}

func buildPlayers(ws []wirePlayer) ([]Player, *DecodeError) {
	out := make([]Player, 0, len(ws))
	seen := make(map[string]struct{}, len(ws))
	for i, w := range ws {
		field := fmt.Sprintf("players[%d]", i)
		if w.ID == nil || *w.ID == "" {
			return nil, missing(field + ".id")
		}
		if _, dup := seen[*w.ID]; dup {
			return nil, invalid(field+".id", fmt.Errorf("duplicate player id %q", *w.ID))
		}
		seen[*w.ID] = struct{}{}
		pos, err := buildPosition(w.Position)
		if err != nil {
			return nil, withPrefix(field+".position", err)
		}
		alive := true
		if w.Alive != nil {
			alive = *w.Alive
		}
		out = append(out, Player{
			ID:        *w.ID,
			Position:  pos,
			Color:     w.Color,
			Direction: w.Direction,
			Alive:     alive,
		})
	}
	return out, nil
}

func buildFruits(ws []wireFruit) ([]Fruit, *DecodeError) {
	out := make([]Fruit, 0, len(ws))
	seen := make(map[string]struct{}, len(ws))
	for i, w := range ws {
		field := fmt.Sprintf("fruits[%d]", i)
		id, err := scalarString(w.ID)
		if err != nil {
			return nil, withPrefix(field+".id", err)
		}
		if _, dup := seen[id]; dup {
			return nil, invalid(field+".id", fmt.Errorf("duplicate fruit id %q", id))
		}
		seen[id] = struct{}{}
		pos, err := buildPosition(w.Position)
		if err != nil {
			return nil, withPrefix(field+".position", err)
		}
		kind, err := buildFruitKind(w.Value)
		if err != nil {
			return nil, withPrefix(field+".value", err)
		}
		out = append(out, Fruit{ID: id, Position: pos, Kind: kind})
	}
	return out, nil
}

func buildCourse(w wireCourse) (Course, *DecodeError) {
	if w.Settings == nil {
		return Course{}, missing("settings")
	}
	if w.Walls == nil {
		return Course{}, missing("walls")
	}
	walls := make([]Wall, 0, len(*w.Walls))
	for i := range *w.Walls {
		wp := (*w.Walls)[i]
		pos, err := buildPosition(&wp)
		if err != nil {
			return Course{}, withPrefix(fmt.Sprintf("walls[%d]", i), err)
		}
		walls = append(walls, Wall{Position: pos})
	}
	return Course{Settings: *w.Settings, Walls: walls}, nil
}

func buildPosition(w *wirePosition) (Position, *DecodeError) {
	if w == nil {
		return Position{}, missing("")
	}
	if w.X == nil {
		return Position{}, missing("x")
	}
	if w.Y == nil {
		return Position{}, missing("y")
	}
	return Position{X: *w.X, Y: *w.Y}, nil
}

// buildFruitKind 果实取值既可能是数字也可能是数字字符串（"1"/"2"/"3"）
func buildFruitKind(raw json.RawMessage) (FruitKind, *DecodeError) {
	s, err := scalarString(raw)
	if err != nil {
		return 0, err
	}
	n, perr := strconv.Atoi(s)
	if perr != nil {
		return 0, invalid("", perr)
	}
	k := FruitKind(n)
	if !k.valid() {
		return 0, invalid("", fmt.Errorf("unknown fruit value %d", n))
	}
	return k, nil
}

// scalarString 把 JSON 字符串或数字统一为字符串
func scalarString(raw json.RawMessage) (string, *DecodeError) {
	if isAbsent(raw) {
		return "", missing("")
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if s == "" {
			return "", missing("")
		}
		return s, nil
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return "", invalid("", err)
	}
	return n.String(), nil
}

func isAbsent(raw []byte) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

// unmarshalPayload 载荷为空或不是合法 JSON 时返回 *DecodeError
func unmarshalPayload(data []byte, v any) error {
	if isAbsent(data) {
		return missing("")
	}
	if err := json.Unmarshal(data, v); err != nil {
		return invalid("", err)
	}
	return nil
}

// tagged 为工厂返回的错误补上消息标签
func tagged(tag string, err error) error {
	if err == nil {
		return nil
	}
	if de, ok := err.(*DecodeError); ok {
		de.Tag = tag
		return de
	}
	return &DecodeError{Tag: tag, Err: err}
}
