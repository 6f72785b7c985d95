package client

import (
	"fmt"
	"strings"
)

// Action 本地玩家动作（仅表达意图，由服务端权威解释）
type Action int

const (
	ActionNone Action = iota
	ActionUp
	ActionDown
	ActionLeft
	ActionRight
	ActionInverse // 掉头
)

func (a Action) String() string {
	switch a {
	case ActionUp:
		return "up"
	case ActionDown:
		return "down"
	case ActionLeft:
		return "left"
	case ActionRight:
		return "right"
	case ActionInverse:
		return "inverse"
	default:
		return "none"
	}
}

// ParseAction 解析文本命令，大小写不敏感
func ParseAction(s string) (Action, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "up", "w":
		return ActionUp, nil
	case "down", "s":
		return ActionDown, nil
	case "left", "a":
		return ActionLeft, nil
	case "right", "d":
		return ActionRight, nil
	case "inverse", "space":
		return ActionInverse, nil
	default:
		return ActionNone, fmt.Errorf("%w: %q", ErrUnknownAction, s)
	}
}

// wire 返回动作在线路上的取值
func (t ActionTable) wire(a Action) (string, error) {
	var v string
	switch a {
	case ActionUp:
		v = t.Up
	case ActionDown:
		v = t.Down
	case ActionLeft:
		v = t.Left
	case ActionRight:
		v = t.Right
	case ActionInverse:
		v = t.Inverse
	}
	if v == "" {
		return "", fmt.Errorf("%w: %s", ErrUnknownAction, a)
	}
	return v, nil
}
