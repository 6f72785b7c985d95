package client

import (
	"errors"
	"fmt"
)

var (
	ErrNotReady         = errors.New("session is not ready")
	ErrAlreadyConnected = errors.New("session already connected")
	ErrSessionClosed    = errors.New("session is closed")
	ErrAlreadyAnnounced = errors.New("client loaded already announced")
	ErrHandshakeTimeout = errors.New("handshake timed out")
	ErrSendQueueFull    = errors.New("send queue is full")
	ErrDuplicateBinding = errors.New("message tag already bound")
	ErrMissingField     = errors.New("missing required field")
	ErrInvalidValue     = errors.New("invalid value")
	ErrUnknownAction    = errors.New("unknown player action")
)

// DecodeError 入站载荷校验失败：Tag 为消息标签，Field 为出错字段路径（如 players[1].position）
type DecodeError struct {
	Tag   string
	Field string
	Err   error
}

func (e *DecodeError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("decode %q: %v", e.Tag, e.Err)
	}
	return fmt.Sprintf("decode %q: %s: %v", e.Tag, e.Field, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// missing / invalid 构造不带标签的字段错误，由调用方在路由层补上 Tag
func missing(field string) *DecodeError {
	return &DecodeError{Field: field, Err: ErrMissingField}
}

func invalid(field string, err error) *DecodeError {
	if err == nil {
		err = ErrInvalidValue
	} else {
		err = fmt.Errorf("%w: %v", ErrInvalidValue, err)
	}
	return &DecodeError{Field: field, Err: err}
}

// withPrefix 给嵌套字段错误加上父路径
func withPrefix(prefix string, err *DecodeError) *DecodeError {
	if err.Field == "" {
		err.Field = prefix
	} else {
		err.Field = prefix + "." + err.Field
	}
	return err
}
