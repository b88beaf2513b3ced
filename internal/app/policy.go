package app

import (
	"github.com/dkeye/Chat/internal/core"
	"github.com/dkeye/Chat/internal/domain"
)

type BackpressureAction int

const (
	NoAction BackpressureAction = iota
	DropFrame
	DisconnectMember
)

// Policy decides what happens to a member whose connection could not take a
// broadcast frame.
type Policy interface {
	OnBackPressure(room domain.RoomID, member *core.Connection) BackpressureAction
}

type SimplePolicy struct{}

func (SimplePolicy) OnBackPressure(domain.RoomID, *core.Connection) BackpressureAction {
	return DisconnectMember
}
