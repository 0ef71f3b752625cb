package state

import "fmt"

// Action is an operation deferred to the start of the next tick.
type Action interface {
	fmt.Stringer
	deferred()
}

// SendAck answers a HELLO received on Port.
type SendAck struct {
	Port Port
}

// Flood sends Lsa on every active port except Avoid.
type Flood struct {
	Kind  MsgKind
	Lsa   *Lsa
	Avoid Port
}

func (SendAck) deferred() {}
func (Flood) deferred()   {}

func (a SendAck) String() string {
	return fmt.Sprintf("SEND_ACK %s", a.Port)
}

func (a Flood) String() string {
	if a.Avoid == NoPort {
		return fmt.Sprintf("FLOOD %s %s", a.Kind, a.Lsa)
	}
	return fmt.Sprintf("FLOOD %s %s avoid %s", a.Kind, a.Lsa, a.Avoid)
}
