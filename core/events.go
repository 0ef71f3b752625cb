package core

type RouterEvent int

// trace events

const (
	HelloSent RouterEvent = iota
	NeighbourUp
	LsaGenerated
	LsaAccepted
	LsaRejected
	LsaPurged
	LsaFlooded
	RoutesComputed
)

// warn events

const (
	PortDown RouterEvent = iota + 1000
	DeliveryFailed
	InconsistentState
)

func (e RouterEvent) String() string {
	switch e {
	case HelloSent:
		return "HELLO_SENT"
	case NeighbourUp:
		return "NEIGHBOUR_UP"
	case LsaGenerated:
		return "LSA_GENERATED"
	case LsaAccepted:
		return "LSA_ACCEPTED"
	case LsaRejected:
		return "LSA_REJECTED"
	case LsaPurged:
		return "LSA_PURGED"
	case LsaFlooded:
		return "LSA_FLOODED"
	case RoutesComputed:
		return "ROUTES_COMPUTED"
	case PortDown:
		return "PORT_DOWN"
	case DeliveryFailed:
		return "DELIVERY_FAILED"
	case InconsistentState:
		return "INCONSISTENT_STATE"
	}
	return "UNKNOWN"
}

// IsWarn reports whether the event signals a failure rather than routine protocol traffic.
func (e RouterEvent) IsWarn() bool {
	return e >= 1000
}
