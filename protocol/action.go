package protocol

// Action identifies a cache operation carried by a Request, or the kind of a
// fleet-wide Event. The set is closed; the dispatcher matches it exhaustively.
type Action string

const (
	// Payload-addressed operations. The request carries the marshalled payload
	// and the coordinator derives the cache key from it.
	ActionGet Action = "get"
	ActionHas Action = "has"
	ActionSet Action = "set"

	// Hash-addressed variants. The request carries the cache key directly.
	ActionGetByHash Action = "get_by_hash"
	ActionHasByHash Action = "has_by_hash"
	ActionSetByHash Action = "set_by_hash"

	// Fleet-wide state changes.
	ActionSetStatus Action = "set_status"
	ActionReset     Action = "reset"
)

// Valid reports whether a is a member of the closed action set.
func (a Action) Valid() bool {
	switch a {
	case ActionGet, ActionHas, ActionSet,
		ActionGetByHash, ActionHasByHash, ActionSetByHash,
		ActionSetStatus, ActionReset:
		return true
	}
	return false
}

// HashAddressed reports whether a carries its cache key directly instead of a
// payload to derive it from.
func (a Action) HashAddressed() bool {
	switch a {
	case ActionGetByHash, ActionHasByHash, ActionSetByHash:
		return true
	}
	return false
}

// FleetWide reports whether a changes state every peer must observe.
func (a Action) FleetWide() bool {
	return a == ActionSetStatus || a == ActionReset
}
