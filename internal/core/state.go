// Package core is the orchestration layer.  It runs the accept loop,
// hands each connection to a capability and owns the shutdown
// sequence.
//
// Architecture layers (bottom → top):
//
//	framer / datalog  →  session  →  capability  →  core  →  cmd (CLI)
//
// The builder in this package is the single place where a Config is
// turned into a runnable Server.
package core

// State is where the server is in its lifecycle.  It only moves
// forward.
type State int32

const (
	Starting State = iota
	Listening
	ShuttingDown
	Stopped
)

func (s State) String() string {
	switch s {
	case Starting:
		return "starting"
	case Listening:
		return "listening"
	case ShuttingDown:
		return "shutting down"
	case Stopped:
		return "stopped"
	default:
		return "unknown"
	}
}
