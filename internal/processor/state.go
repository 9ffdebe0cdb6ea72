package processor

// State is a file's position in the conversion lifecycle. Transitions only
// move forward:
//
//	Scanned → BackedUp → Converting → Replaced → Done
//	Scanned → BackedUp → Converting → Failed → RolledBack
//
// RolledBack is reachable only from Failed after a destructive step, which
// keeps "restore before backup" unrepresentable.
type State int

const (
	StateScanned State = iota
	StateBackedUp
	StateConverting
	StateReplaced
	StateDone
	StateFailed
	StateRolledBack
)

func (s State) String() string {
	switch s {
	case StateScanned:
		return "scanned"
	case StateBackedUp:
		return "backed_up"
	case StateConverting:
		return "converting"
	case StateReplaced:
		return "replaced"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	case StateRolledBack:
		return "rolled_back"
	default:
		return "invalid"
	}
}

// ErrorKind classifies a per-file failure by the stage that caused it, which
// determines whether anything destructive happened before the error.
type ErrorKind int

const (
	ErrNone ErrorKind = iota
	// ErrIO: the file could not be read; nothing was touched.
	ErrIO
	// ErrBackup: the safety net could not be created or verified; the run
	// aborts that file before any destructive step.
	ErrBackup
	// ErrConversion: the codec rejected the input; the original is untouched.
	ErrConversion
	// ErrReplace: the destructive step failed; a restore from backup is
	// mandatory.
	ErrReplace
)

func (k ErrorKind) String() string {
	switch k {
	case ErrNone:
		return "none"
	case ErrIO:
		return "io"
	case ErrBackup:
		return "backup"
	case ErrConversion:
		return "conversion"
	case ErrReplace:
		return "replace"
	default:
		return "invalid"
	}
}
