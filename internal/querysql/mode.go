package querysql

import "fmt"

// Mode selects the shape of the compiled query and its cardinality contract.
type Mode int

const (
	// ModeList returns every matching instance.
	ModeList Mode = iota
	// ModeSingle returns at most one instance; more is an error.
	ModeSingle
	// ModeCount returns the number of matching instances.
	ModeCount
)

// SingleLimit is the row limit for ModeSingle. Two rows are enough to
// detect a non-unique result without reading the whole set.
const SingleLimit = 2

func (m Mode) String() string {
	switch m {
	case ModeList:
		return "list"
	case ModeSingle:
		return "single"
	case ModeCount:
		return "count"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ParseMode parses "list", "single" or "count".
func ParseMode(s string) (Mode, error) {
	switch s {
	case "list":
		return ModeList, nil
	case "single":
		return ModeSingle, nil
	case "count":
		return ModeCount, nil
	default:
		return 0, fmt.Errorf("invalid mode %q: must be one of list, single, count", s)
	}
}
