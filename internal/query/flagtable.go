package query

import "github.com/polluks/ugrep/internal/config"

// FlagEntry is one row of the static single-key toggle table (spec.md
// §4.5 "Flag toggles"; SPEC_FULL.md §4.9 supplements this from
// query.cpp's flag table).
type FlagEntry struct {
	Key       byte
	Name      string
	Exclusive []byte // sibling keys cleared when this one is set
	Apply     func(cfg *config.Config, on bool)
}

// FlagTable is the static key -> flag mapping, plus the live on/off
// state per key, toggled by QueryController on keypress or HELP
// overlay selection.
type FlagTable struct {
	entries []FlagEntry
	on      map[byte]bool
}

// NewFlagTable builds the table described in spec.md §4.5: the three
// context flags (A/B/C) mutually exclusive, recursion depth digits
// 1..9 mutually exclusive with each other and implying recursion, and
// "recurse symlinks" exclusive with plain "recurse".
func NewFlagTable() *FlagTable {
	ft := &FlagTable{on: make(map[byte]bool)}

	ft.entries = append(ft.entries,
		FlagEntry{Key: 'A', Name: "context-after", Exclusive: []byte{'B', 'C'}, Apply: func(cfg *config.Config, on bool) {
			if on {
				cfg.Context = config.ContextAfter
			} else {
				cfg.Context = config.ContextNone
			}
		}},
		FlagEntry{Key: 'B', Name: "context-before", Exclusive: []byte{'A', 'C'}, Apply: func(cfg *config.Config, on bool) {
			if on {
				cfg.Context = config.ContextBefore
			} else {
				cfg.Context = config.ContextNone
			}
		}},
		FlagEntry{Key: 'C', Name: "context-around", Exclusive: []byte{'A', 'B'}, Apply: func(cfg *config.Config, on bool) {
			if on {
				cfg.Context = config.ContextAround
			} else {
				cfg.Context = config.ContextNone
			}
		}},
	)

	var depthKeys []byte
	for d := byte('1'); d <= '9'; d++ {
		depthKeys = append(depthKeys, d)
	}
	for _, d := range depthKeys {
		depth := int(d - '0')
		exclusive := excludingSelf(depthKeys, d)
		ft.entries = append(ft.entries, FlagEntry{
			Key:       d,
			Name:      "depth",
			Exclusive: exclusive,
			Apply: func(cfg *config.Config, on bool) {
				if on {
					cfg.RecurseDepth = depth
					cfg.Recurse = true
				} else {
					cfg.RecurseDepth = 0
				}
			},
		})
	}

	ft.entries = append(ft.entries,
		FlagEntry{Key: 'r', Name: "recurse", Exclusive: []byte{'R'}, Apply: func(cfg *config.Config, on bool) {
			cfg.Recurse = on
			if on {
				cfg.RecurseSymlinks = false
			}
		}},
		FlagEntry{Key: 'R', Name: "recurse-symlinks", Exclusive: []byte{'r'}, Apply: func(cfg *config.Config, on bool) {
			cfg.RecurseSymlinks = on
			if on {
				cfg.Recurse = false
			}
		}},
	)

	return ft
}

func excludingSelf(keys []byte, self byte) []byte {
	out := make([]byte, 0, len(keys)-1)
	for _, k := range keys {
		if k != self {
			out = append(out, k)
		}
	}
	return out
}

func (ft *FlagTable) find(key byte) (FlagEntry, bool) {
	for _, e := range ft.entries {
		if e.Key == key {
			return e, true
		}
	}
	return FlagEntry{}, false
}

// On reports whether key is currently toggled on.
func (ft *FlagTable) On(key byte) bool { return ft.on[key] }

// Toggle inverts key's flag, clearing its exclusion siblings first, and
// applies the result onto cfg. It reports whether cfg changed, which is
// what marks the controller updated and triggers the next debounce
// restart (spec.md §4.5 "Changing any flag marks the controller
// updated").
func (ft *FlagTable) Toggle(key byte, cfg *config.Config) bool {
	entry, ok := ft.find(key)
	if !ok {
		return false
	}
	newState := !ft.on[key]
	if newState {
		for _, sib := range entry.Exclusive {
			if ft.on[sib] {
				ft.on[sib] = false
				if sibEntry, ok := ft.find(sib); ok {
					sibEntry.Apply(cfg, false)
				}
			}
		}
	}
	ft.on[key] = newState
	entry.Apply(cfg, newState)
	return true
}
