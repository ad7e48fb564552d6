package scene

import (
	"fmt"
	"sort"
)

// Location addresses a material parameter either by a named slot or by an
// integer binding index. Two locations are equal only when both the kind and
// the value match, so Named("0") and Index(0) never collide.
type Location struct {
	name    string
	index   int
	indexed bool
}

func NamedLocation(name string) Location {
	return Location{name: name}
}

func IndexLocation(index int) Location {
	return Location{index: index, indexed: true}
}

func (l Location) IsNamed() bool   { return !l.indexed }
func (l Location) IsIndexed() bool { return l.indexed }

// Name returns the slot name, or "" for indexed locations.
func (l Location) Name() string {
	if l.indexed {
		return ""
	}
	return l.name
}

// Binding returns the binding index, or -1 for named locations.
func (l Location) Binding() int {
	if !l.indexed {
		return -1
	}
	return l.index
}

func (l Location) String() string {
	if l.indexed {
		return fmt.Sprintf("#%d", l.index)
	}
	return l.name
}

// sortLocations orders named locations by name first, then indices ascending.
func sortLocations(locs []Location) {
	sort.Slice(locs, func(i, j int) bool {
		a, b := locs[i], locs[j]
		if a.indexed != b.indexed {
			return !a.indexed
		}
		if a.indexed {
			return a.index < b.index
		}
		return a.name < b.name
	})
}

func sortedKeys[V any](m map[Location]V) []Location {
	keys := make([]Location, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sortLocations(keys)
	return keys
}
