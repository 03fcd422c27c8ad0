package common

import "strconv"

// Namespace hands out identifiers that are unique within one scope.
// The zero value is an empty namespace ready to use.
type Namespace struct {
	taken map[string]struct{}
}

// Reserve marks names as taken without claiming them.
func (ns *Namespace) Reserve(names ...string) {
	if ns.taken == nil {
		ns.taken = make(map[string]struct{})
	}

	for _, name := range names {
		ns.taken[name] = struct{}{}
	}
}

// Taken reports whether name is already in use.
func (ns *Namespace) Taken(name string) bool {
	_, ok := ns.taken[name]
	return ok
}

// Claim returns stem if it is free, otherwise the first free of stem2,
// stem3, and so on. The returned name is taken afterwards.
func (ns *Namespace) Claim(stem string) string {
	name := stem
	for n := 2; ns.Taken(name); n++ {
		name = stem + strconv.Itoa(n)
	}

	ns.Reserve(name)

	return name
}
