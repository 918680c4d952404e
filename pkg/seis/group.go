package seis

import (
	"iter"
	"slices"

	"github.com/rfkit/rfkit/pkg/errors"
)

// ComponentGroups partitions a stream into substreams whose traces share a
// component-independent identifier: the seed ID with the final (component)
// character stripped, optionally refined by the string form of one named
// stats attribute. Groups are ordered by ascending lexicographic group key.
//
// The grouping is a pure function of the input: the same stream and key
// always produce the same groups in the same order, and iteration never
// mutates the source stream.
type ComponentGroups struct {
	keys   []string
	groups []Stream
}

// GroupComponents builds component groups from st.
//
// key names a stats attribute whose string value is appended to the group
// key, so for example key "onset" separates two recordings of the same
// station. An empty key groups on the stripped identifier alone. A trace
// missing the named attribute is a precondition violation and fails
// immediately.
//
// sizes filters the result: when non-empty, only groups whose trace count is
// one of the given sizes are kept.
func GroupComponents(st Stream, key string, sizes ...int) (*ComponentGroups, error) {
	byKey := make(map[string]Stream)
	for _, tr := range st {
		id := tr.ID()
		k := id[:len(id)-1]
		if key != "" {
			v, ok := tr.Stats.String(key)
			if !ok {
				return nil, errors.New(errors.ErrCodeInvalidInput,
					"trace %s has no stats attribute %q", id, key)
			}
			k += "|" + v
		}
		byKey[k] = append(byKey[k], tr)
	}

	keys := make([]string, 0, len(byKey))
	for k := range byKey {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	g := &ComponentGroups{}
	for _, k := range keys {
		sub := byKey[k]
		if len(sizes) > 0 && !slices.Contains(sizes, len(sub)) {
			continue
		}
		g.keys = append(g.keys, k)
		g.groups = append(g.groups, sub)
	}
	return g, nil
}

// Len returns the number of qualifying groups.
func (g *ComponentGroups) Len() int { return len(g.groups) }

// Keys returns the group keys in iteration order.
func (g *ComponentGroups) Keys() []string { return slices.Clone(g.keys) }

// All returns the substreams in ascending group-key order. The sequence is
// finite and restartable: ranging over it twice yields identical groups.
func (g *ComponentGroups) All() iter.Seq[Stream] {
	return func(yield func(Stream) bool) {
		for _, sub := range g.groups {
			if !yield(sub) {
				return
			}
		}
	}
}
