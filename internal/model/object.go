package model

// Object is a kind-tagged metadata record. The identifier is stable and
// unique within its kind; attributes are fully replaceable on update.
type Object struct {
	Kind       string
	Identifier string
	Attributes map[string]any
}

// Clone returns a deep copy so objects are never shared by reference
// across sets.
func (o Object) Clone() Object {
	return Object{
		Kind:       o.Kind,
		Identifier: o.Identifier,
		Attributes: cloneMap(o.Attributes),
	}
}

func cloneMap(in map[string]any) map[string]any {
	if in == nil {
		return nil
	}
	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch typed := v.(type) {
	case map[string]any:
		return cloneMap(typed)
	case []any:
		out := make([]any, len(typed))
		for i, item := range typed {
			out[i] = cloneValue(item)
		}
		return out
	default:
		return v
	}
}

// Set is an identifier-keyed collection of objects for one kind. It
// preserves insertion order: declaration order for a desired set, fetch
// order for a remote set. Deterministic iteration keeps plans and logs
// reproducible across runs.
type Set struct {
	order []string
	items map[string]Object
}

// NewSet creates an empty Set.
func NewSet() *Set {
	return &Set{items: make(map[string]Object)}
}

// Put inserts or replaces an object. Replacing keeps the original
// position in the iteration order.
func (s *Set) Put(obj Object) {
	if _, exists := s.items[obj.Identifier]; !exists {
		s.order = append(s.order, obj.Identifier)
	}
	s.items[obj.Identifier] = obj.Clone()
}

// Get returns the object for an identifier.
func (s *Set) Get(identifier string) (Object, bool) {
	if s == nil {
		return Object{}, false
	}
	obj, ok := s.items[identifier]
	if !ok {
		return Object{}, false
	}
	return obj.Clone(), true
}

// Has reports whether the identifier is present.
func (s *Set) Has(identifier string) bool {
	if s == nil {
		return false
	}
	_, ok := s.items[identifier]
	return ok
}

// Identifiers returns the identifiers in insertion order.
func (s *Set) Identifiers() []string {
	if s == nil {
		return nil
	}
	return append([]string(nil), s.order...)
}

// Len returns the number of objects in the set.
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.items)
}
