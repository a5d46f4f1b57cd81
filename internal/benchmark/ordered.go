package benchmark

// orderedMap is a string-keyed map that iterates in insertion order.
type orderedMap[V any] struct {
	keys  []string
	items map[string]V
}

func newOrderedMap[V any]() *orderedMap[V] {
	return &orderedMap[V]{items: make(map[string]V)}
}

// Get returns the value stored under key.
func (m *orderedMap[V]) Get(key string) (V, bool) {
	v, ok := m.items[key]
	return v, ok
}

// Set stores v under key. A key that is already present keeps its position.
func (m *orderedMap[V]) Set(key string, v V) {
	if _, ok := m.items[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.items[key] = v
}

// GetOrInsert returns the value under key, storing create() first if the key is new.
func (m *orderedMap[V]) GetOrInsert(key string, create func() V) V {
	if v, ok := m.items[key]; ok {
		return v
	}
	v := create()
	m.Set(key, v)
	return v
}

// Len returns the number of keys.
func (m *orderedMap[V]) Len() int {
	return len(m.keys)
}

// Keys returns the keys in insertion order.
func (m *orderedMap[V]) Keys() []string {
	return append([]string(nil), m.keys...)
}

// Values returns the values in insertion order.
func (m *orderedMap[V]) Values() []V {
	out := make([]V, 0, len(m.keys))
	for _, k := range m.keys {
		out = append(out, m.items[k])
	}
	return out
}
