package tracker

// Intents holds at most one optimistic intent per key. Writes are
// last-write-wins; there is no history.
type Intents[K comparable, V any] struct {
	m map[K]V
}

func NewIntents[K comparable, V any]() *Intents[K, V] {
	return &Intents[K, V]{m: make(map[K]V)}
}

func (in *Intents[K, V]) Set(k K, v V) {
	in.m[k] = v
}

func (in *Intents[K, V]) Get(k K) (V, bool) {
	v, ok := in.m[k]
	return v, ok
}

func (in *Intents[K, V]) Clear(k K) {
	delete(in.m, k)
}

func (in *Intents[K, V]) Len() int {
	return len(in.m)
}

// Keys returns the keys currently holding an intent, in no particular order.
func (in *Intents[K, V]) Keys() []K {
	keys := make([]K, 0, len(in.m))
	for k := range in.m {
		keys = append(keys, k)
	}
	return keys
}

// Confirmation discards optimistic intents once the eventually-consistent
// source has caught up with them.
//
// Observe reads the source's current value for a key; Converged decides
// whether that value confirms the intent. OnConfirm runs for every key whose
// intent was confirmed, after it was cleared.
type Confirmation[K comparable, V any, O any] struct {
	Intents   *Intents[K, V]
	Observe   func(K) (O, bool)
	Converged func(k K, intent V, observed O) bool
	OnConfirm func(K)
}

// Run clears every confirmed intent and returns the cleared keys. Intents
// whose key is absent from the source are left alone.
func (c Confirmation[K, V, O]) Run() []K {
	var confirmed []K
	for _, k := range c.Intents.Keys() {
		intent, _ := c.Intents.Get(k)
		observed, ok := c.Observe(k)
		if !ok || !c.Converged(k, intent, observed) {
			continue
		}
		c.Intents.Clear(k)
		if c.OnConfirm != nil {
			c.OnConfirm(k)
		}
		confirmed = append(confirmed, k)
	}
	return confirmed
}
