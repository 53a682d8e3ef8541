package tracker

import "time"

// OverrideStore holds per-project optimistic tracking intent.
type OverrideStore struct {
	intents *Intents[string, Override]
	rev     uint64
}

func NewOverrideStore() *OverrideStore {
	return &OverrideStore{intents: NewIntents[string, Override]()}
}

// Set replaces any prior entry for id.
func (s *OverrideStore) Set(id string, active bool, start time.Time) Override {
	s.rev++
	o := Override{Active: active, StartTime: start, rev: s.rev}
	s.intents.Set(id, o)
	return o
}

func (s *OverrideStore) Get(id string) (Override, bool) {
	return s.intents.Get(id)
}

func (s *OverrideStore) Clear(id string) {
	s.intents.Clear(id)
}

func (s *OverrideStore) Len() int {
	return s.intents.Len()
}

// clearIf removes the entry for id only if it is still the one written as rev.
func (s *OverrideStore) clearIf(id string, rev uint64) bool {
	o, ok := s.intents.Get(id)
	if !ok || o.rev != rev {
		return false
	}
	s.intents.Clear(id)
	return true
}

// FreezeStore holds per-project pinned display values.
type FreezeStore struct {
	intents *Intents[string, Frozen]
}

func NewFreezeStore() *FreezeStore {
	return &FreezeStore{intents: NewIntents[string, Frozen]()}
}

func (s *FreezeStore) Set(id string, f Frozen) {
	s.intents.Set(id, f)
}

func (s *FreezeStore) Get(id string) (Frozen, bool) {
	return s.intents.Get(id)
}

func (s *FreezeStore) Clear(id string) {
	s.intents.Clear(id)
}

func (s *FreezeStore) Len() int {
	return s.intents.Len()
}
