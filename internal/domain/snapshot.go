package domain

// Snapshot is the full id -> CourseRecord mapping persisted to disk.
// It keeps first-seen order so that the files it produces are stable between runs.
type Snapshot struct {
	order []string
	byID  map[string]CourseRecord
}

func NewSnapshot() *Snapshot {
	return &Snapshot{byID: map[string]CourseRecord{}}
}

// Put inserts or replaces the record with the same ID. New ids go to the end.
func (s *Snapshot) Put(r CourseRecord) {
	if s.byID == nil {
		s.byID = map[string]CourseRecord{}
	}
	if _, ok := s.byID[r.ID]; !ok {
		s.order = append(s.order, r.ID)
	}
	s.byID[r.ID] = r
}

func (s *Snapshot) Get(id string) (CourseRecord, bool) {
	if s == nil {
		return CourseRecord{}, false
	}
	r, ok := s.byID[id]
	return r, ok
}

func (s *Snapshot) Has(id string) bool {
	_, ok := s.Get(id)
	return ok
}

func (s *Snapshot) Len() int {
	if s == nil {
		return 0
	}
	return len(s.order)
}

// IDs returns ids in first-seen order.
func (s *Snapshot) IDs() []string {
	if s == nil {
		return nil
	}
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// Records returns the records in first-seen order.
func (s *Snapshot) Records() []CourseRecord {
	if s == nil {
		return nil
	}
	out := make([]CourseRecord, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.byID[id])
	}
	return out
}

// Clone deep-copies the snapshot.
func (s *Snapshot) Clone() *Snapshot {
	out := NewSnapshot()
	if s == nil {
		return out
	}
	for _, id := range s.order {
		out.Put(s.byID[id].Clone())
	}
	return out
}
