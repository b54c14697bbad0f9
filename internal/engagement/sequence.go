package engagement

// Sequence hands out strictly increasing interaction ids starting at 1.
// It is not safe for concurrent use; ingestion is single-threaded.
type Sequence struct {
	last int64
}

// NewSequence returns a sequence whose first id is 1.
func NewSequence() *Sequence {
	return &Sequence{}
}

// Next returns the next id.
func (s *Sequence) Next() int64 {
	s.last++
	return s.last
}

// Last returns the most recently issued id, or 0 if none was issued.
func (s *Sequence) Last() int64 {
	return s.last
}
