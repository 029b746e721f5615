package generator

import (
	"insightgen/internal/insight"
	"insightgen/internal/templates"
)

// Cycle hands out a fixed sequence round-robin. The cursor only grows; the
// template is picked by cursor modulo the sequence length.
type Cycle struct {
	seq    []*insight.Record
	cursor uint64
}

// NewCycle creates a cycle over seq starting at position 0.
func NewCycle(seq []*insight.Record) *Cycle {
	return &Cycle{seq: seq}
}

// Len returns the sequence length.
func (c *Cycle) Len() int { return len(c.seq) }

// position returns how many templates have been handed out so far.
func (c *Cycle) position() uint64 { return c.cursor }

// peek returns the template at the current position without copying or advancing.
func (c *Cycle) peek() (*insight.Record, bool) {
	if len(c.seq) == 0 {
		return nil, false
	}
	return c.seq[c.cursor%uint64(len(c.seq))], true
}

func (c *Cycle) advance() {
	c.cursor++
}

// Next returns a deep copy of the current template and advances.
func (c *Cycle) Next() (*insight.Record, bool) {
	rec, ok := c.peek()
	if !ok {
		return nil, false
	}
	c.advance()
	return rec.Clone(), true
}

// Selector keeps one independent Cycle per category.
type Selector struct {
	cycles map[templates.Category]*Cycle
}

// NewSelector builds cycles for every category in store.
func NewSelector(store *templates.Store) *Selector {
	s := &Selector{cycles: make(map[templates.Category]*Cycle, len(templates.Categories))}
	for _, c := range templates.Categories {
		s.cycles[c] = NewCycle(store.Templates(c))
	}
	return s
}

// Next returns a copy of the next template for c, or false when c has none.
func (s *Selector) Next(c templates.Category) (*insight.Record, bool) {
	cycle, ok := s.cycles[c]
	if !ok {
		return nil, false
	}
	return cycle.Next()
}

// Len returns how many templates category c cycles through.
func (s *Selector) Len(c templates.Category) int {
	if cycle, ok := s.cycles[c]; ok {
		return cycle.Len()
	}
	return 0
}

// position returns the cursor of category c.
func (s *Selector) position(c templates.Category) uint64 {
	if cycle, ok := s.cycles[c]; ok {
		return cycle.position()
	}
	return 0
}
