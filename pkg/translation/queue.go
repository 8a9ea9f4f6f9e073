// Package translation drives the human review of constraint statements
// the analysis service could not auto-translate. The queue is rebuilt on
// every upload and never persisted: translations live exactly as long as
// the session that produced them.
package translation

import (
	"github.com/vanderheijden86/fmv/pkg/model"
)

// Queue walks a session's constraints looking for untranslated entries.
// Skipped constraints stay untranslated but are never offered again
// within the session.
type Queue struct {
	constraints []*model.Constraint
	skipped     map[string]bool
}

// NewQueue wraps the session's constraint list. The queue holds the live
// constraints, so translations saved through it are visible to anyone
// rendering the session.
func NewQueue(constraints []*model.Constraint) *Queue {
	return &Queue{
		constraints: constraints,
		skipped:     make(map[string]bool),
	}
}

// NextUntranslated returns the first constraint, in original order, that
// has no translation and has not been skipped. Returns nil when the
// queue is exhausted.
func (q *Queue) NextUntranslated() *model.Constraint {
	for _, c := range q.constraints {
		if c == nil || c.Translated() || q.skipped[c.EnglishStatement] {
			continue
		}
		return c
	}
	return nil
}

// Save records a translation for the constraint. The empty string is a
// valid translation; saving marks the constraint done either way.
func (q *Queue) Save(c *model.Constraint, text string) {
	if c == nil {
		return
	}
	c.Translation = &text
}

// Skip leaves the constraint untranslated for the rest of the session.
func (q *Queue) Skip(c *model.Constraint) {
	if c == nil {
		return
	}
	q.skipped[c.EnglishStatement] = true
}

// Pending counts constraints still awaiting translation or skip.
func (q *Queue) Pending() int {
	n := 0
	for _, c := range q.constraints {
		if c != nil && !c.Translated() && !q.skipped[c.EnglishStatement] {
			n++
		}
	}
	return n
}
