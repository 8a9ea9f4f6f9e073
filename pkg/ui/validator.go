// validator.go - asynchronous selection validation with latest-wins
// semantics. Every toggle bumps a generation counter; responses tagged
// with an older generation are discarded so a slow request can never
// overwrite the verdict for a newer selection.
package ui

import (
	"context"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vanderheijden86/fmv/pkg/model"
)

// Validator runs selection validation. Satisfied by client.Client.
type Validator interface {
	Validate(ctx context.Context, selected []string) (model.ValidationResult, error)
}

// ValidationMsg carries a validation outcome back to the UI.
type ValidationMsg struct {
	Generation uint64
	Result     model.ValidationResult
	Err        error
}

// Verdict is the displayed validation state. Known is false until the
// first verdict of a session arrives.
type Verdict struct {
	Known  bool
	Result model.ValidationResult
}

// ValidationCoordinator owns the verdict shown in the footer. It is safe
// for concurrent use; tea.Cmd closures run off the UI goroutine.
type ValidationCoordinator struct {
	validator Validator
	timeout   time.Duration

	mu         sync.Mutex
	generation uint64
	verdict    Verdict
	inFlight   int
}

// NewValidationCoordinator wraps a validator with latest-wins dispatch.
func NewValidationCoordinator(v Validator, timeout time.Duration) *ValidationCoordinator {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &ValidationCoordinator{validator: v, timeout: timeout}
}

// ValidateCmd starts validation for the given selection and returns the
// command producing its ValidationMsg. An empty selection is a no-op:
// no request is sent and the verdict stays untouched, though the
// generation still advances so in-flight responses for older selections
// are discarded.
func (c *ValidationCoordinator) ValidateCmd(selected []string) tea.Cmd {
	c.mu.Lock()
	c.generation++
	gen := c.generation
	if len(selected) == 0 {
		c.mu.Unlock()
		return nil
	}
	c.inFlight++
	c.mu.Unlock()

	names := append([]string(nil), selected...)
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
		defer cancel()

		result, err := c.validator.Validate(ctx, names)
		return ValidationMsg{Generation: gen, Result: result, Err: err}
	}
}

// Apply folds a ValidationMsg into the verdict. Stale responses are
// dropped; failed requests keep the previous verdict in place. The
// return value reports whether the displayed verdict changed.
func (c *ValidationCoordinator) Apply(msg ValidationMsg) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.inFlight > 0 {
		c.inFlight--
	}
	if msg.Generation != c.generation {
		return false
	}
	if msg.Err != nil {
		return false
	}
	c.verdict = Verdict{Known: true, Result: msg.Result}
	return true
}

// Stale reports whether the message belongs to a superseded request.
func (c *ValidationCoordinator) Stale(msg ValidationMsg) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return msg.Generation != c.generation
}

// Verdict returns the current displayed verdict.
func (c *ValidationCoordinator) Verdict() Verdict {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.verdict
}

// Busy reports whether any validation request is outstanding.
func (c *ValidationCoordinator) Busy() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inFlight > 0
}

// Reset clears the verdict. Call on every new upload; the verdict from
// one session must never survive into the next.
func (c *ValidationCoordinator) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.generation++
	c.verdict = Verdict{}
	c.inFlight = 0
}
