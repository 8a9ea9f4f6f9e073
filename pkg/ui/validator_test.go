package ui

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/vanderheijden86/fmv/pkg/model"
)

type stubValidator struct {
	result model.ValidationResult
	err    error
	calls  int
}

func (s *stubValidator) Validate(ctx context.Context, selected []string) (model.ValidationResult, error) {
	s.calls++
	return s.result, s.err
}

// TestEmptySelectionShortCircuits verifies an empty selection makes no
// request and leaves the prior verdict in place
func TestEmptySelectionShortCircuits(t *testing.T) {
	stub := &stubValidator{result: model.ValidationResult{IsValid: false, Messages: []string{"X requires Y"}}}
	c := NewValidationCoordinator(stub, time.Second)
	c.Apply(c.ValidateCmd([]string{"X"})().(ValidationMsg))

	calls := stub.calls
	if cmd := c.ValidateCmd(nil); cmd != nil {
		t.Error("empty selection must not produce a command")
	}
	if stub.calls != calls {
		t.Errorf("validator called %d times for empty selection, want 0", stub.calls-calls)
	}
	if v := c.Verdict(); !v.Known || v.Result.IsValid {
		t.Errorf("verdict = %+v, want the prior invalid verdict untouched", v)
	}
}

// TestEmptySelectionSupersedesInFlight verifies clearing the selection
// still invalidates responses for the selection it replaced
func TestEmptySelectionSupersedesInFlight(t *testing.T) {
	stub := &stubValidator{result: model.ValidationResult{IsValid: false, Messages: []string{"stale"}}}
	c := NewValidationCoordinator(stub, time.Second)

	pending := c.ValidateCmd([]string{"A"})
	c.ValidateCmd(nil)

	if c.Apply(pending().(ValidationMsg)) {
		t.Error("response for the replaced selection applied")
	}
	if v := c.Verdict(); v.Known {
		t.Errorf("verdict = %+v, want unknown", v)
	}
}

// TestStaleResponseDropped verifies latest-wins generation tagging
func TestStaleResponseDropped(t *testing.T) {
	stub := &stubValidator{result: model.ValidationResult{IsValid: false, Messages: []string{"old"}}}
	c := NewValidationCoordinator(stub, time.Second)

	oldMsg := c.ValidateCmd([]string{"A"})().(ValidationMsg)

	stub.result = model.ValidationResult{IsValid: true}
	newMsg := c.ValidateCmd([]string{"A", "B"})().(ValidationMsg)

	// Newer response lands first; the older one must then be dropped.
	if !c.Apply(newMsg) {
		t.Fatal("current-generation message rejected")
	}
	if c.Apply(oldMsg) {
		t.Error("stale message applied")
	}
	if v := c.Verdict(); !v.Result.IsValid {
		t.Errorf("verdict = %+v, stale response overwrote it", v)
	}
}

// TestFailureKeepsPriorVerdict verifies errors never blank the display
func TestFailureKeepsPriorVerdict(t *testing.T) {
	stub := &stubValidator{result: model.ValidationResult{IsValid: true}}
	c := NewValidationCoordinator(stub, time.Second)

	c.Apply(c.ValidateCmd([]string{"A"})().(ValidationMsg))
	if v := c.Verdict(); !v.Result.IsValid {
		t.Fatal("precondition: valid verdict")
	}

	stub.err = errors.New("connection refused")
	failed := c.ValidateCmd([]string{"A", "B"})().(ValidationMsg)
	if c.Apply(failed) {
		t.Error("failed validation reported as applied")
	}
	if v := c.Verdict(); !v.Known || !v.Result.IsValid {
		t.Errorf("verdict = %+v, failure must keep the prior verdict", v)
	}
}

// TestResetClearsVerdict verifies upload resets forget the old session's verdict
func TestResetClearsVerdict(t *testing.T) {
	stub := &stubValidator{result: model.ValidationResult{IsValid: true}}
	c := NewValidationCoordinator(stub, time.Second)

	pending := c.ValidateCmd([]string{"A"})()
	c.Reset()

	if v := c.Verdict(); v.Known {
		t.Errorf("verdict after Reset = %+v, want unknown", v)
	}
	// A response from before the reset belongs to the dead session.
	if c.Apply(pending.(ValidationMsg)) {
		t.Error("pre-reset response applied after Reset")
	}
}

// TestStaleDistinguishesSupersededMessages verifies Stale so callers can
// ignore errors from requests that no longer matter
func TestStaleDistinguishesSupersededMessages(t *testing.T) {
	stub := &stubValidator{err: errors.New("connection refused")}
	c := NewValidationCoordinator(stub, time.Second)

	pending := c.ValidateCmd([]string{"A"})
	current := c.ValidateCmd([]string{"A", "B"})

	if !c.Stale(pending().(ValidationMsg)) {
		t.Error("superseded message not reported stale")
	}
	if c.Stale(current().(ValidationMsg)) {
		t.Error("current message reported stale")
	}
}

// TestBusyTracksInFlight verifies the busy indicator
func TestBusyTracksInFlight(t *testing.T) {
	stub := &stubValidator{result: model.ValidationResult{IsValid: true}}
	c := NewValidationCoordinator(stub, time.Second)

	cmd := c.ValidateCmd([]string{"A"})
	if !c.Busy() {
		t.Error("expected busy while a request is outstanding")
	}
	c.Apply(cmd().(ValidationMsg))
	if c.Busy() {
		t.Error("expected idle after the response is applied")
	}
}
