package ui

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/vanderheijden86/fmv/pkg/model"
)

type stubService struct {
	stubValidator
	session *model.Session
}

func (s *stubService) Upload(ctx context.Context, filename string, content []byte) (*model.Session, error) {
	return s.session, nil
}

// TestStaleValidationErrorStaysSilent verifies a superseded request's
// failure never raises the error banner over a fresh verdict
func TestStaleValidationErrorStaysSilent(t *testing.T) {
	svc := &stubService{}
	svc.err = errors.New("connection refused")
	m := NewModel(svc, "", time.Second, DefaultTheme())

	pending := m.coordinator.ValidateCmd([]string{"A"})

	svc.err = nil
	svc.result = model.ValidationResult{IsValid: true}
	current := m.coordinator.ValidateCmd([]string{"A", "B"})

	next, _ := m.Update(current().(ValidationMsg))
	m = next.(Model)
	next, _ = m.Update(pending().(ValidationMsg))
	m = next.(Model)

	if m.banner != "" {
		t.Errorf("banner = %q, want empty for a stale failure", m.banner)
	}
	if v := m.coordinator.Verdict(); !v.Known || !v.Result.IsValid {
		t.Errorf("verdict = %+v, want the current valid verdict", v)
	}
}

// TestValidationErrorRaisesBanner verifies current-request failures are shown
func TestValidationErrorRaisesBanner(t *testing.T) {
	svc := &stubService{}
	svc.err = errors.New("connection refused")
	m := NewModel(svc, "", time.Second, DefaultTheme())

	cmd := m.coordinator.ValidateCmd([]string{"A"})
	next, _ := m.Update(cmd().(ValidationMsg))
	m = next.(Model)

	if m.banner == "" {
		t.Error("banner empty after a current-generation failure")
	}
}
