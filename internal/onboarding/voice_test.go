package onboarding_test

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"nearby_market/internal/catalog"
	"nearby_market/internal/domain"
	"nearby_market/internal/onboarding"
)

type fakeRecognizer struct {
	text string
	err  error
}

func (f fakeRecognizer) Transcribe(context.Context, io.Reader, string) (string, error) {
	return f.text, f.err
}

func TestVoice_OneFieldAtATime(t *testing.T) {
	s := onboarding.NewVoiceSession(nil)
	if prev := s.Start(onboarding.FieldName); prev != "" {
		t.Fatalf("prev=%q", prev)
	}
	if prev := s.Start(onboarding.FieldCity); prev != onboarding.FieldName {
		t.Fatalf("starting city should stop name, prev=%q", prev)
	}
	if f, ok := s.Listening(); !ok || f != onboarding.FieldCity {
		t.Fatalf("listening=%q %v", f, ok)
	}
	if s.Toggle(onboarding.FieldCity) {
		t.Fatalf("second press should stop")
	}
	if _, ok := s.Listening(); ok {
		t.Fatalf("expected idle")
	}
}

func TestVoice_TranscriptUsesSameSetter(t *testing.T) {
	f := onboarding.NewForm(catalog.Workers)
	s := onboarding.NewVoiceSession(nil)

	s.Start(onboarding.FieldCategory)
	if err := s.Deliver(context.Background(), fakeRecognizer{text: "plumber"}, strings.NewReader("x"), "a.webm", f); err != nil {
		t.Fatalf("deliver: %v", err)
	}
	if f.Category != "Plumber" {
		t.Fatalf("category=%q", f.Category)
	}
	if _, ok := s.Listening(); ok {
		t.Fatalf("final transcript should return to idle")
	}

	s.Start(onboarding.FieldChargeAmount)
	_ = s.Deliver(context.Background(), fakeRecognizer{text: "600 rupees per day"}, strings.NewReader("x"), "a.webm", f)
	if f.ChargeAmount != 600 {
		t.Fatalf("amount=%v", f.ChargeAmount)
	}
	if f.CanSubmit() {
		t.Fatalf("voice input must not bypass the required-field predicate")
	}
}

func TestVoice_ErrorsReturnToIdleWithTransientNotice(t *testing.T) {
	now := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	notes := onboarding.NewNotices(func() time.Time { return now })
	f := onboarding.NewForm(catalog.Workers)
	s := onboarding.NewVoiceSession(notes)

	s.Start(onboarding.FieldName)
	err := s.Deliver(context.Background(), fakeRecognizer{err: errors.New("permission denied")}, strings.NewReader("x"), "a.webm", f)
	if err == nil {
		t.Fatalf("expected error")
	}
	if _, ok := s.Listening(); ok {
		t.Fatalf("error must return to idle")
	}
	if f.Name != "" {
		t.Fatalf("failed recognition changed the form")
	}

	s.Start(onboarding.FieldCity)
	if err := s.Deliver(context.Background(), nil, strings.NewReader("x"), "a.webm", f); !errors.Is(err, domain.ErrVoiceUnsupported) {
		t.Fatalf("err=%v", err)
	}

	if got := notes.Active(now.Add(time.Second)); len(got) != 2 || got[0].Level != domain.Transient {
		t.Fatalf("notices=%+v", got)
	}
	if got := notes.Active(now.Add(onboarding.TransientTTL)); len(got) != 0 {
		t.Fatalf("transient notices should auto-dismiss, got %+v", got)
	}
}

func TestVoice_DeliverWhenIdle(t *testing.T) {
	s := onboarding.NewVoiceSession(nil)
	if err := s.Deliver(context.Background(), fakeRecognizer{text: "x"}, strings.NewReader(""), "a", onboarding.NewForm(catalog.Workers)); err == nil {
		t.Fatalf("expected error when idle")
	}
}

func TestNotices_BlockingStayUntilDismissed(t *testing.T) {
	now := time.Now()
	n := onboarding.NewNotices(func() time.Time { return now })
	n.Notify(domain.Notice{Level: domain.Blocking, Message: "stay"})
	if got := n.Active(now.Add(time.Hour)); len(got) != 1 {
		t.Fatalf("got %+v", got)
	}
	n.Dismiss()
	if got := n.Active(now); len(got) != 0 {
		t.Fatalf("got %+v", got)
	}
}
