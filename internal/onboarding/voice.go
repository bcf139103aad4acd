package onboarding

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"nearby_market/internal/domain"
)

// VoiceSession is the shared listening state of a form:
// idle -> listening(field) -> idle. At most one field listens at a time.
type VoiceSession struct {
	mu        sync.Mutex
	field     Field
	listening bool
	notifier  domain.Notifier
}

func NewVoiceSession(n domain.Notifier) *VoiceSession {
	return &VoiceSession{notifier: n}
}

// Start listens for field. Any other listening field is stopped first; the
// stopped field is returned ("" when there was none).
func (s *VoiceSession) Start(field Field) Field {
	s.mu.Lock()
	defer s.mu.Unlock()
	var prev Field
	if s.listening && s.field != field {
		prev = s.field
	}
	s.field, s.listening = field, true
	return prev
}

// Toggle mirrors the mic button: a second press on the same field stops it.
func (s *VoiceSession) Toggle(field Field) bool {
	s.mu.Lock()
	if s.listening && s.field == field {
		s.field, s.listening = "", false
		s.mu.Unlock()
		return false
	}
	s.mu.Unlock()
	s.Start(field)
	return true
}

func (s *VoiceSession) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.field, s.listening = "", false
}

func (s *VoiceSession) Listening() (Field, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.field, s.listening
}

var errNotListening = errors.New("voice input is not listening")

// Deliver transcribes one utterance for the listening field and writes it
// through Form.Set. The session is idle afterwards whatever happens;
// failures raise a transient notice.
func (s *VoiceSession) Deliver(ctx context.Context, rec domain.VoiceRecognizer, audio io.Reader, filename string, f *Form) error {
	field, ok := s.Listening()
	if !ok {
		return errNotListening
	}
	defer s.stopIf(field)

	if rec == nil {
		s.fail(domain.ErrVoiceUnsupported)
		return domain.ErrVoiceUnsupported
	}
	text, err := rec.Transcribe(ctx, audio, filename)
	if err != nil {
		s.fail(err)
		return fmt.Errorf("transcribe %s: %w", field, err)
	}
	// a Stop or another Start while transcribing discards the result
	if cur, ok := s.Listening(); !ok || cur != field {
		return nil
	}
	if err := f.Set(field, text); err != nil {
		s.fail(err)
		return err
	}
	return nil
}

func (s *VoiceSession) stopIf(field Field) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listening && s.field == field {
		s.field, s.listening = "", false
	}
}

func (s *VoiceSession) fail(err error) {
	if s.notifier == nil {
		return
	}
	msg := "Voice input failed: " + err.Error()
	if errors.Is(err, domain.ErrVoiceUnsupported) {
		msg = "Voice input is not supported here"
	}
	s.notifier.Notify(domain.Notice{Level: domain.Transient, Message: msg})
}
