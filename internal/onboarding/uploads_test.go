package onboarding_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"nearby_market/internal/domain"
	"nearby_market/internal/onboarding"
)

func pngBytes(tag byte) []byte {
	return append([]byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"), tag, tag, tag)
}

type slowReader struct {
	io.Reader
	delay time.Duration
}

func (s slowReader) Read(p []byte) (int, error) {
	time.Sleep(s.delay)
	return s.Reader.Read(p)
}

func TestUploader_CapAtFive(t *testing.T) {
	u := onboarding.NewUploader(onboarding.MaxWorkImages)
	files := make([]onboarding.File, 7)
	for i := range files {
		files[i] = onboarding.BytesFile("img.png", pngBytes(byte(i)))
	}
	res, err := u.AddFiles(context.Background(), files)
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if res.Added != 5 || res.Rejected != 2 || len(u.Images) != 5 {
		t.Fatalf("res=%+v stored=%d", res, len(u.Images))
	}
	if u.CanAdd() {
		t.Fatalf("add control must be disabled at the cap")
	}
	if _, err := u.AddFiles(context.Background(), files[:1]); !errors.Is(err, domain.ErrUploadLimit) {
		t.Fatalf("err=%v", err)
	}

	if err := u.Remove(2); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if !u.CanAdd() {
		t.Fatalf("removing one should re-enable adding")
	}
	res, err = u.AddFiles(context.Background(), files[:2])
	if err != nil || res.Added != 1 || res.Rejected != 1 || len(u.Images) != 5 {
		t.Fatalf("res=%+v err=%v stored=%d", res, err, len(u.Images))
	}
}

func TestUploader_KeepsSelectionOrder(t *testing.T) {
	u := onboarding.NewUploader(onboarding.MaxWorkImages)
	mk := func(name string, tag byte, delay time.Duration) onboarding.File {
		return onboarding.File{Name: name, Open: func() (io.ReadCloser, error) {
			return io.NopCloser(slowReader{bytes.NewReader(pngBytes(tag)), delay}), nil
		}}
	}
	files := []onboarding.File{
		mk("first.png", 1, 30*time.Millisecond),
		mk("second.png", 2, 0),
		mk("third.png", 3, 10*time.Millisecond),
	}
	if _, err := u.AddFiles(context.Background(), files); err != nil {
		t.Fatalf("add: %v", err)
	}
	for i, want := range []string{"first.png", "second.png", "third.png"} {
		if u.Images[i].Name != want {
			t.Fatalf("position %d: got %s", i, u.Images[i].Name)
		}
		if !strings.HasPrefix(u.Images[i].DataURL, "data:image/png;base64,") {
			t.Fatalf("data url=%q", u.Images[i].DataURL)
		}
	}
	b, err := u.Images[1].Bytes()
	if err != nil || !bytes.Equal(b, pngBytes(2)) {
		t.Fatalf("round trip failed: %v", err)
	}
}

func TestUploader_RejectsNonImages(t *testing.T) {
	u := onboarding.NewUploader(1)
	_, err := u.AddFiles(context.Background(), []onboarding.File{onboarding.BytesFile("notes.txt", []byte("hello there"))})
	if err == nil || len(u.Images) != 0 {
		t.Fatalf("text file accepted: err=%v", err)
	}
}
