package onboarding

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"golang.org/x/sync/errgroup"

	"nearby_market/internal/domain"
)

// MaxImageBytes bounds a single uploaded image.
const MaxImageBytes = 5 << 20

type Image struct {
	Name    string `json:"name"`
	MIME    string `json:"mime"`
	DataURL string `json:"dataUrl"`
}

func (i Image) Bytes() ([]byte, error) {
	idx := strings.Index(i.DataURL, ";base64,")
	if idx < 0 {
		return nil, fmt.Errorf("not a base64 data url")
	}
	return base64.StdEncoding.DecodeString(i.DataURL[idx+len(";base64,"):])
}

// File is one user-selected file. Open is called once.
type File struct {
	Name string
	Open func() (io.ReadCloser, error)
}

func BytesFile(name string, b []byte) File {
	return File{Name: name, Open: func() (io.ReadCloser, error) {
		return io.NopCloser(bytes.NewReader(b)), nil
	}}
}

// Uploader keeps a bounded, ordered list of images as data URLs.
type Uploader struct {
	Max    int     `json:"max"`
	Images []Image `json:"images"`
}

func NewUploader(max int) *Uploader {
	return &Uploader{Max: max, Images: []Image{}}
}

// CanAdd drives the disabled state of the "add more" control.
func (u *Uploader) CanAdd() bool { return len(u.Images) < u.Max }

func (u *Uploader) Room() int {
	if r := u.Max - len(u.Images); r > 0 {
		return r
	}
	return 0
}

type AddResult struct {
	Added    int
	Rejected int
}

// AddFiles decodes files concurrently and appends them in selection order,
// whatever order the reads finish in. Files beyond the remaining room are
// rejected and counted, not silently dropped. A read failure adds nothing.
func (u *Uploader) AddFiles(ctx context.Context, files []File) (AddResult, error) {
	room := u.Room()
	if room == 0 && len(files) > 0 {
		return AddResult{Rejected: len(files)}, fmt.Errorf("%w: at most %d images", domain.ErrUploadLimit, u.Max)
	}
	take := files
	if len(take) > room {
		take = files[:room]
	}

	decoded := make([]Image, len(take))
	g, gctx := errgroup.WithContext(ctx)
	for i, f := range take {
		i, f := i, f
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			img, err := readImage(f)
			if err != nil {
				return err
			}
			decoded[i] = img
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return AddResult{}, err
	}
	u.Images = append(u.Images, decoded...)
	return AddResult{Added: len(decoded), Rejected: len(files) - len(decoded)}, nil
}

func (u *Uploader) Remove(i int) error {
	if i < 0 || i >= len(u.Images) {
		return fmt.Errorf("no image at position %d", i)
	}
	u.Images = append(u.Images[:i], u.Images[i+1:]...)
	return nil
}

func readImage(f File) (Image, error) {
	rc, err := f.Open()
	if err != nil {
		return Image{}, fmt.Errorf("open %s: %w", f.Name, err)
	}
	defer rc.Close()
	b, err := io.ReadAll(io.LimitReader(rc, MaxImageBytes+1))
	if err != nil {
		return Image{}, fmt.Errorf("read %s: %w", f.Name, err)
	}
	if len(b) > MaxImageBytes {
		return Image{}, fmt.Errorf("%s is larger than %d bytes", f.Name, MaxImageBytes)
	}
	mt := mimetype.Detect(b)
	if !strings.HasPrefix(mt.String(), "image/") {
		return Image{}, fmt.Errorf("%s is not an image (%s)", f.Name, mt.String())
	}
	mime := strings.SplitN(mt.String(), ";", 2)[0]
	return Image{
		Name:    f.Name,
		MIME:    mime,
		DataURL: "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(b),
	}, nil
}
