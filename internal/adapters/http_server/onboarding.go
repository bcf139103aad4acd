package httpserver

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/rs/zerolog/log"

	"nearby_market/internal/domain"
	"nearby_market/internal/onboarding"
)

// DraftStore keeps unfinished onboarding forms between requests.
type DraftStore interface {
	NewID() string
	Save(ctx context.Context, id string, v any) error
	Load(ctx context.Context, id string, dst any) (bool, error)
	Delete(ctx context.Context, id string) error
}

const maxUploadMemory = 32 << 20

// workerTarget is the provider registration endpoint, available next to
// the listing categories.
const workerTarget = "worker"

// onboardingTarget maps a path slug to the backend category name.
func (h *Handlers) onboardingTarget(slug string) (string, bool) {
	if strings.EqualFold(slug, workerTarget) {
		return "Worker", true
	}
	cat, err := h.Listings.Category(slug)
	if err != nil {
		return "", false
	}
	return cat.Name, true
}

func draftCookie(slug string) string { return "draft_" + strings.ToLower(slug) }

// loadForm restores the visitor's draft or starts a new form.
func (h *Handlers) loadForm(r *http.Request, slug string) (*onboarding.Form, string) {
	if h.Drafts == nil {
		return onboarding.NewForm(h.Taxonomy), ""
	}
	if c, err := r.Cookie(draftCookie(slug)); err == nil {
		var f onboarding.Form
		ok, err := h.Drafts.Load(r.Context(), c.Value, &f)
		if err != nil {
			log.Warn().Err(err).Str("draft", c.Value).Msg("draft load failed")
		}
		if ok {
			return f.Bind(h.Taxonomy), c.Value
		}
	}
	return onboarding.NewForm(h.Taxonomy), h.Drafts.NewID()
}

func (h *Handlers) saveForm(w http.ResponseWriter, r *http.Request, slug, id string, f *onboarding.Form) {
	if h.Drafts == nil || id == "" {
		return
	}
	if err := h.Drafts.Save(r.Context(), id, f); err != nil {
		log.Warn().Err(err).Str("draft", id).Msg("draft save failed")
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name: draftCookie(slug), Value: id, Path: "/onboarding/" + slug,
		HttpOnly: true, SameSite: http.SameSiteLaxMode, Expires: time.Now().Add(24 * time.Hour),
	})
}

func (h *Handlers) onboardingForm(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "category")
	target, ok := h.onboardingTarget(slug)
	if !ok {
		writeProblem(w, http.StatusNotFound, "Not Found", fmt.Sprintf("unknown category %q", slug))
		return
	}
	f, _ := h.loadForm(r, slug)
	renderPage(w, http.StatusOK, "onboarding", newOnboardingPage(slug, target, f, nil))
}

// onboardingPost applies posted fields and files to the draft. With
// action=submit the form is sent to the backend when the required-field
// predicate holds.
func (h *Handlers) onboardingPost(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "category")
	target, ok := h.onboardingTarget(slug)
	if !ok {
		writeProblem(w, http.StatusNotFound, "Not Found", fmt.Sprintf("unknown category %q", slug))
		return
	}
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		writeProblem(w, http.StatusBadRequest, "Invalid form", err.Error())
		return
	}

	f, draftID := h.loadForm(r, slug)
	notes := onboarding.NewNotices(nil)
	transient := func(msg string) { notes.Notify(domain.Notice{Level: domain.Transient, Message: msg}) }

	for _, field := range onboarding.Fields {
		if _, present := r.PostForm[string(field)]; !present {
			continue
		}
		if err := f.Set(field, r.PostForm.Get(string(field))); err != nil {
			transient(err.Error())
		}
	}
	applyRemoval(f.Profile, r.PostForm.Get("removeProfile"))
	applyRemoval(f.Work, r.PostForm.Get("removeWork"))
	if r.MultipartForm != nil {
		h.addUploads(r.Context(), f.Profile, r.MultipartForm.File["profilePhoto"], transient)
		h.addUploads(r.Context(), f.Work, r.MultipartForm.File["workImages"], transient)
	}

	status := http.StatusOK
	page := newOnboardingPage(slug, target, f, nil)
	if r.PostForm.Get("action") == "submit" {
		env, err := f.Submit(r.Context(), h.Backend, target)
		switch {
		case errors.Is(err, domain.ErrSubmitGated):
			status = http.StatusUnprocessableEntity
		case err != nil || !env.Success:
			status = http.StatusBadGateway
			transient("Registration failed: " + env.Message)
		default:
			if h.Drafts != nil && draftID != "" {
				_ = h.Drafts.Delete(r.Context(), draftID)
			}
			page.Submitted, page.Message = true, env.Message
			renderPage(w, http.StatusCreated, "onboarding", page)
			return
		}
	}
	h.saveForm(w, r, slug, draftID, f)
	page.Notices = notes.Active(time.Now())
	renderPage(w, status, "onboarding", page)
}

func applyRemoval(u *onboarding.Uploader, idx string) {
	if idx == "" {
		return
	}
	if i, err := strconv.Atoi(idx); err == nil {
		_ = u.Remove(i)
	}
}

func (h *Handlers) addUploads(ctx context.Context, u *onboarding.Uploader, fhs []*multipart.FileHeader, notify func(string)) {
	if len(fhs) == 0 {
		return
	}
	files := make([]onboarding.File, 0, len(fhs))
	for _, fh := range fhs {
		fh := fh
		files = append(files, onboarding.File{Name: fh.Filename, Open: func() (io.ReadCloser, error) { return fh.Open() }})
	}
	res, err := u.AddFiles(ctx, files)
	switch {
	case errors.Is(err, domain.ErrUploadLimit):
		notify(fmt.Sprintf("You can upload at most %d images", u.Max))
	case err != nil:
		notify("Image upload failed: " + err.Error())
	case res.Rejected > 0:
		notify(fmt.Sprintf("Only %d of %d images were added; the limit is %d", res.Added, res.Added+res.Rejected, u.Max))
	}
}

type voiceResponse struct {
	Field     string          `json:"field"`
	Value     string          `json:"value"`
	Listening bool            `json:"listening"`
	CanSubmit bool            `json:"canSubmit"`
	Notices   []domain.Notice `json:"notices"`
}

// onboardingVoice transcribes one uploaded utterance into a field. The
// transcript goes through the same setter as typed input.
func (h *Handlers) onboardingVoice(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "category")
	if _, ok := h.onboardingTarget(slug); !ok {
		writeProblem(w, http.StatusNotFound, "Not Found", fmt.Sprintf("unknown category %q", slug))
		return
	}
	field := onboarding.Field(chi.URLParam(r, "field"))
	if !knownField(field) {
		writeProblem(w, http.StatusBadRequest, "Invalid field", fmt.Sprintf("unknown field %q", field))
		return
	}
	audio, hdr, err := r.FormFile("audio")
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Missing audio", "attach the recording as 'audio'")
		return
	}
	defer audio.Close()

	f, draftID := h.loadForm(r, slug)
	notes := onboarding.NewNotices(nil)
	session := onboarding.NewVoiceSession(notes)
	session.Start(field)
	derr := session.Deliver(r.Context(), h.Voice, audio, hdr.Filename, f)
	_, listening := session.Listening()
	h.saveForm(w, r, slug, draftID, f)

	if derr != nil {
		log.Info().Err(derr).Str("field", string(field)).Msg("voice input failed")
		render.Status(r, http.StatusUnprocessableEntity)
	}
	render.JSON(w, r, voiceResponse{
		Field:     string(field),
		Value:     f.Value(field),
		Listening: listening,
		CanSubmit: f.CanSubmit(),
		Notices:   notes.Active(time.Now()),
	})
}

func knownField(f onboarding.Field) bool {
	for _, k := range onboarding.Fields {
		if k == f {
			return true
		}
	}
	return false
}
