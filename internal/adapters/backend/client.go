package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"nearby_market/internal/adapters/observability"
	"nearby_market/internal/domain"
)

// maxBody guards decoding of backend payloads.
const maxBody = 4 << 20

// Client talks to the marketplace REST backend. It never returns transport
// or decode errors to callers: every failure becomes a failure envelope.
type Client struct {
	base string
	rl   *rate.Limiter
	read *retryablehttp.Client // GETs, retried on 429/5xx
	mut  *retryablehttp.Client // mutations, sent once
}

// New accepts an empty base URL; calls then fail and are reported through
// envelopes.
func New(base string, rps int) *Client {
	if rps <= 0 {
		rps = 5
	}
	if base == "" {
		log.Warn().Msg("API_BASE_URL is empty; backend calls will fail")
	}
	return &Client{
		base: strings.TrimRight(base, "/"),
		rl:   rate.NewLimiter(rate.Limit(rps), rps),
		read: newHTTP(3),
		mut:  newHTTP(0),
	}
}

func newHTTP(retries int) *retryablehttp.Client {
	rc := retryablehttp.NewClient()
	rc.RetryWaitMin = 100 * time.Millisecond
	rc.RetryWaitMax = 900 * time.Millisecond
	rc.RetryMax = retries
	rc.HTTPClient.Timeout = 10 * time.Second
	rc.Logger = nil
	// keep the response so status and body reach the envelope
	rc.ErrorHandler = retryablehttp.PassthroughErrorHandler
	return rc
}

var (
	errNoBase   = errors.New("backend: base URL is not configured")
	errNotFound = errors.New("backend: not found")
)

// ---- Public API ----

// Nearby lists records of category around lat/lng. A non-positive distance
// is refused before any request is made.
func (c *Client) Nearby(ctx context.Context, category string, lat, lng, distanceKm float64) domain.ListEnvelope {
	if !(distanceKm > 0) {
		log.Warn().Str("category", category).Float64("distance", distanceKm).
			Err(domain.ErrInvalidDistance).Msg("nearby request refused")
		return domain.FailedList()
	}
	q := url.Values{}
	q.Set("latitude", strconv.FormatFloat(lat, 'f', -1, 64))
	q.Set("longitude", strconv.FormatFloat(lng, 'f', -1, 64))
	q.Set("distance", strconv.FormatFloat(distanceKm, 'f', -1, 64))
	endpoint := "getNearby" + pascal(category)

	var env domain.ListEnvelope
	if err := c.do(ctx, c.read, http.MethodGet, endpoint, "?"+q.Encode(), nil, "", &env); err != nil {
		log.Warn().Err(err).Str("category", category).Str("endpoint", endpoint).Msg("nearby request failed")
		return domain.FailedList()
	}
	if env.Data == nil {
		env.Data = []json.RawMessage{}
	}
	if !env.Success {
		env.Count, env.Data = 0, []json.RawMessage{}
	}
	return env
}

// ByID fetches one raw record. The backend answers either with the record
// itself, a {success,data} wrapper, or {success:false}.
func (c *Client) ByID(ctx context.Context, category, id string) (map[string]any, bool) {
	if strings.TrimSpace(id) == "" {
		return nil, false
	}
	endpoint := "get" + pascal(category) + "ById"
	var raw map[string]any
	if err := c.do(ctx, c.read, http.MethodGet, endpoint, "/"+url.PathEscape(id), nil, "", &raw); err != nil {
		if !errors.Is(err, errNotFound) {
			log.Warn().Err(err).Str("category", category).Str("id", id).Msg("record request failed")
		}
		return nil, false
	}
	if ok, present := raw["success"].(bool); present && !ok {
		return nil, false
	}
	if data, ok := raw["data"].(map[string]any); ok {
		return data, true
	}
	if len(raw) == 0 {
		return nil, false
	}
	return raw, true
}

func (c *Client) Create(ctx context.Context, category string, body domain.Submission) domain.MutationEnvelope {
	return c.mutate(ctx, http.MethodPost, camel(category)+"Create", "", body)
}

func (c *Client) Update(ctx context.Context, category, id string, body domain.Submission) domain.MutationEnvelope {
	return c.mutate(ctx, http.MethodPut, "update"+pascal(category), "/"+url.PathEscape(id), body)
}

func (c *Client) Delete(ctx context.Context, category, id string) domain.MutationEnvelope {
	return c.mutate(ctx, http.MethodDelete, "delete"+pascal(category), "/"+url.PathEscape(id), domain.Submission{})
}

// ---- Internals ----

func (c *Client) mutate(ctx context.Context, method, endpoint, suffix string, body domain.Submission) domain.MutationEnvelope {
	var (
		payload []byte
		ctype   string
		err     error
	)
	if method != http.MethodDelete {
		payload, ctype, err = encode(body)
		if err != nil {
			return domain.FailedMutation(err.Error())
		}
	}
	var env domain.MutationEnvelope
	if err := c.do(ctx, c.mut, method, endpoint, suffix, payload, ctype, &env); err != nil {
		log.Warn().Err(err).Str("endpoint", endpoint).Str("method", method).Msg("mutation failed")
		return domain.FailedMutation(err.Error())
	}
	if !env.Success && env.Message == "" {
		env.Message = "request was not accepted"
	}
	return env
}

// encode uses multipart when files are attached, urlencoded otherwise.
func encode(s domain.Submission) ([]byte, string, error) {
	if len(s.Files) == 0 {
		return []byte(s.Values.Encode()), "application/x-www-form-urlencoded", nil
	}
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, vs := range s.Values {
		for _, v := range vs {
			if err := mw.WriteField(k, v); err != nil {
				return nil, "", err
			}
		}
	}
	for _, f := range s.Files {
		fw, err := mw.CreateFormFile(f.Field, f.Filename)
		if err != nil {
			return nil, "", err
		}
		if _, err := fw.Write(f.Data); err != nil {
			return nil, "", err
		}
	}
	if err := mw.Close(); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), mw.FormDataContentType(), nil
}

// do performs one call with client-side rate limiting and decodes a 2xx
// JSON body into out.
func (c *Client) do(ctx context.Context, hc *retryablehttp.Client, method, endpoint, suffix string, body []byte, ctype string, out any) error {
	if c.base == "" {
		return errNoBase
	}
	if err := c.rl.Wait(ctx); err != nil {
		return err
	}

	var rb any
	if body != nil {
		rb = body
	}
	req, err := retryablehttp.NewRequestWithContext(ctx, method, c.base+"/"+endpoint+suffix, rb)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "nearby-market/1.0")
	if ctype != "" {
		req.Header.Set("Content-Type", ctype)
	}

	start := time.Now()
	resp, err := hc.Do(req)
	if err != nil {
		observability.ObserveExternal("backend", endpoint, 0, time.Since(start))
		return err
	}
	defer resp.Body.Close()
	observability.ObserveExternal("backend", endpoint, resp.StatusCode, time.Since(start))

	b, err := io.ReadAll(io.LimitReader(resp.Body, maxBody+1))
	if err != nil {
		return err
	}
	if len(b) > maxBody {
		return errors.New("backend: payload too large")
	}
	switch {
	case resp.StatusCode == http.StatusNotFound:
		return errNotFound
	case resp.StatusCode >= 300:
		return fmt.Errorf("backend: status %d: %s", resp.StatusCode, strings.TrimSpace(string(b[:min(len(b), 512)])))
	}
	if len(bytes.TrimSpace(b)) == 0 {
		return errors.New("backend: empty body")
	}
	if err := json.Unmarshal(b, out); err != nil {
		return fmt.Errorf("backend: decode %s: %w", endpoint, err)
	}
	return nil
}

// pascal turns "beauty" or "Beauty" into the path form "Beauty".
func pascal(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return s
	}
	r := []rune(s)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}

// camel turns "Beauty" into "beauty" for the create endpoint.
func camel(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return s
	}
	r := []rune(s)
	r[0] = unicode.ToLower(r[0])
	return string(r)
}
