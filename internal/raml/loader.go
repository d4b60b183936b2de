package raml

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
)

const (
	apiHeader     = "#%RAML 1.0"
	libraryHeader = "#%RAML 1.0 Library"
)

// Settings configures loader behavior.
type Settings struct {
	// HTTPTimeout bounds each HTTP request.
	HTTPTimeout time.Duration
	// MaxRetries for transient HTTP failures (>=500, 429, or network errors).
	MaxRetries int
	// BackoffBase is the base delay for exponential backoff.
	BackoffBase time.Duration
	// AllowFileRefs controls whether includes and libraries may be read from
	// the local filesystem. It is always allowed when the root input is a
	// local file.
	AllowFileRefs bool
	// MaxIncludeDepth bounds nested !include and uses chains.
	MaxIncludeDepth int
	Logger          *zap.Logger
}

// DefaultSettings returns recommended defaults.
func DefaultSettings() Settings {
	return Settings{
		HTTPTimeout:     10 * time.Second,
		MaxRetries:      3,
		BackoffBase:     200 * time.Millisecond,
		AllowFileRefs:   false,
		MaxIncludeDepth: 16,
		Logger:          zap.NewNop(),
	}
}

// Option mutates Settings.
type Option func(*Settings)

func WithHTTPTimeout(d time.Duration) Option  { return func(s *Settings) { s.HTTPTimeout = d } }
func WithMaxRetries(n int) Option            { return func(s *Settings) { s.MaxRetries = n } }
func WithBackoffBase(d time.Duration) Option { return func(s *Settings) { s.BackoffBase = d } }
func WithAllowFileRefs(allow bool) Option    { return func(s *Settings) { s.AllowFileRefs = allow } }

// WithLogger routes loader diagnostics to the given logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Settings) {
		if l != nil {
			s.Logger = l
		}
	}
}

// Load reads a RAML 1.0 API definition and decodes it, following "uses"
// libraries and "!include" tags.
//
// input may be a filesystem path or an http/https URL. file:// URLs are
// blocked. Any syntax problem is reported as a *ParseError carrying every
// diagnostic found; no partial document is returned.
func Load(ctx context.Context, input string, opts ...Option) (*Document, error) {
	if strings.TrimSpace(input) == "" {
		return nil, &SpecError{Code: InputError, Message: "raml: input is empty"}
	}

	settings := DefaultSettings()
	for _, opt := range opts {
		opt(&settings)
	}

	u, uerr := url.Parse(input)
	isURL := uerr == nil && u.Scheme != "" && u.Host != ""

	var src *source
	var location string
	if isURL {
		scheme := strings.ToLower(u.Scheme)
		if scheme == "file" {
			return nil, &SpecError{Code: InputError, Message: "raml: file:// URLs are blocked by default", Location: input}
		}
		if scheme != "http" && scheme != "https" {
			return nil, &SpecError{Code: InputError, Message: fmt.Sprintf("raml: unsupported URL scheme %q (only http/https allowed)", scheme), Location: input}
		}
		src = &source{ctx: ctx, settings: settings, allowFile: settings.AllowFileRefs}
		location = u.String()
	} else {
		abs, err := filepath.Abs(input)
		if err != nil {
			return nil, &SpecError{Code: InputError, Message: fmt.Sprintf("resolve path: %v", err), Location: input, Cause: err}
		}
		src = &source{ctx: ctx, settings: settings, allowFile: true}
		location = abs
	}

	raw, err := src.read(location)
	if err != nil {
		return nil, err
	}
	settings.Logger.Debug("loaded RAML document", zap.String("location", location), zap.Int("bytes", len(raw)))

	d := newDecoder(src, location)
	doc := d.decodeAPI(raw)
	if len(d.diags) > 0 {
		return nil, &ParseError{Location: location, Diagnostics: d.diags}
	}
	return doc, nil
}

// source reads the root document and everything it references.
type source struct {
	ctx       context.Context
	settings  Settings
	allowFile bool
}

// resolve returns the location of ref relative to the document at base.
func (s *source) resolve(base, ref string) (string, error) {
	if ru, err := url.Parse(ref); err == nil && ru.Scheme != "" && ru.Host != "" {
		return ru.String(), nil
	}
	if bu, err := url.Parse(base); err == nil && bu.Scheme != "" && bu.Host != "" {
		ru, err := url.Parse(ref)
		if err != nil {
			return "", err
		}
		return bu.ResolveReference(ru).String(), nil
	}
	if filepath.IsAbs(ref) {
		return filepath.Clean(ref), nil
	}
	return filepath.Join(filepath.Dir(base), filepath.FromSlash(ref)), nil
}

func (s *source) read(location string) ([]byte, error) {
	u, uerr := url.Parse(location)
	if uerr == nil && u.Scheme != "" && u.Host != "" {
		scheme := strings.ToLower(u.Scheme)
		if scheme != "http" && scheme != "https" {
			return nil, &SpecError{Code: InputError, Message: fmt.Sprintf("raml: unsupported URL scheme %q (only http/https allowed)", scheme), Location: location}
		}
		raw, err := fetchWithRetry(s.ctx, location, s.settings)
		if err != nil {
			return nil, &SpecError{Code: NetworkError, Message: fmt.Sprintf("fetch %s: %v", location, err), Location: location, Cause: err}
		}
		return raw, nil
	}
	if !s.allowFile {
		return nil, &SpecError{Code: InputError, Message: fmt.Sprintf("raml: blocked file reference %s", location), Location: location}
	}
	raw, err := os.ReadFile(location)
	if err != nil {
		return nil, &SpecError{Code: InputError, Message: fmt.Sprintf("read file %s: %v", location, err), Location: location, Cause: err}
	}
	return raw, nil
}

// headerOf returns the first line of a document when it is a RAML header comment.
func headerOf(raw []byte) string {
	line := raw
	if i := bytes.IndexByte(raw, '\n'); i >= 0 {
		line = raw[:i]
	}
	line = bytes.TrimPrefix(line, []byte("\xef\xbb\xbf"))
	s := strings.TrimSpace(string(line))
	if !strings.HasPrefix(s, "#%RAML") {
		return ""
	}
	return s
}

func fetchWithRetry(ctx context.Context, rawURL string, settings Settings) ([]byte, error) {
	client := &http.Client{Timeout: settings.HTTPTimeout}
	var lastErr error
	backoff := settings.BackoffBase
	if backoff <= 0 {
		backoff = 200 * time.Millisecond
	}
	attempts := settings.MaxRetries
	if attempts <= 0 {
		attempts = 1
	}
	for i := 0; i < attempts; i++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return nil, err
		}
		resp, err := client.Do(req)
		if err == nil && resp.StatusCode < 300 {
			body, rerr := io.ReadAll(resp.Body)
			resp.Body.Close()
			return body, rerr
		}
		if err != nil {
			lastErr = err
		} else {
			status := resp.StatusCode
			if status >= 500 || status == 429 {
				resp.Body.Close()
				lastErr = errors.Newf("transient http error %d", status)
			} else {
				body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
				resp.Body.Close()
				return nil, errors.Newf("http %d: %s", status, strings.TrimSpace(string(body)))
			}
		}
		settings.Logger.Debug("retrying fetch", zap.String("url", rawURL), zap.Int("attempt", i+1), zap.Error(lastErr))
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
	}
	if lastErr == nil {
		lastErr = errors.New("fetch failed")
	}
	return nil, lastErr
}
