package storage

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"net/url"
	"os"
	"strings"
	"sync"
	"time"
)

// MaxCookieSize is the largest encoded cookie browsers are required to keep.
const MaxCookieSize = 4096

// ErrCookieTooLarge is returned by Cookie.Set when the encoded cookie would
// exceed MaxCookieSize.
var ErrCookieTooLarge = errors.New("storage: cookie exceeds 4096 bytes")

// Cookie keeps values as cookies in a jar file, one Set-Cookie line per key.
// Values are URL-encoded and every Set renews the expiry.
type Cookie struct {
	path string
	now  func() time.Time
	mu   sync.Mutex
}

// CookieOption configures a Cookie backend.
type CookieOption func(*Cookie)

// WithCookieClock overrides the time source used for expiry.
func WithCookieClock(now func() time.Time) CookieOption {
	return func(c *Cookie) {
		c.now = now
	}
}

// NewCookie returns a Cookie backend persisting to the jar file at path.
func NewCookie(path string, opts ...CookieOption) *Cookie {
	c := &Cookie{path: path, now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get implements Backend. Expired cookies read as ErrNotFound.
func (c *Cookie) Get(_ context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	jar, err := c.load()
	if err != nil {
		return nil, err
	}
	for _, ck := range jar {
		if ck.Name != key {
			continue
		}
		if c.expired(ck) {
			return nil, ErrNotFound
		}
		v, err := url.QueryUnescape(ck.Value)
		if err != nil {
			// Hand back the raw value; the caller's decoder decides it is corrupt.
			return []byte(ck.Value), nil
		}
		return []byte(v), nil
	}
	return nil, ErrNotFound
}

// Set implements Backend. A zero ttl stores a session cookie with no expiry.
func (c *Cookie) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	ck := &http.Cookie{
		Name:     key,
		Value:    url.QueryEscape(string(value)),
		Path:     "/",
		SameSite: http.SameSiteLaxMode,
	}
	if ttl > 0 {
		ck.Expires = c.now().Add(ttl).UTC()
	}
	if len(ck.String()) > MaxCookieSize {
		return ErrCookieTooLarge
	}

	jar, err := c.load()
	if err != nil {
		return err
	}
	jar = c.without(jar, key)
	jar = append(jar, ck)
	return c.save(jar)
}

// Delete implements Backend.
func (c *Cookie) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	jar, err := c.load()
	if err != nil {
		return err
	}
	kept := c.without(jar, key)
	if len(kept) == len(jar) {
		return nil
	}
	return c.save(kept)
}

func (c *Cookie) expired(ck *http.Cookie) bool {
	return !ck.Expires.IsZero() && !c.now().Before(ck.Expires)
}

// without drops key and any expired cookies from jar.
func (c *Cookie) without(jar []*http.Cookie, key string) []*http.Cookie {
	kept := jar[:0:0]
	for _, ck := range jar {
		if ck.Name == key || c.expired(ck) {
			continue
		}
		kept = append(kept, ck)
	}
	return kept
}

// load parses the jar. Lines that are not valid Set-Cookie values are skipped.
func (c *Cookie) load() ([]*http.Cookie, error) {
	data, err := os.ReadFile(c.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", c.path, err)
	}

	var jar []*http.Cookie
	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 0, MaxCookieSize), 4*MaxCookieSize)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		ck, err := http.ParseSetCookie(line)
		if err != nil {
			continue
		}
		jar = append(jar, ck)
	}
	return jar, nil
}

func (c *Cookie) save(jar []*http.Cookie) error {
	var buf bytes.Buffer
	buf.WriteString("# apidex cookie jar\n")
	for _, ck := range jar {
		buf.WriteString(ck.String())
		buf.WriteByte('\n')
	}
	return writeFileAtomic(c.path, buf.Bytes())
}
