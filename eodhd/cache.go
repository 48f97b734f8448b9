package eodhd

import (
	"bufio"
	"bytes"
	"crypto/sha1"
	"fmt"
	"net/http"
	"net/http/httputil"
	"os"
	"path/filepath"

	"github.com/etnz/capitol/date"
	"github.com/ternarybob/arbor"
)

// diskCache is an http.RoundTripper that stores successful responses on disk.
//
// Entries are keyed by the current period, so the cache expires at the end of
// each period.
type diskCache struct {
	base   http.RoundTripper
	dir    string // os.TempDir() if empty
	period date.Period
	logger arbor.ILogger // optional
	today  func() date.Date
}

// RoundTrip implements the http.RoundTripper interface. It checks for a cached
// response on disk first. If none is found, it proceeds with the actual HTTP
// request and caches the new response if it's successful.
func (c *diskCache) RoundTrip(req *http.Request) (*http.Response, error) {
	file := c.file(req)
	if cached, err := c.get(file, req); err == nil {
		return cached, nil
	}

	resp, err := c.base.RoundTrip(req)
	if err != nil {
		return nil, err
	}
	if c.logger != nil {
		c.logger.Debug().Str("method", req.Method).Str("host", req.URL.Host).Str("path", req.URL.Path).Str("status", resp.Status).Msg("EODHD API response")
	}
	if resp.StatusCode >= 300 {
		return resp, nil
	}
	if err := c.put(file, resp); err != nil && c.logger != nil {
		c.logger.Warn().Err(err).Msg("Cache write failed (ignored)")
	}
	return resp, nil
}

// file returns the cache file of req for the current period.
func (c *diskCache) file(req *http.Request) string {
	today := date.Today
	if c.today != nil {
		today = c.today
	}
	rangeID := c.period.Range(today()).Identifier()
	key := fmt.Sprintf("%s %s %s", rangeID, req.Method, req.URL.String())
	dir := c.dir
	if dir == "" {
		dir = os.TempDir()
	}
	return filepath.Join(dir, fmt.Sprintf("eodhd-%s-%x", c.period, sha1.Sum([]byte(key))))
}

// get retrieves a cached response from disk.
func (c *diskCache) get(file string, req *http.Request) (*http.Response, error) {
	content, err := os.ReadFile(file)
	if err != nil {
		return nil, err
	}
	return http.ReadResponse(bufio.NewReader(bytes.NewReader(content)), req)
}

// put stores a response to disk.
func (c *diskCache) put(file string, resp *http.Response) error {
	content, err := httputil.DumpResponse(resp, true)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(file), 0o755); err != nil {
		return err
	}
	return os.WriteFile(file, content, 0o644)
}
