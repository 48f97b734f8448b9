// Package source produces raw disclosure records: decoders for the formats
// disclosures come in, and a loader falling back to a local snapshot when
// the primary source is unavailable.
package source

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/etnz/capitol"
	"github.com/ternarybob/arbor"
)

// Loader is a primary source of raw records.
type Loader interface {
	// Name describes the source in provenance notes.
	Name() string
	Load(ctx context.Context) ([]capitol.RawRecord, error)
}

// Decode decodes data according to the extension of name: ".zip" House
// Clerk archives, ".json" documents (items selected by jsonPath) and ".csv"
// snapshots.
func Decode(name string, data []byte, jsonPath string) ([]capitol.RawRecord, error) {
	switch ext := strings.ToLower(path.Ext(name)); ext {
	case ".zip":
		return DecodeHouseZIP(bytes.NewReader(data), int64(len(data)))
	case ".json":
		return DecodeJSON(bytes.NewReader(data), jsonPath)
	case ".csv":
		return ReadSnapshot(bytes.NewReader(data))
	default:
		return nil, fmt.Errorf("unsupported source format %q for %s, want .zip, .json or .csv", ext, name)
	}
}

type fileLoader struct {
	path, jsonPath string
}

// FileLoader returns a Loader reading a local file, see Decode for the
// supported formats.
func FileLoader(path, jsonPath string) Loader { return &fileLoader{path: path, jsonPath: jsonPath} }

func (l *fileLoader) Name() string { return filepath.Base(l.path) }

func (l *fileLoader) Load(ctx context.Context) ([]capitol.RawRecord, error) {
	data, err := os.ReadFile(l.path)
	if err != nil {
		return nil, err
	}
	return Decode(l.path, data, l.jsonPath)
}

type urlLoader struct {
	client   *http.Client
	addr     string
	jsonPath string
}

// URLLoader returns a Loader downloading addr, the format is chosen from the
// extension of its path. A nil client uses a client with a 20s timeout.
func URLLoader(client *http.Client, addr, jsonPath string) Loader {
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	return &urlLoader{client: client, addr: addr, jsonPath: jsonPath}
}

func (l *urlLoader) Name() string {
	u, err := url.Parse(l.addr)
	if err != nil {
		return l.addr
	}
	return u.Host + " " + path.Base(u.Path)
}

func (l *urlLoader) Load(ctx context.Context) ([]capitol.RawRecord, error) {
	u, err := url.Parse(l.addr)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.addr, nil)
	if err != nil {
		return nil, err
	}
	resp, err := l.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("cannot http GET %v%v: %v", u.Host, u.Path, resp.Status)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	return Decode(u.Path, data, l.jsonPath)
}

// Open returns the Loader of input, a local file or an http(s) address.
func Open(input, jsonPath string, client *http.Client) Loader {
	if strings.HasPrefix(input, "http://") || strings.HasPrefix(input, "https://") {
		return URLLoader(client, input, jsonPath)
	}
	return FileLoader(input, jsonPath)
}

// Load returns the records of primary, and where they came from.
//
// When primary fails, or returns nothing, the records are read from the
// snapshot file instead and the origin is flagged as a fallback. Otherwise
// the snapshot is refreshed with the new records. It returns
// capitol.ErrNoData when neither source has records.
//
// snapshot may be empty to disable the fallback, logger may be nil.
func Load(ctx context.Context, primary Loader, snapshot string, logger arbor.ILogger) ([]capitol.RawRecord, capitol.Origin, error) {
	records, err := primary.Load(ctx)
	if err == nil && len(records) > 0 {
		origin := capitol.Origin{Name: primary.Name(), FetchedAt: time.Now()}
		if snapshot != "" {
			if err := WriteSnapshotFile(snapshot, records); err != nil && logger != nil {
				logger.Warn().Err(err).Str("snapshot", snapshot).Msg("Snapshot not refreshed")
			}
		}
		return records, origin, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, capitol.Origin{}, ctxErr
	}
	if err == nil {
		err = fmt.Errorf("%s has no record", primary.Name())
	}
	if logger != nil {
		logger.Warn().Err(err).Str("source", primary.Name()).Msg("Primary source unavailable")
	}
	if snapshot == "" {
		return nil, capitol.Origin{}, fmt.Errorf("%w: %v", capitol.ErrNoData, err)
	}

	records, snapErr := ReadSnapshotFile(snapshot)
	if snapErr == nil && len(records) == 0 {
		snapErr = fmt.Errorf("%s is empty", snapshot)
	}
	if snapErr != nil {
		return nil, capitol.Origin{}, fmt.Errorf("%w: %v, snapshot: %v", capitol.ErrNoData, err, snapErr)
	}
	origin := capitol.Origin{Name: filepath.Base(snapshot), Fallback: true}
	if info, err := os.Stat(snapshot); err == nil {
		origin.FetchedAt = info.ModTime()
	}
	return records, origin, nil
}
