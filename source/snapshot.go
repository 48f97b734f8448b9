package source

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/etnz/capitol"
)

// ReadSnapshot reads a CSV snapshot.
//
// The first row names the fields of the records, so any flat CSV export can
// be read.
func ReadSnapshot(r io.Reader) ([]capitol.RawRecord, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("cannot read snapshot header: %w", err)
	}
	for i, h := range header {
		// Excel likes to start with a BOM.
		header[i] = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
	}

	var records []capitol.RawRecord
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return records, nil
		}
		if err != nil {
			return nil, fmt.Errorf("cannot read snapshot: %w", err)
		}
		raw := make(capitol.RawRecord, len(header))
		for i, value := range row {
			if i < len(header) && header[i] != "" {
				raw[header[i]] = value
			}
		}
		records = append(records, raw)
	}
}

// WriteSnapshot writes records as a CSV snapshot with the canonical fields as
// columns.
func WriteSnapshot(w io.Writer, records []capitol.RawRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(capitol.Fields); err != nil {
		return err
	}
	row := make([]string, len(capitol.Fields))
	for _, raw := range records {
		for i, field := range capitol.Fields {
			row[i] = raw.Get(field)
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadSnapshotFile reads the snapshot stored in file.
func ReadSnapshotFile(file string) ([]capitol.RawRecord, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadSnapshot(f)
}

// WriteSnapshotFile replaces the snapshot stored in file.
//
// The snapshot is written aside then renamed, so that a failure never
// corrupts the previous one.
func WriteSnapshotFile(file string, records []capitol.RawRecord) error {
	tmp, err := os.CreateTemp(filepath.Dir(file), ".snapshot-*.csv")
	if err != nil {
		return fmt.Errorf("cannot write snapshot: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := WriteSnapshot(tmp, records); err != nil {
		tmp.Close()
		return fmt.Errorf("cannot write snapshot %s: %w", file, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("cannot write snapshot %s: %w", file, err)
	}
	return os.Rename(tmp.Name(), file)
}
