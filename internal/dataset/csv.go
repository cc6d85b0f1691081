package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/shopspring/decimal"

	"LaborPulse/internal/model"
)

// ErrMalformed marks a dataset file that cannot be trusted. Callers must not
// overwrite it.
var ErrMalformed = errors.New("malformed dataset")

// Header is the canonical header row.
var Header = []string{"series_id", "period", "value"}

// legacy files written by the first version of the fetch script used "date".
var legacyHeader = []string{"series_id", "date", "value"}

// Load reads the dataset at path. A missing file yields an error wrapping
// os.ErrNotExist; any structural problem yields an error wrapping ErrMalformed.
func Load(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()
	ds, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("read dataset %s: %w", path, err)
	}
	return ds, nil
}

// Read decodes a dataset from r.
func Read(r io.Reader) (*Dataset, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(Header)
	cr.ReuseRecord = true

	head, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("%w: missing header", ErrMalformed)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if !equalFold(head, Header) && !equalFold(head, legacyHeader) {
		return nil, fmt.Errorf("%w: unexpected header %q", ErrMalformed, strings.Join(head, ","))
	}

	ds := New()
	line := 1
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		o, err := parseRecord(rec)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrMalformed, line, err)
		}
		if !ds.add(o) {
			return nil, fmt.Errorf("%w: line %d: duplicate observation %s %s", ErrMalformed, line, o.SeriesID, o.Period)
		}
	}
	ds.sort()
	return ds, nil
}

func parseRecord(rec []string) (model.Observation, error) {
	id := strings.TrimSpace(rec[0])
	if id == "" {
		return model.Observation{}, errors.New("empty series_id")
	}
	p, err := model.ParsePeriod(rec[1])
	if err != nil {
		return model.Observation{}, err
	}
	v, err := decimal.NewFromString(strings.TrimSpace(rec[2]))
	if err != nil {
		return model.Observation{}, fmt.Errorf("parse value %q: %w", rec[2], err)
	}
	return model.Observation{SeriesID: id, Period: p, Value: v}, nil
}

func equalFold(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		// tolerate a UTF-8 BOM on the first field
		if !strings.EqualFold(strings.TrimPrefix(strings.TrimSpace(a[i]), "\ufeff"), b[i]) {
			return false
		}
	}
	return true
}

// Write encodes ds to w with the canonical header.
func Write(w io.Writer, ds *Dataset) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return err
	}
	for _, o := range ds.obs {
		if err := cw.Write([]string{o.SeriesID, o.Period.String(), o.Value.String()}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// Save replaces the file at path with ds. The new content is written to a
// temporary file in the same directory and renamed over the target, so a
// reader sees either the old or the new dataset, never a partial one.
func Save(path string, ds *Dataset) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create dataset dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp dataset: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op after a successful rename

	if err := Write(tmp, ds); err != nil {
		tmp.Close()
		return fmt.Errorf("write dataset: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync dataset: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close dataset: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("chmod dataset: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("replace dataset: %w", err)
	}
	return nil
}
