// Package csv implements the CSV file extractor. It reads one file per call
// into a Dataset: the first non-skipped row is the header defining the column
// set, every following row becomes one record in file order.
//
// Values are kept as raw text; no type inference is performed (empty cells
// become nil). Non-UTF-8 inputs are decoded through golang.org/x/text using
// the IANA name configured in Options.Encoding.
package csv

import (
	"bufio"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"datapipeline/internal/fault"
	"datapipeline/pkg/records"
)

// Options configures the CSV extractor. All fields are optional; sensible
// defaults are applied when a field is zero.
type Options struct {
	// Encoding is the IANA name of the source character encoding
	// (e.g. "utf-8", "iso-8859-1", "windows-1250"). Empty means UTF-8.
	Encoding string

	// Delimiter is the field separator. When zero, ',' is used.
	Delimiter rune

	// SkipRows is the number of leading lines discarded before the header.
	SkipRows int

	// MaxRows caps the number of data rows read; 0 means no cap.
	MaxRows int
}

// Extractor reads CSV files according to Options. It is stateless and safe to
// reuse across sources.
type Extractor struct{ opt Options }

// NewExtractor constructs an Extractor with the provided Options.
func NewExtractor(opt Options) *Extractor {
	if opt.Delimiter == 0 {
		opt.Delimiter = ','
	}
	return &Extractor{opt: opt}
}

// utf8BOM is stripped from the first header cell if present.
const utf8BOM = "\uFEFF"

// Extract parses the file at source into a Dataset. Every failure (missing
// file, permission, malformed CSV, uneven row width) is classified as an
// extraction fault and no dataset is returned.
func (e *Extractor) Extract(ctx context.Context, source string) (*records.Dataset, error) {
	if strings.TrimSpace(source) == "" {
		return nil, fault.Wrapf(fault.Extraction, "source path must not be empty")
	}

	f, err := os.Open(source)
	if err != nil {
		return nil, fault.Wrap(fault.Extraction, fmt.Errorf("open source: %w", err))
	}
	defer f.Close()

	r, err := decodeReader(f, e.opt.Encoding)
	if err != nil {
		return nil, fault.Wrap(fault.Extraction, err)
	}

	br := bufio.NewReaderSize(r, 64*1024)
	for i := 0; i < e.opt.SkipRows; i++ {
		if _, err := br.ReadString('\n'); err != nil {
			if err == io.EOF {
				return nil, fault.Wrapf(fault.Extraction, "skip_rows=%d exceeds file length", e.opt.SkipRows)
			}
			return nil, fault.Wrap(fault.Extraction, fmt.Errorf("skip leading rows: %w", err))
		}
	}

	cr := csv.NewReader(br)
	cr.Comma = e.opt.Delimiter
	cr.ReuseRecord = false

	header, err := cr.Read()
	if err != nil {
		if err == io.EOF {
			return nil, fault.Wrapf(fault.Extraction, "source %s has no header row", source)
		}
		return nil, fault.Wrap(fault.Extraction, fmt.Errorf("read header: %w", err))
	}
	columns := normalizeHeader(header)
	if len(columns) == 0 {
		return nil, fault.Wrapf(fault.Extraction, "source %s has an empty header", source)
	}

	ds := records.New(columns)

	for line := 1; ; line++ {
		if err := ctx.Err(); err != nil {
			return nil, fault.Wrap(fault.Extraction, err)
		}
		if e.opt.MaxRows > 0 && ds.Len() >= e.opt.MaxRows {
			break
		}

		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// encoding/csv enforces uniform field counts against the header
			// width; any reader error aborts the extraction as a whole.
			return nil, fault.Wrap(fault.Extraction, fmt.Errorf("row %d: %w", line, err))
		}

		rec := make(records.Record, len(columns))
		for i, col := range columns {
			rec[col] = emptyToNil(row[i])
		}
		ds.Append(rec)
	}

	return ds, nil
}

// normalizeHeader trims surrounding whitespace from each header cell and
// strips a UTF-8 BOM from the first one. Column names are otherwise kept as
// written in the source.
func normalizeHeader(h []string) []string {
	out := make([]string, len(h))
	for i, col := range h {
		c := strings.TrimSpace(col)
		if i == 0 {
			c = strings.TrimPrefix(c, utf8BOM)
		}
		out[i] = c
	}
	return out
}

// emptyToNil converts an empty string to nil; all other values pass through.
func emptyToNil(s string) any {
	if s == "" {
		return nil
	}
	return s
}
