// Package source reads interaction logs from local files or HTTP(S) URLs and
// turns CSV records into ingest rows keyed by column name.
package source

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/gauthierbraillon/engagemix/internal/ingest"
)

const utf8BOM = "\ufeff"

// ErrNoHeader is returned when the input has no header line.
var ErrNoHeader = errors.New("csv input has no header")

// CSVReader yields one ingest.Row per CSV record, keyed by the header names.
// Records shorter than the header leave the trailing columns absent; extra
// fields are ignored.
type CSVReader struct {
	r      *csv.Reader
	header []string
}

var _ ingest.RowSource = (*CSVReader)(nil)

// NewCSVReader reads comma-separated records from r.
func NewCSVReader(r io.Reader) *CSVReader {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	return &CSVReader{r: cr}
}

// Header returns the column names, reading them on first use.
func (c *CSVReader) Header() ([]string, error) {
	if c.header != nil {
		return c.header, nil
	}
	record, err := c.r.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrNoHeader
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	header := make([]string, len(record))
	for i, name := range record {
		if i == 0 {
			name = strings.TrimPrefix(name, utf8BOM)
		}
		header[i] = strings.TrimSpace(name)
	}
	c.header = header
	return header, nil
}

// Next implements ingest.RowSource. Blank lines are skipped.
func (c *CSVReader) Next() (ingest.Row, error) {
	header, err := c.Header()
	if err != nil {
		return nil, err
	}

	record, err := c.r.Read()
	if errors.Is(err, io.EOF) {
		return nil, io.EOF
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read record: %w", err)
	}

	row := make(ingest.Row, len(header))
	for i, name := range header {
		if i >= len(record) {
			break
		}
		if name == "" {
			continue
		}
		row[name] = record[i]
	}
	return row, nil
}
