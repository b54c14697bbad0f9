// Package ingest loads an interaction log into an engagement catalog, one row
// at a time, skipping rows that fail validation.
package ingest

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
)

// Column names of the interaction log.
const (
	FieldPlatform      = "plataforma"
	FieldContentID     = "id_conteudo"
	FieldContentName   = "nome_conteudo"
	FieldUserID        = "id_usuario"
	FieldTimestamp     = "timestamp_interacao"
	FieldType          = "tipo_interacao"
	FieldWatchDuration = "watch_duration_seconds"
	FieldCommentText   = "comment_text"
)

// RequiredFields must be present in every row. FieldType is checked too: a
// row without it cannot become an interaction.
var RequiredFields = []string{
	FieldPlatform,
	FieldContentID,
	FieldContentName,
	FieldUserID,
	FieldTimestamp,
	FieldType,
}

// OptionalFields default to empty when absent.
var OptionalFields = []string{FieldWatchDuration, FieldCommentText}

// ErrMissingRequiredColumn marks a row lacking one of RequiredFields.
var ErrMissingRequiredColumn = errors.New("missing required column")

// Row is one record of the interaction log keyed by column name.
type Row map[string]string

// Get returns the value of field, or "" when absent.
func (r Row) Get(field string) string {
	return r[field]
}

func (r Row) missing() []string {
	var missing []string
	for _, field := range RequiredFields {
		if _, ok := r[field]; !ok {
			missing = append(missing, field)
		}
	}
	return missing
}

// String renders the row with sorted keys, for log and error messages.
func (r Row) String() string {
	keys := make([]string, 0, len(r))
	for k := range r {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%q", k, r[k]))
	}
	return "{" + strings.Join(parts, " ") + "}"
}

// RowSource produces rows in log order. Next returns io.EOF after the last row.
type RowSource interface {
	Next() (Row, error)
}

// SliceSource serves rows from memory.
type SliceSource struct {
	rows []Row
	pos  int
}

// NewSliceSource wraps rows as a RowSource.
func NewSliceSource(rows []Row) *SliceSource {
	return &SliceSource{rows: rows}
}

// Next implements RowSource.
func (s *SliceSource) Next() (Row, error) {
	if s.pos >= len(s.rows) {
		return nil, io.EOF
	}
	row := s.rows[s.pos]
	s.pos++
	return row, nil
}
