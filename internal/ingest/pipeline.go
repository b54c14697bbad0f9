package ingest

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/gauthierbraillon/engagemix/internal/engagement"
	"github.com/gauthierbraillon/engagemix/internal/logging"
)

// RowError describes a rejected row. Number is the 1-based position of the row
// in the log, header excluded.
type RowError struct {
	Number int
	Row    Row
	Err    error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("row %d: %v %s", e.Number, e.Err, e.Row)
}

func (e *RowError) Unwrap() error { return e.Err }

// Kind returns the error kind label used in logs and metrics.
func (e *RowError) Kind() string {
	if errors.Is(e.Err, ErrMissingRequiredColumn) {
		return "missing_required_column"
	}
	return engagement.KindOf(e.Err)
}

// Result summarizes a run.
type Result struct {
	RunID    string
	Rows     int
	Accepted int
	Rejected []*RowError
	Duration time.Duration
}

// RejectedCount is the number of rejected rows.
func (r *Result) RejectedCount() int {
	return len(r.Rejected)
}

// Option configures the Pipeline.
type Option func(*Pipeline)

// WithLogger sets the logger for rejected rows and run summaries.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// WithMetrics records row outcomes in m.
func WithMetrics(m *Metrics) Option {
	return func(p *Pipeline) {
		p.metrics = m
	}
}

// WithSequence sets the interaction id sequence, for tests that need to
// observe or share it.
func WithSequence(seq *engagement.Sequence) Option {
	return func(p *Pipeline) {
		p.seq = seq
	}
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) {
		p.now = now
	}
}

// Pipeline feeds rows into a catalog. It is the single writer of the catalog
// and owns the interaction id sequence.
type Pipeline struct {
	catalog *engagement.Catalog
	seq     *engagement.Sequence
	logger  *slog.Logger
	metrics *Metrics
	now     func() time.Time
}

// NewPipeline creates a pipeline writing into catalog.
func NewPipeline(catalog *engagement.Catalog, opts ...Option) *Pipeline {
	p := &Pipeline{
		catalog: catalog,
		seq:     engagement.NewSequence(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Catalog returns the catalog the pipeline writes into.
func (p *Pipeline) Catalog() *engagement.Catalog {
	return p.catalog
}

// Run reads src to the end. Invalid rows are reported in the result and
// skipped; only a failing source stops the run, in which case the partial
// result is returned with the error.
func (p *Pipeline) Run(src RowSource) (*Result, error) {
	start := p.now()
	result := &Result{RunID: uuid.NewString(), Rejected: make([]*RowError, 0)}
	log := p.log().With("run_id", result.RunID)

	for {
		row, err := src.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			result.Duration = p.now().Sub(start)
			return result, fmt.Errorf("read row %d: %w", result.Rows+1, err)
		}
		result.Rows++

		in, err := p.ingestRow(row)
		if err != nil {
			rowErr := &RowError{Number: result.Rows, Row: row, Err: err}
			result.Rejected = append(result.Rejected, rowErr)
			if p.metrics != nil {
				p.metrics.IncRejected(rowErr.Kind())
			}
			log.Warn("row rejected",
				"row", rowErr.Number,
				"kind", rowErr.Kind(),
				"error", err,
				"fields", row.String())
			continue
		}

		result.Accepted++
		if p.metrics != nil {
			p.metrics.IncAccepted()
		}
		log.Debug("row accepted", "row", result.Rows, "interaction", in.ID())
	}

	end := p.now()
	result.Duration = end.Sub(start)
	if p.metrics != nil {
		p.metrics.ObserveRun(result.Duration.Seconds(), float64(end.Unix()))
	}
	log.Info("ingestion finished",
		"rows", result.Rows,
		"accepted", result.Accepted,
		"rejected", result.RejectedCount(),
		"duration", result.Duration)

	return result, nil
}

// ingestRow resolves the row's platform, content and user without registering
// them, builds the interaction and only then commits everything to the
// catalog. A failing row leaves the catalog and the sequence untouched.
func (p *Pipeline) ingestRow(row Row) (*engagement.Interaction, error) {
	if missing := row.missing(); len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingRequiredColumn, strings.Join(missing, ", "))
	}

	platform, err := p.catalog.ResolvePlatform(row.Get(FieldPlatform))
	if err != nil {
		return nil, err
	}
	content, err := p.catalog.ResolveContent(row.Get(FieldContentID), row.Get(FieldContentName))
	if err != nil {
		return nil, err
	}
	user, err := p.catalog.ResolveUser(row.Get(FieldUserID))
	if err != nil {
		return nil, err
	}

	in, err := engagement.NewInteraction(p.seq, engagement.InteractionInput{
		Content:       content,
		UserID:        row.Get(FieldUserID),
		Timestamp:     row.Get(FieldTimestamp),
		Platform:      platform,
		Type:          row.Get(FieldType),
		WatchDuration: row.Get(FieldWatchDuration),
		CommentText:   row.Get(FieldCommentText),
	})
	if err != nil {
		return nil, err
	}

	if err := p.catalog.Record(in, user); err != nil {
		return nil, err
	}
	return in, nil
}

func (p *Pipeline) log() *slog.Logger {
	if p.logger == nil {
		return logging.Discard()
	}
	return p.logger
}
