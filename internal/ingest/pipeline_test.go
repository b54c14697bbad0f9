package ingest

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/gauthierbraillon/engagemix/internal/engagement"
)

func row(platform, contentID, name, userID, ts, typ, duration, comment string) Row {
	return Row{
		FieldPlatform:      platform,
		FieldContentID:     contentID,
		FieldContentName:   name,
		FieldUserID:        userID,
		FieldTimestamp:     ts,
		FieldType:          typ,
		FieldWatchDuration: duration,
		FieldCommentText:   comment,
	}
}

func runRows(t *testing.T, rows []Row, opts ...Option) (*engagement.Catalog, *Result) {
	t.Helper()
	catalog := engagement.NewCatalog()
	result, err := NewPipeline(catalog, opts...).Run(NewSliceSource(rows))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	return catalog, result
}

func TestAC200_Ingest_DocumentaryScenario(t *testing.T) {
	rows := []Row{
		row("Netflix", "1", "Doc Documentary", "10", "2024-01-01T10:00:00", "view_start", "120", ""),
		row("Netflix", "1", "Doc Documentary", "10", "2024-01-01T10:05:00", "like", "", ""),
		row("netflix", "1", "x", "11", "2024-01-01T10:10:00", "comment", "", "great"),
	}

	catalog, result := runRows(t, rows)

	if result.Accepted != 3 || result.RejectedCount() != 0 {
		t.Fatalf("all rows should be accepted, got %d accepted, %v rejected", result.Accepted, result.Rejected)
	}
	content, ok := catalog.Content(1)
	if !ok {
		t.Fatal("content 1 should be registered")
	}
	if content.Kind() != engagement.KindArticle {
		t.Errorf("content 1 should be an article, got %s", content.Kind())
	}
	if content.Name() != "Doc Documentary" {
		t.Errorf("content should keep the name of its first row, got %q", content.Name())
	}
	if got := content.TotalEngagementInteractions(); got != 2 {
		t.Errorf("want 2 engagement interactions, got %d", got)
	}

	platforms := catalog.Platforms()
	if len(platforms) != 1 {
		t.Fatalf("Netflix and netflix should be one platform, got %d", len(platforms))
	}
	interactions := content.Interactions()
	if interactions[0].Platform() != interactions[2].Platform() {
		t.Error("rows should share the same platform instance")
	}
	if got := content.Comments(); len(got) != 1 || got[0] != "great" {
		t.Errorf("unexpected comments %v", got)
	}
}

func TestAC201_Ingest_RejectedRowDoesNotConsumeID(t *testing.T) {
	seq := engagement.NewSequence()
	rows := []Row{
		row("Netflix", "1", "Show", "10", "2024-01-01T10:00:00", "like", "", ""),
		row("Netflix", "1", "Show", "10", "2024-01-01T10:01:00", "upvote", "", ""),
		row("Netflix", "1", "Show", "10", "2024-01-01T10:02:00", "share", "", ""),
	}

	catalog, result := runRows(t, rows, WithSequence(seq))

	if result.Accepted != 2 {
		t.Fatalf("want 2 accepted rows, got %d", result.Accepted)
	}
	if result.RejectedCount() != 1 {
		t.Fatalf("want 1 rejected row, got %d", result.RejectedCount())
	}
	rejected := result.Rejected[0]
	if rejected.Number != 2 {
		t.Errorf("rejected row should be row 2, got %d", rejected.Number)
	}
	if !errors.Is(rejected, engagement.ErrInvalidInteractionType) {
		t.Errorf("want ErrInvalidInteractionType, got %v", rejected.Err)
	}
	if rejected.Kind() != "invalid_interaction_type" {
		t.Errorf("unexpected kind %q", rejected.Kind())
	}

	content, _ := catalog.Content(1)
	ids := []int64{}
	for _, in := range content.Interactions() {
		ids = append(ids, in.ID())
	}
	if len(ids) != 2 || ids[0] != 1 || ids[1] != 2 {
		t.Errorf("ids should be 1 and 2 with no gap for the rejected row, got %v", ids)
	}
	if seq.Last() != 2 {
		t.Errorf("sequence should be at 2, got %d", seq.Last())
	}
}

func TestAC202_Ingest_IDsStrictlyIncreaseAcrossRun(t *testing.T) {
	var rows []Row
	for i := 0; i < 20; i++ {
		typ := "like"
		if i%3 == 0 {
			typ = "bogus"
		}
		rows = append(rows, row("YouTube", "1", "Clip", "7", "2024-02-01T00:00:00", typ, "", ""))
	}

	catalog, result := runRows(t, rows)

	user, _ := catalog.User(7)
	prev := int64(0)
	for _, in := range user.Interactions() {
		if in.ID() <= prev {
			t.Fatalf("id %d after %d is not strictly increasing", in.ID(), prev)
		}
		prev = in.ID()
	}
	if int(prev) != result.Accepted {
		t.Errorf("last id should equal the number of accepted rows (%d), got %d", result.Accepted, prev)
	}
}

func TestAC203_Ingest_AcceptedRowsEqualLinkedInteractions(t *testing.T) {
	rows := []Row{
		row("Netflix", "1", "A", "10", "2024-01-01", "like", "", ""),
		row("Netflix", "2", "B Podcast", "11", "2024-01-01", "view_start", "300", ""),
		row("", "3", "C", "12", "2024-01-01", "like", "", ""),
		row("Netflix", "x", "D", "12", "2024-01-01", "like", "", ""),
		row("Netflix", "4", "  ", "12", "2024-01-01", "like", "", ""),
		row("Netflix", "5", "E", "abc", "2024-01-01", "like", "", ""),
		row("Netflix", "6", "F", "12", "not-a-date", "like", "", ""),
		row("Netflix", "7", "G", "12", "2024-01-01", "like", "-10", ""),
		row("Netflix", "8", "H", "12", "2024-01-01", "like", "ten", ""),
		row("Prime", "2", "ignored", "10", "2024-01-02", "comment", "", "nice"),
	}

	catalog, result := runRows(t, rows)

	if result.Rows != len(rows) {
		t.Errorf("want %d rows read, got %d", len(rows), result.Rows)
	}
	if result.Accepted != 3 {
		t.Errorf("want 3 accepted rows, got %d", result.Accepted)
	}
	total := 0
	for _, c := range catalog.Contents() {
		total += c.InteractionCount()
	}
	if total != result.Accepted {
		t.Errorf("linked interactions (%d) should equal accepted rows (%d)", total, result.Accepted)
	}
	if catalog.InteractionCount() != result.Accepted {
		t.Errorf("catalog count (%d) should equal accepted rows (%d)", catalog.InteractionCount(), result.Accepted)
	}

	wantKinds := []string{
		"invalid_platform_name",
		"invalid_content_id",
		"empty_content_name",
		"invalid_user_id",
		"invalid_timestamp",
		"invalid_duration",
		"invalid_duration",
	}
	if len(result.Rejected) != len(wantKinds) {
		t.Fatalf("want %d rejected rows, got %d", len(wantKinds), len(result.Rejected))
	}
	for i, want := range wantKinds {
		if got := result.Rejected[i].Kind(); got != want {
			t.Errorf("rejected row %d: want kind %s, got %s", result.Rejected[i].Number, want, got)
		}
	}
}

func TestAC204_Ingest_RejectedRowsLeaveNoTrace(t *testing.T) {
	rows := []Row{
		row("Globoplay", "9", "Ghost", "99", "2024-01-01", "upvote", "", ""),
		row("Netflix", "1", "A", "10", "2024-01-01", "like", "", ""),
	}

	catalog, _ := runRows(t, rows)

	if _, ok := catalog.Platform("Globoplay"); ok {
		t.Error("platform of a rejected row should not be registered")
	}
	if _, ok := catalog.Content(9); ok {
		t.Error("content of a rejected row should not be registered")
	}
	if _, ok := catalog.User(99); ok {
		t.Error("user of a rejected row should not be registered")
	}
	netflix, _ := catalog.Platform("netflix")
	if netflix.ID() != 1 {
		t.Errorf("first accepted platform should get id 1, got %d", netflix.ID())
	}
}

func TestAC205_Ingest_MissingColumnIsItsOwnKind(t *testing.T) {
	incomplete := Row{
		FieldPlatform:    "Netflix",
		FieldContentID:   "1",
		FieldContentName: "A",
		FieldType:        "like",
	}
	rows := []Row{
		incomplete,
		row("Netflix", "1", "A", "10", "2024-01-01", "like", "", ""),
	}

	_, result := runRows(t, rows)

	if result.Accepted != 1 || result.RejectedCount() != 1 {
		t.Fatalf("want 1 accepted and 1 rejected, got %d and %d", result.Accepted, result.RejectedCount())
	}
	rejected := result.Rejected[0]
	if !errors.Is(rejected, ErrMissingRequiredColumn) {
		t.Errorf("want ErrMissingRequiredColumn, got %v", rejected.Err)
	}
	if rejected.Kind() != "missing_required_column" {
		t.Errorf("unexpected kind %q", rejected.Kind())
	}
	msg := rejected.Error()
	for _, want := range []string{"row 1", FieldUserID, FieldTimestamp} {
		if !strings.Contains(msg, want) {
			t.Errorf("error message should mention %q, got %s", want, msg)
		}
	}
}

func TestAC205_Ingest_OptionalColumnsMayBeAbsent(t *testing.T) {
	r := row("Netflix", "1", "A", "10", "2024-01-01", "view_start", "", "")
	delete(r, FieldWatchDuration)
	delete(r, FieldCommentText)

	catalog, result := runRows(t, []Row{r})

	if result.Accepted != 1 {
		t.Fatalf("row without optional columns should be accepted, got %v", result.Rejected)
	}
	content, _ := catalog.Content(1)
	if content.Interactions()[0].WatchDuration() != 0 {
		t.Error("absent duration should be 0")
	}
}

type failingSource struct {
	rows []Row
	err  error
}

func (f *failingSource) Next() (Row, error) {
	if len(f.rows) == 0 {
		return nil, f.err
	}
	r := f.rows[0]
	f.rows = f.rows[1:]
	return r, nil
}

func TestAC206_Ingest_SourceFailureStopsRun(t *testing.T) {
	boom := errors.New("disk on fire")
	src := &failingSource{
		rows: []Row{row("Netflix", "1", "A", "10", "2024-01-01", "like", "", "")},
		err:  boom,
	}

	catalog := engagement.NewCatalog()
	result, err := NewPipeline(catalog).Run(src)

	if !errors.Is(err, boom) {
		t.Fatalf("want source error, got %v", err)
	}
	if result == nil || result.Accepted != 1 {
		t.Errorf("partial result should report the row read before the failure, got %+v", result)
	}
}

func TestAC207_Ingest_LogsRejectedRowsWithContext(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))
	rows := []Row{
		row("Netflix", "1", "A", "10", "2024-01-01", "upvote", "", ""),
	}

	_, result := runRows(t, rows, WithLogger(logger))

	out := buf.String()
	for _, want := range []string{"row rejected", "invalid_interaction_type", "upvote", "ingestion finished", result.RunID} {
		if !strings.Contains(out, want) {
			t.Errorf("log should contain %q, got:\n%s", want, out)
		}
	}
}

func TestAC208_Ingest_ResultTiming(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	calls := 0
	clock := func() time.Time {
		calls++
		return base.Add(time.Duration(calls) * time.Second)
	}

	_, result := runRows(t, nil, WithClock(clock))

	if result.Duration != time.Second {
		t.Errorf("want 1s duration, got %v", result.Duration)
	}
	if result.RunID == "" {
		t.Error("run should have an id")
	}
	if result.Rejected == nil {
		t.Error("rejected should be an empty slice, not nil")
	}
}

func TestSliceSource_EndsWithEOF(t *testing.T) {
	src := NewSliceSource([]Row{{FieldPlatform: "a"}})
	if _, err := src.Next(); err != nil {
		t.Fatal(err)
	}
	if _, err := src.Next(); !errors.Is(err, io.EOF) {
		t.Errorf("want io.EOF, got %v", err)
	}
}

func TestAC205_Ingest_TypeColumnIsRequired(t *testing.T) {
	noType := row("Netflix", "1", "A", "10", "2024-01-01", "", "", "")
	delete(noType, FieldType)
	rows := []Row{
		noType,
		row("Netflix", "1", "A", "10", "2024-01-01", "", "", ""),
	}

	_, result := runRows(t, rows)

	if result.RejectedCount() != 2 {
		t.Fatalf("want both rows rejected, got %d", result.RejectedCount())
	}
	if got := result.Rejected[0].Kind(); got != "missing_required_column" {
		t.Errorf("a row without the type column should be missing_required_column, got %q", got)
	}
	if got := result.Rejected[1].Kind(); got != "invalid_interaction_type" {
		t.Errorf("a blank type should be invalid_interaction_type, got %q", got)
	}
}
