package display

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/gauthierbraillon/engagemix/internal/engagement"
	"github.com/gauthierbraillon/engagemix/internal/ingest"
	"github.com/gauthierbraillon/engagemix/internal/report"
)

func row(platform, contentID, name, userID, typ, duration, comment string) ingest.Row {
	return ingest.Row{
		ingest.FieldPlatform:      platform,
		ingest.FieldContentID:     contentID,
		ingest.FieldContentName:   name,
		ingest.FieldUserID:        userID,
		ingest.FieldTimestamp:     "2024-05-10T08:30:00Z",
		ingest.FieldType:          typ,
		ingest.FieldWatchDuration: duration,
		ingest.FieldCommentText:   comment,
	}
}

func catalogOf(t *testing.T, rows ...ingest.Row) *engagement.Catalog {
	t.Helper()
	catalog := engagement.NewCatalog()
	if _, err := ingest.NewPipeline(catalog).Run(ingest.NewSliceSource(rows)); err != nil {
		t.Fatalf("Run: %v", err)
	}
	return catalog
}

func TestAC400_Duration_Formats(t *testing.T) {
	testCases := []struct {
		seconds float64
		want    string
	}{
		{0, "0s"},
		{59, "59s"},
		{60, "1min 0s"},
		{754, "12min 34s"},
		{3600, "1h 0min 0s"},
		{3725, "1h 2min 5s"},
		{90.9, "1min 30s"},
		{-5, "0s"},
	}

	for _, tc := range testCases {
		if got := FormatDuration(tc.seconds); got != tc.want {
			t.Errorf("FormatDuration(%v): user should see %q, got %q", tc.seconds, tc.want, got)
		}
	}
}

func TestAC401_Platforms_ShowIDsAndNames(t *testing.T) {
	catalog := catalogOf(t,
		row("Netflix", "1", "Doc Documentary", "10", "like", "", ""),
		row("YouTube", "2", "Intro", "10", "like", "", ""),
	)

	output := NewTerminalFormatter().FormatPlatforms(catalog.Platforms())

	if !strings.Contains(output, "ID: 1 | Platform: Netflix") {
		t.Errorf("user should see Netflix with id 1, got:\n%s", output)
	}
	if !strings.Contains(output, "ID: 2 | Platform: YouTube") {
		t.Errorf("user should see YouTube with id 2, got:\n%s", output)
	}
}

func TestAC402_TypeCounts_AreCapitalized(t *testing.T) {
	catalog := catalogOf(t,
		row("Spotify", "3", "Morning Podcast", "10", "like", "", ""),
		row("Spotify", "3", "Morning Podcast", "11", "like", "", ""),
		row("Spotify", "3", "Morning Podcast", "11", "share", "", ""),
	)

	output := NewTerminalFormatter().FormatPodcasts(catalog.ContentsOfKind(engagement.KindPodcast))

	if !strings.Contains(output, "Podcast: Morning Podcast") {
		t.Errorf("user should see the podcast name, got:\n%s", output)
	}
	if !strings.Contains(output, "  Like: 2") || !strings.Contains(output, "  Share: 1") {
		t.Errorf("user should see capitalized type counts, got:\n%s", output)
	}
	if strings.Index(output, "Like") > strings.Index(output, "Share") {
		t.Error("user should see types in first-occurrence order")
	}
}

func TestAC402_Podcasts_EmptyMessage(t *testing.T) {
	output := NewTerminalFormatter().FormatPodcasts(nil)
	if !strings.Contains(output, "No podcasts") {
		t.Errorf("user should see that no podcasts exist, got %q", output)
	}
}

func TestAC403_Consumption_UsesReadableDurations(t *testing.T) {
	catalog := catalogOf(t,
		row("YouTube", "1", "Long Video", "10", "view_start", "3725", ""),
		row("YouTube", "1", "Long Video", "11", "view_start", "75", ""),
	)
	contents := catalog.Contents()
	formatter := NewTerminalFormatter()

	total := formatter.FormatConsumption(contents)
	if !strings.Contains(total, "Long Video | Total: 1h 3min 20s") {
		t.Errorf("user should see the total as hours, minutes and seconds, got:\n%s", total)
	}

	average := formatter.FormatAverageConsumption(contents)
	if !strings.Contains(average, "Average: 31min 40s") {
		t.Errorf("user should see the average watch time, got:\n%s", average)
	}
	if !strings.Contains(average, "% watched") {
		t.Errorf("user should see percent watched for videos, got:\n%s", average)
	}
}

func TestAC404_Comments_SkipContentsWithoutComments(t *testing.T) {
	catalog := catalogOf(t,
		row("YouTube", "1", "Intro", "10", "comment", "", "nice"),
		row("YouTube", "2", "Silent", "10", "like", "", ""),
	)

	output := NewTerminalFormatter().FormatComments(catalog.Contents())

	if !strings.Contains(output, "  - nice") {
		t.Errorf("user should see the comment text, got:\n%s", output)
	}
	if strings.Contains(output, "Silent") {
		t.Error("user should not see contents without comments")
	}

	if out := NewTerminalFormatter().FormatComments(nil); !strings.Contains(out, "No comments") {
		t.Errorf("user should see an empty message, got %q", out)
	}
}

func TestAC405_TopContents_ShowRanks(t *testing.T) {
	catalog := catalogOf(t,
		row("YouTube", "1", "Quiet", "10", "like", "", ""),
		row("YouTube", "2", "Popular", "10", "like", "", ""),
		row("YouTube", "2", "Popular", "11", "share", "", ""),
	)
	ranked, err := report.New(catalog).TopContents(report.MetricTotalInteractions, 5)
	if err != nil {
		t.Fatal(err)
	}

	output := NewTerminalFormatter().FormatTopContents(report.MetricTotalInteractions, ranked)

	if !strings.Contains(output, "1. Popular | total_interactions: 2") {
		t.Errorf("user should see Popular ranked first, got:\n%s", output)
	}
	if !strings.Contains(output, "2. Quiet") {
		t.Errorf("user should see Quiet ranked second, got:\n%s", output)
	}
}

func TestAC405_TopUsers_ShowDurationsForConsumption(t *testing.T) {
	catalog := catalogOf(t,
		row("YouTube", "1", "Intro", "10", "view_start", "90", ""),
	)
	ranked, err := report.New(catalog).TopUsers(report.MetricTotalConsumptionTime, 5)
	if err != nil {
		t.Fatal(err)
	}

	output := NewTerminalFormatter().FormatTopUsers(report.MetricTotalConsumptionTime, ranked)

	if !strings.Contains(output, "1. ID: 10 | total_consumption_time: 1min 30s") {
		t.Errorf("user should see a readable duration, got:\n%s", output)
	}
}

func TestAC406_User_ShowsActivity(t *testing.T) {
	catalog := catalogOf(t,
		row("Netflix", "1", "Doc Documentary", "10", "view_start", "600", ""),
		row("Netflix", "1", "Doc Documentary", "10", "like", "", ""),
		row("YouTube", "2", "Intro", "10", "share", "", ""),
	)
	summary, err := report.New(catalog).UserSummary(10)
	if err != nil {
		t.Fatal(err)
	}
	formatter := NewTerminalFormatter()
	formatter.now = func() time.Time { return time.Date(2024, 5, 10, 11, 30, 0, 0, time.UTC) }

	output := formatter.FormatUser(summary)

	for _, want := range []string{
		"User 10",
		"3 interactions",
		"2 engagements",
		"10min 0s watched",
		"last active 3 hours ago",
		"Netflix: 2 interactions",
		"Like: 1",
		"1. Doc Documentary [article]",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("user should see %q, got:\n%s", want, output)
		}
	}
}

func TestAC407_Ingest_ListsRejectedRows(t *testing.T) {
	result := &ingest.Result{
		Rows:     4,
		Accepted: 1,
		Rejected: []*ingest.RowError{
			{Number: 2, Err: engagement.ErrInvalidInteractionType},
			{Number: 3, Err: engagement.ErrInvalidUserID},
			{Number: 4, Err: errors.New("boom")},
		},
	}

	output := NewTerminalFormatter().FormatIngest(result, 2)

	if !strings.Contains(output, "4 rows") || !strings.Contains(output, "3 rejected") {
		t.Errorf("user should see the row counts, got:\n%s", output)
	}
	if !strings.Contains(output, "row 2:") || !strings.Contains(output, "row 3:") {
		t.Errorf("user should see the first rejected rows, got:\n%s", output)
	}
	if strings.Contains(output, "row 4:") || !strings.Contains(output, "1 more") {
		t.Errorf("user should see the remainder summarized, got:\n%s", output)
	}
}

func TestAC408_Timestamp_IsRelative(t *testing.T) {
	now := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	formatter := NewTerminalFormatter()
	formatter.now = func() time.Time { return now }

	testCases := []struct {
		name      string
		timestamp time.Time
		want      string
	}{
		{"seconds", now.Add(-10 * time.Second), "just now"},
		{"minutes", now.Add(-1 * time.Minute), "1 minute ago"},
		{"hours", now.Add(-3 * time.Hour), "3 hours ago"},
		{"days", now.Add(-48 * time.Hour), "2 days ago"},
		{"older", now.AddDate(0, -2, 0), "Mar 10, 2024"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := formatter.FormatTimestamp(tc.timestamp); got != tc.want {
				t.Errorf("user should see %q, got %q", tc.want, got)
			}
		})
	}
}

func TestAC409_TruncatesLongText(t *testing.T) {
	formatter := NewTerminalFormatter()
	longText := "This is a very long comment that should be truncated because it exceeds the maximum length"

	truncated := formatter.TruncateText(longText, 20)

	if len([]rune(truncated)) > 20 {
		t.Errorf("user should see truncated text (max 20 chars), got %d chars", len(truncated))
	}
	if !strings.HasSuffix(truncated, "...") {
		t.Error("user should see ellipsis indicating text was truncated")
	}
	if got := formatter.TruncateText("Short", 20); got != "Short" {
		t.Errorf("user should see full text when under limit, got: %s", got)
	}
	if got := formatter.TruncateText("ação ótima", 6); got != "açã..." {
		t.Errorf("truncation should respect multi-byte characters, got %q", got)
	}
}

func TestAC410_EmptyListings(t *testing.T) {
	formatter := NewTerminalFormatter()
	for name, out := range map[string]string{
		"platforms": formatter.FormatPlatforms(nil),
		"contents":  formatter.FormatContents(nil),
		"users":     formatter.FormatUsers(nil),
	} {
		if !strings.HasPrefix(out, "No ") {
			t.Errorf("%s: user should see an empty message, got %q", name, out)
		}
	}
}

func TestAC411_Activity_ShowsFeedEntries(t *testing.T) {
	catalog := catalogOf(t,
		row("YouTube", "1", "Intro", "10", "view_start", "95", ""),
		row("YouTube", "1", "Intro", "11", "comment", "", "loved the pacing"),
	)
	formatter := NewTerminalFormatter()
	formatter.now = func() time.Time { return time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC) }

	output := formatter.FormatActivity(report.New(catalog).Activity(report.ActivityOptions{}))

	for _, want := range []string{
		"[YOUTUBE] View_start • Intro",
		"by user 10 • 30 minutes ago • 1min 35s watched",
		"[YOUTUBE] Comment • Intro",
		`"loved the pacing"`,
	} {
		if !strings.Contains(output, want) {
			t.Errorf("user should see %q, got:\n%s", want, output)
		}
	}
	if strings.Index(output, "Comment") > strings.Index(output, "View_start") {
		t.Error("user should see the later row first when timestamps tie")
	}
}

func TestAC411_Activity_EmptyFeed(t *testing.T) {
	output := NewTerminalFormatter().FormatActivity(nil)

	if !strings.Contains(strings.ToLower(output), "no activity") {
		t.Errorf("user should see an empty feed message, got %q", output)
	}
}

func TestAC412_Comparison_ShowsSignedChanges(t *testing.T) {
	cmp := report.Comparison{
		BaselineGeneratedAt: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
		BaselineRunID:       "run-1",
		Platforms:           []report.Delta{{ID: 1, Name: "YouTube", Before: 4, After: 6}},
		Contents:            []report.Delta{{ID: 9, Name: "Retired", Before: 2, After: 0}},
	}

	output := NewTerminalFormatter().FormatComparison(cmp)

	for _, want := range []string{"Mar 1, 2024 12:00 UTC", "run-1", "YouTube | 4 -> 6 (+2)", "Retired | 2 -> 0 (-2)"} {
		if !strings.Contains(output, want) {
			t.Errorf("user should see %q, got:\n%s", want, output)
		}
	}
}
