// Package display provides terminal output formatting for engagemix reports.
package display

import (
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/gauthierbraillon/engagemix/internal/engagement"
	"github.com/gauthierbraillon/engagemix/internal/ingest"
	"github.com/gauthierbraillon/engagemix/internal/report"
)

const separator = " • "

// maxCommentLen bounds comment lines in listings.
const maxCommentLen = 120

// TerminalFormatter formats reports for terminal display.
type TerminalFormatter struct {
	now func() time.Time
}

// NewTerminalFormatter creates a new terminal formatter.
func NewTerminalFormatter() *TerminalFormatter {
	return &TerminalFormatter{now: time.Now}
}

// FormatDuration renders seconds as "Xh Ymin Zs", "Ymin Zs" or "Zs".
// Fractions are truncated.
func FormatDuration(seconds float64) string {
	total := int(seconds)
	if total < 0 {
		total = 0
	}
	h := total / 3600
	m := (total % 3600) / 60
	s := total % 60

	switch {
	case h > 0:
		return fmt.Sprintf("%dh %dmin %ds", h, m, s)
	case m > 0:
		return fmt.Sprintf("%dmin %ds", m, s)
	default:
		return fmt.Sprintf("%ds", s)
	}
}

func heading(title string) string {
	return fmt.Sprintf("=== %s ===\n", strings.ToUpper(title))
}

func empty(what string) string {
	return fmt.Sprintf("No %s to display.\n", what)
}

// capitalize upper-cases the first letter of an interaction type label.
func capitalize(s string) string {
	r := []rune(s)
	if len(r) == 0 {
		return s
	}
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}

// FormatPlatforms lists platforms with their catalog ids.
func (f *TerminalFormatter) FormatPlatforms(platforms []*engagement.Platform) string {
	if len(platforms) == 0 {
		return empty("platforms")
	}
	var b strings.Builder
	b.WriteString(heading("platforms"))
	for _, p := range platforms {
		fmt.Fprintf(&b, "ID: %d | Platform: %s\n", p.ID(), p.Name())
	}
	return b.String()
}

// FormatPlatformSummaries shows per-platform activity.
func (f *TerminalFormatter) FormatPlatformSummaries(summaries []report.PlatformSummary) string {
	if len(summaries) == 0 {
		return empty("platforms")
	}
	var b strings.Builder
	b.WriteString(heading("platforms"))
	for _, s := range summaries {
		fmt.Fprintf(&b, "ID: %d | Platform: %s\n", s.ID, s.Name)
		fmt.Fprintf(&b, "  %s%s%s%s%s watched\n",
			pluralCount(s.Interactions, "interaction"), separator,
			pluralCount(s.Users, "user"), separator,
			FormatDuration(float64(s.ConsumptionSeconds)))
	}
	return b.String()
}

// FormatComparison shows interaction counts against a baseline snapshot.
func (f *TerminalFormatter) FormatComparison(c report.Comparison) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Compared with snapshot from %s (run %s)\n\n",
		c.BaselineGeneratedAt.UTC().Format("Jan 2, 2006 15:04 MST"), c.BaselineRunID)
	writeDeltas(&b, "platforms", c.Platforms)
	b.WriteString("\n")
	writeDeltas(&b, "contents", c.Contents)
	return b.String()
}

func writeDeltas(b *strings.Builder, what string, deltas []report.Delta) {
	if len(deltas) == 0 {
		b.WriteString(empty(what))
		return
	}
	b.WriteString(heading(what))
	for _, d := range deltas {
		fmt.Fprintf(b, "%s | %d -> %d (%+d)\n", d.Name, d.Before, d.After, d.Change())
	}
}

// FormatContents lists contents with their kind.
func (f *TerminalFormatter) FormatContents(contents []*engagement.Content) string {
	if len(contents) == 0 {
		return empty("contents")
	}
	var b strings.Builder
	b.WriteString(heading("contents"))
	for _, c := range contents {
		fmt.Fprintf(&b, "ID: %d | Content: %s [%s]\n", c.ID(), c.Name(), c.Kind())
	}
	return b.String()
}

// FormatPodcasts lists podcasts with their interaction counts by type.
func (f *TerminalFormatter) FormatPodcasts(podcasts []*engagement.Content) string {
	if len(podcasts) == 0 {
		return "No podcasts found.\n"
	}
	var b strings.Builder
	b.WriteString(heading("podcasts & interactions"))
	for _, c := range podcasts {
		fmt.Fprintf(&b, "\nPodcast: %s\n", c.Name())
		writeTypeCounts(&b, c.TypeCounts())
	}
	return b.String()
}

// FormatEngagementTotals shows likes, shares and comments per content.
func (f *TerminalFormatter) FormatEngagementTotals(contents []*engagement.Content) string {
	if len(contents) == 0 {
		return empty("contents")
	}
	var b strings.Builder
	b.WriteString(heading("total interactions per content"))
	for _, c := range contents {
		fmt.Fprintf(&b, "%s | Interactions: %d\n", c.Name(), c.TotalEngagementInteractions())
	}
	return b.String()
}

// FormatTypeCounts shows interaction counts by type for each content.
func (f *TerminalFormatter) FormatTypeCounts(contents []*engagement.Content) string {
	if len(contents) == 0 {
		return empty("contents")
	}
	var b strings.Builder
	b.WriteString(heading("interactions by type"))
	for _, c := range contents {
		fmt.Fprintf(&b, "\n%s:\n", c.Name())
		writeTypeCounts(&b, c.TypeCounts())
	}
	return b.String()
}

func writeTypeCounts(b *strings.Builder, counts []engagement.TypeCount) {
	if len(counts) == 0 {
		b.WriteString("  (no interactions)\n")
		return
	}
	for _, tc := range counts {
		fmt.Fprintf(b, "  %s: %d\n", capitalize(string(tc.Type)), tc.Count)
	}
}

// FormatConsumption shows the total watch time per content.
func (f *TerminalFormatter) FormatConsumption(contents []*engagement.Content) string {
	if len(contents) == 0 {
		return empty("contents")
	}
	var b strings.Builder
	b.WriteString(heading("total watch time per content"))
	for _, c := range contents {
		fmt.Fprintf(&b, "%s | Total: %s\n", c.Name(), FormatDuration(float64(c.TotalConsumptionTime())))
	}
	return b.String()
}

// FormatAverageConsumption shows the mean watch time per content, and the
// average percent watched for videos.
func (f *TerminalFormatter) FormatAverageConsumption(contents []*engagement.Content) string {
	if len(contents) == 0 {
		return empty("contents")
	}
	var b strings.Builder
	b.WriteString(heading("average watch time per content"))
	for _, c := range contents {
		line := fmt.Sprintf("%s | Average: %s", c.Name(), FormatDuration(c.AverageConsumptionTime()))
		if c.Kind() == engagement.KindVideo {
			line += fmt.Sprintf("%s%.2f%% watched", separator, c.AveragePercentWatched())
		}
		b.WriteString(line + "\n")
	}
	return b.String()
}

// FormatComments lists comment texts per content. Contents without comments
// are skipped.
func (f *TerminalFormatter) FormatComments(contents []*engagement.Content) string {
	var b strings.Builder
	b.WriteString(heading("comments per content"))
	found := false
	for _, c := range contents {
		comments := c.Comments()
		if len(comments) == 0 {
			continue
		}
		found = true
		fmt.Fprintf(&b, "\n%s:\n", c.Name())
		for _, text := range comments {
			fmt.Fprintf(&b, "  - %s\n", f.TruncateText(text, maxCommentLen))
		}
	}
	if !found {
		return empty("comments")
	}
	return b.String()
}

// FormatTopContents shows a content ranking.
func (f *TerminalFormatter) FormatTopContents(metric string, ranked []report.Ranked[*engagement.Content]) string {
	if len(ranked) == 0 {
		return empty("contents")
	}
	var b strings.Builder
	b.WriteString(heading(fmt.Sprintf("top %d contents by %s", len(ranked), metric)))
	for _, r := range ranked {
		fmt.Fprintf(&b, "%d. %s | %s: %s\n", r.Rank, r.Item.Name(), metric, formatScore(metric, r.Score))
	}
	return b.String()
}

// FormatTopUsers shows a user ranking.
func (f *TerminalFormatter) FormatTopUsers(metric string, ranked []report.Ranked[*engagement.User]) string {
	if len(ranked) == 0 {
		return empty("users")
	}
	var b strings.Builder
	b.WriteString(heading(fmt.Sprintf("top %d users by %s", len(ranked), metric)))
	for _, r := range ranked {
		fmt.Fprintf(&b, "%d. ID: %d | %s: %s\n", r.Rank, r.Item.ID(), metric, formatScore(metric, r.Score))
	}
	return b.String()
}

func formatScore(metric string, score float64) string {
	switch {
	case strings.Contains(metric, "consumption") || strings.Contains(metric, "consumo"):
		return FormatDuration(score)
	case strings.Contains(metric, "percent"):
		return fmt.Sprintf("%.2f%%", score)
	default:
		return fmt.Sprintf("%g", score)
	}
}

// FormatUsers lists users with their interaction counts.
func (f *TerminalFormatter) FormatUsers(users []*engagement.User) string {
	if len(users) == 0 {
		return empty("users")
	}
	var b strings.Builder
	b.WriteString(heading("users"))
	for _, u := range users {
		fmt.Fprintf(&b, "ID: %d | Interactions: %d\n", u.ID(), u.InteractionCount())
	}
	return b.String()
}

// FormatUser shows the activity report of one user.
func (f *TerminalFormatter) FormatUser(s report.UserSummary) string {
	var lines []string

	lines = append(lines, fmt.Sprintf("User %d", s.ID))
	lines = append(lines, "  "+pluralCount(s.Interactions, "interaction")+separator+
		fmt.Sprintf("%d engagements", s.EngagementInteractions)+separator+
		FormatDuration(float64(s.TotalConsumptionSeconds))+" watched")
	if !s.LastSeen.IsZero() {
		lines = append(lines, "  last active "+f.FormatTimestamp(s.LastSeen))
	}

	if len(s.CountsByType) > 0 {
		lines = append(lines, "  By type:")
		for _, tc := range s.CountsByType {
			lines = append(lines, fmt.Sprintf("    %s: %d", capitalize(string(tc.Type)), tc.Count))
		}
	}
	if len(s.Platforms) > 0 {
		lines = append(lines, "  Platforms:")
		for _, p := range s.Platforms {
			lines = append(lines, fmt.Sprintf("    %s: %s%s%s", p.Platform,
				pluralCount(p.Interactions, "interaction"), separator, FormatDuration(float64(p.ConsumptionSeconds))))
		}
	}
	if len(s.UniqueContents) > 0 {
		lines = append(lines, "  Contents:")
		for _, c := range s.UniqueContents {
			lines = append(lines, fmt.Sprintf("    %d. %s [%s]", c.ID, f.TruncateText(c.Name, 60), c.Kind))
		}
	}

	return strings.Join(lines, "\n") + "\n"
}

// FormatIngest summarizes an ingestion run, listing at most maxErrors rejected
// rows. maxErrors <= 0 lists all of them.
func (f *TerminalFormatter) FormatIngest(result *ingest.Result, maxErrors int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Read %s%s%d accepted%s%d rejected%s%s\n",
		pluralCount(result.Rows, "row"), separator,
		result.Accepted, separator,
		result.RejectedCount(), separator,
		result.Duration.Round(time.Millisecond))

	for i, rejected := range result.Rejected {
		if maxErrors > 0 && i == maxErrors {
			fmt.Fprintf(&b, "  ... and %d more\n", len(result.Rejected)-maxErrors)
			break
		}
		fmt.Fprintf(&b, "  row %d: %s (%s)\n", rejected.Number, rejected.Err, rejected.Kind())
	}
	return b.String()
}

// FormatInteraction formats one interaction as a feed entry.
func (f *TerminalFormatter) FormatInteraction(in *engagement.Interaction) string {
	var lines []string

	// Header: [PLATFORM] Type • Content
	lines = append(lines, fmt.Sprintf("[%s] %s%s%s", strings.ToUpper(in.Platform().Name()),
		capitalize(string(in.Type())), separator, in.Content().Name()))

	meta := fmt.Sprintf("  by user %d%s%s", in.UserID(), separator, f.FormatTimestamp(in.Timestamp()))
	if in.WatchDuration() > 0 {
		meta += separator + FormatDuration(float64(in.WatchDuration())) + " watched"
	}
	lines = append(lines, meta)

	if in.CommentText() != "" {
		lines = append(lines, fmt.Sprintf("  %q", f.TruncateText(in.CommentText(), maxCommentLen)))
	}

	return strings.Join(lines, "\n") + "\n"
}

// FormatActivity formats an interaction feed.
func (f *TerminalFormatter) FormatActivity(feed []*engagement.Interaction) string {
	if len(feed) == 0 {
		return "No activity to display.\n"
	}

	formatted := make([]string, 0, len(feed))
	for _, in := range feed {
		formatted = append(formatted, f.FormatInteraction(in))
	}
	return strings.Join(formatted, "\n")
}

// FormatTimestamp formats a timestamp as relative time.
func (f *TerminalFormatter) FormatTimestamp(t time.Time) string {
	diff := f.now().Sub(t)

	switch {
	case diff < 0:
		return t.Format("Jan 2, 2006")
	case diff < time.Minute:
		return "just now"
	case diff < time.Hour:
		return pluralAgo(int(diff.Minutes()), "minute")
	case diff < 24*time.Hour:
		return pluralAgo(int(diff.Hours()), "hour")
	case diff < 7*24*time.Hour:
		return pluralAgo(int(diff.Hours()/24), "day")
	default:
		return t.Format("Jan 2, 2006")
	}
}

func pluralAgo(n int, unit string) string {
	return pluralCount(n, unit) + " ago"
}

func pluralCount(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}

// TruncateText truncates text to maxLen runes, adding "..." if truncated.
func (f *TerminalFormatter) TruncateText(text string, maxLen int) string {
	r := []rune(text)
	if len(r) <= maxLen {
		return text
	}
	if maxLen <= 3 {
		return "..."
	}
	return string(r[:maxLen-3]) + "..."
}
