// Package report answers read-only queries over an ingested catalog: listings,
// per-content and per-user summaries and top-N rankings by named metric.
//
// Reports never modify the catalog and are only meaningful once ingestion is
// complete.
package report

import (
	"errors"
	"fmt"
	"time"

	"github.com/gauthierbraillon/engagemix/internal/engagement"
)

// AnalysisVersion identifies the report format.
const AnalysisVersion = "2.0"

// ErrUserNotFound is returned for a user id absent from the catalog.
var ErrUserNotFound = errors.New("user not found")

// ErrContentNotFound is returned for a content id absent from the catalog.
var ErrContentNotFound = errors.New("content not found")

// ContentOptions filters content listings.
type ContentOptions struct {
	Kinds []engagement.Kind
	Limit int
}

// Reporter queries a catalog.
type Reporter struct {
	catalog *engagement.Catalog
}

// New creates a Reporter over catalog.
func New(catalog *engagement.Catalog) *Reporter {
	return &Reporter{catalog: catalog}
}

// Platforms lists platforms in registration order.
func (r *Reporter) Platforms() []*engagement.Platform {
	return r.catalog.Platforms()
}

// Users lists users in registration order.
func (r *Reporter) Users() []*engagement.User {
	return r.catalog.Users()
}

// Contents lists contents in registration order, optionally restricted to some
// kinds and truncated to opts.Limit.
func (r *Reporter) Contents(opts ContentOptions) []*engagement.Content {
	out := make([]*engagement.Content, 0)
	for _, c := range r.catalog.Contents() {
		if !kindSelected(c.Kind(), opts.Kinds) {
			continue
		}
		out = append(out, c)
		if opts.Limit > 0 && len(out) == opts.Limit {
			break
		}
	}
	return out
}

func kindSelected(k engagement.Kind, kinds []engagement.Kind) bool {
	if len(kinds) == 0 {
		return true
	}
	for _, want := range kinds {
		if k == want {
			return true
		}
	}
	return false
}

// TopContents ranks contents by the named metric. Ties keep registration
// order. n <= 0 ranks every content.
func (r *Reporter) TopContents(metric string, n int) ([]Ranked[*engagement.Content], error) {
	m, err := LookupContentMetric(metric)
	if err != nil {
		return nil, err
	}
	return TopN(r.catalog.Contents(), m.Value, n), nil
}

// TopUsers ranks users by the named metric. Ties keep registration order.
func (r *Reporter) TopUsers(metric string, n int) ([]Ranked[*engagement.User], error) {
	m, err := LookupUserMetric(metric)
	if err != nil {
		return nil, err
	}
	return TopN(r.catalog.Users(), m.Value, n), nil
}

// ContentSummary is the full metric set of one content.
type ContentSummary struct {
	ID                        int                    `json:"id" yaml:"id"`
	Name                      string                 `json:"name" yaml:"name"`
	Kind                      engagement.Kind        `json:"kind" yaml:"kind"`
	Interactions              int                    `json:"interactions" yaml:"interactions"`
	EngagementInteractions    int                    `json:"engagement_interactions" yaml:"engagement_interactions"`
	ViewCount                 int                    `json:"view_count" yaml:"view_count"`
	CountsByType              []engagement.TypeCount `json:"counts_by_type" yaml:"counts_by_type"`
	TotalConsumptionSeconds   int                    `json:"total_consumption_seconds" yaml:"total_consumption_seconds"`
	AverageConsumptionSeconds float64                `json:"average_consumption_seconds" yaml:"average_consumption_seconds"`
	AveragePercentWatched     *float64               `json:"average_percent_watched,omitempty" yaml:"average_percent_watched,omitempty"`
	Comments                  []string               `json:"comments" yaml:"comments"`
}

// SummarizeContent computes the summary of c.
func SummarizeContent(c *engagement.Content) ContentSummary {
	s := ContentSummary{
		ID:                        c.ID(),
		Name:                      c.Name(),
		Kind:                      c.Kind(),
		Interactions:              c.InteractionCount(),
		EngagementInteractions:    c.TotalEngagementInteractions(),
		ViewCount:                 c.ViewCount(),
		CountsByType:              c.TypeCounts(),
		TotalConsumptionSeconds:   c.TotalConsumptionTime(),
		AverageConsumptionSeconds: c.AverageConsumptionTime(),
		Comments:                  c.Comments(),
	}
	if c.Kind() == engagement.KindVideo {
		pct := c.AveragePercentWatched()
		s.AveragePercentWatched = &pct
	}
	return s
}

// ContentSummaries summarizes the contents selected by opts.
func (r *Reporter) ContentSummaries(opts ContentOptions) []ContentSummary {
	contents := r.Contents(opts)
	out := make([]ContentSummary, 0, len(contents))
	for _, c := range contents {
		out = append(out, SummarizeContent(c))
	}
	return out
}

// ContentSummary summarizes one content by id.
func (r *Reporter) ContentSummary(id int) (ContentSummary, error) {
	c, ok := r.catalog.Content(id)
	if !ok {
		return ContentSummary{}, fmt.Errorf("%w: %d", ErrContentNotFound, id)
	}
	return SummarizeContent(c), nil
}

// ContentRef names a content.
type ContentRef struct {
	ID   int             `json:"id" yaml:"id"`
	Name string          `json:"name" yaml:"name"`
	Kind engagement.Kind `json:"kind" yaml:"kind"`
}

// PlatformUsage is a user's activity on one platform.
type PlatformUsage struct {
	Platform           string `json:"platform" yaml:"platform"`
	Interactions       int    `json:"interactions" yaml:"interactions"`
	ConsumptionSeconds int    `json:"consumption_seconds" yaml:"consumption_seconds"`
}

// UserSummary is the full metric set of one user.
type UserSummary struct {
	ID                      int                    `json:"id" yaml:"id"`
	Interactions            int                    `json:"interactions" yaml:"interactions"`
	EngagementInteractions  int                    `json:"engagement_interactions" yaml:"engagement_interactions"`
	CountsByType            []engagement.TypeCount `json:"counts_by_type" yaml:"counts_by_type"`
	UniqueContents          []ContentRef           `json:"unique_contents" yaml:"unique_contents"`
	TotalConsumptionSeconds int                    `json:"total_consumption_seconds" yaml:"total_consumption_seconds"`
	Platforms               []PlatformUsage        `json:"platforms" yaml:"platforms"`
	FirstSeen               time.Time              `json:"first_seen" yaml:"first_seen"`
	LastSeen                time.Time              `json:"last_seen" yaml:"last_seen"`
}

// SummarizeUser computes the summary of u. Platforms are ordered from most to
// least used.
func SummarizeUser(u *engagement.User) UserSummary {
	s := UserSummary{
		ID:                      u.ID(),
		Interactions:            u.InteractionCount(),
		EngagementInteractions:  u.EngagementInteractions(),
		CountsByType:            make([]engagement.TypeCount, 0),
		UniqueContents:          make([]ContentRef, 0),
		TotalConsumptionSeconds: u.TotalConsumptionTime(),
		Platforms:               make([]PlatformUsage, 0),
	}

	for i, in := range u.Interactions() {
		ts := in.Timestamp()
		if i == 0 || ts.Before(s.FirstSeen) {
			s.FirstSeen = ts
		}
		if i == 0 || ts.After(s.LastSeen) {
			s.LastSeen = ts
		}
	}
	for _, t := range engagement.InteractionTypes {
		if n := len(u.InteractionsOfType(t)); n > 0 {
			s.CountsByType = append(s.CountsByType, engagement.TypeCount{Type: t, Count: n})
		}
	}
	for _, c := range u.UniqueContentConsumed() {
		s.UniqueContents = append(s.UniqueContents, ContentRef{ID: c.ID(), Name: c.Name(), Kind: c.Kind()})
	}

	counts := make(map[string]int)
	for _, pc := range u.PlatformUsage() {
		counts[pc.Platform.Key()] = pc.Count
	}
	for _, p := range u.MostFrequentPlatforms(0) {
		s.Platforms = append(s.Platforms, PlatformUsage{
			Platform:           p.Name(),
			Interactions:       counts[p.Key()],
			ConsumptionSeconds: u.TotalConsumptionTimeOn(p),
		})
	}
	return s
}

// UserSummary summarizes one user by id.
func (r *Reporter) UserSummary(id int) (UserSummary, error) {
	u, ok := r.catalog.User(id)
	if !ok {
		return UserSummary{}, fmt.Errorf("%w: %d", ErrUserNotFound, id)
	}
	return SummarizeUser(u), nil
}

// UserSummaries summarizes every user in registration order.
func (r *Reporter) UserSummaries() []UserSummary {
	users := r.catalog.Users()
	out := make([]UserSummary, 0, len(users))
	for _, u := range users {
		out = append(out, SummarizeUser(u))
	}
	return out
}

// PlatformSummary aggregates every interaction recorded on one platform.
type PlatformSummary struct {
	ID                 int    `json:"id" yaml:"id"`
	Name               string `json:"name" yaml:"name"`
	Interactions       int    `json:"interactions" yaml:"interactions"`
	Users              int    `json:"users" yaml:"users"`
	ConsumptionSeconds int    `json:"consumption_seconds" yaml:"consumption_seconds"`
}

// PlatformSummaries aggregates interactions per platform, in platform
// registration order.
func (r *Reporter) PlatformSummaries() []PlatformSummary {
	platforms := r.catalog.Platforms()
	out := make([]PlatformSummary, len(platforms))
	pos := make(map[string]int, len(platforms))
	users := make([]map[int]struct{}, len(platforms))
	for i, p := range platforms {
		out[i] = PlatformSummary{ID: p.ID(), Name: p.Name()}
		pos[p.Key()] = i
		users[i] = make(map[int]struct{})
	}

	for _, c := range r.catalog.Contents() {
		for _, in := range c.Interactions() {
			i, ok := pos[in.Platform().Key()]
			if !ok {
				continue
			}
			out[i].Interactions++
			out[i].ConsumptionSeconds += in.WatchDuration()
			users[i][in.UserID()] = struct{}{}
		}
	}
	for i := range out {
		out[i].Users = len(users[i])
	}
	return out
}

// Ingestion describes the run a snapshot was computed from.
type Ingestion struct {
	RunID    string `json:"run_id" yaml:"run_id"`
	Source   string `json:"source" yaml:"source"`
	Rows     int    `json:"rows" yaml:"rows"`
	Accepted int    `json:"accepted" yaml:"accepted"`
	Rejected int    `json:"rejected" yaml:"rejected"`
}

// Snapshot is the complete report, suitable for export.
type Snapshot struct {
	AnalysisVersion string            `json:"analysis_version" yaml:"analysis_version"`
	GeneratedAt     time.Time         `json:"generated_at" yaml:"generated_at"`
	Ingestion       Ingestion         `json:"ingestion" yaml:"ingestion"`
	Platforms       []PlatformSummary `json:"platforms" yaml:"platforms"`
	Contents        []ContentSummary  `json:"contents" yaml:"contents"`
	Users           []UserSummary     `json:"users" yaml:"users"`
}

// Snapshot assembles every summary.
func (r *Reporter) Snapshot(ingestion Ingestion, generatedAt time.Time) Snapshot {
	return Snapshot{
		AnalysisVersion: AnalysisVersion,
		GeneratedAt:     generatedAt.UTC(),
		Ingestion:       ingestion,
		Platforms:       r.PlatformSummaries(),
		Contents:        r.ContentSummaries(ContentOptions{}),
		Users:           r.UserSummaries(),
	}
}
