package engagement

import (
	"fmt"
	"math"
	"strings"
)

// Kind is the content variant.
type Kind string

const (
	KindVideo   Kind = "video"
	KindPodcast Kind = "podcast"
	KindArticle Kind = "article"
)

// Kinds lists every content variant.
var Kinds = []Kind{KindVideo, KindPodcast, KindArticle}

// ParseKind accepts a variant name in any case.
func ParseKind(raw string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(raw)))
	for _, known := range Kinds {
		if k == known {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown content type %q: must be video, podcast or article", raw)
}

// Content is a video, podcast or article together with the interactions
// recorded against it. The variant payload is a length in seconds: the total
// duration of a video, the episode duration of a podcast or the estimated
// reading time of an article.
type Content struct {
	id           int
	name         string
	kind         Kind
	seconds      int
	interactions []*Interaction
}

func newContent(id int, name string, kind Kind, seconds int) (*Content, error) {
	if id < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidContentID, id)
	}
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return nil, fmt.Errorf("%w: content %d", ErrEmptyContentName, id)
	}
	if seconds < 0 {
		return nil, fmt.Errorf("%s %d: negative length %d", kind, id, seconds)
	}
	return &Content{id: id, name: trimmed, kind: kind, seconds: seconds}, nil
}

// NewVideo builds a video with its total duration in seconds.
func NewVideo(id int, name string, totalDurationSeconds int) (*Content, error) {
	return newContent(id, name, KindVideo, totalDurationSeconds)
}

// NewPodcast builds a podcast with its episode duration in seconds.
func NewPodcast(id int, name string, episodeDurationSeconds int) (*Content, error) {
	return newContent(id, name, KindPodcast, episodeDurationSeconds)
}

// NewArticle builds an article with its estimated reading time in seconds.
func NewArticle(id int, name string, readingTimeSeconds int) (*Content, error) {
	return newContent(id, name, KindArticle, readingTimeSeconds)
}

// KindForName picks the variant from keywords in the content name:
// "podcast" wins over "documentary" and "article"; anything else is a video.
func KindForName(name string) Kind {
	lower := strings.ToLower(name)
	switch {
	case strings.Contains(lower, "podcast"):
		return KindPodcast
	case strings.Contains(lower, "documentary"), strings.Contains(lower, "article"):
		return KindArticle
	default:
		return KindVideo
	}
}

// NewContentFor parses idText and builds the variant chosen by KindForName.
// The length payload starts at 0; the interaction log does not carry it.
func NewContentFor(idText, name string) (*Content, error) {
	id, err := parseID(idText)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidContentID, idText)
	}
	return newContent(id, name, KindForName(name), 0)
}

func (c *Content) ID() int      { return c.id }
func (c *Content) Name() string { return c.name }
func (c *Content) Kind() Kind   { return c.kind }

// TotalDurationSeconds is the length of a video. ok is false for other kinds.
func (c *Content) TotalDurationSeconds() (seconds int, ok bool) {
	return c.seconds, c.kind == KindVideo
}

// EpisodeDurationSeconds is the length of a podcast episode. ok is false for
// other kinds.
func (c *Content) EpisodeDurationSeconds() (seconds int, ok bool) {
	return c.seconds, c.kind == KindPodcast
}

// ReadingTimeSeconds is the estimated reading time of an article. ok is false
// for other kinds.
func (c *Content) ReadingTimeSeconds() (seconds int, ok bool) {
	return c.seconds, c.kind == KindArticle
}

func (c *Content) String() string {
	return fmt.Sprintf("[%s] %s (%d)", strings.ToUpper(string(c.kind)), c.name, c.id)
}

// addInteraction appends in. Only the catalog links interactions.
func (c *Content) addInteraction(in *Interaction) {
	c.interactions = append(c.interactions, in)
}

// Interactions returns the interactions in the order they were recorded.
func (c *Content) Interactions() []*Interaction {
	out := make([]*Interaction, len(c.interactions))
	copy(out, c.interactions)
	return out
}

// InteractionCount is the number of recorded interactions of any type.
func (c *Content) InteractionCount() int {
	return len(c.interactions)
}

// TotalEngagementInteractions counts likes, shares and comments.
func (c *Content) TotalEngagementInteractions() int {
	total := 0
	for _, in := range c.interactions {
		if in.typ.IsEngagement() {
			total++
		}
	}
	return total
}

// ViewCount counts view_start interactions.
func (c *Content) ViewCount() int {
	return c.countType(TypeViewStart)
}

func (c *Content) countType(t InteractionType) int {
	n := 0
	for _, in := range c.interactions {
		if in.typ == t {
			n++
		}
	}
	return n
}

// CountsByType maps each interaction type present to its number of
// occurrences. Absent types have no entry.
func (c *Content) CountsByType() map[InteractionType]int {
	counts := make(map[InteractionType]int)
	for _, in := range c.interactions {
		counts[in.typ]++
	}
	return counts
}

// TypeCount pairs an interaction type with its number of occurrences.
type TypeCount struct {
	Type  InteractionType `json:"type" yaml:"type"`
	Count int             `json:"count" yaml:"count"`
}

// TypeCounts is CountsByType ordered by first occurrence.
func (c *Content) TypeCounts() []TypeCount {
	out := make([]TypeCount, 0, len(InteractionTypes))
	pos := make(map[InteractionType]int)
	for _, in := range c.interactions {
		i, seen := pos[in.typ]
		if !seen {
			pos[in.typ] = len(out)
			out = append(out, TypeCount{Type: in.typ, Count: 1})
			continue
		}
		out[i].Count++
	}
	return out
}

// TotalConsumptionTime sums watch durations greater than zero.
func (c *Content) TotalConsumptionTime() int {
	total := 0
	for _, in := range c.interactions {
		if in.watchDuration > 0 {
			total += in.watchDuration
		}
	}
	return total
}

// AverageConsumptionTime is the mean of the watch durations greater than zero,
// or 0 when there are none.
func (c *Content) AverageConsumptionTime() float64 {
	total, n := 0, 0
	for _, in := range c.interactions {
		if in.watchDuration > 0 {
			total += in.watchDuration
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return float64(total) / float64(n)
}

// Comments returns the text of comment interactions in recorded order.
func (c *Content) Comments() []string {
	comments := make([]string, 0)
	for _, in := range c.interactions {
		if in.typ == TypeComment {
			comments = append(comments, in.commentText)
		}
	}
	return comments
}

// AveragePercentWatched sums each user's positive watch durations, converts
// every sum to a percentage of the video's total duration and returns the mean
// across users, rounded to two decimals. It is 0 for non-videos, for videos
// without a duration and when nobody watched.
func (c *Content) AveragePercentWatched() float64 {
	if c.kind != KindVideo || c.seconds == 0 {
		return 0
	}

	var order []int
	perUser := make(map[int]int)
	for _, in := range c.interactions {
		if in.watchDuration <= 0 {
			continue
		}
		if _, seen := perUser[in.userID]; !seen {
			order = append(order, in.userID)
		}
		perUser[in.userID] += in.watchDuration
	}
	if len(order) == 0 {
		return 0
	}

	sum := 0.0
	for _, userID := range order {
		sum += float64(perUser[userID]) / float64(c.seconds) * 100
	}
	return math.Round(sum/float64(len(order))*100) / 100
}
