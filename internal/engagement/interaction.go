package engagement

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// InteractionType identifies what the user did with a content.
type InteractionType string

const (
	TypeViewStart InteractionType = "view_start"
	TypeLike      InteractionType = "like"
	TypeShare     InteractionType = "share"
	TypeComment   InteractionType = "comment"
)

// InteractionTypes lists the accepted interaction types.
var InteractionTypes = []InteractionType{TypeViewStart, TypeLike, TypeShare, TypeComment}

// IsEngagement reports whether t counts as engagement (like, share or comment).
func (t InteractionType) IsEngagement() bool {
	return t == TypeLike || t == TypeShare || t == TypeComment
}

// ParseInteractionType normalizes raw to lower case and checks it is accepted.
func ParseInteractionType(raw string) (InteractionType, error) {
	t := InteractionType(strings.ToLower(strings.TrimSpace(raw)))
	for _, known := range InteractionTypes {
		if t == known {
			return t, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidInteractionType, raw)
}

// InteractionInput carries the raw field values of one interaction.
type InteractionInput struct {
	Content       *Content
	UserID        string
	Timestamp     string
	Platform      *Platform
	Type          string
	WatchDuration string
	CommentText   string
}

// Interaction is a single event of a user on a content. It is immutable and
// shared by reference between its content and its user.
type Interaction struct {
	id            int64
	content       *Content
	userID        int
	timestamp     time.Time
	platform      *Platform
	typ           InteractionType
	watchDuration int
	commentText   string
}

// NewInteraction validates in and, only when every check passes, draws the
// next id from seq.
func NewInteraction(seq *Sequence, in InteractionInput) (*Interaction, error) {
	if in.Content == nil {
		return nil, ErrMissingContent
	}
	userID, err := ParseUserID(in.UserID)
	if err != nil {
		return nil, err
	}
	ts, err := ParseTimestamp(in.Timestamp)
	if err != nil {
		return nil, err
	}
	if in.Platform == nil {
		return nil, ErrMissingPlatform
	}
	typ, err := ParseInteractionType(in.Type)
	if err != nil {
		return nil, err
	}
	duration, err := ParseWatchDuration(in.WatchDuration)
	if err != nil {
		return nil, err
	}

	return &Interaction{
		id:            seq.Next(),
		content:       in.Content,
		userID:        userID,
		timestamp:     ts,
		platform:      in.Platform,
		typ:           typ,
		watchDuration: duration,
		commentText:   strings.TrimSpace(in.CommentText),
	}, nil
}

func (i *Interaction) ID() int64             { return i.id }
func (i *Interaction) Content() *Content     { return i.content }
func (i *Interaction) UserID() int           { return i.userID }
func (i *Interaction) Timestamp() time.Time  { return i.timestamp }
func (i *Interaction) Platform() *Platform   { return i.platform }
func (i *Interaction) Type() InteractionType { return i.typ }
func (i *Interaction) WatchDuration() int    { return i.watchDuration }
func (i *Interaction) CommentText() string   { return i.commentText }

func (i *Interaction) String() string {
	return fmt.Sprintf("interaction %d (%s)", i.id, i.typ)
}

// ParseUserID parses a non-negative integer user id.
func ParseUserID(raw string) (int, error) {
	id, err := parseID(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidUserID, raw)
	}
	return id, nil
}

// MaxWatchDuration is the largest watch duration accepted, in seconds.
const MaxWatchDuration = math.MaxInt32

// ParseWatchDuration coerces raw into whole seconds. Blank means 0; any
// numeric text up to MaxWatchDuration is accepted and truncated toward zero.
func ParseWatchDuration(raw string) (int, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return 0, nil
	}
	f, err := strconv.ParseFloat(trimmed, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%w: %q is not a number", ErrInvalidDuration, raw)
	}
	if f < 0 {
		return 0, fmt.Errorf("%w: %q is negative", ErrInvalidDuration, raw)
	}
	if f > MaxWatchDuration {
		return 0, fmt.Errorf("%w: %q exceeds %d seconds", ErrInvalidDuration, raw, MaxWatchDuration)
	}
	return int(f), nil
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04Z07:00",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02",
}

// ParseTimestamp parses an ISO-8601 date or date-time. Values without a zone
// offset are read as UTC.
func ParseTimestamp(raw string) (time.Time, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed != "" {
		for _, layout := range timestampLayouts {
			if ts, err := time.Parse(layout, trimmed); err == nil {
				return ts, nil
			}
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidTimestamp, raw)
}

func parseID(raw string) (int, error) {
	id, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, err
	}
	if id < 0 {
		return 0, fmt.Errorf("negative id %d", id)
	}
	return id, nil
}
