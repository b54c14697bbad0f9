package engagement

import "errors"

// Validation errors raised while building catalog entries and interactions.
var (
	ErrInvalidPlatformName    = errors.New("invalid platform name")
	ErrInvalidContentID       = errors.New("invalid content id")
	ErrEmptyContentName       = errors.New("empty content name")
	ErrInvalidUserID          = errors.New("invalid user id")
	ErrInvalidTimestamp       = errors.New("invalid timestamp")
	ErrMissingPlatform        = errors.New("missing platform")
	ErrMissingContent         = errors.New("missing content")
	ErrInvalidInteractionType = errors.New("invalid interaction type")
	ErrInvalidDuration        = errors.New("invalid watch duration")
)

var kinds = []struct {
	err  error
	name string
}{
	{ErrInvalidPlatformName, "invalid_platform_name"},
	{ErrInvalidContentID, "invalid_content_id"},
	{ErrEmptyContentName, "empty_content_name"},
	{ErrInvalidUserID, "invalid_user_id"},
	{ErrInvalidTimestamp, "invalid_timestamp"},
	{ErrMissingPlatform, "missing_platform"},
	{ErrMissingContent, "missing_content"},
	{ErrInvalidInteractionType, "invalid_interaction_type"},
	{ErrInvalidDuration, "invalid_duration"},
}

// KindOf returns the snake_case kind label of a validation error, or "unknown".
func KindOf(err error) string {
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.name
		}
	}
	return "unknown"
}
