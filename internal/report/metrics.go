package report

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/gauthierbraillon/engagemix/internal/engagement"
)

// ErrUnknownMetric is returned for a metric name that is not in the catalog of
// metrics. No partial result accompanies it.
var ErrUnknownMetric = errors.New("unknown metric")

// ContentMetric scores a content.
type ContentMetric struct {
	Name        string
	Description string
	Value       func(*engagement.Content) float64
}

// UserMetric scores a user.
type UserMetric struct {
	Name        string
	Description string
	Value       func(*engagement.User) float64
}

// Content metric names.
const (
	MetricTotalInteractions      = "total_interactions"
	MetricInteractionCount       = "interaction_count"
	MetricViewCount              = "view_count"
	MetricTotalConsumptionTime   = "total_consumption_time"
	MetricAverageConsumptionTime = "average_consumption_time"
	MetricAveragePercentWatched  = "average_percent_watched"
	MetricCommentCount           = "comment_count"
)

// User metric names. total_interactions and total_consumption_time are shared
// with contents.
const (
	MetricEngagementInteractions = "engagement_interactions"
	MetricUniqueContent          = "unique_content"
)

var contentMetrics = map[string]ContentMetric{
	MetricTotalInteractions: {
		Name:        MetricTotalInteractions,
		Description: "likes, shares and comments",
		Value:       func(c *engagement.Content) float64 { return float64(c.TotalEngagementInteractions()) },
	},
	MetricInteractionCount: {
		Name:        MetricInteractionCount,
		Description: "interactions of any type",
		Value:       func(c *engagement.Content) float64 { return float64(c.InteractionCount()) },
	},
	MetricViewCount: {
		Name:        MetricViewCount,
		Description: "view_start interactions",
		Value:       func(c *engagement.Content) float64 { return float64(c.ViewCount()) },
	},
	MetricTotalConsumptionTime: {
		Name:        MetricTotalConsumptionTime,
		Description: "sum of watch durations in seconds",
		Value:       func(c *engagement.Content) float64 { return float64(c.TotalConsumptionTime()) },
	},
	MetricAverageConsumptionTime: {
		Name:        MetricAverageConsumptionTime,
		Description: "mean positive watch duration in seconds",
		Value:       func(c *engagement.Content) float64 { return c.AverageConsumptionTime() },
	},
	MetricAveragePercentWatched: {
		Name:        MetricAveragePercentWatched,
		Description: "mean share of a video watched per user, in percent",
		Value:       func(c *engagement.Content) float64 { return c.AveragePercentWatched() },
	},
	MetricCommentCount: {
		Name:        MetricCommentCount,
		Description: "comment interactions",
		Value:       func(c *engagement.Content) float64 { return float64(len(c.Comments())) },
	},
}

// contentAliases maps the metric names of the original spreadsheet reports.
var contentAliases = map[string]string{
	"tempo_total_consumo": MetricTotalConsumptionTime,
	"media_tempo_consumo": MetricAverageConsumptionTime,
	"visualizacoes":       MetricViewCount,
}

var userMetrics = map[string]UserMetric{
	MetricTotalInteractions: {
		Name:        MetricTotalInteractions,
		Description: "interactions of any type",
		Value:       func(u *engagement.User) float64 { return float64(u.InteractionCount()) },
	},
	MetricEngagementInteractions: {
		Name:        MetricEngagementInteractions,
		Description: "likes, shares and comments",
		Value:       func(u *engagement.User) float64 { return float64(u.EngagementInteractions()) },
	},
	MetricUniqueContent: {
		Name:        MetricUniqueContent,
		Description: "distinct contents touched",
		Value:       func(u *engagement.User) float64 { return float64(len(u.UniqueContentConsumed())) },
	},
	MetricTotalConsumptionTime: {
		Name:        MetricTotalConsumptionTime,
		Description: "sum of watch durations in seconds",
		Value:       func(u *engagement.User) float64 { return float64(u.TotalConsumptionTime()) },
	},
}

// LookupContentMetric resolves a content metric by name or alias.
func LookupContentMetric(name string) (ContentMetric, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if alias, ok := contentAliases[key]; ok {
		key = alias
	}
	m, ok := contentMetrics[key]
	if !ok {
		return ContentMetric{}, fmt.Errorf("%w %q for contents (available: %s)", ErrUnknownMetric, name, strings.Join(ContentMetricNames(), ", "))
	}
	return m, nil
}

// LookupUserMetric resolves a user metric by name.
func LookupUserMetric(name string) (UserMetric, error) {
	m, ok := userMetrics[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return UserMetric{}, fmt.Errorf("%w %q for users (available: %s)", ErrUnknownMetric, name, strings.Join(UserMetricNames(), ", "))
	}
	return m, nil
}

// ContentMetricNames lists the content metric names, sorted.
func ContentMetricNames() []string {
	names := make([]string, 0, len(contentMetrics))
	for name := range contentMetrics {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// UserMetricNames lists the user metric names, sorted.
func UserMetricNames() []string {
	names := make([]string, 0, len(userMetrics))
	for name := range userMetrics {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
