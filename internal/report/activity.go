package report

import (
	"slices"
	"time"

	"github.com/gauthierbraillon/engagemix/internal/engagement"
)

// ActivityOptions filters the interaction feed. Zero values disable a filter;
// a nil UserID matches every user. Since is inclusive and Until exclusive.
type ActivityOptions struct {
	Limit     int
	Since     time.Time
	Until     time.Time
	Platforms []string
	Types     []engagement.InteractionType
	UserID    *int
}

// Activity returns recorded interactions newest first, merged across every
// platform. Interactions sharing a timestamp are ordered by descending id, so
// the later log row comes first. The result is never nil.
func (r *Reporter) Activity(opts ActivityOptions) []*engagement.Interaction {
	platforms := make(map[string]bool, len(opts.Platforms))
	for _, name := range opts.Platforms {
		platforms[engagement.PlatformKey(name)] = true
	}

	feed := make([]*engagement.Interaction, 0)
	for _, c := range r.catalog.Contents() {
		for _, in := range c.Interactions() {
			if opts.matches(in, platforms) {
				feed = append(feed, in)
			}
		}
	}

	slices.SortFunc(feed, func(a, b *engagement.Interaction) int {
		if c := b.Timestamp().Compare(a.Timestamp()); c != 0 {
			return c
		}
		switch {
		case a.ID() > b.ID():
			return -1
		case a.ID() < b.ID():
			return 1
		default:
			return 0
		}
	})

	if opts.Limit > 0 && len(feed) > opts.Limit {
		feed = feed[:opts.Limit]
	}
	return feed
}

func (o ActivityOptions) matches(in *engagement.Interaction, platforms map[string]bool) bool {
	ts := in.Timestamp()
	if !o.Since.IsZero() && ts.Before(o.Since) {
		return false
	}
	if !o.Until.IsZero() && !ts.Before(o.Until) {
		return false
	}
	if len(platforms) > 0 && !platforms[in.Platform().Key()] {
		return false
	}
	if len(o.Types) > 0 && !slices.Contains(o.Types, in.Type()) {
		return false
	}
	if o.UserID != nil && in.UserID() != *o.UserID {
		return false
	}
	return true
}
