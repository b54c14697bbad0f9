package engagement

import (
	"fmt"
	"slices"
)

// User is a viewer identified by the id found in the interaction log.
type User struct {
	id           int
	interactions []*Interaction
}

// NewUser builds a user for a non-negative id.
func NewUser(id int) (*User, error) {
	if id < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidUserID, id)
	}
	return &User{id: id}, nil
}

func (u *User) ID() int { return u.id }

func (u *User) String() string { return fmt.Sprintf("user %d", u.id) }

func (u *User) addInteraction(in *Interaction) {
	u.interactions = append(u.interactions, in)
}

// Interactions returns the user's interactions in recorded order.
func (u *User) Interactions() []*Interaction {
	out := make([]*Interaction, len(u.interactions))
	copy(out, u.interactions)
	return out
}

// InteractionCount is the number of interactions the user performed.
func (u *User) InteractionCount() int {
	return len(u.interactions)
}

// InteractionsOfType returns the interactions whose type is exactly t.
func (u *User) InteractionsOfType(t InteractionType) []*Interaction {
	out := make([]*Interaction, 0)
	for _, in := range u.interactions {
		if in.typ == t {
			out = append(out, in)
		}
	}
	return out
}

// EngagementInteractions counts the user's likes, shares and comments.
func (u *User) EngagementInteractions() int {
	n := 0
	for _, in := range u.interactions {
		if in.typ.IsEngagement() {
			n++
		}
	}
	return n
}

// UniqueContentConsumed returns each content the user touched once, in order
// of first touch. Membership is by identity.
func (u *User) UniqueContentConsumed() []*Content {
	seen := make(map[*Content]struct{})
	out := make([]*Content, 0)
	for _, in := range u.interactions {
		if _, ok := seen[in.content]; ok {
			continue
		}
		seen[in.content] = struct{}{}
		out = append(out, in.content)
	}
	return out
}

// TotalConsumptionTime sums the user's positive watch durations across
// platforms.
func (u *User) TotalConsumptionTime() int {
	total := 0
	for _, in := range u.interactions {
		if in.watchDuration > 0 {
			total += in.watchDuration
		}
	}
	return total
}

// TotalConsumptionTimeOn sums watch durations of interactions on a platform
// equal to p.
func (u *User) TotalConsumptionTimeOn(p *Platform) int {
	total := 0
	for _, in := range u.interactions {
		if in.platform.Equal(p) {
			total += in.watchDuration
		}
	}
	return total
}

// PlatformCount pairs a platform with a number of interactions.
type PlatformCount struct {
	Platform *Platform
	Count    int
}

// PlatformUsage counts interactions per platform, ordered by first occurrence.
func (u *User) PlatformUsage() []PlatformCount {
	out := make([]PlatformCount, 0)
	pos := make(map[string]int)
	for _, in := range u.interactions {
		key := in.platform.Key()
		i, seen := pos[key]
		if !seen {
			pos[key] = len(out)
			out = append(out, PlatformCount{Platform: in.platform, Count: 1})
			continue
		}
		out[i].Count++
	}
	return out
}

// MostFrequentPlatforms returns up to topN platforms by descending interaction
// count; ties keep the order of first occurrence. topN <= 0 returns all.
func (u *User) MostFrequentPlatforms(topN int) []*Platform {
	usage := u.PlatformUsage()
	slices.SortStableFunc(usage, func(a, b PlatformCount) int {
		return b.Count - a.Count
	})
	if topN > 0 && len(usage) > topN {
		usage = usage[:topN]
	}
	out := make([]*Platform, len(usage))
	for i, pc := range usage {
		out[i] = pc.Platform
	}
	return out
}
