package engagement

import (
	"fmt"
	"strings"
)

// Platform is where an interaction happened (Netflix, YouTube, ...).
// Two platforms are the same platform when their keys match.
type Platform struct {
	id   int
	name string
}

// NewPlatform builds an unregistered platform. Its id stays 0 until the
// catalog registers it.
func NewPlatform(name string) (*Platform, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidPlatformName, name)
	}
	return &Platform{name: trimmed}, nil
}

// ID returns the catalog-assigned id, or 0 if the platform is not registered.
func (p *Platform) ID() int { return p.id }

// Name returns the trimmed display name as first seen.
func (p *Platform) Name() string { return p.name }

// Key returns the identity key: the lower-cased trimmed name.
func (p *Platform) Key() string { return PlatformKey(p.name) }

// Equal reports whether both platforms share the same key.
func (p *Platform) Equal(other *Platform) bool {
	if p == nil || other == nil {
		return p == other
	}
	return p.Key() == other.Key()
}

func (p *Platform) String() string { return p.name }

// PlatformKey normalizes a raw platform name into its identity key.
func PlatformKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
