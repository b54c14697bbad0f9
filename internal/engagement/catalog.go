// Package engagement holds the domain model of the engagement analysis:
// platforms, contents, users and the interactions linking them, plus the
// catalog that keeps one entry per identity.
package engagement

import (
	"fmt"
	"strconv"
)

// Catalog keeps platforms, contents and users keyed by identity, in
// registration order. Entries are never removed.
type Catalog struct {
	platforms      map[string]*Platform
	platformOrder  []*Platform
	nextPlatformID int

	contents     map[int]*Content
	contentOrder []*Content

	users     map[int]*User
	userOrder []*User

	interactions int
}

// NewCatalog returns an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{
		platforms:      make(map[string]*Platform),
		nextPlatformID: 1,
		contents:       make(map[int]*Content),
		users:          make(map[int]*User),
	}
}

// ResolvePlatform returns the registered platform for name, or a new
// unregistered one.
func (c *Catalog) ResolvePlatform(name string) (*Platform, error) {
	if p, ok := c.platforms[PlatformKey(name)]; ok {
		return p, nil
	}
	return NewPlatform(name)
}

// RegisterPlatform registers p unless a platform with the same key already
// exists, and returns the registered one. A newly registered platform gets the
// next platform id.
func (c *Catalog) RegisterPlatform(p *Platform) *Platform {
	if existing, ok := c.platforms[p.Key()]; ok {
		return existing
	}
	p.id = c.nextPlatformID
	c.nextPlatformID++
	c.platforms[p.Key()] = p
	c.platformOrder = append(c.platformOrder, p)
	return p
}

// GetOrCreatePlatform returns the platform for name, registering it on first
// use. Names differing only in case or surrounding spaces are the same
// platform.
func (c *Catalog) GetOrCreatePlatform(name string) (*Platform, error) {
	p, err := c.ResolvePlatform(name)
	if err != nil {
		return nil, err
	}
	return c.RegisterPlatform(p), nil
}

// ResolveContent returns the registered content for idText, or a new
// unregistered one built by NewContentFor. name is only used for a new content.
func (c *Catalog) ResolveContent(idText, name string) (*Content, error) {
	id, err := parseID(idText)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidContentID, idText)
	}
	if existing, ok := c.contents[id]; ok {
		return existing, nil
	}
	return NewContentFor(strconv.Itoa(id), name)
}

// RegisterContent registers content unless its id is taken, and returns the
// registered one.
func (c *Catalog) RegisterContent(content *Content) *Content {
	if existing, ok := c.contents[content.id]; ok {
		return existing
	}
	c.contents[content.id] = content
	c.contentOrder = append(c.contentOrder, content)
	return content
}

// GetOrCreateContent returns the content for idText, creating it from name on
// first use.
func (c *Catalog) GetOrCreateContent(idText, name string) (*Content, error) {
	content, err := c.ResolveContent(idText, name)
	if err != nil {
		return nil, err
	}
	return c.RegisterContent(content), nil
}

// ResolveUser returns the registered user for idText, or a new unregistered
// one.
func (c *Catalog) ResolveUser(idText string) (*User, error) {
	id, err := ParseUserID(idText)
	if err != nil {
		return nil, err
	}
	if existing, ok := c.users[id]; ok {
		return existing, nil
	}
	return NewUser(id)
}

// RegisterUser registers u unless its id is taken, and returns the registered
// one.
func (c *Catalog) RegisterUser(u *User) *User {
	if existing, ok := c.users[u.id]; ok {
		return existing
	}
	c.users[u.id] = u
	c.userOrder = append(c.userOrder, u)
	return u
}

// GetOrCreateUser returns the user for idText, creating it on first use.
func (c *Catalog) GetOrCreateUser(idText string) (*User, error) {
	u, err := c.ResolveUser(idText)
	if err != nil {
		return nil, err
	}
	return c.RegisterUser(u), nil
}

// Record registers the interaction's platform, content and user if needed
// and links the interaction into the content and the user, exactly once each.
// user must carry the interaction's user id.
func (c *Catalog) Record(in *Interaction, user *User) error {
	if user == nil || user.id != in.userID {
		return fmt.Errorf("%w: interaction %d belongs to user %d", ErrInvalidUserID, in.id, in.userID)
	}
	platform := c.RegisterPlatform(in.platform)
	content := c.RegisterContent(in.content)
	user = c.RegisterUser(user)
	if platform != in.platform || content != in.content {
		return fmt.Errorf("interaction %d references an entry shadowed by the catalog", in.id)
	}
	content.addInteraction(in)
	user.addInteraction(in)
	c.interactions++
	return nil
}

// Platforms returns the platforms in registration order.
func (c *Catalog) Platforms() []*Platform {
	return append([]*Platform(nil), c.platformOrder...)
}

// Contents returns the contents in registration order.
func (c *Catalog) Contents() []*Content {
	return append([]*Content(nil), c.contentOrder...)
}

// ContentsOfKind returns the contents of one variant in registration order.
func (c *Catalog) ContentsOfKind(kind Kind) []*Content {
	out := make([]*Content, 0)
	for _, content := range c.contentOrder {
		if content.kind == kind {
			out = append(out, content)
		}
	}
	return out
}

// Users returns the users in registration order.
func (c *Catalog) Users() []*User {
	return append([]*User(nil), c.userOrder...)
}

// Platform looks up a registered platform by name.
func (c *Catalog) Platform(name string) (*Platform, bool) {
	p, ok := c.platforms[PlatformKey(name)]
	return p, ok
}

// Content looks up a registered content by id.
func (c *Catalog) Content(id int) (*Content, bool) {
	content, ok := c.contents[id]
	return content, ok
}

// User looks up a registered user by id.
func (c *Catalog) User(id int) (*User, bool) {
	u, ok := c.users[id]
	return u, ok
}

// InteractionCount is the number of interactions recorded so far.
func (c *Catalog) InteractionCount() int {
	return c.interactions
}
