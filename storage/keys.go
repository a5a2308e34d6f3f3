package storage

import "strings"

// Separator is the delimiter used in key construction.
const Separator = ":"

// Storage key prefixes. UserKey is a fixed key; states and course data are
// scoped per page and, for states, per user.
const (
	// UserKey holds the serialized cached user.
	UserKey = "pumproomUser"
	// StatePrefix namespaces per-state keys.
	StatePrefix = "pumproom_state"
	// CoursePrefix namespaces per-page course data keys.
	CoursePrefix = "pumproom_course"
)

// KeyBuilder generates storage keys scoped to one hosting page.
type KeyBuilder struct {
	pageURL string
}

// NewKeyBuilder creates a KeyBuilder for the given normalized page URL.
func NewKeyBuilder(pageURL string) *KeyBuilder {
	return &KeyBuilder{pageURL: strings.TrimSpace(pageURL)}
}

// UserKey returns the key holding the cached user. It is page-independent:
// one cached user per store.
func (kb *KeyBuilder) UserKey() string {
	return UserKey
}

// StateKey returns the key for one named state of one user on this page.
// Format: pumproom_state:{pageURL}:{name}:{uid}
func (kb *KeyBuilder) StateKey(name, uid string) string {
	return strings.Join([]string{StatePrefix, kb.pageURL, name, uid}, Separator)
}

// CourseKey returns the key holding cached course data for this page.
// Format: pumproom_course:{pageURL}
func (kb *KeyBuilder) CourseKey() string {
	return strings.Join([]string{CoursePrefix, kb.pageURL}, Separator)
}

// PageURL returns the page URL the builder is scoped to.
func (kb *KeyBuilder) PageURL() string {
	return kb.pageURL
}
