package pumproom

import "sync"

// session holds the mutable per-client state behind one mutex. All access
// goes through the named accessors; nothing outside this file touches the
// fields directly.
type session struct {
	mu sync.RWMutex

	user *User

	// ready latches when the first successful Authenticate or SetUser
	// installs a user. It is one-way: nothing resets it, and the router only
	// answers getPumpRoomUser requests after it is set.
	ready bool

	// scrollY is the last recorded scroll position of the hosting surface,
	// restored when a frame leaves fullscreen mode.
	scrollY int

	// instances tracks frames that announced themselves via getEnvironment,
	// keyed by instance UID.
	instances map[string]InstanceContext
}

func newSession() *session {
	return &session{instances: make(map[string]InstanceContext)}
}

// setUser replaces the current user and latches readiness. A nil user is
// ignored: a failed attempt never clears an established identity.
func (s *session) setUser(user *User) {
	if user == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *user
	s.user = &copied
	s.ready = true
}

// currentUser returns a copy of the current user, or nil.
func (s *session) currentUser() *User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	copied := *s.user
	return &copied
}

func (s *session) isReady() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ready
}

// recordScroll stores the current scroll position of the hosting surface.
func (s *session) recordScroll(y int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scrollY = y
}

// savedScroll returns the last recorded scroll position.
func (s *session) savedScroll() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.scrollY
}

// registerInstance remembers an announced frame. Instances without a UID are
// not tracked.
func (s *session) registerInstance(instance InstanceContext) {
	if instance.InstanceUID == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.instances[instance.InstanceUID] = instance
}

// instanceList returns a snapshot of all announced frames.
func (s *session) instanceList() []InstanceContext {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]InstanceContext, 0, len(s.instances))
	for _, instance := range s.instances {
		out = append(out, instance)
	}
	return out
}
