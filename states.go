package pumproom

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
)

// FetchStates retrieves the named states for the current user. Names are
// registered on the client and the fetched values are mirrored into local
// storage for page-load access. Requires an authenticated user.
func (c *Client) FetchStates(ctx context.Context, names []string) (*GetStatesResponse, error) {
	if err := c.operational(); err != nil {
		return nil, err
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("%w: state names must be a non-empty list", ErrInvalidConfig)
	}
	c.registerStates(names)

	user := c.session.currentUser()
	if user == nil {
		return nil, ErrNotAuthenticated
	}

	resp, err := c.api.fetchStates(ctx, user, names)
	if err != nil {
		return nil, err
	}
	for _, state := range resp.States {
		c.mirrorState(ctx, user.UID, state.State)
	}
	return resp, nil
}

// StoreStates persists states for the current user and mirrors them locally.
// Requires an authenticated user.
func (c *Client) StoreStates(ctx context.Context, states []State) (*SetStatesResponse, error) {
	if err := c.operational(); err != nil {
		return nil, err
	}
	names := make([]string, 0, len(states))
	for _, state := range states {
		names = append(names, state.Name)
	}
	c.registerStates(names)

	user := c.session.currentUser()
	if user == nil {
		return nil, ErrNotAuthenticated
	}

	resp, err := c.api.storeStates(ctx, user, states)
	if err != nil {
		return nil, err
	}
	for _, state := range states {
		c.mirrorState(ctx, user.UID, state)
	}
	return resp, nil
}

// ClearStates sets the named states to null on the backend and removes the
// local mirrors.
func (c *Client) ClearStates(ctx context.Context, names []string) (*SetStatesResponse, error) {
	if err := c.operational(); err != nil {
		return nil, err
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("%w: state names must be a non-empty list", ErrInvalidConfig)
	}

	cleared := make([]State, 0, len(names))
	for _, name := range names {
		cleared = append(cleared, State{Name: name, Value: nil})
	}
	// Storing null values drops the local mirrors as well.
	return c.StoreStates(ctx, cleared)
}

// RegisteredStates returns the sorted set of state names this client has
// touched through FetchStates, StoreStates or ClearStates.
func (c *Client) RegisteredStates() []string {
	c.statesMu.RLock()
	defer c.statesMu.RUnlock()
	out := make([]string, 0, len(c.states))
	for name := range c.states {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func (c *Client) registerStates(names []string) {
	c.statesMu.Lock()
	defer c.statesMu.Unlock()
	for _, name := range names {
		if name != "" {
			c.states[name] = struct{}{}
		}
	}
}

// mirrorState writes one state into local storage. Mirror failures only log;
// the backend already holds the truth.
func (c *Client) mirrorState(ctx context.Context, uid string, state State) {
	key := c.keys.StateKey(state.Name, uid)
	if state.Value == nil {
		if err := c.config.Store.Delete(ctx, key); err != nil {
			c.logger.WithError(err).WithField("state", state.Name).Debug("Failed to drop state mirror")
		}
		return
	}
	data, err := json.Marshal(state.Value)
	if err != nil {
		c.logger.WithError(err).WithField("state", state.Name).Warn("Failed to serialize state mirror")
		return
	}
	if err := c.config.Store.Set(ctx, key, data); err != nil {
		c.logger.WithError(err).WithField("state", state.Name).Warn("Failed to write state mirror")
	}
}
