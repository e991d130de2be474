// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package conversation

import (
	"context"
	"errors"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/unconditional-app/unconditional-tui/internal/api"
	"github.com/unconditional-app/unconditional-tui/internal/storage"
)

// ApologyText is the fixed assistant line shown when a submission fails in
// transit. The raw error detail goes to the log, never to the transcript.
const ApologyText = "I'm having trouble connecting right now. Please try again in a moment."

// lockedNotice stands in for the crisis message when a locked session is
// restored from a snapshot written before the crisis payload was persisted.
const lockedNotice = "This session has been paused so you can reach out for support."

// =============================================================================
// STATE TYPE
// =============================================================================

// State is the session lifecycle state.
type State int

const (
	// StateUninitialized is the state before Initialize has run.
	StateUninitialized State = iota

	// StateActive accepts user submissions.
	StateActive

	// StateAwaitingResponse means a submission is in flight. Further
	// submissions are rejected until FinishSubmit settles it.
	StateAwaitingResponse

	// StateLocked is terminal. Only a confirmed Clear leaves it.
	StateLocked
)

// String returns the state name for diagnostics.
func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateActive:
		return "active"
	case StateAwaitingResponse:
		return "awaiting_response"
	case StateLocked:
		return "locked"
	default:
		return "unknown"
	}
}

// =============================================================================
// DEPENDENCIES
// =============================================================================

// Transport is the conversation service boundary the controller talks
// through. *api.Client satisfies it; tests substitute fakes.
type Transport interface {
	FetchOpening(ctx context.Context) (*api.Response, error)
	SubmitTurn(ctx context.Context, content string, history []api.Message) (*api.Response, error)
}

// Store is the persistence boundary. *storage.SnapshotStore satisfies it.
type Store interface {
	Load() (*storage.Snapshot, bool)
	Save(snap *storage.Snapshot) error
	Clear() error
}

// Controller operation errors.
var (
	ErrAlreadyInitialized = errors.New("session already initialized")
	ErrBusy               = errors.New("a submission is already in flight")
	ErrLocked             = errors.New("session is locked")
	ErrNotActive          = errors.New("session is not active")
	ErrNotAwaiting        = errors.New("no submission in flight")
	ErrEmptyInput         = errors.New("input is empty")
)

// =============================================================================
// CONTROLLER
// =============================================================================

// Controller owns the transcript and the session state machine. All methods
// are safe for concurrent use.
type Controller struct {
	mu sync.Mutex

	state State
	turns []Turn

	// Crisis payload, set once on lock and cleared only by Clear.
	crisisMessage   string
	crisisResources []api.CrisisResource

	transport Transport
	store     Store

	// now is swapped out by tests for deterministic timestamps.
	now func() time.Time
}

// NewController creates an uninitialized controller.
func NewController(transport Transport, store Store) *Controller {
	return &Controller{
		state:     StateUninitialized,
		transport: transport,
		store:     store,
		now:       time.Now,
	}
}

// =============================================================================
// LIFECYCLE
// =============================================================================

// Initialize brings the session up: a stored snapshot is restored as-is
// (including a locked session), otherwise the opening message is fetched.
// A fetch failure still yields a usable Active session with an empty
// transcript; the returned error is a diagnostic for the status line, not
// transcript content.
func (c *Controller) Initialize(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateUninitialized {
		return ErrAlreadyInitialized
	}
	return c.initializeLocked(ctx)
}

// initializeLocked is the restore-or-fetch body. Caller holds c.mu.
func (c *Controller) initializeLocked(ctx context.Context) error {
	if snap, ok := c.store.Load(); ok {
		c.restoreLocked(snap)
		return nil
	}

	opening, err := c.transport.FetchOpening(ctx)
	if err != nil {
		log.Printf("SESSION: opening fetch failed: %v", err)
		c.state = StateActive
		return err
	}

	c.turns = append(c.turns, NewTurnAt(RoleAssistant, opening.Content, c.parseTimestamp(opening.Timestamp)))
	c.state = StateActive
	c.persistLocked()
	return nil
}

// restoreLocked rebuilds in-memory state from a snapshot. Caller holds c.mu.
func (c *Controller) restoreLocked(snap *storage.Snapshot) {
	c.turns = make([]Turn, 0, len(snap.Messages))
	for _, m := range snap.Messages {
		c.turns = append(c.turns, Turn{
			ID:        generateTurnID(),
			Role:      Role(m.Role),
			Content:   m.Content,
			Timestamp: m.Timestamp,
		})
	}

	if snap.SessionLocked {
		c.state = StateLocked
		c.crisisMessage = snap.CrisisMessage
		if c.crisisMessage == "" {
			c.crisisMessage = lockedNotice
		}
		c.crisisResources = append([]api.CrisisResource(nil), snap.CrisisResources...)
		return
	}
	c.state = StateActive
}

// Clear purges the stored session and starts fresh. Callers must have
// confirmed the action with the user first; this is the only way out of a
// locked session. The returned error only reflects the re-initialization
// fetch, which fails soft the same way Initialize does.
func (c *Controller) Clear(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.store.Clear(); err != nil {
		log.Printf("SESSION: failed to clear snapshot: %v", err)
	}

	c.turns = nil
	c.crisisMessage = ""
	c.crisisResources = nil
	c.state = StateUninitialized

	return c.initializeLocked(ctx)
}

// =============================================================================
// SUBMISSION
// =============================================================================

// BeginSubmit validates and records a user turn, moving the session to
// AwaitingResponse. The guard, the trim, and the optimistic append happen
// in one step under the lock so at most one submission is ever in flight.
// The caller then performs the network call and settles with FinishSubmit.
func (c *Controller) BeginSubmit(content string) (Turn, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.state {
	case StateAwaitingResponse:
		return Turn{}, ErrBusy
	case StateLocked:
		return Turn{}, ErrLocked
	case StateActive:
		// proceed
	default:
		return Turn{}, ErrNotActive
	}

	content = strings.TrimSpace(content)
	if content == "" {
		return Turn{}, ErrEmptyInput
	}

	turn := NewTurnAt(RoleUser, content, c.now())
	c.turns = append(c.turns, turn)
	c.state = StateAwaitingResponse
	c.persistLocked()
	return turn, nil
}

// FinishSubmit settles the in-flight submission. Exactly one of resp and
// submitErr is meaningful:
//   - a transport error appends the fixed apology turn and returns to
//     Active (the user turn stays in the transcript);
//   - a normal response appends the assistant turn and returns to Active;
//   - a crisis response locks the session with the crisis payload and
//     appends nothing. Crisis content never enters the transcript.
func (c *Controller) FinishSubmit(resp *api.Response, submitErr error) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateAwaitingResponse {
		return ErrNotAwaiting
	}

	// A nil response with a nil error means the transport misbehaved;
	// settle it like any other transport failure rather than fault.
	if submitErr != nil || resp == nil {
		log.Printf("SESSION: submission failed: %v", submitErr)
		c.turns = append(c.turns, NewTurnAt(RoleAssistant, ApologyText, c.now()))
		c.state = StateActive
		c.persistLocked()
		return nil
	}

	if resp.IsCrisis() {
		c.crisisMessage = resp.Content
		c.crisisResources = append([]api.CrisisResource(nil), resp.Resources...)
		c.state = StateLocked
		c.persistLocked()
		return nil
	}

	c.turns = append(c.turns, NewTurnAt(RoleAssistant, resp.Content, c.parseTimestamp(resp.Timestamp)))
	c.state = StateActive
	c.persistLocked()
	return nil
}

// =============================================================================
// ACCESSORS
// =============================================================================

// State returns the current lifecycle state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Busy reports whether a submission is in flight.
func (c *Controller) Busy() bool {
	return c.State() == StateAwaitingResponse
}

// Locked reports whether the session is locked.
func (c *Controller) Locked() bool {
	return c.State() == StateLocked
}

// Transcript returns a copy of the transcript in append order.
func (c *Controller) Transcript() []Turn {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Turn(nil), c.turns...)
}

// History returns the transcript as wire-format history. Timestamps and
// turn IDs are local bookkeeping and deliberately not included.
func (c *Controller) History() []api.Message {
	c.mu.Lock()
	defer c.mu.Unlock()

	history := make([]api.Message, 0, len(c.turns))
	for _, t := range c.turns {
		history = append(history, api.Message{Role: t.Role.String(), Content: t.Content})
	}
	return history
}

// CrisisMessage returns the supportive message for the crisis screen, or
// "" if the session is not locked.
func (c *Controller) CrisisMessage() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.crisisMessage
}

// CrisisResources returns the support resources in the order the server
// sent them.
func (c *Controller) CrisisResources() []api.CrisisResource {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]api.CrisisResource(nil), c.crisisResources...)
}

// Snapshot builds the persisted form of the current session.
func (c *Controller) Snapshot() *storage.Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// =============================================================================
// HELPERS
// =============================================================================

// snapshotLocked builds a snapshot from current state. Caller holds c.mu.
func (c *Controller) snapshotLocked() *storage.Snapshot {
	snap := &storage.Snapshot{
		Messages:      make([]storage.StoredTurn, 0, len(c.turns)),
		SessionLocked: c.state == StateLocked,
	}
	for _, t := range c.turns {
		snap.Messages = append(snap.Messages, storage.StoredTurn{
			Role:      t.Role.String(),
			Content:   t.Content,
			Timestamp: t.Timestamp,
		})
	}
	if snap.SessionLocked {
		snap.CrisisMessage = c.crisisMessage
		snap.CrisisResources = append([]api.CrisisResource(nil), c.crisisResources...)
	}
	return snap
}

// persistLocked writes through to the store. Save failures are logged and
// otherwise ignored; the in-memory session is the source of truth. Caller
// holds c.mu.
func (c *Controller) persistLocked() {
	if err := c.store.Save(c.snapshotLocked()); err != nil {
		log.Printf("SESSION: failed to persist snapshot: %v", err)
	}
}

// parseTimestamp converts a server timestamp, falling back to local time
// when it is absent or malformed.
func (c *Controller) parseTimestamp(s string) time.Time {
	if s == "" {
		return c.now()
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t
	}
	return c.now()
}
