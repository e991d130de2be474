// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package conversation

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/unconditional-app/unconditional-tui/internal/api"
	"github.com/unconditional-app/unconditional-tui/internal/storage"
)

// =============================================================================
// FAKES
// =============================================================================

// fakeTransport scripts transport results and records calls.
type fakeTransport struct {
	openingResp *api.Response
	openingErr  error

	submitResp *api.Response
	submitErr  error

	openingCalls int
	submitCalls  int
	lastContent  string
	lastHistory  []api.Message
}

func (f *fakeTransport) FetchOpening(ctx context.Context) (*api.Response, error) {
	f.openingCalls++
	if f.openingErr != nil {
		return nil, f.openingErr
	}
	return f.openingResp, nil
}

func (f *fakeTransport) SubmitTurn(ctx context.Context, content string, history []api.Message) (*api.Response, error) {
	f.submitCalls++
	f.lastContent = content
	f.lastHistory = history
	if f.submitErr != nil {
		return nil, f.submitErr
	}
	return f.submitResp, nil
}

// fakeStore keeps the snapshot in memory and can be scripted to fail.
type fakeStore struct {
	snap    *storage.Snapshot
	saveErr error

	saveCalls  int
	clearCalls int
}

func (f *fakeStore) Load() (*storage.Snapshot, bool) {
	if f.snap == nil {
		return nil, false
	}
	return f.snap, true
}

func (f *fakeStore) Save(snap *storage.Snapshot) error {
	f.saveCalls++
	if f.saveErr != nil {
		return f.saveErr
	}
	f.snap = snap
	return nil
}

func (f *fakeStore) Clear() error {
	f.clearCalls++
	f.snap = nil
	return nil
}

func opening() *api.Response {
	return &api.Response{Type: api.TypeNormal, Content: "Hi, I'm here.", Timestamp: "2025-06-01T10:00:00Z"}
}

// activeController returns an initialized controller seeded with the
// opening turn.
func activeController(t *testing.T) (*Controller, *fakeTransport, *fakeStore) {
	t.Helper()
	transport := &fakeTransport{openingResp: opening()}
	store := &fakeStore{}
	ctrl := NewController(transport, store)
	if err := ctrl.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	return ctrl, transport, store
}

// =============================================================================
// INITIALIZE
// =============================================================================

func TestInitialize_FreshSession(t *testing.T) {
	ctrl, transport, store := activeController(t)

	if got := ctrl.State(); got != StateActive {
		t.Errorf("state = %v, want active", got)
	}
	turns := ctrl.Transcript()
	if len(turns) != 1 {
		t.Fatalf("transcript length = %d, want 1", len(turns))
	}
	if turns[0].Role != RoleAssistant || turns[0].Content != "Hi, I'm here." {
		t.Errorf("opening turn = %+v", turns[0])
	}
	want := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	if !turns[0].Timestamp.Equal(want) {
		t.Errorf("opening timestamp = %v, want server timestamp %v", turns[0].Timestamp, want)
	}
	if transport.openingCalls != 1 {
		t.Errorf("opening calls = %d, want 1", transport.openingCalls)
	}
	if store.saveCalls != 1 {
		t.Errorf("save calls = %d, want 1 (write-through after seed)", store.saveCalls)
	}
}

func TestInitialize_RestoreActiveSnapshot(t *testing.T) {
	t0 := time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)
	transport := &fakeTransport{openingResp: opening()}
	store := &fakeStore{snap: &storage.Snapshot{
		Messages: []storage.StoredTurn{
			{Role: "assistant", Content: "Welcome back.", Timestamp: t0},
			{Role: "user", Content: "hello", Timestamp: t0.Add(time.Minute)},
		},
	}}
	ctrl := NewController(transport, store)

	if err := ctrl.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	if transport.openingCalls != 0 {
		t.Error("restore path should not fetch the opening message")
	}
	if got := ctrl.State(); got != StateActive {
		t.Errorf("state = %v, want active", got)
	}
	turns := ctrl.Transcript()
	if len(turns) != 2 || turns[0].Content != "Welcome back." || turns[1].Content != "hello" {
		t.Errorf("transcript not restored in order: %+v", turns)
	}
	if !turns[0].Timestamp.Equal(t0) {
		t.Errorf("restored timestamp = %v, want %v", turns[0].Timestamp, t0)
	}
}

func TestInitialize_RestoreLockedSnapshotWithPayload(t *testing.T) {
	transport := &fakeTransport{openingResp: opening()}
	store := &fakeStore{snap: &storage.Snapshot{
		Messages:      []storage.StoredTurn{{Role: "user", Content: "help", Timestamp: time.Now()}},
		SessionLocked: true,
		CrisisMessage: "You matter, and support is available.",
		CrisisResources: []api.CrisisResource{
			{Name: "Lifeline", Phone: "988", Available: "24/7"},
			{Name: "Crisis Text Line", Phone: "Text HOME to 741741", Available: "24/7"},
		},
	}}
	ctrl := NewController(transport, store)

	if err := ctrl.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	if !ctrl.Locked() {
		t.Fatal("locked snapshot should restore into the locked state")
	}
	if ctrl.CrisisMessage() != "You matter, and support is available." {
		t.Errorf("crisis message = %q", ctrl.CrisisMessage())
	}
	res := ctrl.CrisisResources()
	if len(res) != 2 || res[0].Phone != "988" {
		t.Errorf("crisis resources not restored in server order: %+v", res)
	}
}

func TestInitialize_RestoreLockedSnapshotWithoutPayload(t *testing.T) {
	// Snapshots written before the crisis payload was persisted carry only
	// the lock flag. They restore into Locked with a generic notice.
	transport := &fakeTransport{openingResp: opening()}
	store := &fakeStore{snap: &storage.Snapshot{
		Messages:      []storage.StoredTurn{{Role: "user", Content: "help", Timestamp: time.Now()}},
		SessionLocked: true,
	}}
	ctrl := NewController(transport, store)

	if err := ctrl.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	if !ctrl.Locked() {
		t.Fatal("lock flag alone should still lock the restored session")
	}
	if ctrl.CrisisMessage() == "" {
		t.Error("locked restore should fall back to a non-empty notice")
	}
	if len(ctrl.CrisisResources()) != 0 {
		t.Errorf("resources should be empty, got %+v", ctrl.CrisisResources())
	}
}

func TestInitialize_FetchFailure(t *testing.T) {
	// No snapshot and no reachable service still yields a usable session:
	// empty transcript, state active, error returned for the status line.
	transport := &fakeTransport{openingErr: api.ErrUnreachable}
	store := &fakeStore{}
	ctrl := NewController(transport, store)

	err := ctrl.Initialize(context.Background())
	if err == nil {
		t.Fatal("Initialize should surface the fetch error as a diagnostic")
	}
	if got := ctrl.State(); got != StateActive {
		t.Errorf("state = %v, want active despite the fetch failure", got)
	}
	if turns := ctrl.Transcript(); len(turns) != 0 {
		t.Errorf("transcript should be empty, got %+v", turns)
	}
}

func TestInitialize_Twice(t *testing.T) {
	ctrl, _, _ := activeController(t)
	if err := ctrl.Initialize(context.Background()); !errors.Is(err, ErrAlreadyInitialized) {
		t.Errorf("second Initialize = %v, want ErrAlreadyInitialized", err)
	}
}

// =============================================================================
// SUBMISSION
// =============================================================================

func TestBeginSubmit_OptimisticAppend(t *testing.T) {
	ctrl, transport, _ := activeController(t)

	turn, err := ctrl.BeginSubmit("  I feel anxious  ")
	if err != nil {
		t.Fatalf("BeginSubmit failed: %v", err)
	}
	// The user turn is visible synchronously, before any network call.
	if transport.submitCalls != 0 {
		t.Error("BeginSubmit must not touch the transport")
	}
	if turn.Role != RoleUser || turn.Content != "I feel anxious" {
		t.Errorf("turn = %+v, want trimmed user turn", turn)
	}
	turns := ctrl.Transcript()
	if len(turns) != 2 || turns[1].Content != "I feel anxious" {
		t.Errorf("transcript = %+v, want opening + user turn", turns)
	}
	if got := ctrl.State(); got != StateAwaitingResponse {
		t.Errorf("state = %v, want awaiting_response", got)
	}
}

func TestBeginSubmit_Guards(t *testing.T) {
	ctrl, _, _ := activeController(t)

	if _, err := ctrl.BeginSubmit("   "); !errors.Is(err, ErrEmptyInput) {
		t.Errorf("blank submit = %v, want ErrEmptyInput", err)
	}

	if _, err := ctrl.BeginSubmit("first"); err != nil {
		t.Fatalf("first submit failed: %v", err)
	}
	// Second submission while one is in flight is rejected, not queued.
	if _, err := ctrl.BeginSubmit("second"); !errors.Is(err, ErrBusy) {
		t.Errorf("in-flight submit = %v, want ErrBusy", err)
	}
	if got := len(ctrl.Transcript()); got != 2 {
		t.Errorf("rejected submit must not mutate the transcript, length = %d", got)
	}
}

func TestSubmit_NormalResponse(t *testing.T) {
	ctrl, _, store := activeController(t)

	if _, err := ctrl.BeginSubmit("I feel anxious"); err != nil {
		t.Fatalf("BeginSubmit failed: %v", err)
	}
	resp := &api.Response{Type: api.TypeNormal, Content: "Tell me more.", Timestamp: "2025-06-01T10:01:00Z"}
	if err := ctrl.FinishSubmit(resp, nil); err != nil {
		t.Fatalf("FinishSubmit failed: %v", err)
	}

	turns := ctrl.Transcript()
	if len(turns) != 3 {
		t.Fatalf("transcript length = %d, want 3", len(turns))
	}
	if turns[1].Role != RoleUser || turns[2].Role != RoleAssistant || turns[2].Content != "Tell me more." {
		t.Errorf("transcript tail = %+v", turns[1:])
	}
	if got := ctrl.State(); got != StateActive {
		t.Errorf("state = %v, want active", got)
	}
	// Write-through after every settled mutation: seed, begin, finish.
	if store.saveCalls != 3 {
		t.Errorf("save calls = %d, want 3", store.saveCalls)
	}
}

func TestSubmit_CrisisResponse(t *testing.T) {
	ctrl, _, store := activeController(t)

	if _, err := ctrl.BeginSubmit("I want to hurt myself"); err != nil {
		t.Fatalf("BeginSubmit failed: %v", err)
	}
	lenBefore := len(ctrl.Transcript())

	resp := &api.Response{
		Type:    api.TypeCrisis,
		Content: "I hear that you're in a difficult place right now.",
		Resources: []api.CrisisResource{
			{Name: "Lifeline", Phone: "988", Available: "24/7"},
			{Name: "Crisis Text Line", Phone: "Text HOME to 741741", Available: "24/7"},
		},
		SessionLocked: true,
	}
	if err := ctrl.FinishSubmit(resp, nil); err != nil {
		t.Fatalf("FinishSubmit failed: %v", err)
	}

	if !ctrl.Locked() {
		t.Fatal("crisis response must lock the session")
	}
	// The crisis content is payload for the crisis screen, never a turn.
	turns := ctrl.Transcript()
	if len(turns) != lenBefore {
		t.Errorf("transcript length = %d, want %d (no turn for a crisis exchange)", len(turns), lenBefore)
	}
	for _, turn := range turns {
		if turn.Content == resp.Content {
			t.Error("crisis content leaked into the transcript")
		}
	}
	res := ctrl.CrisisResources()
	if len(res) != 2 || res[0].Name != "Lifeline" || res[1].Name != "Crisis Text Line" {
		t.Errorf("resources not kept in server order: %+v", res)
	}
	if store.snap == nil || !store.snap.SessionLocked {
		t.Error("locked state must be persisted")
	}
	if store.snap.CrisisMessage != resp.Content || len(store.snap.CrisisResources) != 2 {
		t.Error("crisis payload must be persisted with the lock flag")
	}

	// Locked is terminal under arbitrary further intents.
	if _, err := ctrl.BeginSubmit("hello?"); !errors.Is(err, ErrLocked) {
		t.Errorf("submit while locked = %v, want ErrLocked", err)
	}
	if got := ctrl.State(); got != StateLocked {
		t.Errorf("state = %v, want locked", got)
	}
}

func TestSubmit_TransportError(t *testing.T) {
	ctrl, _, _ := activeController(t)

	if _, err := ctrl.BeginSubmit("hello"); err != nil {
		t.Fatalf("BeginSubmit failed: %v", err)
	}
	rawErr := &api.ClientError{Kind: api.KindUnreachable, Message: "dial tcp 127.0.0.1:8000: connect: connection refused"}
	if err := ctrl.FinishSubmit(nil, rawErr); err != nil {
		t.Fatalf("FinishSubmit failed: %v", err)
	}

	turns := ctrl.Transcript()
	last := turns[len(turns)-1]
	if last.Role != RoleAssistant || last.Content != ApologyText {
		t.Errorf("last turn = %+v, want the fixed apology", last)
	}
	// The raw detail is diagnostic-only.
	for _, turn := range turns {
		if strings.Contains(turn.Content, "connection refused") {
			t.Error("raw error text leaked into the transcript")
		}
	}
	if got := ctrl.State(); got != StateActive {
		t.Errorf("state = %v, want active (user may retry immediately)", got)
	}

	// The user turn stays; retrying appends a second distinct turn.
	if _, err := ctrl.BeginSubmit("hello"); err != nil {
		t.Fatalf("retry failed: %v", err)
	}
	turns = ctrl.Transcript()
	if turns[1].Content != "hello" || turns[3].Content != "hello" {
		t.Errorf("duplicate content should produce two distinct turns: %+v", turns)
	}
	if turns[1].ID == turns[3].ID {
		t.Error("turn IDs must be unique")
	}
}

func TestSubmit_RejectedContent(t *testing.T) {
	// A 400 rejection is handled like any other transport failure: a fixed
	// apology, never the moderation detail.
	ctrl, _, _ := activeController(t)

	if _, err := ctrl.BeginSubmit("something rejected"); err != nil {
		t.Fatalf("BeginSubmit failed: %v", err)
	}
	rawErr := &api.ClientError{Kind: api.KindRejected, Message: "content policy violation"}
	if err := ctrl.FinishSubmit(nil, rawErr); err != nil {
		t.Fatalf("FinishSubmit failed: %v", err)
	}

	turns := ctrl.Transcript()
	last := turns[len(turns)-1]
	if last.Content != ApologyText {
		t.Errorf("last turn content = %q, want the fixed apology", last.Content)
	}
	for _, turn := range turns {
		if strings.Contains(turn.Content, "policy violation") {
			t.Error("rejection detail leaked into the transcript")
		}
	}
}

func TestFinishSubmit_NoResponseNoError(t *testing.T) {
	// A transport that settles with neither a response nor an error must
	// not fault; it resolves like any other transport failure.
	ctrl, _, _ := activeController(t)

	if _, err := ctrl.BeginSubmit("hello"); err != nil {
		t.Fatalf("BeginSubmit failed: %v", err)
	}
	if err := ctrl.FinishSubmit(nil, nil); err != nil {
		t.Fatalf("FinishSubmit failed: %v", err)
	}

	turns := ctrl.Transcript()
	last := turns[len(turns)-1]
	if last.Role != RoleAssistant || last.Content != ApologyText {
		t.Errorf("last turn = %+v, want the fixed apology", last)
	}
	if got := ctrl.State(); got != StateActive {
		t.Errorf("state = %v, want active", got)
	}
}

func TestFinishSubmit_WithoutBegin(t *testing.T) {
	ctrl, _, _ := activeController(t)
	resp := &api.Response{Type: api.TypeNormal, Content: "stray"}
	if err := ctrl.FinishSubmit(resp, nil); !errors.Is(err, ErrNotAwaiting) {
		t.Errorf("FinishSubmit without BeginSubmit = %v, want ErrNotAwaiting", err)
	}
}

// =============================================================================
// HISTORY
// =============================================================================

func TestHistory_IncludesOptimisticTurn(t *testing.T) {
	ctrl, _, _ := activeController(t)

	if _, err := ctrl.BeginSubmit("I feel anxious"); err != nil {
		t.Fatalf("BeginSubmit failed: %v", err)
	}

	history := ctrl.History()
	if len(history) != 2 {
		t.Fatalf("history length = %d, want 2", len(history))
	}
	// Full transcript including the just-added user turn, role/content only.
	if history[0].Role != "assistant" || history[1].Role != "user" || history[1].Content != "I feel anxious" {
		t.Errorf("history = %+v", history)
	}
}

// =============================================================================
// PERSISTENCE BEHAVIOR
// =============================================================================

func TestSaveFailureDoesNotRevertState(t *testing.T) {
	transport := &fakeTransport{openingResp: opening()}
	store := &fakeStore{saveErr: errors.New("disk full")}
	ctrl := NewController(transport, store)

	if err := ctrl.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	if _, err := ctrl.BeginSubmit("hello"); err != nil {
		t.Fatalf("BeginSubmit should succeed despite save failures: %v", err)
	}
	if got := ctrl.State(); got != StateAwaitingResponse {
		t.Errorf("state = %v, want awaiting_response", got)
	}
	if got := len(ctrl.Transcript()); got != 2 {
		t.Errorf("transcript length = %d, want 2", got)
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	ctrl, _, _ := activeController(t)
	if _, err := ctrl.BeginSubmit("I feel anxious"); err != nil {
		t.Fatalf("BeginSubmit failed: %v", err)
	}
	if err := ctrl.FinishSubmit(&api.Response{Type: api.TypeNormal, Content: "Tell me more."}, nil); err != nil {
		t.Fatalf("FinishSubmit failed: %v", err)
	}

	snap := ctrl.Snapshot()

	restored := NewController(&fakeTransport{}, &fakeStore{snap: snap})
	if err := restored.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize from snapshot failed: %v", err)
	}

	a, b := ctrl.Transcript(), restored.Transcript()
	if len(a) != len(b) {
		t.Fatalf("transcript lengths differ: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i].Role != b[i].Role || a[i].Content != b[i].Content || !a[i].Timestamp.Equal(b[i].Timestamp) {
			t.Errorf("turn %d differs: %+v vs %+v", i, a[i], b[i])
		}
	}
	if restored.Locked() != ctrl.Locked() {
		t.Error("lock flag did not round-trip")
	}
}

// =============================================================================
// CLEAR
// =============================================================================

func TestClear_UnlocksAndReseeds(t *testing.T) {
	ctrl, transport, store := activeController(t)

	if _, err := ctrl.BeginSubmit("I want to hurt myself"); err != nil {
		t.Fatalf("BeginSubmit failed: %v", err)
	}
	crisis := &api.Response{Type: api.TypeCrisis, Content: "support is available", SessionLocked: true,
		Resources: []api.CrisisResource{{Name: "Lifeline", Phone: "988", Available: "24/7"}}}
	if err := ctrl.FinishSubmit(crisis, nil); err != nil {
		t.Fatalf("FinishSubmit failed: %v", err)
	}
	if !ctrl.Locked() {
		t.Fatal("session should be locked")
	}

	if err := ctrl.Clear(context.Background()); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if store.clearCalls != 1 {
		t.Errorf("clear calls = %d, want 1", store.clearCalls)
	}
	if got := ctrl.State(); got != StateActive {
		t.Errorf("state after Clear = %v, want active", got)
	}
	if ctrl.CrisisMessage() != "" || len(ctrl.CrisisResources()) != 0 {
		t.Error("crisis payload should be gone after Clear")
	}
	turns := ctrl.Transcript()
	if len(turns) != 1 || turns[0].Role != RoleAssistant {
		t.Errorf("transcript after Clear = %+v, want exactly the fresh opening turn", turns)
	}
	if transport.openingCalls != 2 {
		t.Errorf("opening calls after Clear = %d, want 2 (initial seed plus fresh opening)", transport.openingCalls)
	}

	// A locked session is usable again only through this path.
	if _, err := ctrl.BeginSubmit("starting over"); err != nil {
		t.Errorf("submit after Clear failed: %v", err)
	}
}

func TestClear_Idempotent(t *testing.T) {
	ctrl, transport, _ := activeController(t)

	if err := ctrl.Clear(context.Background()); err != nil {
		t.Fatalf("first Clear failed: %v", err)
	}
	if err := ctrl.Clear(context.Background()); err != nil {
		t.Fatalf("second Clear failed: %v", err)
	}
	if got := ctrl.State(); got != StateActive {
		t.Errorf("state = %v, want active", got)
	}
	if turns := ctrl.Transcript(); len(turns) != 1 {
		t.Errorf("transcript length = %d, want exactly one opening turn", len(turns))
	}
	// Initialize + two clears, one opening fetch each.
	if transport.openingCalls != 3 {
		t.Errorf("opening calls = %d, want 3", transport.openingCalls)
	}
}
