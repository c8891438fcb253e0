package engine

import (
	"fmt"
	"sync"
	"time"
)

// Decision is the outcome of a human review for one suspended step.
type Decision struct {
	Approved  bool
	Feedback  string
	DecidedAt time.Time
}

// PendingApproval identifies one step suspended at the approval gate.
type PendingApproval struct {
	ClientID    string
	StepID      string
	RequestedAt time.Time
	ExpiresAt   time.Time
}

type pendingEntry struct {
	PendingApproval

	decision chan Decision
}

// Gate tracks steps suspended for human approval and routes decisions back to
// the waiting workflow goroutines. Each pending entry accepts exactly one
// decision; later submissions fail with ErrNotAwaitingApproval.
type Gate struct {
	mu      sync.Mutex
	pending map[string]*pendingEntry
}

func NewGate() *Gate {
	return &Gate{pending: make(map[string]*pendingEntry)}
}

func approvalKey(clientID, stepID string) string {
	return clientID + "/" + stepID
}

// Request registers a pending approval and returns the channel the decision
// will arrive on. The workflow goroutine is the only reader. Requesting a
// step that is already pending is idempotent: the window is refreshed and
// the original decision channel is returned.
func (g *Gate) Request(clientID, stepID string, now time.Time, timeout time.Duration) <-chan Decision {
	g.mu.Lock()
	defer g.mu.Unlock()

	key := approvalKey(clientID, stepID)
	if entry, exists := g.pending[key]; exists {
		entry.RequestedAt = now
		entry.ExpiresAt = now.Add(timeout)

		return entry.decision
	}

	entry := &pendingEntry{
		PendingApproval: PendingApproval{
			ClientID:    clientID,
			StepID:      stepID,
			RequestedAt: now,
			ExpiresAt:   now.Add(timeout),
		},
		decision: make(chan Decision, 1),
	}
	g.pending[key] = entry

	return entry.decision
}

// Decide resolves a pending approval. The entry is removed before the
// decision is delivered, so a second call for the same step fails.
func (g *Gate) Decide(clientID, stepID string, approved bool, feedback string, now time.Time) error {
	g.mu.Lock()
	entry, ok := g.pending[approvalKey(clientID, stepID)]
	if ok {
		delete(g.pending, approvalKey(clientID, stepID))
	}
	g.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: %s/%s", ErrNotAwaitingApproval, clientID, stepID)
	}

	entry.decision <- Decision{Approved: approved, Feedback: feedback, DecidedAt: now}

	return nil
}

// Withdraw removes a pending approval without delivering a decision. The
// workflow goroutine calls it when its context is cancelled mid-wait.
func (g *Gate) Withdraw(clientID, stepID string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	delete(g.pending, approvalKey(clientID, stepID))
}

// Pending reports whether the given step is currently awaiting a decision.
func (g *Gate) Pending(clientID, stepID string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	_, ok := g.pending[approvalKey(clientID, stepID)]

	return ok
}

// Expired returns the approvals whose window has closed as of now.
func (g *Gate) Expired(now time.Time) []PendingApproval {
	g.mu.Lock()
	defer g.mu.Unlock()

	var expired []PendingApproval

	for _, entry := range g.pending {
		if now.After(entry.ExpiresAt) {
			expired = append(expired, entry.PendingApproval)
		}
	}

	return expired
}
