package guard

import (
	"sync"

	domainauth "github.com/target/storyweb/internal/domain/auth"
)

// ViewerFunc reads the role flags for one evaluation pass.
type ViewerFunc func() domainauth.Viewer

// Boundary wraps one guarded subtree. It re-evaluates its policy only when the
// tracked (loading, authenticated) pair changes; role flags are read fresh on
// every pass but never trigger a pass on their own.
type Boundary struct {
	policy Policy
	viewer ViewerFunc

	mu        sync.Mutex
	evaluated bool
	last      domainauth.Status
	decision  Decision
}

// NewBoundary creates a boundary for p that reads role flags through viewer.
func NewBoundary(p Policy, viewer ViewerFunc) *Boundary {
	if viewer == nil {
		viewer = func() domainauth.Viewer { return domainauth.Viewer{} }
	}
	return &Boundary{policy: p, viewer: viewer}
}

// Observe feeds a probe status into the boundary. It returns the current
// decision and whether a new evaluation pass ran. A redirect is only actionable
// when changed is true, so each pass navigates at most once.
func (b *Boundary) Observe(status domainauth.Status) (Decision, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.evaluated && b.last == status {
		return b.decision, false
	}
	b.evaluated = true
	b.last = status

	var v domainauth.Viewer
	if !status.Loading {
		v = b.viewer()
	}
	b.decision = Decide(b.policy, status, v)
	return b.decision, true
}

// Decision returns the most recent decision without evaluating.
func (b *Boundary) Decision() Decision {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.evaluated {
		return Decision{Outcome: OutcomeWait}
	}
	return b.decision
}
