package highlight

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// PassState is the lifecycle stage of a restoration pass.
type PassState string

const (
	PassPending   PassState = "pending"
	PassRunning   PassState = "running"
	PassCompleted PassState = "completed"
	PassCancelled PassState = "cancelled"
)

// Pass is one restoration run over a document. A pass is cancelled only
// between anchors, never in the middle of applying one.
type Pass struct {
	ID string

	mu     sync.Mutex
	state  PassState
	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

func newPass(parent context.Context) *Pass {
	ctx, cancel := context.WithCancel(parent)
	return &Pass{
		ID:     uuid.NewString(),
		state:  PassPending,
		ctx:    ctx,
		cancel: cancel,
		done:   make(chan struct{}),
	}
}

// State returns the current stage.
func (p *Pass) State() PassState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Cancel asks the pass to stop before its next anchor.
func (p *Pass) Cancel() {
	p.cancel()
}

// Done is closed once the pass has completed or been cancelled.
func (p *Pass) Done() <-chan struct{} {
	return p.done
}

func (p *Pass) cancelled() bool {
	return p.ctx.Err() != nil
}

func (p *Pass) setState(s PassState) {
	p.mu.Lock()
	p.state = s
	p.mu.Unlock()
}

func (p *Pass) finish(s PassState) {
	p.setState(s)
	p.cancel()
	close(p.done)
}
