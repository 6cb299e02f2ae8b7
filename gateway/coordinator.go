package gateway

import "sync"

// refreshState is either idleState or refreshingState. Transitions are pure
// functions; coordinator applies them under its mutex.
type refreshState interface {
	isRefreshState()
}

type idleState struct{}

// refreshingState holds the requests waiting on the refresh in flight, in
// arrival order. The first one started the refresh.
type refreshingState struct {
	pending []*waiter
}

func (idleState) isRefreshState()       {}
func (refreshingState) isRefreshState() {}

type outcome struct {
	cred string
	err  error
}

type waiter struct {
	done chan outcome
}

func newWaiter() *waiter {
	return &waiter{done: make(chan outcome, 1)}
}

// beginOrEnqueue adds w to the queue. leader is true when w found the gateway
// idle and must start the refresh.
func beginOrEnqueue(st refreshState, w *waiter) (next refreshState, leader bool) {
	if r, ok := st.(refreshingState); ok {
		pending := make([]*waiter, len(r.pending), len(r.pending)+1)
		copy(pending, r.pending)
		return refreshingState{pending: append(pending, w)}, false
	}
	return refreshingState{pending: []*waiter{w}}, true
}

// settle ends a refresh, handing back the queue and returning to idle.
func settle(st refreshState) (refreshState, []*waiter) {
	if r, ok := st.(refreshingState); ok {
		return idleState{}, r.pending
	}
	return idleState{}, nil
}

type coordinator struct {
	mu    sync.Mutex
	state refreshState
	gen   uint64  // refreshes settled so far
	last  outcome // what the latest settle delivered
}

func newCoordinator() *coordinator {
	return &coordinator{state: idleState{}}
}

// generation must be read before the credential a request is sent with.
func (c *coordinator) generation() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gen
}

// join queues w behind the refresh in flight, or makes it the leader of a new
// one. A request that sent cred during generation gen and arrives after a
// refresh settled gets that refresh's outcome on w.done when the refresh
// replaced cred or failed; only a request carrying the latest credential
// starts another refresh.
func (c *coordinator) join(w *waiter, gen uint64, cred string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, busy := c.state.(refreshingState); !busy && gen != c.gen && (c.last.err != nil || c.last.cred != cred) {
		w.done <- c.last
		return false
	}

	var leader bool
	c.state, leader = beginOrEnqueue(c.state, w)
	return leader
}

// release settles the refresh and delivers out to every waiter in FIFO order.
func (c *coordinator) release(out outcome) int {
	c.mu.Lock()
	var pending []*waiter
	c.state, pending = settle(c.state)
	c.gen++
	c.last = out
	c.mu.Unlock()

	for _, w := range pending {
		w.done <- out
	}
	return len(pending)
}

func (c *coordinator) refreshing() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, ok := c.state.(refreshingState)
	return ok
}
