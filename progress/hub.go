// Package progress is the HTTP+WebSocket push server (component N):
// it fans out types.JudgeResult snapshots to connected consumers and
// exposes Prometheus counters/histograms for judge throughput and the
// diagnostics trigger rate, grounded on cmd/go-judge/main.go's
// gin+ginzap+ginprometheus wiring and cmd/go-judge/ws_executor/stream.go's
// ping-ticker send loop.
package progress

import (
	"sync"

	"github.com/hotwords123/judge-v3/types"
)

// hub fans out JudgeResult snapshots to subscribers of one submission ID
// and remembers the latest snapshot for late subscribers and REST polling.
type hub struct {
	mu          sync.RWMutex
	latest      map[string]*types.JudgeResult
	subscribers map[string]map[chan *types.JudgeResult]struct{}
}

func newHub() *hub {
	return &hub{
		latest:      make(map[string]*types.JudgeResult),
		subscribers: make(map[string]map[chan *types.JudgeResult]struct{}),
	}
}

// publish records result as the latest snapshot for id and fans it out to
// every currently-subscribed channel, dropping the send for any subscriber
// whose channel is full rather than blocking the caller.
func (h *hub) publish(id string, result *types.JudgeResult) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.latest[id] = result
	for ch := range h.subscribers[id] {
		select {
		case ch <- result:
		default:
		}
	}
}

// subscribe returns a channel that receives every subsequent publish for
// id, plus the latest known snapshot if one exists, and a cancel func the
// caller must run when done listening.
func (h *hub) subscribe(id string) (ch chan *types.JudgeResult, last *types.JudgeResult, cancel func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	ch = make(chan *types.JudgeResult, 8)
	if h.subscribers[id] == nil {
		h.subscribers[id] = make(map[chan *types.JudgeResult]struct{})
	}
	h.subscribers[id][ch] = struct{}{}
	last = h.latest[id]

	cancel = func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		delete(h.subscribers[id], ch)
		if len(h.subscribers[id]) == 0 {
			delete(h.subscribers, id)
		}
		close(ch)
	}
	return ch, last, cancel
}

// snapshot returns the latest known JudgeResult for id, if any.
func (h *hub) snapshot(id string) (*types.JudgeResult, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	r, ok := h.latest[id]
	return r, ok
}

// forget drops the retained snapshot for id (called once the run has
// finished, so the hub doesn't grow unbounded).
func (h *hub) forget(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.latest, id)
}
