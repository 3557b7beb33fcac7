package api

import (
	"context"
	"log/slog"
	"sync"

	"github.com/Alia5/GLIDER/internal/gesture"
)

// ActionBroker fans resolved actions out to any number of attached stream
// clients. The engine emits on one in-process channel; the broker is the
// bridge between that channel and the `actions/stream` route.
type ActionBroker struct {
	mu     sync.Mutex
	subs   map[chan gesture.ResolvedAction]struct{}
	logger *slog.Logger
}

// NewActionBroker creates an idle broker; call Run to start forwarding.
func NewActionBroker(logger *slog.Logger) *ActionBroker {
	return &ActionBroker{
		subs:   make(map[chan gesture.ResolvedAction]struct{}),
		logger: logger,
	}
}

// Run forwards actions to all subscribers until ctx is done or the source
// channel closes. Slow subscribers miss actions instead of stalling the rest.
func (b *ActionBroker) Run(ctx context.Context, actions <-chan gesture.ResolvedAction) {
	for {
		select {
		case <-ctx.Done():
			return
		case a, ok := <-actions:
			if !ok {
				return
			}
			b.mu.Lock()
			for ch := range b.subs {
				select {
				case ch <- a:
				default:
					b.logger.Warn("action subscriber lagging, dropping action", "gesture", a.Gesture)
				}
			}
			b.mu.Unlock()
		}
	}
}

// Subscribe registers a new subscriber channel. The returned cancel func
// unregisters and closes it.
func (b *ActionBroker) Subscribe() (<-chan gesture.ResolvedAction, func()) {
	ch := make(chan gesture.ResolvedAction, 16)
	b.mu.Lock()
	b.subs[ch] = struct{}{}
	b.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, ch)
			b.mu.Unlock()
			close(ch)
		})
	}
	return ch, cancel
}
