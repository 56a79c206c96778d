package gateway

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/motowave/motowave/internal/pkg/logger"
	"github.com/motowave/motowave/internal/pkg/models"
)

const watchBufferSize = 32

type watch struct {
	fixes  chan models.Fix
	done   <-chan struct{}
	closed bool
}

// PushProvider is an in-process location source fed over HTTP. Devices
// push fixes; the active watch for an owner receives them. Starting a
// new watch replaces the previous one instead of stacking deliveries.
type PushProvider struct {
	mu      sync.Mutex
	watches map[uuid.UUID]*watch
}

// NewPushProvider creates a push-based location provider
func NewPushProvider() *PushProvider {
	return &PushProvider{
		watches: make(map[uuid.UUID]*watch),
	}
}

// Watch registers the owner's fix channel. The channel closes when ctx
// is cancelled; fixes pushed after that are dropped.
func (p *PushProvider) Watch(ctx context.Context, ownerID uuid.UUID) (<-chan models.Fix, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if prev, ok := p.watches[ownerID]; ok && !prev.closed {
		prev.closed = true
		close(prev.fixes)
	}

	w := &watch{
		fixes: make(chan models.Fix, watchBufferSize),
		done:  ctx.Done(),
	}
	p.watches[ownerID] = w

	go func() {
		<-ctx.Done()
		p.mu.Lock()
		defer p.mu.Unlock()
		if !w.closed {
			w.closed = true
			close(w.fixes)
		}
	}()

	return w.fixes, nil
}

// Push delivers a fix to the owner's active watch. It reports whether
// the fix was accepted; fixes without a watch, after cancellation, or
// against a full buffer are dropped.
func (p *PushProvider) Push(ownerID uuid.UUID, fix models.Fix) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	w, ok := p.watches[ownerID]
	if !ok || w.closed {
		return false
	}

	// A cancelled watch rejects pushes immediately, without waiting for
	// the closer goroutine to run.
	select {
	case <-w.done:
		w.closed = true
		close(w.fixes)
		return false
	default:
	}

	select {
	case w.fixes <- fix:
		return true
	default:
		logger.Warn("Fix buffer full, dropping fix",
			logger.String("owner_id", ownerID.String()))
		return false
	}
}
