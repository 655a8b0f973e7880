package event

import (
	"context"
	"time"

	"github.com/support-ticket/request-service/internal/model"
)

// Lifecycle event names published after successful mutations.
const (
	RequestCreated   = "request.created"
	RequestTaken     = "request.taken"
	RequestCompleted = "request.completed"
	RequestCancelled = "request.cancelled"
)

// Producer publishes request lifecycle events. Implementations are
// best-effort: failures are logged and never surfaced to API clients.
type Producer interface {
	Emit(ctx context.Context, event string, req *model.Request)
}

// Fanout delivers each event to every configured producer.
type Fanout struct {
	producers []Producer
}

func NewFanout(producers ...Producer) *Fanout {
	return &Fanout{producers: producers}
}

func (f *Fanout) Emit(ctx context.Context, event string, req *model.Request) {
	for _, p := range f.producers {
		p.Emit(ctx, event, req)
	}
}

// EmitAsync publishes in a separate goroutine so the HTTP response is not
// delayed. The event must go out even if the request context is already
// cancelled, hence the detached context with a timeout.
func (f *Fanout) EmitAsync(event string, req *model.Request) {
	if len(f.producers) == 0 {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		f.Emit(ctx, event, req)
	}()
}
