package rowstore

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/miccroten/mtadmin/internal/bus"
	"go.uber.org/zap"
)

// NotifyChannel is the Postgres NOTIFY channel raised by the messages
// table's trigger on every insert, update or delete.
const NotifyChannel = "messages_changed"

// ChangeFeed holds a dedicated connection on LISTEN and republishes every
// notification as a bus event. It carries no payload worth parsing: any
// change means "refetch everything".
type ChangeFeed struct {
	pool   *pgxpool.Pool
	bus    *bus.Bus
	logger *zap.Logger
	cancel context.CancelFunc
}

// NewChangeFeed creates a change feed over the store's pool.
func NewChangeFeed(pool *pgxpool.Pool, b *bus.Bus, logger *zap.Logger) *ChangeFeed {
	return &ChangeFeed{
		pool:   pool,
		bus:    b,
		logger: logger,
	}
}

// Start begins listening in the background until Stop or ctx cancellation.
func (f *ChangeFeed) Start(ctx context.Context) {
	ctx, f.cancel = context.WithCancel(ctx)
	go f.run(ctx)
}

// Stop tears the listening connection down.
func (f *ChangeFeed) Stop() {
	if f.cancel != nil {
		f.cancel()
	}
}

func (f *ChangeFeed) run(ctx context.Context) {
	conn, err := f.pool.Acquire(ctx)
	if err != nil {
		f.logger.Error("change feed: acquire connection", zap.Error(err))
		return
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, "LISTEN "+NotifyChannel); err != nil {
		f.logger.Error("change feed: LISTEN failed", zap.Error(err))
		return
	}
	f.logger.Info("change feed listening", zap.String("channel", NotifyChannel))

	for {
		n, err := conn.Conn().WaitForNotification(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			// No retry policy around the backend; the user can restart the
			// console or rely on manual refresh.
			f.logger.Error("change feed: wait for notification", zap.Error(err))
			return
		}
		f.bus.Publish(bus.Event{
			Kind:    bus.KindMessagesChanged,
			Payload: n.Payload,
		})
	}
}
