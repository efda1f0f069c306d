package service

import (
	"context"
	"fmt"

	"github.com/rizkyhp/medremind/internal/queue"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const minNotifierConcurrency = 1

// EventNotifier consumes log-created events and dispatches an immediate
// notification, shortcutting the scan loop's delay. It complements the scan
// loop; it never replaces it.
type EventNotifier struct {
	consumer    queue.Consumer
	dispatcher  *ReminderDispatcher
	logger      *zap.Logger
	concurrency int
}

func NewEventNotifier(
	consumer queue.Consumer,
	dispatcher *ReminderDispatcher,
	concurrency int,
	logger *zap.Logger,
) (*EventNotifier, error) {
	if consumer == nil {
		return nil, fmt.Errorf("consumer is required")
	}
	if dispatcher == nil {
		return nil, fmt.Errorf("dispatcher is required")
	}
	if concurrency < minNotifierConcurrency {
		concurrency = minNotifierConcurrency
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &EventNotifier{
		consumer:    consumer,
		dispatcher:  dispatcher,
		logger:      logger,
		concurrency: concurrency,
	}, nil
}

// Start consumes the log-created queue until context cancellation.
func (n *EventNotifier) Start(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	g, groupCtx := errgroup.WithContext(ctx)
	for i := 0; i < n.concurrency; i++ {
		workerID := i + 1

		g.Go(func() error {
			n.logger.Info("event notifier worker started",
				zap.Int("workerId", workerID),
				zap.String("queue", queue.LogCreatedQueue),
			)

			err := n.consumer.Consume(groupCtx, queue.LogCreatedQueue, n.dispatcher.HandleLogCreated)
			if err != nil {
				n.logger.Error("event notifier worker stopped with error",
					zap.Int("workerId", workerID),
					zap.Error(err),
				)
				return err
			}

			n.logger.Info("event notifier worker stopped",
				zap.Int("workerId", workerID),
			)
			return nil
		})
	}

	return g.Wait()
}
