package code

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/gsarma/judgepad/internal/hostmsg"
)

// Executor runs a request end to end: dispatch, poll, normalize. Every
// terminal result is announced with postExecution, whatever its status.
type Executor struct {
	dispatcher *Dispatcher
	poller     *Poller
	notifier   hostmsg.Notifier
	logger     *zap.Logger
	now        func() time.Time
}

var _ Provider = (*Executor)(nil)

func NewExecutor(dispatcher *Dispatcher, poller *Poller, notifier hostmsg.Notifier, logger *zap.Logger) *Executor {
	if notifier == nil {
		notifier = hostmsg.Discard
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Executor{
		dispatcher: dispatcher,
		poller:     poller,
		notifier:   notifier,
		logger:     logger,
		now:        time.Now,
	}
}

func (e *Executor) Execute(ctx context.Context, req Request) (*Result, error) {
	ticket, err := e.dispatcher.Dispatch(ctx, req)
	if err != nil {
		return nil, err
	}
	resp, err := e.poller.Run(ctx, ticket)
	if err != nil {
		return nil, err
	}

	res := Normalize(*resp, ticket.StartedAt, e.now())
	e.logger.Info("submission result",
		zap.String("token", res.Token),
		zap.String("status", res.Status.Description),
		zap.String("kind", string(res.Status.Kind())),
		zap.Duration("turnaround", res.Turnaround))
	e.notifier.Notify(ctx, res.PostExecution())
	return &res, nil
}
