package code

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/gsarma/judgepad/internal/backend"
	"github.com/gsarma/judgepad/internal/hostmsg"
)

// DefaultMaxAttempts caps the status requests made for one submission.
const DefaultMaxAttempts = 50

// BackoffFunc returns the delay before the poll that follows attempt.
type BackoffFunc func(attempt int) time.Duration

// ConstantBackoff waits d between every poll.
func ConstantBackoff(d time.Duration) BackoffFunc {
	return func(int) time.Duration { return d }
}

// Scheduler waits between polls. Tests replace it to run without timers.
type Scheduler interface {
	Wait(ctx context.Context, d time.Duration) error
}

// TimerScheduler waits on a real timer.
type TimerScheduler struct{}

func (TimerScheduler) Wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// PollerConfig tunes a Poller. Zero values take the defaults: 50 attempts,
// 100ms between polls, no initial delay, real timers.
type PollerConfig struct {
	MaxAttempts  int
	InitialDelay time.Duration
	Backoff      BackoffFunc
	Scheduler    Scheduler
}

// Poller queries submission status on the unauthenticated endpoint until a
// terminal status is seen or the attempt budget runs out.
type Poller struct {
	registry     *backend.Registry
	maxAttempts  int
	initialDelay time.Duration
	backoff      BackoffFunc
	scheduler    Scheduler
	notifier     hostmsg.Notifier
	logger       *zap.Logger
}

func NewPoller(registry *backend.Registry, cfg PollerConfig, notifier hostmsg.Notifier, logger *zap.Logger) *Poller {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = DefaultMaxAttempts
	}
	if cfg.Backoff == nil {
		cfg.Backoff = ConstantBackoff(100 * time.Millisecond)
	}
	if cfg.Scheduler == nil {
		cfg.Scheduler = TimerScheduler{}
	}
	if notifier == nil {
		notifier = hostmsg.Discard
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Poller{
		registry:     registry,
		maxAttempts:  cfg.MaxAttempts,
		initialDelay: cfg.InitialDelay,
		backoff:      cfg.Backoff,
		scheduler:    cfg.Scheduler,
		notifier:     notifier,
		logger:       logger,
	}
}

// StepResult is the outcome of one poll.
type StepResult struct {
	Attempt  int
	Terminal bool
	Status   Status
	// Response is set when Terminal.
	Response *StatusResponse
	// Delay is the wait before the next attempt when not Terminal.
	Delay time.Duration
}

// Step performs poll number attempt (1-based) for t. A non-terminal status
// on the last allowed attempt, or any attempt beyond it, yields the 504
// poll-budget error. Transport and HTTP failures are returned as
// *DispatchError and are not retried.
func (p *Poller) Step(ctx context.Context, t Ticket, attempt int) (StepResult, error) {
	if attempt > p.maxAttempts {
		return StepResult{Attempt: attempt}, pollBudgetExhausted()
	}

	u := fmt.Sprintf("%s/submissions/%s?base64_encoded=true",
		p.registry.Endpoints(t.Flavor).UnauthBase, url.PathEscape(t.Token))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return StepResult{Attempt: attempt}, fmt.Errorf("build request: %w", err)
	}
	if t.Region != "" {
		req.Header.Set(RegionHeader, t.Region)
	}

	resp, err := p.registry.UnauthClient().Do(req)
	if err != nil {
		return StepResult{Attempt: attempt}, &DispatchError{Body: err.Error(), Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return StepResult{Attempt: attempt}, &DispatchError{HTTPStatus: resp.StatusCode, Body: string(body)}
	}

	var sr StatusResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return StepResult{Attempt: attempt}, &DispatchError{HTTPStatus: resp.StatusCode, Body: "decode status response: " + err.Error(), Err: err}
	}
	if sr.Token == "" {
		sr.Token = t.Token
	}

	if sr.Status.Terminal() {
		return StepResult{Attempt: attempt, Terminal: true, Status: sr.Status, Response: &sr}, nil
	}
	if attempt >= p.maxAttempts {
		return StepResult{Attempt: attempt, Status: sr.Status}, pollBudgetExhausted()
	}
	return StepResult{Attempt: attempt, Status: sr.Status, Delay: p.backoff(attempt)}, nil
}

// Run drives Step until t reaches a terminal status. Non-terminal statuses
// are reported to the host as status events; failures as runError.
// Cancelling ctx stops the loop between polls.
func (p *Poller) Run(ctx context.Context, t Ticket) (*StatusResponse, error) {
	if err := p.scheduler.Wait(ctx, p.initialDelay); err != nil {
		return nil, err
	}
	for attempt := 1; ; attempt++ {
		res, err := p.Step(ctx, t, attempt)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			if de, ok := err.(*DispatchError); ok {
				p.logger.Warn("poll failed",
					zap.String("token", t.Token),
					zap.Int("attempt", attempt),
					zap.Int("http_status", de.HTTPStatus),
					zap.String("body", de.Body))
				p.notifier.Notify(ctx, hostmsg.RunError(de.HTTPStatus, de.StatusText(), de.Body))
			}
			return nil, err
		}
		if res.Terminal {
			p.logger.Debug("submission finished",
				zap.String("token", t.Token),
				zap.Int("attempts", attempt),
				zap.String("status", res.Status.Description))
			return res.Response, nil
		}
		p.notifier.Notify(ctx, hostmsg.StatusUpdate(res.Status.host()))
		if err := p.scheduler.Wait(ctx, res.Delay); err != nil {
			return nil, err
		}
	}
}
