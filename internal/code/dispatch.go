package code

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/gsarma/judgepad/internal/backend"
	"github.com/gsarma/judgepad/internal/codec"
	"github.com/gsarma/judgepad/internal/hostmsg"
	"github.com/gsarma/judgepad/internal/language"
)

// RegionHeader carries the region affinity of a submission.
const RegionHeader = "X-Judge0-Region"

// maxErrorBody bounds how much of a failed response is kept.
const maxErrorBody = 64 << 10

// Dispatcher sends submissions to the authenticated endpoint of a flavor.
type Dispatcher struct {
	registry *backend.Registry
	assets   AssetSource
	notifier hostmsg.Notifier
	logger   *zap.Logger
	now      func() time.Time
}

// NewDispatcher builds a Dispatcher. assets may be nil when the SQLite
// language is never used; notifier may be nil to drop host events.
func NewDispatcher(registry *backend.Registry, assets AssetSource, notifier hostmsg.Notifier, logger *zap.Logger) *Dispatcher {
	if notifier == nil {
		notifier = hostmsg.Discard
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{
		registry: registry,
		assets:   assets,
		notifier: notifier,
		logger:   logger,
		now:      time.Now,
	}
}

// Dispatch validates req, packs it and submits it without waiting for the
// result. The host is notified with preExecution right before the POST, and
// with runError if the POST fails.
func (d *Dispatcher) Dispatch(ctx context.Context, req Request) (Ticket, error) {
	if err := req.Validate(); err != nil {
		return Ticket{}, err
	}
	if req.Flavor == "" {
		req.Flavor = language.CE
	}
	ep := d.registry.Endpoints(req.Flavor)

	sourceCode := codec.Encode(req.SourceCode)
	if req.LanguageID == language.RawSourceLanguageID {
		sourceCode = req.SourceCode
	}
	reqBody := map[string]interface{}{
		"source_code":               sourceCode,
		"language_id":               req.LanguageID,
		"stdin":                     codec.Encode(req.Stdin),
		"compiler_options":          req.CompilerOptions,
		"command_line_arguments":    req.CommandLineArguments,
		"redirect_stderr_to_stdout": true,
	}
	if req.LanguageID == language.SQLiteLanguageID {
		if d.assets == nil {
			return Ticket{}, fmt.Errorf("%w: no asset source configured", ErrAuxiliaryAssetUnavailable)
		}
		blob, err := d.assets.Load(ctx)
		if err != nil {
			return Ticket{}, fmt.Errorf("%w: %v", ErrAuxiliaryAssetUnavailable, err)
		}
		reqBody["additional_files"] = blob
	}

	bodyJSON, err := json.Marshal(reqBody)
	if err != nil {
		return Ticket{}, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		ep.AuthBase+"/submissions?base64_encoded=true&wait=false", bytes.NewReader(bodyJSON))
	if err != nil {
		return Ticket{}, fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	d.notifier.Notify(ctx, hostmsg.PreExecution(req.hostRequest()))

	startedAt := d.now()
	resp, err := d.registry.AuthClient(ctx).Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return Ticket{}, ctx.Err()
		}
		return Ticket{}, d.fail(ctx, &DispatchError{Body: err.Error(), Err: err})
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return Ticket{}, d.fail(ctx, &DispatchError{HTTPStatus: resp.StatusCode, Body: string(body)})
	}

	var raw struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return Ticket{}, d.fail(ctx, &DispatchError{HTTPStatus: resp.StatusCode, Body: "decode submission response: " + err.Error(), Err: err})
	}
	if raw.Token == "" {
		return Ticket{}, d.fail(ctx, &DispatchError{HTTPStatus: resp.StatusCode, Body: "submission response carried no token"})
	}

	t := Ticket{
		Token:     raw.Token,
		Region:    resp.Header.Get(RegionHeader),
		Flavor:    req.Flavor,
		StartedAt: startedAt,
	}
	d.logger.Info("submission accepted",
		zap.String("token", t.Token),
		zap.String("region", t.Region),
		zap.String("language", req.String()))
	return t, nil
}

func (d *Dispatcher) fail(ctx context.Context, err *DispatchError) error {
	d.logger.Warn("submission failed", zap.Int("http_status", err.HTTPStatus), zap.String("body", err.Body))
	d.notifier.Notify(ctx, hostmsg.RunError(err.HTTPStatus, err.StatusText(), err.Body))
	return err
}
