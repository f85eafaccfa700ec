// Package session ties one user's editor state to the execution pipeline and
// the assistant conversation.
package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/gsarma/judgepad/internal/assist"
	"github.com/gsarma/judgepad/internal/backend"
	"github.com/gsarma/judgepad/internal/code"
	"github.com/gsarma/judgepad/internal/directive"
	"github.com/gsarma/judgepad/internal/hostmsg"
	"github.com/gsarma/judgepad/internal/language"
)

// ChangesAppliedReply is shown when the assistant answered with nothing but
// directives.
const ChangesAppliedReply = "Ok, I have made the appropriate changes."

// Deps are the collaborators shared by every session of a process.
type Deps struct {
	Backend    backend.Config
	HTTPClient *http.Client
	// AssetLocation is the URL or path of the SQLite additional files blob.
	AssetLocation string
	Poller        code.PollerConfig
	Assistant     *assist.Assistant
	Window        int
	Bus           hostmsg.Bus
	Credentials   CredentialStore
	Logger        *zap.Logger
}

// State is the editor as seen from outside.
type State struct {
	hostmsg.State
	Mode       string `json:"mode"`
	StatusLine string `json:"status_line"`
}

// Reply is the outcome of one assistant exchange.
type Reply struct {
	Text        string          `json:"reply"`
	CodeUpdated bool            `json:"code_updated"`
	Mode        string          `json:"mode,omitempty"`
	Language    *language.Entry `json:"language,omitempty"`
}

type Session struct {
	ID uuid.UUID

	registry *backend.Registry
	catalog  *backend.Catalog
	executor *code.Executor
	conv     *assist.Conversation
	notifier hostmsg.Notifier
	creds    CredentialStore
	logger   *zap.Logger

	mu    sync.Mutex
	state State

	runMu     sync.Mutex
	runSeq    uint64
	cancelRun context.CancelFunc

	askMu sync.Mutex
}

// New builds a session with its own registry, catalog and asset cache.
// Call Initialise before use.
func New(id uuid.UUID, deps Deps) *Session {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.With(zap.String("session_id", id.String()))
	client := deps.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}

	var notifier hostmsg.Notifier = hostmsg.Discard
	if deps.Bus != nil {
		notifier = hostmsg.Bind(deps.Bus, id, logger)
	}

	registry := backend.NewRegistry(deps.Backend, client)
	var assets code.AssetSource
	if deps.AssetLocation != "" {
		assets = code.NewAssetLoader(deps.AssetLocation, client)
	}
	dispatcher := code.NewDispatcher(registry, assets, notifier, logger)
	poller := code.NewPoller(registry, deps.Poller, notifier, logger)

	window := deps.Window
	if window <= 0 {
		window = assist.DefaultWindow
	}

	return &Session{
		ID:       id,
		registry: registry,
		catalog:  backend.NewCatalog(registry, logger),
		executor: code.NewExecutor(dispatcher, poller, notifier, logger),
		conv:     assist.NewConversation(deps.Assistant, window),
		notifier: notifier,
		creds:    deps.Credentials,
		logger:   logger,
	}
}

// Initialise loads the default program and language, seeds the conversation
// with the current source and announces the session.
func (s *Session) Initialise(ctx context.Context) {
	sel := language.DefaultSelection
	s.mu.Lock()
	s.state = State{State: hostmsg.State{
		SourceCode: language.DefaultSource,
		Stdin:      language.DefaultStdin,
		LanguageID: sel.LanguageID,
		Flavor:     sel.Flavor,
	}}
	s.mu.Unlock()

	s.selectLanguage(ctx, sel)
	s.conv.SetSystem(assist.SystemPrompt(language.DefaultSource))
	s.notifier.Notify(ctx, hostmsg.Initialised())
}

// State returns a copy of the editor state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Request is the execution request for the current editor contents.
func (s *Session) Request() code.Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return code.Request{
		SourceCode:           s.state.SourceCode,
		LanguageID:           s.state.LanguageID,
		Flavor:               s.state.Flavor,
		Stdin:                s.state.Stdin,
		CompilerOptions:      s.state.CompilerOptions,
		CommandLineArguments: s.state.CommandLineArguments,
	}
}

// Run executes the editor contents. A Run started while another is still
// polling cancels the older one, which returns context.Canceled; only the
// newest run writes its output back to the editor.
func (s *Session) Run(ctx context.Context) (*code.Result, error) {
	runCtx, cancel := context.WithCancel(ctx)
	s.runMu.Lock()
	if s.cancelRun != nil {
		s.cancelRun()
	}
	s.runSeq++
	seq := s.runSeq
	s.cancelRun = cancel
	s.runMu.Unlock()

	defer func() {
		s.runMu.Lock()
		if s.runSeq == seq {
			s.cancelRun = nil
		}
		s.runMu.Unlock()
		cancel()
	}()

	res, err := s.executor.Execute(runCtx, s.Request())
	if !s.latestRun(seq) {
		if err == nil {
			err = context.Canceled
		}
		return nil, err
	}
	s.record(res, err)
	if err != nil {
		return nil, err
	}
	return res, nil
}

// Execute runs req with this session's backend and writes the outcome back to
// the editor like Run does, so a later get sees the queued run's output. It
// does not take part in cancel-and-replace. Queued jobs use it.
func (s *Session) Execute(ctx context.Context, req code.Request) (*code.Result, error) {
	res, err := s.executor.Execute(ctx, req)
	if ctx.Err() == nil {
		s.record(res, err)
	}
	if err != nil {
		return nil, err
	}
	return res, nil
}

// record stores a finished run's output and status line.
func (s *Session) record(res *code.Result, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.state.StatusLine = errorStatusLine(err)
		return
	}
	s.state.Stdout = res.Output
	s.state.StatusLine = res.StatusLine()
}

func (s *Session) latestRun(seq uint64) bool {
	s.runMu.Lock()
	defer s.runMu.Unlock()
	return s.runSeq == seq
}

func errorStatusLine(err error) string {
	var de *code.DispatchError
	if errors.As(err, &de) {
		if de.HTTPStatus == 0 {
			return de.StatusText()
		}
		return fmt.Sprintf("%d %s", de.HTTPStatus, de.StatusText())
	}
	return err.Error()
}

// Ask sends query to the assistant together with the current source and
// applies the directives of the reply: a code block replaces the source and
// a language marker switches the language. Exchanges are serialized. On
// failure the editor and the conversation are left untouched.
func (s *Session) Ask(ctx context.Context, query string) (Reply, error) {
	s.askMu.Lock()
	defer s.askMu.Unlock()

	raw, err := s.conv.Ask(ctx, assist.UserPrompt(s.State().SourceCode, query))
	if err != nil {
		return Reply{}, err
	}

	d := directive.Extract(raw)
	reply := Reply{Text: d.CleanedText}
	if d.HasCode() {
		s.mu.Lock()
		s.state.SourceCode = d.Code
		s.mu.Unlock()
		reply.CodeUpdated = true
	}
	if d.HasLanguage() {
		catalog, err := s.catalog.List(ctx)
		if err != nil {
			s.logger.Warn("language catalog unavailable", zap.Error(err))
		}
		mode, entry := directive.Resolve(d.LanguageKey, catalog)
		reply.Mode = mode
		reply.Language = entry
		s.mu.Lock()
		s.state.Mode = mode
		if entry != nil {
			s.state.LanguageID = entry.ID
			s.state.Flavor = entry.Flavor
		}
		s.mu.Unlock()
		if entry == nil {
			s.logger.Warn("no language matches mode", zap.String("key", d.LanguageKey), zap.String("mode", mode))
		}
	}
	if strings.TrimSpace(reply.Text) == "" {
		reply.Text = ChangesAppliedReply
	}
	return reply, nil
}

// Handle applies an inbound host command. "get" answers with a getResponse
// event, which is also published; "set" applies every non-empty field and
// returns no event.
func (s *Session) Handle(ctx context.Context, cmd hostmsg.Command) (*hostmsg.Event, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}
	if cmd.Action == hostmsg.ActionGet {
		ev := hostmsg.GetResponse(s.State().State)
		s.notifier.Notify(ctx, ev)
		return &ev, nil
	}

	s.mu.Lock()
	if cmd.SourceCode != "" {
		s.state.SourceCode = cmd.SourceCode
	}
	if cmd.Stdin != "" {
		s.state.Stdin = cmd.Stdin
	}
	if cmd.Stdout != "" {
		s.state.Stdout = cmd.Stdout
	}
	if cmd.CompilerOptions != "" {
		s.state.CompilerOptions = cmd.CompilerOptions
	}
	if cmd.CommandLineArguments != "" {
		s.state.CommandLineArguments = cmd.CommandLineArguments
	}
	s.mu.Unlock()

	if cmd.LanguageID != 0 && cmd.Flavor != "" {
		s.selectLanguage(ctx, language.Selection{Flavor: cmd.Flavor, LanguageID: cmd.LanguageID})
	}
	if cmd.APIKey != "" {
		s.registry.SetCredential(cmd.APIKey)
		if s.creds != nil {
			if err := s.creds.Save(ctx, s.ID, cmd.APIKey); err != nil {
				return nil, fmt.Errorf("save credential: %w", err)
			}
		}
	}
	return nil, nil
}

// OpenFile loads content as the source and picks the language from the
// file extension.
func (s *Session) OpenFile(ctx context.Context, name, content string) {
	s.mu.Lock()
	s.state.SourceCode = content
	s.mu.Unlock()
	s.selectLanguage(ctx, language.ForFileName(name))
}

// Languages is the merged catalog of both flavors.
func (s *Session) Languages(ctx context.Context) ([]language.Entry, error) {
	return s.catalog.List(ctx)
}

// Language looks up one catalog entry.
func (s *Session) Language(ctx context.Context, flavor language.Flavor, id int) (language.Entry, error) {
	return s.catalog.Language(ctx, flavor, id)
}

// SetCredential overrides the backend credential without persisting it.
func (s *Session) SetCredential(key string) {
	s.registry.SetCredential(key)
}

// selectLanguage switches the selection and derives the editor mode from the
// catalog name. The selection is kept when the catalog lookup fails.
func (s *Session) selectLanguage(ctx context.Context, sel language.Selection) {
	mode := language.PlainTextMode
	entry, err := s.catalog.Language(ctx, sel.Flavor, sel.LanguageID)
	if err != nil {
		s.logger.Warn("language lookup failed",
			zap.String("flavor", string(sel.Flavor)),
			zap.Int("language_id", sel.LanguageID),
			zap.Error(err))
	} else {
		mode = entry.Mode
	}
	s.mu.Lock()
	s.state.Flavor = sel.Flavor
	s.state.LanguageID = sel.LanguageID
	s.state.Mode = mode
	s.mu.Unlock()
}

// Close cancels any run in flight.
func (s *Session) Close() {
	s.runMu.Lock()
	if s.cancelRun != nil {
		s.cancelRun()
	}
	s.runMu.Unlock()
}
