package code_test

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gsarma/judgepad/internal/backend"
	"github.com/gsarma/judgepad/internal/code"
	"github.com/gsarma/judgepad/internal/hostmsg"
	"github.com/gsarma/judgepad/internal/language"
)

// recorder collects host events.
type recorder struct {
	mu     sync.Mutex
	events []hostmsg.Event
}

func (r *recorder) Notify(_ context.Context, ev hostmsg.Event) {
	r.mu.Lock()
	r.events = append(r.events, ev)
	r.mu.Unlock()
}

func (r *recorder) names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.events))
	for i, ev := range r.events {
		out[i] = ev.Name
	}
	return out
}

func (r *recorder) count(name string) int {
	n := 0
	for _, got := range r.names() {
		if got == name {
			n++
		}
	}
	return n
}

// instantScheduler records waits without sleeping.
type instantScheduler struct {
	waits []time.Duration
}

func (s *instantScheduler) Wait(ctx context.Context, d time.Duration) error {
	s.waits = append(s.waits, d)
	return ctx.Err()
}

func registryFor(url string) *backend.Registry {
	return backend.NewRegistry(backend.Config{Endpoints: map[language.Flavor]backend.Endpoints{
		language.CE:      {AuthBase: url, UnauthBase: url},
		language.ExtraCE: {AuthBase: url, UnauthBase: url},
	}}, nil)
}

func b64(s string) *string {
	v := base64.StdEncoding.EncodeToString([]byte(s))
	return &v
}

// --- Dispatch tests ---

func TestDispatch_EmptySource_NoNetworkCall(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
	}))
	defer srv.Close()

	rec := &recorder{}
	d := code.NewDispatcher(registryFor(srv.URL), nil, rec, nil)
	for _, src := range []string{"", "   ", "\n\t \n"} {
		_, err := d.Dispatch(context.Background(), code.Request{SourceCode: src, LanguageID: 71, Flavor: language.CE})
		if !errors.Is(err, code.ErrEmptySource) {
			t.Errorf("source %q: expected ErrEmptySource, got %v", src, err)
		}
	}
	if hits != 0 {
		t.Errorf("expected no requests, got %d", hits)
	}
	if len(rec.names()) != 0 {
		t.Errorf("expected no host events, got %v", rec.names())
	}
}

func TestDispatch_PacksPayloadAndReturnsTicket(t *testing.T) {
	var body map[string]interface{}
	var gotPath, gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath, gotQuery = r.URL.Path, r.URL.RawQuery
		json.NewDecoder(r.Body).Decode(&body)
		w.Header().Set(code.RegionHeader, "eu-1")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]string{"token": "tok-1"})
	}))
	defer srv.Close()

	rec := &recorder{}
	d := code.NewDispatcher(registryFor(srv.URL), nil, rec, nil)
	ticket, err := d.Dispatch(context.Background(), code.Request{
		SourceCode:           "print(input())",
		LanguageID:           71,
		Flavor:               language.CE,
		Stdin:                "hi",
		CompilerOptions:      "-O2",
		CommandLineArguments: "a b",
	})
	if err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if ticket.Token != "tok-1" || ticket.Region != "eu-1" || ticket.Flavor != language.CE {
		t.Errorf("unexpected ticket: %+v", ticket)
	}
	if ticket.StartedAt.IsZero() {
		t.Error("expected StartedAt to be set")
	}
	if gotPath != "/submissions" || gotQuery != "base64_encoded=true&wait=false" {
		t.Errorf("unexpected request target %s?%s", gotPath, gotQuery)
	}
	if body["source_code"] != *b64("print(input())") {
		t.Errorf("source not base64 packed: %v", body["source_code"])
	}
	if body["stdin"] != *b64("hi") {
		t.Errorf("stdin not base64 packed: %v", body["stdin"])
	}
	if body["redirect_stderr_to_stdout"] != true {
		t.Error("expected redirect_stderr_to_stdout=true")
	}
	if body["compiler_options"] != "-O2" || body["command_line_arguments"] != "a b" {
		t.Errorf("options not forwarded: %v", body)
	}
	if _, ok := body["additional_files"]; ok {
		t.Error("additional_files should only be sent for the SQLite language")
	}

	if names := rec.names(); len(names) != 1 || names[0] != hostmsg.EventPreExecution {
		t.Fatalf("expected a single preExecution event, got %v", names)
	}
	pre := rec.events[0].Payload.(hostmsg.ExecutionRequest)
	if pre.SourceCode != "print(input())" || pre.Stdin != "hi" {
		t.Errorf("preExecution should carry decoded fields, got %+v", pre)
	}
}

func TestDispatch_RawSourceLanguageIsNotEncoded(t *testing.T) {
	var body map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&body)
		json.NewEncoder(w).Encode(map[string]string{"token": "t"})
	}))
	defer srv.Close()

	src := "  \t\n \t\n"
	d := code.NewDispatcher(registryFor(srv.URL), nil, nil, nil)
	_, err := d.Dispatch(context.Background(), code.Request{SourceCode: src + "x", LanguageID: language.RawSourceLanguageID, Flavor: language.CE, Stdin: "in"})
	if err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if body["source_code"] != src+"x" {
		t.Errorf("expected raw source, got %q", body["source_code"])
	}
	if body["stdin"] != *b64("in") {
		t.Errorf("stdin should still be packed, got %v", body["stdin"])
	}
}

type stubAssets struct {
	blob  string
	err   error
	calls int
}

func (s *stubAssets) Load(context.Context) (string, error) {
	s.calls++
	return s.blob, s.err
}

func TestDispatch_SQLiteAttachesAdditionalFiles(t *testing.T) {
	var body map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&body)
		json.NewEncoder(w).Encode(map[string]string{"token": "t"})
	}))
	defer srv.Close()

	assets := &stubAssets{blob: "UEsDBBQ="}
	d := code.NewDispatcher(registryFor(srv.URL), assets, nil, nil)
	if _, err := d.Dispatch(context.Background(), code.Request{SourceCode: "select 1;", LanguageID: language.SQLiteLanguageID, Flavor: language.CE}); err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if body["additional_files"] != "UEsDBBQ=" {
		t.Errorf("expected additional_files, got %v", body["additional_files"])
	}
}

func TestDispatch_AssetFailureCreatesNoSubmission(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
	}))
	defer srv.Close()

	rec := &recorder{}
	d := code.NewDispatcher(registryFor(srv.URL), &stubAssets{err: errors.New("404")}, rec, nil)
	_, err := d.Dispatch(context.Background(), code.Request{SourceCode: "select 1;", LanguageID: language.SQLiteLanguageID, Flavor: language.CE})
	if !errors.Is(err, code.ErrAuxiliaryAssetUnavailable) {
		t.Fatalf("expected ErrAuxiliaryAssetUnavailable, got %v", err)
	}
	if hits != 0 {
		t.Errorf("expected no submission, got %d requests", hits)
	}
	if len(rec.names()) != 0 {
		t.Errorf("expected no host events, got %v", rec.names())
	}
}

func TestDispatch_HTTPErrorRaisesRunError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"quota"}`, http.StatusTooManyRequests)
	}))
	defer srv.Close()

	rec := &recorder{}
	d := code.NewDispatcher(registryFor(srv.URL), nil, rec, nil)
	_, err := d.Dispatch(context.Background(), code.Request{SourceCode: "x", LanguageID: 71, Flavor: language.CE})

	var de *code.DispatchError
	if !errors.As(err, &de) {
		t.Fatalf("expected DispatchError, got %v", err)
	}
	if de.HTTPStatus != http.StatusTooManyRequests {
		t.Errorf("expected 429, got %d", de.HTTPStatus)
	}
	if names := rec.names(); len(names) != 2 || names[1] != hostmsg.EventRunError {
		t.Errorf("expected preExecution then runError, got %v", names)
	}
}

func TestDispatch_UnreachableBackend(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	rec := &recorder{}
	d := code.NewDispatcher(registryFor(url), nil, rec, nil)
	_, err := d.Dispatch(context.Background(), code.Request{SourceCode: "x", LanguageID: 71, Flavor: language.CE})

	var de *code.DispatchError
	if !errors.As(err, &de) {
		t.Fatalf("expected DispatchError, got %v", err)
	}
	if de.HTTPStatus != 0 || de.Body == "" {
		t.Errorf("expected transport error text with status 0, got %+v", de)
	}
	if rec.count(hostmsg.EventRunError) != 1 {
		t.Errorf("expected one runError, got %v", rec.names())
	}
}

func TestDispatch_CancelledInFlightRaisesNoRunError(t *testing.T) {
	arrived := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		close(arrived)
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-arrived
		cancel()
	}()

	rec := &recorder{}
	d := code.NewDispatcher(registryFor(srv.URL), nil, rec, nil)
	_, err := d.Dispatch(ctx, code.Request{SourceCode: "x", LanguageID: 71, Flavor: language.CE})

	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if rec.count(hostmsg.EventRunError) != 0 {
		t.Errorf("expected no runError, got %v", rec.names())
	}
}

func TestDispatch_SendsBearerCredential(t *testing.T) {
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		json.NewEncoder(w).Encode(map[string]string{"token": "t"})
	}))
	defer srv.Close()

	reg := registryFor(srv.URL)
	reg.SetCredential("k3y")
	d := code.NewDispatcher(reg, nil, nil, nil)
	if _, err := d.Dispatch(context.Background(), code.Request{SourceCode: "x", LanguageID: 71, Flavor: language.CE}); err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if auth != "Bearer k3y" {
		t.Errorf("expected bearer header, got %q", auth)
	}
}

// --- Poll tests ---

func statusServer(t *testing.T, hits *int32, respond func(n int32, w http.ResponseWriter, r *http.Request)) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(hits, 1)
		respond(n, w, r)
	}))
}

func TestPoll_BudgetExhaustedAfterFiftyRequests(t *testing.T) {
	var hits int32
	srv := statusServer(t, &hits, func(_ int32, w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(code.StatusResponse{Status: code.Status{ID: 2, Description: "Processing"}})
	})
	defer srv.Close()

	rec := &recorder{}
	sched := &instantScheduler{}
	p := code.NewPoller(registryFor(srv.URL), code.PollerConfig{Scheduler: sched}, rec, nil)
	_, err := p.Run(context.Background(), code.Ticket{Token: "t", Flavor: language.CE})

	if !errors.Is(err, code.ErrPollBudgetExhausted) {
		t.Fatalf("expected ErrPollBudgetExhausted, got %v", err)
	}
	var de *code.DispatchError
	if !errors.As(err, &de) || de.HTTPStatus != http.StatusGatewayTimeout {
		t.Errorf("expected 504 DispatchError, got %v", err)
	}
	if hits != code.DefaultMaxAttempts {
		t.Errorf("expected %d requests, got %d", code.DefaultMaxAttempts, hits)
	}
	// One initial wait plus one between each pair of polls.
	if len(sched.waits) != code.DefaultMaxAttempts {
		t.Errorf("expected %d waits, got %d", code.DefaultMaxAttempts, len(sched.waits))
	}
	if sched.waits[1] != 100*time.Millisecond {
		t.Errorf("expected 100ms default backoff, got %v", sched.waits[1])
	}
	if rec.count(hostmsg.EventRunError) != 1 {
		t.Errorf("expected one runError, got %d", rec.count(hostmsg.EventRunError))
	}
}

func TestPoll_StopsAtTerminalStatus(t *testing.T) {
	var hits int32
	var region string
	srv := statusServer(t, &hits, func(n int32, w http.ResponseWriter, r *http.Request) {
		region = r.Header.Get(code.RegionHeader)
		if r.Header.Get("Authorization") != "" {
			t.Error("status polls must not carry a credential")
		}
		if n < 3 {
			json.NewEncoder(w).Encode(code.StatusResponse{Status: code.Status{ID: int(n), Description: "waiting"}})
			return
		}
		json.NewEncoder(w).Encode(code.StatusResponse{
			Status: code.Status{ID: 3, Description: "Accepted"},
			Stdout: b64("ok\n"),
		})
	})
	defer srv.Close()

	reg := registryFor(srv.URL)
	reg.SetCredential("secret")
	rec := &recorder{}
	p := code.NewPoller(reg, code.PollerConfig{Scheduler: &instantScheduler{}}, rec, nil)
	resp, err := p.Run(context.Background(), code.Ticket{Token: "t", Region: "us-2", Flavor: language.CE})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if hits != 3 {
		t.Errorf("expected 3 polls, got %d", hits)
	}
	if resp.Status.ID != 3 || resp.Token != "t" {
		t.Errorf("unexpected response: %+v", resp)
	}
	if region != "us-2" {
		t.Errorf("expected region affinity header, got %q", region)
	}
	if rec.count(hostmsg.EventStatus) != 2 {
		t.Errorf("expected 2 status events, got %v", rec.names())
	}
}

func TestPoll_TransportErrorIsNotRetried(t *testing.T) {
	var hits int32
	srv := statusServer(t, &hits, func(n int32, w http.ResponseWriter, _ *http.Request) {
		if n == 2 {
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}
		json.NewEncoder(w).Encode(code.StatusResponse{Status: code.Status{ID: 1, Description: "In Queue"}})
	})
	defer srv.Close()

	p := code.NewPoller(registryFor(srv.URL), code.PollerConfig{Scheduler: &instantScheduler{}}, nil, nil)
	_, err := p.Run(context.Background(), code.Ticket{Token: "t", Flavor: language.CE})

	var de *code.DispatchError
	if !errors.As(err, &de) || de.HTTPStatus != http.StatusInternalServerError {
		t.Fatalf("expected 500 DispatchError, got %v", err)
	}
	if errors.Is(err, code.ErrPollBudgetExhausted) {
		t.Error("transport error must not look like budget exhaustion")
	}
	if hits != 2 {
		t.Errorf("expected polling to stop after the failure, got %d requests", hits)
	}
}

func TestPoll_StepBeyondBudget(t *testing.T) {
	p := code.NewPoller(registryFor("http://unused.invalid"), code.PollerConfig{MaxAttempts: 3}, nil, nil)
	_, err := p.Step(context.Background(), code.Ticket{Token: "t", Flavor: language.CE}, 4)
	if !errors.Is(err, code.ErrPollBudgetExhausted) {
		t.Errorf("expected ErrPollBudgetExhausted, got %v", err)
	}
}

func TestPoll_BackoffIsAttemptIndexed(t *testing.T) {
	var hits int32
	srv := statusServer(t, &hits, func(n int32, w http.ResponseWriter, _ *http.Request) {
		id := 1
		if n == 4 {
			id = 3
		}
		json.NewEncoder(w).Encode(code.StatusResponse{Status: code.Status{ID: id}})
	})
	defer srv.Close()

	sched := &instantScheduler{}
	p := code.NewPoller(registryFor(srv.URL), code.PollerConfig{
		Scheduler:    sched,
		InitialDelay: 5 * time.Millisecond,
		Backoff:      func(attempt int) time.Duration { return time.Duration(attempt) * time.Second },
	}, nil, nil)
	if _, err := p.Run(context.Background(), code.Ticket{Token: "t", Flavor: language.CE}); err != nil {
		t.Fatalf("run: %v", err)
	}
	want := []time.Duration{5 * time.Millisecond, time.Second, 2 * time.Second, 3 * time.Second}
	if len(sched.waits) != len(want) {
		t.Fatalf("expected waits %v, got %v", want, sched.waits)
	}
	for i := range want {
		if sched.waits[i] != want[i] {
			t.Errorf("wait %d: expected %v, got %v", i, want[i], sched.waits[i])
		}
	}
}

func TestPoll_CancelledContextStopsLoop(t *testing.T) {
	var hits int32
	srv := statusServer(t, &hits, func(_ int32, w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(code.StatusResponse{Status: code.Status{ID: 1}})
	})
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	p := code.NewPoller(registryFor(srv.URL), code.PollerConfig{
		Backoff: code.ConstantBackoff(time.Hour),
	}, nil, nil)

	done := make(chan error, 1)
	go func() {
		_, err := p.Run(ctx, code.Ticket{Token: "t", Flavor: language.CE})
		done <- err
	}()
	for atomic.LoadInt32(&hits) == 0 {
		time.Sleep(time.Millisecond)
	}
	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("poll loop did not stop after cancel")
	}
}

// --- Normalize tests ---

func TestNormalize_PlaceholdersAndOutputOrder(t *testing.T) {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	res := code.Normalize(code.StatusResponse{
		Token:         "t",
		Status:        code.Status{ID: 6, Description: "Compilation Error"},
		Stdout:        b64("\n"),
		CompileOutput: b64("main.cpp:3: error: expected ';'\n"),
	}, start, start.Add(420*time.Millisecond))

	if res.Time != "-" || res.Memory != "-" {
		t.Errorf("expected placeholders, got time=%q memory=%q", res.Time, res.Memory)
	}
	if res.Output != "main.cpp:3: error: expected ';'" {
		t.Errorf("unexpected output %q", res.Output)
	}
	if res.Turnaround != 420*time.Millisecond {
		t.Errorf("unexpected turnaround %v", res.Turnaround)
	}
	if res.StatusLine() != "Compilation Error, -, - (TAT: 420ms)" {
		t.Errorf("unexpected status line %q", res.StatusLine())
	}
	if res.Status.Kind() != code.KindCompileError {
		t.Errorf("unexpected kind %s", res.Status.Kind())
	}
}

func TestNormalize_DiagnosticsAboveStdout(t *testing.T) {
	tm, mem := "0.012", 3840
	res := code.Normalize(code.StatusResponse{
		Status:        code.Status{ID: 3, Description: "Accepted"},
		Stdout:        b64("42\n"),
		CompileOutput: b64("warning: unused variable"),
		Time:          &tm,
		Memory:        &mem,
	}, time.Now(), time.Now())

	if res.Output != "warning: unused variable\n42" {
		t.Errorf("unexpected output %q", res.Output)
	}
	if res.Time != "0.012s" || res.Memory != "3840KB" {
		t.Errorf("unexpected formatting time=%q memory=%q", res.Time, res.Memory)
	}

	ev := res.PostExecution()
	post := ev.Payload.(hostmsg.PostExecution)
	if ev.Name != hostmsg.EventPostExecution || *post.Time != "0.012" || *post.Memory != 3840 || post.Output != res.Output {
		t.Errorf("unexpected postExecution %+v", post)
	}
}

func TestStatusKind(t *testing.T) {
	cases := map[int]code.StatusKind{
		1: code.KindQueued, 2: code.KindProcessing, 3: code.KindSuccess, 4: code.KindWrongAnswer,
		5: code.KindTimeout, 6: code.KindCompileError, 7: code.KindRuntimeError, 12: code.KindRuntimeError,
		13: code.KindInternalError, 14: code.KindInternalError,
	}
	for id, want := range cases {
		if got := (code.Status{ID: id}).Kind(); got != want {
			t.Errorf("status %d: got %s, want %s", id, got, want)
		}
	}
}

// --- Executor tests ---

// fakeJudge0 accepts one submission and answers "Processing" twice before
// returning the canned result.
func fakeJudge0(t *testing.T, stdout string) *httptest.Server {
	t.Helper()
	var polls int32
	mux := http.NewServeMux()
	mux.HandleFunc("/submissions", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]interface{}
		json.NewDecoder(r.Body).Decode(&body)
		if body["language_id"] != float64(language.DefaultLanguageID) {
			t.Errorf("unexpected language %v", body["language_id"])
		}
		w.Header().Set(code.RegionHeader, "eu")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]string{"token": "abc"})
	})
	mux.HandleFunc("/submissions/abc", func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&polls, 1) < 3 {
			json.NewEncoder(w).Encode(code.StatusResponse{Status: code.Status{ID: 2, Description: "Processing"}})
			return
		}
		tm, mem := "0.004", 3532
		json.NewEncoder(w).Encode(code.StatusResponse{
			Token:  "abc",
			Status: code.Status{ID: 3, Description: "Accepted"},
			Stdout: b64(stdout),
			Time:   &tm,
			Memory: &mem,
		})
	})
	return httptest.NewServer(mux)
}

func TestExecutor_RunsDefaultProgram(t *testing.T) {
	srv := fakeJudge0(t, "12\n5\nNO\n")
	defer srv.Close()

	reg := registryFor(srv.URL)
	rec := &recorder{}
	exec := code.NewExecutor(
		code.NewDispatcher(reg, nil, rec, nil),
		code.NewPoller(reg, code.PollerConfig{Scheduler: &instantScheduler{}}, rec, nil),
		rec, nil)

	res, err := exec.Execute(context.Background(), code.Request{
		SourceCode: language.DefaultSource,
		LanguageID: language.DefaultLanguageID,
		Flavor:     language.CE,
		Stdin:      language.DefaultStdin,
	})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if res.RawTime == nil || res.RawMemory == nil {
		t.Error("expected time and memory to be reported")
	}
	if res.Output != "12\n5\nNO" {
		t.Errorf("unexpected output %q", res.Output)
	}
	names := rec.names()
	if names[0] != hostmsg.EventPreExecution || names[len(names)-1] != hostmsg.EventPostExecution {
		t.Errorf("unexpected event order %v", names)
	}
	if rec.count(hostmsg.EventPostExecution) != 1 {
		t.Errorf("expected exactly one postExecution, got %v", names)
	}
}

func TestExecutor_DispatchFailureSkipsPolling(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	reg := registryFor(url)
	sched := &instantScheduler{}
	exec := code.NewExecutor(
		code.NewDispatcher(reg, nil, nil, nil),
		code.NewPoller(reg, code.PollerConfig{Scheduler: sched}, nil, nil),
		nil, nil)
	_, err := exec.Execute(context.Background(), code.Request{SourceCode: "x", LanguageID: 71, Flavor: language.CE})

	var de *code.DispatchError
	if !errors.As(err, &de) {
		t.Fatalf("expected DispatchError, got %v", err)
	}
	if len(sched.waits) != 0 {
		t.Error("expected no polling after a failed dispatch")
	}
}

// --- AssetLoader tests ---

func TestAssetLoader_MemoizesSuccess(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.Write([]byte("UEsDBA==\n"))
	}))
	defer srv.Close()

	l := code.NewAssetLoader(srv.URL+"/additional_files_zip_base64.txt", srv.Client())
	for i := 0; i < 3; i++ {
		blob, err := l.Load(context.Background())
		if err != nil {
			t.Fatalf("load: %v", err)
		}
		if blob != "UEsDBA==" {
			t.Errorf("unexpected blob %q", blob)
		}
	}
	if hits != 1 {
		t.Errorf("expected a single fetch, got %d", hits)
	}
}

func TestAssetLoader_FailureIsNotCached(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&hits, 1) == 1 {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Write([]byte("blob"))
	}))
	defer srv.Close()

	l := code.NewAssetLoader(srv.URL, nil)
	if _, err := l.Load(context.Background()); err == nil {
		t.Fatal("expected first load to fail")
	}
	if blob, err := l.Load(context.Background()); err != nil || blob != "blob" {
		t.Errorf("expected retry to succeed, got %q, %v", blob, err)
	}
}

func TestAssetLoader_ReadsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "files.txt")
	if err := os.WriteFile(path, []byte("ZmlsZXM=\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	blob, err := code.NewAssetLoader(path, nil).Load(context.Background())
	if err != nil || blob != "ZmlsZXM=" {
		t.Errorf("unexpected result %q, %v", blob, err)
	}
}
