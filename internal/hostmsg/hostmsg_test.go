package hostmsg

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gsarma/judgepad/internal/language"
)

func TestEvent_MarshalFlattensPayload(t *testing.T) {
	data, err := json.Marshal(PreExecution(ExecutionRequest{
		SourceCode: "print(1)",
		LanguageID: 71,
		Flavor:     language.CE,
	}))
	require.NoError(t, err)

	var got map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, "preExecution", got["event"])
	assert.Equal(t, "print(1)", got["source_code"])
	assert.Equal(t, float64(71), got["language_id"])
	assert.Equal(t, "CE", got["flavor"])
	assert.Contains(t, got, "stdin")
}

func TestEvent_MarshalWithoutPayload(t *testing.T) {
	data, err := json.Marshal(Initialised())
	require.NoError(t, err)
	assert.JSONEq(t, `{"event":"initialised"}`, string(data))
}

func TestEvent_PostExecutionKeepsNulls(t *testing.T) {
	data, err := json.Marshal(PostExecutionEvent(PostExecution{
		Status: Status{ID: 6, Description: "Compilation Error"},
		Output: "main.cpp:1: error",
	}))
	require.NoError(t, err)
	assert.JSONEq(t, `{"event":"postExecution","status":{"id":6,"description":"Compilation Error"},"time":null,"memory":null,"output":"main.cpp:1: error"}`, string(data))
}

func TestEvent_RunErrorShape(t *testing.T) {
	data, err := json.Marshal(RunError(504, "Maximum number of probe requests reached.", ""))
	require.NoError(t, err)
	assert.JSONEq(t, `{"event":"runError","data":{"status":504,"statusText":"Maximum number of probe requests reached."}}`, string(data))
}

func TestEvent_NonObjectPayloadFails(t *testing.T) {
	_, err := json.Marshal(Event{Name: "x", Payload: []int{1}})
	assert.Error(t, err)
}

func TestCommand_Validate(t *testing.T) {
	assert.NoError(t, Command{Action: ActionGet}.Validate())
	assert.NoError(t, Command{Action: ActionSet, Flavor: language.ExtraCE}.Validate())
	assert.Error(t, Command{Action: ActionSet, Flavor: "PRO"}.Validate())
	assert.Error(t, Command{Action: "delete"}.Validate())
}

func TestBroker_DeliversToSessionSubscribersOnly(t *testing.T) {
	b := NewBroker(4)
	a, other := uuid.New(), uuid.New()
	ch, cancel := b.Subscribe(a)
	defer cancel()
	otherCh, cancelOther := b.Subscribe(other)
	defer cancelOther()

	require.NoError(t, b.Publish(context.Background(), a, Initialised()))

	ev := <-ch
	assert.Equal(t, EventInitialised, ev.Name)
	select {
	case ev := <-otherCh:
		t.Fatalf("unexpected event for other session: %+v", ev)
	default:
	}
}

func TestBroker_FullBufferDropsEvent(t *testing.T) {
	b := NewBroker(1)
	id := uuid.New()
	_, cancel := b.Subscribe(id)
	defer cancel()

	require.NoError(t, b.Publish(context.Background(), id, Initialised()))
	assert.ErrorIs(t, b.Publish(context.Background(), id, Initialised()), ErrSlowSubscriber)
}

func TestBroker_CancelClosesChannel(t *testing.T) {
	b := NewBroker(1)
	id := uuid.New()
	ch, cancel := b.Subscribe(id)
	cancel()
	cancel()
	_, open := <-ch
	assert.False(t, open)
	assert.NoError(t, b.Publish(context.Background(), id, Initialised()))
}

type failingBus struct{ err error }

func (f failingBus) Publish(context.Context, uuid.UUID, Event) error { return f.err }

func TestFanout_JoinsErrors(t *testing.T) {
	boom := errors.New("boom")
	b := NewBroker(1)
	id := uuid.New()
	ch, cancel := b.Subscribe(id)
	defer cancel()

	err := Fanout{b, failingBus{boom}, nil}.Publish(context.Background(), id, Initialised())
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, EventInitialised, (<-ch).Name)
}

func TestBind_SwallowsPublishErrors(t *testing.T) {
	n := Bind(failingBus{errors.New("down")}, uuid.New(), nil)
	n.Notify(context.Background(), Initialised())
}

func TestSessionFromSubject(t *testing.T) {
	id := uuid.New()
	got, err := sessionFromSubject(CommandSubject(id))
	require.NoError(t, err)
	assert.Equal(t, id, got)

	_, err = sessionFromSubject(EventSubject(id))
	assert.Error(t, err)
	_, err = sessionFromSubject("judgepad.not-a-uuid.commands")
	assert.Error(t, err)
}

func TestNATSBus_HandleCommand(t *testing.T) {
	bus := NewNATSBus(nil, nil)
	id := uuid.New()

	var gotID uuid.UUID
	var gotCmd Command
	handle := func(_ context.Context, sessionID uuid.UUID, cmd Command) (*Event, error) {
		gotID, gotCmd = sessionID, cmd
		ev := GetResponse(State{SourceCode: "x"})
		return &ev, nil
	}

	reply := bus.handleCommand(&nats.Msg{
		Subject: CommandSubject(id),
		Data:    []byte(`{"action":"get"}`),
	}, handle)
	require.Empty(t, reply.Error)
	require.NotNil(t, reply.Event)
	assert.Equal(t, EventGetResponse, reply.Event.Name)
	assert.Equal(t, id, gotID)
	assert.Equal(t, ActionGet, gotCmd.Action)

	reply = bus.handleCommand(&nats.Msg{Subject: CommandSubject(id), Data: []byte(`{"action":"nuke"}`)}, handle)
	assert.Contains(t, reply.Error, "unknown action")

	reply = bus.handleCommand(&nats.Msg{Subject: CommandSubject(id), Data: []byte(`not json`)}, handle)
	assert.Contains(t, reply.Error, "invalid command")
}
