package hostmsg

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

const subjectPrefix = "judgepad"

// EventSubject is the subject events of a session are published on.
func EventSubject(sessionID uuid.UUID) string {
	return subjectPrefix + "." + sessionID.String() + ".events"
}

// CommandSubject is the subject a session accepts commands on.
func CommandSubject(sessionID uuid.UUID) string {
	return subjectPrefix + "." + sessionID.String() + ".commands"
}

// sessionFromSubject extracts the session id from judgepad.<id>.commands.
func sessionFromSubject(subject string) (uuid.UUID, error) {
	parts := strings.Split(subject, ".")
	if len(parts) != 3 || parts[0] != subjectPrefix || parts[2] != "commands" {
		return uuid.Nil, fmt.Errorf("unexpected subject %q", subject)
	}
	return uuid.Parse(parts[1])
}

// CommandHandler applies a command to a session and optionally returns an
// event to reply with.
type CommandHandler func(ctx context.Context, sessionID uuid.UUID, cmd Command) (*Event, error)

// NATSBus publishes events to NATS and serves inbound commands over
// request/reply.
type NATSBus struct {
	nc      *nats.Conn
	logger  *zap.Logger
	timeout time.Duration
}

func NewNATSBus(nc *nats.Conn, logger *zap.Logger) *NATSBus {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NATSBus{nc: nc, logger: logger, timeout: 30 * time.Second}
}

func (b *NATSBus) Publish(_ context.Context, sessionID uuid.UUID, ev Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return b.nc.Publish(EventSubject(sessionID), data)
}

type commandReply struct {
	Event *Event `json:"event,omitempty"`
	Error string `json:"error,omitempty"`
}

// ServeCommands subscribes to the command subjects of every session.
func (b *NATSBus) ServeCommands(handle CommandHandler) (*nats.Subscription, error) {
	return b.nc.Subscribe(subjectPrefix+".*.commands", func(msg *nats.Msg) {
		reply := b.handleCommand(msg, handle)
		if msg.Reply == "" {
			return
		}
		data, err := json.Marshal(reply)
		if err != nil {
			b.logger.Error("marshal command reply", zap.Error(err))
			return
		}
		if err := msg.Respond(data); err != nil {
			b.logger.Warn("respond to command", zap.String("subject", msg.Subject), zap.Error(err))
		}
	})
}

func (b *NATSBus) handleCommand(msg *nats.Msg, handle CommandHandler) commandReply {
	sessionID, err := sessionFromSubject(msg.Subject)
	if err != nil {
		return commandReply{Error: err.Error()}
	}
	var cmd Command
	if err := json.Unmarshal(msg.Data, &cmd); err != nil {
		return commandReply{Error: "invalid command: " + err.Error()}
	}
	if err := cmd.Validate(); err != nil {
		return commandReply{Error: err.Error()}
	}

	ctx, cancel := context.WithTimeout(context.Background(), b.timeout)
	defer cancel()
	ev, err := handle(ctx, sessionID, cmd)
	if err != nil {
		b.logger.Warn("command failed",
			zap.String("session_id", sessionID.String()),
			zap.String("action", cmd.Action),
			zap.Error(err))
		return commandReply{Error: err.Error()}
	}
	return commandReply{Event: ev}
}
