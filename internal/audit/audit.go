package audit

import (
	"context"
	"encoding/json"
	"time"

	"github.com/appetiteclub/portal/internal/logger"
)

// Entry is one audited user action.
type Entry struct {
	UserID    string          `json:"user_id"`
	Action    string          `json:"action"`
	Target    string          `json:"target"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
	Success   bool            `json:"success"`
	Error     string          `json:"error,omitempty"`
}

// Logger writes audit entries as structured log lines.
type Logger struct {
	logger logger.Logger
}

func NewLogger(log logger.Logger) *Logger {
	if log == nil {
		log = logger.NewNoopLogger()
	}
	return &Logger{logger: log}
}

func (a *Logger) Log(ctx context.Context, entry Entry) {
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}

	a.logger.Info("audit",
		"user_id", entry.UserID,
		"action", entry.Action,
		"target", entry.Target,
		"payload", string(entry.Payload),
		"success", entry.Success,
		"timestamp", entry.Timestamp.Format(time.RFC3339),
		"error", entry.Error,
	)
}

func (a *Logger) LogLogin(ctx context.Context, userID string) {
	a.Log(ctx, Entry{
		UserID:  userID,
		Action:  "login",
		Target:  "auth",
		Success: true,
	})
}

func (a *Logger) LogLogout(ctx context.Context, userID string) {
	a.Log(ctx, Entry{
		UserID:  userID,
		Action:  "logout",
		Target:  "auth",
		Success: true,
	})
}

// LogTransition records a status change attempt on a reservation, payment or order.
func (a *Logger) LogTransition(ctx context.Context, userID, target, from, to string, err error) {
	payload, _ := json.Marshal(map[string]string{
		"from": from,
		"to":   to,
	})

	entry := Entry{
		UserID:  userID,
		Action:  "transition",
		Target:  target,
		Payload: payload,
		Success: err == nil,
	}
	if err != nil {
		entry.Error = err.Error()
	}

	a.Log(ctx, entry)
}
