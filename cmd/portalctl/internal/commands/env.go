package commands

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/appetiteclub/portal/internal/apiclient"
	"github.com/appetiteclub/portal/internal/apperr"
	"github.com/appetiteclub/portal/internal/logger"
	"github.com/appetiteclub/portal/internal/notify"
	"github.com/appetiteclub/portal/internal/reservation"
	"github.com/appetiteclub/portal/internal/session"
)

// Env is what every command runs against: one session restored from the
// session file and the controllers built on top of it.
type Env struct {
	Session      *session.Store
	Reservations *reservation.Controller
	Notices      *notify.Recorder
	Out          io.Writer
	Logger       logger.Logger
}

func NewEnv(api *apiclient.Client, sessionFile string, out io.Writer, log logger.Logger) *Env {
	return newEnv(api, session.NewFileStorage(sessionFile), out, log)
}

func newEnv(api *apiclient.Client, storage session.Storage, out io.Writer, log logger.Logger) *Env {
	if log == nil {
		log = logger.NewNoopLogger()
	}

	notices := notify.NewRecorder()
	store := session.NewStore(storage, session.NewAuthDataAccess(api), session.WithLogger(log))
	authed := api.WithTokenSource(store)

	return &Env{
		Session: store,
		Reservations: reservation.NewController(
			reservation.NewDataAccess(authed),
			store,
			reservation.WithNotifier(notices),
			reservation.WithLogger(log),
		),
		Notices: notices,
		Out:     out,
		Logger:  log,
	}
}

// PrintNotices writes pending notifications, one per line.
func (e *Env) PrintNotices() {
	for _, n := range e.Notices.Drain() {
		fmt.Fprintf(e.Out, "[%s] %s\n", n.Level, n.Message)
	}
}

func (e *Env) restore(ctx context.Context) error {
	if _, err := e.Session.Restore(ctx); err != nil {
		return fmt.Errorf("cannot read session file: %w", err)
	}
	if !e.Session.IsAuthenticated() {
		return apperr.New(apperr.Authentication, "not signed in, run login first")
	}
	return nil
}

// StripConfig drops --config and its value so only command arguments remain.
func StripConfig(args []string) []string {
	out := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		switch {
		case args[i] == "--config" || args[i] == "-config":
			i++
		case strings.HasPrefix(args[i], "--config="):
		default:
			out = append(out, args[i])
		}
	}
	return out
}
