package audit

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/appetiteclub/portal/internal/logger"
)

func TestNewLogger(t *testing.T) {
	a := NewLogger(nil)
	if a == nil {
		t.Fatal("NewLogger() returned nil")
	}
	if a.logger == nil {
		t.Error("logger should default to noop logger")
	}
}

func TestLogWritesFields(t *testing.T) {
	tests := []struct {
		name  string
		log   func(a *Logger)
		wants []string
	}{
		{
			name:  "login",
			log:   func(a *Logger) { a.LogLogin(context.Background(), "u-1") },
			wants: []string{"action=login", "user_id=u-1", "success=true"},
		},
		{
			name:  "logout",
			log:   func(a *Logger) { a.LogLogout(context.Background(), "u-2") },
			wants: []string{"action=logout", "user_id=u-2"},
		},
		{
			name: "failedTransition",
			log: func(a *Logger) {
				a.LogTransition(context.Background(), "u-3", "reservation/r-1", "Pending", "Confirmed", errors.New("boom"))
			},
			wants: []string{"action=transition", "target=reservation/r-1", "success=false", "error=boom"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			a := NewLogger(logger.NewWithWriter(&buf, "info"))
			tt.log(a)

			out := buf.String()
			for _, want := range tt.wants {
				if !strings.Contains(out, want) {
					t.Errorf("output %q missing %q", out, want)
				}
			}
		})
	}
}
