package mongo

import (
	"context"
	"testing"

	"github.com/appetiteclub/portal/internal/config"
)

func TestSessionRepoNotStarted(t *testing.T) {
	repo := NewSessionRepo(config.FromMap(nil), nil)
	ctx := context.Background()

	if _, err := repo.Get(ctx, "user"); err == nil {
		t.Error("Get() before Start should return error")
	}
	if err := repo.Set(ctx, "user", "v"); err == nil {
		t.Error("Set() before Start should return error")
	}
	if err := repo.Delete(ctx, "user"); err == nil {
		t.Error("Delete() before Start should return error")
	}
	if err := repo.Stop(ctx); err != nil {
		t.Errorf("Stop() before Start error = %v", err)
	}
}
