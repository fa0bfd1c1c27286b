package commands

import (
	"context"
	"fmt"

	"github.com/appetiteclub/portal/internal/apperr"
)

func Login(ctx context.Context, env *Env, args []string) error {
	if len(args) < 2 {
		return apperr.New(apperr.Validation, "usage: login <email> <password>")
	}

	user, err := env.Session.Login(ctx, args[0], args[1])
	if err != nil {
		return err
	}
	fmt.Fprintf(env.Out, "Signed in as %s (%s)\n", user.Email, user.Role)
	return nil
}

func Logout(ctx context.Context, env *Env) error {
	if _, err := env.Session.Restore(ctx); err != nil {
		return fmt.Errorf("cannot read session file: %w", err)
	}
	err := env.Session.Logout(ctx)
	env.Session.Wait()
	if err != nil {
		return fmt.Errorf("cannot clear session file: %w", err)
	}
	fmt.Fprintln(env.Out, "Signed out")
	return nil
}

func WhoAmI(ctx context.Context, env *Env) error {
	if err := env.restore(ctx); err != nil {
		return err
	}
	user := env.Session.User()
	fmt.Fprintf(env.Out, "%s <%s> %s\n", user.Username, user.Email, user.Role)
	return nil
}
