package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/appetiteclub/portal/cmd/portalctl/internal/commands"
	"github.com/appetiteclub/portal/internal/apiclient"
	"github.com/appetiteclub/portal/internal/config"
	"github.com/appetiteclub/portal/internal/logger"
)

const (
	appNamespace = "PORTALCTL"
	appName      = "portalctl"
	appVersion   = "0.1.0"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cfg, err := config.Load(appNamespace, os.Args[2:])
	if err != nil {
		log.Fatalf("Cannot load config: %v", err)
	}

	logger := logger.New(cfg.GetStringOrDef("log.level", "error"))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	api := apiclient.New(
		cfg.GetStringOrDef("api.url", "http://localhost:5000/api"),
		apiclient.WithTimeout(cfg.GetDurationOrDef("api.timeout", 15*time.Second)),
		apiclient.WithLogger(logger),
	)
	env := commands.NewEnv(api, cfg.GetStringOrDef("session.file", defaultSessionFile()), os.Stdout, logger)
	args := commands.StripConfig(os.Args[2:])

	command := os.Args[1]
	switch command {
	case "login":
		err = commands.Login(ctx, env, args)
	case "logout":
		err = commands.Logout(ctx, env)
	case "whoami":
		err = commands.WhoAmI(ctx, env)
	case "reservations":
		err = commands.Reservations(ctx, env)
	case "reserve":
		err = commands.Reserve(ctx, env, args)
	case "cancel":
		err = commands.Cancel(ctx, env, args)

	case "version":
		fmt.Printf("%s version %s\n", appName, appVersion)
		return

	case "help", "-h", "--help":
		printUsage()
		return

	default:
		fmt.Printf("Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}

	env.PrintNotices()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s %s: %v\n", appName, command, err)
		os.Exit(1)
	}
}

func defaultSessionFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return filepath.Join(".", ".portalctl-session.json")
	}
	return filepath.Join(dir, appName, "session.json")
}

func printUsage() {
	fmt.Printf(`%s - Restaurant portal from the terminal

Usage:
  %s <command> [options]

Commands:
  login <email> <password>   Sign in and keep the session on disk
  logout                     Sign out and remove the stored session
  whoami                     Show the signed in user
  reservations               List your reservations (all of them for staff)
  reserve [flags]            Make a reservation (see reserve -h)
  cancel <id>                Cancel a pending reservation
  version                    Print version information
  help                       Show this help message

Environment Variables:
  PORTALCTL_API_URL        Backend origin (default: http://localhost:5000/api)
  PORTALCTL_SESSION_FILE   Session file (default: <user config dir>/portalctl/session.json)
  PORTALCTL_LOG_LEVEL      Log level: debug, info, error (default: error)

Examples:
  %s login ana@example.com secret
  %s reserve -date 2025-03-01 -time 19:00 -type Dine-in
  %s reserve -date 2025-03-01 -time 19:00 -type Delivery -address "1 Main St" -contact 555-0100 -method "Cash on Delivery"

`, appName, appName, appName, appName, appName)
}
