package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"

	"github.com/joho/godotenv"

	"github.com/vbonduro/branchadmin/internal/apiclient"
	"github.com/vbonduro/branchadmin/internal/config"
	"github.com/vbonduro/branchadmin/internal/db"
	"github.com/vbonduro/branchadmin/internal/logging"
	"github.com/vbonduro/branchadmin/internal/menu"
	"github.com/vbonduro/branchadmin/internal/session"
	"github.com/vbonduro/branchadmin/internal/storage"
	"github.com/vbonduro/branchadmin/internal/storage/bolt"
	"github.com/vbonduro/branchadmin/internal/storage/local"
	"github.com/vbonduro/branchadmin/internal/storage/sqlite"
)

const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

var errUsage = errors.New("usage error")

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("failed to load .env: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// app bundles what every subcommand needs.
type app struct {
	session *session.Session
	menu    *menu.Repository
	stdout  io.Writer
	stderr  io.Writer
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		printUsage(stderr)
		return exitUsage
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(stderr, "%v\n", err)
		return exitError
	}

	logger, cleanup, err := logging.New(cfg.LogLevel, cfg.LogFormat, cfg.LogFile)
	if err != nil {
		fmt.Fprintf(stderr, "failed to initialize logger: %v\n", err)
		return exitError
	}
	defer cleanup()

	store, closeStore, err := openStorage(cfg, logger)
	if err != nil {
		logger.Error("failed to open storage", "backend", cfg.StorageBackend, "error", err)
		return exitError
	}
	defer closeStore()

	authClient := apiclient.New(cfg.APIBaseURL, nil, cfg.HTTPTimeout, logger)
	navigator := session.NavigatorFunc(func(route string) {
		fmt.Fprintf(stderr, "signed out; run `branchadmin login <username> <password>` to sign in again (%s)\n", route)
	})
	logoutClient := apiclient.New(cfg.APIBaseURL, session.StoredToken{Store: store}, cfg.HTTPTimeout, logger)
	sess := session.New(store, authClient, session.NewAPITerminator(logoutClient), navigator, logger)
	sess.Restore(ctx)

	menuClient := apiclient.New(cfg.APIBaseURL, sess, cfg.HTTPTimeout, logger)

	a := &app{
		session: sess,
		menu:    menu.NewRepository(menuClient, logger),
		stdout:  stdout,
		stderr:  stderr,
	}

	if err := a.dispatch(ctx, args); err != nil {
		if errors.Is(err, errUsage) {
			fmt.Fprintf(stderr, "%v\n", err)
			printUsage(stderr)
			return exitUsage
		}
		logger.Error("command failed", "command", args[0], "error", err)
		fmt.Fprintf(stderr, "error: %v\n", err)
		return exitError
	}
	return exitOK
}

func openStorage(cfg *config.Config, logger *slog.Logger) (storage.Storage, func(), error) {
	switch cfg.StorageBackend {
	case "sqlite":
		database, err := db.Open(cfg.StoragePath)
		if err != nil {
			return nil, nil, err
		}
		closeFn := func() {
			if err := database.Close(); err != nil {
				logger.Error("failed to close database", "error", err)
			}
		}
		return sqlite.New(database), closeFn, nil
	case "bolt":
		store, err := bolt.Open(cfg.StoragePath)
		if err != nil {
			return nil, nil, err
		}
		closeFn := func() {
			if err := store.Close(); err != nil {
				logger.Error("failed to close bolt store", "error", err)
			}
		}
		return store, closeFn, nil
	case "local":
		store, err := local.New(cfg.StoragePath)
		if err != nil {
			return nil, nil, err
		}
		return store, func() {}, nil
	default:
		logger.Info("using in-memory storage; the session will not survive this process")
		return storage.NewMemory(), func() {}, nil
	}
}

func printUsage(w io.Writer) {
	fmt.Fprint(w, `usage:
  branchadmin login <username> <password>
  branchadmin logout
  branchadmin whoami
  branchadmin branches
  branchadmin can <branch-id> <view_only|full_access>
  branchadmin menu list <branch-id> [-category c] [-available]
  branchadmin menu create <branch-id> -name n -price p [-description d] [-image-url u] [-category c] [-available=false]
  branchadmin menu update <branch-id> <item-id> [-name n] [-price p] [-description d] [-image-url u] [-category c] [-available=false]
  branchadmin menu delete <branch-id> <item-id>
`)
}
