package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/MKhiriev/key-collection/internal/app"
	"github.com/MKhiriev/key-collection/internal/config"
	"github.com/MKhiriev/key-collection/internal/logger"
	"github.com/MKhiriev/key-collection/internal/service"
	"github.com/MKhiriev/key-collection/models"
)

var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

// Exit codes.
const (
	exitOK      = 0
	exitFailure = 1
	exitUsage   = 2
)

const usage = `usage:
  keycollection sync <location> [-s storage] [-n namespace] [-http addr] [-grpc addr] [-peers list]
  keycollection list <key> [-s storage] [-m minPeers] [-quorum-timeout d] [-peers list]
  keycollection version`

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	info := models.NewAppBuildInfo(buildVersion, buildDate, buildCommit)

	if len(args) == 0 {
		fmt.Fprintln(stderr, usage)
		return exitUsage
	}

	command := args[0]
	switch command {
	case "version":
		fmt.Fprintln(stdout, info)
		return exitOK
	case config.CommandSync, config.CommandList:
	default:
		fmt.Fprintf(stderr, "unknown command %q\n%s\n", command, usage)
		return exitUsage
	}

	cfg, positional, err := config.GetStructuredConfig(command, args[1:])
	if err != nil {
		fmt.Fprintf(stderr, "error getting configs: %v\n%s\n", err, usage)
		return exitUsage
	}

	log := logger.NewCLILogger("keycollection-"+command, cfg.App.LogLevel)
	log.Debug().Any("config", cfg).Msg("received configs")

	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGTERM,
		syscall.SIGINT,
		syscall.SIGQUIT,
	)
	defer stop()
	ctx = log.WithContext(ctx)

	a, err := app.NewApp(ctx, cfg, info, stdout, log)
	if err != nil {
		log.Error().Err(err).Msg("error creating app")
		return exitFailure
	}

	cmd := a.SyncCommand()
	if command == config.CommandList {
		cmd = a.ListCommand()
	}

	runErr := cmd.Run(ctx, positional)

	// teardown always runs before the exit code is decided
	if err = a.Close(); err != nil {
		log.Warn().Err(err).Msg("teardown finished with errors")
	}

	return exitCode(runErr, log)
}

func exitCode(err error, log *logger.Logger) int {
	var quorumErr *service.QuorumTimeoutError
	switch {
	case err == nil:
		return exitOK
	case errors.As(err, &quorumErr):
		log.Error().
			Int("min_peers", quorumErr.MinPeers).
			Int("peer_count", quorumErr.PeerCount).
			Dur("elapsed", quorumErr.Elapsed).
			Msg(app.MsgQuorumNotReached)
		return exitFailure
	case errors.Is(err, context.Canceled):
		log.Info().Msg("interrupted")
		return exitFailure
	case errors.Is(err, app.ErrMissingArgument):
		log.Error().Err(err).Msg(usage)
		return exitUsage
	default:
		log.Error().Err(err).Msg("command failed")
		return exitFailure
	}
}
