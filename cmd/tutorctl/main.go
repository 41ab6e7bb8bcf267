// Command tutorctl is the terminal client of the Tutoplus portal. It signs
// in against the API, keeps the session in a local file and exposes the
// student, tutor and back-office screens as subcommands.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/iliyamo/tutoplus/internal/config"
	"github.com/iliyamo/tutoplus/internal/gateway"
	"github.com/iliyamo/tutoplus/internal/logger"
)

func main() {
	cfg, err := config.LoadClientConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	log := logger.New(cfg.Env)
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cli := &commandLine{
		cfg:   cfg,
		gw:    gateway.Connect(cfg.APIURL),
		store: sessionStore{path: cfg.SessionFile},
		term:  &terminal{in: bufio.NewReader(os.Stdin), out: os.Stdout},
		out:   os.Stdout,
		now:   time.Now,
		log:   log,
	}
	if err := cli.run(ctx, os.Args); err != nil {
		if !errors.Is(err, errHelp) {
			fmt.Fprintf(os.Stderr, "error: %s\n", err)
		}
		os.Exit(1)
	}
}
