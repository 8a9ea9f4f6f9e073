// fmvd is the feature model analysis daemon: it parses uploaded models,
// generates logic rules and minimum working products, and validates
// selections submitted by fmv clients.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/vanderheijden86/fmv/pkg/server"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	addr := flag.String("addr", ":5000", "Listen address")
	dbPath := flag.String("db", ".fmv/sessions.db", "Session history database path (empty for in-memory)")
	versionFlag := flag.Bool("version", false, "Show version")
	flag.Parse()

	if *versionFlag {
		fmt.Printf("fmvd %s\n", Version)
		os.Exit(0)
	}

	logger := log.New(os.Stderr, "fmvd: ", log.LstdFlags)

	var (
		store *server.Store
		err   error
	)
	if *dbPath == "" {
		store, err = server.OpenMemoryStore()
	} else {
		store, err = server.OpenStore(*dbPath)
	}
	if err != nil {
		logger.Fatalf("open session store: %v", err)
	}
	defer store.Close()

	srv := &http.Server{
		Addr:              *addr,
		Handler:           server.New(store, logger).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Printf("listening on %s", *addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Fatalf("server error: %v", err)
	}
}
