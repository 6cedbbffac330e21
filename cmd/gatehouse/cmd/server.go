package cmd

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"

	"github.com/jmcleod/gatehouse/api"
	"github.com/jmcleod/gatehouse/credential"
	"github.com/jmcleod/gatehouse/session"
	bboltstorage "github.com/jmcleod/gatehouse/storage/bbolt"
	memorystorage "github.com/jmcleod/gatehouse/storage/memory"
)

var (
	port    int
	dataDir string
	tlsCert string
	tlsKey  string
	noSeed  bool
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the admin session service",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := os.MkdirAll(dataDir, 0o700); err != nil {
			return fmt.Errorf("failed to create data directory: %w", err)
		}

		db, err := bboltstorage.Open(dataDir+"/gatehouse.db", nil)
		if err != nil {
			return fmt.Errorf("failed to open storage: %w", err)
		}
		defer db.Close()

		logger := slog.New(slog.NewJSONHandler(os.Stderr, nil))

		users := credential.NewStore(
			bboltstorage.NewSlot(db, "users"),
			credential.WithStoreLogger(logger),
		)
		if !noSeed {
			if err := credential.Seed(users); err != nil {
				return fmt.Errorf("failed to seed users: %w", err)
			}
		}

		// The token slot is durable (the cookie jar); the state slot is
		// process-scoped (the tab storage), so a restart exercises full
		// rehydration from the token.
		sessions := session.NewManager(
			users,
			bboltstorage.NewSlot(db, "tokens"),
			memorystorage.NewSlot(),
			session.WithLogger(logger),
		)

		a := api.New(users, sessions, api.WithLogger(logger))

		r := chi.NewRouter()
		r.Use(middleware.Logger)
		r.Use(middleware.Recoverer)

		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("OK"))
		})

		r.Mount("/api/v1", a.Router())

		server := &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           r,
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       60 * time.Second,
		}

		useTLS := tlsCert != "" && tlsKey != ""
		if useTLS {
			cert, err := tls.LoadX509KeyPair(tlsCert, tlsKey)
			if err != nil {
				return fmt.Errorf("failed to load TLS key pair: %w", err)
			}
			server.TLSConfig = &tls.Config{
				Certificates: []tls.Certificate{cert},
				MinVersion:   tls.VersionTLS12,
			}
		} else {
			fmt.Println("No TLS key pair given; serving plain HTTP. The session token assumes secure transport — terminate TLS upstream.")
		}

		done := make(chan error, 1)
		go func() {
			var err error
			if useTLS {
				err = server.ListenAndServeTLS("", "")
			} else {
				err = server.ListenAndServe()
			}
			if err != nil && !errors.Is(err, http.ErrServerClosed) {
				done <- fmt.Errorf("server failed: %w", err)
				return
			}
			done <- nil
		}()

		fmt.Printf("Starting server on port %d (data: %s)...\n", port, dataDir)

		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

		select {
		case sig := <-quit:
			fmt.Printf("\nReceived %s, shutting down...\n", sig)
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := server.Shutdown(ctx); err != nil {
				return fmt.Errorf("server shutdown failed: %w", err)
			}
			return nil
		case err := <-done:
			return err
		}
	},
}

func init() {
	rootCmd.AddCommand(serverCmd)
	serverCmd.Flags().IntVarP(&port, "port", "p", 8443, "Port to listen on")
	serverCmd.Flags().StringVar(&dataDir, "data-dir", "./data", "Directory for persistent data")
	serverCmd.Flags().StringVar(&tlsCert, "tls-cert", "", "Path to TLS certificate file")
	serverCmd.Flags().StringVar(&tlsKey, "tls-key", "", "Path to TLS key file")
	serverCmd.Flags().BoolVar(&noSeed, "no-seed", false, "Skip creating the default records on first run")
}
