package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Netflix/go-env"
	"github.com/blugelabs/bluge"
	"github.com/dgraph-io/badger/v4"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"

	"campushub/auth"
	"campushub/domain"
	"campushub/infrastructure/ws"
	"campushub/internal"
	"campushub/moderation"
	"campushub/observability"
	"campushub/projection"
	"campushub/repositories"
	"campushub/runtime"
	"campushub/runtime/workers"
	"campushub/search"
	"campushub/services"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

// run initializes all components, manages the server lifecycle, and centralizes error reporting.
// This pattern is preferred over calling os.Exit or panic directly because:
// 1. It ensures all 'defer' statements (like database cleanup) are executed before the program exits.
// 2. It improves testability by decoupling the initialization logic from the main entry point.
// 3. It provides a structured way to handle graceful shutdowns for the HTTP server and background workers.
func run() error {
	// 1. Configuration & Logger
	_ = godotenv.Load()
	var config internal.Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	log := logs.GetLoggerFromString(config.LogLevel)

	// 2. Storage (BadgerDB + Bluge index)
	db, err := badger.Open(badger.DefaultOptions(config.BadgerFilepath).
		WithLoggingLevel(badger.INFO))
	if err != nil {
		return fmt.Errorf("database opening failed: %w", err)
	}
	//  Defer will be executed before run() returned anything to main()
	defer func() {
		log.Info("Closing BadgerDB...")
		_ = db.Close()
	}()

	blugeWriter, err := bluge.OpenWriter(bluge.DefaultConfig(config.BlugeFilepath))
	if err != nil {
		return fmt.Errorf("search index opening failed: %w", err)
	}

	// 3. Moderation
	censored, err := moderation.NewCensoredLoader().LoadAll()
	if err != nil {
		return fmt.Errorf("censored wordlists loading failed: %w", err)
	}
	log.Info("Censored wordlists loaded",
		"languages", censored.Languages, "words", len(censored.Words))

	replacement, err := internal.CharacterRune(config.CharReplacement)
	if err != nil {
		return err
	}
	moderator, err := moderation.NewModerator(censored.Words, replacement, log)
	if err != nil {
		return fmt.Errorf("moderator initialization failed: %w", err)
	}

	// 4. Runtime: registry, taps, telemetry
	monitoring := observability.NewMonitoringManager(log)
	registry := runtime.NewRegistry(log, config.SinkTimeout, monitoring)
	timeline := projection.NewTimeline(config.TimelineSize)
	index := search.NewMessageIndex(blugeWriter, log)
	defer func() {
		log.Info("Closing search index...")
		_ = index.Close()
	}()
	registry.AddTap(timeline, index)

	// 5. Repositories & Services
	conversations := repositories.NewConversationRepository(db, log)
	messages := repositories.NewMessageRepository(db, log)
	notifications := repositories.NewNotificationRepository(db, log)
	preferences := repositories.NewPreferenceRepository(db, log)
	directory := repositories.NewDirectoryRepository(db, log)

	notificationService := services.NewNotificationService(
		log, registry, notifications, preferences, directory, monitoring)
	messagingService := services.NewMessagingService(
		log, registry, conversations, messages, notificationService,
		&moderator, monitoring, domain.ParseReadPolicy(config.ReadPolicy))

	// 6. Transport
	gate := auth.NewGate(config.JWTSecret)
	dispatcher := ws.NewDispatcher(log, messagingService, notificationService)
	server := ws.NewServer(log, gate, registry, dispatcher, monitoring, ws.Config{
		HandshakeTimeout: config.HandshakeTimeout,
		PingInterval:     config.PingInterval,
		PongTimeout:      config.PongTimeout,
		BufferSize:       config.ConnectionBufferSize,
	})

	// 7. Context & Signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 8. Supervised background workers
	sup := workers.NewSupervisor(log, config.RestartInterval)
	sup.Add(
		workers.NewHealthMonitoringWorker(log, monitoring, config.MetricInterval),
		workers.NewHeartbeatWorker(log, server, config.HeartbeatInterval, config.SessionMaxIdle),
	)
	supDone := make(chan struct{})
	go func() {
		sup.Run(ctx)
		close(supDone)
	}()

	// 9. Debug surface
	debug := internal.NewDebugServer(log, db, monitoring, index, timeline)
	debug.Start(config.DebugPort)

	// 10. WebSocket endpoint
	mux := http.NewServeMux()
	mux.Handle("/ws", server)
	address := fmt.Sprintf("%s:%d", config.Host, config.Port)
	httpServer := &http.Server{Addr: address, Handler: mux}

	// Use an error channel to capture ListenAndServe() issues
	errChan := make(chan error, 1)
	go func() {
		log.Info("Starting WebSocket server", "address", address, "at", time.Now().UTC())
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("http server error: %w", err)
		}
	}()

	// 11. Wait for Stop or Error
	select {
	case <-ctx.Done():
		log.Info("Shutting down gracefully...")
	case err := <-errChan:
		return err
	}

	// 12. Final Cleanup
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = httpServer.Shutdown(shutdownCtx)
	sup.Stop()
	<-supDone
	log.Info("Program stopped cleanly")

	return nil
}
