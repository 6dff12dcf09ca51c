// Command partyracer runs the party racing session layer.
//
// It supports two modes:
//  1. "serve" – runs the relay server phones and game hosts connect to
//  2. "host"  – runs a headless game host that opens a room on a relay
//
// Flags control host/port, the scene directory, the save file location,
// and optional ngrok tunneling for easy external access during development.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
	"golang.ngrok.com/ngrok"
	ngrokConfig "golang.ngrok.com/ngrok/config"

	"partyracer/api"
	"partyracer/game/client"
	"partyracer/game/message"
	"partyracer/game/room"
	"partyracer/game/save"
	"partyracer/game/scene"
	"partyracer/game/session"
)

const (
	Version = "1.0.0"
	AppName = "Party Racer"
)

func main() {
	// Load .env if present; a missing file is the normal case.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "Warning: error loading .env file: %v\n", err)
	}

	cmd := &cli.Command{
		Name:    "partyracer",
		Usage:   "party racing session layer",
		Version: Version,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "debug",
				Usage:   "enable debug logging",
				Sources: cli.EnvVars("DEBUG"),
			},
		},
		Commands: []*cli.Command{
			serveCommand(),
			hostCommand(),
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// buildLogger constructs the process logger.
func buildLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "run the relay server",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "host",
				Value:   "localhost",
				Usage:   "HTTP server host",
				Sources: cli.EnvVars("HOST"),
			},
			&cli.IntFlag{
				Name:    "port",
				Value:   8080,
				Usage:   "HTTP server port",
				Sources: cli.EnvVars("PORT"),
			},
			&cli.IntFlag{
				Name:    "room-capacity",
				Value:   room.DefaultCodeCapacity,
				Usage:   "size of the room code space",
				Sources: cli.EnvVars("ROOM_CAPACITY"),
			},
			&cli.BoolFlag{
				Name:    "ngrok",
				Usage:   "expose the relay through an ngrok tunnel",
				Sources: cli.EnvVars("NGROK_ENABLED"),
			},
			&cli.StringFlag{
				Name:    "ngrok-auth",
				Usage:   "ngrok auth token",
				Sources: cli.EnvVars("NGROK_AUTHTOKEN"),
			},
			&cli.StringFlag{
				Name:    "ngrok-domain",
				Usage:   "custom ngrok domain",
				Sources: cli.EnvVars("NGROK_DOMAIN"),
			},
		},
		Action: runServe,
	}
}

func runServe(ctx context.Context, cmd *cli.Command) error {
	logger, err := buildLogger(cmd.Bool("debug"))
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	defer logger.Sync()

	rooms, err := room.NewManager(int(cmd.Int("room-capacity")), logger)
	if err != nil {
		return fmt.Errorf("failed to create room manager: %w", err)
	}
	server := api.NewServer(rooms, logger)

	addr := fmt.Sprintf("%s:%d", cmd.String("host"), cmd.Int("port"))
	httpServer := &http.Server{
		Addr:        addr,
		Handler:     server,
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		logger.Info("Relay listening",
			zap.String("addr", addr),
			zap.String("host_endpoint", fmt.Sprintf("ws://%s/host", addr)),
			zap.String("play_endpoint", fmt.Sprintf("ws://%s/play", addr)))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	if cmd.Bool("ngrok") {
		wg.Add(1)
		go func() {
			defer wg.Done()
			runNgrokTunnel(ctx, cmd, server, logger)
		}()
	}

	sig := <-stop
	logger.Info("Shutting down", zap.String("signal", sig.String()))
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", zap.Error(err))
	}

	wg.Wait()
	logger.Info("Relay stopped")
	return nil
}

// runNgrokTunnel serves the relay through an ngrok tunnel until the
// context is cancelled. Phones can then reach the room from anywhere.
func runNgrokTunnel(ctx context.Context, cmd *cli.Command, handler http.Handler, logger *zap.Logger) {
	authToken := cmd.String("ngrok-auth")
	if authToken == "" {
		logger.Warn("Ngrok enabled but no auth token provided, skipping tunnel")
		return
	}

	var tunnel ngrokConfig.Tunnel
	if domain := cmd.String("ngrok-domain"); domain != "" {
		tunnel = ngrokConfig.HTTPEndpoint(ngrokConfig.WithDomain(domain))
		logger.Info("Using custom ngrok domain", zap.String("domain", domain))
	} else {
		tunnel = ngrokConfig.HTTPEndpoint()
	}

	tun, err := ngrok.Listen(ctx, tunnel, ngrok.WithAuthtoken(authToken))
	if err != nil {
		logger.Error("Failed to start ngrok tunnel", zap.Error(err))
		return
	}
	defer tun.Close()

	logger.Info("Ngrok tunnel established", zap.String("url", tun.URL()))
	if err := http.Serve(tun, handler); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Warn("Ngrok server stopped", zap.Error(err))
	}
}

func hostCommand() *cli.Command {
	return &cli.Command{
		Name:  "host",
		Usage: "run a headless game host that opens a room on a relay",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "server-url",
				Value:   "ws://localhost:8080/host",
				Usage:   "relay host endpoint",
				Sources: cli.EnvVars("SERVER_URL"),
			},
			&cli.StringFlag{
				Name:    "scene-dir",
				Usage:   "directory of scene definition files (built-ins when empty)",
				Sources: cli.EnvVars("SCENE_DIR"),
			},
			&cli.StringFlag{
				Name:    "save-file",
				Value:   "partyracer-save.json",
				Usage:   "path of the save file",
				Sources: cli.EnvVars("SAVE_FILE"),
			},
		},
		Action: runHost,
	}
}

func runHost(ctx context.Context, cmd *cli.Command) error {
	logger, err := buildLogger(cmd.Bool("debug"))
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	defer logger.Sync()

	scenes, err := loadScenes(cmd.String("scene-dir"))
	if err != nil {
		return fmt.Errorf("failed to load scenes: %w", err)
	}

	saves := save.NewFile(cmd.String("save-file"))
	if err := saves.ReadFromDisk(); err != nil {
		logger.Warn("Failed to read save file, starting fresh", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// The relay client and the controller reference each other, so the
	// client dials through a forwarder whose target is set once the
	// controller exists.
	forwarder := &eventForwarder{}
	gc, err := client.Dial(ctx, cmd.String("server-url"), forwarder, logger)
	if err != nil {
		return fmt.Errorf("failed to connect to relay: %w", err)
	}
	defer gc.Close()

	controller := session.NewController(gc, scenes, session.InstantLoader{}, session.NopStage{}, saves, logger)
	forwarder.SetTarget(controller)
	go controller.Run(ctx)

	code, err := gc.WaitForRoomCode(ctx)
	if err != nil {
		return fmt.Errorf("relay never assigned a room code: %w", err)
	}
	fmt.Printf("Room code: %s\n", code)
	logger.Info("Hosting room", zap.String("room", code))

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-stop:
		logger.Info("Shutting down", zap.String("signal", sig.String()))
	case <-gc.Done():
		logger.Warn("Relay connection lost")
	}
	return nil
}

// loadScenes builds the scene registry from a directory, or from the
// built-in set when no directory is configured.
func loadScenes(dir string) (*scene.Manager, error) {
	if dir != "" {
		return scene.NewManager(dir)
	}
	return scene.NewManagerFromScenes(defaultScenes())
}

// defaultScenes is the built-in level set used when no scene directory is
// configured.
func defaultScenes() []scene.Scene {
	return []scene.Scene{
		{Index: 1, Name: "City Circuit", Layout: message.LayoutStandard, CountdownSeconds: 3},
		{Index: 2, Name: "Desert Sprint", Layout: message.LayoutStandard, CountdownSeconds: 3},
		{Index: 3, Name: "Rooftop Run", Layout: message.LayoutJump, CountdownSeconds: 3},
	}
}

// eventForwarder bridges the relay client to a controller created after
// the client. Events arriving before the target is set are dropped.
type eventForwarder struct {
	mu     sync.Mutex
	target client.Dispatcher
}

func (f *eventForwarder) SetTarget(target client.Dispatcher) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.target = target
}

func (f *eventForwarder) Dispatch(ev session.Event) {
	f.mu.Lock()
	target := f.target
	f.mu.Unlock()
	if target != nil {
		target.Dispatch(ev)
	}
}
