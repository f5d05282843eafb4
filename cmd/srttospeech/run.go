package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/minthantoo333/srttospeech/pkg/bus"
	"github.com/minthantoo333/srttospeech/pkg/channels"
	"github.com/minthantoo333/srttospeech/pkg/config"
	"github.com/minthantoo333/srttospeech/pkg/dispatch"
	"github.com/minthantoo333/srttospeech/pkg/health"
	"github.com/minthantoo333/srttospeech/pkg/logger"
	"github.com/minthantoo333/srttospeech/pkg/speech"
)

// runner holds the initialized bot components so startup and shutdown
// stay in one place.
type runner struct {
	cfg            *config.Config
	msgBus         *bus.MessageBus
	channelManager *channels.Manager
	dispatcher     *dispatch.Dispatcher
	synth          speech.Synthesizer
	healthServer   *health.Server
	ctx            context.Context
	cancel         context.CancelFunc
}

func runCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Start the bot",
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := createRunner()
			if err != nil {
				return err
			}

			sigChan := make(chan os.Signal, 1)
			signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

			errCh := make(chan error, 1)
			go func() {
				errCh <- r.run()
			}()

			select {
			case err := <-errCh:
				r.stop()
				return err
			case <-sigChan:
				r.stop()
				return nil
			}
		},
	}
}

func createRunner() (*runner, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("error loading config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	msgBus := bus.NewMessageBus()

	channelManager, err := channels.NewManager(cfg, msgBus)
	if err != nil {
		return nil, fmt.Errorf("error creating channel manager: %w", err)
	}

	synth := speech.NewHTTPSynthesizer(cfg.TTS.APIBase, cfg.TTS.APIKey, cfg.TTS.Model, cfg.TTSTimeout())
	dispatcher := dispatch.New(cfg, msgBus, synth, channelManager)

	var healthServer *health.Server
	if cfg.Health.Enabled {
		healthServer = health.NewServer(cfg.Health.Port, formatVersion())
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &runner{
		cfg:            cfg,
		msgBus:         msgBus,
		channelManager: channelManager,
		dispatcher:     dispatcher,
		synth:          synth,
		healthServer:   healthServer,
		ctx:            ctx,
		cancel:         cancel,
	}, nil
}

// run starts all services and blocks until the context is cancelled.
func (r *runner) run() error {
	logger.InfoCF("main", "Starting srttospeech", map[string]any{
		"version": formatVersion(),
	})

	if r.healthServer != nil {
		if err := r.healthServer.Start(r.ctx); err != nil {
			return fmt.Errorf("error starting health server: %w", err)
		}
	}

	if err := r.channelManager.StartAll(r.ctx); err != nil {
		return fmt.Errorf("error starting channels: %w", err)
	}

	if !r.synth.IsAvailable() {
		logger.WarnCF("main", "Speech backend not reachable, synthesis will fail until it is up", map[string]any{
			"api_base": r.cfg.TTS.APIBase,
		})
	}

	fmt.Printf("✓ Bot started, channels: %v\n", r.channelManager.Running())
	fmt.Println("Press Ctrl+C to stop")

	return r.dispatcher.Run(r.ctx)
}

// stop cancels the run context and gives in-flight synthesis a moment
// to finish before exiting.
func (r *runner) stop() {
	logger.InfoC("main", "Shutting down...")
	fmt.Println("\nShutting down...")

	r.cancel()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	r.channelManager.StopAll(ctx)
	r.msgBus.Close()

	logger.InfoC("main", "Shutdown complete")
}
