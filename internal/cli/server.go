package cli

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"quizreel-web/internal/backend"
	"quizreel-web/internal/config"
	"quizreel-web/internal/infra/memory"
	rediscache "quizreel-web/internal/infra/redis"
	"quizreel-web/internal/playback"
	"quizreel-web/internal/results"
	transport "quizreel-web/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the playback server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	backendTimeout := config.TTLDuration(cfg.Backend.Timeout, 10*time.Second)
	client := backend.New(cfg.Backend.BaseURL, backendTimeout)

	quizTTL := config.TTLDuration(cfg.Quiz.TTL, 10*time.Minute)
	var quizzes transport.QuizSource
	if cfg.Redis.Addr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		quizzes = rediscache.NewQuizCache(redisClient, client, quizTTL)
	} else {
		quizzes = memory.NewQuizCache(client, quizTTL)
	}

	telemetry := backend.NewTelemetry(client)
	aggregator := results.NewAggregator(client)
	wsHandler := transport.NewWSHandler(quizzes, aggregator, telemetry, telemetry, tuningFromConfig(cfg.Playback))

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("/play", wsHandler.ServeWS)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Printf("starting playback server on :%s", finalPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("failed to start server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Println("shutting down server...")
	case <-ctx.Done():
		log.Println("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// tuningFromConfig maps YAML playback settings onto engine tuning; unset
// fields keep the engine defaults.
func tuningFromConfig(p config.Playback) playback.Tuning {
	t := playback.DefaultTuning()
	if p.AnswerSeconds > 0 {
		t.AnswerSeconds = p.AnswerSeconds
	}
	t.AdvanceDelay = config.TTLDuration(p.AdvanceDelay, t.AdvanceDelay)
	t.TextSettleDelay = config.TTLDuration(p.TextSettleDelay, t.TextSettleDelay)
	t.TickInterval = config.TTLDuration(p.TickInterval, t.TickInterval)
	return t
}
