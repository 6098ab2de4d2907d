package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/kazhorse/line-realestate-bot/internal/config"
	"github.com/kazhorse/line-realestate-bot/internal/handler"
	"github.com/kazhorse/line-realestate-bot/internal/handler/line"
	"github.com/kazhorse/line-realestate-bot/internal/model/intake"
	intakeservice "github.com/kazhorse/line-realestate-bot/internal/service/intake"
	"github.com/kazhorse/line-realestate-bot/internal/service/recommend"
	"github.com/kazhorse/line-realestate-bot/internal/service/session"
	"github.com/line/line-bot-sdk-go/v8/linebot/messaging_api"
	"github.com/redis/go-redis/v9"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("warning: failed to load .env file: %v", err)
		log.Println("continuing with system environment variables only")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	chatModel, err := cfg.AI.NewChatModel(ctx)
	if err != nil {
		log.Fatalf("failed to create chat model: %v", err)
	}

	recommendSvc, err := recommend.NewService(ctx, chatModel, recommend.Config{
		Timeout: time.Duration(cfg.AI.Timeout) * time.Second,
	})
	if err != nil {
		log.Fatalf("failed to initialize recommendation service: %v", err)
	}

	store := newSessionStore(cfg.Session)
	intakeSvc := intakeservice.NewService(store, recommendSvc, intake.Questions())

	bot, err := messaging_api.NewMessagingApiAPI(cfg.Line.ChannelToken)
	if err != nil {
		log.Fatalf("failed to create LINE messaging client: %v", err)
	}

	webhookHandler := line.New(cfg.Line.ChannelSecret, intakeSvc, line.NewLineReplier(bot))
	router := handler.NewRouter(webhookHandler)

	startServer(ctx, cfg.Server, router)
}

// newSessionStore は REDIS_ADDR の有無でストア実装を選ぶ。
func newSessionStore(cfg config.SessionConfig) session.Store {
	if !cfg.RedisEnabled() {
		log.Println("REDIS_ADDR 未設定のためインメモリのセッションストアを使用します")
		return session.NewMemoryStore()
	}

	client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})

	pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		log.Fatalf("failed to connect to redis at %s: %v", cfg.RedisAddr, err)
	}

	log.Printf("using redis session store: addr=%s ttl=%s", cfg.RedisAddr, cfg.TTL)
	return session.NewRedisStore(client, cfg.TTL)
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler) {
	addr := serverCfg.Addr
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Printf("LINE real estate bot listening on %s", addr)
	if err := runServer(ctx, srv); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
