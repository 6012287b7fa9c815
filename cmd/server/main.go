package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	httpapi "github.com/dorukozerr/QuizMeSenpai-api/internal/adapters/http"
	"github.com/dorukozerr/QuizMeSenpai-api/internal/adapters/memory"
	storemongo "github.com/dorukozerr/QuizMeSenpai-api/internal/adapters/mongo"
	"github.com/dorukozerr/QuizMeSenpai-api/internal/app"
	"github.com/dorukozerr/QuizMeSenpai-api/internal/config"
	"github.com/dorukozerr/QuizMeSenpai-api/internal/core"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	if cfg.Mode == "debug" {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	var (
		roomStore     core.RoomStore
		userStore     core.UserStore
		questionStore core.QuestionStore
		messageStore  core.MessageStore
		otpStore      core.OtpStore
	)
	if cfg.MongoURI != "" {
		store, err := storemongo.Connect(ctx, cfg.MongoURI, cfg.DBName, cfg.OtpTTL)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to mongodb")
		}
		defer func() {
			if err := store.Close(context.Background()); err != nil {
				log.Error().Err(err).Msg("mongodb disconnect")
			}
		}()
		roomStore, userStore, questionStore, messageStore, otpStore = store, store, store, store, store
	} else {
		log.Warn().Msg("no mongo_uri configured, state is volatile")
		store := memory.NewStore()
		roomStore, userStore, questionStore, messageStore, otpStore = store, store, store, store, store
	}

	bus := core.NewMemoryBus()
	svc := httpapi.Services{
		Auth:      app.NewAuthService(userStore, otpStore, cfg.JWTSecret, cfg.OtpTTL),
		Rooms:     app.NewRoomService(roomStore, bus),
		Users:     app.NewUserService(userStore, questionStore, messageStore),
		Questions: app.NewQuestionService(questionStore),
		Messages:  app.NewMessageService(messageStore, bus),
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: httpapi.SetupRouter(ctx, cfg, svc),
	}

	go func() {
		log.Info().Str("addr", addr).Msg("QuizMeSenpai server started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("server error")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	log.Info().Msg("Server exited gracefully")
}
