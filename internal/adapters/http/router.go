package http

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/cors"
	"github.com/rs/zerolog/log"

	"github.com/dorukozerr/QuizMeSenpai-api/internal/adapters/ws"
	"github.com/dorukozerr/QuizMeSenpai-api/internal/app"
	"github.com/dorukozerr/QuizMeSenpai-api/internal/config"
)

type Services struct {
	Auth      *app.AuthService
	Rooms     *app.RoomService
	Users     *app.UserService
	Questions *app.QuestionService
	Messages  *app.MessageService
}

// SetupRouter mounts the whole API. ctx outlives individual requests and
// bounds websocket subscriptions, which survive past handler return.
func SetupRouter(ctx context.Context, cfg *config.Config, svc Services) http.Handler {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())

	h := &handlers{
		auth:      svc.Auth,
		rooms:     svc.Rooms,
		users:     svc.Users,
		questions: svc.Questions,
		messages:  svc.Messages,
		devMode:   cfg.Mode == "debug",
	}
	wsCtrl := ws.NewController(svc.Rooms, svc.Messages, cfg.PingPeriod, cfg.ReadLimit)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")

	authGroup := api.Group("/auth")
	authGroup.POST("/otp", h.requestOtp)
	authGroup.POST("/verify", h.verifyOtp)

	protected := api.Group("", AuthMiddleware(svc.Auth))
	protected.POST("/auth/logout", h.logout)

	protected.PATCH("/users/me", h.updateUsername)
	protected.GET("/users/:id/username", h.getUsername)

	protected.GET("/questions", h.myQuestions)
	protected.POST("/questions", h.createQuestion)

	protected.POST("/rooms/enter", h.enterRoom)
	protected.POST("/rooms/leave", h.leaveRoom)

	room := protected.Group("/rooms/:id")
	room.POST("/admin", h.assignNewAdmin)
	room.POST("/kick", h.kickUser)
	room.POST("/settings", h.changeGameSettings)
	room.POST("/questions", h.setQuestions)
	room.POST("/ready", h.toggleReady)
	room.POST("/messages", h.sendMessage)

	protected.GET("/ws/rooms/:id", func(c *gin.Context) {
		wsCtrl.HandleRoomState(ctx, c)
	})
	protected.GET("/ws/rooms/:id/messages", func(c *gin.Context) {
		wsCtrl.HandleRoomMessages(ctx, c)
	})

	log.Info().Str("module", "adapters.http").Msg("router setup")

	co := cors.New(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	})
	return co.Handler(r)
}
