// Package ws delivers live subscriptions over websockets: one socket per
// stream, current state on open, one push per change. The socket is the
// subscription's lifetime; either side closing tears the other down.
package ws

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/dorukozerr/QuizMeSenpai-api/internal/app"
	"github.com/dorukozerr/QuizMeSenpai-api/internal/core"
	"github.com/dorukozerr/QuizMeSenpai-api/internal/domain"
)

const writeWait = 5 * time.Second

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

type Controller struct {
	rooms      *app.RoomService
	messages   *app.MessageService
	pingPeriod time.Duration
	readLimit  int64
}

func NewController(rooms *app.RoomService, messages *app.MessageService, pingPeriod time.Duration, readLimit int64) *Controller {
	return &Controller{
		rooms:      rooms,
		messages:   messages,
		pingPeriod: pingPeriod,
		readLimit:  readLimit,
	}
}

// currentUser mirrors the auth middleware's context key.
func currentUser(c *gin.Context) *domain.User {
	v, ok := c.Get("user")
	if !ok {
		return nil
	}
	user, _ := v.(*domain.User)
	return user
}

// HandleRoomState streams the room document: snapshot first, then a
// fresh read per mutation, null once the room stops resolving.
func (ctl *Controller) HandleRoomState(ctx context.Context, c *gin.Context) {
	roomID := domain.RoomID(c.Param("id"))
	open := func(ctx context.Context) (*core.Subscription[*domain.Room], error) {
		return ctl.rooms.Subscribe(ctx, currentUser(c), roomID)
	}
	serve(ctx, ctl, c, open)
}

// HandleRoomMessages streams the room's recent message list.
func (ctl *Controller) HandleRoomMessages(ctx context.Context, c *gin.Context) {
	roomID := domain.RoomID(c.Param("id"))
	open := func(ctx context.Context) (*core.Subscription[[]domain.Message], error) {
		return ctl.messages.Subscribe(ctx, currentUser(c), roomID)
	}
	serve(ctx, ctl, c, open)
}

// serve opens the subscription before upgrading, so validation failures
// still surface as plain HTTP errors.
func serve[T any](ctx context.Context, ctl *Controller, c *gin.Context, open func(context.Context) (*core.Subscription[T], error)) {
	ctx, cancel := context.WithCancel(ctx)

	sub, err := open(ctx)
	if err != nil {
		cancel()
		status := http.StatusInternalServerError
		switch {
		case errors.Is(err, core.ErrBadInput):
			status = http.StatusBadRequest
		case errors.Is(err, core.ErrUnauthorized):
			status = http.StatusUnauthorized
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "adapters.ws").Msg("upgrade failed")
		cancel()
		sub.Close()
		return
	}
	log.Info().Str("module", "adapters.ws").Str("path", c.Request.URL.Path).Msg("subscription socket open")

	go ctl.readPump(cancel, conn)
	go writePump(ctx, cancel, conn, sub, ctl.pingPeriod)
}

// readPump only watches for the client going away.
func (ctl *Controller) readPump(cancel context.CancelFunc, conn *websocket.Conn) {
	defer cancel()
	conn.SetReadLimit(ctl.readLimit)
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func writePump[T any](ctx context.Context, cancel context.CancelFunc, conn *websocket.Conn, sub *core.Subscription[T], pingPeriod time.Duration) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		cancel()
		sub.Close()
		_ = conn.Close()
		log.Info().Str("module", "adapters.ws").Msg("subscription socket closed")
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-sub.Events():
			if !ok {
				return
			}
			if ev.Err != nil {
				deadline := time.Now().Add(writeWait)
				msg := websocket.FormatCloseMessage(websocket.CloseInternalServerErr, "state read failed")
				_ = conn.WriteControl(websocket.CloseMessage, msg, deadline)
				return
			}
			if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if err := conn.WriteJSON(ev.Value); err != nil {
				log.Error().Err(err).Str("module", "adapters.ws").Msg("write error")
				return
			}
		case <-ticker.C:
			if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
