package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/dorukozerr/QuizMeSenpai-api/internal/app"
	"github.com/dorukozerr/QuizMeSenpai-api/internal/core"
	"github.com/dorukozerr/QuizMeSenpai-api/internal/domain"
)

type handlers struct {
	auth      *app.AuthService
	rooms     *app.RoomService
	users     *app.UserService
	questions *app.QuestionService
	messages  *app.MessageService
	devMode   bool
}

func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, core.ErrBadInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, core.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
	case errors.Is(err, core.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, core.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": "conflict"})
	case errors.Is(err, core.ErrTimeout):
		c.JSON(http.StatusRequestTimeout, gin.H{"error": "expired"})
	default:
		log.Error().Err(err).Str("module", "adapters.http").Msg("internal error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

type otpRequest struct {
	PhoneNumber string `json:"phoneNumber" binding:"required"`
}

func (h *handlers) requestOtp(c *gin.Context) {
	var req otpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	code, err := h.auth.RequestOtp(c.Request.Context(), req.PhoneNumber)
	if err != nil {
		respondError(c, err)
		return
	}
	resp := gin.H{"success": true}
	if h.devMode {
		// Without an SMS provider wired, debug runs hand the code back.
		resp["code"] = code
	}
	c.JSON(http.StatusOK, resp)
}

type verifyRequest struct {
	PhoneNumber string `json:"phoneNumber" binding:"required"`
	Code        string `json:"code" binding:"required"`
}

func (h *handlers) verifyOtp(c *gin.Context) {
	var req verifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	user, token, err := h.auth.VerifyOtp(c.Request.Context(), req.PhoneNumber, req.Code)
	if err != nil {
		respondError(c, err)
		return
	}
	c.SetCookie("token", token, int((7 * 24 * 3600)), "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"user": user, "token": token})
}

func (h *handlers) logout(c *gin.Context) {
	c.SetCookie("token", "", -1, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

type updateUsernameRequest struct {
	Username string `json:"username" binding:"required"`
}

func (h *handlers) updateUsername(c *gin.Context) {
	var req updateUsernameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if err := h.users.UpdateUsername(c.Request.Context(), currentUser(c), req.Username); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *handlers) getUsername(c *gin.Context) {
	username, err := h.users.GetUsername(c.Request.Context(), currentUser(c), domain.UserID(c.Param("id")))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"username": username})
}

type createQuestionRequest struct {
	Question           string   `json:"question" binding:"required"`
	Answers            []string `json:"answers" binding:"required"`
	CorrectAnswerIndex *int     `json:"correctAnswerIndex" binding:"required"`
}

func (h *handlers) createQuestion(c *gin.Context) {
	var req createQuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	q, err := h.questions.Create(c.Request.Context(), currentUser(c), req.Question, req.Answers, *req.CorrectAnswerIndex)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, q)
}

func (h *handlers) myQuestions(c *gin.Context) {
	questions, err := h.questions.Mine(c.Request.Context(), currentUser(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, questions)
}

type roomNameRequest struct {
	RoomName string `json:"roomName" binding:"required"`
}

func (h *handlers) enterRoom(c *gin.Context) {
	var req roomNameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	roomID, err := h.rooms.EnterRoom(c.Request.Context(), currentUser(c), req.RoomName)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "roomId": roomID})
}

func (h *handlers) leaveRoom(c *gin.Context) {
	var req roomNameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if err := h.rooms.LeaveRoom(c.Request.Context(), currentUser(c), req.RoomName); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

type assignAdminRequest struct {
	NewAdminID string `json:"newAdminId" binding:"required"`
}

func (h *handlers) assignNewAdmin(c *gin.Context) {
	var req assignAdminRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	err := h.rooms.AssignNewAdmin(c.Request.Context(), currentUser(c), domain.RoomID(c.Param("id")), domain.UserID(req.NewAdminID))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

type kickUserRequest struct {
	KickedUser string `json:"kickedUser" binding:"required"`
}

func (h *handlers) kickUser(c *gin.Context) {
	var req kickUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	err := h.rooms.KickUser(c.Request.Context(), currentUser(c), domain.RoomID(c.Param("id")), domain.UserID(req.KickedUser))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

type changeSettingRequest struct {
	SettingKey string `json:"settingKey" binding:"required"`
	NewValue   *int   `json:"newValue" binding:"required"`
}

func (h *handlers) changeGameSettings(c *gin.Context) {
	var req changeSettingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	err := h.rooms.ChangeGameSettings(c.Request.Context(), currentUser(c), domain.RoomID(c.Param("id")), domain.SettingKey(req.SettingKey), *req.NewValue)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

type setQuestionsRequest struct {
	QuestionIDs []string `json:"questionIds" binding:"required"`
}

func (h *handlers) setQuestions(c *gin.Context) {
	var req setQuestionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	ids := make([]domain.QuestionID, 0, len(req.QuestionIDs))
	for _, id := range req.QuestionIDs {
		ids = append(ids, domain.QuestionID(id))
	}
	err := h.rooms.SetQuestions(c.Request.Context(), currentUser(c), domain.RoomID(c.Param("id")), ids)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *handlers) toggleReady(c *gin.Context) {
	if err := h.rooms.ToggleReady(c.Request.Context(), currentUser(c), domain.RoomID(c.Param("id"))); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

type sendMessageRequest struct {
	Message string `json:"message" binding:"required"`
}

func (h *handlers) sendMessage(c *gin.Context) {
	var req sendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	err := h.messages.Send(c.Request.Context(), currentUser(c), domain.RoomID(c.Param("id")), req.Message)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
