package web

import (
	"errors"
	"net/http"

	"github.com/KirkDiggler/mafia/internal/services/game"
	"github.com/KirkDiggler/mafia/internal/services/messaging"
	"github.com/gin-gonic/gin"
	"k8s.io/klog/v2"
)

var (
	ErrNilConfig      = errors.New("config cannot be nil")
	ErrNilGameService = errors.New("game service cannot be nil")
	ErrNilScheduler   = errors.New("scheduler cannot be nil")
	ErrNilMessaging   = errors.New("messaging service cannot be nil")
)

// statusFor maps a service error onto an HTTP status
func statusFor(err error) int {
	switch {
	case errors.Is(err, game.ErrRoomNotFound), errors.Is(err, game.ErrPlayerNotFound):
		return http.StatusNotFound
	case errors.Is(err, game.ErrNotHost):
		return http.StatusForbidden
	case errors.Is(err, game.ErrPhaseConflict),
		errors.Is(err, game.ErrRoomFull),
		errors.Is(err, game.ErrInvalidPlayerCount),
		errors.Is(err, game.ErrPlayerDead):
		return http.StatusConflict
	case errors.Is(err, game.ErrInvalidUsername),
		errors.Is(err, game.ErrEmptyMessage),
		errors.Is(err, game.ErrInvalidTarget),
		errors.Is(err, game.ErrNoNightAction):
		return http.StatusBadRequest
	case errors.Is(err, game.ErrStorageFailure), errors.Is(err, game.ErrRoomExists):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// fail writes err with its advisory
func (h *Handler) fail(c *gin.Context, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		klog.Errorf("%s %s: %v", c.Request.Method, c.FullPath(), err)
	}

	resp := &errorResponse{Error: err.Error()}
	notice, noticeErr := h.messaging.GetErrorMessage(c.Request.Context(), &messaging.GetErrorMessageInput{Err: err})
	if noticeErr == nil {
		resp.Notice = &Notice{Title: notice.Title, Message: notice.Message}
	}

	c.AbortWithStatusJSON(status, resp)
}

// badRequest rejects a body that could not be decoded
func badRequest(c *gin.Context, err error) {
	c.AbortWithStatusJSON(http.StatusBadRequest, &errorResponse{Error: err.Error()})
}
