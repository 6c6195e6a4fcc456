package web

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/KirkDiggler/mafia/internal/models"
	"github.com/KirkDiggler/mafia/internal/services/game"
	"github.com/KirkDiggler/mafia/internal/services/messaging"
	"github.com/KirkDiggler/mafia/internal/services/scheduler"
	"github.com/gin-gonic/gin"
	"github.com/skip2/go-qrcode"
	"k8s.io/klog/v2"
)

// qrSize is the edge of the join QR code in pixels
const qrSize = 256

func roomCode(c *gin.Context) string {
	return strings.ToUpper(strings.TrimSpace(c.Param("code")))
}

// listRoles serves the role catalog for rules screens
func (h *Handler) listRoles(c *gin.Context) {
	c.JSON(http.StatusOK, &roleListResponse{Roles: models.Roles()})
}

func (h *Handler) createRoom(c *gin.Context) {
	var req createRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	ctx := c.Request.Context()
	out, err := h.game.CreateRoom(ctx, &game.CreateRoomInput{
		CreatorID: req.PlayerID,
		Username:  req.Username,
		AISeats:   req.AISeats,
	})
	if err != nil {
		h.fail(c, err)
		return
	}

	resp := &roomResponse{
		Room:     out.Room.ViewFor(out.PlayerID),
		PlayerID: out.PlayerID,
	}
	if notice, err := h.messaging.GetJoinMessage(ctx, &messaging.GetJoinMessageInput{
		Username: out.Room.FindPlayer(out.PlayerID).Username,
		Created:  true,
	}); err == nil {
		resp.Notice = &Notice{Title: notice.Title, Message: notice.Message}
	}

	c.JSON(http.StatusCreated, resp)
}

func (h *Handler) joinRoom(c *gin.Context) {
	var req joinRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	ctx := c.Request.Context()
	out, err := h.game.JoinRoom(ctx, &game.JoinRoomInput{
		Code:     roomCode(c),
		PlayerID: req.PlayerID,
		Username: req.Username,
	})
	if err != nil {
		h.fail(c, err)
		return
	}

	resp := &roomResponse{
		Room:          out.Room.ViewFor(out.PlayerID),
		PlayerID:      out.PlayerID,
		AlreadyJoined: out.AlreadyJoined,
	}
	if notice, err := h.messaging.GetJoinMessage(ctx, &messaging.GetJoinMessageInput{
		Username:      out.Room.FindPlayer(out.PlayerID).Username,
		AlreadyJoined: out.AlreadyJoined,
	}); err == nil {
		resp.Notice = &Notice{Title: notice.Title, Message: notice.Message}
	}

	c.JSON(http.StatusOK, resp)
}

func (h *Handler) getRoom(c *gin.Context) {
	playerID := c.Query("player_id")
	if playerID == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, &errorResponse{Error: "player_id is required"})
		return
	}

	out, err := h.game.GetRoom(c.Request.Context(), &game.GetRoomInput{
		Code:     roomCode(c),
		PlayerID: playerID,
	})
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, &roomResponse{Room: out.Room})
}

func (h *Handler) startGame(c *gin.Context) {
	var req playerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	ctx := c.Request.Context()
	out, err := h.game.StartGame(ctx, &game.StartGameInput{
		Code:     roomCode(c),
		PlayerID: req.PlayerID,
	})
	if err != nil {
		h.fail(c, err)
		return
	}

	h.startTimer(out.Room)
	c.JSON(http.StatusOK, &roomResponse{
		Room:   out.Room.ViewFor(req.PlayerID),
		Notice: h.phaseNotice(ctx, out.Room),
	})
}

func (h *Handler) advancePhase(c *gin.Context) {
	var req playerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	ctx := c.Request.Context()
	out, err := h.game.AdvancePhase(ctx, &game.AdvancePhaseInput{
		Code:     roomCode(c),
		PlayerID: req.PlayerID,
	})
	if err != nil {
		h.fail(c, err)
		return
	}

	resp := &roomResponse{Room: out.Room.ViewFor(req.PlayerID)}
	if out.Transitioned {
		h.startTimer(out.Room)
		resp.Notice = h.phaseNotice(ctx, out.Room)
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) submitNightAction(c *gin.Context) {
	var req targetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	ctx := c.Request.Context()
	code := roomCode(c)
	out, err := h.game.SubmitNightAction(ctx, &game.SubmitNightActionInput{
		Code:     code,
		PlayerID: req.PlayerID,
		TargetID: req.TargetID,
	})
	if err != nil {
		h.fail(c, err)
		return
	}

	resp := &actionResponse{Action: out.Action}
	if notice, err := h.messaging.GetSubmissionMessage(ctx, &messaging.GetSubmissionMessageInput{
		Kind:       messaging.SubmissionNightAction,
		Action:     out.Action.Action,
		TargetName: h.playerName(ctx, code, req.PlayerID, req.TargetID),
	}); err == nil {
		resp.Notice = &Notice{Title: notice.Title, Message: notice.Message}
	}

	c.JSON(http.StatusOK, resp)
}

func (h *Handler) submitVote(c *gin.Context) {
	var req targetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	ctx := c.Request.Context()
	code := roomCode(c)
	out, err := h.game.SubmitVote(ctx, &game.SubmitVoteInput{
		Code:     code,
		VoterID:  req.PlayerID,
		TargetID: req.TargetID,
	})
	if err != nil {
		h.fail(c, err)
		return
	}

	resp := &voteResponse{Vote: out.Vote}
	if notice, err := h.messaging.GetSubmissionMessage(ctx, &messaging.GetSubmissionMessageInput{
		Kind:       messaging.SubmissionVote,
		TargetName: h.playerName(ctx, code, req.PlayerID, req.TargetID),
	}); err == nil {
		resp.Notice = &Notice{Title: notice.Title, Message: notice.Message}
	}

	c.JSON(http.StatusOK, resp)
}

func (h *Handler) sendMessage(c *gin.Context) {
	var req messageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	out, err := h.game.SendMessage(c.Request.Context(), &game.SendMessageInput{
		Code:     roomCode(c),
		PlayerID: req.PlayerID,
		Text:     req.Text,
	})
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, &messageResponse{Message: out.Message})
}

// qrCode renders the room's join link as a PNG
func (h *Handler) qrCode(c *gin.Context) {
	code := roomCode(c)
	if _, err := h.game.GetRoom(c.Request.Context(), &game.GetRoomInput{Code: code}); err != nil {
		h.fail(c, err)
		return
	}

	png, err := qrcode.Encode(h.joinURL(code), qrcode.Medium, qrSize)
	if err != nil {
		h.fail(c, fmt.Errorf("failed to encode qr code: %w", err))
		return
	}

	c.Data(http.StatusOK, "image/png", png)
}

func (h *Handler) joinURL(code string) string {
	return strings.TrimRight(h.publicURL, "/") + "/?room=" + url.QueryEscape(code)
}

// startTimer hands a room in a timed phase to the scheduler
func (h *Handler) startTimer(room *models.Room) {
	if !room.Phase.IsTimed() {
		return
	}
	if _, err := h.scheduler.Start(&scheduler.StartInput{Code: room.Code, HostID: room.HostID}); err != nil {
		klog.Errorf("Failed to start timer for room %s: %v", room.Code, err)
	}
}

func (h *Handler) phaseNotice(ctx context.Context, room *models.Room) *Notice {
	out, err := h.messaging.GetPhaseMessage(ctx, &messaging.GetPhaseMessageInput{Room: room})
	if err != nil {
		return nil
	}
	return &Notice{Title: out.Title, Message: out.Message}
}

// playerName looks up a username for a notice, falling back to the id
func (h *Handler) playerName(ctx context.Context, code, viewerID, playerID string) string {
	out, err := h.game.GetRoom(ctx, &game.GetRoomInput{Code: code, PlayerID: viewerID})
	if err != nil {
		return playerID
	}
	if p := out.Room.FindPlayer(playerID); p != nil {
		return p.Username
	}
	return playerID
}
