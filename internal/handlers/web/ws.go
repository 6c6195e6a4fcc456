package web

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/KirkDiggler/mafia/internal/models"
	"github.com/KirkDiggler/mafia/internal/services/game"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"k8s.io/klog/v2"
)

const (
	writeWait      = 5 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = pongWait * 9 / 10
	maxMessageSize = 512
)

// latest holds only the newest room snapshot; older ones are dropped
type latest struct {
	mu sync.Mutex
	c  chan *models.Room
}

func newLatest() *latest {
	return &latest{c: make(chan *models.Room, 1)}
}

func (l *latest) put(room *models.Room) {
	l.mu.Lock()
	defer l.mu.Unlock()
	select {
	case <-l.c:
	default:
	}
	l.c <- room
}

// stream pushes the player's view of the room on every change. The host's
// connections also own the room timer: it is resumed on connect and
// stopped when the host's last connection closes.
func (h *Handler) stream(c *gin.Context) {
	code := strings.ToUpper(strings.TrimSpace(c.Query("code")))
	playerID := c.Query("player_id")
	if code == "" || playerID == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, &errorResponse{Error: "code and player_id are required"})
		return
	}

	out, err := h.game.GetRoom(c.Request.Context(), &game.GetRoomInput{Code: code})
	if err != nil {
		h.fail(c, err)
		return
	}
	if out.Room.FindPlayer(playerID) == nil {
		h.fail(c, game.ErrPlayerNotFound)
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		klog.Warningf("Websocket upgrade failed for room %s: %v", code, err)
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	updates := newLatest()
	sub, err := h.game.Subscribe(ctx, &game.SubscribeInput{
		Code:     code,
		PlayerID: playerID,
		Callback: updates.put,
	})
	if err != nil {
		klog.Errorf("Failed to subscribe %s to room %s: %v", playerID, code, err)
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseInternalServerErr, "subscribe failed"),
			time.Now().Add(writeWait))
		return
	}
	defer sub.Unsubscribe()

	if out.Room.HostID == playerID {
		h.hostConnected(out.Room)
		defer h.hostDisconnected(code)
	}

	klog.V(1).Infof("Player %s connected to room %s", playerID, code)
	go readPump(conn, cancel)
	h.writePump(ctx, conn, updates)
	klog.V(1).Infof("Player %s disconnected from room %s", playerID, code)
}

// hostConnected counts a host connection and resumes the room timer
func (h *Handler) hostConnected(room *models.Room) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.hosts[room.Code]++
	h.startTimer(room)
}

// hostDisconnected stops the room timer once the host has no connection left
func (h *Handler) hostDisconnected(code string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.hosts[code]--
	if h.hosts[code] > 0 {
		return
	}
	delete(h.hosts, code)
	h.scheduler.Stop(code)
}

// readPump drains the connection so pongs and close frames are handled
func readPump(conn *websocket.Conn, cancel context.CancelFunc) {
	defer cancel()

	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				klog.Warningf("Websocket read failed: %v", err)
			}
			return
		}
	}
}

func (h *Handler) writePump(ctx context.Context, conn *websocket.Conn, updates *latest) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	var (
		phase models.Phase
		round int
	)

	for {
		select {
		case <-ctx.Done():
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(writeWait))
			return

		case room := <-updates.c:
			event := &streamEvent{Type: "room", Room: room}
			if phase != "" && (room.Phase != phase || room.Round != round) {
				event.Notice = h.phaseNotice(ctx, room)
			}
			phase, round = room.Phase, room.Round

			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(event); err != nil {
				klog.V(1).Infof("Websocket write failed: %v", err)
				return
			}

		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}
