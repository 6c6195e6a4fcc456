package web

import (
	"net/http"
	"sync"
	"time"

	"github.com/KirkDiggler/mafia/internal/services/game"
	"github.com/KirkDiggler/mafia/internal/services/messaging"
	"github.com/KirkDiggler/mafia/internal/services/scheduler"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"k8s.io/klog/v2"
)

// Handler serves the room API and the room websocket
type Handler struct {
	game      game.Service
	scheduler scheduler.Scheduler
	messaging messaging.Service
	publicURL string
	upgrader  websocket.Upgrader

	// mu guards hosts, the open host connections per room
	mu    sync.Mutex
	hosts map[string]int
}

// New creates a new HTTP handler
func New(cfg *Config) (*Handler, error) {
	if cfg == nil {
		return nil, ErrNilConfig
	}
	if cfg.GameService == nil {
		return nil, ErrNilGameService
	}
	if cfg.Scheduler == nil {
		return nil, ErrNilScheduler
	}
	if cfg.Messaging == nil {
		return nil, ErrNilMessaging
	}

	return &Handler{
		game:      cfg.GameService,
		scheduler: cfg.Scheduler,
		messaging: cfg.Messaging,
		publicURL: cfg.PublicURL,
		hosts:     make(map[string]int),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// rooms are joined by code from any origin
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}, nil
}

// Router builds a gin engine with every route registered
func (h *Handler) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), logRequests())
	h.Register(r)
	return r
}

// Register adds the routes to r
func (h *Handler) Register(r gin.IRouter) {
	r.GET("/ws", h.stream)

	api := r.Group("/api")
	{
		api.GET("/roles", h.listRoles)
		api.POST("/rooms", h.createRoom)
		api.GET("/rooms/:code", h.getRoom)
		api.GET("/rooms/:code/qr", h.qrCode)
		api.POST("/rooms/:code/join", h.joinRoom)
		api.POST("/rooms/:code/start", h.startGame)
		api.POST("/rooms/:code/advance", h.advancePhase)
		api.POST("/rooms/:code/actions", h.submitNightAction)
		api.POST("/rooms/:code/votes", h.submitVote)
		api.POST("/rooms/:code/messages", h.sendMessage)
	}
}

func logRequests() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		klog.V(2).Infof("%s %s %d %s", c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(start))
	}
}
