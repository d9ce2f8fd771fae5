// Package ws – handshake handler.
//
// The handler upgrades the HTTP request, pulls the session cookies off the
// handshake (authentication never travels in-band), and hands the socket to
// a Client. One goroutine per connection; the gin handler returns once the
// session ends because gorilla hijacks the underlying TCP connection.
package ws

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/talentwire/go-messaging-core/internal/services"
)

// Cookie names checked on the handshake, in slot priority order.
const (
	CookieEmployerSession   = "employer_session_id"
	CookieCandidateSession  = "candidate_session_id"
	CookieConsultantSession = "consultant_session_id"
	CookieAdminSession      = "admin_session_id"
)

// Handler upgrades handshakes and spawns connection sessions.
type Handler struct {
	Hub     *Hub
	Gateway ConversationGateway
	Auth    Authenticator
	Log     zerolog.Logger

	// PingInterval is the liveness probe period.
	PingInterval time.Duration

	upgrader websocket.Upgrader
}

// NewHandler constructs a Handler. allowedOrigins restricts handshake
// origins; empty allows all (matching the permissive CORS default of the
// HTTP layer).
func NewHandler(hub *Hub, gateway ConversationGateway, auth Authenticator, pingInterval time.Duration, allowedOrigins []string, log zerolog.Logger) *Handler {
	allowed := make(map[string]struct{}, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = struct{}{}
	}
	return &Handler{
		Hub:          hub,
		Gateway:      gateway,
		Auth:         auth,
		Log:          log,
		PingInterval: pingInterval,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				if len(allowed) == 0 {
					return true
				}
				_, ok := allowed[r.Header.Get("Origin")]
				return ok
			},
		},
	}
}

// Serve is the gin handler for the WebSocket endpoint.
func (h *Handler) Serve(c *gin.Context) {
	creds := credentialsFromRequest(c.Request)

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error response.
		h.Log.Warn().Err(err).Str("remote_ip", c.ClientIP()).Msg("handshake upgrade failed")
		return
	}

	log := h.Log.With().Str("remote_ip", c.ClientIP()).Logger()
	client := NewClient(h.Hub, h.Gateway, h.Auth, conn, creds, h.PingInterval, log)
	client.Run(c.Request.Context())
}

// credentialsFromRequest extracts the session cookies present on the
// handshake. Absent cookies stay empty; slot priority is applied by the
// resolver, not here.
func credentialsFromRequest(r *http.Request) services.Credentials {
	var creds services.Credentials
	if ck, err := r.Cookie(CookieEmployerSession); err == nil {
		creds.EmployerToken = ck.Value
	}
	if ck, err := r.Cookie(CookieCandidateSession); err == nil {
		creds.CandidateToken = ck.Value
	}
	if ck, err := r.Cookie(CookieConsultantSession); err == nil {
		creds.ConsultantToken = ck.Value
	}
	if ck, err := r.Cookie(CookieAdminSession); err == nil {
		creds.AdminToken = ck.Value
	}
	return creds
}
