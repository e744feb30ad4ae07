package plugin

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/websocket"
	"golang.org/x/crypto/bcrypt"

	"github.com/icrus-dev/irsplugin/pkg/build"
	"github.com/icrus-dev/irsplugin/pkg/events"
)

// WebServer exposes a read-only operator surface over HTTP: a live event
// feed over websocket, a JWT-protected status/audit API, Prometheus
// metrics, and a health probe.
type WebServer struct {
	plugin   *Plugin
	srv      *http.Server
	upgrader websocket.Upgrader
	jwtKey   []byte
	expiry   time.Duration
}

type webClaims struct {
	Admin bool `json:"admin"`
	jwt.RegisteredClaims
}

// NewWebServer builds the server from the plugin's config. With no
// jwt_secret configured a random key is generated, which invalidates
// issued tokens across restarts.
func NewWebServer(p *Plugin) (*WebServer, error) {
	cfg := p.cfg
	key := []byte(cfg.JWTSecret)
	if len(key) == 0 {
		key = make([]byte, 32)
		if _, err := rand.Read(key); err != nil {
			return nil, fmt.Errorf("plugin: generate jwt key: %w", err)
		}
		log.Printf("websrv: no jwt_secret configured, using a random key")
	}
	w := &WebServer{
		plugin: p,
		jwtKey: key,
		expiry: time.Duration(cfg.JWTExpirySec) * time.Second,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/health", w.handleHealth)
	mux.HandleFunc("/ws", w.handleWS)
	mux.HandleFunc("/api/v1/auth/login", w.handleLogin)
	mux.HandleFunc("/api/v1/status", w.requireAuth(w.handleStatus))
	mux.HandleFunc("/api/v1/audit", w.requireAuth(w.handleAudit))
	if p.metrics != nil {
		mux.Handle("/metrics", p.metrics.Handler())
	}

	w.srv = &http.Server{
		Addr:         net.JoinHostPort(cfg.WebHost, strconv.Itoa(cfg.WebPort)),
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
	return w, nil
}

// Start begins serving in the background.
func (w *WebServer) Start() {
	go func() {
		log.Printf("websrv: listening on %s", w.srv.Addr)
		if err := w.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("websrv: %v", err)
		}
	}()
}

// Shutdown stops the server gracefully.
func (w *WebServer) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return w.srv.Shutdown(ctx)
}

func (w *WebServer) handleHealth(rw http.ResponseWriter, r *http.Request) {
	writeJSON(rw, http.StatusOK, map[string]string{"status": "ok"})
}

func (w *WebServer) handleLogin(rw http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(rw, http.StatusMethodNotAllowed, map[string]string{"error": "POST required"})
		return
	}
	var req struct {
		User     string `json:"user"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(rw, http.StatusBadRequest, map[string]string{"error": "bad request"})
		return
	}
	cfg := w.plugin.cfg
	if cfg.WebAdminUser == "" || req.User != cfg.WebAdminUser ||
		bcrypt.CompareHashAndPassword([]byte(cfg.WebAdminPasswordHash), []byte(req.Password)) != nil {
		writeJSON(rw, http.StatusUnauthorized, map[string]string{"error": "invalid credentials"})
		return
	}
	now := time.Now()
	claims := webClaims{
		Admin: true,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   req.User,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(w.expiry)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(w.jwtKey)
	if err != nil {
		writeJSON(rw, http.StatusInternalServerError, map[string]string{"error": "token generation failed"})
		return
	}
	writeJSON(rw, http.StatusOK, map[string]string{"token": token})
}

// requireAuth wraps a handler with bearer-token validation.
func (w *WebServer) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		raw, ok := strings.CutPrefix(header, "Bearer ")
		if !ok {
			writeJSON(rw, http.StatusUnauthorized, map[string]string{"error": "missing bearer token"})
			return
		}
		claims := &webClaims{}
		token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
			}
			return w.jwtKey, nil
		})
		if err != nil || !token.Valid {
			writeJSON(rw, http.StatusUnauthorized, map[string]string{"error": "invalid token"})
			return
		}
		next(rw, r)
	}
}

func (w *WebServer) handleStatus(rw http.ResponseWriter, r *http.Request) {
	p := w.plugin
	writeJSON(rw, http.StatusOK, map[string]any{
		"blocks_tracked":  p.blocks.TrackedCount(),
		"demolish_armed":  p.blocks.ArmedCount(build.StateDemolish),
		"rotate_armed":    p.blocks.ArmedCount(build.StateRotate),
		"sessions":        p.sessions.Count(),
		"sessions_open":   p.sessions.OpenCount(),
		"catalog_items":   p.catalog.Items(),
		"catalog_skins":   p.catalog.Skins(),
		"users_connected": len(p.state.Players()),
	})
}

func (w *WebServer) handleAudit(rw http.ResponseWriter, r *http.Request) {
	if w.plugin.audit == nil {
		writeJSON(rw, http.StatusNotFound, map[string]string{"error": "audit log disabled"})
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	rows, err := w.plugin.audit.Recent(limit)
	if err != nil {
		log.Printf("websrv: %v", err)
		writeJSON(rw, http.StatusInternalServerError, map[string]string{"error": "query failed"})
		return
	}
	writeJSON(rw, http.StatusOK, rows)
}

// handleWS upgrades the connection and streams every plugin event as a
// JSON object per message until the client goes away.
func (w *WebServer) handleWS(rw http.ResponseWriter, r *http.Request) {
	conn, err := w.upgrader.Upgrade(rw, r, nil)
	if err != nil {
		log.Printf("websrv: upgrade: %v", err)
		return
	}
	feed := newWSFeed(conn)
	w.plugin.bus.SubscribeGlobal(feed)
	log.Printf("websrv: event feed client connected from %s", r.RemoteAddr)
}

// wsFeed adapts a websocket connection to an event bus subscriber. Events
// are relayed through a buffered channel; a full buffer drops the event
// rather than blocking the emitting thread.
type wsFeed struct {
	conn   *websocket.Conn
	ch     chan events.Event
	done   chan struct{}
	closed atomic.Bool
}

func newWSFeed(conn *websocket.Conn) *wsFeed {
	f := &wsFeed{
		conn: conn,
		ch:   make(chan events.Event, 64),
		done: make(chan struct{}),
	}
	go f.writeLoop()
	go f.readLoop()
	return f
}

func (f *wsFeed) Receive(ev events.Event) {
	if f.closed.Load() {
		return
	}
	select {
	case f.ch <- ev:
	default:
	}
}

func (f *wsFeed) Closed() bool { return f.closed.Load() }

func (f *wsFeed) writeLoop() {
	for {
		select {
		case ev := <-f.ch:
			if err := f.conn.WriteJSON(ev); err != nil {
				f.shutdown()
				return
			}
		case <-f.done:
			return
		}
	}
}

// readLoop discards client frames; its real job is noticing the close.
func (f *wsFeed) readLoop() {
	for {
		if _, _, err := f.conn.ReadMessage(); err != nil {
			f.shutdown()
			return
		}
	}
}

func (f *wsFeed) shutdown() {
	if f.closed.CompareAndSwap(false, true) {
		close(f.done)
		f.conn.Close()
	}
}

func writeJSON(rw http.ResponseWriter, status int, v any) {
	rw.Header().Set("Content-Type", "application/json")
	rw.WriteHeader(status)
	if err := json.NewEncoder(rw).Encode(v); err != nil {
		log.Printf("websrv: encode response: %v", err)
	}
}
