// ABOUTME: Websocket diagnostics server for a running synth engine
// ABOUTME: Pushes stats, underrun events and scope chunks to subscribed watchers
package monitor

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/Resonate-Protocol/steptone/internal/protocol"
	"github.com/Resonate-Protocol/steptone/internal/version"
	"github.com/Resonate-Protocol/steptone/pkg/audio"
	"github.com/Resonate-Protocol/steptone/pkg/synth"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	// DefaultInterval is how often stats are pushed
	DefaultInterval = 250 * time.Millisecond
	// DefaultScopeSize is the maximum samples per scope chunk
	DefaultScopeSize = 1024

	// WebSocketPath is where watchers connect
	WebSocketPath = "/steptone"
	// StatsPath serves a one-shot JSON stats snapshot
	StatsPath = "/stats"

	sendBufferSize = 64
	writeDeadline  = 10 * time.Second
)

// Source is the engine being monitored
type Source interface {
	Stats() synth.Stats
	Format() audio.Format
	BPM() uint16
	Tap() *synth.Tap
}

// Config holds monitor configuration
type Config struct {
	Port      int
	Name      string
	Interval  time.Duration
	ScopeSize int
}

// Server serves monitor clients
type Server struct {
	config     Config
	source     Source
	instanceID string

	upgrader   websocket.Upgrader
	mux        *http.ServeMux
	httpServer *http.Server
	listener   net.Listener

	clients   map[string]*client
	clientsMu sync.RWMutex

	// broadcast loop state
	scopeBuf          []float32
	reportedUnderruns uint64

	stopChan   chan struct{}
	stopOnce   sync.Once
	shutdownMu sync.RWMutex
	isShutdown bool
	wg         sync.WaitGroup
}

type client struct {
	id       string
	name     string
	conn     *websocket.Conn
	scope    bool
	sendChan chan interface{}
}

// New creates a monitor for source
func New(config Config, source Source) *Server {
	if config.Interval <= 0 {
		config.Interval = DefaultInterval
	}
	if config.ScopeSize <= 0 {
		config.ScopeSize = DefaultScopeSize
	}
	if config.Name == "" {
		config.Name = version.Product
	}

	s := &Server{
		config:     config,
		source:     source,
		instanceID: uuid.New().String(),
		mux:        http.NewServeMux(),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				// Local diagnostics only; browsers on the LAN may connect
				if origin := r.Header.Get("Origin"); origin != "" {
					log.Printf("Monitor: accepting WebSocket from origin: %s", origin)
				}
				return true
			},
		},
		clients:  make(map[string]*client),
		scopeBuf: make([]float32, config.ScopeSize),
		stopChan: make(chan struct{}),
	}

	s.mux.HandleFunc(WebSocketPath, s.handleWebSocket)
	s.mux.HandleFunc(StatsPath, s.handleStats)
	return s
}

// Handler returns the HTTP handler serving both endpoints
func (s *Server) Handler() http.Handler {
	return s.mux
}

// InstanceID identifies this engine run
func (s *Server) InstanceID() string {
	return s.instanceID
}

// Start listens on the configured port and starts pushing updates
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", s.config.Port))
	if err != nil {
		return fmt.Errorf("monitor listen failed: %w", err)
	}
	s.listener = ln
	s.httpServer = &http.Server{Handler: s.mux}

	log.Printf("Monitor listening on %s (ws path %s)", ln.Addr(), WebSocketPath)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.httpServer.Serve(ln); err != nil && err != http.ErrServerClosed {
			log.Printf("Monitor HTTP server error: %v", err)
		}
	}()

	s.startBroadcast()
	return nil
}

// Addr returns the listening address, or nil before Start
func (s *Server) Addr() net.Addr {
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Stop disconnects clients and shuts the server down
func (s *Server) Stop() {
	s.stopOnce.Do(func() {
		s.shutdownMu.Lock()
		s.isShutdown = true
		s.shutdownMu.Unlock()

		close(s.stopChan)

		if s.httpServer != nil {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := s.httpServer.Shutdown(ctx); err != nil {
				log.Printf("Monitor shutdown error: %v", err)
			}
		}

		// Hijacked websocket connections are not closed by Shutdown
		s.clientsMu.RLock()
		for _, c := range s.clients {
			c.conn.Close()
		}
		s.clientsMu.RUnlock()

		s.wg.Wait()
		log.Printf("Monitor stopped")
	})
}

// ClientCount returns the number of subscribed watchers
func (s *Server) ClientCount() int {
	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()
	return len(s.clients)
}

func (s *Server) startBroadcast() {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.broadcastLoop()
	}()
}

// broadcastLoop pushes stats, underruns and scope chunks every interval
func (s *Server) broadcastLoop() {
	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.broadcastTick()
		case <-s.stopChan:
			return
		}
	}
}

func (s *Server) broadcastTick() {
	st := s.source.Stats()
	stats := statsMessage(st, s.source.Format().SampleRate)

	var scopeChunk []byte
	if tap := s.source.Tap(); tap != nil {
		// Drain every tick so a new scope subscriber never sees stale audio
		if n := tap.Drain(s.scopeBuf); n > 0 {
			scopeChunk = protocol.CreateScopeChunk(st.Elapsed, s.scopeBuf[:n])
		}
	}

	var underrun *protocol.Underrun
	if st.Underruns.Count > s.reportedUnderruns {
		underrun = &protocol.Underrun{
			New:   st.Underruns.Count - s.reportedUnderruns,
			Total: st.Underruns.Count,
			At:    st.Underruns.Last.Format(time.RFC3339Nano),
		}
		s.reportedUnderruns = st.Underruns.Count
	}

	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()

	for _, c := range s.clients {
		if err := s.sendMessage(c, protocol.TypeStats, stats); err != nil {
			log.Printf("Monitor: dropping stats for %s: %v", c.name, err)
		}
		if underrun != nil {
			if err := s.sendMessage(c, protocol.TypeUnderrun, *underrun); err != nil {
				log.Printf("Monitor: dropping underrun event for %s: %v", c.name, err)
			}
		}
		if scopeChunk != nil && c.scope {
			select {
			case c.sendChan <- scopeChunk:
			default:
			}
		}
	}
}

// handleStats serves a JSON snapshot
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats := statsMessage(s.source.Stats(), s.source.Format().SampleRate)
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(stats); err != nil {
		log.Printf("Monitor: stats encode error: %v", err)
	}
}

// handleWebSocket handles WebSocket connections
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("Monitor: WebSocket upgrade error: %v", err)
		return
	}

	log.Printf("Monitor: new connection from %s", r.RemoteAddr)
	s.handleConnection(conn)
}

// handleConnection manages a watcher connection
func (s *Server) handleConnection(conn *websocket.Conn) {
	defer conn.Close()

	s.shutdownMu.RLock()
	if s.isShutdown {
		s.shutdownMu.RUnlock()
		log.Printf("Monitor: rejecting connection during shutdown")
		return
	}
	s.shutdownMu.RUnlock()

	// Wait for monitor/subscribe
	conn.SetReadDeadline(time.Now().Add(writeDeadline))
	_, data, err := conn.ReadMessage()
	if err != nil {
		log.Printf("Monitor: error reading subscribe: %v", err)
		return
	}
	conn.SetReadDeadline(time.Time{})

	env, err := protocol.Decode(data)
	if err != nil {
		log.Printf("Monitor: %v", err)
		return
	}
	if env.Type != protocol.TypeSubscribe {
		log.Printf("Monitor: expected %s, got %s", protocol.TypeSubscribe, env.Type)
		return
	}

	var sub protocol.Subscribe
	if err := env.DecodePayload(&sub); err != nil {
		log.Printf("Monitor: %v", err)
		return
	}
	if sub.ClientID == "" {
		sub.ClientID = uuid.New().String()
	}
	if sub.Name == "" {
		sub.Name = sub.ClientID
	}

	c := &client{
		id:       sub.ClientID,
		name:     sub.Name,
		conn:     conn,
		scope:    sub.Scope,
		sendChan: make(chan interface{}, sendBufferSize),
	}

	// Check for duplicate client ID and register atomically
	s.clientsMu.Lock()
	if _, exists := s.clients[c.id]; exists {
		s.clientsMu.Unlock()
		log.Printf("Monitor: client ID %s already connected, rejecting duplicate", c.id)

		errorMsg := protocol.Message{
			Type: protocol.TypeError,
			Payload: protocol.Error{
				Error:   "duplicate_client_id",
				Message: "Client ID already connected",
			},
		}
		conn.SetWriteDeadline(time.Now().Add(writeDeadline))
		conn.WriteJSON(errorMsg)
		return
	}
	s.clients[c.id] = c
	s.clientsMu.Unlock()

	log.Printf("Monitor: %s subscribed (ID: %s, scope: %v)", c.name, c.id, c.scope)

	defer func() {
		s.clientsMu.Lock()
		delete(s.clients, c.id)
		s.clientsMu.Unlock()
		close(c.sendChan)
		log.Printf("Monitor: %s disconnected", c.name)
	}()

	if err := s.sendMessage(c, protocol.TypeHello, s.hello()); err != nil {
		log.Printf("Monitor: error sending hello: %v", err)
		return
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.clientWriter(c)
	}()

	// Watchers have nothing to say after subscribing; read until they leave
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				log.Printf("Monitor: WebSocket error: %v", err)
			}
			return
		}
	}
}

// clientWriter sends queued messages to the watcher
func (s *Server) clientWriter(c *client) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case msg, ok := <-c.sendChan:
			if !ok {
				return
			}

			var err error
			c.conn.SetWriteDeadline(time.Now().Add(writeDeadline))
			switch v := msg.(type) {
			case []byte:
				err = c.conn.WriteMessage(websocket.BinaryMessage, v)
			default:
				err = c.conn.WriteJSON(v)
			}
			if err != nil {
				log.Printf("Monitor: error writing to %s: %v", c.name, err)
				return
			}

		case <-ticker.C:
			if err := c.conn.WriteControl(websocket.PingMessage, []byte{}, time.Now().Add(writeDeadline)); err != nil {
				return
			}
		}
	}
}

// sendMessage queues a JSON message without blocking
func (s *Server) sendMessage(c *client, msgType string, payload interface{}) error {
	msg := protocol.Message{
		Type:    msgType,
		Payload: payload,
	}

	select {
	case c.sendChan <- msg:
		return nil
	default:
		return fmt.Errorf("client send buffer full")
	}
}

func (s *Server) hello() protocol.Hello {
	format := s.source.Format()
	st := s.source.Stats()
	voiceBPM := make([]int, len(st.Voices))
	for i, v := range st.Voices {
		voiceBPM[i] = int(v.BPM)
	}
	return protocol.Hello{
		InstanceID: s.instanceID,
		Name:       s.config.Name,
		Version:    protocol.ProtocolVersion,
		DeviceInfo: protocol.DeviceInfo{
			ProductName:     version.Product,
			Manufacturer:    version.Manufacturer,
			SoftwareVersion: version.Version,
		},
		SampleRate:    format.SampleRate,
		Channels:      format.Channels,
		BPM:           int(s.source.BPM()),
		Voices:        len(st.Voices),
		VoiceBPM:      voiceBPM,
		QueueCapacity: st.Capacity,
	}
}

func statsMessage(st synth.Stats, sampleRate int) protocol.Stats {
	msg := protocol.Stats{
		Elapsed:   st.Elapsed,
		Queued:    st.Queued,
		Capacity:  st.Capacity,
		Underruns: st.Underruns.Count,
		Voices:    make([]protocol.VoiceStats, len(st.Voices)),
	}
	if sampleRate > 0 {
		msg.ElapsedSeconds = float64(st.Elapsed) / float64(sampleRate)
	}
	if !st.Underruns.Last.IsZero() {
		msg.LastUnderrun = st.Underruns.Last.Format(time.RFC3339Nano)
	}
	for i, v := range st.Voices {
		msg.Voices[i] = protocol.VoiceStats{
			BPM:       int(v.BPM),
			Step:      v.Step,
			Beat:      v.Beat,
			OnBeat:    v.OnBeat,
			Level:     v.Level,
			Signal:    v.Signal,
			Frequency: v.Frequency,
		}
	}
	return msg
}
