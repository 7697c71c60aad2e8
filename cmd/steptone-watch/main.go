// ABOUTME: Diagnostics client for a running steptone engine
// ABOUTME: Finds an engine via mDNS or -addr and logs its monitor stream
package main

import (
	"flag"
	"fmt"
	"log"
	"math"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Resonate-Protocol/steptone/internal/discovery"
	"github.com/Resonate-Protocol/steptone/internal/monitor"
	"github.com/Resonate-Protocol/steptone/internal/protocol"
	"github.com/Resonate-Protocol/steptone/internal/version"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

var (
	addr    = flag.String("addr", "", "Engine monitor address host:port (skip mDNS)")
	timeout = flag.Duration("timeout", 10*time.Second, "How long to browse for an engine")
	count   = flag.Int("count", 0, "Exit after this many stats messages (0 runs until interrupted)")
	scope   = flag.Bool("scope", false, "Subscribe to scope chunks and log their peak level")
	name    = flag.String("name", "steptone-watch", "Watcher name reported to the engine")
)

func main() {
	flag.Parse()

	log.SetFlags(log.Ltime | log.Lmicroseconds)

	url, err := resolve()
	if err != nil {
		log.Fatalf("%v", err)
	}

	log.Printf("Connecting to %s", url)
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		log.Fatalf("Connection failed: %v", err)
	}
	defer conn.Close()

	sub := protocol.Message{
		Type: protocol.TypeSubscribe,
		Payload: protocol.Subscribe{
			ClientID: uuid.New().String(),
			Name:     *name,
			Version:  protocol.ProtocolVersion,
			Scope:    *scope,
		},
	}
	if err := conn.WriteJSON(sub); err != nil {
		log.Fatalf("Subscribe failed: %v", err)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
		conn.Close()
	}()

	if err := watch(conn, *count); err != nil {
		log.Fatalf("%v", err)
	}
}

// resolve returns the monitor URL from -addr or the first engine found via mDNS
func resolve() (string, error) {
	if *addr != "" {
		return fmt.Sprintf("ws://%s%s", *addr, monitor.WebSocketPath), nil
	}

	log.Printf("Browsing for %s engines...", discovery.ServiceType)
	disc := discovery.NewManager(discovery.Config{})
	defer disc.Stop()
	disc.Browse()

	select {
	case server := <-disc.Servers():
		return server.URL(), nil
	case <-time.After(*timeout):
		return "", fmt.Errorf("no engine found after %v", *timeout)
	}
}

// watch logs messages until the connection closes or limit stats arrive
func watch(conn *websocket.Conn, limit int) error {
	stats := 0
	for {
		kind, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return fmt.Errorf("read failed: %w", err)
		}

		if kind == websocket.BinaryMessage {
			logScope(data)
			continue
		}

		env, err := protocol.Decode(data)
		if err != nil {
			log.Printf("Ignoring message: %v", err)
			continue
		}

		switch env.Type {
		case protocol.TypeHello:
			var hello protocol.Hello
			if err := env.DecodePayload(&hello); err != nil {
				return err
			}
			log.Printf("Connected to %s (%s %s, instance %s): %d Hz x %d ch, %d bpm, %d voice(s) at %v bpm, queue %d",
				hello.Name, hello.DeviceInfo.ProductName, hello.DeviceInfo.SoftwareVersion, hello.InstanceID,
				hello.SampleRate, hello.Channels, hello.BPM, hello.Voices, hello.VoiceBPM, hello.QueueCapacity)
			if hello.Version != protocol.ProtocolVersion {
				log.Printf("Warning: engine speaks protocol v%d, %s expects v%d",
					hello.Version, version.String(), protocol.ProtocolVersion)
			}

		case protocol.TypeStats:
			var st protocol.Stats
			if err := env.DecodePayload(&st); err != nil {
				return err
			}
			logStats(st)
			stats++
			if limit > 0 && stats >= limit {
				return nil
			}

		case protocol.TypeUnderrun:
			var u protocol.Underrun
			if err := env.DecodePayload(&u); err != nil {
				return err
			}
			log.Printf("Underrun: +%d (total %d, last at %s)", u.New, u.Total, u.At)

		case protocol.TypeError:
			var e protocol.Error
			if err := env.DecodePayload(&e); err != nil {
				return err
			}
			return fmt.Errorf("engine rejected watcher: %s: %s", e.Error, e.Message)

		default:
			log.Printf("Unknown message type: %s", env.Type)
		}
	}
}

func logStats(st protocol.Stats) {
	line := fmt.Sprintf("t=%.2fs queue %d/%d underruns %d", st.ElapsedSeconds, st.Queued, st.Capacity, st.Underruns)
	for i, v := range st.Voices {
		beat := " "
		if v.OnBeat {
			beat = "*"
		}
		line += fmt.Sprintf(" | v%d%s %d bpm step %d %.1f Hz lvl %.2f", i+1, beat, v.BPM, v.Step, v.Frequency, v.Level)
	}
	log.Print(line)
}

func logScope(data []byte) {
	frame, samples, err := protocol.ParseScopeChunk(data)
	if err != nil {
		log.Printf("Bad scope chunk: %v", err)
		return
	}

	var peak float64
	for _, s := range samples {
		peak = math.Max(peak, math.Abs(float64(s)))
	}
	log.Printf("Scope: frame %d, %d samples, peak %.3f", frame, len(samples), peak)
}
