// ABOUTME: Entry point for the steptone synthesizer
// ABOUTME: Parses CLI flags, starts the engine, audio output, monitor and TUI
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/Resonate-Protocol/steptone/internal/discovery"
	"github.com/Resonate-Protocol/steptone/internal/monitor"
	"github.com/Resonate-Protocol/steptone/internal/ui"
	"github.com/Resonate-Protocol/steptone/internal/version"
	"github.com/Resonate-Protocol/steptone/pkg/audio"
	"github.com/Resonate-Protocol/steptone/pkg/audio/osc"
	"github.com/Resonate-Protocol/steptone/pkg/audio/output"
	"github.com/Resonate-Protocol/steptone/pkg/synth"
	tea "github.com/charmbracelet/bubbletea"
)

var (
	bpm         = flag.Uint("bpm", synth.DefaultBPM, "Tempo in steps per minute")
	pattern     = flag.String("pattern", "a440", "Built-in pattern or note list for the default voice")
	wave        = flag.String("wave", "sine", "Default wave shape (sine, square, saw, triangle)")
	octave      = flag.Uint("octave", synth.DefaultOctave, "Default pitch multiplier applied to every step")
	ramp        = flag.Float64("ramp", synth.DefaultRamp, "Envelope change per sample, (0, 1]")
	vibrato     = flag.Float64("vibrato", 0, "LFO pitch deviation in Hz")
	tremolo     = flag.Float64("tremolo", 0, "LFO amplitude depth, [0, 1]")
	queueSize   = flag.Int("queue", synth.DefaultQueueCapacity, "Ring buffer capacity in samples")
	sampleRate  = flag.Int("rate", 48000, "Output sample rate")
	channels    = flag.Int("channels", 2, "Output channels")
	backend     = flag.String("backend", "oto", "Audio backend ("+strings.Join(output.Backends(), ", ")+")")
	frames      = flag.Int("frames", output.DefaultFramesPerBuffer, "Frames per device buffer")
	name        = flag.String("name", "", "Name advertised over mDNS (default: hostname-steptone)")
	logFile     = flag.String("log-file", "steptone.log", "Log file path")
	noTUI       = flag.Bool("no-tui", false, "Disable TUI, use streaming logs instead")
	monitorPort = flag.Int("monitor-port", 8930, "Monitor websocket port (0 disables)")
	noMDNS      = flag.Bool("no-mdns", false, "Do not advertise the monitor via mDNS")
	duration    = flag.Duration("duration", 0, "Stop after this long (0 runs until interrupted)")
	showVersion = flag.Bool("version", false, "Print version and exit")

	voices voiceList
)

func init() {
	flag.Var(&voices, "voice", "Voice as shape:octave:notes[@bpm], repeatable (e.g. saw:1:A3,C4,E4@120 or square::bassline)")
}

func main() {
	flag.Parse()

	if *showVersion {
		fmt.Println(version.String())
		return
	}

	useTUI := !*noTUI

	// Set up logging
	f, err := os.OpenFile(*logFile, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
	if err != nil {
		log.Fatalf("error opening log file: %v", err)
	}
	defer func() { _ = f.Close() }()

	if useTUI {
		// TUI mode: log only to file
		log.SetOutput(f)
	} else {
		log.SetOutput(io.MultiWriter(os.Stdout, f))
	}

	config, err := buildConfig()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	engine, err := synth.New(config)
	if err != nil {
		log.Fatalf("Failed to create engine: %v", err)
	}

	log.Printf("Starting %s", version.String())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := engine.Start(ctx); err != nil {
		log.Fatalf("Failed to start engine: %v", err)
	}

	volume := output.NewVolume()
	out, err := output.New(*backend, output.Options{FramesPerBuffer: *frames, Volume: volume})
	if err != nil {
		log.Fatalf("Failed to create output: %v", err)
	}
	if err := out.Open(engine.Format(), engine.Fill); err != nil {
		log.Fatalf("Failed to open %s output: %v", *backend, err)
	}

	serviceName := *name
	if serviceName == "" {
		hostname, err := os.Hostname()
		if err != nil {
			hostname = "unknown"
		}
		serviceName = fmt.Sprintf("%s-steptone", hostname)
	}

	var mon *monitor.Server
	var disc *discovery.Manager
	if *monitorPort > 0 {
		mon = monitor.New(monitor.Config{Port: *monitorPort, Name: serviceName}, engine)
		if err := mon.Start(); err != nil {
			log.Fatalf("Failed to start monitor: %v", err)
		}

		if !*noMDNS {
			disc = discovery.NewManager(discovery.Config{
				ServiceName: serviceName,
				Port:        *monitorPort,
				Path:        monitor.WebSocketPath,
				Text:        []string{fmt.Sprintf("bpm=%d", engine.BPM()), "version=" + version.Version},
			})
			if err := disc.Advertise(); err != nil {
				log.Printf("mDNS advertisement failed: %v", err)
			}
		}
	}

	// TUI setup
	var tuiProg *tea.Program
	tuiDone := make(chan struct{})
	if useTUI {
		opts := ui.Options{
			Source:  engine,
			Volume:  volume,
			Backend: *backend,
		}
		if mon != nil {
			opts.MonitorAddr = mon.Addr().String()
			opts.Clients = mon.ClientCount
		}
		tuiProg = ui.Run(opts)
		go func() {
			defer close(tuiDone)
			if _, err := tuiProg.Run(); err != nil {
				log.Printf("TUI error: %v", err)
			}
		}()
	}

	var timeout <-chan time.Time
	if *duration > 0 {
		timeout = time.After(*duration)
	}

	// Handle shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sigChan:
		log.Printf("Shutdown signal received")
	case <-tuiDone:
		log.Printf("Received quit signal from TUI")
	case <-timeout:
		log.Printf("Duration %v elapsed", *duration)
	}

	if tuiProg != nil {
		tuiProg.Quit()
		<-tuiDone
	}
	if disc != nil {
		disc.Stop()
	}
	if mon != nil {
		mon.Stop()
	}
	if err := out.Close(); err != nil {
		log.Printf("Error closing output: %v", err)
	}
	engine.Stop()

	st := engine.Stats()
	log.Printf("Played %d frames, %d underruns", st.Elapsed, st.Underruns.Count)
}

// buildConfig turns flags into an engine configuration
func buildConfig() (synth.Config, error) {
	if *bpm == 0 || *bpm > 0xffff {
		return synth.Config{}, fmt.Errorf("bpm must be in [1, 65535], got %d", *bpm)
	}

	shape, err := osc.ParseWaveType(*wave)
	if err != nil {
		return synth.Config{}, err
	}

	base := synth.NewVoiceConfig()
	base.Wave = shape
	base.Octave = *octave
	base.Ramp = float32(*ramp)
	base.Vibrato = float32(*vibrato)
	base.Tremolo = float32(*tremolo)

	voiceConfigs, err := buildVoices(voices, *pattern, base)
	if err != nil {
		return synth.Config{}, err
	}

	config := synth.DefaultConfig()
	config.BPM = uint16(*bpm)
	config.Format = audio.Format{SampleRate: *sampleRate, Channels: *channels, BitDepth: audio.DefaultBitDepth}
	config.Voices = voiceConfigs
	config.QueueCapacity = *queueSize
	if *monitorPort <= 0 {
		// Only the monitor drains the tap
		config.TapSize = 0
	}
	return config, nil
}
