// ABOUTME: Step-sequenced synthesis engine
// ABOUTME: Sequencers, mixer, output consumer and the engine that wires them
// Package synth turns step sequences into a continuous audio signal.
//
// Two goroutines share the data path:
//   - the producer (Mixer.Run) computes samples ahead of time and pushes them
//     into a lock-free ring.Queue
//   - the output callback (Consumer.Fill) pops one sample per frame, writes
//     it to every channel and advances the shared sample clock
//
// Musical position is always derived from the sample clock, so tempo stays
// locked to what the hardware has actually played. The callback never blocks
// or allocates; when the queue runs dry it repeats the last sample and counts
// an underrun.
//
// Example:
//
//	cfg := synth.DefaultConfig()
//	cfg.Voices = []synth.VoiceConfig{synth.NewVoiceConfig(440)}
//	engine, err := synth.New(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	engine.Start(ctx)
//	defer engine.Stop()
//
//	// hand engine.Fill to an output backend
package synth
