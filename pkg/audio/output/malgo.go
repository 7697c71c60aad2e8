//go:build malgo

// ABOUTME: Malgo-based audio output implementation with 24-bit support
// ABOUTME: miniaudio data callback runs the fill function and encodes to the device format
package output

import (
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/Resonate-Protocol/steptone/pkg/audio"
	"github.com/Resonate-Protocol/steptone/pkg/audio/encode"
	"github.com/gen2brain/malgo"
)

// Malgo output implementation using malgo/miniaudio library
type Malgo struct {
	opts Options

	mu       sync.Mutex
	malgoCtx *malgo.AllocatedContext
	device   *malgo.Device

	// touched only by the device callback after Open
	fill     FillFunc
	encoder  encode.Encoder
	channels int
	buf      *callbackBuffer
}

// NewMalgo creates a new Malgo output
func NewMalgo(opts Options) Output {
	return &Malgo{opts: opts.withDefaults()}
}

// Open initializes the output device with specified format
func (m *Malgo) Open(format audio.Format, fill FillFunc) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.device != nil {
		return errors.New("malgo output already opened")
	}
	if err := format.Validate(); err != nil {
		return err
	}

	// Map bit depth to malgo format
	var deviceFormat malgo.FormatType
	switch format.BitDepth {
	case 16:
		deviceFormat = malgo.FormatS16
	case 24:
		deviceFormat = malgo.FormatS24
	case 32:
		deviceFormat = malgo.FormatF32
	}

	encoder, err := encode.New(format)
	if err != nil {
		return err
	}

	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return fmt.Errorf("failed to initialize malgo context: %w", err)
	}

	m.fill = fill
	m.encoder = encoder
	m.channels = format.Channels
	m.buf = newCallbackBuffer("malgo", m.opts.FramesPerBuffer*format.Channels*2)

	deviceConfig := malgo.DefaultDeviceConfig(malgo.Playback)
	deviceConfig.Playback.Format = deviceFormat
	deviceConfig.Playback.Channels = uint32(format.Channels)
	deviceConfig.SampleRate = uint32(format.SampleRate)
	deviceConfig.PeriodSizeInFrames = uint32(m.opts.FramesPerBuffer)
	deviceConfig.Alsa.NoMMap = 1

	deviceCallbacks := malgo.DeviceCallbacks{
		Data: func(pOutputSample, pInputSamples []byte, frameCount uint32) {
			m.dataCallback(pOutputSample, frameCount)
		},
	}

	device, err := malgo.InitDevice(ctx.Context, deviceConfig, deviceCallbacks)
	if err != nil {
		_ = ctx.Uninit()
		ctx.Free()
		return fmt.Errorf("failed to initialize playback device: %w", err)
	}

	if err := device.Start(); err != nil {
		device.Uninit()
		_ = ctx.Uninit()
		ctx.Free()
		return fmt.Errorf("failed to start device: %w", err)
	}

	m.malgoCtx = ctx
	m.device = device

	log.Printf("Audio output initialized: %dHz, %d channels, %d-bit (malgo/%s)",
		format.SampleRate, format.Channels, format.BitDepth, formatName(deviceFormat))
	return nil
}

// dataCallback is called by malgo to fill the audio output buffer
func (m *Malgo) dataCallback(pOutput []byte, frameCount uint32) {
	// miniaudio may exceed the requested period on some backends
	samples := m.buf.take(int(frameCount) * m.channels)

	m.fill(samples)
	m.opts.Volume.Apply(samples)
	if _, err := m.encoder.Encode(pOutput, samples); err != nil {
		clear(pOutput)
	}
}

// Close releases output resources
func (m *Malgo) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var errs []error
	if m.device != nil {
		errs = append(errs, m.device.Stop())
		m.device.Uninit()
		m.device = nil
	}
	if m.malgoCtx != nil {
		errs = append(errs, m.malgoCtx.Uninit())
		m.malgoCtx.Free()
		m.malgoCtx = nil
	}
	return errors.Join(errs...)
}

// formatName returns human-readable format name
func formatName(format malgo.FormatType) string {
	switch format {
	case malgo.FormatS16:
		return "S16"
	case malgo.FormatS24:
		return "S24"
	case malgo.FormatF32:
		return "F32"
	default:
		return fmt.Sprintf("Unknown(%d)", format)
	}
}
