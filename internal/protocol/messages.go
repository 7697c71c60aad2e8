// ABOUTME: Steptone monitor protocol message type definitions
// ABOUTME: Defines JSON messages and the binary scope chunk exchanged over the monitor websocket
package protocol

import (
	"encoding/binary"
	"fmt"

	"github.com/Resonate-Protocol/steptone/pkg/audio/encode"
)

const (
	// ProtocolVersion is bumped on incompatible message changes
	ProtocolVersion = 1

	// ScopeChunkMessageType tags binary scope frames
	ScopeChunkMessageType = 1

	scopeHeaderSize = 9 // type byte + big-endian uint64 frame index
)

// Message types
const (
	TypeSubscribe = "monitor/subscribe"
	TypeHello     = "monitor/hello"
	TypeStats     = "monitor/stats"
	TypeUnderrun  = "monitor/underrun"
	TypeError     = "monitor/error"
)

// Message is the top-level wrapper for all protocol messages
type Message struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// Subscribe is sent by a watcher to start receiving updates
type Subscribe struct {
	ClientID string `json:"client_id"`
	Name     string `json:"name"`
	Version  int    `json:"version"`
	Scope    bool   `json:"scope,omitempty"` // also stream binary scope chunks
}

// DeviceInfo contains device identification
type DeviceInfo struct {
	ProductName     string `json:"product_name"`
	Manufacturer    string `json:"manufacturer"`
	SoftwareVersion string `json:"software_version"`
}

// Hello is the engine's response to monitor/subscribe
type Hello struct {
	InstanceID    string     `json:"instance_id"`
	Name          string     `json:"name"`
	Version       int        `json:"version"`
	DeviceInfo    DeviceInfo `json:"device_info"`
	SampleRate    int        `json:"sample_rate"`
	Channels      int        `json:"channels"`
	BPM           int        `json:"bpm"`
	Voices        int        `json:"voices"`
	VoiceBPM      []int      `json:"voice_bpm"` // tempo of each voice, in voice order
	QueueCapacity int        `json:"queue_capacity"`
}

// VoiceStats reports one sequencer
type VoiceStats struct {
	BPM       int     `json:"bpm"`
	Step      int     `json:"step"`
	Beat      uint64  `json:"beat"`
	OnBeat    bool    `json:"on_beat"`
	Level     float32 `json:"level"`
	Signal    float32 `json:"signal"`
	Frequency float32 `json:"frequency"`
}

// Stats is pushed periodically and served at /stats
type Stats struct {
	Elapsed        uint64       `json:"elapsed"` // frames emitted
	ElapsedSeconds float64      `json:"elapsed_seconds"`
	Queued         int          `json:"queued"`
	Capacity       int          `json:"capacity"`
	Underruns      uint64       `json:"underruns"`
	LastUnderrun   string       `json:"last_underrun,omitempty"` // RFC 3339
	Voices         []VoiceStats `json:"voices"`
}

// Underrun is pushed when new underruns have been counted
type Underrun struct {
	New   uint64 `json:"new"`
	Total uint64 `json:"total"`
	At    string `json:"at"` // RFC 3339, most recent
}

// Error reports a rejected request
type Error struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// CreateScopeChunk packs tapped samples as [type][frame index][float32 LE...]
func CreateScopeChunk(elapsed uint64, samples []float32) []byte {
	chunk := make([]byte, scopeHeaderSize+len(samples)*4)
	chunk[0] = ScopeChunkMessageType
	binary.BigEndian.PutUint64(chunk[1:scopeHeaderSize], elapsed)
	// cannot fail, chunk is sized for every sample
	_, _ = encode.Float32{}.Encode(chunk[scopeHeaderSize:], samples)
	return chunk
}

// ParseScopeChunk reverses CreateScopeChunk
func ParseScopeChunk(data []byte) (uint64, []float32, error) {
	if len(data) < scopeHeaderSize {
		return 0, nil, fmt.Errorf("scope chunk too short: %d bytes", len(data))
	}
	if data[0] != ScopeChunkMessageType {
		return 0, nil, fmt.Errorf("unexpected binary message type: %d", data[0])
	}
	body := data[scopeHeaderSize:]
	if len(body)%4 != 0 {
		return 0, nil, fmt.Errorf("scope chunk body not a whole number of samples: %d bytes", len(body))
	}

	elapsed := binary.BigEndian.Uint64(data[1:scopeHeaderSize])
	samples := make([]float32, len(body)/4)
	for i := range samples {
		samples[i] = decodeFloat32(body[i*4:])
	}
	return elapsed, samples, nil
}
