// ABOUTME: Tests for monitor protocol messages
// ABOUTME: Tests envelope decoding and the binary scope chunk layout
package protocol

import (
	"encoding/json"
	"testing"
)

func TestDecode(t *testing.T) {
	data, err := json.Marshal(Message{
		Type: TypeSubscribe,
		Payload: Subscribe{
			ClientID: "abc",
			Name:     "watch",
			Version:  ProtocolVersion,
			Scope:    true,
		},
	})
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	env, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if env.Type != TypeSubscribe {
		t.Errorf("expected type %s, got %s", TypeSubscribe, env.Type)
	}

	var sub Subscribe
	if err := env.DecodePayload(&sub); err != nil {
		t.Fatalf("DecodePayload failed: %v", err)
	}
	if sub.ClientID != "abc" || sub.Name != "watch" || !sub.Scope {
		t.Errorf("unexpected payload: %+v", sub)
	}
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"not json", "hello"},
		{"missing type", `{"payload":{}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Decode([]byte(tt.data)); err == nil {
				t.Error("expected error")
			}
		})
	}

	env, err := Decode([]byte(`{"type":"monitor/stats"}`))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	var stats Stats
	if err := env.DecodePayload(&stats); err == nil {
		t.Error("expected error for empty payload")
	}
}

func TestScopeChunk(t *testing.T) {
	samples := []float32{0, 0.5, -0.25, 1}
	chunk := CreateScopeChunk(123456789, samples)

	if len(chunk) != 9+len(samples)*4 {
		t.Fatalf("unexpected chunk size %d", len(chunk))
	}
	if chunk[0] != ScopeChunkMessageType {
		t.Errorf("expected type byte %d, got %d", ScopeChunkMessageType, chunk[0])
	}

	elapsed, got, err := ParseScopeChunk(chunk)
	if err != nil {
		t.Fatalf("ParseScopeChunk failed: %v", err)
	}
	if elapsed != 123456789 {
		t.Errorf("expected elapsed 123456789, got %d", elapsed)
	}
	for i := range samples {
		if got[i] != samples[i] {
			t.Errorf("sample %d: expected %v, got %v", i, samples[i], got[i])
		}
	}
}

func TestParseScopeChunkErrors(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"short", []byte{1, 2, 3}},
		{"wrong type", append([]byte{7}, make([]byte, 8)...)},
		{"ragged body", append(append([]byte{ScopeChunkMessageType}, make([]byte, 8)...), 1, 2, 3)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, err := ParseScopeChunk(tt.data); err == nil {
				t.Error("expected error")
			}
		})
	}
}
