package stt

import (
	"bytes"
	"math"
	"testing"
)

func sineSamples(n int) []int16 {
	out := make([]int16, n)
	for i := range out {
		out[i] = int16(10000 * math.Sin(float64(i)/8))
	}
	return out
}

func TestWAVRoundTrip(t *testing.T) {
	in := sineSamples(1600)

	data, err := EncodeWAV(in, 16000)
	if err != nil {
		t.Fatalf("EncodeWAV error: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("RIFF")) {
		t.Fatalf("output is not a RIFF file")
	}

	out, rate, err := DecodeWAV(data)
	if err != nil {
		t.Fatalf("DecodeWAV error: %v", err)
	}
	if rate != 16000 {
		t.Errorf("sample rate: got %d, want 16000", rate)
	}
	if len(out) != len(in) {
		t.Fatalf("sample count: got %d, want %d", len(out), len(in))
	}
	for i := range in {
		if in[i] != out[i] {
			t.Fatalf("sample %d: got %d, want %d", i, out[i], in[i])
		}
	}
}

func TestDecodeWAVGarbage(t *testing.T) {
	if _, _, err := DecodeWAV([]byte("definitely not audio")); err == nil {
		t.Fatalf("expected error for non-wav input")
	}
}
