package stt

import (
	"encoding/base64"
	"encoding/binary"
	"net"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	gws "github.com/gorilla/websocket"

	"github.com/voiceops/tripquery/types"
)

func TestBytesToInt16(t *testing.T) {
	in := []byte{0x00, 0x00, 0xff, 0x7f, 0x00, 0x80, 0x01}
	out := bytesToInt16(in)
	if len(out) != 3 {
		t.Fatalf("length: got %d, want 3 (odd byte dropped)", len(out))
	}
	if out[0] != 0 || out[1] != 32767 || out[2] != -32768 {
		t.Errorf("samples: got %v, want [0 32767 -32768]", out)
	}
}

// listenApp serves the fiber app on a loopback port so websocket
// clients can dial it.
func listenApp(t *testing.T, app *fiber.App) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listening: %v", err)
	}
	go app.Listener(ln)
	t.Cleanup(func() { app.Shutdown() })
	return ln.Addr().String()
}

func dialStream(t *testing.T, addr string) *gws.Conn {
	t.Helper()
	var conn *gws.Conn
	var err error
	for i := 0; i < 50; i++ {
		conn, _, err = gws.DefaultDialer.Dial("ws://"+addr+"/stream", nil)
		if err == nil {
			t.Cleanup(func() { conn.Close() })
			return conn
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatalf("dialing stream: %v", err)
	return nil
}

func pcmBytes(samples []int16) []byte {
	out := make([]byte, len(samples)*2)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(out[i*2:], uint16(s))
	}
	return out
}

func TestStreamSessionTranscribesAndForwards(t *testing.T) {
	whisper := fakeWhisper(t, "trips last week")
	backend := fakeAnalytics(t, types.QueryResponse{Status: "success"})

	analytics := NewAnalyticsClient(backend.URL)
	svc := NewService(&fakeRecorder{},
		NewWhisperClient(whisper.URL, "whisper-1", "en"), analytics, 16000)
	forwarder := NewForwarder(analytics)

	addr := listenApp(t, NewServer(svc, forwarder))
	conn := dialStream(t, addr)

	start := types.StreamEvent{Event: "start"}
	start.Start.SessionID = "sess-1"
	start.Start.SampleRate = 16000
	if err := conn.WriteJSON(start); err != nil {
		t.Fatalf("sending start: %v", err)
	}

	pcm := pcmBytes(sineSamples(3200))
	const chunkSize = 1024
	for off := 0; off < len(pcm); off += chunkSize {
		end := off + chunkSize
		if end > len(pcm) {
			end = len(pcm)
		}
		media := types.StreamEvent{Event: "media"}
		media.Media.Payload = base64.StdEncoding.EncodeToString(pcm[off:end])
		if err := conn.WriteJSON(media); err != nil {
			t.Fatalf("sending media: %v", err)
		}
	}

	if err := conn.WriteJSON(types.StreamEvent{Event: "stop"}); err != nil {
		t.Fatalf("sending stop: %v", err)
	}

	conn.SetReadDeadline(time.Now().Add(10 * time.Second))
	var transcript types.StreamTranscript
	if err := conn.ReadJSON(&transcript); err != nil {
		t.Fatalf("reading transcript: %v", err)
	}
	if transcript.Event != "transcript" || !transcript.Final {
		t.Errorf("transcript frame: %+v", transcript)
	}
	if transcript.Transcription != "trips last week" {
		t.Errorf("transcription: got %q", transcript.Transcription)
	}

	// The forwarder was not started, so the final transcript must sit
	// in its queue. The enqueue happens just after the write, so poll.
	deadline := time.Now().Add(2 * time.Second)
	for forwarder.Input.Len() == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	queued := forwarder.Input.Drain()
	if len(queued) != 1 || queued[0] != "trips last week" {
		t.Errorf("forwarder queue: got %v, want [trips last week]", queued)
	}
}

func TestStreamSessionSilentClip(t *testing.T) {
	whisper := fakeWhisper(t, "should never be reached")
	backend := fakeAnalytics(t, types.QueryResponse{})

	analytics := NewAnalyticsClient(backend.URL)
	svc := NewService(&fakeRecorder{},
		NewWhisperClient(whisper.URL, "whisper-1", "en"), analytics, 16000)
	forwarder := NewForwarder(analytics)

	addr := listenApp(t, NewServer(svc, forwarder))
	conn := dialStream(t, addr)

	start := types.StreamEvent{Event: "start"}
	start.Start.SessionID = "sess-2"
	conn.WriteJSON(start)

	media := types.StreamEvent{Event: "media"}
	media.Media.Payload = base64.StdEncoding.EncodeToString(pcmBytes(make([]int16, 1600)))
	conn.WriteJSON(media)
	conn.WriteJSON(types.StreamEvent{Event: "stop"})

	conn.SetReadDeadline(time.Now().Add(10 * time.Second))
	var transcript types.StreamTranscript
	if err := conn.ReadJSON(&transcript); err != nil {
		t.Fatalf("reading transcript: %v", err)
	}
	if transcript.Event != "error" {
		t.Errorf("event: got %q, want error", transcript.Event)
	}
	if forwarder.Input.Len() != 0 {
		t.Errorf("silent clip reached the forwarder queue")
	}
}
