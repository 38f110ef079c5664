package stt

import (
	"context"
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"log"

	"github.com/gofiber/websocket/v2"

	"github.com/voiceops/tripquery/types"
)

// StreamSession handles one websocket audio stream. Clients send JSON
// events: "start" with the session parameters, "media" frames carrying
// base64 PCM chunks, and "stop" to finish. The final transcription is
// written back and optionally forwarded to analytics.
type StreamSession struct {
	ws         *websocket.Conn
	svc        *Service
	forwarder  *Forwarder
	sessionID  string
	sampleRate int
	pcm        []byte
}

// NewStreamSession wraps an upgraded websocket connection.
func NewStreamSession(ws *websocket.Conn, svc *Service, forwarder *Forwarder) *StreamSession {
	return &StreamSession{
		ws:         ws,
		svc:        svc,
		forwarder:  forwarder,
		sampleRate: svc.SampleRate(),
	}
}

// Run reads stream events until stop or disconnect.
func (s *StreamSession) Run() {
	defer s.ws.Close()

	for {
		_, msg, err := s.ws.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Println("Stream closed:", err)
			} else {
				log.Printf("Stream read error: %v", err)
			}
			return
		}

		var ev types.StreamEvent
		if err := json.Unmarshal(msg, &ev); err != nil {
			log.Printf("Stream event unmarshal error: %v", err)
			continue
		}

		switch ev.Event {
		case "start":
			s.sessionID = ev.Start.SessionID
			if ev.Start.SampleRate > 0 {
				s.sampleRate = ev.Start.SampleRate
			}
			s.pcm = s.pcm[:0]
			log.Printf("Stream started: session=%s rate=%d", s.sessionID, s.sampleRate)

		case "media":
			chunk, err := base64.StdEncoding.DecodeString(ev.Media.Payload)
			if err != nil {
				log.Printf("Media decode error: %v", err)
				continue
			}
			s.pcm = append(s.pcm, chunk...)

		case "stop":
			log.Printf("Stream stopped: session=%s, %d bytes buffered", s.sessionID, len(s.pcm))
			s.finish()
			return

		default:
			log.Printf("Unknown stream event: %s", ev.Event)
		}
	}
}

func (s *StreamSession) finish() {
	text, err := s.svc.TranscribeSamples(context.Background(), bytesToInt16(s.pcm), s.sampleRate)
	if err != nil {
		log.Printf("Stream transcription failed: %v", err)
		s.write(types.StreamTranscript{Event: "error", Transcription: ""})
		return
	}

	s.write(types.StreamTranscript{Event: "transcript", Transcription: text, Final: true})

	if s.forwarder != nil && text != "" {
		s.forwarder.Input.Enqueue(text)
	}
}

func (s *StreamSession) write(t types.StreamTranscript) {
	if err := s.ws.WriteJSON(t); err != nil {
		log.Printf("Stream write error: %v", err)
	}
}

// bytesToInt16 reinterprets little-endian PCM bytes as samples. An odd
// trailing byte is dropped.
func bytesToInt16(b []byte) []int16 {
	out := make([]int16, len(b)/2)
	for i := range out {
		out[i] = int16(binary.LittleEndian.Uint16(b[i*2:]))
	}
	return out
}
