package stt

import (
	"context"
	"log"
	"time"

	"github.com/voiceops/tripquery/queue"
)

// Forwarder drains finished transcriptions and sends them to the
// analytics server in the background, so streaming sessions do not
// block on query processing.
type Forwarder struct {
	Input     *queue.Queue[string]
	analytics *AnalyticsClient
	ctx       context.Context
	cancel    context.CancelFunc
}

// NewForwarder builds a forwarder over its own input queue.
func NewForwarder(analytics *AnalyticsClient) *Forwarder {
	ctx, cancel := context.WithCancel(context.Background())
	return &Forwarder{
		Input:     queue.New[string](),
		analytics: analytics,
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Start begins the processing loop in its own goroutine.
func (f *Forwarder) Start() {
	go f.process()
}

func (f *Forwarder) process() {
	for {
		select {
		case <-f.ctx.Done():
			log.Println("Forwarder: shutting down")
			return
		default:
			if f.Input.Len() == 0 {
				time.Sleep(100 * time.Millisecond)
				continue
			}

			transcript, ok := f.Input.Dequeue()
			if !ok || transcript == "" {
				continue
			}

			resp, err := f.analytics.Process(f.ctx, transcript)
			if err != nil {
				log.Printf("Forwarder: analytics call failed: %v", err)
				continue
			}
			log.Printf("Forwarder: %q processed, %d charts", transcript, len(resp.Charts))
		}
	}
}

// Stop terminates the processing loop.
func (f *Forwarder) Stop() {
	f.cancel()
}
