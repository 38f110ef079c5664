package client

import (
	"bufio"
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/voiceops/tripquery/stt"
)

const banner = `🎤 Voice Query Client
Commands:
  start          begin recording
  stop           stop recording and transcribe
  quick [secs]   record for N seconds (default 5) and transcribe
  stream <wav>   send a WAV file over the live websocket
  status         show recording state
  health         check the server
  exit           quit`

// CLI is the interactive voice client loop.
type CLI struct {
	client *Client
	in     io.Reader
	out    io.Writer
}

// NewCLI wires the client to the given streams.
func NewCLI(client *Client, in io.Reader, out io.Writer) *CLI {
	return &CLI{client: client, in: in, out: out}
}

// Run reads commands until exit or EOF.
func (c *CLI) Run(ctx context.Context) error {
	fmt.Fprintln(c.out, banner)

	scanner := bufio.NewScanner(c.in)
	for {
		fmt.Fprint(c.out, "> ")
		if !scanner.Scan() {
			return scanner.Err()
		}

		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		switch strings.ToLower(fields[0]) {
		case "exit", "quit":
			fmt.Fprintln(c.out, "Bye!")
			return nil
		case "start":
			c.report(c.client.StartRecording(ctx), "🔴 Recording... say your query, then type 'stop'.")
		case "stop":
			c.showTranscription(c.client.StopRecording(ctx))
		case "quick":
			secs := 5
			if len(fields) > 1 {
				if n, err := strconv.Atoi(fields[1]); err == nil && n > 0 {
					secs = n
				}
			}
			fmt.Fprintf(c.out, "🔴 Recording for %d seconds...\n", secs)
			c.showTranscription(c.client.QuickQuery(ctx, time.Duration(secs)*time.Second))
		case "stream":
			if len(fields) < 2 {
				fmt.Fprintln(c.out, "Usage: stream <file.wav>")
				continue
			}
			c.showTranscription(c.streamFile(ctx, fields[1]))
		case "status":
			recording, rate, err := c.client.Status(ctx)
			if err != nil {
				fmt.Fprintf(c.out, "❌ %v\n", err)
				continue
			}
			fmt.Fprintf(c.out, "Recording: %v, sample rate: %d Hz\n", recording, rate)
		case "health":
			c.report(c.client.Health(ctx), "✅ Server is healthy")
		default:
			fmt.Fprintf(c.out, "Unknown command %q\n", fields[0])
		}
	}
}

// streamFile decodes a WAV file and replays its PCM over the stream
// websocket.
func (c *CLI) streamFile(ctx context.Context, path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	samples, rate, err := stt.DecodeWAV(data)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}

	pcm := make([]byte, len(samples)*2)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(pcm[i*2:], uint16(s))
	}
	return c.client.StreamPCM(ctx, pcm, rate)
}

func (c *CLI) report(err error, ok string) {
	if err != nil {
		fmt.Fprintf(c.out, "❌ %v\n", err)
		return
	}
	fmt.Fprintln(c.out, ok)
}

func (c *CLI) showTranscription(text string, err error) {
	if err != nil {
		fmt.Fprintf(c.out, "❌ %v\n", err)
		return
	}
	if text == "" {
		fmt.Fprintln(c.out, "🤷 Nothing recognized, try again.")
		return
	}
	fmt.Fprintf(c.out, "📝 You said: %s\n", text)
}
