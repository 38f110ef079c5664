package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/voiceops/tripquery/client"
	"github.com/voiceops/tripquery/config"
)

func main() {
	quick := flag.Int("quick", 0, "record for N seconds, print the transcription and exit")
	flag.Parse()

	cfg := config.Load()
	c := client.New(cfg.STTServerURL)
	ctx := context.Background()

	if err := c.Health(ctx); err != nil {
		log.Fatalf("STT server not reachable at %s: %v", cfg.STTServerURL, err)
	}

	if *quick > 0 {
		fmt.Printf("🔴 Recording for %d seconds...\n", *quick)
		text, err := c.QuickQuery(ctx, time.Duration(*quick)*time.Second)
		if err != nil {
			log.Fatalf("Quick query failed: %v", err)
		}
		fmt.Printf("📝 You said: %s\n", text)
		return
	}

	cli := client.NewCLI(c, os.Stdin, os.Stdout)
	if err := cli.Run(ctx); err != nil {
		log.Fatalf("Client failed: %v", err)
	}
}
