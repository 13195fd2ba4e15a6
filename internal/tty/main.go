//go:build ignore

// Command tty is a manual test tool for Unix terminal I/O. Run it directly (go run
// ./internal/tty/main.go) and type keys; each keystroke is echoed back hex-encoded. The ignore
// build constraint keeps this file out of package tty's build.
package main

import (
	"context"
	"log"
	"time"

	"github.com/smoynes/forge/internal/tty"
)

func main() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := tty.WithConsole(ctx, func(ctx context.Context, console *tty.Console) {
		out := console.Writer()

		for {
			select {
			case key := <-console.Keys():
				_, _ = out.Write([]byte{'\r', '\n'})
				log.SetOutput(out)
				log.Printf("key: %#x", key)

				if key == 'q' {
					return
				}
			case <-ctx.Done():
				return
			}
		}
	})

	if err != nil {
		log.Fatal(err)
	}
}
