// Termtest is a testing tool for Unix terminal I/O. Lacking simple PTY support, running this tool
// manually is easier than writing an automated test.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/smoynes/forge/internal/log"
	"github.com/smoynes/forge/internal/tty"
)

var logger = log.DefaultLogger()

func main() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	logger.Info("Polling keyboard. Type keys; q quits.")

	err := tty.WithConsole(ctx, func(ctx context.Context, console *tty.Console) {
		out := console.Writer()

		for {
			select {
			case key := <-console.Keys():
				fmt.Fprintf(out, "\r\nkey: %#x\r\n", key)

				if key == 'q' {
					return
				}
			case <-ctx.Done():
				return
			}
		}
	})

	if err != nil {
		logger.Error(err.Error())
		os.Exit(1)
	}
}
