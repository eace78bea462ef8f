// Command solvee solves equations step by step from the command line.
//
// Usage:
//
//	solvee solve "2x^2 - 4x - 6 = 0" --expect "-1, 3"
//	solvee solve "sin(2x) = 1/2" --strategy trigonometrical
//	solvee apply "2x + 4 = 10" subtract:4 divide:2
//	solvee operations --preset polynomial
//	solvee strategies
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
