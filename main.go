// Package main provides the entry point for word2vec3d, a terminal UI for
// exploring text embeddings. It embeds a preset vocabulary with Ollama or the
// Hugging Face Inference API, fits a three-component PCA basis and renders
// the projected words as a rotating 3D scatter.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dora-ryukyu/word2vec3d/commands"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := commands.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(1)
	}
}
