// Command irisseg locates the pupil and iris in eye images and prints the
// result as JSON, one object per input.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"image"
	"io"
	"os"
	"time"

	"github.com/joho/godotenv"

	"go-iris-segmenter/internal/config"
	"go-iris-segmenter/internal/container"
	"go-iris-segmenter/internal/logger"
	"go-iris-segmenter/internal/overlay"
	"go-iris-segmenter/internal/storage"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("irisseg", flag.ContinueOnError)
	fs.SetOutput(stderr)
	resolution := fs.Int("resolution", 0, "normalized canvas side (default from config, 256)")
	overlayPath := fs.String("overlay", "", "write a PNG with both boundaries drawn (single input only)")
	workers := fs.Int("workers", 0, "concurrent images when several inputs are given (0 = NumCPU)")
	configPath := fs.String("config", "", "YAML config file (default $SEGMENTER_CONFIG)")
	fs.Usage = func() {
		fmt.Fprintln(stderr, "Usage: irisseg [flags] <path|data-uri|url> [more inputs...]")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return 1
	}
	inputs := fs.Args()
	if len(inputs) == 0 {
		fs.Usage()
		return 1
	}
	if *overlayPath != "" && len(inputs) != 1 {
		fmt.Fprintln(stderr, "irisseg: -overlay needs exactly one input")
		return 1
	}

	_ = godotenv.Load()
	logger.Configure(stderr, envOr("LOG_LEVEL", "warn"))

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(stderr, "irisseg: %v\n", err)
		return 1
	}
	if *resolution != 0 {
		cfg.Segmentation.Resolution = *resolution
	}
	if *workers != 0 {
		cfg.Workers = *workers
	}

	c, err := container.NewContainer(cfg, container.Options{AllowLocalFiles: true, WithoutHTTP: true})
	if err != nil {
		fmt.Fprintf(stderr, "irisseg: %v\n", err)
		return 1
	}
	defer c.Close()

	ctx, cancel := context.WithTimeout(context.Background(), cfg.RequestTimeout*time.Duration(len(inputs)))
	defer cancel()

	enc := json.NewEncoder(stdout)
	svc := c.Service()

	if *overlayPath != "" {
		img, resp, err := svc.Overlay(ctx, inputs[0])
		if err != nil {
			fmt.Fprintf(stderr, "irisseg: %s: %v\n", storage.Redact(inputs[0]), err)
			return 1
		}
		if err := writePNG(*overlayPath, img); err != nil {
			fmt.Fprintf(stderr, "irisseg: %v\n", err)
			return 1
		}
		enc.Encode(resp.Iris)
		return 0
	}

	status := 0
	for _, item := range svc.SegmentBatch(ctx, inputs) {
		if item.Err != nil {
			fmt.Fprintf(stderr, "irisseg: %s: %v\n", storage.Redact(item.Source), item.Err)
			status = 1
			continue
		}
		enc.Encode(item.Response.Iris)
	}
	return status
}

func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create overlay file: %w", err)
	}
	if err := overlay.EncodePNG(f, img); err != nil {
		f.Close()
		return fmt.Errorf("failed to write overlay: %w", err)
	}
	return f.Close()
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
