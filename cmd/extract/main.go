// Command extract runs the extraction service on the given locators and
// prints the results as JSON.
//
//	extract [-combine] [-lang eng] [-timeout 60s] <locator>...
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/serisow/docextract/bootstrap"
	"github.com/serisow/docextract/config"
	"github.com/serisow/docextract/extract_type"
	"github.com/serisow/docextract/services/extract_service"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	cfg := config.Load()

	fs := flag.NewFlagSet("extract", flag.ContinueOnError)
	fs.SetOutput(stderr)
	combine := fs.Bool("combine", false, "print the combined text instead of JSON results")
	lang := fs.String("lang", cfg.OCRLanguage, "tesseract language for images")
	timeout := fs.Duration("timeout", cfg.FetchTimeout, "overall timeout")
	verbose := fs.Bool("v", false, "debug logging on stderr")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() == 0 {
		fmt.Fprintln(stderr, "usage: extract [-combine] [-lang eng] [-timeout 60s] <locator>...")
		return 2
	}

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	cfg.OCRLanguage = *lang
	service := bootstrap.NewExtractService(cfg, true, logger)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	results := service.ExtractMultipleFiles(ctx, fs.Args())
	return printResults(stdout, stderr, results, *combine)
}

func printResults(stdout, stderr io.Writer, results []extract_type.ExtractedContent, combine bool) int {
	if combine {
		fmt.Fprintln(stdout, extract_service.CombineExtractedContent(results))
	} else {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(results); err != nil {
			fmt.Fprintf(stderr, "failed to encode results: %v\n", err)
			return 1
		}
	}

	for _, r := range results {
		if r.Error != "" {
			return 1
		}
	}
	return 0
}
