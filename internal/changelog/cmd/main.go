package main

import (
	"context"
	"flag"
	"log"
	"os"

	"github.com/easternstar/quiz/internal/changelog"
)

// Generates the JSON changelog consumed by the in-app viewer. Run from the
// repository root at build time:
//
//	go run ./internal/changelog/cmd -out static/changelog.json
func main() {
	repoDir := flag.String("repo", ".", "repository to read git history from")
	out := flag.String("out", "changelog.json", "output file path")
	limit := flag.Int("limit", 100, "maximum number of commits, 0 for all")
	flag.Parse()

	entries, err := changelog.Read(context.Background(), *repoDir, *limit)
	if err != nil {
		log.Fatalf("Failed to read git history: %v", err)
	}

	f, err := os.Create(*out)
	if err != nil {
		log.Fatalf("Failed to create %s: %v", *out, err)
	}
	defer f.Close()

	if err := changelog.WriteJSON(f, entries); err != nil {
		log.Fatalf("Failed to write changelog: %v", err)
	}

	log.Printf("Wrote %d entries to %s", len(entries), *out)
}
