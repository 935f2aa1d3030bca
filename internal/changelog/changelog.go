package changelog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os/exec"
	"strconv"
	"strings"
)

// Entry is one commit in the generated changelog
type Entry struct {
	Hash      string `json:"hash"`
	ShortHash string `json:"short_hash"`
	Subject   string `json:"subject"`
	Author    string `json:"author"`
	Timestamp int64  `json:"timestamp"`
}

// gitLogFormat separates fields with the ASCII unit separator so commit
// subjects with arbitrary punctuation still parse
const gitLogFormat = "%H%x1f%h%x1f%an%x1f%at%x1f%s"

const fieldSep = "\x1f"

// Read runs git log in repoDir and returns the parsed entries, newest first
func Read(ctx context.Context, repoDir string, limit int) ([]Entry, error) {
	args := []string{"log", "--pretty=format:" + gitLogFormat}
	if limit > 0 {
		args = append(args, fmt.Sprintf("-n%d", limit))
	}

	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = repoDir
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("git log: %w: %s", err, strings.TrimSpace(stderr.String()))
	}
	return Parse(stdout.String())
}

// Parse converts git log output in the expected format into entries
func Parse(output string) ([]Entry, error) {
	var entries []Entry
	for _, line := range strings.Split(output, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		fields := strings.SplitN(line, fieldSep, 5)
		if len(fields) != 5 {
			return nil, fmt.Errorf("malformed git log line: %q", line)
		}
		timestamp, err := strconv.ParseInt(fields[3], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parse commit timestamp %q: %w", fields[3], err)
		}
		entries = append(entries, Entry{
			Hash:      fields[0],
			ShortHash: fields[1],
			Author:    fields[2],
			Timestamp: timestamp,
			Subject:   fields[4],
		})
	}
	return entries, nil
}

// WriteJSON emits the changelog as indented JSON for the in-app viewer
func WriteJSON(w io.Writer, entries []Entry) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(entries)
}
