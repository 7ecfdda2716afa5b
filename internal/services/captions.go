package services

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log"
	"os"
	"regexp"
	"strings"
)

const cueTimingSeparator = "-->"

var inlineMarkup = regexp.MustCompile(`<[^>]+>`)

type normalizeConfig struct {
	dropHeader   bool
	collapseCues bool
}

// NormalizeOption enables cleanup beyond the plain line flattening.
type NormalizeOption func(*normalizeConfig)

// DropCaptionHeader drops the WEBVTT header and the Kind:/Language: lines.
func DropCaptionHeader() NormalizeOption {
	return func(c *normalizeConfig) { c.dropHeader = true }
}

// CollapseRollingCues drops the first line of a cue when it repeats the last
// line of the previous cue, the way auto-generated tracks roll text forward.
// Repeats inside a single cue are kept.
func CollapseRollingCues() NormalizeOption {
	return func(c *normalizeConfig) { c.collapseCues = true }
}

// NormalizeCaption flattens a WebVTT document into one line of plain text.
// Cue timing lines and markup are dropped and every other non-empty line is
// kept, joined with single spaces.
func NormalizeCaption(r io.Reader, opts ...NormalizeOption) (string, error) {
	var cfg normalizeConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	var (
		kept     []string
		cueStart bool
	)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.Contains(line, cueTimingSeparator) {
			cueStart = true
			continue
		}
		line = strings.TrimSpace(inlineMarkup.ReplaceAllString(line, ""))
		if line == "" {
			continue
		}
		if cfg.dropHeader && isCaptionHeader(line) {
			continue
		}

		rolled := cfg.collapseCues && cueStart && len(kept) > 0 && kept[len(kept)-1] == line
		cueStart = false
		if rolled {
			continue
		}
		kept = append(kept, line)
	}
	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("failed to read caption: %w", err)
	}
	return strings.Join(kept, " "), nil
}

func isCaptionHeader(line string) bool {
	return line == "WEBVTT" ||
		strings.HasPrefix(line, "WEBVTT ") ||
		strings.HasPrefix(line, "Kind:") ||
		strings.HasPrefix(line, "Language:")
}

// NormalizeCaptionFile normalizes the staged caption at path and removes the
// file. A file that is already gone counts as empty.
func NormalizeCaptionFile(path string, opts ...NormalizeOption) (string, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", &EmptyCaptionError{Path: path}
	}
	if err != nil {
		return "", fmt.Errorf("failed to open caption %s: %w", path, err)
	}

	text, readErr := NormalizeCaption(f, opts...)
	f.Close()
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Printf("failed to remove staged caption %s: %v", path, err)
	}

	if readErr != nil {
		return "", readErr
	}
	if text == "" {
		return "", &EmptyCaptionError{Path: path}
	}
	return text, nil
}
