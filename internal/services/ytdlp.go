package services

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"subtitle-collector/internal/models"
)

// CaptionLanguage is the only caption track the collector downloads.
const CaptionLanguage = "en"

const searchPlaceholder = "N/A"

// CommandRunner runs an external program and returns its captured output.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) (stdout, stderr []byte, err error)
}

type ExecRunner struct{}

func (ExecRunner) Run(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stdout.Bytes(), stderr.Bytes(), err
}

// CaptionFetcher downloads the caption track of a video into outDir and
// returns the path of the staged file.
type CaptionFetcher interface {
	FetchCaption(ctx context.Context, ref models.VideoReference, outDir string) (string, error)
}

// YTDLP drives the yt-dlp binary for metadata, captions and keyword search.
type YTDLP struct {
	runner  CommandRunner
	binary  string
	timeout time.Duration
}

func NewYTDLP(runner CommandRunner, binary string, timeout time.Duration) *YTDLP {
	if runner == nil {
		runner = ExecRunner{}
	}
	if binary == "" {
		binary = "yt-dlp"
	}
	return &YTDLP{runner: runner, binary: binary, timeout: timeout}
}

func (y *YTDLP) run(ctx context.Context, args ...string) ([]byte, string, error) {
	if y.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, y.timeout)
		defer cancel()
	}

	stdout, stderr, err := y.runner.Run(ctx, y.binary, args...)
	if err != nil && errors.Is(ctx.Err(), context.DeadlineExceeded) {
		err = fmt.Errorf("%s timed out after %s: %w", y.binary, y.timeout, err)
	}
	return stdout, strings.TrimSpace(string(stderr)), err
}

type ytdlpVideoInfo struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	Thumbnail  string `json:"thumbnail"`
	Thumbnails []struct {
		URL string `json:"url"`
	} `json:"thumbnails"`
}

func (v *ytdlpVideoInfo) lastThumbnail() string {
	for i := len(v.Thumbnails) - 1; i >= 0; i-- {
		if v.Thumbnails[i].URL != "" {
			return v.Thumbnails[i].URL
		}
	}
	return ""
}

func (y *YTDLP) FetchMetadata(ctx context.Context, ref models.VideoReference) (*models.VideoMetadata, error) {
	stdout, stderr, err := y.run(ctx, "-J", "--skip-download", "--no-playlist", WatchURL(ref.VideoID))
	if err != nil {
		return nil, &MetadataFetchError{VideoID: ref.VideoID, Stderr: stderr, Err: err}
	}

	var info ytdlpVideoInfo
	if err := json.Unmarshal(stdout, &info); err != nil {
		return nil, &MetadataFetchError{VideoID: ref.VideoID, Err: fmt.Errorf("invalid metadata document: %w", err)}
	}

	meta := &models.VideoMetadata{Title: strings.TrimSpace(info.Title)}
	if meta.Title == "" {
		meta.Title = UntitledPlaceholder
	}

	thumb := info.Thumbnail
	if thumb == "" {
		thumb = info.lastThumbnail()
	}
	if thumb != "" {
		meta.Thumbnail = &thumb
	}
	return meta, nil
}

// FetchCaption downloads the auto-generated English track as
// <outDir>/<id>.en.vtt. Leftover files for the same id are removed first.
func (y *YTDLP) FetchCaption(ctx context.Context, ref models.VideoReference, outDir string) (string, error) {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return "", &CaptionFetchError{VideoID: ref.VideoID, Err: fmt.Errorf("failed to create staging dir: %w", err)}
	}
	removeStagedCaptions(outDir, ref.VideoID)

	template := filepath.Join(outDir, ref.VideoID+".%(ext)s")
	_, stderr, err := y.run(ctx,
		"--write-auto-sub",
		"--sub-lang", CaptionLanguage,
		"--sub-format", "vtt",
		"--skip-download",
		"--no-playlist",
		"-o", template,
		WatchURL(ref.VideoID),
	)
	if err != nil {
		return "", &CaptionFetchError{VideoID: ref.VideoID, Stderr: stderr, Err: err}
	}

	return locateCaption(outDir, ref.VideoID)
}

func locateCaption(dir, videoID string) (string, error) {
	expected := filepath.Join(dir, videoID+"."+CaptionLanguage+".vtt")
	if _, err := os.Stat(expected); err == nil {
		return expected, nil
	}

	matches := stagedCaptions(dir, videoID)
	if len(matches) == 0 {
		return "", &CaptionNotFoundError{VideoID: videoID, Dir: dir}
	}
	return matches[0], nil
}

// stagedCaptions lists <id>.*.vtt files in dir, sorted by name.
func stagedCaptions(dir, videoID string) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}

	var out []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, videoID+".") || !strings.HasSuffix(name, ".vtt") {
			continue
		}
		out = append(out, filepath.Join(dir, name))
	}
	return out
}

func removeStagedCaptions(dir, videoID string) {
	for _, path := range stagedCaptions(dir, videoID) {
		if err := os.Remove(path); err != nil {
			log.Printf("failed to remove stale caption file %s: %v", path, err)
		}
	}
}

// Search runs a keyword search and returns at most limit hits.
func (y *YTDLP) Search(ctx context.Context, keyword string, limit int) ([]models.SearchResult, error) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return []models.SearchResult{}, nil
	}
	if limit <= 0 {
		limit = 30
	}

	stdout, stderr, err := y.run(ctx,
		fmt.Sprintf("ytsearch%d:%s", limit, keyword),
		"--dump-json",
		"--default-search", "ytsearch",
		"--no-playlist",
		"--flat-playlist",
		"--skip-download",
		"--quiet",
		"--ignore-errors",
	)
	if err != nil && len(stdout) == 0 {
		if stderr != "" {
			return nil, fmt.Errorf("search failed: %w: %s", err, stderr)
		}
		return nil, fmt.Errorf("search failed: %w", err)
	}

	return parseSearchResults(stdout), nil
}

// parseSearchResults reads one JSON document per line, skipping lines that
// do not decode.
func parseSearchResults(out []byte) []models.SearchResult {
	results := []models.SearchResult{}
	scanner := bufio.NewScanner(bytes.NewReader(out))
	scanner.Buffer(make([]byte, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		var info ytdlpVideoInfo
		if err := json.Unmarshal(line, &info); err != nil {
			log.Printf("skipping undecodable search line: %v", err)
			continue
		}

		res := models.SearchResult{
			VideoID:   orPlaceholder(info.ID),
			Title:     orPlaceholder(info.Title),
			Thumbnail: orPlaceholder(info.lastThumbnail()),
		}
		results = append(results, res)
	}
	return results
}

func orPlaceholder(s string) string {
	if strings.TrimSpace(s) == "" {
		return searchPlaceholder
	}
	return s
}
