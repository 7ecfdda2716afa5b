package services

import (
	"context"
	"regexp"
	"strings"

	yt "github.com/kkdai/youtube/v2"

	"subtitle-collector/internal/models"
)

// UntitledPlaceholder is stored when the platform reports no title.
const UntitledPlaceholder = "Untitled"

// videoURLPatterns are tried in order; the first capture group is the video id.
var videoURLPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?:https?://)?(?:www\.|m\.)?youtube\.com/watch\?(?:.*&)?v=([^&#]+)`),
	regexp.MustCompile(`(?:https?://)?youtu\.be/([^?&#/\s]+)`),
}

// ResolveVideoID extracts the canonical video id from a watch-page or
// short-link URL.
func ResolveVideoID(rawURL string) (models.VideoReference, error) {
	trimmed := strings.TrimSpace(rawURL)
	for _, re := range videoURLPatterns {
		if m := re.FindStringSubmatch(trimmed); len(m) > 1 && m[1] != "" {
			return models.VideoReference{URL: trimmed, VideoID: m[1]}, nil
		}
	}
	return models.VideoReference{}, &InvalidReferenceError{URL: rawURL}
}

// WatchURL is the canonical page for a video id.
func WatchURL(videoID string) string {
	return "https://www.youtube.com/watch?v=" + videoID
}

// MetadataFetcher looks up the title and thumbnail of a video.
type MetadataFetcher interface {
	FetchMetadata(ctx context.Context, ref models.VideoReference) (*models.VideoMetadata, error)
}

// InnertubeMetadata reads metadata through the player API instead of the
// external tool.
type InnertubeMetadata struct {
	client *yt.Client
}

func NewInnertubeMetadata() *InnertubeMetadata {
	return &InnertubeMetadata{client: &yt.Client{}}
}

func (s *InnertubeMetadata) FetchMetadata(ctx context.Context, ref models.VideoReference) (*models.VideoMetadata, error) {
	video, err := s.client.GetVideoContext(ctx, ref.VideoID)
	if err != nil {
		return nil, &MetadataFetchError{VideoID: ref.VideoID, Err: err}
	}

	meta := &models.VideoMetadata{Title: strings.TrimSpace(video.Title)}
	if meta.Title == "" {
		meta.Title = UntitledPlaceholder
	}
	if n := len(video.Thumbnails); n > 0 && video.Thumbnails[n-1].URL != "" {
		thumb := video.Thumbnails[n-1].URL
		meta.Thumbnail = &thumb
	}
	return meta, nil
}
