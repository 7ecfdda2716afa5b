package models

import "github.com/google/uuid"

// DateTimeLayout is the second-precision local timestamp stored with every record.
const DateTimeLayout = "2006-01-02 15:04:05"

type VideoReference struct {
	URL     string `json:"url"`
	VideoID string `json:"video_id"`
}

type VideoMetadata struct {
	Title     string  `json:"title"`
	Thumbnail *string `json:"thumbnail"`
}

type SubtitleRecord struct {
	VideoID    string  `json:"video_id" bson:"_id" dynamodbav:"video_id"`
	Title      string  `json:"title" bson:"title" dynamodbav:"title"`
	DateTime   string  `json:"datetime" bson:"datetime" dynamodbav:"datetime"`
	Content    string  `json:"content" bson:"content" dynamodbav:"content"`
	Thumbnail  *string `json:"thumbnail,omitempty" bson:"thumbnail,omitempty" dynamodbav:"thumbnail,omitempty"`
	NumericTag *int    `json:"numeric_tag,omitempty" bson:"numeric_tag,omitempty" dynamodbav:"numeric_tag,omitempty"`
}

// ArchiveLedgerEntry is one row of the day-partitioned CSV export.
type ArchiveLedgerEntry struct {
	VideoID  string
	Title    string
	DateTime string
	Content  string
	Link     string
}

// LedgerEntry builds the archive row for the record; link is the video's page.
func (r *SubtitleRecord) LedgerEntry(link string) ArchiveLedgerEntry {
	return ArchiveLedgerEntry{
		VideoID:  r.VideoID,
		Title:    r.Title,
		DateTime: r.DateTime,
		Content:  r.Content,
		Link:     link,
	}
}

type SubmitRequest struct {
	URL        string `json:"url"`
	NumericTag *int   `json:"numeric_tag,omitempty"`
	// SubmissionID lets a client subscribe to stage events before submitting.
	SubmissionID uuid.UUID `json:"submission_id,omitempty"`
}

type SubmitResult struct {
	SubmissionID uuid.UUID       `json:"submission_id"`
	Record       *SubtitleRecord `json:"record"`
	ArchiveError string          `json:"archive_error,omitempty"`
}

type UpdateSubtitleRequest struct {
	Content string `json:"content"`
}

// SearchResult is a single hit of a keyword search against the video platform.
type SearchResult struct {
	VideoID   string `json:"video_id"`
	Title     string `json:"title"`
	Thumbnail string `json:"thumbnail"`
}

type ListQuery struct {
	Search string
	Limit  int
	Offset int
}
