package services

import (
	"errors"
	"fmt"
)

// Kind is the closed set of submission failure categories.
type Kind int

const (
	KindUnknown Kind = iota
	KindInvalidReference
	KindMetadataFetch
	KindDuplicate
	KindStoreAccess
	KindCaptionFetch
	KindCaptionNotFound
	KindEmptyCaption
	KindPrimaryPersist
)

func (k Kind) String() string {
	switch k {
	case KindInvalidReference:
		return "invalid_reference"
	case KindMetadataFetch:
		return "metadata_fetch"
	case KindDuplicate:
		return "duplicate_submission"
	case KindStoreAccess:
		return "store_access"
	case KindCaptionFetch:
		return "caption_fetch"
	case KindCaptionNotFound:
		return "caption_not_found"
	case KindEmptyCaption:
		return "empty_caption"
	case KindPrimaryPersist:
		return "primary_persist"
	default:
		return "unknown"
	}
}

// NoCaptions reports whether k belongs to the "no captions available" family.
func (k Kind) NoCaptions() bool {
	return k == KindCaptionFetch || k == KindCaptionNotFound || k == KindEmptyCaption
}

type InvalidReferenceError struct {
	URL string
}

func (e *InvalidReferenceError) Error() string {
	return fmt.Sprintf("invalid YouTube URL: %q", e.URL)
}

type MetadataFetchError struct {
	VideoID string
	Stderr  string
	Err     error
}

func (e *MetadataFetchError) Error() string {
	if e.Stderr != "" {
		return fmt.Sprintf("failed to fetch metadata for %s: %v: %s", e.VideoID, e.Err, e.Stderr)
	}
	return fmt.Sprintf("failed to fetch metadata for %s: %v", e.VideoID, e.Err)
}

func (e *MetadataFetchError) Unwrap() error { return e.Err }

type DuplicateSubmissionError struct {
	VideoID string
	// InFlight is set when another submission for the same video is still running.
	InFlight bool
}

func (e *DuplicateSubmissionError) Error() string {
	if e.InFlight {
		return fmt.Sprintf("video %s is already being submitted", e.VideoID)
	}
	return fmt.Sprintf("video %s has already been submitted", e.VideoID)
}

// StoreAccessError means the duplicate check itself could not run.
type StoreAccessError struct {
	VideoID string
	Err     error
}

func (e *StoreAccessError) Error() string {
	return fmt.Sprintf("failed to check store for %s: %v", e.VideoID, e.Err)
}

func (e *StoreAccessError) Unwrap() error { return e.Err }

type CaptionFetchError struct {
	VideoID string
	Stderr  string
	Err     error
}

func (e *CaptionFetchError) Error() string {
	if e.Stderr != "" {
		return fmt.Sprintf("failed to fetch captions for %s: %v: %s", e.VideoID, e.Err, e.Stderr)
	}
	return fmt.Sprintf("failed to fetch captions for %s: %v", e.VideoID, e.Err)
}

func (e *CaptionFetchError) Unwrap() error { return e.Err }

// CaptionNotFoundError means the tool succeeded but left no caption file behind.
type CaptionNotFoundError struct {
	VideoID string
	Dir     string
}

func (e *CaptionNotFoundError) Error() string {
	return fmt.Sprintf("no caption file for %s found in %s", e.VideoID, e.Dir)
}

type EmptyCaptionError struct {
	Path string
}

func (e *EmptyCaptionError) Error() string {
	return fmt.Sprintf("caption file %s contained no usable text", e.Path)
}

type PrimaryPersistError struct {
	VideoID string
	Err     error
}

func (e *PrimaryPersistError) Error() string {
	return fmt.Sprintf("failed to save subtitle record %s: %v", e.VideoID, e.Err)
}

func (e *PrimaryPersistError) Unwrap() error { return e.Err }

// Classify maps a submission error to its Kind.
func Classify(err error) Kind {
	var (
		invalidRef *InvalidReferenceError
		metadata   *MetadataFetchError
		duplicate  *DuplicateSubmissionError
		storeErr   *StoreAccessError
		fetchErr   *CaptionFetchError
		notFound   *CaptionNotFoundError
		empty      *EmptyCaptionError
		persistErr *PrimaryPersistError
	)

	switch {
	case err == nil:
		return KindUnknown
	case errors.As(err, &invalidRef):
		return KindInvalidReference
	case errors.As(err, &metadata):
		return KindMetadataFetch
	case errors.As(err, &duplicate):
		return KindDuplicate
	case errors.As(err, &storeErr):
		return KindStoreAccess
	case errors.As(err, &fetchErr):
		return KindCaptionFetch
	case errors.As(err, &notFound):
		return KindCaptionNotFound
	case errors.As(err, &empty):
		return KindEmptyCaption
	case errors.As(err, &persistErr):
		return KindPrimaryPersist
	default:
		return KindUnknown
	}
}
