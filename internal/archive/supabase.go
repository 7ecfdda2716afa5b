package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"strings"

	storage_go "github.com/supabase-community/storage-go"
)

// SupabaseAPI is the subset of the Supabase storage client used by SupabaseStore.
type SupabaseAPI interface {
	DownloadFile(bucketId string, filePath string, urlOptions ...storage_go.UrlOptions) ([]byte, error)
	UploadFile(bucketId string, relativePath string, data io.Reader, fileOptions ...storage_go.FileOptions) (storage_go.FileUploadResponse, error)
}

// SupabaseStore keeps archive objects in a Supabase storage bucket.
type SupabaseStore struct {
	client SupabaseAPI
	bucket string
}

func NewSupabaseStore(client SupabaseAPI, bucket string) *SupabaseStore {
	return &SupabaseStore{client: client, bucket: bucket}
}

type storageErrorBody struct {
	StatusCode string `json:"statusCode"`
	Error      string `json:"error"`
	Message    string `json:"message"`
}

func (s *SupabaseStore) Get(_ context.Context, key string) ([]byte, error) {
	data, err := s.client.DownloadFile(s.bucket, key)
	if err != nil {
		if isStorageNotFound(err.Error()) {
			return nil, ErrObjectNotFound
		}
		return nil, err
	}

	// Some client versions hand back the JSON error body instead of an error.
	if bytes.HasPrefix(bytes.TrimSpace(data), []byte("{")) {
		var body storageErrorBody
		if json.Unmarshal(data, &body) == nil && body.Error != "" {
			if body.StatusCode == "404" || isStorageNotFound(body.Error+" "+body.Message) {
				return nil, ErrObjectNotFound
			}
			return nil, &storageError{body: body}
		}
	}
	return data, nil
}

func (s *SupabaseStore) Put(_ context.Context, key string, data []byte, contentType string) error {
	upsert := true
	_, err := s.client.UploadFile(s.bucket, key, bytes.NewReader(data), storage_go.FileOptions{
		ContentType: &contentType,
		Upsert:      &upsert,
	})
	return err
}

type storageError struct {
	body storageErrorBody
}

func (e *storageError) Error() string {
	return "supabase storage: " + e.body.Error + ": " + e.body.Message
}

func isStorageNotFound(msg string) bool {
	msg = strings.ToLower(msg)
	return strings.Contains(msg, "not found") || strings.Contains(msg, "not_found") || strings.Contains(msg, "404")
}
