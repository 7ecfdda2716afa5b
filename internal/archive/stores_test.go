package archive

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	storage_go "github.com/supabase-community/storage-go"
)

func TestLocalStore_RoundTrip(t *testing.T) {
	s, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	_, err = s.Get(ctx, "2024-05-01.csv")
	assert.ErrorIs(t, err, ErrObjectNotFound)

	require.NoError(t, s.Put(ctx, "2024-05-01.csv", []byte("one"), csvContentType))
	require.NoError(t, s.Put(ctx, "2024-05-01.csv", []byte("two"), csvContentType))

	data, err := s.Get(ctx, "2024-05-01.csv")
	require.NoError(t, err)
	assert.Equal(t, "two", string(data))
}

func TestLocalStore_RejectsPathKeys(t *testing.T) {
	s, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)

	assert.Error(t, s.Put(context.Background(), "../escape.csv", []byte("x"), csvContentType))
	_, err = s.Get(context.Background(), "nested/key.csv")
	assert.Error(t, err)
}

type fakeS3 struct {
	objects map[string][]byte
}

func (f *fakeS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	data, ok := f.objects[*in.Key]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.objects[*in.Key] = data
	return &s3.PutObjectOutput{}, nil
}

func TestS3Store_NoSuchKeyMapsToNotFound(t *testing.T) {
	s := NewS3Store(&fakeS3{objects: map[string][]byte{}}, "bucket")
	ctx := context.Background()

	_, err := s.Get(ctx, "2024-05-01.csv")
	assert.ErrorIs(t, err, ErrObjectNotFound)

	require.NoError(t, s.Put(ctx, "2024-05-01.csv", []byte("rows"), csvContentType))
	data, err := s.Get(ctx, "2024-05-01.csv")
	require.NoError(t, err)
	assert.Equal(t, "rows", string(data))
}

type fakeSupabase struct {
	download []byte
	err      error
	uploaded []byte
	upsert   bool
}

func (f *fakeSupabase) DownloadFile(_ string, _ string, _ ...storage_go.UrlOptions) ([]byte, error) {
	return f.download, f.err
}

func (f *fakeSupabase) UploadFile(_ string, _ string, data io.Reader, opts ...storage_go.FileOptions) (storage_go.FileUploadResponse, error) {
	f.uploaded, _ = io.ReadAll(data)
	if len(opts) > 0 && opts[0].Upsert != nil {
		f.upsert = *opts[0].Upsert
	}
	return storage_go.FileUploadResponse{}, nil
}

func TestSupabaseStore_NotFoundVariants(t *testing.T) {
	tests := []struct {
		name string
		fake *fakeSupabase
	}{
		{"error value", &fakeSupabase{err: errors.New("Object not found")}},
		{"json body", &fakeSupabase{download: []byte(`{"statusCode":"404","error":"not_found","message":"Object not found"}`)}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewSupabaseStore(tc.fake, "bucket").Get(context.Background(), "2024-05-01.csv")
			assert.ErrorIs(t, err, ErrObjectNotFound)
		})
	}
}

func TestSupabaseStore_OtherErrorBody(t *testing.T) {
	fake := &fakeSupabase{download: []byte(`{"statusCode":"403","error":"Unauthorized","message":"invalid signature"}`)}
	_, err := NewSupabaseStore(fake, "bucket").Get(context.Background(), "2024-05-01.csv")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrObjectNotFound)
}

func TestSupabaseStore_PutUpserts(t *testing.T) {
	fake := &fakeSupabase{}
	require.NoError(t, NewSupabaseStore(fake, "bucket").Put(context.Background(), "k.csv", []byte("data"), csvContentType))
	assert.Equal(t, "data", string(fake.uploaded))
	assert.True(t, fake.upsert)
}
