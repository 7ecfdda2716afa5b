package repository

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"subtitle-collector/internal/database"
	"subtitle-collector/internal/models"
)

func newSQLiteRepo(t *testing.T) *SQLiteSubtitleRepo {
	t.Helper()
	db, err := database.OpenSQLite(filepath.Join(t.TempDir(), "subtitles.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	repo, err := NewSQLiteSubtitleRepo(context.Background(), db)
	require.NoError(t, err)
	return repo
}

func record(id, dt, title, content string) *models.SubtitleRecord {
	return &models.SubtitleRecord{VideoID: id, Title: title, DateTime: dt, Content: content}
}

func TestSQLiteSubtitleRepo_InsertAndGet(t *testing.T) {
	repo := newSQLiteRepo(t)
	ctx := context.Background()
	thumb := "https://i.ytimg.com/vi/abc123/hq.jpg"
	tag := 42

	rec := record("abc123", "2024-03-01 09:30:00", "Two Sum", "hello world")
	rec.Thumbnail = &thumb
	rec.NumericTag = &tag
	require.NoError(t, repo.Insert(ctx, rec))

	got, err := repo.Get(ctx, "abc123")
	require.NoError(t, err)
	assert.Equal(t, rec, got)
}

func TestSQLiteSubtitleRepo_NullableColumns(t *testing.T) {
	repo := newSQLiteRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Insert(ctx, record("abc123", "2024-03-01 09:30:00", "t", "c")))
	got, err := repo.Get(ctx, "abc123")
	require.NoError(t, err)
	assert.Nil(t, got.Thumbnail)
	assert.Nil(t, got.NumericTag)
}

func TestSQLiteSubtitleRepo_GetMissing(t *testing.T) {
	repo := newSQLiteRepo(t)
	_, err := repo.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSQLiteSubtitleRepo_InsertIfAbsent(t *testing.T) {
	repo := newSQLiteRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Insert(ctx, record("abc123", "2024-03-01 09:30:00", "first", "one")))
	err := repo.Insert(ctx, record("abc123", "2024-03-02 10:00:00", "second", "two"))
	assert.ErrorIs(t, err, ErrDuplicate)

	got, err := repo.Get(ctx, "abc123")
	require.NoError(t, err)
	assert.Equal(t, "first", got.Title)
}

func TestSQLiteSubtitleRepo_ListSearchAndPaging(t *testing.T) {
	repo := newSQLiteRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Insert(ctx, record("a", "2024-03-01 09:00:00", "Two Sum", "hash map")))
	require.NoError(t, repo.Insert(ctx, record("b", "2024-03-02 09:00:00", "Valid Parentheses", "stack")))
	require.NoError(t, repo.Insert(ctx, record("c", "2024-03-03 09:00:00", "Three Sum", "two pointers")))

	all, total, err := repo.List(ctx, models.ListQuery{Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"c", "b", "a"}, []string{all[0].VideoID, all[1].VideoID, all[2].VideoID})

	page, total, err := repo.List(ctx, models.ListQuery{Limit: 1, Offset: 1})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	require.Len(t, page, 1)
	assert.Equal(t, "b", page[0].VideoID)

	hits, total, err := repo.List(ctx, models.ListQuery{Search: "sum", Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	require.Len(t, hits, 2)
	assert.Equal(t, "c", hits[0].VideoID)
}

func TestSQLiteSubtitleRepo_ListClampsWindow(t *testing.T) {
	repo := newSQLiteRepo(t)
	ctx := context.Background()
	require.NoError(t, repo.Insert(ctx, record("a", "2024-03-01 09:00:00", "Two Sum", "x")))
	require.NoError(t, repo.Insert(ctx, record("b", "2024-03-02 09:00:00", "Stack", "x")))

	zero, total, err := repo.List(ctx, models.ListQuery{})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Len(t, zero, 2, "a zero limit means the default page size")

	negative, _, err := repo.List(ctx, models.ListQuery{Limit: 1, Offset: -10})
	require.NoError(t, err)
	require.Len(t, negative, 1)
	assert.Equal(t, "b", negative[0].VideoID)
}

func TestSQLiteSubtitleRepo_UpdateAndDelete(t *testing.T) {
	repo := newSQLiteRepo(t)
	ctx := context.Background()
	require.NoError(t, repo.Insert(ctx, record("abc123", "2024-03-01 09:30:00", "t", "old")))

	require.NoError(t, repo.UpdateContent(ctx, "abc123", "new"))
	got, err := repo.Get(ctx, "abc123")
	require.NoError(t, err)
	assert.Equal(t, "new", got.Content)

	assert.ErrorIs(t, repo.UpdateContent(ctx, "missing", "x"), ErrNotFound)

	require.NoError(t, repo.Delete(ctx, "abc123"))
	assert.ErrorIs(t, repo.Delete(ctx, "abc123"), ErrNotFound)
	_, err = repo.Get(ctx, "abc123")
	assert.ErrorIs(t, err, ErrNotFound)
}
