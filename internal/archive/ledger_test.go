package archive

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"subtitle-collector/internal/models"
)

type memStore struct {
	objects map[string][]byte
	getErr  error
	putErr  error
	puts    int
}

func newMemStore() *memStore {
	return &memStore{objects: map[string][]byte{}}
}

func (m *memStore) Get(_ context.Context, key string) ([]byte, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	data, ok := m.objects[key]
	if !ok {
		return nil, ErrObjectNotFound
	}
	return data, nil
}

func (m *memStore) Put(_ context.Context, key string, data []byte, _ string) error {
	m.puts++
	if m.putErr != nil {
		return m.putErr
	}
	m.objects[key] = data
	return nil
}

func entry(id, dt, content string) models.ArchiveLedgerEntry {
	return models.ArchiveLedgerEntry{VideoID: id, Title: "Title " + id, DateTime: dt, Content: content}
}

func TestDayKey(t *testing.T) {
	assert.Equal(t, "2024-05-01.csv", DayKey("2024-05-01 13:45:00"))
	assert.Equal(t, "2024-05-01.csv", DayKey("2024-05-01"))
}

func TestLedger_AppendCreatesHeaderThenAppendsInOrder(t *testing.T) {
	store := newMemStore()
	l := NewLedger(store, false)
	ctx := context.Background()

	require.NoError(t, l.Append(ctx, entry("aaa", "2024-05-01 09:00:00", "first")))
	require.NoError(t, l.Append(ctx, entry("bbb", "2024-05-01 10:00:00", "second")))

	want := "video_id,title,datetime,content\n" +
		`"aaa","Title aaa","2024-05-01 09:00:00","first"` + "\n" +
		`"bbb","Title bbb","2024-05-01 10:00:00","second"` + "\n"
	assert.Equal(t, want, string(store.objects["2024-05-01.csv"]))
}

func TestLedger_SeparateObjectPerDay(t *testing.T) {
	store := newMemStore()
	l := NewLedger(store, false)
	ctx := context.Background()

	require.NoError(t, l.Append(ctx, entry("aaa", "2024-05-01 23:59:59", "x")))
	require.NoError(t, l.Append(ctx, entry("bbb", "2024-05-02 00:00:00", "y")))

	assert.Len(t, store.objects, 2)
	assert.Contains(t, string(store.objects["2024-05-02.csv"]), "video_id,title,datetime,content\n")
}

func TestLedger_FlattensNewlinesAndEscapesQuotes(t *testing.T) {
	l := NewLedger(newMemStore(), false)

	row := l.Row(models.ArchiveLedgerEntry{
		VideoID:  "abc",
		Title:    `say "hi"`,
		DateTime: "2024-05-01 09:00:00",
		Content:  "line one\nline two\r\nthree",
	})
	assert.Equal(t, `"abc","say ""hi""","2024-05-01 09:00:00","line one line two three"`+"\n", row)
}

func TestLedger_LinkColumn(t *testing.T) {
	store := newMemStore()
	l := NewLedger(store, true)

	e := entry("abc", "2024-05-01 09:00:00", "text")
	e.Link = "https://www.youtube.com/watch?v=abc"
	require.NoError(t, l.Append(context.Background(), e))

	got := string(store.objects["2024-05-01.csv"])
	assert.Contains(t, got, "video_id,title,datetime,content,link\n")
	assert.Contains(t, got, `,"https://www.youtube.com/watch?v=abc"`)
}

func TestLedger_ReadFailureSkipsWrite(t *testing.T) {
	store := newMemStore()
	store.getErr = errors.New("access denied")
	l := NewLedger(store, false)

	err := l.Append(context.Background(), entry("abc", "2024-05-01 09:00:00", "text"))
	require.Error(t, err)
	assert.Zero(t, store.puts)
}

func TestLedger_MissingTrailingNewlineRepaired(t *testing.T) {
	store := newMemStore()
	store.objects["2024-05-01.csv"] = []byte("video_id,title,datetime,content\n\"a\",\"t\",\"d\",\"c\"")
	l := NewLedger(store, false)

	require.NoError(t, l.Append(context.Background(), entry("bbb", "2024-05-01 10:00:00", "x")))
	assert.Equal(t,
		"video_id,title,datetime,content\n\"a\",\"t\",\"d\",\"c\"\n\"bbb\",\"Title bbb\",\"2024-05-01 10:00:00\",\"x\"\n",
		string(store.objects["2024-05-01.csv"]))
}
