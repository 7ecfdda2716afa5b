package services

import (
	"context"
	"os"
	"slices"
	"strings"
	"sync"

	"subtitle-collector/internal/models"
	"subtitle-collector/internal/repository"
)

// fakeRunner stands in for the yt-dlp binary.
type fakeRunner struct {
	mu    sync.Mutex
	calls [][]string

	metadata       string
	metadataStderr string
	metadataErr    error

	writeCaption bool
	captionExt   string
	caption      string
	captionErr   error

	searchOut string
	searchErr error

	// hang makes every call block until its context is done, like a stuck process.
	hang bool
}

func (f *fakeRunner) Run(ctx context.Context, _ string, args ...string) ([]byte, []byte, error) {
	f.mu.Lock()
	f.calls = append(f.calls, args)
	hang := f.hang
	f.mu.Unlock()

	if hang {
		<-ctx.Done()
		return nil, []byte("killed"), ctx.Err()
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	switch {
	case slices.Contains(args, "-J"):
		if f.metadataErr != nil {
			return nil, []byte(f.metadataStderr), f.metadataErr
		}
		return []byte(f.metadata), nil, nil
	case slices.Contains(args, "--write-auto-sub"):
		if f.captionErr != nil {
			return nil, []byte("ERROR: unable to download subtitles"), f.captionErr
		}
		if f.writeCaption {
			ext := f.captionExt
			if ext == "" {
				ext = "en.vtt"
			}
			name := strings.Replace(argAfter(args, "-o"), "%(ext)s", ext, 1)
			if err := os.WriteFile(name, []byte(f.caption), 0o644); err != nil {
				return nil, nil, err
			}
		}
		return nil, nil, nil
	case slices.Contains(args, "--dump-json"):
		return []byte(f.searchOut), nil, f.searchErr
	}
	return nil, nil, nil
}

func (f *fakeRunner) count(flag string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, call := range f.calls {
		if slices.Contains(call, flag) {
			n++
		}
	}
	return n
}

func argAfter(args []string, flag string) string {
	for i, a := range args {
		if a == flag && i+1 < len(args) {
			return args[i+1]
		}
	}
	return ""
}

// memStore is an in-memory SubtitleStore.
type memStore struct {
	mu        sync.Mutex
	records   map[string]*models.SubtitleRecord
	getErr    error
	insertErr error
}

func newMemStore() *memStore {
	return &memStore{records: map[string]*models.SubtitleRecord{}}
}

func (m *memStore) Get(_ context.Context, videoID string) (*models.SubtitleRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	rec, ok := m.records[videoID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return rec, nil
}

func (m *memStore) Insert(_ context.Context, rec *models.SubtitleRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.insertErr != nil {
		return m.insertErr
	}
	if _, ok := m.records[rec.VideoID]; ok {
		return repository.ErrDuplicate
	}
	m.records[rec.VideoID] = rec
	return nil
}

func (m *memStore) List(_ context.Context, _ models.ListQuery) ([]*models.SubtitleRecord, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*models.SubtitleRecord, 0, len(m.records))
	for _, rec := range m.records {
		out = append(out, rec)
	}
	return out, len(out), nil
}

func (m *memStore) UpdateContent(_ context.Context, videoID, content string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.records[videoID]
	if !ok {
		return repository.ErrNotFound
	}
	rec.Content = content
	return nil
}

func (m *memStore) Delete(_ context.Context, videoID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.records[videoID]; !ok {
		return repository.ErrNotFound
	}
	delete(m.records, videoID)
	return nil
}

func (m *memStore) len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.records)
}

type fakeArchiver struct {
	mu      sync.Mutex
	entries []models.ArchiveLedgerEntry
	err     error
}

func (a *fakeArchiver) Append(_ context.Context, e models.ArchiveLedgerEntry) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.err != nil {
		return a.err
	}
	a.entries = append(a.entries, e)
	return nil
}

type recordingObserver struct {
	mu     sync.Mutex
	events []models.StageEvent
}

func (o *recordingObserver) Publish(_ context.Context, ev models.StageEvent) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.events = append(o.events, ev)
}

func (o *recordingObserver) stages() []models.Stage {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]models.Stage, len(o.events))
	for i, ev := range o.events {
		out[i] = ev.Stage
	}
	return out
}

type fakeLocker struct {
	held     bool
	released int
}

func (l *fakeLocker) Acquire(_ context.Context, _ string) (func(), bool, error) {
	if l.held {
		return nil, false, nil
	}
	return func() { l.released++ }, true, nil
}
