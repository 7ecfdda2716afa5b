package archive

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"subtitle-collector/internal/models"
)

const csvContentType = "text/csv"

// Ledger appends rows to the day-partitioned archive.
//
// Append is a read-modify-write of the whole day object with no locking:
// two concurrent appends to the same day can lose one row.
type Ledger struct {
	store      BlobStore
	linkColumn bool
}

func NewLedger(store BlobStore, linkColumn bool) *Ledger {
	return &Ledger{store: store, linkColumn: linkColumn}
}

// DayKey returns the object name for a "YYYY-MM-DD HH:MM:SS" timestamp.
func DayKey(datetime string) string {
	day := datetime
	if len(day) > 10 {
		day = day[:10]
	}
	return day + ".csv"
}

func (l *Ledger) header() string {
	if l.linkColumn {
		return "video_id,title,datetime,content,link\n"
	}
	return "video_id,title,datetime,content\n"
}

// Row renders one entry as a fully quoted CSV line.
func (l *Ledger) Row(e models.ArchiveLedgerEntry) string {
	fields := []string{e.VideoID, e.Title, e.DateTime, e.Content}
	if l.linkColumn {
		fields = append(fields, e.Link)
	}

	quoted := make([]string, len(fields))
	for i, f := range fields {
		quoted[i] = quoteField(f)
	}
	return strings.Join(quoted, ",") + "\n"
}

func (l *Ledger) Append(ctx context.Context, e models.ArchiveLedgerEntry) error {
	key := DayKey(e.DateTime)

	var buf strings.Builder
	existing, err := l.store.Get(ctx, key)
	switch {
	case errors.Is(err, ErrObjectNotFound):
		buf.WriteString(l.header())
	case err != nil:
		return fmt.Errorf("failed to read archive object %s: %w", key, err)
	default:
		buf.Write(existing)
		if len(existing) > 0 && existing[len(existing)-1] != '\n' {
			buf.WriteByte('\n')
		}
	}
	buf.WriteString(l.Row(e))

	if err := l.store.Put(ctx, key, []byte(buf.String()), csvContentType); err != nil {
		return fmt.Errorf("failed to write archive object %s: %w", key, err)
	}
	return nil
}

var flatten = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ")

// encoding/csv only quotes fields that need it; the ledger quotes every field.
func quoteField(s string) string {
	s = flatten.Replace(s)
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
