// Package snapshot exports the whole vault as a compressed CBOR document.
// Records leave the server as ciphertext; nothing in a snapshot can be
// read without the owners' passwords.
package snapshot

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"time"

	"github.com/dmitrijs2005/rpass/internal/logging"
	"github.com/dmitrijs2005/rpass/internal/server/models"
	"github.com/dmitrijs2005/rpass/internal/server/repositories/repomanager"
	"github.com/fxamacker/cbor/v2"
	"github.com/google/uuid"
	"github.com/ulikunitz/xz"
)

// FormatVersion is bumped whenever the snapshot layout changes.
const FormatVersion = 1

// Snapshot is the exported document.
type Snapshot struct {
	Version   int            `cbor:"1,keyasint"`
	CreatedAt time.Time      `cbor:"2,keyasint"`
	Users     []*UserRecords `cbor:"3,keyasint"`
}

// UserRecords is one account together with its encrypted records.
type UserRecords struct {
	User    *models.User     `cbor:"1,keyasint"`
	Records []*models.Record `cbor:"2,keyasint"`
}

// Uploader stores a finished snapshot under key.
type Uploader interface {
	Upload(ctx context.Context, key string, body io.Reader, size int64) error
}

// Exporter builds snapshots from a repository manager and hands them to an
// Uploader.
type Exporter struct {
	repos    repomanager.RepositoryManager
	uploader Uploader
	logger   logging.Logger
	now      func() time.Time
}

func NewExporter(repos repomanager.RepositoryManager, uploader Uploader, l logging.Logger) *Exporter {
	return &Exporter{repos: repos, uploader: uploader, logger: l, now: time.Now}
}

// Collect reads every user and record into a Snapshot.
func (e *Exporter) Collect(ctx context.Context) (*Snapshot, error) {
	users, err := e.repos.Users().List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	snap := &Snapshot{Version: FormatVersion, CreatedAt: e.now().UTC(), Users: make([]*UserRecords, 0, len(users))}
	for _, u := range users {
		recs, err := e.repos.Records().ListByUser(ctx, u.ID)
		if err != nil {
			return nil, fmt.Errorf("list records of %s: %w", u.ID, err)
		}
		snap.Users = append(snap.Users, &UserRecords{User: u, Records: recs})
	}
	return snap, nil
}

// Encode writes snap as xz-compressed CBOR.
func Encode(w io.Writer, snap *Snapshot) error {
	zw, err := xz.NewWriter(w)
	if err != nil {
		return err
	}
	if err := cbor.NewEncoder(zw).Encode(snap); err != nil {
		_ = zw.Close()
		return err
	}
	return zw.Close()
}

// Decode reads a snapshot produced by Encode.
func Decode(r io.Reader) (*Snapshot, error) {
	zr, err := xz.NewReader(r)
	if err != nil {
		return nil, err
	}
	var snap Snapshot
	if err := cbor.NewDecoder(zr).Decode(&snap); err != nil {
		return nil, err
	}
	if snap.Version != FormatVersion {
		return nil, fmt.Errorf("unsupported snapshot version %d", snap.Version)
	}
	return &snap, nil
}

// ObjectKey returns the storage key for a snapshot taken at t.
func ObjectKey(t time.Time) string {
	t = t.UTC()
	return path.Join("snapshots", t.Format("2006"), t.Format("01"), t.Format("02"), uuid.NewString()+".cbor.xz")
}

// Export collects, encodes and uploads one snapshot and returns its key.
func (e *Exporter) Export(ctx context.Context) (string, error) {
	snap, err := e.Collect(ctx)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := Encode(&buf, snap); err != nil {
		return "", fmt.Errorf("encode snapshot: %w", err)
	}

	key := ObjectKey(snap.CreatedAt)
	size := int64(buf.Len())
	if err := e.uploader.Upload(ctx, key, &buf, size); err != nil {
		return "", fmt.Errorf("upload snapshot: %w", err)
	}

	e.logger.Info(ctx, "snapshot exported", "object", key, "users", len(snap.Users), "bytes", size)
	return key, nil
}

// Run exports a snapshot every interval until ctx is done. A failed export
// is logged and retried on the next tick.
func (e *Exporter) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := e.Export(ctx); err != nil {
				e.logger.Error(ctx, "snapshot export failed", "error", err)
			}
		}
	}
}
