package history

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"fjacquet/gl-posting/internal/logging"
	"fjacquet/gl-posting/internal/models"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSQLite(t *testing.T) (*SQLiteStore, string) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "history.db")
	s, err := NewSQLite(path, logging.NewMockLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s, path
}

func TestSQLiteSchemaCreated(t *testing.T) {
	s, path := newTestSQLite(t)
	require.NoError(t, s.Close())

	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	rows, err := db.Query(`SELECT name FROM sqlite_master WHERE type='table' AND name IN ('posted','corrections')`)
	require.NoError(t, err)
	defer rows.Close()

	found := map[string]bool{}
	for rows.Next() {
		var name string
		require.NoError(t, rows.Scan(&name))
		found[name] = true
	}
	require.NoError(t, rows.Err())
	assert.True(t, found["posted"])
	assert.True(t, found["corrections"])
}

func TestRecordPostedAndSeen(t *testing.T) {
	s, _ := newTestSQLite(t)
	ctx := context.Background()

	require.NoError(t, s.RecordPosted(ctx, []Posting{
		{Fingerprint: "fp1", TransactionID: "tx-1", DocNumber: "GP_0105_001", BatchID: "b1"},
		{Fingerprint: "fp2", TransactionID: "tx-2"},
		{Fingerprint: "", TransactionID: "tx-3"},
	}))
	// A second posting of fp1 keeps the first record.
	require.NoError(t, s.RecordPosted(ctx, []Posting{{Fingerprint: "fp1", TransactionID: "tx-9", DocNumber: "GP_0201_004"}}))

	seen, err := s.Seen(ctx, []string{"fp1", "fp2", "fp3"})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"fp1": "GP_0105_001", "fp2": "tx-2"}, seen)

	seen, err = s.Seen(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, seen)
}

func TestSeen_LargeLookup(t *testing.T) {
	s, _ := newTestSQLite(t)
	ctx := context.Background()

	var (
		postings []Posting
		lookup   []string
	)
	for i := 0; i < lookupChunk+20; i++ {
		fp := fmt.Sprintf("fp-%04d", i)
		lookup = append(lookup, fp)
		if i%2 == 0 {
			postings = append(postings, Posting{Fingerprint: fp, TransactionID: fp})
		}
	}
	require.NoError(t, s.RecordPosted(ctx, postings))

	seen, err := s.Seen(ctx, lookup)
	require.NoError(t, err)
	assert.Len(t, seen, len(postings))
}

func TestCorrectionsAreAppendOnly(t *testing.T) {
	s, _ := newTestSQLite(t)
	ctx := context.Background()
	at := time.Date(2025, 1, 5, 10, 0, 0, 0, time.UTC)

	first, err := s.AppendCorrection(ctx, models.Correction{
		Description: "CITY WATER DEPT 4481122", GLCode: "6500", Module: models.ModuleCD, ConfirmedAt: at,
	})
	require.NoError(t, err)
	assert.Equal(t, "city water dept", first.Key)

	_, err = s.AppendCorrection(ctx, models.Correction{
		Description: "CITY WATER DEPT 9917733", GLCode: "6510", FundCode: "1000",
		Module: models.ModuleCD, Source: "review", ConfirmedAt: at.Add(time.Hour),
	})
	require.NoError(t, err)

	corrections, err := s.LoadCorrections(ctx)
	require.NoError(t, err)
	require.Len(t, corrections, 2)
	assert.Equal(t, "6500", corrections[0].GLCode)
	assert.Equal(t, "6510", corrections[1].GLCode)
	assert.Equal(t, "review", corrections[1].Source)
	assert.Equal(t, models.ModuleCD, corrections[1].Module)
	assert.True(t, at.Add(time.Hour).Equal(corrections[1].ConfirmedAt))

	_, err = s.AppendCorrection(ctx, models.Correction{Description: "NO GL"})
	assert.Error(t, err)
}

func TestNewSQLite_BadPath(t *testing.T) {
	_, err := NewSQLite(filepath.Join(t.TempDir(), "missing", "dir", "history.db"), nil)
	assert.Error(t, err)
}
