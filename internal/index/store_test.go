package index

import (
	"context"
	"io"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/callvault/callvault/internal/config"
)

// setupTestDB starts a PostgreSQL container and returns a pool with the
// schema applied. Integration tests are skipped unless TEST_INTEGRATION is
// set, since they need Docker.
func setupTestDB(t *testing.T) *pgxpool.Pool {
	t.Helper()

	if os.Getenv("TEST_INTEGRATION") == "" {
		t.Skip("skipping integration test: TEST_INTEGRATION not set")
	}

	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"docker.io/postgres:17-alpine",
		postgres.WithDatabase("recordings_test"),
		postgres.WithUsername("callvault"),
		postgres.WithPassword("test-password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		t.Fatalf("failed to start PostgreSQL container: %v", err)
	}
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("failed to get container host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		t.Fatalf("failed to get container port: %v", err)
	}

	cfg := config.DatabaseConfig{
		Host:     host,
		Port:     port.Int(),
		User:     "callvault",
		Password: "test-password",
		Name:     "recordings_test",
		SSLMode:  "disable",
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	pool, err := Connect(ctx, cfg, logger)
	if err != nil {
		t.Fatalf("failed to connect: %v", err)
	}
	t.Cleanup(pool.Close)
	return pool
}

func sampleEntry(filename string, start *time.Time) *Entry {
	return &Entry{
		Filename:    filename,
		AgentID:     "agent42",
		Extension:   "2104",
		CallerID:    "100",
		CalledID:    "200",
		StartTime:   start,
		Duration:    "42",
		ContentType: "audio/wav",
		LocalPath:   "/opt/recordings/" + filename + ".wav",
	}
}

func TestInsertIfAbsentIsIdempotent(t *testing.T) {
	pool := setupTestDB(t)
	ctx := context.Background()
	store := NewStore(pool)

	start := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	inserted, err := store.InsertIfAbsent(ctx, sampleEntry("call1", &start))
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	if !inserted {
		t.Fatalf("expected first insert to report a new row")
	}

	inserted, err = store.InsertIfAbsent(ctx, sampleEntry("call1", &start))
	if err != nil {
		t.Fatalf("duplicate insert must be a silent no-op: %v", err)
	}
	if inserted {
		t.Fatalf("duplicate filename must not insert a second row")
	}

	total, uploaded, err := store.Counts(ctx)
	if err != nil {
		t.Fatalf("counts: %v", err)
	}
	if total != 1 || uploaded != 0 {
		t.Errorf("counts = %d/%d, want 1/0", total, uploaded)
	}
}

func TestSelectUnmigratedOrdering(t *testing.T) {
	pool := setupTestDB(t)
	ctx := context.Background()
	store := NewStore(pool)

	newer := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	older := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for _, e := range []*Entry{
		sampleEntry("newer", &newer),
		sampleEntry("older", &older),
		sampleEntry("undated", nil),
	} {
		if _, err := store.InsertIfAbsent(ctx, e); err != nil {
			t.Fatalf("insert %s: %v", e.Filename, err)
		}
	}

	candidates, err := store.SelectUnmigrated(ctx, 10)
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	var got []string
	for _, c := range candidates {
		got = append(got, c.Filename)
	}
	// NULL start times sort first, then oldest recording first.
	want := []string{"undated", "older", "newer"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order = %v, want %v", got, want)
		}
	}

	limited, err := store.SelectUnmigrated(ctx, 2)
	if err != nil {
		t.Fatalf("select with limit: %v", err)
	}
	if len(limited) != 2 {
		t.Errorf("limit not honored: got %d rows", len(limited))
	}
}

func TestMarkUploadedPairing(t *testing.T) {
	pool := setupTestDB(t)
	ctx := context.Background()
	store := NewStore(pool)

	start := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	if _, err := store.InsertIfAbsent(ctx, sampleEntry("call1", &start)); err != nil {
		t.Fatalf("insert: %v", err)
	}
	candidates, err := store.SelectUnmigrated(ctx, 1)
	if err != nil || len(candidates) != 1 {
		t.Fatalf("select: %v (%d rows)", err, len(candidates))
	}
	id := candidates[0].ID

	key := "recordings/audio/2024/03/01/agent42/call1.wav"
	if err := store.MarkUploaded(ctx, id, key); err != nil {
		t.Fatalf("mark uploaded: %v", err)
	}

	// uploaded and s3_path are always set together
	var uploaded bool
	var s3Path *string
	err = pool.QueryRow(ctx, `SELECT uploaded, s3_path FROM recordings WHERE id = $1`, id).
		Scan(&uploaded, &s3Path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if !uploaded || s3Path == nil || *s3Path != key {
		t.Errorf("row = uploaded %v, s3_path %v", uploaded, s3Path)
	}

	// marked rows leave the work queue and the transition is one-way
	remaining, err := store.SelectUnmigrated(ctx, 10)
	if err != nil {
		t.Fatalf("select after mark: %v", err)
	}
	if len(remaining) != 0 {
		t.Errorf("uploaded row still selected: %d rows", len(remaining))
	}
	if err := store.MarkUploaded(ctx, id, key); err == nil {
		t.Errorf("second transition must be rejected")
	}
}

func TestRunInTxRollsBack(t *testing.T) {
	pool := setupTestDB(t)
	ctx := context.Background()

	err := NewTxRunner(pool).RunInTx(ctx, func(tx pgx.Tx) error {
		store := NewStore(tx)
		if _, err := store.InsertIfAbsent(ctx, sampleEntry("doomed", nil)); err != nil {
			return err
		}
		return context.Canceled // any error rolls the sweep back
	})
	if err == nil {
		t.Fatalf("expected the injected error")
	}

	total, _, err := NewStore(pool).Counts(ctx)
	if err != nil {
		t.Fatalf("counts: %v", err)
	}
	if total != 0 {
		t.Errorf("rolled-back sweep left %d visible rows", total)
	}
}
