package store

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"

	"chouine/server/engine"
	"chouine/server/session"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	db, err := Open(dsn)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { db.Close(context.Background()) })
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := Migrate(ctx, db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func TestRecordResultRoundTrip(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	before, err := db.Summary(ctx)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}

	res := session.Result{
		GameID:            uuid.NewString(),
		Winner:            engine.PlayerWins,
		Player:            engine.Score{Cards: 70, Announces: 40, LastTrick: 10, Total: 120},
		Opponent:          engine.Score{Cards: 50, Announces: 20, Total: 70},
		PlayerAnnounces:   []string{"mariage:H", "tierce:S"},
		OpponentAnnounces: []string{"mariage:C"},
		Tricks:            16,
		Seed:              -42,
		StartedAt:         time.Now().Add(-time.Minute).UTC(),
		FinishedAt:        time.Now().UTC(),
	}
	if err := db.RecordResult(ctx, res); err != nil {
		t.Fatalf("record: %v", err)
	}
	if err := db.RecordResult(ctx, res); err != nil {
		t.Fatalf("second record should be ignored, got %v", err)
	}

	rows, err := db.RecentResults(ctx, 200)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	var got *ResultRow
	for i := range rows {
		if rows[i].GameID == res.GameID {
			got = &rows[i]
		}
	}
	if got == nil {
		t.Fatalf("recorded game %s not listed", res.GameID)
	}
	if got.Winner != "player" || got.PlayerTotal != 120 || got.PlayerDixDeDer != 10 || got.DeckSeed != -42 {
		t.Fatalf("unexpected row: %+v", got)
	}
	if len(got.PlayerAnnounces) != 2 || got.PlayerAnnounces[0] != "mariage:H" || len(got.OpponentAnnounces) != 1 {
		t.Fatalf("announces = %v / %v", got.PlayerAnnounces, got.OpponentAnnounces)
	}

	after, err := db.Summary(ctx)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if after.Games != before.Games+1 || after.PlayerWins != before.PlayerWins+1 {
		t.Fatalf("summary did not count the game once: %+v -> %+v", before, after)
	}
}
