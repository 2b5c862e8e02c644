package store

import (
	"context"
	"embed"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"chouine/server/session"
)

//go:embed schema.sql
var schema embed.FS

type DB struct{ *pgxpool.Pool }

func Open(dsn string) (*DB, error) {
	p, err := pgxpool.New(context.Background(), dsn)
	if err != nil {
		return nil, err
	}
	return &DB{p}, nil
}

func (db *DB) Close(ctx context.Context)      { db.Pool.Close() }
func (db *DB) Ping(ctx context.Context) error { return db.Pool.Ping(ctx) }

func Migrate(ctx context.Context, db *DB) error {
	sqlBytes, err := schema.ReadFile("schema.sql")
	if err != nil {
		return err
	}
	_, err = db.Exec(ctx, string(sqlBytes))
	return err
}

// RecordResult stores a finished game and its announces atomically. Recording the
// same game twice keeps the first row.
func (db *DB) RecordResult(ctx context.Context, r session.Result) error {
	tx, err := db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) // safe if already committed

	var started any
	if !r.StartedAt.IsZero() {
		started = r.StartedAt
	}
	tag, err := tx.Exec(ctx, `
        INSERT INTO game_results(
            game_id, winner,
            player_cards, player_announces, player_dix_de_der, player_total,
            opponent_cards, opponent_announces, opponent_dix_de_der, opponent_total,
            ended_by_chouine, tricks, deck_seed, started_at, finished_at
        ) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)
        ON CONFLICT (game_id) DO NOTHING
    `, r.GameID, string(r.Winner),
		r.Player.Cards, r.Player.Announces, r.Player.LastTrick, r.Player.Total,
		r.Opponent.Cards, r.Opponent.Announces, r.Opponent.LastTrick, r.Opponent.Total,
		r.EndedByChouine, r.Tricks, r.Seed, started, r.FinishedAt,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for side, keys := range map[string][]string{"player": r.PlayerAnnounces, "opponent": r.OpponentAnnounces} {
		for _, k := range keys {
			batch.Queue(`INSERT INTO game_announces(game_id, side, announce_key) VALUES ($1,$2,$3)`, r.GameID, side, k)
		}
	}
	if batch.Len() > 0 {
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

type ResultRow struct {
	GameID            string     `json:"game_id"`
	Winner            string     `json:"winner"`
	PlayerTotal       int        `json:"player_total"`
	OpponentTotal     int        `json:"opponent_total"`
	PlayerDixDeDer    int        `json:"player_dix_de_der"`
	OpponentDixDeDer  int        `json:"opponent_dix_de_der"`
	EndedByChouine    bool       `json:"ended_by_chouine"`
	Tricks            int        `json:"tricks"`
	DeckSeed          int64      `json:"deck_seed"`
	StartedAt         *time.Time `json:"started_at"`
	FinishedAt        time.Time  `json:"finished_at"`
	PlayerAnnounces   []string   `json:"player_announces"`
	OpponentAnnounces []string   `json:"opponent_announces"`
}

// RecentResults returns the latest finished games, newest first.
func (db *DB) RecentResults(ctx context.Context, limit int) ([]ResultRow, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	rows, err := db.Query(ctx, `
        SELECT r.game_id, r.winner, r.player_total, r.opponent_total,
               r.player_dix_de_der, r.opponent_dix_de_der,
               r.ended_by_chouine, r.tricks, r.deck_seed, r.started_at, r.finished_at,
               COALESCE(ARRAY_AGG(a.announce_key ORDER BY a.announce_key) FILTER (WHERE a.side = 'player'), '{}'),
               COALESCE(ARRAY_AGG(a.announce_key ORDER BY a.announce_key) FILTER (WHERE a.side = 'opponent'), '{}')
          FROM game_results r
          LEFT JOIN game_announces a ON a.game_id = r.game_id
         GROUP BY r.game_id
         ORDER BY r.finished_at DESC
         LIMIT $1
    `, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []ResultRow{}
	for rows.Next() {
		var x ResultRow
		if err := rows.Scan(&x.GameID, &x.Winner, &x.PlayerTotal, &x.OpponentTotal,
			&x.PlayerDixDeDer, &x.OpponentDixDeDer,
			&x.EndedByChouine, &x.Tricks, &x.DeckSeed, &x.StartedAt, &x.FinishedAt,
			&x.PlayerAnnounces, &x.OpponentAnnounces); err != nil {
			return nil, err
		}
		out = append(out, x)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

type Summary struct {
	Games            int     `json:"games"`
	PlayerWins       int     `json:"player_wins"`
	OpponentWins     int     `json:"opponent_wins"`
	Draws            int     `json:"draws"`
	Chouines         int     `json:"chouines"`
	AvgPlayerTotal   float64 `json:"avg_player_total"`
	AvgOpponentTotal float64 `json:"avg_opponent_total"`
}

func (db *DB) Summary(ctx context.Context) (Summary, error) {
	var s Summary
	err := db.QueryRow(ctx, `
        SELECT games, player_wins, opponent_wins, draws, chouines,
               avg_player_total, avg_opponent_total
          FROM v_results_summary
    `).Scan(&s.Games, &s.PlayerWins, &s.OpponentWins, &s.Draws, &s.Chouines,
		&s.AvgPlayerTotal, &s.AvgOpponentTotal)
	return s, err
}
