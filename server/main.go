package main

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"chouine/server/agent"
	"chouine/server/session"
	"chouine/server/store"
)

func main() {
	cfg, err := LoadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	log := newLogger(cfg.Debug)
	defer func() { _ = log.Sync() }()

	var migrate, selfplay bool
	for _, a := range os.Args[1:] {
		switch a {
		case "--migrate":
			migrate = true
		case "--selfplay":
			selfplay = true
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if migrate {
		if cfg.DatabaseURL == "" {
			log.Fatal("DATABASE_URL is required for --migrate")
		}
		db, err := store.Open(cfg.DatabaseURL)
		if err != nil {
			log.Fatal("open database", zap.Error(err))
		}
		defer db.Close(context.Background())
		if err := store.Migrate(ctx, db); err != nil {
			log.Fatal("migrate", zap.Error(err))
		}
		log.Info("migrated")
		return
	}

	db := openStore(ctx, cfg, log)
	if db != nil {
		defer db.Close(context.Background())
	}

	if selfplay {
		var rec session.ResultRecorder
		if db != nil {
			rec = db
		}
		st, err := runSelfPlay(ctx, cfg, log, rec)
		if err != nil {
			log.Error("self-play aborted", zap.Error(err))
		}
		printSelfPlayReport(st, rand.New(rand.NewSource(int64(session.BaseSeed(cfg.DeckSeed)))))
		return
	}

	if err := serve(ctx, cfg, log, db); err != nil {
		log.Fatal("server", zap.Error(err))
	}
}

func newLogger(debug bool) *zap.Logger {
	if debug {
		return zap.Must(zap.NewDevelopment())
	}
	return zap.Must(zap.NewProduction())
}

// openStore connects the results ledger. A broken database disables the ledger
// instead of stopping the server.
func openStore(ctx context.Context, cfg Config, log *zap.Logger) *store.DB {
	if cfg.DatabaseURL == "" {
		log.Info("results ledger disabled (no DATABASE_URL)")
		return nil
	}
	db, err := store.Open(cfg.DatabaseURL)
	if err != nil {
		log.Warn("DB disabled (open failed)", zap.Error(err))
		return nil
	}
	pctx, cancel := context.WithTimeout(ctx, cfg.StoreTimeout)
	defer cancel()
	if err := db.Ping(pctx); err != nil {
		log.Warn("DB disabled (ping failed)", zap.Error(err))
		db.Close(ctx)
		return nil
	}
	if cfg.AutoMigrate {
		if err := store.Migrate(ctx, db); err != nil {
			log.Warn("migrate failed (continuing without DB)", zap.Error(err))
			db.Close(ctx)
			return nil
		}
		log.Info("migrated")
	}
	return db
}

func serve(ctx context.Context, cfg Config, log *zap.Logger, db *store.DB) error {
	seeds := session.NewSeedStream(session.BaseSeed(cfg.DeckSeed))
	opts := session.Options{
		Logger:        log,
		Seeds:         seeds.Next,
		Policy:        agent.NewPolicy(rand.New(rand.NewSource(seeds.Next()))),
		RecordTimeout: cfg.StoreTimeout,
	}
	deps := RouterDeps{
		Log:          log,
		CORSOrigins:  cfg.CORSOrigins,
		StoreTimeout: cfg.StoreTimeout,
	}
	if db != nil {
		opts.Recorder = db
		deps.Results = db
	}
	deps.Games = session.NewService(session.NewMemoryRepository(cfg.MaxGames), opts)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      Router(deps),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
	errc := make(chan error, 1)
	go func() {
		log.Info("listening", zap.String("addr", "http://localhost:"+cfg.Port))
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	log.Info("shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
