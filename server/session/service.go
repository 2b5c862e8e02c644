package session

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"chouine/server/agent"
	"chouine/server/engine"
)

var ErrMissingCard = errors.New("missing card")

// Result is the outcome of a finished game.
type Result struct {
	GameID            string
	Winner            engine.Winner
	Player            engine.Score
	Opponent          engine.Score
	PlayerAnnounces   []string
	OpponentAnnounces []string
	EndedByChouine    bool
	Tricks            int
	Seed              int64
	StartedAt         time.Time
	FinishedAt        time.Time
}

type ResultRecorder interface {
	RecordResult(ctx context.Context, r Result) error
}

type Options struct {
	Logger        *zap.Logger
	Seeds         func() int64
	Policy        *agent.Policy
	Recorder      ResultRecorder
	RecordTimeout time.Duration
}

// Service runs games for a single human player against the heuristic opponent.
type Service struct {
	repo          Repository
	log           *zap.Logger
	seeds         func() int64
	policy        *agent.Policy
	recorder      ResultRecorder
	recordTimeout time.Duration
	now           func() time.Time
}

func NewService(repo Repository, opts Options) *Service {
	s := &Service{
		repo:          repo,
		log:           opts.Logger,
		seeds:         opts.Seeds,
		policy:        opts.Policy,
		recorder:      opts.Recorder,
		recordTimeout: opts.RecordTimeout,
		now:           time.Now,
	}
	if s.log == nil {
		s.log = zap.NewNop()
	}
	if s.seeds == nil {
		s.seeds = NewSeedStream(SecureBaseSeed()).Next
	}
	if s.policy == nil {
		s.policy = agent.NewPolicy(rand.New(rand.NewSource(s.seeds())))
	}
	if s.recordTimeout <= 0 {
		s.recordTimeout = 5 * time.Second
	}
	return s
}

// Create deals a new game and registers it.
func (s *Service) Create(ctx context.Context) (agent.PublicState, error) {
	id := uuid.NewString()
	seed := s.seeds()
	rec := &Record{
		Game:      engine.NewGame(id, rand.New(rand.NewSource(seed))),
		Seed:      seed,
		CreatedAt: s.now(),
	}
	if err := s.repo.Put(rec); err != nil {
		s.log.Warn("game not stored", zap.String("game_id", id), zap.Error(err))
		return agent.PublicState{}, err
	}
	s.log.Info("game created",
		zap.String("game_id", id),
		zap.Int64("seed", seed),
		zap.String("trump", rec.Game.TrumpCard.String()),
	)
	return agent.BuildPublicState(rec.Game, engine.Player), nil
}

func (s *Service) State(ctx context.Context, id string) (agent.PublicState, error) {
	var ps agent.PublicState
	err := s.withGame(id, func(rec *Record) error {
		ps = agent.BuildPublicState(rec.Game, engine.Player)
		return nil
	})
	return ps, err
}

// Lead plays a lead. When the player leads, the opponent answers at once and, if it
// takes the trick, leads the next one. An opponent lead without a card is chosen by
// the policy.
func (s *Service) Lead(ctx context.Context, id string, m agent.Move) (agent.PublicState, error) {
	return s.apply(ctx, id, func(g *engine.Game) error {
		if err := agent.Validate(m); err != nil {
			return err
		}
		var card engine.Card
		switch {
		case m.Card != nil:
			card = *m.Card
		case m.By != engine.Opponent:
			return ErrMissingCard
		case g.Phase() == engine.AwaitingLead && g.Leader() == engine.Opponent:
			c, err := s.policy.ChooseLead(g, engine.Opponent)
			if err != nil {
				return err
			}
			card = c
		}
		// with no card chosen, LeaderPlay reports why the opponent cannot lead
		if err := g.LeaderPlay(m.By, card, m.AuSept, m.AnnounceOrNone(), m.Show); err != nil {
			return err
		}
		if g.Over() || m.By != engine.Player {
			return nil
		}
		if err := s.opponentFollows(g); err != nil {
			return err
		}
		return s.opponentLeads(g)
	})
}

// Follow answers the open lead, then lets the opponent lead if it won the trick.
func (s *Service) Follow(ctx context.Context, id string, m agent.Move) (agent.PublicState, error) {
	return s.apply(ctx, id, func(g *engine.Game) error {
		if err := agent.Validate(m); err != nil {
			return err
		}
		if _, open := g.CurrentLead(); !open && !g.Over() {
			return engine.ErrNoLeadToFollow
		}
		if m.Card == nil {
			return ErrMissingCard
		}
		if err := g.FollowerPlay(m.By, *m.Card, m.AnnounceOrNone(), m.Show); err != nil {
			return err
		}
		return s.opponentLeads(g)
	})
}

// ExchangeSeven swaps the player's trump seven for the turnup.
func (s *Service) ExchangeSeven(ctx context.Context, id string) (agent.PublicState, error) {
	return s.apply(ctx, id, func(g *engine.Game) error {
		return g.Exchange7(engine.Player)
	})
}

func (s *Service) opponentFollows(g *engine.Game) error {
	card, err := s.policy.ChooseFollow(g, engine.Opponent)
	if err != nil {
		return err
	}
	a, show := s.policy.ChooseAnnounce(g, engine.Opponent)
	return g.FollowerPlay(engine.Opponent, card, a, show)
}

// opponentLeads plays the opponent's lead when it holds the lead between tricks.
func (s *Service) opponentLeads(g *engine.Game) error {
	if g.Phase() != engine.AwaitingLead || g.Leader() != engine.Opponent || len(g.Opponent.Hand) == 0 {
		return nil
	}
	a, show := s.policy.ChooseAnnounce(g, engine.Opponent)
	card, err := s.policy.ChooseLead(g, engine.Opponent)
	if err != nil {
		return err
	}
	return g.LeaderPlay(engine.Opponent, card, true, a, show)
}

// apply runs op under the game's lock. Whatever op returns, the terminal condition is
// re-checked and the resulting state is returned alongside the error.
func (s *Service) apply(ctx context.Context, id string, op func(g *engine.Game) error) (agent.PublicState, error) {
	var ps agent.PublicState
	err := s.withGame(id, func(rec *Record) error {
		g := rec.Game
		opErr := op(g)
		g.CheckOver()
		if opErr != nil {
			s.log.Debug("move rejected",
				zap.String("game_id", id),
				zap.String("kind", engine.Kind(opErr)),
				zap.Error(opErr),
			)
		}
		if err := s.repo.Put(rec); err != nil {
			return err
		}
		if g.Over() && !rec.Reported {
			s.finish(ctx, rec)
		}
		if w := g.InvariantWarning(); w != "" && !g.Over() {
			s.log.Warn(w, zap.String("game_id", id))
		}
		ps = agent.BuildPublicState(g, engine.Player)
		return opErr
	})
	return ps, err
}

func (s *Service) withGame(id string, fn func(rec *Record) error) error {
	rec, err := s.repo.Get(id)
	if err != nil {
		return err
	}
	rec.Lock()
	defer rec.Unlock()
	return fn(rec)
}

func (s *Service) finish(ctx context.Context, rec *Record) {
	rec.Reported = true
	res := ResultOf(rec, s.now())
	s.log.Info("game over",
		zap.String("game_id", res.GameID),
		zap.String("winner", string(res.Winner)),
		zap.Int("player_total", res.Player.Total),
		zap.Int("opponent_total", res.Opponent.Total),
		zap.Bool("chouine", res.EndedByChouine),
	)
	if s.recorder == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.recordTimeout)
	defer cancel()
	if err := s.recorder.RecordResult(ctx, res); err != nil {
		s.log.Error("record result failed", zap.String("game_id", res.GameID), zap.Error(err))
	}
}

// ResultOf summarizes a finished game.
func ResultOf(rec *Record, finishedAt time.Time) Result {
	g := rec.Game
	ps := agent.BuildPublicState(g, engine.Player)
	return Result{
		GameID:            g.ID,
		Winner:            g.Winner,
		Player:            g.FinalScore(engine.Player),
		Opponent:          g.FinalScore(engine.Opponent),
		PlayerAnnounces:   ps.Announced.Player,
		OpponentAnnounces: ps.Announced.Opponent,
		EndedByChouine:    g.EndedByChouine,
		Tricks:            len(g.Player.Tricks) + len(g.Opponent.Tricks),
		Seed:              rec.Seed,
		StartedAt:         rec.CreatedAt,
		FinishedAt:        finishedAt,
	}
}
