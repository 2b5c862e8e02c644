package main

import (
	"context"
	"fmt"
	"math/rand"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/pterm/pterm"
	"go.uber.org/zap"

	"chouine/server/agent"
	"chouine/server/engine"
	"chouine/server/session"
)

// runSelfPlay pits the heuristic policy against itself for cfg.SelfPlayGames deals.
// Finished games go to rec when it is non-nil.
func runSelfPlay(ctx context.Context, cfg Config, log *zap.Logger, rec session.ResultRecorder) (*SelfPlayStats, error) {
	seeds := session.NewSeedStream(session.BaseSeed(cfg.DeckSeed))
	st := &SelfPlayStats{}
	for i := 0; i < cfg.SelfPlayGames; i++ {
		if ctx.Err() != nil {
			log.Info("self-play interrupted", zap.Int("played", st.Games))
			break
		}
		seed := seeds.Next()
		started := time.Now()
		g := engine.NewGame(uuid.NewString(), rand.New(rand.NewSource(seed)))
		player := agent.NewPolicy(rand.New(rand.NewSource(seed + 1)))
		opponent := agent.NewPolicy(rand.New(rand.NewSource(seed + 2)))
		if err := playSelfGame(g, player, opponent); err != nil {
			return st, fmt.Errorf("game %d (seed %d): %w", i+1, seed, err)
		}
		res := session.ResultOf(&session.Record{Game: g, Seed: seed, CreatedAt: started}, time.Now())
		st.Add(res)
		if rec != nil {
			rctx, cancel := context.WithTimeout(ctx, cfg.StoreTimeout)
			if err := rec.RecordResult(rctx, res); err != nil {
				log.Error("record result failed", zap.String("game_id", res.GameID), zap.Error(err))
			}
			cancel()
		}
		if cfg.Debug {
			log.Debug("self-play game",
				zap.Int("n", i+1),
				zap.String("winner", string(res.Winner)),
				zap.Int("player_total", res.Player.Total),
				zap.Int("opponent_total", res.Opponent.Total),
			)
		}
	}
	return st, nil
}

// playSelfGame drives g to the end. Each side swaps the trump seven as soon as it can.
func playSelfGame(g *engine.Game, player, opponent *agent.Policy) error {
	policy := func(s engine.Side) *agent.Policy {
		if s == engine.Player {
			return player
		}
		return opponent
	}
	for steps := 0; !g.CheckOver(); steps++ {
		if steps > 64 {
			return fmt.Errorf("game %s did not finish", g.ID)
		}
		if lead, open := g.CurrentLead(); open {
			by := lead.By.Other()
			p := policy(by)
			c, err := p.ChooseFollow(g, by)
			if err != nil {
				return err
			}
			a, show := p.ChooseAnnounce(g, by)
			if err := g.FollowerPlay(by, c, a, show); err != nil {
				return fmt.Errorf("%s follows %s: %w", by, c, err)
			}
			continue
		}
		by := g.Leader()
		if g.CanExchange7(by) {
			if err := g.Exchange7(by); err != nil {
				return err
			}
		}
		p := policy(by)
		a, show := p.ChooseAnnounce(g, by)
		c, err := p.ChooseLead(g, by)
		if err != nil {
			return err
		}
		if err := g.LeaderPlay(by, c, true, a, show); err != nil {
			return fmt.Errorf("%s leads %s: %w", by, c, err)
		}
	}
	return nil
}

func printSelfPlayReport(st *SelfPlayStats, r *rand.Rand) {
	pterm.DefaultSection.Println("SELF-PLAY")
	if st.Games == 0 {
		pterm.Warning.Println("no games played")
		return
	}

	avg := func(s SideStats) string { return fmt.Sprintf("%.1f", s.AvgPoints(st.Games)) }
	rate := func(n int) string { return fmt.Sprintf("%.1f%%", 100*float64(n)/float64(st.Games)) }
	data := pterm.TableData{
		{"", "Player", "Opponent"},
		{"Wins", fmt.Sprint(st.Player.Wins), fmt.Sprint(st.Opponent.Wins)},
		{"Win rate", rate(st.Player.Wins), rate(st.Opponent.Wins)},
		{"Chouine wins", fmt.Sprint(st.Player.ChouineWins), fmt.Sprint(st.Opponent.ChouineWins)},
		{"Avg points", avg(st.Player), avg(st.Opponent)},
		{"Announce points", fmt.Sprint(st.Player.Announces), fmt.Sprint(st.Opponent.Announces)},
		{"Dix de der", fmt.Sprint(st.Player.DixDeDer), fmt.Sprint(st.Opponent.DixDeDer)},
	}
	for _, t := range comboTypes(st) {
		data = append(data, []string{
			"  " + string(t),
			fmt.Sprint(st.Player.Combos[t]),
			fmt.Sprint(st.Opponent.Combos[t]),
		})
	}
	_ = pterm.DefaultTable.WithHasHeader().WithBoxed().WithData(data).Render()

	pterm.Info.Printfln("games=%d draws=%d", st.Games, st.Draws)
	lo, hi := WilsonCI95(st.Player.Wins, st.Draws, st.Games)
	pterm.Info.Printfln("player score rate 95%% CI (Wilson, draw = 1/2): [%.3f, %.3f]", lo, hi)
	blo, bhi := BootstrapCI95(r, st.Margins, 1000)
	pterm.Info.Printfln("mean margin 95%% CI (bootstrap): [%.1f, %.1f]", blo, bhi)
	pterm.Info.Printfln("seat Elo after %d games: player %.0f, opponent %.0f", st.Elo.Games, st.Elo.Player, st.Elo.Opponent)
}

func comboTypes(st *SelfPlayStats) []engine.AnnounceType {
	var out []engine.AnnounceType
	for _, m := range []map[engine.AnnounceType]int{st.Player.Combos, st.Opponent.Combos} {
		for t := range m {
			if !slices.Contains(out, t) {
				out = append(out, t)
			}
		}
	}
	slices.Sort(out)
	return out
}
