package main

import (
	"math"
	"math/rand"
	"sort"
	"strings"

	"chouine/server/engine"
	"chouine/server/session"
)

type SideStats struct {
	Wins        int
	ChouineWins int
	Points      int
	Announces   int
	DixDeDer    int
	Combos      map[engine.AnnounceType]int
}

func (s *SideStats) add(score engine.Score, keys []string) {
	s.Points += score.Total
	s.Announces += score.Announces
	if score.LastTrick > 0 {
		s.DixDeDer++
	}
	if s.Combos == nil {
		s.Combos = map[engine.AnnounceType]int{}
	}
	for _, k := range keys {
		t, _, _ := strings.Cut(k, ":")
		s.Combos[engine.AnnounceType(t)]++
	}
}

func (s *SideStats) AvgPoints(games int) float64 {
	if games == 0 {
		return 0
	}
	return float64(s.Points) / float64(games)
}

// SelfPlayStats tallies finished games from the player's point of view.
type SelfPlayStats struct {
	Games    int
	Draws    int
	Player   SideStats
	Opponent SideStats
	Margins  []float64 // player total minus opponent total, per game
	Elo      Elo
}

func (st *SelfPlayStats) Add(r session.Result) {
	st.Games++
	st.Player.add(r.Player, r.PlayerAnnounces)
	st.Opponent.add(r.Opponent, r.OpponentAnnounces)
	switch r.Winner {
	case engine.PlayerWins:
		st.Player.Wins++
		if r.EndedByChouine {
			st.Player.ChouineWins++
		}
	case engine.OpponentWins:
		st.Opponent.Wins++
		if r.EndedByChouine {
			st.Opponent.ChouineWins++
		}
	default:
		st.Draws++
	}
	margin := r.Player.Total - r.Opponent.Total
	st.Margins = append(st.Margins, float64(margin))
	if st.Elo.K == 0 {
		st.Elo = NewElo(1500, 24)
	}
	st.Elo.Update(margin, r.Winner, r.EndedByChouine)
}

// --------- CI helpers ---------

// WilsonCI95 for a Bernoulli win rate, counting a draw as half a win.
func WilsonCI95(wins, ties, total int) (low, hi float64) {
	if total <= 0 {
		return 0, 1
	}
	z := 1.96
	n := float64(total)
	p := (float64(wins) + 0.5*float64(ties)) / n
	den := 1 + (z*z)/n
	center := p + (z*z)/(2*n)
	half := z * math.Sqrt((p*(1-p))/n+(z*z)/(4*n*n))
	return (center - half) / den, (center + half) / den
}

// BootstrapCI95 for the mean of values (e.g. score margins).
func BootstrapCI95(r *rand.Rand, vals []float64, B int) (low, hi float64) {
	n := len(vals)
	if n == 0 || B <= 1 {
		return 0, 0
	}
	res := make([]float64, B)
	for b := 0; b < B; b++ {
		sum := 0.0
		for i := 0; i < n; i++ {
			sum += vals[r.Intn(n)]
		}
		res[b] = sum / float64(n)
	}
	sort.Float64s(res)
	l := int(0.025 * float64(B-1))
	h := int(0.975 * float64(B-1))
	return res[l], res[h]
}
