package agent

import (
	"errors"
	"math/rand"
	"slices"
	"sync"

	"chouine/server/engine"
)

var (
	ErrNoMove = errors.New("no playable card")
	ErrNoLead = errors.New("no lead to answer")
)

// Policy is the fixed heuristic opponent. It only reads the game; callers submit its
// choices through the engine like any other move.
type Policy struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func NewPolicy(r *rand.Rand) *Policy {
	return &Policy{rng: r}
}

func (p *Policy) jitter() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.rng.Float64() * 0.01
}

// ChooseLead picks the card side should lead.
func (p *Policy) ChooseLead(g *engine.Game, side engine.Side) (engine.Card, error) {
	hand := g.LegalMoves(side)
	if len(hand) == 0 {
		return engine.Card{}, ErrNoMove
	}

	var score func(c engine.Card) float64
	if g.StockNotEmpty() {
		// keep winning early to draw first, without burning trumps
		score = func(c engine.Card) float64 {
			s := 0.0
			if c.Brisque() {
				s += 2
			}
			if c.Suit == g.TrumpSuit {
				s += 0.5
			}
			return s + float64(c.Rank.Strength())*0.05 + p.jitter()
		}
	} else {
		score = func(c engine.Card) float64 {
			s := 0.0
			if c.Suit == g.TrumpSuit {
				s += 2
			}
			if c.Brisque() {
				s += 3
			}
			return s + float64(c.Rank.Strength())*0.1
		}
	}

	best, bestScore := hand[0], score(hand[0])
	for _, c := range hand[1:] {
		if s := score(c); s > bestScore {
			best, bestScore = c, s
		}
	}
	return best, nil
}

// ChooseFollow answers the open lead: the cheapest winning card, otherwise the least
// valuable legal card.
func (p *Policy) ChooseFollow(g *engine.Game, side engine.Side) (engine.Card, error) {
	lead, ok := g.CurrentLead()
	if !ok {
		return engine.Card{}, ErrNoLead
	}
	legal := g.LegalMoves(side)
	if len(legal) == 0 {
		return engine.Card{}, ErrNoMove
	}

	var winning []engine.Card
	for _, c := range legal {
		if engine.TrickWinner(lead.Card, c, g.TrumpSuit, g.StockNotEmpty()) == engine.ReplyWins {
			winning = append(winning, c)
		}
	}
	if len(winning) > 0 {
		return slices.MinFunc(winning, func(a, b engine.Card) int {
			return compareKeys(
				[]int{a.Points(), a.Rank.Strength()},
				[]int{b.Points(), b.Rank.Strength()},
			)
		}), nil
	}

	dumpKey := func(c engine.Card) []int {
		return []int{boolInt(c.Brisque()), boolInt(c.Suit == g.TrumpSuit), c.Points(), c.Rank.Strength()}
	}
	return slices.MinFunc(legal, func(a, b engine.Card) int {
		return compareKeys(dumpKey(a), dumpKey(b))
	}), nil
}

// ChooseAnnounce returns the announce side should declare with its next card, and
// whether to show it. Chouine wins outright, so it comes first; otherwise the most
// valuable combination not yet declared.
func (p *Policy) ChooseAnnounce(g *engine.Game, side engine.Side) (engine.Announce, bool) {
	st := g.Side(side)
	if st == nil {
		return engine.Announce{}, false
	}
	eligible := engine.EligibleAnnounces(st.Hand)

	for _, a := range eligible {
		if a.Type == engine.Chouine && !st.Announced[a.Key()] {
			return a, true
		}
	}

	var open []engine.Announce
	for _, a := range eligible {
		if a.Type != engine.Chouine && !st.Announced[a.Key()] {
			open = append(open, a)
		}
	}
	if len(open) == 0 {
		return engine.Announce{}, false
	}
	slices.SortStableFunc(open, func(a, b engine.Announce) int {
		return engine.AnnouncePoints(b, g.TrumpSuit) - engine.AnnouncePoints(a, g.TrumpSuit)
	})
	return open[0], true
}

func compareKeys(a, b []int) int {
	for i := range a {
		if a[i] != b[i] {
			if a[i] < b[i] {
				return -1
			}
			return 1
		}
	}
	return 0
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
