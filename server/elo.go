package main

import (
	"math"

	"chouine/server/engine"
)

// Elo rates the two seats against each other. With the same policy on both sides
// the gap measures the edge of leading the first trick.
type Elo struct {
	Player, Opponent float64
	K                float64
	Games            int
}

func NewElo(start, k float64) Elo { return Elo{Player: start, Opponent: start, K: k} }

func (e Elo) expect() (ep, eo float64) {
	ep = 1.0 / (1.0 + math.Pow(10, (e.Opponent-e.Player)/400.0))
	return ep, 1.0 - ep
}

// Update applies one game given the player's final margin in points and returns
// the deltas (dP, dO). A chouine counts as a full win for its winner whatever the margin.
func (e *Elo) Update(margin int, winner engine.Winner, chouine bool) (dP, dO float64) {
	ep, eo := e.expect()

	// soft score from the point margin
	sp := 0.5 + 0.5*math.Tanh(float64(margin)/marginScalePoints)
	if chouine {
		sp = 0
		if winner == engine.PlayerWins {
			sp = 1
		}
	}
	so := 1.0 - sp

	kEff := e.K * marginScale(margin) * decay(e.Games)
	dP = kEff * (sp - ep)
	dO = kEff * (so - eo)

	e.Player += dP
	e.Opponent += dO
	e.Games++
	return dP, dO
}

// ---- helpers ----

const marginScalePoints = 40.0

func marginScale(margin int) float64 {
	m := math.Abs(float64(margin)) / marginScalePoints
	return 1.0 + 0.35*math.Tanh(m) // ≤ ~1.35
}

func decay(games int) float64 {
	return 1.0 / (1.0 + 0.01*float64(games))
}
