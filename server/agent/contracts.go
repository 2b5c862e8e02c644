package agent

import (
	"fmt"
	"sort"

	"chouine/server/engine"
)

// PublicState is the read-only view of a game sent to one side.
type PublicState struct {
	GameID         string                `json:"game_id"`
	Trump          engine.Card           `json:"trump"`
	TrumpSuit      engine.Suit           `json:"trump_suit"`
	TalonCount     int                   `json:"talon_count"`
	Leader         engine.Side           `json:"leader"`
	Phase          string                `json:"phase"`
	Hands          Hands                 `json:"hands"`
	LegalMoves     []engine.Card         `json:"legal_moves"`
	CurrentLead    *engine.PlayedCard    `json:"current_lead"`
	LastTrick      *engine.TrickSummary  `json:"last_trick"`
	ScoresSoFar    RunningScores         `json:"scores_so_far"`
	FinalScore     *FinalScores          `json:"final_score"`
	IsOver         bool                  `json:"is_over"`
	Winner         *engine.Winner        `json:"winner"`
	EndedByChouine bool                  `json:"ended_by_chouine"`
	CanExchange7   bool                  `json:"can_exchange7"`
	AuSeptRequired bool                  `json:"au_sept_required"`
	StockCount     int                   `json:"stock_count"`
	TurnupInStock  bool                  `json:"turnup_in_stock"`
	Announced      Announced             `json:"announced"`
	LastAnnounce   *engine.AnnounceEvent `json:"last_announce"`
	Warning        string                `json:"warning,omitempty"`
}

// Hands shows the viewer's cards and only the size of the other hand.
type Hands struct {
	Player        []engine.Card `json:"player"`
	OpponentCount int           `json:"opponent_count"`
}

type RunningScores struct {
	Player          engine.Score `json:"player"`
	Opponent        engine.Score `json:"opponent"`
	DixDeDerPending bool         `json:"dix_de_der_pending"`
}

type FinalSide struct {
	Cards     int `json:"cards"`
	Announces int `json:"announces"`
	DixDeDer  int `json:"dix_de_der"`
	Total     int `json:"total"`
}

type FinalScores struct {
	Player   FinalSide `json:"player"`
	Opponent FinalSide `json:"opponent"`
}

// Announced lists declared announce keys per side, sorted.
type Announced struct {
	Player   []string `json:"player"`
	Opponent []string `json:"opponent"`
}

// BuildPublicState projects g for viewer. The other side's hand is reduced to a count.
func BuildPublicState(g *engine.Game, viewer engine.Side) PublicState {
	if !viewer.Valid() {
		viewer = engine.Player
	}
	me, other := g.Side(viewer), g.Side(viewer.Other())

	ps := PublicState{
		GameID:     g.ID,
		Trump:      g.TrumpCard,
		TrumpSuit:  g.TrumpSuit,
		TalonCount: len(g.Talon),
		Leader:     g.Leader(),
		Phase:      g.Phase().String(),
		Hands: Hands{
			Player:        append([]engine.Card{}, me.Hand...),
			OpponentCount: len(other.Hand),
		},
		LegalMoves: append([]engine.Card{}, g.LegalMoves(viewer)...),
		ScoresSoFar: RunningScores{
			Player:          g.RunningScore(engine.Player),
			Opponent:        g.RunningScore(engine.Opponent),
			DixDeDerPending: !g.Over(),
		},
		IsOver:         g.Over(),
		EndedByChouine: g.EndedByChouine,
		CanExchange7:   g.CanExchange7(viewer),
		AuSeptRequired: g.AuSeptRequired(),
		StockCount:     g.StockCount(),
		TurnupInStock:  g.TurnupInStock,
		Announced: Announced{
			Player:   announceKeys(g.Player),
			Opponent: announceKeys(g.Opponent),
		},
		Warning: g.InvariantWarning(),
	}
	if lead, ok := g.CurrentLead(); ok && !g.Over() {
		ps.CurrentLead = &lead
	}
	if g.LastTrick != nil {
		lt := *g.LastTrick
		ps.LastTrick = &lt
	}
	if g.LastAnnounce != nil {
		la := *g.LastAnnounce
		ps.LastAnnounce = &la
	}
	if g.Over() {
		w := g.Winner
		ps.Winner = &w
		ps.FinalScore = &FinalScores{
			Player:   finalSide(g.FinalScore(engine.Player)),
			Opponent: finalSide(g.FinalScore(engine.Opponent)),
		}
	}
	return ps
}

func finalSide(s engine.Score) FinalSide {
	return FinalSide{Cards: s.Cards, Announces: s.Announces, DixDeDer: s.LastTrick, Total: s.Total}
}

func announceKeys(st *engine.SideState) []string {
	out := make([]string, 0, len(st.Announced))
	for k := range st.Announced {
		out = append(out, k.String())
	}
	sort.Strings(out)
	return out
}

// Move is a lead or follow request. A nil Card lets the opponent policy choose.
type Move struct {
	By       engine.Side      `json:"by"`
	Card     *engine.Card     `json:"card,omitempty"`
	AuSept   bool             `json:"au_sept"`
	Announce *engine.Announce `json:"announce,omitempty"`
	Show     bool             `json:"show"`
}

// AnnounceOrNone returns the requested announce, or the empty announce.
func (m Move) AnnounceOrNone() engine.Announce {
	if m.Announce == nil {
		return engine.Announce{}
	}
	return *m.Announce
}

// Validate checks a move's shape before it reaches the engine.
func Validate(m Move) error {
	if !m.By.Valid() {
		return fmt.Errorf("%w: %q", engine.ErrInvalidSide, m.By)
	}
	if m.Card != nil && !m.Card.Valid() {
		return fmt.Errorf("invalid card %+v", *m.Card)
	}
	if m.Announce != nil {
		switch m.Announce.Type {
		case "", engine.NoAnnounce, engine.Mariage, engine.Tierce, engine.Quarteron, engine.Quinte, engine.Chouine:
		default:
			return fmt.Errorf("%w: unknown type %q", engine.ErrAnnounceInvalid, m.Announce.Type)
		}
	}
	return nil
}
