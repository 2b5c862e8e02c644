package agent

import (
	"encoding/json"
	"errors"
	"math/rand"
	"testing"

	"chouine/server/engine"
)

// dealt builds a game whose hands start with the given cards; the rest of the deck
// fills the hands and the talon in order.
func dealt(t *testing.T, player, opponent []engine.Card, turnup engine.Card) *engine.Game {
	t.Helper()
	used := map[engine.Card]bool{turnup: true}
	for _, c := range append(append([]engine.Card{}, player...), opponent...) {
		used[c] = true
	}
	var rest []engine.Card
	for _, c := range engine.NewDeck() {
		if !used[c] {
			rest = append(rest, c)
		}
	}
	pad := func(hand []engine.Card) []engine.Card {
		out := append([]engine.Card{}, hand...)
		for len(out) < engine.HandSize {
			out, rest = append(out, rest[0]), rest[1:]
		}
		return out
	}
	deck := append(pad(player), pad(opponent)...)
	deck = append(deck, turnup)
	deck = append(deck, rest...)
	g, err := engine.Deal("t", deck)
	if err != nil {
		t.Fatalf("deal: %v", err)
	}
	return g
}

func TestBuildPublicStateHidesOpponentHand(t *testing.T) {
	g := engine.NewGame("g-1", rand.New(rand.NewSource(11)))
	ps := BuildPublicState(g, engine.Player)

	if ps.GameID != "g-1" || ps.TrumpSuit != g.TrumpSuit || ps.Trump != g.TrumpCard {
		t.Fatalf("unexpected header: %+v", ps)
	}
	if len(ps.Hands.Player) != 5 || ps.Hands.OpponentCount != 5 {
		t.Fatalf("hands = %d cards / %d hidden", len(ps.Hands.Player), ps.Hands.OpponentCount)
	}
	for i, c := range g.Player.Hand {
		if ps.Hands.Player[i] != c {
			t.Fatalf("hand mismatch at %d", i)
		}
	}
	if ps.StockCount != 22 || ps.TalonCount != 21 || !ps.TurnupInStock {
		t.Fatalf("stock = %d talon = %d", ps.StockCount, ps.TalonCount)
	}
	if ps.FinalScore != nil || ps.Winner != nil || ps.CurrentLead != nil || ps.IsOver {
		t.Fatalf("fresh game should have no result or lead")
	}
	if !ps.ScoresSoFar.DixDeDerPending {
		t.Fatalf("dix de der should be pending while the game runs")
	}
	if len(ps.LegalMoves) != 5 {
		t.Fatalf("leader should be able to play any card, got %v", ps.LegalMoves)
	}

	raw, err := json.Marshal(ps)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	for _, key := range []string{"game_id", "trump", "trump_suit", "talon_count", "leader", "hands",
		"current_lead", "last_trick", "scores_so_far", "final_score", "is_over", "winner",
		"can_exchange7", "au_sept_required", "stock_count", "turnup_in_stock", "announced", "last_announce"} {
		if _, ok := m[key]; !ok {
			t.Fatalf("missing key %q in %s", key, raw)
		}
	}
	hands := m["hands"].(map[string]any)
	if len(hands) != 2 || hands["opponent_count"] == nil {
		t.Fatalf("hands should only carry the viewer's cards and a count: %v", hands)
	}
	announced := m["announced"].(map[string]any)
	if _, ok := announced["player"].([]any); !ok {
		t.Fatalf("announced lists should encode as arrays: %v", announced)
	}
}

func TestBuildPublicStateForOpponentViewer(t *testing.T) {
	g := engine.NewGame("g", rand.New(rand.NewSource(2)))
	ps := BuildPublicState(g, engine.Opponent)
	for i, c := range g.Opponent.Hand {
		if ps.Hands.Player[i] != c {
			t.Fatalf("opponent view should show the opponent hand")
		}
	}
	if len(ps.LegalMoves) != 0 {
		t.Fatalf("opponent does not lead the first trick, got %v", ps.LegalMoves)
	}
}

func TestBuildPublicStateSortsAnnounces(t *testing.T) {
	g := engine.NewGame("g", rand.New(rand.NewSource(4)))
	g.Player.Announced[engine.AnnounceKey{Type: engine.Tierce, Suit: engine.Spades}] = true
	g.Player.Announced[engine.AnnounceKey{Type: engine.Quinte}] = true
	g.Player.Announced[engine.AnnounceKey{Type: engine.Mariage, Suit: engine.Clubs}] = true

	got := BuildPublicState(g, engine.Player).Announced.Player
	want := []string{"mariage:C", "quinte", "tierce:S"}
	if len(got) != len(want) {
		t.Fatalf("announced = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("announced = %v, want %v", got, want)
		}
	}
}

func TestBuildPublicStateAfterChouine(t *testing.T) {
	g := dealt(t,
		[]engine.Card{{Suit: engine.Spades, Rank: engine.Ace}, {Suit: engine.Spades, Rank: engine.Ten}, {Suit: engine.Spades, Rank: engine.King}, {Suit: engine.Spades, Rank: engine.Queen}, {Suit: engine.Spades, Rank: engine.Jack}},
		nil,
		engine.Card{Suit: engine.Hearts, Rank: engine.Eight},
	)
	chouine := engine.Announce{Type: engine.Chouine, Suit: engine.Spades}
	if err := g.LeaderPlay(engine.Player, engine.Card{Suit: engine.Spades, Rank: engine.Ace}, false, chouine, true); err != nil {
		t.Fatalf("chouine: %v", err)
	}
	ps := BuildPublicState(g, engine.Player)
	if !ps.IsOver || ps.Winner == nil || *ps.Winner != engine.PlayerWins || !ps.EndedByChouine {
		t.Fatalf("expected a chouine win, got %+v", ps)
	}
	if ps.FinalScore == nil || ps.ScoresSoFar.DixDeDerPending {
		t.Fatalf("final score should be present once over")
	}
	if ps.LastAnnounce == nil || ps.LastAnnounce.Type != engine.Chouine {
		t.Fatalf("last announce = %+v", ps.LastAnnounce)
	}
	if ps.CanExchange7 || len(ps.LegalMoves) != 0 {
		t.Fatalf("no moves remain after the game ends")
	}
}

func TestValidate(t *testing.T) {
	card := engine.Card{Suit: engine.Hearts, Rank: engine.Ace}
	tests := []struct {
		name    string
		move    Move
		wantErr bool
	}{
		{"player with card", Move{By: engine.Player, Card: &card}, false},
		{"opponent without card", Move{By: engine.Opponent}, false},
		{"missing side", Move{Card: &card}, true},
		{"bad card", Move{By: engine.Player, Card: &engine.Card{Suit: "X", Rank: engine.Ace}}, true},
		{"unknown announce", Move{By: engine.Player, Card: &card, Announce: &engine.Announce{Type: "belote"}}, true},
		{"explicit none", Move{By: engine.Player, Card: &card, Announce: &engine.Announce{Type: engine.NoAnnounce}}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.move)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
	if err := Validate(Move{By: "dealer"}); !errors.Is(err, engine.ErrInvalidSide) {
		t.Fatalf("expected invalid side, got %v", err)
	}
}
