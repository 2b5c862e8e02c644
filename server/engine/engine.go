package engine

import (
	"fmt"
	"math/rand"
)

const (
	HandSize       = 5
	LastTrickBonus = 10
)

// SideState is everything one side owns.
type SideState struct {
	Hand           []Card
	Tricks         [][2]Card
	AnnouncePoints int
	Announced      map[AnnounceKey]bool
}

func newSideState(hand []Card) *SideState {
	return &SideState{Hand: hand, Announced: map[AnnounceKey]bool{}}
}

// Game is one hand of chouine between the player and the opponent.
type Game struct {
	ID            string
	TrumpSuit     Suit
	TrumpCard     Card // the turnup, or the seven swapped in for it
	Talon         []Card
	TurnupInStock bool

	Player   *SideState
	Opponent *SideState

	Trick        TrickState
	ExchangeUsed bool

	Winner          Winner
	EndedByChouine  bool
	LastTrickWinner Side
	LastTrick       *TrickSummary
	LastAnnounce    *AnnounceEvent
}

// NewGame shuffles a fresh deck with r and deals it.
func NewGame(id string, r *rand.Rand) *Game {
	deck := NewDeck()
	Shuffle(r, deck)
	g, err := Deal(id, deck)
	if err != nil {
		panic(err) // a fresh deck is always complete
	}
	return g
}

// Deal builds a game from an ordered deck: five cards each, the turnup, then the talon.
func Deal(id string, deck []Card) (*Game, error) {
	if len(deck) != len(Suits)*len(Ranks) {
		return nil, fmt.Errorf("expected %d cards, got %d", len(Suits)*len(Ranks), len(deck))
	}
	seen := map[Card]bool{}
	for _, c := range deck {
		if !c.Valid() {
			return nil, fmt.Errorf("invalid card %v", c)
		}
		if seen[c] {
			return nil, fmt.Errorf("duplicate card detected: %v", c)
		}
		seen[c] = true
	}
	cards := append([]Card(nil), deck...)
	turnup := cards[2*HandSize]
	return &Game{
		ID:            id,
		TrumpSuit:     turnup.Suit,
		TrumpCard:     turnup,
		Talon:         cards[2*HandSize+1:],
		TurnupInStock: true,
		Player:        newSideState(cards[:HandSize:HandSize]),
		Opponent:      newSideState(cards[HandSize : 2*HandSize : 2*HandSize]),
		Trick:         LeadPending{By: Player},
	}, nil
}

// Side returns the state of s, or nil for an unknown side.
func (g *Game) Side(s Side) *SideState {
	switch s {
	case Player:
		return g.Player
	case Opponent:
		return g.Opponent
	}
	return nil
}

func (g *Game) Over() bool   { return g.Winner != NoWinner }
func (g *Game) Leader() Side { return g.Trick.Leader() }

func (g *Game) Phase() Phase {
	if g.Over() {
		return Over
	}
	if _, ok := g.Trick.(FollowPending); ok {
		return AwaitingFollow
	}
	return AwaitingLead
}

// CurrentLead returns the open lead, if any.
func (g *Game) CurrentLead() (PlayedCard, bool) {
	if f, ok := g.Trick.(FollowPending); ok {
		return PlayedCard{By: f.By, Card: f.Card}, true
	}
	return PlayedCard{}, false
}

// StockNotEmpty reports whether the talon or the turnup can still be drawn.
func (g *Game) StockNotEmpty() bool { return len(g.Talon) > 0 || g.TurnupInStock }

func (g *Game) StockCount() int {
	n := len(g.Talon)
	if g.TurnupInStock {
		n++
	}
	return n
}

// AuSeptRequired holds while two talon cards remain and the seven was never exchanged.
func (g *Game) AuSeptRequired() bool { return len(g.Talon) == 2 && !g.ExchangeUsed }

func (g *Game) trumpSeven() Card { return Card{Suit: g.TrumpSuit, Rank: Seven} }

// CanExchange7 reports whether by may swap the trump seven for the turnup now.
func (g *Game) CanExchange7(by Side) bool {
	st := g.Side(by)
	return st != nil && !g.Over() && !g.ExchangeUsed && len(g.Talon) > 0 &&
		ContainsCard(st.Hand, g.trumpSeven())
}

// LegalMoves returns what by may play right now.
func (g *Game) LegalMoves(by Side) []Card {
	st := g.Side(by)
	if st == nil || g.Over() {
		return nil
	}
	lead, open := g.CurrentLead()
	if !open {
		if by != g.Leader() {
			return nil
		}
		return LegalMoves(st.Hand, nil, g.TrumpSuit, g.StockNotEmpty())
	}
	if by == lead.By {
		return nil
	}
	return LegalMoves(st.Hand, &lead.Card, g.TrumpSuit, g.StockNotEmpty())
}

// checkAnnounce validates a against the hand held before the card leaves it.
func (g *Game) checkAnnounce(by Side, a Announce, show bool, snapshot []Card) error {
	if a.None() {
		return nil
	}
	if !show {
		return ErrAnnounceNotShown
	}
	if !ValidAnnounce(snapshot, a) {
		return fmt.Errorf("%w: %s", ErrAnnounceInvalid, a.Key())
	}
	if g.Side(by).Announced[a.Key()] {
		return fmt.Errorf("%w: %s", ErrAnnounceAlreadyMade, a.Key())
	}
	return nil
}

// applyAnnounce records a validated announce and reports whether it ended the game.
func (g *Game) applyAnnounce(by Side, a Announce) bool {
	if a.None() {
		return false
	}
	st := g.Side(by)
	st.Announced[a.Key()] = true
	g.LastAnnounce = &AnnounceEvent{By: by, Type: a.Type, Suit: a.Suit}
	if a.Type == Chouine {
		g.Winner = winnerOf(by)
		g.EndedByChouine = true
		return true
	}
	st.AnnouncePoints += AnnouncePoints(a, g.TrumpSuit)
	return false
}

// LeaderPlay opens a trick. A validated chouine ends the game before the card is played.
func (g *Game) LeaderPlay(by Side, card Card, auSept bool, a Announce, show bool) error {
	if g.Over() {
		return ErrGameOver
	}
	if _, open := g.CurrentLead(); open {
		return ErrTrickInProgress
	}
	if !by.Valid() {
		return ErrInvalidSide
	}
	if by != g.Leader() {
		return fmt.Errorf("%w: %s leads", ErrNotLeader, g.Leader())
	}
	if g.AuSeptRequired() && !auSept {
		return ErrAuSeptRequired
	}
	st := g.Side(by)
	if !ContainsCard(st.Hand, card) {
		return fmt.Errorf("%w: %s", ErrCardNotInHand, card)
	}
	if err := g.checkAnnounce(by, a, show, st.Hand); err != nil {
		return err
	}

	if g.applyAnnounce(by, a) {
		return nil
	}
	st.Hand = removeCard(st.Hand, card)
	g.Trick = FollowPending{By: by, Card: card}
	return nil
}

// FollowerPlay answers the open lead and resolves the trick.
func (g *Game) FollowerPlay(by Side, card Card, a Announce, show bool) error {
	if g.Over() {
		return ErrGameOver
	}
	lead, open := g.CurrentLead()
	if !open {
		return ErrNoLeadToFollow
	}
	if !by.Valid() {
		return ErrInvalidSide
	}
	if by == lead.By {
		return ErrLeaderCannotFollow
	}
	st := g.Side(by)
	if !ContainsCard(st.Hand, card) {
		return fmt.Errorf("%w: %s", ErrCardNotInHand, card)
	}
	if !g.StockNotEmpty() {
		legal := LegalMoves(st.Hand, &lead.Card, g.TrumpSuit, false)
		if !ContainsCard(legal, card) {
			return fmt.Errorf("%w: %s on %s", ErrIllegalMove, card, lead.Card)
		}
	}
	if err := g.checkAnnounce(by, a, show, st.Hand); err != nil {
		return err
	}

	if g.applyAnnounce(by, a) {
		return nil
	}
	st.Hand = removeCard(st.Hand, card)
	g.resolve(lead, PlayedCard{By: by, Card: card})
	return nil
}

func (g *Game) resolve(lead, reply PlayedCard) {
	if !g.StockNotEmpty() && reply.Card.Suit != lead.Card.Suit && reply.Card.Suit != g.TrumpSuit {
		rest := g.Side(reply.By).Hand
		if hasSuit(rest, lead.Card.Suit) || hasSuit(rest, g.TrumpSuit) {
			panic(fmt.Sprintf("engine: %s discarded %s on %s while able to follow or cut", reply.By, reply.Card, lead.Card))
		}
	}
	winner := lead.By
	if TrickWinner(lead.Card, reply.Card, g.TrumpSuit, g.StockNotEmpty()) == ReplyWins {
		winner = reply.By
	}
	ws := g.Side(winner)
	ws.Tricks = append(ws.Tricks, [2]Card{lead.Card, reply.Card})
	g.LastTrickWinner = winner
	g.Trick = LeadPending{By: winner}

	if g.StockNotEmpty() {
		for _, s := range []Side{winner, winner.Other()} {
			if c, ok := g.draw(); ok {
				g.Side(s).Hand = append(g.Side(s).Hand, c)
			}
		}
	}

	g.LastTrick = &TrickSummary{Lead: lead, Reply: reply, Winner: winner, TalonCount: len(g.Talon)}
	g.CheckOver()
}

// draw takes from the talon, then the turnup once the talon is gone.
func (g *Game) draw() (Card, bool) {
	if len(g.Talon) > 0 {
		c := g.Talon[0]
		g.Talon = g.Talon[1:]
		return c, true
	}
	if g.TurnupInStock {
		g.TurnupInStock = false
		return g.TrumpCard, true
	}
	return Card{}, false
}

// Exchange7 swaps by's trump seven for the turnup. Allowed once per game, while the talon has cards.
func (g *Game) Exchange7(by Side) error {
	if g.Over() {
		return ErrGameOver
	}
	st := g.Side(by)
	if st == nil {
		return ErrInvalidSide
	}
	if g.ExchangeUsed {
		return fmt.Errorf("%w: exchange already done", ErrExchangeNotAllowed)
	}
	if len(g.Talon) == 0 {
		return fmt.Errorf("%w: talon empty", ErrExchangeNotAllowed)
	}
	seven := g.trumpSeven()
	idx, ok := indexOfCard(st.Hand, seven)
	if !ok {
		return fmt.Errorf("%w: %s does not hold %s", ErrExchangeNotAllowed, by, seven)
	}
	st.Hand[idx] = g.TrumpCard
	g.TrumpCard = seven
	g.ExchangeUsed = true
	return nil
}

// CheckOver ends the game once both hands are empty with no trick open.
func (g *Game) CheckOver() bool {
	if g.Over() {
		return true
	}
	if _, open := g.CurrentLead(); open {
		return false
	}
	if len(g.Player.Hand) != 0 || len(g.Opponent.Hand) != 0 {
		return false
	}
	p, o := g.FinalScore(Player).Total, g.FinalScore(Opponent).Total
	switch {
	case p > o:
		g.Winner = PlayerWins
	case o > p:
		g.Winner = OpponentWins
	default:
		g.Winner = Draw
	}
	return true
}

// RunningScore never includes the last-trick bonus.
func (g *Game) RunningScore(s Side) Score {
	st := g.Side(s)
	cards := PilePoints(st.Tricks)
	return Score{Cards: cards, Announces: st.AnnouncePoints, Total: cards + st.AnnouncePoints}
}

// FinalScore adds the last-trick bonus to whoever took the latest trick.
func (g *Game) FinalScore(s Side) Score {
	sc := g.RunningScore(s)
	if g.LastTrickWinner == s {
		sc.LastTrick = LastTrickBonus
		sc.Total += LastTrickBonus
	}
	return sc
}

// InvariantWarning reports a hand-size mismatch, or "" when sizes are consistent.
func (g *Game) InvariantWarning() string {
	p, o := len(g.Player.Hand), len(g.Opponent.Hand)
	if lead, open := g.CurrentLead(); open {
		lh, fh := p, o
		if lead.By == Opponent {
			lh, fh = o, p
		}
		if lh != fh-1 {
			return fmt.Sprintf("invariant: during trick %s should have one less card than %s", lead.By, lead.By.Other())
		}
		return ""
	}
	if p != o {
		return "invariant: between tricks hands should be same size"
	}
	return ""
}
