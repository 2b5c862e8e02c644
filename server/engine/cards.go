package engine

import "math/rand"

// NewDeck returns the 32 cards in suit-major, strongest-first order.
func NewDeck() []Card {
	deck := make([]Card, 0, len(Suits)*len(Ranks))
	for _, s := range Suits {
		for _, r := range Ranks {
			deck = append(deck, Card{Suit: s, Rank: r})
		}
	}
	return deck
}

// Shuffle permutes cards in place using r.
func Shuffle(r *rand.Rand, cards []Card) {
	for i := len(cards) - 1; i > 0; i-- {
		j := r.Intn(i + 1)
		cards[i], cards[j] = cards[j], cards[i]
	}
}

func (c Card) String() string { return string(c.Rank) + string(c.Suit) }

// Strength orders ranks: 7 for an ace down to 0 for a seven.
func (r Rank) Strength() int {
	for i, x := range Ranks {
		if x == r {
			return len(Ranks) - 1 - i
		}
	}
	return -1
}

func (r Rank) Valid() bool { return r.Strength() >= 0 }

func (s Suit) Valid() bool {
	switch s {
	case Hearts, Diamonds, Clubs, Spades:
		return true
	}
	return false
}

func (c Card) Valid() bool { return c.Suit.Valid() && c.Rank.Valid() }

// Points returns the card-point value of a rank.
func (r Rank) Points() int {
	switch r {
	case Ace:
		return 11
	case Ten:
		return 10
	case King:
		return 4
	case Queen:
		return 3
	case Jack:
		return 2
	default:
		return 0
	}
}

func (c Card) Points() int { return c.Rank.Points() }

func (c Card) Brisque() bool { return c.Rank == Ace || c.Rank == Ten }

// Stronger reports whether a outranks b. Suits are not compared.
func Stronger(a, b Card) bool { return a.Rank.Strength() > b.Rank.Strength() }

func indexOfCard(cards []Card, target Card) (int, bool) {
	for i, c := range cards {
		if c == target {
			return i, true
		}
	}
	return -1, false
}

// ContainsCard reports whether cards holds target.
func ContainsCard(cards []Card, target Card) bool {
	_, ok := indexOfCard(cards, target)
	return ok
}

func removeCard(cards []Card, target Card) []Card {
	idx, ok := indexOfCard(cards, target)
	if !ok {
		return cards
	}
	out := make([]Card, 0, len(cards)-1)
	out = append(out, cards[:idx]...)
	return append(out, cards[idx+1:]...)
}

func hasSuit(hand []Card, s Suit) bool {
	for _, c := range hand {
		if c.Suit == s {
			return true
		}
	}
	return false
}

func ofSuit(hand []Card, s Suit) []Card {
	var out []Card
	for _, c := range hand {
		if c.Suit == s {
			out = append(out, c)
		}
	}
	return out
}

func hasRanks(hand []Card, s Suit, ranks ...Rank) bool {
	for _, r := range ranks {
		if !ContainsCard(hand, Card{Suit: s, Rank: r}) {
			return false
		}
	}
	return true
}

// CountBrisques counts aces and tens in hand.
func CountBrisques(hand []Card) int {
	n := 0
	for _, c := range hand {
		if c.Brisque() {
			n++
		}
	}
	return n
}

func HasMariage(hand []Card, s Suit) bool   { return hasRanks(hand, s, King, Queen) }
func HasTierce(hand []Card, s Suit) bool    { return hasRanks(hand, s, King, Queen, Jack) }
func HasQuarteron(hand []Card, s Suit) bool { return hasRanks(hand, s, Ace, King, Queen, Jack) }
func HasChouine(hand []Card, s Suit) bool   { return hasRanks(hand, s, Ace, Ten, King, Queen, Jack) }

// HasQuinte is suit independent: five or more brisques anywhere in hand.
func HasQuinte(hand []Card) bool { return CountBrisques(hand) >= 5 }
