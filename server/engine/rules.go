package engine

type TrickResult int

const (
	LeadWins TrickResult = iota
	ReplyWins
)

// TrickWinner decides a two-card trick. An off-suit, non-trump reply never wins: while
// the stock has cards nothing forces a follow, afterwards it is a forced discard.
func TrickWinner(lead, reply Card, trump Suit, stockNotEmpty bool) TrickResult {
	leadTrump := lead.Suit == trump
	replyTrump := reply.Suit == trump
	switch {
	case replyTrump && !leadTrump:
		return ReplyWins
	case leadTrump && !replyTrump:
		return LeadWins
	case lead.Suit == reply.Suit:
		if Stronger(reply, lead) {
			return ReplyWins
		}
		return LeadWins
	}
	return LeadWins
}

// LegalMoves returns the cards of hand that may be played. lead is nil when leading.
func LegalMoves(hand []Card, lead *Card, trump Suit, stockNotEmpty bool) []Card {
	if lead == nil || stockNotEmpty {
		return append([]Card(nil), hand...)
	}
	if lead.Suit == trump {
		trumps := ofSuit(hand, trump)
		if len(trumps) == 0 {
			return append([]Card(nil), hand...)
		}
		var over []Card
		for _, c := range trumps {
			if Stronger(c, *lead) {
				over = append(over, c)
			}
		}
		if len(over) > 0 {
			return over
		}
		return trumps
	}
	if hasSuit(hand, lead.Suit) {
		return ofSuit(hand, lead.Suit)
	}
	if trumps := ofSuit(hand, trump); len(trumps) > 0 {
		return trumps
	}
	return append([]Card(nil), hand...)
}

// AnnouncePoints returns the value of a combination; trump-suit combinations count double.
func AnnouncePoints(a Announce, trump Suit) int {
	var base int
	switch a.Type {
	case Mariage:
		base = 20
	case Tierce:
		base = 30
	case Quarteron:
		base = 40
	case Quinte:
		return 50
	default:
		return 0
	}
	if a.Suit == trump {
		return base * 2
	}
	return base
}

// ValidAnnounce reports whether hand holds the combination a names.
func ValidAnnounce(hand []Card, a Announce) bool {
	if a.None() {
		return true
	}
	if a.Type == Quinte {
		return HasQuinte(hand)
	}
	if !a.Suit.Valid() {
		return false
	}
	switch a.Type {
	case Mariage:
		return HasMariage(hand, a.Suit)
	case Tierce:
		return HasTierce(hand, a.Suit)
	case Quarteron:
		return HasQuarteron(hand, a.Suit)
	case Chouine:
		return HasChouine(hand, a.Suit)
	}
	return false
}

// EligibleAnnounces lists every combination hand currently holds.
func EligibleAnnounces(hand []Card) []Announce {
	var out []Announce
	for _, s := range Suits {
		for _, t := range []AnnounceType{Mariage, Tierce, Quarteron, Chouine} {
			a := Announce{Type: t, Suit: s}
			if ValidAnnounce(hand, a) {
				out = append(out, a)
			}
		}
	}
	if HasQuinte(hand) {
		out = append(out, Announce{Type: Quinte})
	}
	return out
}

// PilePoints sums card points over a trick pile.
func PilePoints(pile [][2]Card) int {
	total := 0
	for _, t := range pile {
		total += t[0].Points() + t[1].Points()
	}
	return total
}
