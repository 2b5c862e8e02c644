package engine

import (
	"math/rand"
	"testing"
)

func TestTrickWinnerScenarios(t *testing.T) {
	tests := []struct {
		name      string
		lead      Card
		reply     Card
		stockLeft bool
		want      TrickResult
	}{
		{name: "same suit higher lead", lead: Card{Spades, Ace}, reply: Card{Spades, King}, stockLeft: true, want: LeadWins},
		{name: "same suit higher reply", lead: Card{Spades, Jack}, reply: Card{Spades, Ten}, stockLeft: false, want: ReplyWins},
		{name: "cut with weakest trump", lead: Card{Spades, Ace}, reply: Card{Hearts, Seven}, stockLeft: true, want: ReplyWins},
		{name: "trump lead beats off suit", lead: Card{Hearts, Seven}, reply: Card{Spades, Ace}, stockLeft: false, want: LeadWins},
		{name: "discard while drawing", lead: Card{Clubs, Seven}, reply: Card{Spades, Ace}, stockLeft: true, want: LeadWins},
		{name: "forced discard", lead: Card{Clubs, Seven}, reply: Card{Spades, Ace}, stockLeft: false, want: LeadWins},
		{name: "both trump", lead: Card{Hearts, Queen}, reply: Card{Hearts, King}, stockLeft: false, want: ReplyWins},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TrickWinner(tt.lead, tt.reply, Hearts, tt.stockLeft); got != tt.want {
				t.Fatalf("TrickWinner(%s, %s) = %d, want %d", tt.lead, tt.reply, got, tt.want)
			}
		})
	}
}

func TestTrickWinnerAllPairs(t *testing.T) {
	deck := NewDeck()
	for _, trump := range Suits {
		for _, lead := range deck {
			for _, reply := range deck {
				if lead == reply {
					continue
				}
				got := TrickWinner(lead, reply, trump, true)
				switch {
				case lead.Suit == reply.Suit:
					want := LeadWins
					if Stronger(reply, lead) {
						want = ReplyWins
					}
					if got != want {
						t.Fatalf("trump %s: %s vs %s = %d, want %d", trump, lead, reply, got, want)
					}
				case reply.Suit == trump:
					if got != ReplyWins {
						t.Fatalf("trump %s: %s should cut %s", trump, reply, lead)
					}
				default:
					if got != LeadWins {
						t.Fatalf("trump %s: %s should not beat %s", trump, reply, lead)
					}
				}
			}
		}
	}
}

func TestLegalMoves(t *testing.T) {
	tests := []struct {
		name      string
		hand      []Card
		lead      *Card
		stockLeft bool
		want      []Card
	}{
		{
			name:      "no lead",
			hand:      []Card{{Spades, Ace}, {Hearts, Seven}},
			lead:      nil,
			stockLeft: false,
			want:      []Card{{Spades, Ace}, {Hearts, Seven}},
		},
		{
			name:      "stock left frees the follower",
			hand:      []Card{{Spades, Ace}, {Hearts, Seven}},
			lead:      &Card{Spades, Seven},
			stockLeft: true,
			want:      []Card{{Spades, Ace}, {Hearts, Seven}},
		},
		{
			name:      "must follow suit",
			hand:      []Card{{Spades, Ace}, {Hearts, Seven}, {Spades, Eight}},
			lead:      &Card{Spades, Seven},
			stockLeft: false,
			want:      []Card{{Spades, Ace}, {Spades, Eight}},
		},
		{
			name:      "must cut without the suit",
			hand:      []Card{{Clubs, Ace}, {Hearts, Seven}, {Hearts, Jack}},
			lead:      &Card{Spades, Seven},
			stockLeft: false,
			want:      []Card{{Hearts, Seven}, {Hearts, Jack}},
		},
		{
			name:      "forced overtrump",
			hand:      []Card{{Hearts, King}, {Hearts, Seven}, {Clubs, Ace}},
			lead:      &Card{Hearts, Queen},
			stockLeft: false,
			want:      []Card{{Hearts, King}},
		},
		{
			name:      "cannot overtrump plays any trump",
			hand:      []Card{{Hearts, Jack}, {Hearts, Seven}, {Clubs, Ace}},
			lead:      &Card{Hearts, Ace},
			stockLeft: false,
			want:      []Card{{Hearts, Jack}, {Hearts, Seven}},
		},
		{
			name:      "forced discard",
			hand:      []Card{{Clubs, Ace}, {Diamonds, Seven}},
			lead:      &Card{Spades, Seven},
			stockLeft: false,
			want:      []Card{{Clubs, Ace}, {Diamonds, Seven}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := LegalMoves(tt.hand, tt.lead, Hearts, tt.stockLeft)
			if len(got) != len(tt.want) {
				t.Fatalf("LegalMoves() = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("LegalMoves() = %v, want %v", got, tt.want)
				}
			}
		})
	}
}

func TestLegalMovesNeverEmpty(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	for i := 0; i < 2000; i++ {
		deck := NewDeck()
		Shuffle(r, deck)
		size := 1 + r.Intn(HandSize)
		hand := deck[:size]
		lead := deck[size]
		trump := Suits[r.Intn(len(Suits))]
		stockLeft := r.Intn(2) == 0

		legal := LegalMoves(hand, &lead, trump, stockLeft)
		if len(legal) == 0 {
			t.Fatalf("no legal move for %v on %s (trump %s, stock %v)", hand, lead, trump, stockLeft)
		}
		for _, c := range legal {
			if !ContainsCard(hand, c) {
				t.Fatalf("legal card %s not in hand %v", c, hand)
			}
			if !stockLeft && c.Suit != lead.Suit && c.Suit != trump && (hasSuit(hand, lead.Suit) || hasSuit(hand, trump)) {
				t.Fatalf("discard %s allowed on %s while able to follow or cut: %v", c, lead, hand)
			}
		}
	}
}

func TestAnnouncePoints(t *testing.T) {
	tests := []struct {
		a    Announce
		want int
	}{
		{Announce{Mariage, Spades}, 20},
		{Announce{Mariage, Hearts}, 40},
		{Announce{Tierce, Clubs}, 30},
		{Announce{Tierce, Hearts}, 60},
		{Announce{Quarteron, Diamonds}, 40},
		{Announce{Quarteron, Hearts}, 80},
		{Announce{Quinte, ""}, 50},
		{Announce{Chouine, Hearts}, 0},
		{Announce{NoAnnounce, ""}, 0},
	}
	for _, tt := range tests {
		if got := AnnouncePoints(tt.a, Hearts); got != tt.want {
			t.Fatalf("AnnouncePoints(%+v) = %d, want %d", tt.a, got, tt.want)
		}
	}
}

func TestAnnounceKeys(t *testing.T) {
	if got := (Announce{Type: Quinte, Suit: Spades}).Key().String(); got != "quinte" {
		t.Fatalf("quinte key = %q", got)
	}
	if got := (Announce{Type: Mariage, Suit: Clubs}).Key().String(); got != "mariage:C" {
		t.Fatalf("mariage key = %q", got)
	}
}

func TestValidAnnounce(t *testing.T) {
	hand := []Card{{Clubs, King}, {Clubs, Queen}, {Clubs, Jack}, {Spades, Ace}, {Hearts, Ten}}
	if !ValidAnnounce(hand, Announce{Tierce, Clubs}) {
		t.Fatalf("tierce of clubs should be valid")
	}
	if ValidAnnounce(hand, Announce{Quarteron, Clubs}) {
		t.Fatalf("quarteron needs the ace")
	}
	if ValidAnnounce(hand, Announce{Type: Mariage}) {
		t.Fatalf("suited announce without suit must be rejected")
	}
	if !ValidAnnounce(hand, Announce{}) {
		t.Fatalf("no announce is always valid")
	}

	got := EligibleAnnounces(hand)
	if len(got) != 2 || got[0] != (Announce{Mariage, Clubs}) || got[1] != (Announce{Tierce, Clubs}) {
		t.Fatalf("EligibleAnnounces() = %v", got)
	}
}

func TestPilePoints(t *testing.T) {
	pile := [][2]Card{{{Spades, Ace}, {Spades, Ten}}, {{Hearts, King}, {Clubs, Seven}}}
	if got := PilePoints(pile); got != 25 {
		t.Fatalf("PilePoints() = %d, want 25", got)
	}
}
