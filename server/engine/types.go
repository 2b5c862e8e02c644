package engine

type Side string

const (
	Player   Side = "player"
	Opponent Side = "opponent"
)

// Other returns the opposing side.
func (s Side) Other() Side {
	if s == Player {
		return Opponent
	}
	return Player
}

func (s Side) Valid() bool { return s == Player || s == Opponent }

type Suit string

const (
	Hearts   Suit = "H"
	Diamonds Suit = "D"
	Clubs    Suit = "C"
	Spades   Suit = "S"
)

var Suits = []Suit{Hearts, Diamonds, Clubs, Spades}

type Rank string

const (
	Ace   Rank = "A"
	Ten   Rank = "10"
	King  Rank = "K"
	Queen Rank = "Q"
	Jack  Rank = "J"
	Nine  Rank = "9"
	Eight Rank = "8"
	Seven Rank = "7"
)

// Ranks lists ranks from strongest to weakest.
var Ranks = []Rank{Ace, Ten, King, Queen, Jack, Nine, Eight, Seven}

type Card struct {
	Suit Suit `json:"suit"`
	Rank Rank `json:"rank"`
} // e.g. {"suit":"H","rank":"10"}

type AnnounceType string

const (
	NoAnnounce AnnounceType = "none"
	Mariage    AnnounceType = "mariage"
	Tierce     AnnounceType = "tierce"
	Quarteron  AnnounceType = "quarteron"
	Quinte     AnnounceType = "quinte"
	Chouine    AnnounceType = "chouine"
)

// Announce is a combination declared while playing a card. Suit is empty for quinte.
type Announce struct {
	Type AnnounceType `json:"type"`
	Suit Suit         `json:"suit,omitempty"`
}

func (a Announce) None() bool { return a.Type == "" || a.Type == NoAnnounce }

// AnnounceKey identifies a declared combination; a side may declare each key once.
type AnnounceKey struct {
	Type AnnounceType
	Suit Suit
}

func (a Announce) Key() AnnounceKey {
	if a.Type == Quinte {
		return AnnounceKey{Type: Quinte}
	}
	return AnnounceKey{Type: a.Type, Suit: a.Suit}
}

func (k AnnounceKey) String() string {
	if k.Type == Quinte {
		return string(Quinte)
	}
	return string(k.Type) + ":" + string(k.Suit)
}

// AnnounceEvent is the most recent announce made by either side.
type AnnounceEvent struct {
	By   Side         `json:"by"`
	Type AnnounceType `json:"type"`
	Suit Suit         `json:"suit,omitempty"`
}

type Winner string

const (
	NoWinner     Winner = ""
	PlayerWins   Winner = "player"
	OpponentWins Winner = "opponent"
	Draw         Winner = "draw"
)

func winnerOf(s Side) Winner {
	if s == Player {
		return PlayerWins
	}
	return OpponentWins
}

type PlayedCard struct {
	By   Side `json:"by"`
	Card Card `json:"card"`
}

// TrickSummary describes the last completed trick.
type TrickSummary struct {
	Lead       PlayedCard `json:"lead"`
	Reply      PlayedCard `json:"reply"`
	Winner     Side       `json:"winner"`
	TalonCount int        `json:"talon_count"`
}

type Phase int

const (
	AwaitingLead Phase = iota
	AwaitingFollow
	Over
)

func (p Phase) String() string {
	switch p {
	case AwaitingLead:
		return "awaiting_lead"
	case AwaitingFollow:
		return "awaiting_follow"
	default:
		return "over"
	}
}

// TrickState is either AwaitingLead or AwaitingFollow.
type TrickState interface {
	Leader() Side
	trickState()
}

type LeadPending struct{ By Side }

type FollowPending struct {
	By   Side
	Card Card
}

func (s LeadPending) Leader() Side   { return s.By }
func (s FollowPending) Leader() Side { return s.By }
func (LeadPending) trickState()     {}
func (FollowPending) trickState()   {}

// Score is a per-side breakdown. LastTrick is only set on final scores.
type Score struct {
	Cards     int `json:"cards"`
	Announces int `json:"announces"`
	LastTrick int `json:"dix_de_der,omitempty"`
	Total     int `json:"total"`
}
