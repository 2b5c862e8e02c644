package engine

import "errors"

var (
	ErrGameOver            = errors.New("game over")
	ErrInvalidSide         = errors.New("unknown side")
	ErrNotLeader           = errors.New("not leader")
	ErrLeaderCannotFollow  = errors.New("leader cannot follow")
	ErrTrickInProgress     = errors.New("trick already started")
	ErrNoLeadToFollow      = errors.New("no lead to follow")
	ErrCardNotInHand       = errors.New("card not in hand")
	ErrIllegalMove         = errors.New("illegal move (must follow/cut/overtrump)")
	ErrAnnounceNotShown    = errors.New("announce must be shown")
	ErrAnnounceInvalid     = errors.New("invalid announce for hand")
	ErrAnnounceAlreadyMade = errors.New("announce already made")
	ErrAuSeptRequired      = errors.New("au sept required")
	ErrExchangeNotAllowed  = errors.New("exchange not allowed")
)

var kinds = []struct {
	err  error
	code string
}{
	{ErrGameOver, "game_over"},
	{ErrInvalidSide, "invalid_side"},
	{ErrNotLeader, "not_leader"},
	{ErrLeaderCannotFollow, "leader_cannot_follow"},
	{ErrTrickInProgress, "trick_in_progress"},
	{ErrNoLeadToFollow, "no_lead_to_follow"},
	{ErrCardNotInHand, "card_not_in_hand"},
	{ErrIllegalMove, "illegal_move"},
	{ErrAnnounceNotShown, "announce_not_shown"},
	{ErrAnnounceInvalid, "announce_invalid"},
	{ErrAnnounceAlreadyMade, "announce_already_made"},
	{ErrAuSeptRequired, "au_sept_required"},
	{ErrExchangeNotAllowed, "exchange_not_allowed"},
}

// Kind returns the stable code of an engine error, or "" for foreign errors.
func Kind(err error) string {
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.code
		}
	}
	return ""
}
