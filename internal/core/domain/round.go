package domain

const (
	RoundStatusNone RoundStatus = iota
	RoundStatusPending
	RoundStatusSettled
)

type RoundStatus uint8

func (s RoundStatus) String() string {
	switch s {
	case RoundStatusPending:
		return "PENDING"
	case RoundStatusSettled:
		return "SETTLED"
	default:
		return "NONE"
	}
}

// RoundStatusFromByte maps any unknown value to RoundStatusNone.
func RoundStatusFromByte(b uint8) RoundStatus {
	switch RoundStatus(b) {
	case RoundStatusPending, RoundStatusSettled:
		return RoundStatus(b)
	default:
		return RoundStatusNone
	}
}

// Round is one wager-guess-result cycle of a user. It is stored by value
// inside the owning UserAccount.
type Round struct {
	Request   string
	Guess     uint8
	Status    RoundStatus
	Result    uint8
	Wager     uint64
	Slot      uint64
	Timestamp int64
}

func (r Round) IsPending() bool {
	return r.Status == RoundStatusPending
}

func (r Round) IsSettled() bool {
	return r.Status == RoundStatusSettled
}

func (r Round) IsEmpty() bool {
	return r == Round{}
}
