package domain

type EventType int

const (
	EventTypeUndefined EventType = iota

	EventTypeAccountInitialized
	EventTypeRoundInitiated
	EventTypeRoundSettled
)

func (t EventType) String() string {
	switch t {
	case EventTypeAccountInitialized:
		return "ACCOUNT_INITIALIZED"
	case EventTypeRoundInitiated:
		return "ROUND_INITIATED"
	case EventTypeRoundSettled:
		return "ROUND_SETTLED"
	default:
		return "UNDEFINED"
	}
}

const UserAccountTopic = "user_account"

type Event interface {
	GetTopic() string
	GetType() EventType
}

func (e AccountInitialized) GetTopic() string { return UserAccountTopic }
func (e RoundInitiated) GetTopic() string     { return UserAccountTopic }
func (e RoundSettled) GetTopic() string       { return UserAccountTopic }

func (e AccountInitialized) GetType() EventType { return EventTypeAccountInitialized }
func (e RoundInitiated) GetType() EventType     { return EventTypeRoundInitiated }
func (e RoundSettled) GetType() EventType       { return EventTypeRoundSettled }

type AccountInitialized struct {
	Key         string
	Bump        uint8
	Authority   string
	WagerWallet string
}

type RoundInitiated struct {
	Key       string
	Request   string
	Guess     uint8
	Wager     uint64
	Slot      uint64
	Timestamp int64
	// Status of the round that got replaced by this one.
	Replaced RoundStatus
}

type RoundSettled struct {
	Key       string
	Request   string
	Result    uint8
	Timestamp int64
}
