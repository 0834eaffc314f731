package localoracle

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ark-network/counter/internal/core/domain"
	"github.com/ark-network/counter/internal/core/ports"
)

// parseParams reads back the blob produced by ports.RequestDescriptor.
func parseParams(params []byte) (*ports.RequestDescriptor, error) {
	descriptor := &ports.RequestDescriptor{}
	var hasPID, hasMaxGuess, hasUser bool

	for _, kv := range strings.Split(string(params), ",") {
		key, value, ok := strings.Cut(kv, "=")
		if !ok {
			return nil, fmt.Errorf("malformed param %q", kv)
		}
		switch key {
		case "PID":
			if _, err := domain.DecodeKey(value); err != nil {
				return nil, fmt.Errorf("invalid PID: %s", err)
			}
			descriptor.ProgramID = value
			hasPID = true
		case "MAX_GUESS":
			maxGuess, err := strconv.ParseUint(value, 10, 8)
			if err != nil {
				return nil, fmt.Errorf("invalid MAX_GUESS: %s", err)
			}
			descriptor.MaxGuess = uint8(maxGuess)
			hasMaxGuess = true
		case "USER":
			if _, err := domain.DecodeKey(value); err != nil {
				return nil, fmt.Errorf("invalid USER: %s", err)
			}
			descriptor.User = value
			hasUser = true
		default:
			return nil, fmt.Errorf("unknown param %s", key)
		}
	}

	if !hasPID || !hasMaxGuess || !hasUser {
		return nil, fmt.Errorf("missing params, expected PID, MAX_GUESS and USER")
	}
	return descriptor, nil
}
