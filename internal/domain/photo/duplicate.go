package photo

import (
	"fmt"
	"strings"
)

// DuplicateHandling is the server policy for an upload whose content
// matches a photo already in the gallery
type DuplicateHandling string

const (
	DuplicateCancel    DuplicateHandling = "cancel"
	DuplicateSkip      DuplicateHandling = "skip"
	DuplicateOverwrite DuplicateHandling = "overwrite"
)

// DefaultDuplicateHandling applies when the request carries no onDuplicate value
const DefaultDuplicateHandling = DuplicateCancel

// ParseDuplicateHandling maps an onDuplicate query value onto a policy.
// Empty input yields the default.
func ParseDuplicateHandling(raw string) (DuplicateHandling, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "":
		return DefaultDuplicateHandling, nil
	case string(DuplicateCancel):
		return DuplicateCancel, nil
	case string(DuplicateSkip):
		return DuplicateSkip, nil
	case string(DuplicateOverwrite):
		return DuplicateOverwrite, nil
	default:
		return "", fmt.Errorf("%w: %q (expected cancel, skip or overwrite)", ErrInvalidDuplicateArg, raw)
	}
}

func (d DuplicateHandling) String() string {
	return string(d)
}
