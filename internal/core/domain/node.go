package domain

import (
	"strings"
	"time"

	"go.trai.ch/zerr"
)

// NodeMetadata is the identity record stored in a node marker.
type NodeMetadata struct {
	Name      string    `json:"name"`
	Class     string    `json:"class,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// OnExists selects what creating a node does when the target path is already in use.
type OnExists uint8

const (
	// OnExistsFail refuses to touch an existing node.
	OnExistsFail OnExists = iota
	// OnExistsOverride destroys the existing node and creates a fresh one.
	OnExistsOverride
	// OnExistsReuse opens the existing node.
	OnExistsReuse
)

// String returns the flag spelling of the policy.
func (o OnExists) String() string {
	switch o {
	case OnExistsFail:
		return "fail"
	case OnExistsOverride:
		return "override"
	case OnExistsReuse:
		return "reuse"
	default:
		return "unknown"
	}
}

// ParseOnExists parses a policy name. The long-form spellings "raise error" and "skip"
// are accepted as aliases of "fail" and "reuse".
func ParseOnExists(s string) (OnExists, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "fail", "raise error":
		return OnExistsFail, nil
	case "override":
		return OnExistsOverride, nil
	case "reuse", "skip":
		return OnExistsReuse, nil
	default:
		return OnExistsFail, zerr.With(zerr.Wrap(ErrInvalidOnExists, "cannot parse on-exists policy"), "value", s)
	}
}

// NodeEntry is one row of a node's child listing.
type NodeEntry struct {
	Name  string `json:"name"`
	Path  string `json:"path"`
	Class string `json:"class,omitempty"`
}
