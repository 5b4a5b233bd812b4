package models

import (
	"errors"
	"fmt"
	"strings"
)

// ============================================================
// Unit status
// ============================================================

var ErrInvalidStatus = errors.New("invalid status")

// Status is the sale/occupancy state shared by apartments and parking spaces.
type Status string

const (
	StatusAvailable     Status = "available"
	StatusInNegotiation Status = "in_negotiation"
	StatusSold          Status = "sold"

	// StatusReserved is a legacy value still found in stored data.
	StatusReserved Status = "reserved"
)

// Statuses lists the values an operator can pick, in display order.
var Statuses = []Status{StatusAvailable, StatusInNegotiation, StatusSold}

// Normalize maps legacy values onto their current equivalent.
func (s Status) Normalize() Status {
	if s == StatusReserved {
		return StatusInNegotiation
	}
	return s
}

// Label is the human-readable name of the (normalized) status.
func (s Status) Label() string {
	switch s.Normalize() {
	case StatusAvailable:
		return "Available"
	case StatusInNegotiation:
		return "In negotiation"
	case StatusSold:
		return "Sold"
	default:
		return string(s)
	}
}

// IsAvailable reports whether the unit counts towards availability.
func (s Status) IsAvailable() bool { return s == StatusAvailable }

// ParseStatus accepts a status as typed by an operator ("In negotiation",
// "in-negotiation", "reserved", ...) and returns its normalized value.
func ParseStatus(raw string) (Status, error) {
	v := strings.ToLower(strings.TrimSpace(raw))
	v = strings.NewReplacer(" ", "_", "-", "_").Replace(v)
	s := Status(v).Normalize()
	for _, known := range Statuses {
		if s == known {
			return s, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidStatus, raw)
}
