package models

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Answer is a yes/no question that may not have been answered yet.
// The zero value is Unanswered and is never treated as No.
type Answer int8

const (
	Unanswered Answer = iota
	Yes
	No
)

// AnswerOf converts a boolean answer.
func AnswerOf(b bool) Answer {
	if b {
		return Yes
	}
	return No
}

// ParseAnswer accepts yes/no/clear style input as typed on the command line.
func ParseAnswer(s string) (Answer, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "y", "yes", "true", "1":
		return Yes, nil
	case "n", "no", "false", "0":
		return No, nil
	case "", "clear", "none", "unanswered", "-":
		return Unanswered, nil
	default:
		return Unanswered, fmt.Errorf("invalid answer %q (expected yes, no or clear)", s)
	}
}

// Answered is true for Yes and No.
func (a Answer) Answered() bool { return a == Yes || a == No }

// IsYes reports an explicit Yes.
func (a Answer) IsYes() bool { return a == Yes }

// IsNo reports an explicit No; Unanswered is not No.
func (a Answer) IsNo() bool { return a == No }

func (a Answer) String() string {
	switch a {
	case Yes:
		return "yes"
	case No:
		return "no"
	default:
		return "unanswered"
	}
}

// MarshalJSON encodes Yes/No as booleans and Unanswered as null.
func (a Answer) MarshalJSON() ([]byte, error) {
	switch a {
	case Yes:
		return []byte("true"), nil
	case No:
		return []byte("false"), nil
	default:
		return []byte("null"), nil
	}
}

func (a *Answer) UnmarshalJSON(data []byte) error {
	var b *bool
	if err := json.Unmarshal(data, &b); err != nil {
		return fmt.Errorf("answer must be a boolean or null: %w", err)
	}
	if b == nil {
		*a = Unanswered
		return nil
	}
	*a = AnswerOf(*b)
	return nil
}
