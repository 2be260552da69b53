package models

import (
	"encoding/json"
	"fmt"
)

// DietRule is one of the five fixed baseline diet questions.
type DietRule int

const (
	NonKetoFruit DietRule = iota
	HighCarbDairy
	ProcessedFood
	StarchyVegetables
	RefinedCarbs

	dietRuleCount
)

// DietRules lists every rule in display order.
var DietRules = [dietRuleCount]DietRule{
	NonKetoFruit,
	HighCarbDairy,
	ProcessedFood,
	StarchyVegetables,
	RefinedCarbs,
}

var dietRuleIDs = [dietRuleCount]string{
	NonKetoFruit:      "nonKetoFruit",
	HighCarbDairy:     "highCarbDairy",
	ProcessedFood:     "processedFood",
	StarchyVegetables: "starchyVegetables",
	RefinedCarbs:      "refinedCarbs",
}

var dietRuleLabels = [dietRuleCount]string{
	NonKetoFruit:      "Ate non-keto fruit",
	HighCarbDairy:     "Ate high-carb dairy",
	ProcessedFood:     "Ate processed food",
	StarchyVegetables: "Ate starchy vegetables",
	RefinedCarbs:      "Ate refined carbs",
}

// ID is the identifier used in persisted state.
func (r DietRule) ID() string {
	if !r.Valid() {
		return fmt.Sprintf("dietRule(%d)", int(r))
	}
	return dietRuleIDs[r]
}

// Label is the human-readable question.
func (r DietRule) Label() string {
	if !r.Valid() {
		return r.ID()
	}
	return dietRuleLabels[r]
}

func (r DietRule) String() string { return r.ID() }

func (r DietRule) Valid() bool { return r >= 0 && r < dietRuleCount }

// ParseDietRule accepts either the persisted ID or a dashed alias such as "non-keto-fruit".
func ParseDietRule(s string) (DietRule, error) {
	for _, r := range DietRules {
		if s == r.ID() || s == dietRuleAliases[r] {
			return r, nil
		}
	}
	return 0, fmt.Errorf("unknown diet rule %q", s)
}

var dietRuleAliases = [dietRuleCount]string{
	NonKetoFruit:      "non-keto-fruit",
	HighCarbDairy:     "high-carb-dairy",
	ProcessedFood:     "processed-food",
	StarchyVegetables: "starchy-vegetables",
	RefinedCarbs:      "refined-carbs",
}

// DietAnswers holds one answer per diet rule. It is an array so copies never share state.
type DietAnswers [dietRuleCount]Answer

// Get returns the answer for rule, Unanswered for an unknown rule.
func (d DietAnswers) Get(r DietRule) Answer {
	if !r.Valid() {
		return Unanswered
	}
	return d[r]
}

// With returns a copy with rule set to a.
func (d DietAnswers) With(r DietRule, a Answer) DietAnswers {
	if r.Valid() {
		d[r] = a
	}
	return d
}

// AllAnswered reports whether every rule has a yes or no.
func (d DietAnswers) AllAnswered() bool {
	for _, a := range d {
		if !a.Answered() {
			return false
		}
	}
	return true
}

// AllNo reports whether every rule was answered no.
func (d DietAnswers) AllNo() bool {
	for _, a := range d {
		if a != No {
			return false
		}
	}
	return true
}

// AnyAnswered reports whether at least one rule has an answer.
func (d DietAnswers) AnyAnswered() bool {
	for _, a := range d {
		if a.Answered() {
			return true
		}
	}
	return false
}

func (d DietAnswers) MarshalJSON() ([]byte, error) {
	m := make(map[string]Answer, len(d))
	for _, r := range DietRules {
		m[r.ID()] = d[r]
	}
	return json.Marshal(m)
}

// UnmarshalJSON ignores unknown rule IDs so older or newer state still loads.
func (d *DietAnswers) UnmarshalJSON(data []byte) error {
	var m map[string]Answer
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	var out DietAnswers
	for key, a := range m {
		r, err := ParseDietRule(key)
		if err != nil {
			continue
		}
		out[r] = a
	}
	*d = out
	return nil
}
