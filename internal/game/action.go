package game

import (
	"encoding/json"
	"fmt"
	"strings"
)

type Action uint8

const (
	ActionNone Action = iota
	ActionHit
	ActionStand
	ActionDouble
	ActionSplit
	ActionSurrender
	ActionInsurance
)

var actionNames = map[Action]string{
	ActionHit:       "hit",
	ActionStand:     "stand",
	ActionDouble:    "double",
	ActionSplit:     "split",
	ActionSurrender: "surrender",
	ActionInsurance: "insurance",
}

func (a Action) String() string {
	if name, ok := actionNames[a]; ok {
		return name
	}
	return "none"
}

func ParseAction(s string) (Action, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for a, name := range actionNames {
		if name == s {
			return a, nil
		}
	}
	return ActionNone, fmt.Errorf("unknown action %q", s)
}

func (a Action) MarshalJSON() ([]byte, error) {
	if a == ActionNone {
		return []byte("null"), nil
	}
	return json.Marshal(a.String())
}

func (a *Action) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*a = ActionNone
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseAction(s)
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}
