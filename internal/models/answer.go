package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
)

// Answer is a candidate's answer to one question. Text, numeric and
// file-upload answers are single strings; multi-choice answers are a list.
type Answer struct {
	Value   string
	Choices []string
	Multi   bool
}

func TextAnswer(value string) Answer {
	return Answer{Value: value}
}

func ChoicesAnswer(choices ...string) Answer {
	return Answer{Choices: append([]string{}, choices...), Multi: true}
}

// IsEmpty reports whether the answer carries no usable content
func (a Answer) IsEmpty() bool {
	if a.Multi {
		for _, c := range a.Choices {
			if strings.TrimSpace(c) != "" {
				return false
			}
		}
		return true
	}
	return strings.TrimSpace(a.Value) == ""
}

// Contains reports whether a multi-valued answer includes value, or a
// single-valued answer equals it.
func (a Answer) Contains(value string) bool {
	if a.Multi {
		return slices.Contains(a.Choices, value)
	}
	return a.Value == value
}

func (a Answer) String() string {
	if a.Multi {
		return strings.Join(a.Choices, ", ")
	}
	return a.Value
}

func (a Answer) Clone() Answer {
	if a.Choices != nil {
		a.Choices = append([]string{}, a.Choices...)
	}
	return a
}

func (a Answer) MarshalJSON() ([]byte, error) {
	if a.Multi {
		choices := a.Choices
		if choices == nil {
			choices = []string{}
		}
		return json.Marshal(choices)
	}
	return json.Marshal(a.Value)
}

func (a *Answer) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		var choices []string
		if err := json.Unmarshal(data, &choices); err != nil {
			return fmt.Errorf("invalid choice answer: %w", err)
		}
		*a = Answer{Choices: choices, Multi: true}
		return nil
	}

	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("invalid answer: %w", err)
	}
	switch v := raw.(type) {
	case string:
		*a = Answer{Value: v}
	case float64:
		// numeric answers are kept in their textual form
		*a = Answer{Value: string(data)}
	case bool:
		*a = Answer{Value: fmt.Sprintf("%t", v)}
	case nil:
		*a = Answer{}
	default:
		return fmt.Errorf("unsupported answer shape: %s", string(data))
	}
	return nil
}

// AnswerMap maps question id to answer. A missing key means "not answered yet".
type AnswerMap map[string]Answer

func (m AnswerMap) Clone() AnswerMap {
	out := make(AnswerMap, len(m))
	for id, answer := range m {
		out[id] = answer.Clone()
	}
	return out
}

// Lookup returns the answer for id, or nil when the question was never answered
func (m AnswerMap) Lookup(id string) *Answer {
	answer, ok := m[id]
	if !ok {
		return nil
	}
	return &answer
}
