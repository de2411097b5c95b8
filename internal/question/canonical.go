package question

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Canonical is the parsed form of Question.Answer. Choice and fill
// questions use Tokens; short-answer questions use Keywords and MinHit.
//
// Stored shapes: a JSON string, a JSON array of scalars, or for SHORT an
// object {"keywords": [...], "min_hit": n}. A SHORT answer stored as a bare
// array is a keyword list with no threshold and only ever earns partial
// credit.
type Canonical struct {
	Tokens   []string `json:"tokens,omitempty"`
	Keywords []string `json:"keywords,omitempty"`
	MinHit   int      `json:"min_hit,omitempty"`
	// Thresholded is false for legacy keyword lists.
	Thresholded bool `json:"-"`
}

type keywordRule struct {
	Keywords []json.RawMessage `json:"keywords"`
	MinHit   *int              `json:"min_hit"`
}

func ParseCanonical(t Type, raw []byte) (Canonical, error) {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return Canonical{}, nil
	}

	if strings.HasPrefix(trimmed, "{") {
		var rule keywordRule
		if err := json.Unmarshal([]byte(trimmed), &rule); err != nil {
			return Canonical{}, fmt.Errorf("parse keyword rule: %w", err)
		}
		keywords, err := scalars(rule.Keywords)
		if err != nil {
			return Canonical{}, err
		}
		minHit := len(keywords)
		if minHit < 1 {
			minHit = 1
		}
		if rule.MinHit != nil {
			minHit = *rule.MinHit
		}
		return Canonical{Keywords: keywords, MinHit: minHit, Thresholded: true}, nil
	}

	var items []json.RawMessage
	if strings.HasPrefix(trimmed, "[") {
		if err := json.Unmarshal([]byte(trimmed), &items); err != nil {
			return Canonical{}, fmt.Errorf("parse answer list: %w", err)
		}
	} else {
		items = []json.RawMessage{json.RawMessage(trimmed)}
	}

	tokens, err := scalars(items)
	if err != nil {
		return Canonical{}, err
	}
	if t == TypeShort {
		return Canonical{Keywords: tokens}, nil
	}
	return Canonical{Tokens: tokens}, nil
}

// scalars renders JSON strings, numbers and booleans as strings.
func scalars(items []json.RawMessage) ([]string, error) {
	out := make([]string, 0, len(items))
	for _, item := range items {
		var v interface{}
		if err := json.Unmarshal(item, &v); err != nil {
			return nil, err
		}
		switch x := v.(type) {
		case string:
			out = append(out, x)
		case float64:
			out = append(out, strconv.FormatFloat(x, 'f', -1, 64))
		case bool:
			out = append(out, strings.ToUpper(strconv.FormatBool(x)))
		case nil:
		default:
			return nil, fmt.Errorf("unsupported answer element %T", v)
		}
	}
	return out, nil
}
