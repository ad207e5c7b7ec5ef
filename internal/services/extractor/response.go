package extractor

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"strconv"
	"strings"

	"github.com/recipebox/larder/internal/validation"
)

var (
	errNoRecipe      = errors.New("model reported no recipe")
	errMalformedJSON = errors.New("model output is not a JSON object")
)

// jsonSpan returns the first balanced top-level {...} in s, ignoring braces
// inside strings. When the braces never balance it falls back to everything
// from the first "{" to the last "}". Text with no brace is returned trimmed
// so a bare null still decodes.
func jsonSpan(s string) string {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return strings.TrimSpace(s)
	}

	depth := 0
	inString, escaped := false, false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1]
			}
		}
	}

	if end := strings.LastIndexByte(s, '}'); end > start {
		return s[start : end+1]
	}
	return s[start:]
}

// looseString accepts a JSON string or number.
type looseString string

func (s *looseString) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*s = ""
		return nil
	}
	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		*s = looseString(str)
		return nil
	}
	var num float64
	if err := json.Unmarshal(data, &num); err != nil {
		return err
	}
	*s = looseString(strconv.FormatFloat(num, 'f', -1, 64))
	return nil
}

// looseInt accepts a number, or a string whose first digits are the value
// ("4 servings"). Anything else decodes as absent rather than failing.
type looseInt struct {
	v *int
}

func (n *looseInt) UnmarshalJSON(data []byte) error {
	n.v = nil
	var num float64
	if err := json.Unmarshal(data, &num); err == nil {
		if r := int(math.Round(num)); r > 0 {
			n.v = &r
		}
		return nil
	}
	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		if m := firstNumber.FindString(str); m != "" {
			if r, err := strconv.Atoi(m); err == nil && r > 0 {
				n.v = &r
			}
		}
	}
	return nil
}

func (n looseInt) orDefault(def int) int {
	if n.v == nil {
		return def
	}
	return *n.v
}

// lineList accepts a list of strings or numbers, or one newline-separated
// string. Entries are decoded one by one so a single odd element does not
// lose the rest.
type lineList []string

func (l *lineList) UnmarshalJSON(data []byte) error {
	*l = nil
	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		*l = SplitLines(str)
		return nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return nil
	}
	for _, raw := range items {
		if s := entryLine(raw); s != "" {
			*l = append(*l, s)
		}
	}
	return nil
}

// objectLine is the shape some models use for one ingredient instead of a
// plain string.
type objectLine struct {
	Amount     looseString `json:"amount"`
	Quantity   looseString `json:"quantity"`
	Unit       looseString `json:"unit"`
	Name       looseString `json:"name"`
	Ingredient looseString `json:"ingredient"`
	Item       looseString `json:"item"`
}

// entryLine decodes one list element as a line of text. Objects are rebuilt
// as "amount unit name". Anything else yields "".
func entryLine(raw json.RawMessage) string {
	var s looseString
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(string(s))
	}
	var obj objectLine
	if err := json.Unmarshal(raw, &obj); err != nil {
		return ""
	}
	name := firstNonEmpty(obj.Name, obj.Ingredient, obj.Item)
	if name == "" {
		return ""
	}
	parts := make([]string, 0, 3)
	if amount := firstNonEmpty(obj.Amount, obj.Quantity); amount != "" {
		parts = append(parts, amount)
	}
	if unit := strings.TrimSpace(string(obj.Unit)); unit != "" {
		parts = append(parts, unit)
	}
	return strings.Join(append(parts, name), " ")
}

func firstNonEmpty(vals ...looseString) string {
	for _, v := range vals {
		if s := strings.TrimSpace(string(v)); s != "" {
			return s
		}
	}
	return ""
}

// ingredientGroups holds the legacy "ingredients" field: a flat list, a list
// of per-step lists, or a mix. Flat entries are loose.
type ingredientGroups struct {
	loose  []string
	groups [][]string
}

func (g *ingredientGroups) UnmarshalJSON(data []byte) error {
	*g = ingredientGroups{}
	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		g.loose = SplitLines(str)
		return nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return nil
	}
	for _, raw := range items {
		raw = bytes.TrimSpace(raw)
		if len(raw) > 0 && raw[0] == '[' {
			var group lineList
			_ = json.Unmarshal(raw, &group)
			g.groups = append(g.groups, group)
			continue
		}
		if s := entryLine(raw); s != "" {
			g.loose = append(g.loose, s)
		}
	}
	return nil
}

type modelStep struct {
	Action      looseString `json:"action"`
	Instruction looseString `json:"instruction"`
	TimeMinutes looseInt    `json:"time_minutes"`
	Ingredients lineList    `json:"ingredients"`
}

// modelResponse is the JSON a model is asked for. Steps is decoded entry by
// entry so one bad step does not sink the rest.
type modelResponse struct {
	Title            looseString       `json:"title"`
	TotalTimeMinutes looseInt          `json:"total_time_minutes"`
	BaseServings     looseInt          `json:"base_servings"`
	Steps            []json.RawMessage `json:"steps"`
	Ingredients      ingredientGroups  `json:"ingredients"`
	Instructions     lineList          `json:"instructions"`
}

// parseModelOutput reads the model's raw text into a Draft. It returns
// errNoRecipe for a literal null and errMalformedJSON for anything that does
// not decode to an object.
func parseModelOutput(output string) (Draft, error) {
	span := jsonSpan(output)
	if span == "null" {
		return Draft{}, errNoRecipe
	}

	var resp *modelResponse
	if err := json.Unmarshal([]byte(span), &resp); err != nil {
		return Draft{}, errors.Join(errMalformedJSON, err)
	}
	if resp == nil {
		return Draft{}, errNoRecipe
	}

	title := strings.TrimSpace(string(resp.Title))
	if validation.DetectPlaceholders(title) {
		title = ""
	}
	draft := Draft{
		Title:            title,
		TotalTimeMinutes: resp.TotalTimeMinutes.v,
		Servings:         resp.BaseServings.orDefault(1),
	}

	if len(resp.Steps) > 0 {
		draft.Steps = structuredSteps(resp.Steps)
		return draft, nil
	}

	draft.Steps, draft.Ingredients = legacySteps(resp.Instructions, resp.Ingredients)
	return draft, nil
}

// structuredSteps trusts the model's partition of ingredients. Entries with
// no action are skipped.
func structuredSteps(raw []json.RawMessage) []DraftStep {
	steps := make([]DraftStep, 0, len(raw))
	for _, entry := range raw {
		var action string
		var ms modelStep
		if err := json.Unmarshal(entry, &action); err == nil {
			ms.Action = looseString(action)
		} else if err := json.Unmarshal(entry, &ms); err != nil {
			continue
		}
		if ms.Action == "" {
			ms.Action = ms.Instruction
		}
		text := StripStepPrefix(string(ms.Action))
		if text == "" {
			continue
		}
		steps = append(steps, DraftStep{
			Action:      text,
			TimeMinutes: ms.TimeMinutes.v,
			Ingredients: ms.Ingredients,
		})
	}
	return steps
}

// legacySteps handles the instructions-blob shape. Grouped ingredients go
// to the step at the same index; flat ones are returned loose for keyword
// assignment. With no instructions each non-empty group becomes its own step.
func legacySteps(instructions []string, ings ingredientGroups) ([]DraftStep, []string) {
	loose := append([]string(nil), ings.loose...)

	var steps []DraftStep
	for _, line := range instructions {
		action := StripStepPrefix(line)
		if action == "" {
			continue
		}
		steps = append(steps, DraftStep{Action: action, TimeMinutes: DurationMinutes(action)})
	}

	if len(steps) == 0 {
		for _, group := range ings.groups {
			if len(group) == 0 {
				continue
			}
			steps = append(steps, DraftStep{
				Action:      "Step " + strconv.Itoa(len(steps)+1),
				Ingredients: group,
			})
		}
		return steps, loose
	}

	for i, group := range ings.groups {
		if i < len(steps) {
			steps[i].Ingredients = append(steps[i].Ingredients, group...)
		} else {
			loose = append(loose, group...)
		}
	}
	return steps, loose
}
