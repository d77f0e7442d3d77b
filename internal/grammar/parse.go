package grammar

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"ca-modeler/internal/ruleset"
)

const (
	ifKeyword   = "IF current is"
	thenKeyword = "THEN next is"
	probKeyword = "WITH PROB"
	countPrefix = "count("
)

var (
	ErrMissingIf         = errors.New("missing 'IF current is'")
	ErrMissingThen       = errors.New("missing 'THEN next is'")
	ErrMalformedCurrent  = errors.New("malformed current state")
	ErrMalformedNext     = errors.New("malformed next state")
	ErrMalformedState    = errors.New("malformed state entry")
	ErrUnterminatedBlock = errors.New("unterminated block")
)

// ParseError reports a rejected line of a rules document.
type ParseError struct {
	Line int
	Text string
	Err  error
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %v: %q", e.Line, e.Err, e.Text)
	}
	return fmt.Sprintf("%v: %q", e.Err, e.Text)
}

func (e *ParseError) Unwrap() error { return e.Err }

// ParseRule parses a single rule line against reg.
//
// Current and next state names must resolve exactly or the line is rejected.
// Everything else degrades: an unknown neighbour becomes id 0, a missing or
// unknown operator becomes ==, a bad threshold becomes 0 and a bad or missing
// probability becomes 1.0.
func ParseRule(line string, reg *ruleset.Registry) (ruleset.TransitionRule, error) {
	line = strings.TrimSpace(line)
	fail := func(err error) (ruleset.TransitionRule, error) {
		return ruleset.TransitionRule{}, &ParseError{Text: line, Err: err}
	}
	if !strings.HasPrefix(line, ifKeyword) {
		return fail(ErrMissingIf)
	}
	thenPos := strings.Index(line, thenKeyword)
	if thenPos < 0 {
		return fail(ErrMissingThen)
	}
	between := line[len(ifKeyword):thenPos]
	thenPart := line[thenPos+len(thenKeyword):]

	probability := float32(1)
	if pos := strings.Index(thenPart, probKeyword); pos >= 0 {
		probability = parseProbability(thenPart[pos+len(probKeyword):])
		thenPart = thenPart[:pos]
	}

	nextName, _, ok := quoted(thenPart)
	if !ok {
		return fail(ErrMalformedNext)
	}
	currentName, conds, ok := quoted(between)
	if !ok {
		return fail(ErrMalformedCurrent)
	}

	rule := ruleset.TransitionRule{Probability: probability}
	if rule.Current, ok = reg.Lookup(currentName); !ok {
		return fail(fmt.Errorf("%w: current %q", ruleset.ErrUnknownState, currentName))
	}
	if rule.Next, ok = reg.Lookup(nextName); !ok {
		return fail(fmt.Errorf("%w: next %q", ruleset.ErrUnknownState, nextName))
	}

	conds = strings.TrimSpace(conds)
	conds = strings.TrimSpace(strings.TrimPrefix(conds, "AND"))
	if conds != "" && conds != NoConditions {
		if err := parseConditions(conds, reg, &rule); err != nil {
			return fail(err)
		}
	}
	rule.Normalize()
	return rule, nil
}

func parseConditions(s string, reg *ruleset.Registry, rule *ruleset.TransitionRule) error {
	toks, err := words(s)
	if err != nil {
		return err
	}
	for i := 0; i < len(toks); {
		tok := toks[i].Value
		if !strings.HasPrefix(tok, countPrefix) {
			if comb, ok := ruleset.ParseCombiner(tok); ok {
				rule.Combiners = append(rule.Combiners, comb)
			}
			i++
			continue
		}

		name := strings.TrimSpace(strings.TrimRight(strings.TrimPrefix(tok, countPrefix), ")"))
		c := ruleset.Condition{Op: ruleset.Equal}
		c.Neighbor, _ = reg.Lookup(name)
		if i+1 < len(toks) {
			c.Op, _ = ruleset.ParseOperator(toks[i+1].Value)
		}
		if i+2 < len(toks) {
			th, err := strconv.ParseUint(strings.TrimSpace(strings.TrimRight(toks[i+2].Value, ",")), 10, 8)
			if err == nil {
				c.Threshold = uint8(th)
			}
		}
		rule.Conditions = append(rule.Conditions, c)
		i += 3
	}
	return nil
}

func parseProbability(s string) float32 {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return 1
	}
	p, err := strconv.ParseFloat(fields[0], 32)
	if err != nil || math.IsNaN(p) {
		return 1
	}
	return float32(math.Max(0, math.Min(1, p)))
}

// quoted returns the trimmed text between the first pair of single quotes in
// s and whatever follows the closing quote.
func quoted(s string) (name, rest string, ok bool) {
	start := strings.IndexByte(s, '\'')
	if start < 0 {
		return "", "", false
	}
	end := strings.IndexByte(s[start+1:], '\'')
	if end < 0 {
		return "", "", false
	}
	end += start + 1
	return strings.TrimSpace(s[start+1 : end]), s[end+1:], true
}
