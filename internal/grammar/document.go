package grammar

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"ca-modeler/internal/core"
	"ca-modeler/internal/ruleset"
)

// DefaultDimension replaces an unparseable WIDTH or HEIGHT value.
const DefaultDimension = 50

// Document is the result of importing a rules file.
type Document struct {
	Width, Height int
	// HasSize is set when the file carried a WIDTH/HEIGHT line.
	HasSize  bool
	Registry *ruleset.Registry
	Rules    *ruleset.Ruleset
	// Dropped lists every line that was skipped, in file order.
	Dropped []*ParseError
}

// Export writes the dimensions, states and rules in the text format.
func Export(w io.Writer, width, height int, reg *ruleset.Registry, rules *ruleset.Ruleset) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "WIDTH %d HEIGHT %d\n", width, height)
	bw.WriteString("STATE {\n")
	for _, s := range reg.States() {
		fmt.Fprintf(bw, "    %s\n", FormatState(s))
	}
	bw.WriteString("}\n\n")
	bw.WriteString("RULES {\n")
	for _, r := range rules.Rules() {
		fmt.Fprintf(bw, "    %s\n", FormatRule(r, reg))
	}
	bw.WriteString("}\n")
	return bw.Flush()
}

type section int

const (
	outside section = iota
	inStates
	inRules
)

// Import reads a rules document. Rule lines are resolved against the states
// declared before them; the n-th state line gets id n-1 even when an earlier
// state line was dropped. Lines that
// fail to parse are recorded in Dropped and skipped. Only read errors are
// returned.
func Import(r io.Reader) (*Document, error) {
	doc := &Document{Registry: ruleset.NewRegistry(), Rules: &ruleset.Ruleset{}}
	sc := bufio.NewScanner(r)
	sec := outside
	lineNo := 0
	stateNo := 0
	drop := func(text string, err error) {
		var perr *ParseError
		if !errors.As(err, &perr) {
			perr = &ParseError{Text: text, Err: err}
		}
		perr.Line = lineNo
		doc.Dropped = append(doc.Dropped, perr)
	}

	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		switch {
		case line == "":
		case strings.HasPrefix(line, "WIDTH"):
			doc.Width, doc.Height = parseSize(line)
			doc.HasSize = true
		case strings.HasPrefix(line, "STATE") && strings.Contains(line, "{"):
			sec = inStates
		case strings.HasPrefix(line, "RULES") && strings.Contains(line, "{"):
			sec = inRules
		case line == "}":
			sec = outside
		case sec == inStates:
			id := stateNo
			stateNo++
			var s ruleset.State
			err := ruleset.ErrRegistryFull
			if id <= 255 {
				s, err = parseState(line, uint8(id))
			}
			if err == nil {
				err = doc.Registry.Append(s)
			}
			if err != nil {
				drop(line, err)
			}
		case sec == inRules:
			rule, err := ParseRule(line, doc.Registry)
			if err == nil {
				err = doc.Rules.Add(rule)
			}
			if err != nil {
				drop(line, err)
			}
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read rules: %w", err)
	}
	if sec != outside {
		drop("", ErrUnterminatedBlock)
	}
	return doc, nil
}

// parseSize reads "WIDTH w HEIGHT h". Values that do not parse as positive
// integers fall back to DefaultDimension; larger ones are capped at
// core.MaxDimension.
func parseSize(line string) (int, int) {
	parts := strings.Fields(line)
	if len(parts) < 4 {
		return DefaultDimension, DefaultDimension
	}
	dim := func(s string) int {
		v, err := strconv.Atoi(s)
		if err != nil || v <= 0 {
			return DefaultDimension
		}
		return min(v, core.MaxDimension)
	}
	return dim(parts[1]), dim(parts[3])
}

// parseState reads "name(r, g, b[, weight])". Components that are not valid
// bytes read as 0; any component count other than 3 or 4 yields black with
// weight 1.
func parseState(line string, id uint8) (ruleset.State, error) {
	open := strings.IndexByte(line, '(')
	end := strings.IndexByte(line, ')')
	if open < 0 || end < open {
		return ruleset.State{}, ErrMalformedState
	}
	name := strings.TrimRight(strings.TrimSpace(line[:open]), ",")
	var nums []uint8
	for _, f := range strings.Split(line[open+1:end], ",") {
		v, err := strconv.ParseUint(strings.TrimSpace(f), 10, 8)
		if err != nil {
			v = 0
		}
		nums = append(nums, uint8(v))
	}
	s := ruleset.State{ID: id, Name: name, Weight: 1, Color: ruleset.RGB(0, 0, 0)}
	switch len(nums) {
	case 4:
		s.Weight = nums[3]
		fallthrough
	case 3:
		s.Color = ruleset.RGB(nums[0], nums[1], nums[2])
	}
	return s, nil
}
