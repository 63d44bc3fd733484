package breakdown

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/todump/todump/internal/llm"
)

// MaxSteps caps how many steps a breakdown may contribute.
const MaxSteps = 5

// Outcome tags how a reply was turned into steps.
type Outcome int

const (
	ParseFailed Outcome = iota
	ParsedStrict
	ParsedExtracted
)

func (o Outcome) String() string {
	switch o {
	case ParsedStrict:
		return "strict"
	case ParsedExtracted:
		return "extracted"
	default:
		return "failed"
	}
}

// ParseResult is the outcome of ParseSteps. Steps is set unless Outcome is
// ParseFailed, in which case Reason says why.
type ParseResult struct {
	Outcome Outcome
	Steps   []string
	Reason  string
}

// OK reports whether the reply yielded steps.
func (r ParseResult) OK() bool {
	return r.Outcome != ParseFailed
}

const stepsSchemaJSON = `{
	"$schema": "http://json-schema.org/draft-07/schema#",
	"type": "array",
	"minItems": 1,
	"items": {"type": "string"}
}`

var stepsSchema = compileStepsSchema()

func compileStepsSchema() *jsonschema.Schema {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("breakdown-steps.json", strings.NewReader(stepsSchemaJSON)); err != nil {
		panic(err)
	}
	return compiler.MustCompile("breakdown-steps.json")
}

// ParseSteps repairs a free-text model reply into an ordered step list:
// fences are stripped and the cleaned text parsed strictly; failing that, the
// first bracketed array in the raw reply is parsed instead.
func ParseSteps(raw string) ParseResult {
	steps, strictErr := decodeSteps(llm.StripCodeFences(raw))
	if strictErr == nil {
		return ParseResult{Outcome: ParsedStrict, Steps: steps}
	}

	candidate := llm.FirstBracketedArray(raw)
	if candidate == "" {
		return ParseResult{Outcome: ParseFailed, Reason: fmt.Sprintf("no JSON array in reply (%v)", strictErr)}
	}
	steps, err := decodeSteps(candidate)
	if err != nil {
		return ParseResult{Outcome: ParseFailed, Reason: fmt.Sprintf("extracted array unusable: %v", err)}
	}
	return ParseResult{Outcome: ParsedExtracted, Steps: steps}
}

func decodeSteps(s string) ([]string, error) {
	var doc any
	if err := json.Unmarshal([]byte(s), &doc); err != nil {
		return nil, err
	}
	if err := stepsSchema.Validate(doc); err != nil {
		if ve, ok := err.(*jsonschema.ValidationError); ok {
			return nil, fmt.Errorf("schema: %s", leafMessage(ve))
		}
		return nil, err
	}

	var steps []string
	for _, item := range doc.([]any) {
		step := strings.TrimSpace(item.(string))
		if step == "" {
			continue
		}
		steps = append(steps, step)
		if len(steps) == MaxSteps {
			break
		}
	}
	if len(steps) == 0 {
		return nil, fmt.Errorf("all steps are blank")
	}
	return steps, nil
}

// leafMessage returns the first innermost message of a schema error.
func leafMessage(ve *jsonschema.ValidationError) string {
	for len(ve.Causes) > 0 {
		ve = ve.Causes[0]
	}
	return ve.Message
}
