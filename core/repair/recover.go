package repair

import (
	"encoding/json"
	"errors"
)

// Outcome is the result of Recover. Exactly one of Value (when Recovered
// reports true) or Failure is meaningful.
type Outcome struct {
	// Value is the parsed document in the generic value model of Parse.
	Value any
	// Passes lists the passes that changed something, in the order they ran.
	// It is empty when the input was already valid.
	Passes []string
	// Repairs details every edit, in the order it was made.
	Repairs []Repair
	// Text is the final text Value was parsed from, or the text the failure
	// position refers to.
	Text string
	// Failure is set when the document could not be recovered.
	Failure *Failure
	// Shape is nil for notebook-shaped values and wraps ErrShapeMismatch
	// otherwise. It is a warning; Value is still usable.
	Shape error
}

// Recovered reports whether Value holds a parsed document.
func (o Outcome) Recovered() bool {
	return o.Failure == nil
}

// Err returns the failure as an error, or nil.
func (o Outcome) Err() error {
	if o.Failure == nil {
		return nil
	}
	return o.Failure
}

func (o *Outcome) applied(name string) {
	for _, p := range o.Passes {
		if p == name {
			return
		}
	}
	o.Passes = append(o.Passes, name)
}

func (o *Outcome) record(name string, repairs []Repair) {
	if len(repairs) == 0 {
		return
	}
	o.applied(name)
	o.Repairs = append(o.Repairs, repairs...)
}

// Recover turns text that is almost a JSON notebook into a parsed value. The
// enabled passes run in a fixed order and only touch what strict parsing
// rejects, so valid input comes back unchanged with no passes applied.
// Recover never panics and reports every problem through the Outcome.
func Recover(text string, opts ...Option) Outcome {
	return recoverWith(text, applyOptions(opts...))
}

// Validate parses text strictly, without any repair, and reports the result
// the same way Recover does: a Failure with position and snippet on invalid
// input, and a Shape warning for values that are not notebooks.
func Validate(text string) Outcome {
	return Recover(text, WithPasses())
}

func recoverWith(text string, cfg *config) Outcome {
	out := Outcome{}
	doc := NewDocument(text)

	passes := textPasses(cfg)
	for run := 0; run < cfg.maxPassRuns; run++ {
		changed := false
		for _, p := range passes {
			next, repairs, err := p.Repair(doc)
			doc = next
			if len(repairs) > 0 {
				out.record(p.Name(), repairs)
				changed = true
			}
			if err != nil {
				out.Text = doc.Text()
				out.Failure = asFailure(err, doc)
				return out
			}
		}
		if !changed {
			break
		}
	}

	value, err := Parse(doc.Text())
	if err != nil && cfg.enabled(PassGenericRepair) {
		if fixed, ok := genericRepair(doc.Text()); ok {
			out.record(PassGenericRepair, []Repair{{
				Pass:     PassGenericRepair,
				Position: doc.Position(0),
				Detail:   "rewrote document with generic JSON repair",
			}})
			doc = NewDocument(fixed)
			value, err = Parse(fixed)
		}
	}
	out.Text = doc.Text()
	if err != nil {
		out.Failure = syntaxFailure(err, doc)
		return out
	}
	out.Value = value

	if cfg.enabled(PassUnwrapDoubleEncode) {
		if inner, ok := unwrapDoubleEncoded(value, cfg); ok {
			out.record(PassUnwrapDoubleEncode, []Repair{{
				Pass:     PassUnwrapDoubleEncode,
				Position: doc.Position(0),
				Detail:   "replaced single-cell wrapper with the notebook serialized in its source",
			}})
			for _, r := range inner.Repairs {
				out.record(r.Pass, []Repair{r})
			}
			out.Value = inner.Value
			out.Text = inner.Text
		}
	}

	out.Shape = CheckShape(out.Value)
	return out
}

func asFailure(err error, doc *Document) *Failure {
	var f *Failure
	if errors.As(err, &f) {
		return f
	}
	return syntaxFailure(err, doc)
}

// syntaxFailure maps a parse error onto the final text.
func syntaxFailure(err error, doc *Document) *Failure {
	offset := doc.Len()
	var se *json.SyntaxError
	if errors.As(err, &se) {
		offset = errorOffset(se, doc.Len())
	}
	return newFailure(ErrUnrecoverableSyntax, doc, doc.Position(offset), err.Error())
}
