// Package repair recovers JSON documents, typically Jupyter notebooks, whose
// text was damaged by a known set of mechanical mistakes: control characters
// written raw inside string literals, commas missing between elements, and a
// whole notebook serialized into the source of a single cell.
//
// [Recover] runs a fixed sequence of idempotent passes and then a strict
// parse. It has no side effects and returns every result, including failures,
// as an [Outcome]:
//
//	out := repair.Recover(text)
//	if !out.Recovered() {
//	    fmt.Println(out.Failure, "\n", out.Failure.Snippet)
//	}
//
// Failures carry the position of the parse error in the final repaired text
// together with a few lines of context. Use [errors.Is] with
// [ErrUnrecoverableSyntax] or [ErrRepairLimitExceeded] to tell them apart.
package repair
