package repair

import "github.com/kaptinlin/jsonrepair"

// genericRepair hands text to jsonrepair and accepts the result only if it
// now parses strictly.
func genericRepair(text string) (fixed string, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			fixed, ok = "", false
		}
	}()

	repaired, err := jsonrepair.JSONRepair(text)
	if err != nil {
		return "", false
	}
	if err := checkSyntax(repaired); err != nil {
		return "", false
	}
	return repaired, true
}
