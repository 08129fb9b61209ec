// Package flagsplit separates transport-level flags from payload-tool
// flags in a single flat argument vector.
//
// The diff front-end hands its raw argv to two different consumers: the
// SSH transport and the external diff tool. The two use overlapping
// single-letter flag spaces, so the split is driven by an explicit table
// of known transport flags with their arity rather than ad hoc string
// comparisons.
package flagsplit

// transportFlags maps each known transport flag to the number of value
// tokens it consumes. Flags with numericValue set only claim their value
// when the lookahead token is all digits; this keeps a diff flag that
// happens to share the letter (e.g. diff's own -p "show function") from
// being dragged into the transport list with a non-numeric companion.
var transportFlags = map[string]struct {
	arity        int
	numericValue bool
}{
	"-4": {arity: 0},
	"-6": {arity: 0},
	"-p": {arity: 1, numericValue: true},
	"-F": {arity: 1},
	"-l": {arity: 1},
	"-o": {arity: 1},
}

// Partition classifies each token of args as a transport option or a
// payload option. Every input token lands in exactly one of the two
// returned slices, and each slice preserves the original input order.
func Partition(args []string) (transport, payload []string) {
	for i := 0; i < len(args); i++ {
		tok := args[i]

		rule, known := transportFlags[tok]
		if !known {
			payload = append(payload, tok)
			continue
		}

		if rule.arity == 0 {
			transport = append(transport, tok)
			continue
		}

		// Flag wants a value: claim the lookahead token with it.
		if i+1 >= len(args) {
			// Dangling transport flag at the end of the vector; route it
			// to payload so the transport layer never sees a flag with a
			// missing value.
			payload = append(payload, tok)
			continue
		}

		next := args[i+1]
		if rule.numericValue && !allDigits(next) {
			// Lookahead says this is not our flag after all.
			payload = append(payload, tok)
			continue
		}

		transport = append(transport, tok, next)
		i++
	}

	return transport, payload
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
