// Package valve computes valve-opening percentages for a linear chain of
// machines fed by a single source.
//
// round.go provides Round and ClampDecimals. Every reported percentage goes
// through Round, which scales by 10^d and rounds half away from zero.
//
// pipeline.go holds the three formulas:
//
//	LinearEqual     C_i = 100 / (m - i + 1)
//	LinearUnequal   C_i = r_i / (r_i + ... + r_m) * 100
//	SplitPercent    C1  = right / total * 100   (right side is the bypass port)
//
// rates.go parses and validates comma-separated rate lists.
//
// valve.go provides Compute, the single entry point. It validates a Config in
// a fixed order (machine count, split point, rates), clamps decimals, then
// dispatches on the two toggles (asymmetric split, unequal rates) and returns
// a Report with continuously numbered valves C1..Ck.
//
// bypass.go is the single-valve form: bypass / (bypass + main) * 100.
//
// Nothing in this package holds state between calls.
package valve
