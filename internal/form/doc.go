// Package form turns raw calculator form fields into a valve.Config.
//
// Fields are read in the same order valve.Compute validates them: machine
// count, split point (only when the asymmetric box is ticked), rates (only
// when the unequal box is ticked). The first bad field is the only error
// reported. Decimals never fail: blank uses the configured default, anything
// unparsable becomes 0, the result is clamped to [0, 9].
package form
