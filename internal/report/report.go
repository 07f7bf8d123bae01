package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/obsidianstack/valvecalc/internal/valve"
)

// Format selects a renderer.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatProm Format = "prom"
)

// Formats lists the accepted formats in help-text order.
var Formats = []Format{FormatText, FormatJSON, FormatProm}

// junctionNote is appended to text reports that contain a 50 or 100 valve.
const junctionNote = "Note: 50 and 100 splits can often be done with junction/turn."

// ParseFormat validates a user-supplied format name. Empty means text.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FormatText, nil
	case FormatText, FormatJSON, FormatProm:
		return f, nil
	default:
		names := make([]string, len(Formats))
		for i, f := range Formats {
			names[i] = string(f)
		}
		return "", fmt.Errorf("report: unknown format %q: want %s", s, strings.Join(names, "|"))
	}
}

// Write renders rep to w in format f.
func Write(w io.Writer, rep *valve.Report, f Format) error {
	switch f {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(rep)
	case FormatProm:
		return WriteProm(w, rep)
	default:
		return WriteText(w, rep)
	}
}

// WriteText renders the human-readable report.
func WriteText(w io.Writer, rep *valve.Report) error {
	var b strings.Builder

	fmt.Fprintf(&b, "Machines: %d\n", rep.MachineCount)
	fmt.Fprintf(&b, "Mode: %s\n", modeLabel(rep))
	if rep.SplitPoint != nil {
		l := *rep.SplitPoint
		fmt.Fprintf(&b, "Split point: %d (left %d, right %d on the bypass)\n", l, l, rep.MachineCount-l)
	}
	if rep.UnequalRates {
		fmt.Fprintf(&b, "Rates: %s\n", FormatRates(rep.Rates))
	}

	if rep.Asymmetric {
		writeSegment(&b, "Split valve", rep.Segment(valve.SegmentSplit), rep.Decimals)
		writeSegment(&b, "Left pipeline", rep.Segment(valve.SegmentLeft), rep.Decimals)
		writeSegment(&b, "Right pipeline", rep.Segment(valve.SegmentRight), rep.Decimals)
	} else {
		writeSegment(&b, "Pipeline", rep.Segment(valve.SegmentPipeline), rep.Decimals)
	}

	if rep.JunctionHint {
		b.WriteString(junctionNote + "\n")
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// WriteBypass renders a single-valve result.
func WriteBypass(w io.Writer, pct float64, decimals int) error {
	_, err := fmt.Fprintf(w, "Bypass percentage: %s\n", Percent(pct, decimals))
	return err
}

// Percent formats v with exactly d decimals and no percent sign.
func Percent(v float64, d int) string {
	return strconv.FormatFloat(v, 'f', d, 64)
}

// FormatRates joins rates with ", " using the shortest exact representation.
func FormatRates(rates []float64) string {
	parts := make([]string, len(rates))
	for i, r := range rates {
		parts[i] = strconv.FormatFloat(r, 'g', -1, 64)
	}
	return strings.Join(parts, ", ")
}

func writeSegment(b *strings.Builder, title string, valves []valve.Valve, d int) {
	if len(valves) == 0 {
		fmt.Fprintf(b, "%s: none\n", title)
		return
	}
	if len(valves) == 1 {
		fmt.Fprintf(b, "%s (%s):\n", title, valves[0].Label)
	} else {
		fmt.Fprintf(b, "%s (%s..%s):\n", title, valves[0].Label, valves[len(valves)-1].Label)
	}
	for _, v := range valves {
		fmt.Fprintf(b, "  %s = %s\n", v.Label, Percent(v.Percent, d))
	}
}

func modeLabel(rep *valve.Report) string {
	split := "single pipeline"
	if rep.Asymmetric {
		split = "asymmetric split"
	}
	rates := "equal rates"
	if rep.UnequalRates {
		rates = "unequal rates"
	}
	return split + ", " + rates
}
