package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/floats"

	"github.com/obsidianstack/valvecalc/internal/config"
	"github.com/obsidianstack/valvecalc/internal/report"
	"github.com/obsidianstack/valvecalc/internal/valve"
)

// ConsoleDefaultDecimals is the precision the console starts with.
const ConsoleDefaultDecimals = 3

// Console modes.
const (
	modeExit          = 0
	modeBypassCounts  = 1
	modeBypassRates   = 2
	modeLinearEqual   = 3
	modeLinearUnequal = 4
)

type InteractiveOptions struct {
	GlobalOptions
}

func DefaultInteractiveOptions() *InteractiveOptions {
	return &InteractiveOptions{GlobalOptions: DefaultGlobalOptions()}
}

func NewCmdInteractive() *cobra.Command {
	o := DefaultInteractiveOptions()
	cmd := &cobra.Command{
		Use:   "interactive",
		Short: "Guided console for single valves and linear pipelines",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := o.Complete(cmd, args); err != nil {
				return err
			}
			if err := o.Validate(args); err != nil {
				return err
			}
			return o.Run(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout())
		},
		SilenceUsage: true,
	}
	o.Bind(cmd.Flags())
	return cmd
}

func (o *InteractiveOptions) Run(ctx context.Context, r io.Reader, w io.Writer) error {
	cfg, err := o.LoadConfig()
	if err != nil {
		return err
	}
	c := NewConsole(r, w)
	if cfg.Calculator.MaxMachines > 0 {
		c.maxMachines = cfg.Calculator.MaxMachines
	}
	return c.Run(ctx)
}

// Console is the line-oriented calculator. It re-prompts on unparsable
// numbers and ends on "0" or end of input.
type Console struct {
	in          *bufio.Scanner
	out         io.Writer
	decimals    int
	maxMachines int
}

// NewConsole reads answers from r and writes prompts and results to w.
// Pipelines are limited to config.DefaultMaxMachines machines.
func NewConsole(r io.Reader, w io.Writer) *Console {
	return &Console{
		in:          bufio.NewScanner(r),
		out:         w,
		decimals:    ConsoleDefaultDecimals,
		maxMachines: config.DefaultMaxMachines,
	}
}

// Run drives the console until exit, end of input or ctx cancellation.
func (c *Console) Run(ctx context.Context) error {
	c.printf("Valve Bypass Calculator\n")
	c.printf("Outputs are numbers only (no %% sign).\n\n")

	d, ok := c.readInt(fmt.Sprintf("Decimal places to round to (default %d): ", ConsoleDefaultDecimals))
	if !ok {
		return c.in.Err()
	}
	if d >= valve.MinDecimals && d <= valve.MaxDecimals {
		c.decimals = d
	} else {
		c.printf("Keeping default (%d). Valid range is %d..%d.\n", ConsoleDefaultDecimals, valve.MinDecimals, valve.MaxDecimals)
	}

	for ctx.Err() == nil {
		c.printf("\nChoose a mode:\n")
		c.printf("  1) Single valve (machine counts)\n")
		c.printf("  2) Single valve (flow rates)\n")
		c.printf("  3) Linear pipeline (equal rates)\n")
		c.printf("  4) Linear pipeline (unequal rates)\n")
		c.printf("  0) Exit\n")

		mode, ok := c.readInt("Mode: ")
		if !ok || mode == modeExit {
			break
		}

		var cont bool
		switch mode {
		case modeBypassCounts:
			cont = c.bypass("How many machines are in the BYPASS? ", "How many machines are in the MAIN OUTPUT? ", true)
		case modeBypassRates:
			cont = c.bypass("Total consumption rate of the BYPASS? ", "Total consumption rate of the MAIN OUTPUT? ", false)
		case modeLinearEqual:
			cont = c.linearEqual()
		case modeLinearUnequal:
			cont = c.linearUnequal()
		default:
			c.printf("Please select a correct mode.\n")
			cont = true
		}
		if !cont {
			break
		}
	}

	c.printf("\nGoodbye.\n")
	return c.in.Err()
}

func (c *Console) bypass(bypassPrompt, mainPrompt string, counts bool) bool {
	var b, m float64
	if counts {
		bi, ok := c.readInt(bypassPrompt)
		if !ok {
			return false
		}
		mi, ok := c.readInt(mainPrompt)
		if !ok {
			return false
		}
		b, m = float64(bi), float64(mi)
	} else {
		var ok bool
		if b, ok = c.readFloat(bypassPrompt); !ok {
			return false
		}
		if m, ok = c.readFloat(mainPrompt); !ok {
			return false
		}
	}

	pct, err := valve.Bypass(b, m, c.decimals)
	if err != nil {
		c.printf("%s\n", bypassMessage(b, m, counts))
		return true
	}
	_ = report.WriteBypass(c.out, pct, c.decimals)
	return true
}

func bypassMessage(b, m float64, counts bool) string {
	switch {
	case counts && (b < 0 || m < 0):
		return "Counts must be non-negative."
	case b < 0 || m < 0:
		return "Rates must be non-negative."
	case counts:
		return "Total machines cannot be 0."
	default:
		return "Total flow cannot be 0."
	}
}

func (c *Console) linearEqual() bool {
	n, ok := c.readMachines()
	if !ok {
		return false
	}
	if n <= 0 {
		return true
	}

	c.printValves(valve.LinearEqual(n, c.decimals), nil)
	c.printf("Note: 50 and 100 splits can often be done with junction/turn.\n")
	return true
}

func (c *Console) linearUnequal() bool {
	n, ok := c.readMachines()
	if !ok {
		return false
	}
	if n <= 0 {
		return true
	}

	rates := make([]float64, 0, n)
	for len(rates) < n {
		r, ok := c.readFloat(fmt.Sprintf("Consumption rate of machine #%d: ", len(rates)+1))
		if !ok {
			return false
		}
		if r < 0 {
			c.printf("Rates must be non-negative.\n")
			continue
		}
		rates = append(rates, r)
	}

	if floats.Sum(rates) <= 0 {
		c.printf("Total consumption is 0. Cannot compute percentages.\n")
		return true
	}

	pcts, err := valve.LinearUnequal(rates, c.decimals)
	if err != nil {
		c.printf("%v\n", err)
		return true
	}
	c.printValves(pcts, rates)
	return true
}

// printValves lists C1..Cn. When rates are given, valves whose remaining
// downstream total is 0 are reported as undefined.
func (c *Console) printValves(pcts, rates []float64) {
	c.printf("Bypass values (C1..C%d):\n", len(pcts))
	for i, p := range pcts {
		if rates != nil && floats.Sum(rates[i:]) <= 0 {
			c.printf("  C%d = (undefined: remaining total is 0)\n", i+1)
			continue
		}
		c.printf("  C%d = %s\n", i+1, report.Percent(p, c.decimals))
	}
}

// readMachines asks for a pipeline length. It returns 0 after printing the
// reason when the count is out of range.
func (c *Console) readMachines() (int, bool) {
	n, ok := c.readInt("How many MACHINES in the pipeline? ")
	if !ok {
		return 0, false
	}
	switch {
	case n <= 0:
		c.printf("Machine count must be > 0.\n")
		return 0, true
	case n > c.maxMachines:
		c.printf("Machine count must be at most %d.\n", c.maxMachines)
		return 0, true
	}
	return n, true
}

func (c *Console) readInt(prompt string) (int, bool) {
	for {
		c.printf("%s", prompt)
		line, ok := c.readLine()
		if !ok {
			return 0, false
		}
		v, err := strconv.Atoi(line)
		if err == nil {
			return v, true
		}
		c.printf("Invalid integer. Try again.\n")
	}
}

func (c *Console) readFloat(prompt string) (float64, bool) {
	for {
		c.printf("%s", prompt)
		line, ok := c.readLine()
		if !ok {
			return 0, false
		}
		v, err := strconv.ParseFloat(line, 64)
		if err == nil && !math.IsNaN(v) && !math.IsInf(v, 0) {
			return v, true
		}
		c.printf("Invalid number. Try again.\n")
	}
}

func (c *Console) readLine() (string, bool) {
	if !c.in.Scan() {
		return "", false
	}
	return strings.TrimSpace(c.in.Text()), true
}

func (c *Console) printf(format string, args ...any) {
	fmt.Fprintf(c.out, format, args...)
}
