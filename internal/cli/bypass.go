package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/obsidianstack/valvecalc/internal/form"
	"github.com/obsidianstack/valvecalc/internal/report"
	"github.com/obsidianstack/valvecalc/internal/valve"
)

type BypassOptions struct {
	GlobalOptions

	Bypass   float64
	Main     float64
	Decimals string
}

func DefaultBypassOptions() *BypassOptions {
	return &BypassOptions{GlobalOptions: DefaultGlobalOptions()}
}

func NewCmdBypass() *cobra.Command {
	o := DefaultBypassOptions()
	cmd := &cobra.Command{
		Use:   "bypass --bypass B --main M [--decimals d]",
		Short: "Compute a single split valve from machine counts or flow rates",
		Long: `Compute the percentage of one split valve: bypass / (bypass + main) * 100.
The two values may be machine counts or total consumption rates.`,
		Example: `  valvecalc bypass --bypass 1 --main 3
  valvecalc bypass --bypass 2.5 --main 7.5 -d 1`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := o.Complete(cmd, args); err != nil {
				return err
			}
			if err := o.Validate(args); err != nil {
				return err
			}
			return o.Run(cmd.Context(), cmd.OutOrStdout())
		},
		SilenceUsage: true,
	}
	o.Bind(cmd.Flags())
	_ = cmd.MarkFlagRequired("bypass")
	_ = cmd.MarkFlagRequired("main")
	return cmd
}

func (o *BypassOptions) Bind(fs *pflag.FlagSet) {
	o.GlobalOptions.Bind(fs)

	fs.Float64VarP(&o.Bypass, "bypass", "b", o.Bypass, "Machines (or total rate) on the bypass side")
	fs.Float64VarP(&o.Main, "main", "m", o.Main, "Machines (or total rate) on the main output")
	fs.StringVarP(&o.Decimals, form.FieldDecimals, "d", o.Decimals, "Decimal places, 0..9 (blank uses calculator.default_decimals)")
}

func (o *BypassOptions) Complete(cmd *cobra.Command, args []string) error {
	return o.GlobalOptions.Complete(cmd, args)
}

func (o *BypassOptions) Validate(args []string) error {
	if err := o.GlobalOptions.Validate(args); err != nil {
		return err
	}
	if o.Bypass < 0 || o.Main < 0 {
		return fmt.Errorf("%w: values must be finite and non-negative", valve.ErrInvalidBypass)
	}
	return nil
}

func (o *BypassOptions) Run(ctx context.Context, w io.Writer) error {
	cfg, err := o.LoadConfig()
	if err != nil {
		return err
	}
	d := form.ParseDecimals(o.Decimals, cfg.Calculator.DefaultDecimals)

	pct, err := valve.Bypass(o.Bypass, o.Main, d)
	if err != nil {
		return err
	}
	return report.WriteBypass(w, pct, d)
}
