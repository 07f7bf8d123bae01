package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/obsidianstack/valvecalc/internal/api"
	"github.com/obsidianstack/valvecalc/internal/calc"
	"github.com/obsidianstack/valvecalc/internal/config"
	"github.com/obsidianstack/valvecalc/internal/form"
	"github.com/obsidianstack/valvecalc/internal/report"
	"github.com/obsidianstack/valvecalc/internal/rpc"
	"github.com/obsidianstack/valvecalc/internal/valve"
)

const remoteTimeout = 10 * time.Second

type ComputeOptions struct {
	GlobalOptions

	Machines string
	Decimals string
	Split    string
	Rates    string
	Output   string
	Remote   string
	APIKey   string

	asymmetric bool
	unequal    bool
	format     report.Format
}

func DefaultComputeOptions() *ComputeOptions {
	return &ComputeOptions{
		GlobalOptions: DefaultGlobalOptions(),
		Output:        string(report.FormatText),
	}
}

func NewCmdCompute() *cobra.Command {
	o := DefaultComputeOptions()
	cmd := &cobra.Command{
		Use:   "compute --machines N [--split L] [--rates r1,r2,...] [--decimals d]",
		Short: "Compute valve percentages for a line of machines",
		Example: `  valvecalc compute --machines 4 --decimals 3
  valvecalc compute --machines 5 --split 2
  valvecalc compute --machines 3 --rates 1,1.5,2 -o json
  valvecalc compute --machines 4 --remote localhost:50051`,
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
	return cmd
}

func (o *ComputeOptions) Bind(fs *pflag.FlagSet) {
	o.GlobalOptions.Bind(fs)

	fs.StringVarP(&o.Machines, form.FieldMachines, "n", o.Machines, "Total number of machines (N > 0)")
	fs.StringVarP(&o.Decimals, form.FieldDecimals, "d", o.Decimals, "Decimal places, 0..9 (blank uses calculator.default_decimals)")
	fs.StringVarP(&o.Split, form.FieldSplit, "l", o.Split, "Machines on the left branch; setting it enables the split valve")
	fs.StringVarP(&o.Rates, form.FieldRates, "r", o.Rates, "Comma-separated consumption rates, one per machine; setting it enables unequal mode")
	fs.StringVarP(&o.Output, "output", "o", o.Output, fmt.Sprintf("Output format. One of: (%s).", formatList()))
	fs.StringVar(&o.Remote, "remote", o.Remote, "Compute on a valvecalc gRPC server at host:port instead of locally")
	fs.StringVar(&o.APIKey, "api-key", o.APIKey, "API key sent to --remote (default from the server.auth.key_env variable)")
}

func (o *ComputeOptions) Complete(cmd *cobra.Command, args []string) error {
	if err := o.GlobalOptions.Complete(cmd, args); err != nil {
		return err
	}
	o.asymmetric = cmd.Flags().Changed(form.FieldSplit)
	o.unequal = cmd.Flags().Changed(form.FieldRates)
	return nil
}

func (o *ComputeOptions) Validate(args []string) error {
	if err := o.GlobalOptions.Validate(args); err != nil {
		return err
	}
	if strings.TrimSpace(o.Machines) == "" {
		return fmt.Errorf("--%s is required", form.FieldMachines)
	}
	f, err := report.ParseFormat(o.Output)
	if err != nil {
		return err
	}
	o.format = f
	return nil
}

func (o *ComputeOptions) fields() form.Fields {
	return form.Fields{
		Machines:     o.Machines,
		Decimals:     o.Decimals,
		Asymmetric:   o.asymmetric,
		SplitPoint:   o.Split,
		UnequalRates: o.unequal,
		Rates:        o.Rates,
	}
}

func (o *ComputeOptions) Run(ctx context.Context, w io.Writer) error {
	cfg, err := o.LoadConfig()
	if err != nil {
		return err
	}

	var rep *valve.Report
	if o.Remote != "" {
		rep, err = o.computeRemote(ctx, cfg)
	} else {
		rep, err = calc.New(config.NewHolder(cfg), nil).ComputeFields(o.fields())
	}
	if err != nil {
		return err
	}
	return report.Write(w, rep, o.format)
}

func (o *ComputeOptions) computeRemote(ctx context.Context, cfg *config.Config) (*valve.Report, error) {
	vc, err := form.Parse(o.fields(), form.Options{DefaultDecimals: cfg.Calculator.DefaultDecimals})
	if err != nil {
		return nil, err
	}

	key := o.APIKey
	if key == "" {
		key = cfg.Server.Auth.Key()
	}
	client, closeFn, err := rpc.Dial(o.Remote, cfg.Server.Auth.EffectiveHeader(), key)
	if err != nil {
		return nil, err
	}
	defer closeFn() //nolint:errcheck

	ctx, cancel := context.WithTimeout(ctx, remoteTimeout)
	defer cancel()

	d := vc.Decimals
	return client.Compute(ctx, api.ValvesRequest{
		MachineCount: vc.MachineCount,
		Decimals:     &d,
		Asymmetric:   vc.Asymmetric,
		SplitPoint:   vc.SplitPoint,
		UnequalRates: vc.UnequalRates,
		Rates:        vc.Rates,
	})
}

func formatList() string {
	names := make([]string, len(report.Formats))
	for i, f := range report.Formats {
		names[i] = string(f)
	}
	return strings.Join(names, ", ")
}
