package cli

import (
	"context"
	"fmt"
	"io"
	"runtime"

	"github.com/spf13/cobra"
)

type VersionOptions struct {
	Version string
}

func NewCmdVersion(version string) *cobra.Command {
	o := &VersionOptions{Version: version}
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print valvecalc version information",
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.Run(cmd.Context(), cmd.OutOrStdout())
		},
	}
	return cmd
}

func (o *VersionOptions) Run(ctx context.Context, w io.Writer) error {
	_, err := fmt.Fprintf(w, "valvecalc %s (%s, %s/%s)\n", o.Version, runtime.Version(), runtime.GOOS, runtime.GOARCH)
	return err
}
