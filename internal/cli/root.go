package cli

import (
	"github.com/spf13/cobra"
)

// NewRootCommand builds the valvecalc command tree.
func NewRootCommand(version string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "valvecalc [command] [flags]",
		Short: "valvecalc computes splitter valve percentages for production lines.",
		Long: `valvecalc computes the opening percentage of every valve feeding a line
of machines from one input stream, so each machine receives its share.

Run "valvecalc compute" for a one-off report, "valvecalc interactive" for the
guided console, or "valvecalc serve" for the web form, REST API, websocket
and gRPC surfaces.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	cmd.AddCommand(NewCmdCompute())
	cmd.AddCommand(NewCmdBypass())
	cmd.AddCommand(NewCmdInteractive())
	cmd.AddCommand(NewCmdServe(version))
	cmd.AddCommand(NewCmdVersion(version))

	return cmd
}
