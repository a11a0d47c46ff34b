package cmd

import (
	"fmt"
	"github.com/spf13/cobra"
	"os"
)

var ConstraintsCmd = &cobra.Command{
	Use:          "constraints file.tip",
	Short:        "Print the type constraints of a TIP program, in the order they are solved",
	RunE:         runConstraints,
	Args:         cobra.ExactArgs(1),
	SilenceUsage: true,
}

var (
	constraintsFlags *programFlags
	withPositions    *bool
)

func init() {
	constraintsFlags = addProgramFlags(ConstraintsCmd)
	withPositions = ConstraintsCmd.Flags().BoolP("positions", "p", false, "prefix every constraint with the position of the node that produced it")
}

func runConstraints(cmd *cobra.Command, args []string) error {
	colors, err := constraintsFlags.palette(os.Stdout)
	if err != nil {
		return err
	}
	prog, err := constraintsFlags.loadTarget(cmd, args)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, c := range prog.Constraints() {
		if *withPositions && c.Source != nil {
			_, _ = fmt.Fprint(out, colors.faint(prog.FileSet().Position(c.Source.Pos()).String()+": "))
		}
		_, _ = fmt.Fprintln(out, c.String())
	}
	return reportErrors(cmd.ErrOrStderr(), prog, colors)
}
