package cmd

import (
	"fmt"
	"github.com/spf13/cobra"
	"os"
	"slices"
)

var CheckCmd = &cobra.Command{
	Use:          "check file.tip",
	Short:        "Infer the types of a TIP program",
	Long:         "Infer the types of a TIP program, printing the type of every function\nfollowed by the types of its formals and locals.",
	RunE:         runCheck,
	Args:         cobra.ExactArgs(1),
	SilenceUsage: true,
}

var checkFlags *programFlags

func init() {
	checkFlags = addProgramFlags(CheckCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	colors, err := checkFlags.palette(os.Stdout)
	if err != nil {
		return err
	}
	prog, err := checkFlags.loadTarget(cmd, args)
	if err != nil {
		return err
	}
	if err := reportErrors(cmd.ErrOrStderr(), prog, colors); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, f := range prog.AST().Functions {
		typ, _ := prog.FunctionType(f.Name())
		_, _ = fmt.Fprintf(out, "%s: %v\n", colors.name(f.Name()), typ)
		for _, decl := range slices.Concat(f.Formals, f.Locals) {
			local, _ := prog.LocalType(f.Name(), decl.Name)
			_, _ = fmt.Fprintf(out, "  %s: %v\n", decl.Name, local)
		}
	}
	return nil
}
