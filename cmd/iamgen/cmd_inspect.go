package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/udondan/iam-floyd-sub044/pkg"
)

var inspectEmit bool

var inspectCmd = &cobra.Command{
	Use:   "inspect <page.html>",
	Short: "Show how a saved service page is classified",
	Long: `Parses a saved service page and prints the assembled module as JSON, or the
generated Go source with --emit. Warnings found on the way are logged.`,
	Args: cobra.ExactArgs(1),
	RunE: runInspect,
}

func init() {
	inspectCmd.Flags().BoolVar(&inspectEmit, "emit", false, "Print the generated Go source instead of JSON")
}

func runInspect(cmd *cobra.Command, args []string) error {
	fixes, err := pkg.LoadFixRegistry(cfg.FixesFile)
	if err != nil {
		return err
	}
	diagnostics := pkg.NewDiagnostics()
	reporter := pkg.NewReporter(logger, diagnostics)

	module, err := pkg.AssembleFile(args[0], fixes, reporter)
	if err != nil {
		return err
	}

	var out []byte
	if inspectEmit {
		out, err = pkg.EmitModule(module, cfg.EmitOptions(), reporter)
	} else {
		out, err = json.MarshalIndent(module, "", "  ")
	}
	if err != nil {
		return err
	}
	if !inspectEmit {
		out = append(out, '\n')
	}
	if _, err := cmd.OutOrStdout().Write(out); err != nil {
		return err
	}
	if diagnostics.Len() > 0 {
		fmt.Fprintf(cmd.ErrOrStderr(), "%d diagnostics\n", diagnostics.Len())
	}
	return nil
}
