package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func NewRootCommand(version string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "dfnref",
		Short: "Check that every term reference in a specification links to its definition",
		Long: `dfnref scans specification documents for term definitions (<dfn>) and
references to them (<a> without href), resolves each reference against the
document's definition catalog and reports duplicates and broken links.

Results are written to .dfnref/ so later runs and tools can reuse them.`,
		SilenceUsage: true,
	}

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("dfnref %s\n", version)
		},
	}

	rootCmd.AddCommand(
		newCheckCommand(),
		newLookupCommand(),
		newBiblioCommand(),
		versionCmd,
	)

	return rootCmd
}

func newCheckCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check [path...]",
		Short: "Resolve every reference and report broken links and duplicate definitions",
		RunE:  RunCheck,
	}
	addCommonFlags(cmd)
	addResolveFlags(cmd)
	cmd.Flags().String("out", "", "Directory for the check report (default: .dfnref)")
	return cmd
}

func newLookupCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lookup <title> [path...]",
		Short: "Show the definitions a title resolves to",
		Args:  cobra.MinimumNArgs(1),
		RunE:  RunLookup,
	}
	addCommonFlags(cmd)
	cmd.Flags().String("for", "", "Scope to look the title up in")
	cmd.Flags().Int("limit", 5, "Maximum number of suggestions when nothing matches")
	return cmd
}

func newBiblioCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "biblio [path...]",
		Short: "List the normative and informative references each document cites",
		RunE:  RunBiblio,
	}
	addCommonFlags(cmd)
	cmd.Flags().String("short-name", "", "Short name of the document, used to detect self-citations")
	return cmd
}
