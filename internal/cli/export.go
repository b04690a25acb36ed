package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Codewiz19/legallens/internal/session"
)

var exportCmd = &cobra.Command{
	Use:   "export [path]",
	Short: "Write the current session's report to a JSON file",
	Long: `Export the last analysis as a JSON report. The report contains the
document identity, the normalized summary, and the normalized risk
assessment, exactly as the dashboard shows them.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runExport,
}

func runExport(cmd *cobra.Command, args []string) error {
	store, err := session.NewStore()
	if err != nil {
		return fmt.Errorf("opening session cache: %w", err)
	}
	snapshot, err := store.Load()
	if err != nil {
		return err
	}
	if snapshot == nil {
		return fmt.Errorf("no session to export; run an analysis first")
	}

	path := "legallens-report.json"
	if len(args) == 1 {
		path = args[0]
	}
	if err := session.Export(*snapshot, path); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Report for %s written to %s\n", snapshot.DisplayName, path)
	return nil
}
