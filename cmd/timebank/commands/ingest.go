// File path: cmd/timebank/commands/ingest.go
package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nicodishanthj/timebank/internal/common"
	"github.com/nicodishanthj/timebank/internal/ingest"
)

var ingestJSON bool

var ingestCmd = &cobra.Command{
	Use:   "ingest [dir]",
	Short: "Load per-day CSV files into the database",
	Long: `Load every *.csv file in dir (default TIMEBANK_CSV_DIR, then csv_data).

Each file is named after its day (2024-01-01.csv) and has a Time,Type,Remark
header. Rows with an unparseable time range are skipped. Re-running the
command over the same files does not create duplicates.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().BoolVar(&ingestJSON, "json", false, "print the summary as JSON")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	dir := settings.CSVDir
	if len(args) == 1 {
		dir = args[0]
	}

	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	driver, err := ingest.NewDriver(store, common.Logger())
	if err != nil {
		return err
	}
	summary, err := driver.IngestDir(cmd.Context(), dir)
	if err != nil {
		return fmt.Errorf("ingest %s: %w", dir, err)
	}

	out := cmd.OutOrStdout()
	if ingestJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(summary)
	}
	fmt.Fprintf(out, "files: %d, rows: %d, records: %d, skipped rows: %d\n", summary.Files, summary.Rows, summary.Records, summary.SkippedRows)
	for _, path := range summary.FailedFiles {
		fmt.Fprintf(out, "failed: %s\n", path)
	}
	return nil
}
