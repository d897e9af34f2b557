package cli

import (
	"errors"
	"fmt"
	"io"
	"time"

	"go-warehouse/internal/worker"

	"github.com/spf13/cobra"
)

func newExportCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export stock or records to a CSV file",
	}
	cmd.AddCommand(
		newTransferCommand(a, "stock", "Export every product", worker.KindExportStock),
		newTransferCommand(a, "records", "Export the stock record history", worker.KindExportRecords),
	)
	return cmd
}

func newImportCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import products from a CSV file",
	}
	cmd.AddCommand(newTransferCommand(a, "stock", "Insert products from a stock export", worker.KindImportStock))
	return cmd
}

// newTransferCommand runs one bulk task in the foreground, printing its
// progress as it goes.
func newTransferCommand(a *app, use, short string, kind worker.Kind) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			task, err := worker.NewTask(kind, file)
			if err != nil {
				return err
			}
			runner := worker.NewRunner(a.open, a.log)
			h, err := runner.Submit(cmd.Context(), task)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for ev := range h.Subscribe() {
				if ev.Type == worker.EventProgress {
					printProgress(out, ev.Progress)
				}
			}
			res, err := h.Wait(cmd.Context())
			if err != nil {
				return err
			}
			if !res.Success {
				return errors.New(res.Message)
			}
			fmt.Fprintf(out, "%s (%s)\n", res.Message, h.Snapshot().Duration().Round(time.Millisecond))
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "CSV file path (required)")
	cmd.MarkFlagRequired("file")
	return cmd
}

func printProgress(w io.Writer, p worker.Progress) {
	if p.Total > 0 {
		fmt.Fprintf(w, "  %d/%d (%d%%)\n", p.Current, p.Total, p.Current*100/p.Total)
		return
	}
	fmt.Fprintf(w, "  %d rows\n", p.Current)
}
