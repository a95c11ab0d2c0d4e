package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/report"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/user"
	"github.com/spf13/cobra"
)

type exportOptions struct {
	startDate string
	endDate   string
	format    string
	output    string
}

// NewExportCommand creates the export command.
func NewExportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &exportOptions{}

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export attendance records as CSV or XLSX",
		Long: `Export reconciled attendance records for a date range.

The file is written to --output, or to stdout when --output is "-".`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(cmd, rootOpts, opts)
		},
	}

	cmd.Flags().StringVar(&opts.startDate, "start", "", "first business day (YYYY-MM-DD)")
	cmd.Flags().StringVar(&opts.endDate, "end", "", "last business day (YYYY-MM-DD)")
	cmd.Flags().StringVar(&opts.format, "type", "csv", "file type (csv|xlsx)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output path (default attendance_<start>_<end>.<type>)")
	_ = cmd.MarkFlagRequired("start")
	_ = cmd.MarkFlagRequired("end")

	return cmd
}

func runExport(cmd *cobra.Command, rootOpts *RootOptions, opts *exportOptions) error {
	req := report.AttendanceExportRequest{
		StartDate: opts.startDate,
		EndDate:   opts.endDate,
		Format:    report.Format(opts.format),
	}
	if err := req.Validate(); err != nil {
		return err
	}

	ctx := cmd.Context()
	a, err := rootOpts.openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	path := opts.output
	if path == "" {
		path = req.Filename()
	}

	var w io.Writer = cmd.OutOrStdout()
	if path != "-" {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("create %s: %w", path, err)
		}
		defer f.Close()
		w = f
	}

	if err := a.Report.ExportAttendance(ctx, user.System(), req, w); err != nil {
		return err
	}

	if path == "-" {
		return nil
	}
	return rootOpts.output(cmd.OutOrStdout(), map[string]string{"path": path}, func(w io.Writer) {
		fmt.Fprintf(w, "Wrote %s\n", path)
	})
}
