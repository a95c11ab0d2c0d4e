package cli

import (
	"fmt"
	"io"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/cron"
	"github.com/spf13/cobra"
)

type reconcileOptions struct {
	startDate string
	endDate   string
	limit     int
}

// ReconcileResult is the reconcile command output.
type ReconcileResult struct {
	StartDate string                 `json:"start_date"`
	EndDate   string                 `json:"end_date"`
	Result    attendance.SweepResult `json:"result"`
}

// NewReconcileCommand creates the reconcile command.
func NewReconcileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &reconcileOptions{}

	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Back-fill worked time and flags on closed sessions",
		Long: `Repair closed attendance sessions that are missing worked seconds or flags.

Without --start/--end the sweep covers the last RECONCILE_SWEEP_DAYS business days.`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReconcile(cmd, rootOpts, opts)
		},
	}

	cmd.Flags().StringVar(&opts.startDate, "start", "", "first business day (YYYY-MM-DD)")
	cmd.Flags().StringVar(&opts.endDate, "end", "", "last business day (YYYY-MM-DD)")
	cmd.Flags().IntVar(&opts.limit, "limit", 0, "maximum records to visit (default RECONCILE_BATCH_LIMIT)")

	return cmd
}

func runReconcile(cmd *cobra.Command, rootOpts *RootOptions, opts *reconcileOptions) error {
	ctx := cmd.Context()
	a, err := rootOpts.openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	cfg := a.Config
	start, end := opts.startDate, opts.endDate
	if start == "" && end == "" {
		start, end = cron.NewReconcileJob(a.Attendance, a.Clock, cfg.Location(), cfg.Reconcile.SweepDays, 0).Window()
	}
	filter := attendance.HistoryFilter{StartDate: start, EndDate: end}
	if err := filter.Validate(); err != nil {
		return err
	}

	limit := opts.limit
	if limit <= 0 {
		limit = cfg.Reconcile.BatchLimit
	}

	result, err := a.Attendance.Sweep(ctx, attendance.ListFilter{StartDate: start, EndDate: end, Limit: limit})
	if err != nil {
		return err
	}

	out := ReconcileResult{StartDate: start, EndDate: end, Result: result}
	return rootOpts.output(cmd.OutOrStdout(), out, func(w io.Writer) {
		fmt.Fprintf(w, "Reconciled %s..%s: visited %d, repaired %d, failed %d\n",
			displayDate(start), displayDate(end), result.Visited, result.Repaired, result.Failed)
	})
}

func displayDate(d string) string {
	if d == "" {
		return "*"
	}
	return d
}
