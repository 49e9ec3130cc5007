package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/laurel-hq/laurel/pkg/domain/model"
	"github.com/laurel-hq/laurel/pkg/domain/types"
	"github.com/laurel-hq/laurel/pkg/metrics"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

func cmdSync() *cli.Command {
	var appCfg appConfig
	var employeeID string

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "employee",
			Usage:       "Refresh a single employee by directory ID instead of running a full sync",
			Destination: &employeeID,
		},
	}
	flags = append(flags, appCfg.Flags()...)

	return &cli.Command{
		Name:  "sync",
		Usage: "Reconcile employees with the directory and the roster once",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			uc, repo, err := appCfg.setup(ctx, metrics.NewNop())
			if err != nil {
				return err
			}
			defer closeRepository(repo)

			if employeeID != "" {
				result, err := uc.Sync.RunSingleEmployeeSync(ctx, model.EmployeeID(employeeID))
				if err != nil {
					return err
				}
				printSingleSyncResult(os.Stdout, result)
				if !result.Success {
					return goerr.New("employee sync failed", goerr.V("employee_id", employeeID), goerr.V("message", result.Message))
				}
				return nil
			}

			result, err := uc.Sync.RunFullSync(ctx)
			if result != nil {
				printSyncResult(os.Stdout, result)
			}
			return err
		},
	}
}

func printSyncResult(w io.Writer, r *model.SyncResult) {
	title := color.New(color.Bold)
	ok := color.New(color.FgGreen)
	warn := color.New(color.FgYellow)
	bad := color.New(color.FgRed, color.Bold)

	phase := ok
	if r.Phase == types.SyncPhaseFailed {
		phase = bad
	}

	_, _ = title.Fprintln(w, "Sync result")
	_, _ = fmt.Fprintf(w, "  phase:       %s (%s)\n", phase.Sprint(r.Phase), r.FinishedAt.Sub(r.StartedAt))
	_, _ = fmt.Fprintf(w, "  processed:   %d\n", r.TotalProcessed)
	_, _ = fmt.Fprintf(w, "  new:         %s\n", ok.Sprint(r.NewUsers))
	_, _ = fmt.Fprintf(w, "  updated:     %s\n", ok.Sprint(r.UpdatedUsers))
	_, _ = fmt.Fprintf(w, "  deactivated: %s\n", warn.Sprint(r.DeactivatedUsers))
	_, _ = fmt.Fprintf(w, "  matched:     %d (unmatched directory %d, unmatched roster %d)\n",
		r.MatchedExternalRecords, r.UnmatchedAzureEmployees, r.UnmatchedExternalRecords)

	if !r.RosterAvailable {
		_, _ = warn.Fprintln(w, "  roster unavailable, directory data only")
	}
	if !r.DirectoryComplete {
		_, _ = warn.Fprintln(w, "  directory listing incomplete, deactivation skipped")
	}

	if len(r.Errors) == 0 {
		return
	}
	_, _ = bad.Fprintf(w, "  errors:      %d\n", len(r.Errors))
	for _, e := range r.Errors {
		if e.EmployeeID != "" {
			_, _ = fmt.Fprintf(w, "    - [%s] %s: %s\n", e.Operation, e.EmployeeID, e.Message)
		} else {
			_, _ = fmt.Fprintf(w, "    - [%s] %s\n", e.Operation, e.Message)
		}
	}
}

func printSingleSyncResult(w io.Writer, r *model.SingleSyncResult) {
	if !r.Success {
		_, _ = color.New(color.FgRed, color.Bold).Fprintln(w, r.Message)
		return
	}

	_, _ = color.New(color.FgGreen).Fprintln(w, r.Message)
	if r.Employee == nil {
		return
	}
	e := r.Employee
	_, _ = fmt.Fprintf(w, "  id:            %s\n", e.ID)
	_, _ = fmt.Fprintf(w, "  name:          %s\n", e.DisplayName())
	_, _ = fmt.Fprintf(w, "  voting group:  %s\n", e.VotingGroup)
	_, _ = fmt.Fprintf(w, "  eligible:      %t\n", e.VotingEligible)
	_, _ = fmt.Fprintf(w, "  roster match:  %t\n", r.MatchedWithExternal)
}
