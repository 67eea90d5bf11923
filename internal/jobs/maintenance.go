package jobs

import (
	"context"

	"anoa.com/notevault/pkg/logger"
)

const (
	// every five minutes, on the minute
	DashboardSchedule = "0 */5 * * * *"
	// 03:30 server time
	ReconcileSchedule = "0 30 3 * * *"
)

func NewDashboardJob(stats DashboardRefresher) Job {
	return FuncJob{
		JobName: "dashboard-refresh",
		Spec:    DashboardSchedule,
		Fn: func(ctx context.Context) error {
			_, err := stats.RefreshDashboard(ctx)
			return err
		},
	}
}

func NewReconcileJob(notes DownloadReconciler, log *logger.Logger) Job {
	return FuncJob{
		JobName: "download-count-reconcile",
		Spec:    ReconcileSchedule,
		Fn: func(ctx context.Context) error {
			fixed, err := notes.ReconcileDownloadCounts(ctx)
			if err != nil {
				return err
			}
			if fixed > 0 {
				log.Warn("download counters were behind their logs", "notes_fixed", fixed)
			}
			return nil
		},
	}
}
