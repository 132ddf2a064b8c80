// Package jobs provides the scheduled background tasks of the dispatch engine,
// built on github.com/robfig/cron/v3.
//
// # Available Jobs
//
//  1. PresenceSweepJob evicts realtime connections idle for longer than the presence
//     timeout. Default schedule "@every 5m".
//  2. PendingOrderRebroadcastJob re-runs matching for orders still pending after a minimum
//     age and offers them again. Default schedule "@every 2m".
//
// # Usage
//
//	jobManager := jobs.NewJobManager(
//		jobs.NewPresenceSweepJob(registry, cfg.PresenceSweepSchedule, logger),
//		jobs.NewPendingOrderRebroadcastJob(orders, rebroadcastHandler, cfg.RebroadcastSchedule, cfg.RebroadcastMinAge, logger),
//	)
//	if err := jobManager.StartAll(); err != nil {
//		log.Fatal("Failed to start jobs:", err)
//	}
//	defer jobManager.StopAll()
//
// # Error Handling
//
// Orders that left pending between listing and rebroadcast are skipped silently.
// Other failures are logged and never stop the schedule.
package jobs
