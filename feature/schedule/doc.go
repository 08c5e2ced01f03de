// Package schedule runs project comparisons on a schedule.
//
// Enabled ScheduledTask rows are registered with the scheduler when the
// feature loads and again on every reload. Each execution re-reads its task,
// runs the comparison with the task's key settings and records the outcome
// on the task: counters, last run status and message, and the next run.
//
// # HTTP Endpoints
//
//   - GET /schedules : Lists the enabled tasks.
//   - POST /schedules/reload : Reloads the tasks from the store.
//   - POST /schedules/:id/run : Runs a task now (409 while it is running or
//     when it is disabled).
package schedule
