// Package scheduler triggers recurring comparison tasks.
//
// Schedules are expressed as a type and a value:
//
//   - preset: one of 15min, 1hour, 6hours, 12hours or daily
//   - interval: a positive number of minutes
//   - cron: a standard five-field cron expression
//
// Expression converts them to robfig/cron expressions. A Registry guards
// every execution so that the same task never runs concurrently, whether it
// was triggered by the clock or manually through Run.
package scheduler
