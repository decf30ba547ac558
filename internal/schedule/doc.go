// Package schedule keeps calendar schedule events in step with the
// shooting-day assignments of shots and scenes, and reports resource
// double-bookings within a shooting day.
//
// Synchronization is idempotent: re-running it with unchanged inputs
// leaves the event set untouched.  Only events for the requested days
// are created or refreshed; events on other days are never removed by
// a sync, callers clear them explicitly with ClearShot or ClearScene.
package schedule
