// Package retention prunes old evidence records on a cron schedule,
// optionally archiving them to JSON before deletion.
package retention
