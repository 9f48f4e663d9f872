// Package core runs sort jobs: it loads a table, orders it by a call number
// column and writes the result, recording every run in history.
//
// The package is independent of any transport. The web server and the
// locsort command line tool both drive the same [Service].
//
// # Jobs
//
// A job is one call to [Service.SortStream] or [Service.SortFile]. Each job
//
//  1. takes a slot from the [JobLimiter], waiting at most the configured time
//  2. reads the source table (CSV, TSV or xlsx)
//  3. sorts rows stably by the derived key of the chosen column
//  4. writes the result, and only then
//  5. records a [history.Run], successful or not
//
// A missing column fails the job before anything is written. History
// failures are logged and never fail a job.
//
// # Errors
//
// [MapError] turns technical errors into [UserMessage] values with a support
// code. See errors.go for the code table.
package core
