// Package harvest turns fetch loops into result tables.
//
// A Harvester owns the API client, the quota oracle and arbiter, and the
// results directory. Each operation pages through one upstream listing,
// flattens the items into records and writes a table, even when the loop
// was interrupted or aborted. Multi-user runs go through the users one at a
// time and stop at the first interrupt.
package harvest
