// Package storage manages the results directory of the harvester.
//
// Every harvest produces one tab-separated table. The Manager names the
// files, writes them atomically through a temporary file and rename, and
// keeps a cache of the tables already present so callers can list or skip
// them. ReadTable parses a table back by header, skipping the query
// preamble that search tables carry.
//
// Usage:
//
//	manager, err := storage.NewManager("results")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	path, err := manager.WriteTable(storage.TimelineFile("bbc"), &storage.Table{
//	    Header: records.TweetHeader,
//	    Rows:   records.Rows(recs),
//	})
package storage
