// Package records flattens API objects into the rows of the harvest tables
// and parses those rows back.
//
// Cells follow a fixed layout: text has line breaks removed, booleans are
// 0 or 1, a missing reply target is -1, timestamps are UTC
// "YYYY-MM-DD HH:MM:SS" and lists are written as ['a', 'b'].
package records
