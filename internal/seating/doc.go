// Package seating holds the pure seat-allocation logic: the room topology
// and its seat numbering, the one-seat-one-student assignment store, the
// bulk placement strategies and the editor session that gates removals on
// user preferences.
//
// Nothing in this package performs I/O.  Persistence of a Store is the
// job of the service layer, which saves snapshots as a full replace.
package seating
