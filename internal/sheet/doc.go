// Package sheet persists pipeline records backed by SQLite.
//
// The store models a small set of named tabs. Each record belongs to one tab,
// carries a free-form field bag, and moves forward through the tab's status
// sequence. Workflows select their input by tab and status, write derived
// fields, and advance the status exactly one legal step; the store rejects
// any transition that would move a record backwards or sideways. Append-only
// tabs accumulate rows and never advance.
//
// Records are never deleted by workflows. A record that fails processing
// keeps its status and carries the failure in last_error so the next run
// picks it up again.
package sheet
