// Package aggregates declares the write boundaries of the marketplace: the
// transaction ledger, enrollments and certificates. Each boundary owns the
// invariants of its rows; callers never write those tables through repos.
package aggregates
