// Package aggregates implements the write boundaries of the payment and
// enrollment flow: the ledger, the enrollment state machine and certificate
// issuance. Each write runs in one transaction, joining the caller's when the
// context already carries one, and maps infrastructure failures onto
// domain aggregate error codes.
package aggregates
