// Package queue is the Offline Action Queue: a durable, ordered log of
// mutations made while the server of record was unreachable.
//
// Entries are appended by the POS session and drained by the reconciler.
// They are never deleted; synced entries remain as an audit trail.
package queue
