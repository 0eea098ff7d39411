// Package models defines the records the POS client caches, queues and
// exchanges with the server of record.
//
// Every persisted type is stored as a JSON document in the local structured
// store; the json tags therefore double as the on-disk format and, for
// SyncProduct, SyncCustomer and OfflineOrder, as the wire format.
package models
