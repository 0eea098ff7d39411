package models

import "time"

// PendingAction is an Offline Action Queue entry. Entries are never deleted;
// synced ones stay behind as an audit trail.
type PendingAction struct {
	ID        int64        `json:"id"`
	Action    string       `json:"action"`
	Entity    string       `json:"entity"`
	Payload   OfflineOrder `json:"payload"`
	URL       string       `json:"url"`
	Method    string       `json:"method"`
	Synced    bool         `json:"synced"`
	Retries   int          `json:"retries"`
	LastError string       `json:"last_error,omitempty"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

// SyncMeta records the last successful pull of an entity type.
type SyncMeta struct {
	Key          string    `json:"key"`
	LastSyncedAt time.Time `json:"last_synced_at"`
}
