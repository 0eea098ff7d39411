package models

import "time"

// SyncCustomer is a tenant-scoped customer snapshot.
type SyncCustomer struct {
	ID        int64     `json:"id"`
	TenantID  int64     `json:"tenant_id"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone,omitempty"`
	Email     string    `json:"email,omitempty"`
	Address   string    `json:"address,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}
