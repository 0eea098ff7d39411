// Package customers provides the PostgreSQL-backed, tenant-scoped customer
// directory of the server of record.
package customers
