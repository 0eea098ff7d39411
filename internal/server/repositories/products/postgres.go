// Package products provides the PostgreSQL-backed product catalog of the
// server of record.
package products
