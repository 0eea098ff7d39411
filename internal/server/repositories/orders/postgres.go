// Package orders persists completed sales in PostgreSQL. The offline id is
// unique per tenant, which makes replayed submissions detectable.
package orders
