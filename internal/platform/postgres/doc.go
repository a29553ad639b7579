// Package postgres implements the store interfaces on PostgreSQL through
// database/sql and the pgx driver. It also maps driver errors onto store
// errors and carries the embedded goose migrations.
package postgres
