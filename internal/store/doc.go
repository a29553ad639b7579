// Package store defines the persistence interfaces for user profiles and
// interest associations, the DBTX abstraction shared by *sql.DB and *sql.Tx,
// transaction helpers, and the error values implementations return.
package store
