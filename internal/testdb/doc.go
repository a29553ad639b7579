// Package testdb opens the Postgres database used by integration tests.
//
// Integration tests carry the "integration" build tag and read the database
// URL from USERS_TEST_DATABASE_URL, falling back to DATABASE_URL. Tests skip
// when neither is set. The embedded migrations are applied once per process,
// and WithTx gives each test a transaction that is always rolled back.
package testdb
