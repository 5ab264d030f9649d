// Package postgres provides a PostgreSQL implementation of store.KVStore.
// It handles connection setup through the pgx stdlib driver and maps
// PostgreSQL error codes onto the store package's sentinel errors.
package postgres
