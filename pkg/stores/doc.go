// Package stores provides the persistence layer for scenario runs.
// It includes SQLite-based storage with WAL mode, embedded schema
// migrations, and CRUD operations for runs, technology decisions,
// material constraint audits, and investment cycle schedules.
package stores
