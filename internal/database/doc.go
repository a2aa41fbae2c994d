// Package database owns the SQLite connection and schema migration.
// Per-domain repositories live in subpackages (users, jobs, applications,
// audit); each wraps the shared *gorm.DB and exposes the handful of queries
// its domain needs.
//
// Lookups that can legitimately find nothing return (nil, nil); an error
// always means the store itself failed. Inserts that hit a unique index
// return ErrDuplicate.
package database
