// Package reports persists the error reports browsers post to the
// server's log endpoint.
//
// Four stores implement Store: MemoryStore for development, DiskStore for
// a single host, S3Store for archival in object storage and SQLStore for
// PostgreSQL. Open picks one from configuration.
package reports
