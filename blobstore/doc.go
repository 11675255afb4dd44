// Package blobstore provides storage abstraction for reference resources
// such as homology tables.
//
// Store is the interface for fetching immutable blobs by name.
// Implementations must be safe for concurrent use.
//
// # Built-in Implementations
//
//   - LocalStore: local filesystem
//   - MemoryStore: in-memory, for fixtures and tests
//   - s3.Store: Amazon S3
//   - minio.Store: MinIO and other S3-compatible storage
package blobstore
