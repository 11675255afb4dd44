// Package s3 implements blobstore.Store for Amazon S3.
package s3
