// Package s3 streams destinations to Amazon S3 (or any S3-compatible
// endpoint) with the AWS SDK v2 upload manager.
//
// Writes go through an io.Pipe into manager.Uploader, which switches to a
// multipart upload once more than one part has been written. Abort fails the
// pipe so the uploader cancels the multipart upload and no object appears.
package s3
