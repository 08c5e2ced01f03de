// Package storage wraps the MinIO Go client for the report archive.
//
// The Client interface abstracts the provider so archive code can be tested
// with the testify mock in core/storage/mocks. It works against AWS S3 and
// self-hosted MinIO.
//
// # Usage
//
//	client, err := storage.NewClient(cfg.Storage)
//	if err := storage.EnsureBucket(ctx, client, cfg.Storage.Bucket, cfg.Storage.Region); err != nil {
//	    return err
//	}
package storage
