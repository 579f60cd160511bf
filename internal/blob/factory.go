package blob

import (
	"context"
	"fmt"
	"os"

	infrafs "srtingest/internal/infra/blob/fs"
	inframem "srtingest/internal/infra/blob/memory"
	infras3 "srtingest/internal/infra/blob/s3"
)

// Open selects a blob.Store implementation using environment variables.
//
//	SRTINGEST_BLOB_DRIVER: fs|s3|memory (default fs)
//	SRTINGEST_BLOB_FS_ROOT: directory root when driver=fs (default ./archive)
//	(S3 specific variables documented in the s3 package)
func Open(ctx context.Context) (Store, error) {
	driver := os.Getenv("SRTINGEST_BLOB_DRIVER")
	if driver == "" {
		driver = string(DriverFilesystem)
	}
	switch Driver(driver) {
	case DriverFilesystem:
		return NewFilesystem(os.Getenv("SRTINGEST_BLOB_FS_ROOT"))
	case DriverS3:
		return infras3.OpenFromEnv(ctx)
	case DriverMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown blob driver %s", driver)
	}
}

// NewFilesystem constructs a filesystem-backed Store rooted at the provided
// path.
func NewFilesystem(root string) (Store, error) {
	return infrafs.New(root)
}

// NewMemory returns an in-memory Store suitable for tests.
func NewMemory() Store { return inframem.New() }

// S3Config re-exports the infra S3 configuration type.
type S3Config = infras3.Config

// NewS3 constructs an S3-backed Store from the provided configuration.
func NewS3(ctx context.Context, cfg S3Config) (Store, error) {
	return infras3.New(ctx, cfg)
}
