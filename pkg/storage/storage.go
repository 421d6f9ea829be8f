package storage

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/SHADOW-0602/Smart-Claims-Processing-Platform-HiDevs/pkg/logger"
	"github.com/SHADOW-0602/Smart-Claims-Processing-Platform-HiDevs/pkg/storage/minio"
	"github.com/SHADOW-0602/Smart-Claims-Processing-Platform-HiDevs/pkg/storage/s3"
)

// StorageType selects the object storage backend.
type StorageType string

const (
	StorageTypeS3    StorageType = "s3"
	StorageTypeMinio StorageType = "minio"
)

// Storage holds claim images and pipeline run results.
type Storage interface {
	// Store writes an object and returns its key.
	Store(ctx context.Context, reader io.Reader, key string) (string, error)
	// Get reads an object by key.
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	// Delete removes an object.
	Delete(ctx context.Context, key string) error
	// CleanupBefore removes objects older than the threshold. Claim images
	// are never kept past the retention period.
	CleanupBefore(ctx context.Context, threshold time.Time) error
}

// NewStorage is the backend factory.
func NewStorage(storageType StorageType, log logger.Logger) (Storage, error) {
	switch storageType {
	case StorageTypeS3:
		return s3.GetClient(log)
	case StorageTypeMinio:
		return minio.GetClient(log)
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", storageType)
	}
}
