package app

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gcfisi/coursehub-backend/internal/platform/gcp"
	"github.com/gcfisi/coursehub-backend/internal/platform/logger"
)

var newBucketService = gcp.NewBucketService

type StorageBootstrapErrorCode string

const (
	StorageBootstrapErrorInvalidMode   StorageBootstrapErrorCode = "invalid_mode"
	StorageBootstrapErrorConnectFailed StorageBootstrapErrorCode = "connect_failed"
)

type StorageBootstrapError struct {
	Code         StorageBootstrapErrorCode
	Mode         string
	EmulatorHost string
	Cause        error
}

func (e *StorageBootstrapError) Error() string {
	if e == nil {
		return "object storage bootstrap failed"
	}
	return fmt.Sprintf("object storage bootstrap failed (code=%s mode=%q emulator_host=%q): %v",
		e.Code, e.Mode, e.EmulatorHost, e.Cause)
}

func (e *StorageBootstrapError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// resolveBucketService returns nil without error when no bucket is configured;
// the resource service then rejects file uploads.
func resolveBucketService(log *logger.Logger, cfg gcp.BucketConfig) (gcp.BucketService, error) {
	if strings.TrimSpace(cfg.Name) == "" {
		log.Warn("RESOURCE_BUCKET_NAME not set; file uploads disabled")
		return nil, nil
	}
	mode, err := gcp.ResolveObjectStorageMode(cfg.Mode, cfg.EmulatorHost)
	if err != nil {
		bootErr := &StorageBootstrapError{
			Code:         StorageBootstrapErrorInvalidMode,
			Mode:         cfg.Mode,
			EmulatorHost: cfg.EmulatorHost,
			Cause:        err,
		}
		log.Error("Object storage provider selection failed", "mode", cfg.Mode, "error_code", bootErr.Code, "error", err)
		return nil, bootErr
	}

	log.Info("Selecting object storage provider", "mode", mode, "bucket", cfg.Name, "emulator_host", cfg.EmulatorHost)
	bucket, err := newBucketService(log, cfg)
	if err != nil {
		bootErr := &StorageBootstrapError{
			Code:         StorageBootstrapErrorConnectFailed,
			Mode:         string(mode),
			EmulatorHost: cfg.EmulatorHost,
			Cause:        err,
		}
		log.Error("Object storage provider bootstrap failed", "mode", mode, "error_code", bootErr.Code, "error", err)
		return nil, bootErr
	}
	return bucket, nil
}

func storageBootstrapErrorCode(err error) StorageBootstrapErrorCode {
	var bootErr *StorageBootstrapError
	if errors.As(err, &bootErr) && bootErr.Code != "" {
		return bootErr.Code
	}
	return StorageBootstrapErrorConnectFailed
}
