package gcp

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"path"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"github.com/gcfisi/coursehub-backend/internal/platform/dbctx"
	"github.com/gcfisi/coursehub-backend/internal/platform/logger"
)

// BucketService stores uploaded resource files.
type BucketService interface {
	UploadFile(dbc dbctx.Context, key string, file io.Reader) error
	DeleteFile(dbc dbctx.Context, key string) error
	GetPublicURL(key string) string
}

type BucketConfig struct {
	Name            string
	CDNDomain       string
	Mode            string
	EmulatorHost    string
	PublicBaseURL   string
	CredentialsJSON string
	CredentialsFile string
}

type bucketService struct {
	log           *logger.Logger
	storageClient *storage.Client
	storageMode   ObjectStorageMode
	name          string
	cdnDomain     string
	emulatorHost  string
	publicBaseURL string
}

func NewBucketService(log *logger.Logger, cfg BucketConfig) (BucketService, error) {
	serviceLog := log.With("service", "BucketService")
	if strings.TrimSpace(cfg.Name) == "" {
		return nil, fmt.Errorf("missing bucket name")
	}
	mode, err := ResolveObjectStorageMode(cfg.Mode, cfg.EmulatorHost)
	if err != nil {
		return nil, err
	}
	emulatorHost := strings.TrimRight(strings.TrimSpace(cfg.EmulatorHost), "/")

	ctx := context.Background()
	var stClient *storage.Client
	switch mode {
	case ObjectStorageModeGCSEmulator:
		_ = os.Setenv("STORAGE_EMULATOR_HOST", emulatorHost)
		stClient, err = storage.NewClient(ctx, option.WithoutAuthentication())
	default:
		opts := clientOptions(cfg)
		opts = append(opts, option.WithScopes(storage.ScopeReadWrite))
		stClient, err = storage.NewClient(ctx, opts...)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}

	publicBaseURL := strings.TrimRight(strings.TrimSpace(cfg.PublicBaseURL), "/")
	if publicBaseURL == "" && mode == ObjectStorageModeGCSEmulator {
		publicBaseURL = emulatorHost
	}

	serviceLog.Info("Object storage initialized",
		"mode", mode,
		"bucket", cfg.Name,
		"public_base_url", publicBaseURL,
	)
	return &bucketService{
		log:           serviceLog,
		storageClient: stClient,
		storageMode:   mode,
		name:          cfg.Name,
		cdnDomain:     strings.TrimSpace(cfg.CDNDomain),
		emulatorHost:  emulatorHost,
		publicBaseURL: publicBaseURL,
	}, nil
}

func clientOptions(cfg BucketConfig) []option.ClientOption {
	if creds := strings.TrimSpace(cfg.CredentialsJSON); creds != "" {
		return []option.ClientOption{option.WithCredentialsJSON([]byte(creds))}
	}
	if file := strings.TrimSpace(cfg.CredentialsFile); file != "" {
		return []option.ClientOption{option.WithCredentialsFile(file)}
	}
	return nil
}

func (bs *bucketService) UploadFile(dbc dbctx.Context, key string, file io.Reader) error {
	ctx, cancel := context.WithTimeout(dbc.Ctx, 2*time.Minute)
	defer cancel()

	w := bs.storageClient.Bucket(bs.name).Object(key).NewWriter(ctx)
	if ct := ContentTypeForKey(key); ct != "" {
		w.ContentType = ct
	}
	if _, err := io.Copy(w, file); err != nil {
		_ = w.Close()
		return fmt.Errorf("failed to write data to GCS: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to close GCS writer: %w", err)
	}
	return nil
}

func (bs *bucketService) DeleteFile(dbc dbctx.Context, key string) error {
	ctx, cancel := context.WithTimeout(dbc.Ctx, 30*time.Second)
	defer cancel()
	if err := bs.storageClient.Bucket(bs.name).Object(key).Delete(ctx); err != nil {
		return fmt.Errorf("failed to delete GCS object %q in bucket %q: %w", key, bs.name, err)
	}
	return nil
}

func (bs *bucketService) GetPublicURL(key string) string {
	return publicURL(bs.storageMode, bs.name, bs.cdnDomain, bs.publicBaseURL, key)
}

func publicURL(mode ObjectStorageMode, bucket, cdnDomain, publicBaseURL, key string) string {
	key = strings.TrimLeft(strings.TrimSpace(key), "/")
	switch {
	case cdnDomain != "":
		return fmt.Sprintf("https://%s/%s", cdnDomain, key)
	case mode == ObjectStorageModeGCSEmulator && publicBaseURL != "":
		return fmt.Sprintf("%s/storage/v1/b/%s/o/%s?alt=media", publicBaseURL, url.PathEscape(bucket), url.PathEscape(key))
	case publicBaseURL != "":
		return fmt.Sprintf("%s/%s/%s", publicBaseURL, bucket, key)
	default:
		return fmt.Sprintf("https://storage.googleapis.com/%s/%s", bucket, key)
	}
}

// ContentTypeForKey guesses the object content type from the key extension.
func ContentTypeForKey(key string) string {
	s := strings.ToLower(strings.TrimSpace(key))
	if i := strings.Index(s, "?"); i >= 0 {
		s = s[:i]
	}
	switch path.Ext(s) {
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".webp":
		return "image/webp"
	case ".gif":
		return "image/gif"
	case ".svg":
		return "image/svg+xml"
	case ".mp4", ".m4v":
		return "video/mp4"
	case ".webm":
		return "video/webm"
	case ".mov":
		return "video/quicktime"
	case ".pdf":
		return "application/pdf"
	case ".txt", ".md":
		return "text/plain"
	case ".doc":
		return "application/msword"
	case ".docx":
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	case ".ppt":
		return "application/vnd.ms-powerpoint"
	case ".pptx":
		return "application/vnd.openxmlformats-officedocument.presentationml.presentation"
	default:
		return ""
	}
}
