package storage

import (
	"github.com/pkg/errors"

	"github.com/customeros/mailtriage/config"
	"github.com/customeros/mailtriage/internal/logger"
	"github.com/customeros/mailtriage/services/storage/aws_client"
)

const (
	ProviderS3 = "s3"
	ProviderR2 = "r2"
)

// NewDraftStoreFromConfig picks the S3 or R2 client for the configured
// provider.
func NewDraftStoreFromConfig(log logger.Logger, cfg *config.DraftStorageConfig) (*ObjectDraftStore, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("draft bucket is not configured")
	}

	var client aws_client.S3Client
	switch cfg.Provider {
	case "", ProviderS3:
		client = aws_client.NewAWSClient(cfg.Region, cfg.AccessKeyID, cfg.AccessKeySecret)
	case ProviderR2:
		if cfg.R2AccountID == "" {
			return nil, errors.New("DRAFTS_R2_ACCOUNT_ID is required for the r2 provider")
		}
		client = aws_client.NewR2Client(cfg.R2AccountID, cfg.AccessKeyID, cfg.AccessKeySecret)
	default:
		return nil, errors.Errorf("unknown draft storage provider %q", cfg.Provider)
	}

	return NewObjectDraftStore(log, client, StorageConfig{
		BucketName: cfg.Bucket,
		Prefix:     cfg.Prefix,
	}), nil
}
