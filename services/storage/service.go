package storage

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/google/uuid"
	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"

	"github.com/customeros/mailtriage/interfaces"
	"github.com/customeros/mailtriage/internal/logger"
	"github.com/customeros/mailtriage/internal/models"
	"github.com/customeros/mailtriage/internal/tracing"
	"github.com/customeros/mailtriage/services/storage/aws_client"
)

const draftContentType = "application/json"

// ObjectDraftStore writes each draft as <prefix><id>.json into a bucket.
// Drafts are stored for a human to review, nothing is ever sent.
type ObjectDraftStore struct {
	log        logger.Logger
	client     aws_client.S3Client
	bucketName string
	prefix     string
}

// StorageConfig holds configuration for object storage
type StorageConfig struct {
	BucketName string
	Prefix     string
}

var _ interfaces.DraftStore = (*ObjectDraftStore)(nil)

func NewObjectDraftStore(log logger.Logger, client aws_client.S3Client, config StorageConfig) *ObjectDraftStore {
	prefix := config.Prefix
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return &ObjectDraftStore{
		log:        log,
		client:     client,
		bucketName: config.BucketName,
		prefix:     prefix,
	}
}

func (s *ObjectDraftStore) Key(id string) string {
	return s.prefix + id + ".json"
}

func (s *ObjectDraftStore) CreateDraft(ctx context.Context, draft *models.DraftReply) (string, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "ObjectDraftStore.CreateDraft")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)

	if draft == nil {
		return "", errors.New("draft is nil")
	}
	stored := *draft
	stored.DraftID = uuid.New().String()
	tracing.TagEntity(span, stored.DraftID)

	data, err := json.Marshal(&stored)
	if err != nil {
		tracing.TraceErr(span, err)
		return "", errors.Wrap(err, "failed to encode draft")
	}
	if err := s.client.Upload(ctx, s.bucketName, s.Key(stored.DraftID), data, draftContentType); err != nil {
		tracing.TraceErr(span, err)
		return "", errors.Wrap(err, "failed to upload draft")
	}

	s.log.Debugf("draft %s uploaded to %s", stored.DraftID, s.bucketName)
	return stored.DraftID, nil
}

func (s *ObjectDraftStore) GetDraft(ctx context.Context, id string) (*models.DraftReply, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "ObjectDraftStore.GetDraft")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	tracing.TagEntity(span, id)

	data, err := s.client.Download(ctx, s.bucketName, s.Key(id))
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, errors.Wrapf(err, "failed to download draft %s", id)
	}
	var draft models.DraftReply
	if err := json.Unmarshal(data, &draft); err != nil {
		tracing.TraceErr(span, err)
		return nil, errors.Wrapf(err, "failed to decode draft %s", id)
	}
	return &draft, nil
}

// DeleteDraft removes a reviewed or rejected draft.
func (s *ObjectDraftStore) DeleteDraft(ctx context.Context, id string) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "ObjectDraftStore.DeleteDraft")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	tracing.TagEntity(span, id)

	if err := s.client.Delete(ctx, s.bucketName, s.Key(id)); err != nil {
		tracing.TraceErr(span, err)
		return errors.Wrapf(err, "failed to delete draft %s", id)
	}
	return nil
}
