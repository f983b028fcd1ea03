package storage

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/customeros/mailtriage/config"
	"github.com/customeros/mailtriage/internal/logger"
	"github.com/customeros/mailtriage/internal/models"
)

type mockS3Client struct {
	mock.Mock
}

func (m *mockS3Client) Upload(ctx context.Context, bucket, key string, data []byte, contentType string) error {
	return m.Called(ctx, bucket, key, data, contentType).Error(0)
}

func (m *mockS3Client) Download(ctx context.Context, bucket, key string) ([]byte, error) {
	args := m.Called(ctx, bucket, key)
	data, _ := args.Get(0).([]byte)
	return data, args.Error(1)
}

func (m *mockS3Client) Delete(ctx context.Context, bucket, key string) error {
	return m.Called(ctx, bucket, key).Error(0)
}

func TestObjectDraftStore_CreateDraft(t *testing.T) {
	client := new(mockS3Client)
	store := NewObjectDraftStore(logger.NewNopLogger(), client, StorageConfig{BucketName: "drafts", Prefix: "triage"})

	var uploaded []byte
	client.On("Upload", mock.Anything, "drafts", mock.AnythingOfType("string"), mock.Anything, draftContentType).
		Run(func(args mock.Arguments) { uploaded = args.Get(3).([]byte) }).
		Return(nil)

	id, err := store.CreateDraft(context.Background(), &models.DraftReply{Subject: "Re: hi", Body: "Thanks", Recipients: []string{"a@b.com"}})
	require.NoError(t, err)
	require.NotEmpty(t, id)

	client.AssertCalled(t, "Upload", mock.Anything, "drafts", "triage/"+id+".json", mock.Anything, draftContentType)
	var stored models.DraftReply
	require.NoError(t, json.Unmarshal(uploaded, &stored))
	assert.Equal(t, id, stored.DraftID)
	assert.Equal(t, "Re: hi", stored.Subject)
}

func TestObjectDraftStore_Errors(t *testing.T) {
	client := new(mockS3Client)
	store := NewObjectDraftStore(logger.NewNopLogger(), client, StorageConfig{BucketName: "drafts"})

	_, err := store.CreateDraft(context.Background(), nil)
	assert.Error(t, err)

	client.On("Upload", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(errors.New("denied"))
	_, err = store.CreateDraft(context.Background(), &models.DraftReply{Body: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "denied")
}

func TestObjectDraftStore_GetAndDelete(t *testing.T) {
	client := new(mockS3Client)
	store := NewObjectDraftStore(logger.NewNopLogger(), client, StorageConfig{BucketName: "drafts", Prefix: "p/"})

	client.On("Download", mock.Anything, "drafts", "p/abc.json").Return([]byte(`{"draft_id":"abc","body":"hello"}`), nil)
	client.On("Delete", mock.Anything, "drafts", "p/abc.json").Return(nil)
	client.On("Download", mock.Anything, "drafts", "p/bad.json").Return([]byte(`{`), nil)

	draft, err := store.GetDraft(context.Background(), "abc")
	require.NoError(t, err)
	assert.Equal(t, "hello", draft.Body)
	require.NoError(t, store.DeleteDraft(context.Background(), "abc"))

	_, err = store.GetDraft(context.Background(), "bad")
	assert.Error(t, err)
}

func TestNewDraftStoreFromConfig(t *testing.T) {
	log := logger.NewNopLogger()

	_, err := NewDraftStoreFromConfig(log, &config.DraftStorageConfig{})
	assert.Error(t, err)

	_, err = NewDraftStoreFromConfig(log, &config.DraftStorageConfig{Bucket: "b", Provider: ProviderR2})
	assert.Error(t, err)

	_, err = NewDraftStoreFromConfig(log, &config.DraftStorageConfig{Bucket: "b", Provider: "gcs"})
	assert.Error(t, err)

	store, err := NewDraftStoreFromConfig(log, &config.DraftStorageConfig{Bucket: "b", Provider: ProviderS3, Region: "eu-west-1", Prefix: "drafts/"})
	require.NoError(t, err)
	assert.Equal(t, "drafts/x.json", store.Key("x"))
}
