package file_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kistconnect/portal/core"
	"github.com/kistconnect/portal/core/file"
	inmemblob "github.com/kistconnect/portal/storage/blob/inmem"
	"github.com/kistconnect/portal/tests"
)

type failingStore struct {
	core.BlobStore
}

func (failingStore) PresignedGetURL(context.Context, string, time.Duration) (string, error) {
	return "", errors.New("storage is down")
}

func newConf() *core.Config {
	return &core.Config{Storage: core.StorageConfig{UploadExpiry: 15 * time.Minute, DownloadExpiry: time.Hour}}
}

func TestService(t *testing.T) {
	ctx := context.Background()
	store := inmemblob.New("http://files.test")
	svc := file.NewService(store, testutil.NewValidator(), newConf())

	upload, err := svc.GenerateUploadURL(ctx, file.NewUpload{ContentType: file.ContentTypePDF})
	require.NoError(t, err)
	_, err = uuid.Parse(upload.StorageID)
	assert.NoError(t, err)
	assert.True(t, strings.HasPrefix(upload.UploadURL, "http://files.test/?"), upload.UploadURL)
	assert.Contains(t, upload.UploadURL, "expires=900")
	assert.Equal(t, upload.StorageID, upload.FormData["key"])

	u, err := svc.GetFileURL(ctx, upload.StorageID)
	require.NoError(t, err)
	assert.Contains(t, u, "expires=3600")

	tests := []struct {
		name      string
		storageID string
	}{
		{name: "malformed id", storageID: "kg2abc"},
		{name: "empty id"},
		{name: "unknown id", storageID: uuid.New().String()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.GetFileURL(ctx, tt.storageID)
			assert.Equal(t, file.ErrNotFound, errors.Cause(err))
		})
	}

	t.Run("store failure", func(t *testing.T) {
		svc := file.NewService(failingStore{}, testutil.NewValidator(), newConf())
		_, err := svc.GetFileURL(ctx, uuid.New().String())
		require.Error(t, err)
		assert.NotEqual(t, file.ErrNotFound, errors.Cause(err))
	})
}

func TestService_GenerateUploadURL(t *testing.T) {
	ctx := context.Background()
	store := inmemblob.New("http://files.test")
	svc := file.NewService(store, testutil.NewValidator(), newConf())

	tests := []struct {
		name        string
		contentType string
		wantType    string
		wantMaxSize int64
		wantTag     string
	}{
		{name: "pdf", contentType: "application/pdf", wantType: file.ContentTypePDF, wantMaxSize: 10 << 20},
		{name: "png", contentType: "image/png", wantType: file.ContentTypePNG, wantMaxSize: 5 << 20},
		{name: "jpeg, untidy", contentType: " Image/JPEG ", wantType: file.ContentTypeJPEG, wantMaxSize: 5 << 20},
		{name: "missing", contentType: "", wantTag: "required"},
		{name: "gif", contentType: "image/gif", wantTag: "oneof"},
		{name: "executable", contentType: "application/x-msdownload", wantTag: "oneof"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			upload, err := svc.GenerateUploadURL(ctx, file.NewUpload{ContentType: tt.contentType})
			if tt.wantTag != "" {
				vErrs, ok := err.(validator.ValidationErrors)
				require.True(t, ok, "err = %v", err)
				require.Len(t, vErrs, 1)
				assert.Equal(t, "contentType", vErrs[0].Field())
				assert.Equal(t, tt.wantTag, vErrs[0].Tag())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantType, upload.ContentType)
			assert.Equal(t, tt.wantMaxSize, upload.MaxSize)

			policy, ok := store.Policy(upload.StorageID)
			require.True(t, ok)
			assert.Equal(t, core.UploadPolicy{ContentType: tt.wantType, MaxSize: tt.wantMaxSize}, policy)
		})
	}
}
