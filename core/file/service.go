package file

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/kat-co/vala"
	"github.com/pkg/errors"

	"github.com/kistconnect/portal/core"
)

// ErrNotFound is returned when no stored file has the requested id.
var ErrNotFound = errors.New("file not found")

// Accepted upload types
const (
	ContentTypePDF  = "application/pdf"
	ContentTypePNG  = "image/png"
	ContentTypeJPEG = "image/jpeg"
)

// maxSizes are the upload limits per content type, in bytes.
var maxSizes = map[string]int64{
	ContentTypePDF:  10 << 20,
	ContentTypePNG:  5 << 20,
	ContentTypeJPEG: 5 << 20,
}

// NewUpload describes the file a teacher is about to upload.
type NewUpload struct {
	ContentType string `json:"contentType" validate:"required,oneof=application/pdf image/png image/jpeg"`
}

// UploadURL tells the client where to POST the file: FormData fields first, then the "file" field.
type UploadURL struct {
	StorageID   string            `json:"storageId"`
	UploadURL   string            `json:"uploadUrl"`
	FormData    map[string]string `json:"formData"`
	ContentType string            `json:"contentType"`
	MaxSize     int64             `json:"maxSize"`
}

type FileURL struct {
	URL string `json:"url"`
}

type Service struct {
	store          core.BlobStore
	validate       *validator.Validate
	uploadExpiry   time.Duration
	downloadExpiry time.Duration
}

func NewService(store core.BlobStore, validate *validator.Validate, conf *core.Config) *Service {
	vala.BeginValidation().Validate(
		vala.IsNotNil(store, "store"),
		vala.IsNotNil(validate, "validate"),
		vala.IsNotNil(conf, "conf"),
	).CheckAndPanic()

	return &Service{
		store:          store,
		validate:       validate,
		uploadExpiry:   conf.Storage.UploadExpiry,
		downloadExpiry: conf.Storage.DownloadExpiry,
	}
}

// GenerateUploadURL reserves a new storage id and presigns an upload restricted to nu's type and size limit.
func (svc *Service) GenerateUploadURL(ctx context.Context, nu NewUpload) (UploadURL, error) {
	nu.ContentType = core.CleanString(nu.ContentType, true)
	if err := svc.validate.Struct(nu); err != nil {
		return UploadURL{}, err
	}

	policy := core.UploadPolicy{ContentType: nu.ContentType, MaxSize: maxSizes[nu.ContentType]}
	storageID := uuid.New().String()
	up, err := svc.store.PresignedUpload(ctx, storageID, policy, svc.uploadExpiry)
	if err != nil {
		return UploadURL{}, errors.Wrap(err, "presigning upload")
	}
	return UploadURL{
		StorageID:   storageID,
		UploadURL:   up.URL,
		FormData:    up.FormData,
		ContentType: policy.ContentType,
		MaxSize:     policy.MaxSize,
	}, nil
}

// GetFileURL returns a download URL for the stored file, or ErrNotFound.
func (svc *Service) GetFileURL(ctx context.Context, storageID string) (string, error) {
	if _, err := uuid.Parse(storageID); err != nil {
		return "", ErrNotFound
	}
	u, err := svc.store.PresignedGetURL(ctx, storageID, svc.downloadExpiry)
	if err != nil {
		if errors.Cause(err) == core.ErrObjectNotFound {
			return "", ErrNotFound
		}
		return "", errors.Wrap(err, "presigning download url")
	}
	return u, nil
}
