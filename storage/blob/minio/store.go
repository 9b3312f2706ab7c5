package minioblob

import (
	"context"
	"net/http"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/pkg/errors"

	"github.com/kistconnect/portal/core"
)

type Store struct {
	client *minio.Client
	bucket string
}

var _ core.BlobStore = (*Store)(nil) // interface compliance check

// New connects to the object store and creates the bucket if it does not exist yet.
func New(ctx context.Context, conf *core.Config) (*Store, error) {
	client, err := minio.New(conf.Storage.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(conf.Storage.AccessKey, conf.Storage.SecretKey, ""),
		Secure: conf.Storage.UseTLS,
	})
	if err != nil {
		return nil, errors.Wrap(err, "initializing minio client")
	}

	s := &Store{client: client, bucket: conf.Storage.Bucket}
	if err = s.ensureBucket(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) ensureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return errors.Wrap(err, "checking bucket")
	}
	if !exists {
		if err = s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
			return errors.Wrap(err, "creating bucket")
		}
	}
	return nil
}

func (s *Store) PresignedUpload(
	ctx context.Context,
	key string,
	policy core.UploadPolicy,
	expiry time.Duration,
) (core.PresignedUpload, error) {
	p := minio.NewPostPolicy()
	for _, err := range []error{
		p.SetBucket(s.bucket),
		p.SetKey(key),
		p.SetExpires(time.Now().UTC().Add(expiry)),
		p.SetContentType(policy.ContentType),
		p.SetContentLengthRange(1, policy.MaxSize),
	} {
		if err != nil {
			return core.PresignedUpload{}, errors.Wrap(err, "building post policy")
		}
	}

	u, formData, err := s.client.PresignedPostPolicy(ctx, p)
	if err != nil {
		return core.PresignedUpload{}, errors.Wrap(err, "presigning post policy")
	}
	return core.PresignedUpload{URL: u.String(), FormData: formData}, nil
}

func (s *Store) PresignedGetURL(ctx context.Context, key string, expiry time.Duration) (string, error) {
	if _, err := s.client.StatObject(ctx, s.bucket, key, minio.StatObjectOptions{}); err != nil {
		if isNotFound(err) {
			return "", core.ErrObjectNotFound
		}
		return "", errors.Wrap(err, "stating object")
	}

	u, err := s.client.PresignedGetObject(ctx, s.bucket, key, expiry, nil)
	if err != nil {
		return "", errors.Wrap(err, "presigning get")
	}
	return u.String(), nil
}

func isNotFound(err error) bool {
	resp := minio.ToErrorResponse(err)
	return resp.StatusCode == http.StatusNotFound || resp.Code == "NoSuchKey"
}
