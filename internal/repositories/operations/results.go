package oprepo

import (
	"bytes"
	"context"
	"fmt"
	"io"

	opdomain "github.com/longrunio/lro/internal/domains/operations"
	"github.com/minio/minio-go/v7"
)

// ResultRepository keeps offloaded response payloads in object storage.
type ResultRepository struct {
	objectStorage *minio.Client
	bucketName    string
}

func NewResultRepository(objectStorage *minio.Client, bucketName string) (*ResultRepository, error) {
	exists, err := objectStorage.BucketExists(context.Background(), bucketName)
	if err != nil {
		return nil, fmt.Errorf("cannot check if results bucket exists: %w", err)
	}

	if !exists {
		if err := objectStorage.MakeBucket(context.Background(), bucketName, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("cannot create results bucket: %w", err)
		}
	}

	return &ResultRepository{
		objectStorage: objectStorage,
		bucketName:    bucketName,
	}, nil
}

func (r *ResultRepository) SaveResult(ctx context.Context, name opdomain.OperationName, payload []byte) (string, error) {
	key := name.ID() + ".json"

	_, err := r.objectStorage.PutObject(ctx, r.bucketName, key,
		bytes.NewReader(payload), int64(len(payload)),
		minio.PutObjectOptions{ContentType: "application/json"})
	if err != nil {
		return "", fmt.Errorf("cannot store result for %q: %w", name, err)
	}

	return key, nil
}

func (r *ResultRepository) OpenResult(ctx context.Context, objectKey string) ([]byte, error) {
	obj, err := r.objectStorage.GetObject(ctx, r.bucketName, objectKey, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to get result %q: %w", objectKey, err)
	}
	defer obj.Close()

	if _, err := obj.Stat(); err != nil {
		return nil, fmt.Errorf("result %q not found or inaccessible: %w", objectKey, err)
	}

	return io.ReadAll(obj)
}

func (r *ResultRepository) DeleteResult(ctx context.Context, objectKey string) error {
	return r.objectStorage.RemoveObject(ctx, r.bucketName, objectKey, minio.RemoveObjectOptions{})
}
