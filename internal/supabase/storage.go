package supabase

import (
	"context"
	"fmt"
	"io"

	storage "github.com/supabase-community/storage-go"
)

// StorageClient serves store.Objects from Supabase storage buckets.
type StorageClient struct {
	client  *storage.Client
	baseURL string
}

func NewStorageClient(supabaseURL, key string) *StorageClient {
	base := baseURL(supabaseURL)
	return &StorageClient{
		client:  storage.NewClient(base+"/storage/v1", key, nil),
		baseURL: base,
	}
}

func (s *StorageClient) Upload(ctx context.Context, bucket, path string, data io.Reader, contentType string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	upsert := false
	_, err := s.client.UploadFile(bucket, path, data, storage.FileOptions{
		ContentType: &contentType,
		Upsert:      &upsert,
	})
	if err != nil {
		return fmt.Errorf("failed to upload %s/%s: %w", bucket, path, err)
	}
	return nil
}

func (s *StorageClient) PublicURL(bucket, path string) string {
	return PublicObjectURL(s.baseURL, bucket, path)
}

func (s *StorageClient) Remove(ctx context.Context, bucket string, paths ...string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(paths) == 0 {
		return nil
	}
	if _, err := s.client.RemoveFile(bucket, paths); err != nil {
		return fmt.Errorf("failed to remove from %s: %w", bucket, err)
	}
	return nil
}

func PublicObjectURL(supabaseURL, bucket, path string) string {
	return fmt.Sprintf("%s/storage/v1/object/public/%s/%s", baseURL(supabaseURL), bucket, path)
}
