package storage

import (
	"bytes"
	"context"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"strollcast/internal/segmentcache"
)

const (
	cachePrefix     = "segments/"
	clipContentType = "audio/mpeg"
)

// CacheStore is the remote counterpart of the filesystem segment cache: one
// MP3 object per fingerprint under segments/ in the cache bucket. It
// satisfies segmentcache.Store, so the pipeline can run against either
// backend unchanged.
type CacheStore struct {
	client *Client
	bucket string
}

// NewCacheStore binds a client to the cache bucket.
func NewCacheStore(client *Client, bucket string) *CacheStore {
	return &CacheStore{client: client, bucket: bucket}
}

// CacheObjectKey returns the bucket key for a fingerprint.
func CacheObjectKey(key string) string {
	return cachePrefix + segmentcache.ObjectName(key)
}

// Get fetches the clip for a fingerprint. A missing object is a normal miss,
// reported through the boolean.
func (s *CacheStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if err := segmentcache.ValidateKey(key); err != nil {
		return nil, false, err
	}
	objectKey := CacheObjectKey(key)
	out, err := s.client.api.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(objectKey),
	})
	if err != nil {
		if isNotFound(err) {
			return nil, false, nil
		}
		return nil, false, wrapStorageErr("get", s.bucket, objectKey, err)
	}
	defer out.Body.Close()
	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, false, wrapStorageErr("get", s.bucket, objectKey, err)
	}
	return data, true, nil
}

// Put uploads a clip under its fingerprint. Re-uploading the same key is
// harmless; entries are never mutated to different content.
func (s *CacheStore) Put(ctx context.Context, key string, data []byte) error {
	if err := segmentcache.ValidateKey(key); err != nil {
		return err
	}
	objectKey := CacheObjectKey(key)
	_, err := s.client.api.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(objectKey),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(clipContentType),
	})
	if err != nil {
		return wrapStorageErr("put", s.bucket, objectKey, err)
	}
	return nil
}

// Has probes for a fingerprint without downloading the clip.
func (s *CacheStore) Has(ctx context.Context, key string) (bool, error) {
	if err := segmentcache.ValidateKey(key); err != nil {
		return false, err
	}
	objectKey := CacheObjectKey(key)
	_, err := s.client.api.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(objectKey),
	})
	if err != nil {
		if isNotFound(err) {
			return false, nil
		}
		return false, wrapStorageErr("head", s.bucket, objectKey, err)
	}
	return true, nil
}
