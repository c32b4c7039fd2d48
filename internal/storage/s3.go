// Package storage persists listing images in S3. Browsers upload
// straight to the bucket with presigned PUT URLs; reads go through
// presigned GET URLs cached in Redis so a hot search page does not
// re-sign the same keys on every request.
package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"urgentsales/server/internal/cache"
	"urgentsales/server/internal/utils"
)

type Client struct {
	s3       *s3.Client
	presign  *s3.PresignClient
	bucket   string
	urlCache *cache.URLCache
	urlTTL   time.Duration
}

// NewClient builds an S3 client from static credentials. With empty
// credentials the default provider chain is used, which covers IAM
// roles in deployment.
func NewClient(ctx context.Context, region, accessKeyID, secretAccessKey, bucket string,
	urlCache *cache.URLCache, urlTTL time.Duration) (*Client, error) {
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(region)}
	if accessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(accessKeyID, secretAccessKey, "")))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("loading aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg)
	return &Client{
		s3:       client,
		presign:  s3.NewPresignClient(client),
		bucket:   bucket,
		urlCache: urlCache,
		urlTTL:   urlTTL,
	}, nil
}

// NewImageKey returns the bucket key for a freshly uploaded listing
// image.
func NewImageKey(listingID string) string {
	return fmt.Sprintf("listings/%s/%s.jpg", listingID, utils.NewSixID())
}

// PresignUpload returns a URL the browser can PUT the raw image to.
func (c *Client) PresignUpload(ctx context.Context, key, contentType string) (string, error) {
	req, err := c.presign.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      &c.bucket,
		Key:         &key,
		ContentType: &contentType,
	}, s3.WithPresignExpires(c.urlTTL))
	if err != nil {
		return "", fmt.Errorf("presigning upload for %s: %w", key, err)
	}
	return req.URL, nil
}

// SignedGetURL returns a cached presigned GET URL for an image key.
func (c *Client) SignedGetURL(ctx context.Context, key string) (string, error) {
	return c.urlCache.GetOrCompute(ctx, key, func(ctx context.Context) (string, error) {
		req, err := c.presign.PresignGetObject(ctx, &s3.GetObjectInput{
			Bucket: &c.bucket,
			Key:    &key,
		}, s3.WithPresignExpires(c.urlTTL))
		if err != nil {
			return "", fmt.Errorf("presigning download for %s: %w", key, err)
		}
		return req.URL, nil
	})
}

// Download fetches an object into memory. Only used by the image
// worker, which deals in photos small enough to buffer.
func (c *Client) Download(ctx context.Context, key string) ([]byte, error) {
	out, err := c.s3.GetObject(ctx, &s3.GetObjectInput{Bucket: &c.bucket, Key: &key})
	if err != nil {
		return nil, fmt.Errorf("downloading %s: %w", key, err)
	}
	defer out.Body.Close()
	return io.ReadAll(out.Body)
}

// Upload stores an object and invalidates any cached URL for the key.
func (c *Client) Upload(ctx context.Context, key, contentType string, data []byte) error {
	_, err := c.s3.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      &c.bucket,
		Key:         &key,
		Body:        bytes.NewReader(data),
		ContentType: &contentType,
	})
	if err != nil {
		return fmt.Errorf("uploading %s: %w", key, err)
	}
	c.urlCache.Invalidate(ctx, key)
	return nil
}

// Delete removes an object.
func (c *Client) Delete(ctx context.Context, key string) error {
	_, err := c.s3.DeleteObject(ctx, &s3.DeleteObjectInput{Bucket: &c.bucket, Key: &key})
	if err != nil {
		return fmt.Errorf("deleting %s: %w", key, err)
	}
	c.urlCache.Invalidate(ctx, key)
	return nil
}
