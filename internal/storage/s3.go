// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package storage

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// S3 stores uploads in a public-read bucket on an S3-compatible service,
// using path-style addressing (required by CEPH/Hetzner/MinIO).
type S3 struct {
	s3        *s3.Client
	bucket    string
	endpoint  string
	publicURL string // optional CDN/direct URL for objects
}

// NewS3 creates an S3 store. Returns an error when endpoint, credentials
// or bucket are missing, since the caller explicitly asked for S3.
func NewS3(endpoint, region, accessKey, secretKey, bucket, publicURL string) (*S3, error) {
	if endpoint == "" || accessKey == "" || secretKey == "" || bucket == "" {
		return nil, fmt.Errorf("s3 storage requires endpoint, credentials and bucket")
	}
	if region == "" {
		region = "us-east-1"
	}

	endpoint = strings.TrimRight(endpoint, "/")

	client := s3.New(s3.Options{
		Region:       region,
		BaseEndpoint: aws.String(endpoint),
		Credentials:  credentials.NewStaticCredentialsProvider(accessKey, secretKey, ""),
		UsePathStyle: true,
	})

	return &S3{
		s3:        client,
		bucket:    bucket,
		endpoint:  endpoint,
		publicURL: strings.TrimRight(publicURL, "/"),
	}, nil
}

// Name implements Store.
func (c *S3) Name() string { return "s3" }

// Put uploads the object with a public-read ACL and returns its URL.
func (c *S3) Put(ctx context.Context, key, contentType string, body io.Reader, size int64) (string, error) {
	key, err := cleanKey(key)
	if err != nil {
		return "", err
	}

	_, err = c.s3.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(c.bucket),
		Key:           aws.String(objectKey(key)),
		Body:          body,
		ContentLength: aws.Int64(size),
		ContentType:   aws.String(contentType),
		ACL:           s3types.ObjectCannedACLPublicRead,
	})
	if err != nil {
		return "", fmt.Errorf("s3 upload %s/%s: %w", c.bucket, key, err)
	}
	return c.FileURL(key), nil
}

// Delete removes the object. S3 reports success for missing keys.
func (c *S3) Delete(ctx context.Context, key string) error {
	key, err := cleanKey(key)
	if err != nil {
		return err
	}
	_, err = c.s3.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(objectKey(key)),
	})
	if err != nil {
		return fmt.Errorf("s3 delete %s/%s: %w", c.bucket, key, err)
	}
	return nil
}

// FileURL returns the public URL of a stored file. Uses the configured
// public URL if set, otherwise builds a path-style URL.
func (c *S3) FileURL(key string) string {
	if c.publicURL != "" {
		return c.publicURL + "/" + objectKey(key)
	}
	return c.endpoint + "/" + c.bucket + "/" + objectKey(key)
}

// Handler redirects /uploads/<key> to the object's public URL so links
// created while disk storage was active keep working.
func (c *S3) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key, err := cleanKey(strings.TrimPrefix(r.URL.Path, URLPrefix+"/"))
		if err != nil {
			http.NotFound(w, r)
			return
		}
		http.Redirect(w, r, c.FileURL(key), http.StatusFound)
	})
}

func objectKey(key string) string {
	return "uploads/" + key
}
