/* Copyright (c) 2013 The s3cache AUTHORS. All rights reserved.
 * Copyright © 2025 ConfusedSammie. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 *
 * Package s3cache provides an implementation of httpcache.Cache that
 * stores and retrieves data using Amazon S3. Derived from
 * github.com/sourcegraph/s3cache, ported to aws-sdk-go-v2.
 */
package s3cache

import (
	"bytes"
	"compress/gzip"
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
	"go.uber.org/zap"
)

// Cache objects store and retrieve data using Amazon S3.
type Cache struct {
	// Client is the s3 client used when interacting with S3. Initialized
	// in Init() from the default AWS config; callers can override it
	// before use if they need different credentials.
	Client *s3.Client

	bucketName string

	// gzip indicates whether cache entries are compressed in Set and
	// decompressed in Get. When true, object keys carry a ".gz" suffix.
	gzip bool

	logger *zap.SugaredLogger

	ctx context.Context
}

// New returns a Cache backed by the named S3 bucket. Callers must invoke
// Init() on the returned Cache before use.
func New(ctx context.Context, bucketName string, gzipEntries bool,
	logger *zap.Logger) *Cache {

	if logger == nil {
		logger = zap.NewNop()
	}
	return &Cache{
		ctx:        ctx,
		bucketName: bucketName,
		gzip:       gzipEntries,
		logger:     logger.Sugar(),
	}
}

// Init loads the default AWS configuration (environment variables,
// shared credentials files) and verifies the bucket is reachable.
func (c *Cache) Init() error {
	cfg, err := awsconfig.LoadDefaultConfig(c.ctx)
	if err != nil {
		return fmt.Errorf("s3cache.init: failed to load AWS config: %w", err)
	}
	c.Client = s3.NewFromConfig(cfg)

	if _, err = c.Client.HeadBucket(c.ctx, &s3.HeadBucketInput{
		Bucket: aws.String(c.bucketName),
	}); err != nil {
		return fmt.Errorf("s3cache.init: head bucket failed for %s: %w",
			c.bucketName, err)
	}
	if _, err = c.Client.ListObjectsV2(c.ctx, &s3.ListObjectsV2Input{
		Bucket:  aws.String(c.bucketName),
		MaxKeys: aws.Int32(1),
	}); err != nil {
		return fmt.Errorf("s3cache.init: list objects failed for %s: %w",
			c.bucketName, err)
	}

	return nil
}

func (c *Cache) Get(key string) ([]byte, bool) {
	input := &s3.GetObjectInput{
		Bucket: aws.String(c.bucketName),
		Key:    aws.String(c.objectKey(key)),
	}

	resp, err := c.Client.GetObject(c.ctx, input)
	if err != nil {
		var apiErr smithy.APIError
		// NoSuchKey is just a cache miss
		if !(errors.As(err, &apiErr) && apiErr.ErrorCode() == "NoSuchKey") {
			c.logger.Warnw("s3cache get failed", "key", *input.Key, "error", err)
		}
		return nil, false
	}
	defer resp.Body.Close()

	rdr := resp.Body
	if c.gzip {
		rdr, err = gzip.NewReader(rdr)
		if err != nil {
			c.logger.Warnw("s3cache gunzip failed", "key", *input.Key,
				"error", err)
			return nil, false
		}
		defer rdr.Close()
	}

	data, err := io.ReadAll(rdr)
	if err != nil {
		c.logger.Warnw("s3cache read failed", "key", *input.Key, "error", err)
		return nil, false
	}

	return data, true
}

// Set stores the provided data in the cache under the given key.
func (c *Cache) Set(key string, data []byte) {
	input := &s3.PutObjectInput{
		Bucket: aws.String(c.bucketName),
		Key:    aws.String(c.objectKey(key)),
		Body:   bytes.NewReader(data),
	}

	if c.gzip {
		var buf bytes.Buffer
		gw := gzip.NewWriter(&buf)
		if _, err := gw.Write(data); err != nil {
			c.logger.Warnw("s3cache gzip failed", "key", *input.Key,
				"error", err)
			return
		}
		if err := gw.Close(); err != nil {
			c.logger.Warnw("s3cache gzip close failed", "key", *input.Key,
				"error", err)
			return
		}
		input.Body = &buf
		input.ContentEncoding = aws.String("gzip")
	}

	if _, err := c.Client.PutObject(c.ctx, input); err != nil {
		c.logger.Warnw("s3cache put failed", "key", *input.Key, "error", err)
	}
}

func (c *Cache) Delete(key string) {
	if _, err := c.Client.DeleteObject(c.ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(c.bucketName),
		Key:    aws.String(c.objectKey(key)),
	}); err != nil {
		c.logger.Warnw("s3cache delete failed", "key", key, "error", err)
	}
}

func (c *Cache) objectKey(key string) string {
	const pathPrefix = "s3cache"

	h := md5.New()
	io.WriteString(h, key)
	objKey := fmt.Sprintf("/%v/%v", pathPrefix, hex.EncodeToString(h.Sum(nil)))
	if c.gzip {
		objKey += ".gz"
	}

	return objKey
}
