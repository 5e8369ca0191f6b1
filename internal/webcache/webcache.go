/* Copyright © 2025 ConfusedSammie. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */

// Package webcache builds http.Clients that cache responses with a
// client-side TTL, backed by S3 when a bucket is configured and by an
// in-memory cache otherwise.
package webcache

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gregjones/httpcache"
	"go.uber.org/zap"

	"github.com/ConfusedSammie/MontrealBot/s3cache"
)

// httpcache only caches GET and HEAD, but GraphQL queries travel as
// POSTs. A POST with a body is presented to the cache as a GET whose
// URL carries a digest of the body, then restored to the original POST
// below the cache so the origin never sees the rewrite.
const (
	postDigestParam = "bodysum"
	postBodyHeader  = "X-Webcache-Post-Body"
)

// NewClient returns an http.Client that caches via httpcache, POST
// queries included. When bucket is non-empty and the S3 cache
// initializes, entries persist across restarts; otherwise the cache is
// process-local memory. The TTL is enforced by rewriting origin cache
// headers, since origins routinely send cache-busting headers for
// content that is effectively immutable (e.g. slug to event-id
// mappings).
func NewClient(ctx context.Context, bucket string, maxAge time.Duration,
	logger *zap.Logger) *http.Client {

	if logger == nil {
		logger = zap.NewNop()
	}

	var cache httpcache.Cache
	if bucket != "" {
		s3c := s3cache.New(ctx, bucket, true, logger)
		if err := s3c.Init(); err != nil {
			logger.Warn("webcache: S3 cache init failed; using memory cache",
				zap.String("bucket", bucket), zap.Error(err))
			cache = httpcache.NewMemoryCache()
		} else {
			cache = s3c
		}
	} else {
		cache = httpcache.NewMemoryCache()
	}

	hc := httpcache.NewTransport(cache)
	hc.Transport = &headerOverrideTransport{
		wrapped: &postRestoreTransport{wrapped: http.DefaultTransport},
		response: func(resp *http.Response) error {
			// Strip any cache-busting headers from origin, then enforce
			// the provided TTL.
			resp.Header.Del("Pragma")
			resp.Header.Del("Expires")
			resp.Header.Del("Cache-Control")
			resp.Header.Set("Cache-Control",
				fmt.Sprintf("public, max-age=%d", int(maxAge/time.Second)))
			return nil
		},
	}

	return &http.Client{Transport: &postDigestTransport{wrapped: hc}}
}

// postDigestTransport sits above the cache and rewrites body-carrying
// POSTs into cacheable GETs: the body digest joins the URL as the cache
// key and the body itself rides a header so the request can be restored
// before reaching the origin.
type postDigestTransport struct {
	wrapped http.RoundTripper
}

func (t *postDigestTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Method != http.MethodPost || req.Body == nil {
		return t.wrapped.RoundTrip(req)
	}

	body, err := io.ReadAll(req.Body)
	req.Body.Close()
	if err != nil {
		return nil, fmt.Errorf("unable to read request body: %w", err)
	}

	sum := sha256.Sum256(body)
	u := *req.URL
	query := u.Query()
	query.Set(postDigestParam, hex.EncodeToString(sum[:]))
	u.RawQuery = query.Encode()

	req2 := req.Clone(req.Context())
	req2.Method = http.MethodGet
	req2.URL = &u
	req2.Body = nil
	req2.ContentLength = 0
	req2.Header.Set(postBodyHeader, base64.StdEncoding.EncodeToString(body))

	return t.wrapped.RoundTrip(req2)
}

// postRestoreTransport sits below the cache and undoes the
// postDigestTransport rewrite on cache misses, so the origin receives
// the POST exactly as the caller built it.
type postRestoreTransport struct {
	wrapped http.RoundTripper
}

func (t *postRestoreTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	encoded := req.Header.Get(postBodyHeader)
	if encoded == "" {
		return t.wrapped.RoundTrip(req)
	}

	body, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("unable to restore request body: %w", err)
	}

	u := *req.URL
	query := u.Query()
	query.Del(postDigestParam)
	u.RawQuery = query.Encode()

	req2 := req.Clone(req.Context())
	req2.Method = http.MethodPost
	req2.URL = &u
	req2.Header.Del(postBodyHeader)
	req2.ContentLength = int64(len(body))
	req2.Body = io.NopCloser(bytes.NewReader(body))
	req2.GetBody = func() (io.ReadCloser, error) {
		return io.NopCloser(bytes.NewReader(body)), nil
	}

	return t.wrapped.RoundTrip(req2)
}

type headerOverrideTransport struct {
	request  func(req *http.Request)
	response func(resp *http.Response) error

	wrapped http.RoundTripper
}

// RoundTrip applies request and response hooks around the underlying
// transport.
func (t *headerOverrideTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	// clone so we don't stomp on the caller's original
	req2 := req.Clone(req.Context())
	if t.request != nil {
		t.request(req2)
	}

	resp, err := t.wrapped.RoundTrip(req2)
	if err != nil {
		return nil, err
	}

	if t.response != nil {
		if err := t.response(resp); err != nil {
			return nil, err
		}
	}
	return resp, nil
}
