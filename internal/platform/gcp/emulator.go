package gcp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// emulatorREST talks to a storage emulator's JSON API directly. Some
// emulators return stale or oddly encoded results through the client
// library's read path.
type emulatorREST struct {
	host   string
	bucket string
	http   *http.Client
}

func newEmulatorREST(host, bucket string, client *http.Client) *emulatorREST {
	if client == nil {
		client = http.DefaultClient
	}
	return &emulatorREST{host: strings.TrimRight(strings.TrimSpace(host), "/"), bucket: bucket, http: client}
}

func (e *emulatorREST) objectURL(key string) string {
	return e.host + "/storage/v1/b/" + url.PathEscape(e.bucket) + "/o/" + url.PathEscape(key)
}

// get issues a GET and returns the body of a 200 response.
func (e *emulatorREST) get(ctx context.Context, op, key, rawURL string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("emulator %s %q: %w", op, key, err)
	}
	resp, err := e.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("emulator %s %q: %w", op, key, err)
	}
	switch resp.StatusCode {
	case http.StatusOK:
		return resp.Body, nil
	case http.StatusNotFound:
		_ = resp.Body.Close()
		return nil, fmt.Errorf("%s %q: %w", op, key, ErrObjectNotFound)
	default:
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		_ = resp.Body.Close()
		return nil, fmt.Errorf("emulator %s %q: status=%d body=%s", op, key, resp.StatusCode, strings.TrimSpace(string(snippet)))
	}
}

func (e *emulatorREST) media(ctx context.Context, key string) (io.ReadCloser, error) {
	return e.get(ctx, "download", key, e.objectURL(key)+"?alt=media")
}

func (e *emulatorREST) attrs(ctx context.Context, key string) (*ObjectAttrs, error) {
	body, err := e.get(ctx, "attrs", key, e.objectURL(key))
	if err != nil {
		return nil, err
	}
	defer body.Close()

	var payload struct {
		Size        string `json:"size"`
		ContentType string `json:"contentType"`
		Updated     string `json:"updated"`
		ETag        string `json:"etag"`
	}
	if err := json.NewDecoder(body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode emulator attrs %q: %w", key, err)
	}
	out := &ObjectAttrs{ContentType: payload.ContentType, ETag: payload.ETag}
	out.Size, _ = strconv.ParseInt(strings.TrimSpace(payload.Size), 10, 64)
	if ts, err := time.Parse(time.RFC3339, strings.TrimSpace(payload.Updated)); err == nil {
		out.Updated = ts
	}
	return out, nil
}
