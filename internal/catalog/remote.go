package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/productkb/kbctl/pkg/models"
)

// Compile-time interface guard.
var _ Repository = (*RemoteRepository)(nil)

// RemoteRepository implements Repository against the catalog's HTTP JSON
// API. Calls are sequential and carry no retry; cancellation and deadlines
// come from the caller's context.
type RemoteRepository struct {
	baseURL string
	client  *http.Client
	logger  *zap.Logger
}

// NewRemoteRepository creates a Repository talking to the API at baseURL.
func NewRemoteRepository(baseURL string, logger *zap.Logger) *RemoteRepository {
	return &RemoteRepository{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  http.DefaultClient,
		logger:  logger,
	}
}

func (r *RemoteRepository) Search(ctx context.Context, query string, limit, offset int) (*SearchResult, error) {
	limit, offset = normalizePage(limit, offset)

	params := url.Values{}
	params.Set("q", query)
	params.Set("limit", strconv.Itoa(limit))
	params.Set("offset", strconv.Itoa(offset))

	var result SearchResult
	if err := r.doJSON(ctx, http.MethodGet, "/api/search?"+params.Encode(), nil, &result); err != nil {
		return nil, err
	}
	if result.Items == nil {
		result.Items = []models.Item{}
	}
	return &result, nil
}

func (r *RemoteRepository) Create(ctx context.Context, item *models.Item) error {
	// Client-side guard; the server is the authority on the limit.
	body := item.Clone()
	body.Images = models.ClampImages(body.Images)
	return r.doJSON(ctx, http.MethodPost, "/api/items", body, nil)
}

func (r *RemoteRepository) Get(ctx context.Context, id string) (*models.Item, error) {
	var item models.Item
	if err := r.doJSON(ctx, http.MethodGet, "/api/items/"+url.PathEscape(id), nil, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *RemoteRepository) Update(ctx context.Context, id string, patch Patch) error {
	// Only fields present in the patch go on the wire, so the server
	// preserves everything else.
	body := map[string]any{}
	if patch.Name != nil {
		body["name"] = *patch.Name
	}
	if patch.Desc != nil {
		body["desc"] = *patch.Desc
	}
	if patch.Tags != nil {
		body["tags"] = patch.Tags
	}
	if patch.Images != nil {
		body["images"] = models.ClampImages(patch.Images)
	}
	return r.doJSON(ctx, http.MethodPut, "/api/items/"+url.PathEscape(id), body, nil)
}

func (r *RemoteRepository) Remove(ctx context.Context, id string) error {
	return r.doJSON(ctx, http.MethodDelete, "/api/items/"+url.PathEscape(id), nil, nil)
}

// Ping checks API reachability via the health endpoint.
func (r *RemoteRepository) Ping(ctx context.Context) error {
	return r.doJSON(ctx, http.MethodGet, "/healthz", nil, nil)
}

// doJSON issues one request. A non-nil in value is sent as a JSON body; a
// non-nil out value receives the decoded response. Non-2xx responses are
// mapped into the shared error taxonomy with the raw body text preserved.
func (r *RemoteRepository) doJSON(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, r.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	r.logger.Debug("remote request", zap.String("method", method), zap.String("path", path))

	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(resp.Body)
		return mapStatusError(resp.StatusCode, string(raw))
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}
