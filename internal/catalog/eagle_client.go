package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"
)

// itemPageSize is the page size used when listing a folder's items. The
// catalog host caps single responses, so large folders are fetched in pages.
const itemPageSize = 200

// EagleClient talks to a running Eagle application over its local HTTP API.
// Responses share an envelope: {"status": "success"|"error", "data": ...}.
type EagleClient struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewEagleClient creates a catalog client for the Eagle HTTP API at baseURL
// (typically http://localhost:41595). If logger is nil, a default logger
// will be used.
func NewEagleClient(baseURL string, timeout time.Duration, logger *slog.Logger) *EagleClient {
	if baseURL == "" {
		panic("baseURL cannot be empty")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &EagleClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger.With(slog.String("component", "catalog")),
	}
}

// Ensure EagleClient implements Catalog interface
var _ Catalog = (*EagleClient)(nil)

// envelope is the response wrapper every Eagle endpoint uses.
type envelope struct {
	Status string          `json:"status"`
	Data   json.RawMessage `json:"data"`
}

// ListItems implements Catalog.ListItems
// It fetches each folder's items in sequence and merges them, dropping
// duplicate item IDs. A folder that fails is logged and skipped so the
// remaining folders still contribute.
func (c *EagleClient) ListItems(ctx context.Context, folderIDs []string) ([]Item, error) {
	items := make([]Item, 0)
	seen := make(map[string]struct{})

	for _, folderID := range folderIDs {
		folderItems, err := c.listFolderItems(ctx, folderID)
		if err != nil {
			// Degrade this folder to an empty contribution. Context
			// cancellation still aborts the whole listing.
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			c.logger.WarnContext(ctx, "folder unavailable, skipping",
				slog.String("folder_id", folderID),
				slog.String("error", err.Error()))
			continue
		}

		for _, item := range folderItems {
			if _, dup := seen[item.ID]; dup {
				continue
			}
			seen[item.ID] = struct{}{}
			items = append(items, item)
		}
	}

	return items, nil
}

// listFolderItems pages through one folder's items.
func (c *EagleClient) listFolderItems(ctx context.Context, folderID string) ([]Item, error) {
	items := make([]Item, 0)

	for offset := 0; ; offset++ {
		query := url.Values{}
		query.Set("folders", folderID)
		query.Set("limit", fmt.Sprintf("%d", itemPageSize))
		query.Set("offset", fmt.Sprintf("%d", offset))

		var page []Item
		if err := c.get(ctx, "/api/item/list?"+query.Encode(), &page); err != nil {
			return nil, fmt.Errorf("%w: folder %s: %v", ErrFolderUnavailable, folderID, err)
		}

		items = append(items, page...)
		if len(page) < itemPageSize {
			return items, nil
		}
	}
}

// Folders implements Catalog.Folders
// It returns the catalog's full folder tree.
func (c *EagleClient) Folders(ctx context.Context) ([]Folder, error) {
	var folders []Folder
	if err := c.get(ctx, "/api/folder/list", &folders); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCatalogUnavailable, err)
	}
	return folders, nil
}

// UpdateItem implements Catalog.UpdateItem
// It writes metadata changes for one item back to the catalog.
func (c *EagleClient) UpdateItem(ctx context.Context, itemID string, update ItemUpdate) error {
	if itemID == "" {
		return ErrItemNotFound
	}

	payload := struct {
		ID string `json:"id"`
		ItemUpdate
	}{ID: itemID, ItemUpdate: update}

	if err := c.post(ctx, "/api/item/update", payload); err != nil {
		return err
	}

	c.logger.DebugContext(ctx, "item metadata updated", slog.String("item_id", itemID))
	return nil
}

func (c *EagleClient) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	return c.do(req, out)
}

func (c *EagleClient) post(ctx context.Context, path string, body any) error {
	encoded, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		c.baseURL+path,
		bytes.NewReader(encoded),
	)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(req, nil)
}

func (c *EagleClient) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrCatalogUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotFound {
		return ErrItemNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: unexpected status %d", ErrCatalogUnavailable, resp.StatusCode)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return fmt.Errorf("decoding response envelope: %w", err)
	}
	if env.Status != "success" {
		return fmt.Errorf("%w: catalog reported status %q", ErrCatalogUnavailable, env.Status)
	}

	if out != nil {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("decoding response data: %w", err)
		}
	}

	return nil
}
