package remote

import (
	"context"
	"net/http"
	"net/url"

	"tillpos/internal/domain/catalog"
)

// CatalogClient implements catalog.RemoteAPI against the sync endpoints.
type CatalogClient struct {
	*Client
}

func NewCatalogClient(c *Client) *CatalogClient {
	return &CatalogClient{Client: c}
}

type syncMetadata struct {
	SyncTimestamp string `json:"sync_timestamp"`
}

type fullCatalogResponse struct {
	Products   []catalog.Product  `json:"products"`
	Categories []catalog.Category `json:"categories"`
	Metadata   syncMetadata       `json:"metadata"`
}

type deltaResponse struct {
	Updates  []catalog.Change `json:"updates"`
	Metadata syncMetadata     `json:"metadata"`
}

// FetchCatalog pulls the entire catalog for a full sync.
func (c *CatalogClient) FetchCatalog(ctx context.Context) (*catalog.FullCatalog, error) {
	query := url.Values{"mode": {"full"}}

	var resp fullCatalogResponse
	if err := c.doJSON(ctx, http.MethodGet, "/catalog", query, nil, &resp); err != nil {
		return nil, err
	}

	return &catalog.FullCatalog{
		Products:      resp.Products,
		Categories:    resp.Categories,
		SyncTimestamp: resp.Metadata.SyncTimestamp,
	}, nil
}

// FetchChanges pulls records changed since the stored cursor.
func (c *CatalogClient) FetchChanges(ctx context.Context, since string) (*catalog.Delta, error) {
	query := url.Values{"since": {since}}

	var resp deltaResponse
	if err := c.doJSON(ctx, http.MethodGet, "/catalog", query, nil, &resp); err != nil {
		return nil, err
	}

	return &catalog.Delta{
		Updates:       resp.Updates,
		SyncTimestamp: resp.Metadata.SyncTimestamp,
	}, nil
}
