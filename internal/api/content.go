package api

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/google/go-querystring/query"
)

// ContentFilters narrows a content listing. Encoded onto the query string
// with go-querystring; zero values are omitted.
type ContentFilters struct {
	Page     int    `url:"page,omitempty"`
	PageSize int    `url:"page_size,omitempty"`
	Category string `url:"category,omitempty"`
	Search   string `url:"search,omitempty"`
}

type ContentItem struct {
	ID          int64     `json:"id"`
	Slug        string    `json:"slug"`
	Title       string    `json:"title"`
	Excerpt     string    `json:"excerpt"`
	Category    string    `json:"category"`
	Author      string    `json:"author"`
	CoverURL    string    `json:"coverUrl"`
	PublishedAt time.Time `json:"publishedAt"`
}

type ContentList struct {
	Items []ContentItem `json:"items"`
	Total int           `json:"total"`
}

// Content is a single piece with its server-rendered HTML body.
type Content struct {
	ContentItem
	BodyHTML string `json:"content"`
}

type contentEnvelope struct {
	Content Content `json:"content"`
}

func (c *Client) GetAllContent(ctx context.Context, contentType string, filters ContentFilters) (*ContentList, error) {
	values, err := query.Values(filters)
	if err != nil {
		return nil, &Error{Err: fmt.Errorf("failed to encode filters: %w", err)}
	}
	values.Set("type", contentType)

	var list ContentList
	if err := c.do(ctx, "GET", "/content", values, nil, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

func (c *Client) GetContentBySlug(ctx context.Context, slug string) (*Content, error) {
	var envelope contentEnvelope
	if err := c.do(ctx, "GET", "/content/"+url.PathEscape(slug), nil, nil, &envelope); err != nil {
		return nil, err
	}
	return &envelope.Content, nil
}
