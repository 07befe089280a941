// Package drive talks to the external photo store: paginated folder
// listings, folder metadata and uploads. The room actor consumes it
// through the Store interface so tests can swap in a fake.
package drive

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog/log"
)

// File is a single image file as reported by the store.
type File struct {
	ID            string     `json:"id"`
	Name          string     `json:"name"`
	MimeType      string     `json:"mimeType"`
	ThumbnailLink string     `json:"thumbnailLink,omitempty"`
	CreatedTime   time.Time  `json:"createdTime"`
	ImageMeta     *ImageMeta `json:"imageMediaMetadata,omitempty"`
}

type ImageMeta struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Store is the photo-store surface the room actor depends on.
type Store interface {
	// ListImages returns one page of image files in a folder, newest
	// first, plus the token for the next page ("" when exhausted).
	ListImages(ctx context.Context, folderRef, pageToken string, pageSize int) ([]File, string, error)
	// FolderName fetches the folder's display name.
	FolderName(ctx context.Context, folderRef string) (string, error)
	// Upload stores a new file in the folder and returns its record.
	Upload(ctx context.Context, folderRef, name, mimeType string, content io.Reader) (*File, error)
}

// TokenSource yields a currently valid bearer credential.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// Client is the HTTP implementation of Store.
type Client struct {
	baseURL    string
	uploadURL  string
	tokens     TokenSource
	httpClient *http.Client
}

func NewClient(baseURL, uploadURL string, tokens TokenSource) *Client {
	return &Client{
		baseURL:    baseURL,
		uploadURL:  uploadURL,
		tokens:     tokens,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

type listResponse struct {
	Files         []File `json:"files"`
	NextPageToken string `json:"nextPageToken"`
}

func (c *Client) ListImages(ctx context.Context, folderRef, pageToken string, pageSize int) ([]File, string, error) {
	q := url.Values{}
	q.Set("q", fmt.Sprintf("'%s' in parents and mimeType contains 'image/' and trashed = false", folderRef))
	q.Set("orderBy", "createdTime desc")
	q.Set("pageSize", fmt.Sprint(pageSize))
	q.Set("fields", "nextPageToken,files(id,name,mimeType,thumbnailLink,createdTime,imageMediaMetadata)")
	if pageToken != "" {
		q.Set("pageToken", pageToken)
	}

	body, err := c.get(ctx, "/files?"+q.Encode())
	if err != nil {
		return nil, "", err
	}
	var resp listResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, "", fmt.Errorf("decode file listing: %w", err)
	}
	return resp.Files, resp.NextPageToken, nil
}

func (c *Client) FolderName(ctx context.Context, folderRef string) (string, error) {
	body, err := c.get(ctx, "/files/"+url.PathEscape(folderRef)+"?fields=name")
	if err != nil {
		return "", err
	}
	var resp struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("decode folder metadata: %w", err)
	}
	return resp.Name, nil
}

func (c *Client) Upload(ctx context.Context, folderRef, name, mimeType string, content io.Reader) (*File, error) {
	meta, err := json.Marshal(map[string]any{
		"name":    name,
		"parents": []string{folderRef},
	})
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	metaPart, err := w.CreatePart(map[string][]string{"Content-Type": {"application/json; charset=UTF-8"}})
	if err != nil {
		return nil, err
	}
	if _, err := metaPart.Write(meta); err != nil {
		return nil, err
	}
	filePart, err := w.CreatePart(map[string][]string{"Content-Type": {mimeType}})
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(filePart, content); err != nil {
		return nil, fmt.Errorf("buffer upload body: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, err
	}

	u := c.uploadURL + "/files?uploadType=multipart&fields=id,name,mimeType,thumbnailLink,createdTime,imageMediaMetadata"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "multipart/related; boundary="+w.Boundary())

	body, err := c.do(req)
	if err != nil {
		return nil, err
	}
	var f File
	if err := json.Unmarshal(body, &f); err != nil {
		return nil, fmt.Errorf("decode upload response: %w", err)
	}
	return &f, nil
}

func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, err
	}
	return c.do(req)
}

func (c *Client) do(req *http.Request) ([]byte, error) {
	token, err := c.tokens.Token(req.Context())
	if err != nil {
		return nil, fmt.Errorf("acquire token: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	log.Debug().Str("module", "adapters.drive").Str("method", req.Method).Str("path", req.URL.Path).Msg("store request")
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("store request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read store response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("store returned %d: %s", resp.StatusCode, truncate(body, 200))
	}
	return body, nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
