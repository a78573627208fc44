package inboxclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/anonto42/reelnote/backend/internal/inbox"
	"github.com/anonto42/reelnote/backend/internal/models"
	"github.com/anonto42/reelnote/backend/internal/notify"
)

const apiPrefix = "/api/v1"

// Client talks to the inbox API on behalf of one signed-in user. It
// implements the inbox Pager, Lookups, ReadMarker and UnreadCounter.
// The user is identified by the ID token, so userID arguments are only
// used by callers for logging.
type Client struct {
	httpClient *http.Client
	baseURL    string
	idToken    string
}

// New creates a client for baseURL (e.g. "http://localhost:8080").
func New(baseURL, idToken string) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		baseURL: baseURL,
		idToken: idToken,
	}
}

// StatusError is returned for non-2xx responses.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("inbox api: status=%d, body=%s", e.StatusCode, e.Body)
}

// Unwrap lets callers match a 404 with errors.Is(err, notify.ErrNotFound).
func (e *StatusError) Unwrap() error {
	if e.StatusCode == http.StatusNotFound {
		return notify.ErrNotFound
	}
	return nil
}

// PageNotifications fetches one page of canonical notifications.
func (c *Client) PageNotifications(ctx context.Context, _, workspaceID string, after *inbox.Cursor, limit int) ([]models.Notification, error) {
	q := url.Values{}
	q.Set("limit", strconv.Itoa(limit))
	if token := after.Token(); token != "" {
		q.Set("cursor", token)
	}

	var page models.NotificationPage
	path := "/workspaces/" + url.PathEscape(workspaceID) + "/notifications?" + q.Encode()
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &page); err != nil {
		return nil, err
	}
	return page.Notifications, nil
}

func (c *Client) VideoMeta(ctx context.Context, videoID string) (models.VideoMeta, error) {
	var meta models.VideoMeta
	err := c.doJSON(ctx, http.MethodGet, "/videos/"+url.PathEscape(videoID), nil, &meta)
	return meta, err
}

func (c *Client) SenderName(ctx context.Context, userID string) (string, error) {
	var user models.UserCompact
	if err := c.doJSON(ctx, http.MethodGet, "/users/"+url.PathEscape(userID), nil, &user); err != nil {
		return "", err
	}
	return user.DisplayName, nil
}

func (c *Client) IsRead(ctx context.Context, _, notificationID string) (bool, error) {
	var state models.ReadState
	if err := c.doJSON(ctx, http.MethodGet, "/notifications/"+url.PathEscape(notificationID)+"/state", nil, &state); err != nil {
		return false, err
	}
	return state.IsRead, nil
}

func (c *Client) MarkRead(ctx context.Context, _, notificationID string) error {
	return c.doJSON(ctx, http.MethodPut, "/notifications/"+url.PathEscape(notificationID)+"/read", nil, nil)
}

func (c *Client) UnreadCount(ctx context.Context, _ string) (int, error) {
	var count models.UnreadCount
	if err := c.doJSON(ctx, http.MethodGet, "/notifications/unread-count", nil, &count); err != nil {
		return 0, err
	}
	return count.Count, nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, body any, result any) error {
	var bodyReader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		bodyReader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+apiPrefix+path, bodyReader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.idToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(resp.Body)
		return &StatusError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("decode response body: %w", err)
		}
	}
	return nil
}
