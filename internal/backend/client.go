package backend

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
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"localmart/internal/marketerrors"
	"localmart/internal/models"
)

// Config configures the REST backend client.
type Config struct {
	BaseURL string
	APIKey  string
	// Optional; defaults are used when nil.
	HTTPClient *http.Client
	Dialer     *websocket.Dialer
}

// Client talks to the managed backend over its REST and realtime APIs.
// The API key is attached to every request.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	dialer  *websocket.Dialer
}

// NewClient creates a backend client.
func NewClient(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("backend base URL is required")
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("backend API key is required")
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	dialer := cfg.Dialer
	if dialer == nil {
		dialer = &websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		http:    httpClient,
		dialer:  dialer,
	}, nil
}

// Query fetches the documents matching q.
func (c *Client) Query(ctx context.Context, q Query) ([]Document, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	var docs []Document
	path := "/rest/v1/" + url.PathEscape(q.Collection)
	if err := c.do(ctx, http.MethodGet, path, encodeQuery(q), nil, &docs); err != nil {
		return nil, err
	}
	return docs, nil
}

// Create stores a new document and returns its backend-assigned id.
func (c *Client) Create(ctx context.Context, collection string, doc Document) (string, error) {
	if collection == "" {
		return "", fmt.Errorf("%w: missing collection", marketerrors.ErrInvalidQuery)
	}
	var created Document
	path := "/rest/v1/" + url.PathEscape(collection)
	if err := c.do(ctx, http.MethodPost, path, nil, doc, &created); err != nil {
		return "", err
	}
	if created.ID() == "" {
		return "", fmt.Errorf("%w: create response carries no id", marketerrors.ErrTransport)
	}
	return created.ID(), nil
}

// Patch merges the given fields into an existing document. Fields absent from
// patch are left untouched.
func (c *Client) Patch(ctx context.Context, collection, id string, patch Document) error {
	if collection == "" || id == "" {
		return fmt.Errorf("%w: missing collection or id", marketerrors.ErrInvalidQuery)
	}
	path := "/rest/v1/" + url.PathEscape(collection) + "/" + url.PathEscape(id)
	return c.do(ctx, http.MethodPatch, path, nil, patch, nil)
}

// Delete removes a document by id.
func (c *Client) Delete(ctx context.Context, collection, id string) error {
	if collection == "" || id == "" {
		return fmt.Errorf("%w: missing collection or id", marketerrors.ErrInvalidQuery)
	}
	path := "/rest/v1/" + url.PathEscape(collection) + "/" + url.PathEscape(id)
	return c.do(ctx, http.MethodDelete, path, nil, nil, nil)
}

// Upload stores a blob and returns its public URL.
func (c *Client) Upload(ctx context.Context, path, contentType string, r io.Reader) (string, error) {
	if path == "" {
		return "", fmt.Errorf("%w: missing blob path", marketerrors.ErrInvalidQuery)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("reading blob data: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/storage/v1/"+escapeBlobPath(path), bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("building upload request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	c.authorize(req.Header)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", marketerrors.ErrTransport, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return "", statusError(resp)
	}
	var out struct {
		URL string `json:"url"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("%w: decoding upload response: %v", marketerrors.ErrTransport, err)
	}
	return out.URL, nil
}

// DeleteBlob removes a stored blob by path.
func (c *Client) DeleteBlob(ctx context.Context, path string) error {
	if path == "" {
		return fmt.Errorf("%w: missing blob path", marketerrors.ErrInvalidQuery)
	}
	return c.do(ctx, http.MethodDelete, "/storage/v1/"+escapeBlobPath(path), nil, nil, nil)
}

// Verify resolves a bearer token to the signed-in user.
func (c *Client) Verify(ctx context.Context, token string) (models.User, error) {
	if token == "" {
		return models.User{}, fmt.Errorf("%w: missing token", marketerrors.ErrPermission)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/auth/v1/user", nil)
	if err != nil {
		return models.User{}, fmt.Errorf("building auth request: %w", err)
	}
	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.http.Do(req)
	if err != nil {
		return models.User{}, fmt.Errorf("%w: %v", marketerrors.ErrTransport, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return models.User{}, statusError(resp)
	}
	var out struct {
		ID          string `json:"id"`
		Email       string `json:"email"`
		DisplayName string `json:"display_name"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return models.User{}, fmt.Errorf("%w: decoding user: %v", marketerrors.ErrTransport, err)
	}
	return models.User{UserID: out.ID, Email: out.Email, DisplayName: out.DisplayName}, nil
}

// Watch opens a realtime subscription for q. Every server-side change on the
// matched collection delivers the full current result set as one snapshot.
func (c *Client) Watch(ctx context.Context, q Query) (Listener, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	u, err := url.Parse(c.baseURL + "/realtime/v1/" + url.PathEscape(q.Collection))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", marketerrors.ErrTransport, err)
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	u.RawQuery = encodeQuery(q).Encode()

	header := http.Header{}
	c.authorize(header)
	conn, resp, err := c.dialer.DialContext(ctx, u.String(), header)
	if err != nil {
		if resp != nil {
			resp.Body.Close()
		}
		return nil, fmt.Errorf("%w: dialing realtime endpoint: %v", marketerrors.ErrTransport, err)
	}
	if resp != nil {
		resp.Body.Close()
	}

	l := &wsListener{
		conn:  conn,
		snaps: make(chan []Document, 1),
		errs:  make(chan error, 1),
		done:  make(chan struct{}),
	}
	go l.run()
	return l, nil
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}
	full := c.baseURL + path
	if len(query) > 0 {
		full += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, full, reader)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	c.authorize(req.Header)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", marketerrors.ErrTransport, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return statusError(resp)
	}
	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decoding response: %v", marketerrors.ErrTransport, err)
	}
	return nil
}

func (c *Client) authorize(h http.Header) {
	h.Set("apikey", c.apiKey)
	h.Set("Authorization", "Bearer "+c.apiKey)
}

// statusError maps an HTTP error response to the shared error taxonomy.
func statusError(resp *http.Response) error {
	msg := http.StatusText(resp.StatusCode)
	var body struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, 4096)).Decode(&body); err == nil && body.Error != "" {
		msg = body.Error
	}
	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return fmt.Errorf("%w: %s", marketerrors.ErrPermission, msg)
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%w: %s", marketerrors.ErrNotFound, msg)
	case resp.StatusCode < 500:
		return fmt.Errorf("%w: %s", marketerrors.ErrValidation, msg)
	default:
		return fmt.Errorf("%w: %s", marketerrors.ErrTransport, msg)
	}
}

// encodeQuery renders a Query as the backend's filter query string.
func encodeQuery(q Query) url.Values {
	v := url.Values{}
	for _, f := range q.Filters {
		v.Add(f.Field, "eq."+fmt.Sprint(f.Value))
	}
	if len(q.IDs) > 0 {
		v.Set("id", "in.("+strings.Join(q.IDs, ",")+")")
	}
	if q.Sort.Field != "" {
		dir := "asc"
		if q.Sort.Desc {
			dir = "desc"
		}
		v.Set("order", q.Sort.Field+"."+dir)
	}
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	if q.StartAfter != "" {
		v.Set("after", q.StartAfter)
	}
	return v
}

func escapeBlobPath(path string) string {
	parts := strings.Split(path, "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return strings.Join(parts, "/")
}

// wsListener adapts a websocket connection to the Listener interface.
type wsListener struct {
	conn  *websocket.Conn
	snaps chan []Document
	errs  chan error
	once  sync.Once
	done  chan struct{}
}

type wsFrame struct {
	Items []Document `json:"items"`
	Error string     `json:"error"`
}

func (l *wsListener) run() {
	for {
		var frame wsFrame
		if err := l.conn.ReadJSON(&frame); err != nil {
			select {
			case <-l.done:
			case l.errs <- fmt.Errorf("%w: %v", marketerrors.ErrTransport, err):
			}
			return
		}
		if frame.Error != "" {
			select {
			case <-l.done:
				return
			case l.errs <- fmt.Errorf("%w: %s", marketerrors.ErrTransport, frame.Error):
			}
			continue
		}
		select {
		case <-l.done:
			return
		case l.snaps <- frame.Items:
		}
	}
}

func (l *wsListener) Snapshots() <-chan []Document { return l.snaps }
func (l *wsListener) Errors() <-chan error         { return l.errs }

func (l *wsListener) Stop() {
	l.once.Do(func() {
		close(l.done)
		l.conn.Close()
	})
}
