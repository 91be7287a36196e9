// Package client is a typed HTTP client for the blog API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"blogcore/internal/models"

	"github.com/charmbracelet/log"
)

const defaultTimeout = 30 * time.Second

// APIError is returned for any non-2xx response.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Message)
}

func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	logger     *log.Logger
}

type Option func(*Client)

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) { c.httpClient = httpClient }
}

// WithToken sends token as a bearer Authorization header.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

func WithLogger(logger *log.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// New returns a client for the API mounted at baseURL, e.g.
// "http://localhost:8080/api".
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
		logger:     log.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.WithPrefix("client")
	return c
}

type postsEnvelope struct {
	Posts []models.EnrichedPost `json:"posts"`
}

type postEnvelope struct {
	Post models.EnrichedPost `json:"post"`
}

type commentEnvelope struct {
	Comment models.Comment `json:"comment"`
}

type replyEnvelope struct {
	Reply models.Reply `json:"reply"`
}

type qrEnvelope struct {
	QRImageURL *string `json:"qrImageUrl"`
}

func (c *Client) FetchPosts(ctx context.Context) ([]models.EnrichedPost, error) {
	var env postsEnvelope
	if err := c.do(ctx, http.MethodGet, "/posts", nil, &env); err != nil {
		return nil, err
	}

	posts := env.Posts
	if posts == nil {
		posts = []models.EnrichedPost{}
	}
	for i := range posts {
		normalizePost(&posts[i])
	}
	return posts, nil
}

// FetchPost returns nil without an error when the post does not exist.
func (c *Client) FetchPost(ctx context.Context, postID string) (*models.EnrichedPost, error) {
	var env postEnvelope
	err := c.do(ctx, http.MethodGet, postPath(postID), nil, &env)
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}

	normalizePost(&env.Post)
	return &env.Post, nil
}

func (c *Client) CreatePost(ctx context.Context, req models.CreatePostRequest) (*models.EnrichedPost, error) {
	var env postEnvelope
	if err := c.do(ctx, http.MethodPost, "/posts", req, &env); err != nil {
		return nil, err
	}

	normalizePost(&env.Post)
	return &env.Post, nil
}

func (c *Client) DeletePost(ctx context.Context, postID string) error {
	return c.do(ctx, http.MethodDelete, postPath(postID), nil, nil)
}

func (c *Client) AddComment(ctx context.Context, postID, author, content string) (*models.Comment, error) {
	var env commentEnvelope
	body := models.CreateCommentRequest{Author: author, Content: content}
	if err := c.do(ctx, http.MethodPost, postPath(postID)+"/comments", body, &env); err != nil {
		return nil, err
	}

	if env.Comment.Replies == nil {
		env.Comment.Replies = []models.Reply{}
	}
	return &env.Comment, nil
}

func (c *Client) DeleteComment(ctx context.Context, postID, commentID string) error {
	return c.do(ctx, http.MethodDelete, commentPath(postID, commentID), nil, nil)
}

func (c *Client) AddReply(ctx context.Context, postID, commentID, author, content string) (*models.Reply, error) {
	var env replyEnvelope
	body := models.CreateReplyRequest{Author: author, Content: content}
	if err := c.do(ctx, http.MethodPost, commentPath(postID, commentID)+"/replies", body, &env); err != nil {
		return nil, err
	}
	return &env.Reply, nil
}

func (c *Client) DeleteReply(ctx context.Context, postID, commentID, replyID string) error {
	path := commentPath(postID, commentID) + "/replies/" + url.PathEscape(replyID)
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

// FetchQR returns nil when no QR image is set or when the request fails.
func (c *Client) FetchQR(ctx context.Context) *string {
	var env qrEnvelope
	if err := c.do(ctx, http.MethodGet, "/settings/qr", nil, &env); err != nil {
		c.logger.Warn("fetch qr image", "err", err)
		return nil
	}
	return nonEmpty(env.QRImageURL)
}

func (c *Client) UploadQR(ctx context.Context, imageData string) (*string, error) {
	var env qrEnvelope
	body := models.QRImageRequest{ImageData: imageData}
	if err := c.do(ctx, http.MethodPost, "/settings/qr", body, &env); err != nil {
		return nil, err
	}
	return nonEmpty(env.QRImageURL), nil
}

func (c *Client) DeleteQR(ctx context.Context) error {
	return c.do(ctx, http.MethodDelete, "/settings/qr", nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeAPIError(resp)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s response: %w", method, path, err)
	}
	return nil
}

func decodeAPIError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))

	var body struct {
		Error string `json:"error"`
	}
	message := strings.TrimSpace(string(raw))
	if json.Unmarshal(raw, &body) == nil && body.Error != "" {
		message = body.Error
	}
	if message == "" {
		message = http.StatusText(resp.StatusCode)
	}

	return &APIError{StatusCode: resp.StatusCode, Message: message}
}

func postPath(postID string) string {
	return "/posts/" + url.PathEscape(postID)
}

func commentPath(postID, commentID string) string {
	return postPath(postID) + "/comments/" + url.PathEscape(commentID)
}

func nonEmpty(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	return s
}

func normalizePost(p *models.EnrichedPost) {
	p.Normalize()
	if p.MediaURL != nil && *p.MediaURL == "" {
		p.MediaURL = nil
	}
}
