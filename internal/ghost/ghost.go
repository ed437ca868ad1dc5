package ghost

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"dietmind/internal/config"

	"github.com/golang-jwt/jwt/v5"
)

const (
	postsPath = "/ghost/api/admin/posts/?source=html"
	// tokenTTL is the longest lifetime the Admin API accepts.
	tokenTTL = 5 * time.Minute
)

// Post is a post as returned by the Admin API.
type Post struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	HTML      string `json:"html"`
	URL       string `json:"url"`
	UpdatedAt string `json:"updated_at"`
}

// PostsResponse is the envelope the Admin API wraps posts in.
type PostsResponse struct {
	Posts []Post `json:"posts"`
}

// NewPost describes a post to create.
type NewPost struct {
	Title   string
	HTML    string
	Excerpt string
	Tags    []string
	Publish bool
}

type postPayload struct {
	Title         string   `json:"title"`
	HTML          string   `json:"html"`
	Status        string   `json:"status"`
	CustomExcerpt string   `json:"custom_excerpt,omitempty"`
	Tags          []string `json:"tags,omitempty"`
}

// Client creates posts on a Ghost blog.
type Client interface {
	CreatePost(ctx context.Context, post NewPost) (*Post, error)
}

type adminClient struct {
	httpClient *http.Client
	baseURL    string
	adminKey   string
}

// NewClient creates an Admin API client for cfg.GhostURL.
func NewClient(cfg *config.Config) Client {
	return &adminClient{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    strings.TrimRight(cfg.GhostURL, "/"),
		adminKey:   cfg.GhostAdminKey,
	}
}

// CreatePost creates a draft, or a published post when post.Publish is set.
func (c *adminClient) CreatePost(ctx context.Context, post NewPost) (*Post, error) {
	token, err := c.adminToken(time.Now())
	if err != nil {
		return nil, fmt.Errorf("failed to create admin token: %w", err)
	}

	payload := postPayload{
		Title:         post.Title,
		HTML:          post.HTML,
		Status:        "draft",
		CustomExcerpt: post.Excerpt,
		Tags:          post.Tags,
	}
	if post.Publish {
		payload.Status = "published"
	}

	body, err := json.Marshal(map[string][]postPayload{"posts": {payload}})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal post: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+postsPath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Ghost "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("admin api error: status %d, body: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var out PostsResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if len(out.Posts) == 0 {
		return nil, fmt.Errorf("no post returned from api")
	}
	return &out.Posts[0], nil
}

// adminToken signs a short-lived Admin API JWT with the key's secret.
// Admin keys have the form "<id>:<hex secret>".
func (c *adminClient) adminToken(now time.Time) (string, error) {
	id, secretHex, ok := strings.Cut(c.adminKey, ":")
	if !ok || id == "" || secretHex == "" {
		return "", fmt.Errorf("invalid admin key format: expected id:secret")
	}

	secret, err := hex.DecodeString(secretHex)
	if err != nil {
		return "", fmt.Errorf("failed to decode secret hex: %w", err)
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
		Audience:  jwt.ClaimStrings{"/admin/"},
	})
	token.Header["kid"] = id

	return token.SignedString(secret)
}
