// Package github fetches repository metadata, READMEs and file trees from the
// GitHub REST API.
package github

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"

	"github.com/Meet0105/repoza-sub001/internal/core/config"
	"github.com/Meet0105/repoza-sub001/internal/core/kv"
)

var (
	ErrNotFound     = errors.New("repository not found")
	ErrRateLimited  = errors.New("github rate limit exceeded")
	ErrUnauthorized = errors.New("github token rejected")
)

const (
	cacheNamespace = "analysis"
	userAgent      = "repoza"
	maxBodyBytes   = 16 << 20
)

// StatusError is returned for unexpected HTTP responses.
type StatusError struct {
	Endpoint string
	Status   int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("github %s: unexpected status %d", e.Endpoint, e.Status)
}

// Client talks to the GitHub REST API. The zero value is not usable; use New.
type Client struct {
	baseURL  string
	token    string
	http     *http.Client
	exclude  []string
	cache    *kv.TypedKV[Analysis]
	cacheTTL time.Duration
	now      func() time.Time
	logger   zerolog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithCache caches analyses in store for ttl. A zero ttl disables caching.
func WithCache(store kv.KV, ttl time.Duration) Option {
	return func(c *Client) {
		if store == nil || ttl <= 0 {
			return
		}
		c.cache = kv.Scoped[Analysis](store, cacheNamespace)
		c.cacheTTL = ttl
	}
}

// WithLogger sets the client logger.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// New creates a client from the github section of the config.
func New(cfg config.GitHubConfig, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(cfg.APIURL, "/"),
		token:   cfg.Token,
		http:    &http.Client{Timeout: cfg.Timeout},
		exclude: cfg.TreeExclude,
		now:     time.Now,
		logger:  zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Repository fetches repository metadata. It is the only fetch whose failure
// aborts an analysis.
func (c *Client) Repository(ctx context.Context, ref Ref) (Repository, error) {
	var out apiRepository
	if err := c.getJSON(ctx, "repos/"+ref.String(), &out); err != nil {
		return Repository{}, err
	}
	return out.toRepository(), nil
}

// Readme fetches and decodes the default README. It returns nil, nil when the
// repository has none.
func (c *Client) Readme(ctx context.Context, ref Ref) (*Readme, error) {
	var out apiContent
	err := c.getJSON(ctx, "repos/"+ref.String()+"/readme", &out)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	content := out.Content
	if out.Encoding == "base64" {
		// The API wraps base64 at 60 columns.
		decoded, err := base64.StdEncoding.DecodeString(strings.ReplaceAll(out.Content, "\n", ""))
		if err != nil {
			return nil, fmt.Errorf("decode readme: %w", err)
		}
		content = string(decoded)
	}

	return &Readme{Path: out.Path, Content: content}, nil
}

// Tree fetches the recursive file listing of branch, dropping entries that
// match any tree_exclude glob. It returns nil, nil when the branch has no tree.
func (c *Client) Tree(ctx context.Context, ref Ref, branch string) (*Tree, error) {
	var out apiTree
	endpoint := "repos/" + ref.String() + "/git/trees/" + url.PathEscape(branch) + "?recursive=1"
	err := c.getJSON(ctx, endpoint, &out)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	tree := &Tree{Truncated: out.Truncated}
	for _, e := range out.Tree {
		if c.excluded(e.Path) {
			tree.Excluded++
			continue
		}
		tree.Entries = append(tree.Entries, TreeEntry{Path: e.Path, Type: e.Type, Size: e.Size})
	}
	return tree, nil
}

func (c *Client) excluded(path string) bool {
	for _, pattern := range c.exclude {
		if ok, _ := doublestar.Match(pattern, path); ok {
			return true
		}
	}
	return false
}

// Analyze fetches metadata, README and tree for ref. README and tree failures
// are recorded as warnings with nil fields; only a metadata failure is fatal.
// Complete analyses are cached when a cache is configured; partial ones are
// refetched on the next call.
func (c *Client) Analyze(ctx context.Context, ref Ref) (Analysis, error) {
	if c.cache == nil {
		return c.analyze(ctx, ref)
	}

	a, hit, err := c.cache.GetOrLoadIf(ctx, strings.ToLower(ref.String()), c.cacheTTL,
		func(ctx context.Context) (Analysis, error) { return c.analyze(ctx, ref) },
		func(a Analysis) bool { return !a.Partial },
		func(err error) { c.logger.Debug().Ctx(ctx).Err(err).Msg("analysis cache write failed") },
	)
	switch {
	case hit:
		a.Cached = true
		c.logger.Debug().Ctx(ctx).Msg("analysis cache hit")
	case a.Partial:
		c.logger.Debug().Ctx(ctx).Msg("partial analysis not cached")
	}
	return a, err
}

func (c *Client) analyze(ctx context.Context, ref Ref) (Analysis, error) {
	repo, err := c.Repository(ctx, ref)
	if err != nil {
		return Analysis{}, fmt.Errorf("fetch repository %s: %w", ref, err)
	}

	a := Analysis{Ref: ref, Repository: repo, FetchedAt: c.now()}

	readme, err := c.Readme(ctx, ref)
	switch {
	case err != nil:
		a.Warnings = append(a.Warnings, fmt.Sprintf("readme unavailable: %v", err))
		a.Partial = true
		c.logger.Warn().Ctx(ctx).Err(err).Msg("readme fetch failed")
	case readme == nil:
		a.Warnings = append(a.Warnings, "repository has no README")
	default:
		a.Readme = readme
	}

	if repo.DefaultBranch != "" {
		tree, err := c.Tree(ctx, ref, repo.DefaultBranch)
		switch {
		case err != nil:
			a.Warnings = append(a.Warnings, fmt.Sprintf("file tree unavailable: %v", err))
			a.Partial = true
			c.logger.Warn().Ctx(ctx).Err(err).Msg("tree fetch failed")
		case tree == nil:
			a.Warnings = append(a.Warnings, "repository is empty")
		default:
			a.Tree = tree
			if tree.Truncated {
				a.Warnings = append(a.Warnings, "file tree truncated by GitHub")
			}
		}
	}

	return a, nil
}

func (c *Client) getJSON(ctx context.Context, endpoint string, dest any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/"+endpoint, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("X-GitHub-Api-Version", "2022-11-28")
	req.Header.Set("User-Agent", userAgent)
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request %s: %w", endpoint, err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			c.logger.Debug().Err(err).Msg("close response body")
		}
	}()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case resp.StatusCode == http.StatusUnauthorized:
		return ErrUnauthorized
	case isRateLimited(resp):
		return rateLimitError(resp)
	default:
		return &StatusError{Endpoint: endpoint, Status: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return fmt.Errorf("read %s: %w", endpoint, err)
	}
	if err := json.Unmarshal(body, dest); err != nil {
		return fmt.Errorf("decode %s: %w", endpoint, err)
	}
	return nil
}

func isRateLimited(resp *http.Response) bool {
	if resp.StatusCode == http.StatusTooManyRequests {
		return true
	}
	return resp.StatusCode == http.StatusForbidden && resp.Header.Get("X-RateLimit-Remaining") == "0"
}

func rateLimitError(resp *http.Response) error {
	reset := resp.Header.Get("X-RateLimit-Reset")
	if reset == "" {
		return ErrRateLimited
	}
	var unix int64
	if _, err := fmt.Sscan(reset, &unix); err != nil {
		return ErrRateLimited
	}
	return fmt.Errorf("%w (resets at %s)", ErrRateLimited, time.Unix(unix, 0).Format(time.Kitchen))
}
