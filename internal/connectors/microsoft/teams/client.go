// Package teams implements the Microsoft Graph client for joined teams,
// team membership and Shifts scheduling groups.
package teams

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/custodia-labs/shiftsheet/internal/connectors/microsoft"
	"github.com/custodia-labs/shiftsheet/internal/core/domain"
	"github.com/custodia-labs/shiftsheet/internal/core/ports/driven"
	"github.com/custodia-labs/shiftsheet/internal/logger"
)

// Ensure Client implements the interface.
var _ driven.GraphClient = (*Client)(nil)

const (
	teamSelect   = "id,displayName,description"
	memberSelect = "id,displayName,mail,userPrincipalName,givenName,surname"

	// maxErrorBody caps how much of an error response is read.
	maxErrorBody = 64 << 10
)

// Client talks to Microsoft Graph with a bearer token from a TokenProvider.
type Client struct {
	config        *Config
	tokenProvider driven.TokenProvider
	rateLimiter   *microsoft.RateLimiter
	// writeLimiter additionally paces schedule writes, which Shifts
	// throttles harder than reads.
	writeLimiter *microsoft.RateLimiter
	httpClient   *http.Client
}

// New creates a Graph client. A nil config uses DefaultConfig.
func New(cfg *Config, tokenProvider driven.TokenProvider) *Client {
	def := DefaultConfig()
	if cfg == nil {
		cfg = def
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = def.BaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	if cfg.RetryBackoff <= 0 {
		cfg.RetryBackoff = def.RetryBackoff
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}

	return &Client{
		config:        cfg,
		tokenProvider: tokenProvider,
		rateLimiter:   microsoft.NewRateLimiterWithConfig(cfg.RateLimit),
		writeLimiter:  microsoft.NewRateLimiter(microsoft.ServiceShifts),
		httpClient:    &http.Client{Timeout: cfg.Timeout},
	}
}

// RequestOption customises a single request.
type RequestOption func(*http.Request)

// IfMatch sends an If-Match precondition. An empty ETag sends nothing.
func IfMatch(etag string) RequestOption {
	return func(r *http.Request) {
		if etag != "" {
			r.Header.Set("If-Match", etag)
		}
	}
}

// Get fetches path and decodes the JSON response into out.
func (c *Client) Get(ctx context.Context, path string, out any, opts ...RequestOption) error {
	return c.do(ctx, http.MethodGet, path, nil, out, opts...)
}

// Post sends body as JSON and decodes the response into out.
func (c *Client) Post(ctx context.Context, path string, body, out any, opts ...RequestOption) error {
	return c.do(ctx, http.MethodPost, path, body, out, opts...)
}

// Put sends body as JSON and decodes the response, if any, into out.
func (c *Client) Put(ctx context.Context, path string, body, out any, opts ...RequestOption) error {
	return c.do(ctx, http.MethodPut, path, body, out, opts...)
}

// Delete removes the resource at path.
func (c *Client) Delete(ctx context.Context, path string, opts ...RequestOption) error {
	return c.do(ctx, http.MethodDelete, path, nil, nil, opts...)
}

// do sends one logical request, retrying throttled and unavailable responses.
// Non-2xx responses are returned as *microsoft.GraphError.
func (c *Client) do(ctx context.Context, method, path string, body, out any, opts ...RequestOption) error {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
	}

	target := c.resolve(path)
	limiters := []*microsoft.RateLimiter{c.rateLimiter}
	if method != http.MethodGet {
		limiters = append(limiters, c.writeLimiter)
	}

	for attempt := 0; ; attempt++ {
		for _, l := range limiters {
			if err := acquire(ctx, l); err != nil {
				return err
			}
		}

		token, err := c.tokenProvider.GetToken(ctx)
		if err != nil {
			return fmt.Errorf("get token: %w", err)
		}

		req, err := c.newRequest(ctx, method, target, token, payload)
		if err != nil {
			return err
		}
		for _, opt := range opts {
			opt(req)
		}

		logger.Debug("microsoft-teams: %s %s", method, target)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("%s %s: %w", method, path, err)
		}

		respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize(resp.StatusCode)))
		resp.Body.Close()
		if err != nil {
			return fmt.Errorf("read response: %w", err)
		}

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			if out == nil || len(bytes.TrimSpace(respBody)) == 0 {
				return nil
			}
			if err := json.Unmarshal(respBody, out); err != nil {
				return fmt.Errorf("decode response: %w", err)
			}
			return nil
		}

		if microsoft.IsRetryable(resp.StatusCode) && attempt < c.config.MaxRetries {
			wait := microsoft.ParseRetryAfter(resp.Header.Get("Retry-After"))
			if wait <= 0 {
				wait = c.config.RetryBackoff << attempt
			}
			logger.Debug("microsoft-teams: status %d, retrying in %s (attempt %d/%d)",
				resp.StatusCode, wait, attempt+1, c.config.MaxRetries)
			limiters[len(limiters)-1].RecordRateLimitError(wait)
			continue
		}

		logger.Debug("microsoft-teams: %s %s failed with status %d: %s", method, target, resp.StatusCode, respBody)
		return microsoft.NewGraphError(resp.StatusCode, respBody)
	}
}

// acquire takes a token from l, logging when the caller has to wait.
func acquire(ctx context.Context, l *microsoft.RateLimiter) error {
	if l.Allow() {
		return nil
	}
	service := l.Service()
	if service == "" {
		service = "graph"
	}
	logger.Debug("microsoft-teams: %s rate limit reached, waiting", service)
	return l.Wait(ctx)
}

func (c *Client) newRequest(ctx context.Context, method, target, token string, payload []byte) (*http.Request, error) {
	var reader io.Reader = http.NoBody
	if payload != nil {
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.config.AppOnly() {
		req.Header.Set("MS-APP-ACTS-AS", c.config.ActsAs)
	}
	return req, nil
}

// resolve turns a Graph path into a URL. Absolute URLs, such as
// @odata.nextLink values, are used as given.
func (c *Client) resolve(path string) string {
	if strings.HasPrefix(path, "https://") || strings.HasPrefix(path, "http://") {
		return path
	}
	return c.config.BaseURL + path
}

func maxResponseSize(status int) int64 {
	if status >= 200 && status < 300 {
		return 32 << 20
	}
	return maxErrorBody
}

// listAll follows @odata.nextLink until the collection is exhausted.
func listAll[T any](ctx context.Context, c *Client, path string) ([]T, error) {
	var all []T
	next := path
	for next != "" {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		var page listResponse[T]
		if err := c.Get(ctx, next, &page); err != nil {
			return nil, err
		}
		all = append(all, page.Value...)
		next = page.NextLink
	}
	return all, nil
}

// ListJoinedTeams returns the teams the signed-in user has joined.
func (c *Client) ListJoinedTeams(ctx context.Context) ([]domain.Team, error) {
	path := "/me/joinedTeams?$select=" + teamSelect
	if c.config.AppOnly() {
		path = "/users/" + url.PathEscape(c.config.ActsAs) + "/joinedTeams?$select=" + teamSelect
	}

	resources, err := listAll[teamResource](ctx, c, path)
	if err != nil {
		return nil, err
	}

	teams := make([]domain.Team, 0, len(resources))
	for _, r := range resources {
		teams = append(teams, r.toDomain())
	}
	return teams, nil
}

// ListMembers returns the user members of a team's group.
func (c *Client) ListMembers(ctx context.Context, teamID string) ([]domain.Member, error) {
	return c.listDirectoryUsers(ctx, teamID, "members", false)
}

// ListOwners returns the user owners of a team's group.
func (c *Client) ListOwners(ctx context.Context, teamID string) ([]domain.Member, error) {
	return c.listDirectoryUsers(ctx, teamID, "owners", true)
}

func (c *Client) listDirectoryUsers(
	ctx context.Context, teamID, relation string, isOwner bool,
) ([]domain.Member, error) {
	path := fmt.Sprintf("/groups/%s/%s?$select=%s", url.PathEscape(teamID), relation, memberSelect)

	objects, err := listAll[directoryObject](ctx, c, path)
	if err != nil {
		return nil, err
	}

	members := make([]domain.Member, 0, len(objects))
	for _, o := range objects {
		if !o.isUser() {
			logger.Debug("microsoft-teams: ignoring %s %s (%s)", relation, o.ID, o.ODataType)
			continue
		}
		members = append(members, o.toDomain(isOwner))
	}
	return members, nil
}

func schedulingGroupsPath(teamID string) string {
	return "/teams/" + url.PathEscape(teamID) + "/schedule/schedulingGroups"
}

// ListScheduleGroups returns every scheduling group of a team, active or not.
func (c *Client) ListScheduleGroups(ctx context.Context, teamID string) ([]domain.ScheduleGroup, error) {
	resources, err := listAll[schedulingGroupResource](ctx, c, schedulingGroupsPath(teamID))
	if err != nil {
		return nil, err
	}

	groups := make([]domain.ScheduleGroup, 0, len(resources))
	for _, r := range resources {
		groups = append(groups, r.toDomain())
	}
	return groups, nil
}

// CreateScheduleGroup creates an active group seeded with its members.
func (c *Client) CreateScheduleGroup(
	ctx context.Context, teamID string, group *domain.ScheduleGroup,
) (*domain.ScheduleGroup, error) {
	var created schedulingGroupResource
	if err := c.Post(ctx, schedulingGroupsPath(teamID), newSchedulingGroupBody(group), &created); err != nil {
		return nil, err
	}

	result := created.toDomain()
	return &result, nil
}

// ReplaceScheduleGroup replaces an existing group's membership and marks it
// active. The group's ETag, when known, is sent as If-Match.
func (c *Client) ReplaceScheduleGroup(
	ctx context.Context, teamID string, group *domain.ScheduleGroup,
) (*domain.ScheduleGroup, error) {
	if group.ID == "" {
		return nil, fmt.Errorf("%w: schedule group %q has no id", domain.ErrInvalidInput, group.DisplayName)
	}

	path := schedulingGroupsPath(teamID) + "/" + url.PathEscape(group.ID)
	var replaced schedulingGroupResource
	if err := c.Put(ctx, path, newSchedulingGroupBody(group), &replaced, IfMatch(group.ETag)); err != nil {
		return nil, err
	}

	// Graph may answer 204 with no body.
	if replaced.ID == "" {
		result := group.Clone()
		result.IsActive = true
		result.IsNew = false
		result.ShouldSync = false
		return result, nil
	}
	result := replaced.toDomain()
	return &result, nil
}

// DeleteScheduleGroup deletes a scheduling group. Reconciliation never
// removes groups; this exists for administrative use.
func (c *Client) DeleteScheduleGroup(ctx context.Context, teamID, groupID, etag string) error {
	path := schedulingGroupsPath(teamID) + "/" + url.PathEscape(groupID)
	return c.Delete(ctx, path, IfMatch(etag))
}

// Me returns the signed-in account, or the acted-as user in app-only mode.
func (c *Client) Me(ctx context.Context) (*domain.Account, error) {
	path := "/me?$select=" + microsoft.UserSelect
	if c.config.AppOnly() {
		path = "/users/" + url.PathEscape(c.config.ActsAs) + "?$select=" + microsoft.UserSelect
	}

	var info microsoft.UserInfo
	if err := c.Get(ctx, path, &info); err != nil {
		return nil, err
	}
	return info.Account(), nil
}
