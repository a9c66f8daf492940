package buildkite_http

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/davarch/release-reporter/internal/domain"
)

const perPage = 20

type Client struct {
	baseUrl string
	org     string
	token   string
	hc      *http.Client
}

// New returns a Buildkite REST client. A zero timeout leaves the request
// duration unbounded.
func New(baseUrl, org, token string, timeout time.Duration) *Client {
	tr := &http.Transport{
		DialContext:         (&net.Dialer{Timeout: 5 * time.Second}).DialContext,
		TLSHandshakeTimeout: 5 * time.Second,
		MaxIdleConns:        100,
		IdleConnTimeout:     90 * time.Second,
	}

	return &Client{
		baseUrl: trimSlash(baseUrl),
		org:     org,
		token:   token,
		hc:      &http.Client{Transport: tr, Timeout: timeout},
	}
}

type authorDTO struct {
	Name string `json:"name"`
}

type buildDTO struct {
	Message string     `json:"message"`
	State   string     `json:"state"`
	Blocked bool       `json:"blocked"`
	Author  *authorDTO `json:"author"`
	Number  *int       `json:"number"`
	WebURL  *string    `json:"web_url"`
}

// FetchBuilds returns the first page of builds for a pipeline branch, newest
// first. It makes exactly one request and never retries.
func (c *Client) FetchBuilds(ctx context.Context, ref domain.PipelineRef) ([]domain.Build, error) {
	q := url.Values{}
	q.Set("branch", ref.Branch)
	q.Set("page", "1")
	q.Set("per_page", fmt.Sprint(perPage))

	listURL := fmt.Sprintf("%s/organizations/%s/pipelines/%s/builds?%s",
		c.baseUrl, url.PathEscape(c.org), url.PathEscape(ref.Pipeline), q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, listURL, nil)
	if err != nil {
		return nil, fmt.Errorf("buildkite request %s: %w", ref.Pipeline, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("buildkite %s: %w", ref.Pipeline, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("buildkite %s: %s", ref.Pipeline, resp.Status)
	}

	var list []buildDTO
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		return nil, fmt.Errorf("buildkite %s: decode builds: %w", ref.Pipeline, err)
	}

	out := make([]domain.Build, 0, len(list))
	for _, b := range list {
		out = append(out, toBuild(b))
	}
	return out, nil
}

func toBuild(b buildDTO) domain.Build {
	out := domain.Build{
		Message: b.Message,
		State:   domain.BuildState(b.State),
		Blocked: b.Blocked,
	}
	if b.Author != nil {
		out.Author = &domain.Author{Name: b.Author.Name}
	}
	if b.Number != nil {
		out.Number = *b.Number
	}
	if b.WebURL != nil {
		out.WebURL = *b.WebURL
	}
	return out
}

func trimSlash(s string) string {
	for len(s) > 0 && s[len(s)-1] == '/' {
		s = s[:len(s)-1]
	}
	return s
}
