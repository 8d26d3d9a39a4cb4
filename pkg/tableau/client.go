package tableau

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

const (
	pageSize = 100

	maxRetries = 3
	retryWait  = 2 * time.Second
)

// Client talks to the Tableau Cloud REST API for one site. Call SignIn before
// any other method; the session token is kept on the client.
type Client struct {
	baseURL string
	siteID  string
	http    *http.Client
	token   string
}

func NewClient(baseURL, siteID string) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		siteID:  siteID,
		http:    &http.Client{Timeout: 5 * time.Minute},
	}
}

// SiteID returns the site this client is bound to.
func (c *Client) SiteID() string {
	return c.siteID
}

type signInRequest struct {
	Credentials struct {
		PersonalAccessTokenName   string `json:"personalAccessTokenName"`
		PersonalAccessTokenSecret string `json:"personalAccessTokenSecret"`
		Site                      struct {
			ContentURL string `json:"contentUrl"`
		} `json:"site"`
	} `json:"credentials"`
}

type signInResponse struct {
	XMLName     xml.Name `xml:"tsResponse"`
	Credentials struct {
		Token string `xml:"token,attr"`
	} `xml:"credentials"`
}

// SignIn authenticates with a personal access token and stores the session
// token for later calls.
func (c *Client) SignIn(ctx context.Context, creds PATCredentials) error {
	payload := signInRequest{}
	payload.Credentials.PersonalAccessTokenName = creds.PATName
	payload.Credentials.PersonalAccessTokenSecret = creds.PAT
	payload.Credentials.Site.ContentURL = creds.Site

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal signin payload failed: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/auth/signin", strings.NewReader(string(body)))
	if err != nil {
		return fmt.Errorf("create signin request failed: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return errors.Errorf("signin request error: %s", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("signin bad request, Status Code: %v", resp.StatusCode)
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read signin body failed: %w", err)
	}

	var parsed signInResponse
	if err := xml.Unmarshal(respBody, &parsed); err != nil {
		return errors.Wrap(err, "parse signin response")
	}
	if parsed.Credentials.Token == "" {
		return errors.New("signin response carried no auth token")
	}

	c.token = parsed.Credentials.Token
	log.Printf("Authentication successful, token extracted")
	return nil
}

// SignOut invalidates the session token. Best effort, callers usually defer it.
func (c *Client) SignOut(ctx context.Context) error {
	if c.token == "" {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/auth/signout", nil)
	if err != nil {
		return fmt.Errorf("create signout request failed: %w", err)
	}
	req.Header.Set("X-Tableau-Auth", c.token)

	resp, err := c.http.Do(req)
	if err != nil {
		return errors.Errorf("signout request error: %s", err)
	}
	defer resp.Body.Close()

	c.token = ""
	return nil
}

func (c *Client) siteURL(path string) string {
	return fmt.Sprintf("%s/sites/%s/%s", c.baseURL, c.siteID, strings.TrimPrefix(path, "/"))
}

// get performs an authenticated GET with a small bounded retry on throttling
// and server errors. Retry-After is honored when the API sends it.
func (c *Client) get(ctx context.Context, rawURL string, query url.Values) ([]byte, error) {
	if len(query) > 0 {
		rawURL = rawURL + "?" + query.Encode()
	}

	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(retryDelay(lastErr, attempt)):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return nil, fmt.Errorf("create request failed: %w", err)
		}
		req.Header.Set("X-Tableau-Auth", c.token)

		resp, err := c.http.Do(req)
		if err != nil {
			lastErr = errors.Errorf("request error: %s", err)
			continue
		}

		body, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusOK:
			if readErr != nil {
				return nil, fmt.Errorf("read body failed: %w", readErr)
			}
			return body, nil
		case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
			lastErr = &statusError{code: resp.StatusCode, retryAfter: resp.Header.Get("Retry-After")}
			log.Printf("Retry %d: GET %s returned %d", attempt+1, rawURL, resp.StatusCode)
			continue
		default:
			return nil, fmt.Errorf("GET %s bad request, Status Code: %v", rawURL, resp.StatusCode)
		}
	}

	return nil, fmt.Errorf("GET %s failed after %d retries: %w", rawURL, maxRetries, lastErr)
}

type statusError struct {
	code       int
	retryAfter string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("status code %d", e.code)
}

func retryDelay(err error, attempt int) time.Duration {
	if se, ok := err.(*statusError); ok && se.retryAfter != "" {
		if secs, convErr := strconv.Atoi(se.retryAfter); convErr == nil && secs > 0 {
			return time.Duration(secs) * time.Second
		}
	}
	return retryWait * time.Duration(attempt)
}

// listPages walks a paged list endpoint. decode consumes one response body and
// reports how many items the page held and the advertised total.
func (c *Client) listPages(ctx context.Context, rawURL string, decode func(body []byte) (count, total int, err error)) error {
	seen := 0
	for page := 1; ; page++ {
		query := url.Values{}
		query.Set("pageSize", strconv.Itoa(pageSize))
		query.Set("pageNumber", strconv.Itoa(page))

		body, err := c.get(ctx, rawURL, query)
		if err != nil {
			return err
		}

		count, total, err := decode(body)
		if err != nil {
			return err
		}

		seen += count
		if count == 0 || seen >= total {
			return nil
		}
	}
}

// download streams a binary content object. The caller owns the returned body.
func (c *Client) download(ctx context.Context, rawURL string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request failed: %w", err)
	}
	req.Header.Set("X-Tableau-Auth", c.token)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errors.Errorf("download request error: %s", err)
	}

	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("GET %s bad request, Status Code: %v", rawURL, resp.StatusCode)
	}

	return resp.Body, nil
}

func parseTotal(p Pagination) int {
	total, err := strconv.Atoi(p.TotalAvailable)
	if err != nil {
		return 0
	}
	return total
}
