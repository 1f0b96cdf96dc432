package opentdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"trivia-quiz/internal/domain"
)

// DefaultBaseURL is the public Open Trivia DB endpoint.
const DefaultBaseURL = "https://opentdb.com"

// Client talks to the Open Trivia DB HTTP API. It holds no session state and
// may be shared between sessions.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient builds a client. An empty baseURL selects DefaultBaseURL; a nil
// httpClient gets a client with timeout.
func NewClient(baseURL string, httpClient *http.Client, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
	}
}

type questionsResponse struct {
	ResponseCode int               `json:"response_code"`
	Results      []domain.Question `json:"results"`
}

type categoriesResponse struct {
	TriviaCategories []domain.Category `json:"trivia_categories"`
}

// FetchQuestions returns the questions for cfg in the order the API sent them.
// Text stays HTML-entity encoded.
func (c *Client) FetchQuestions(ctx context.Context, cfg domain.SessionConfig) ([]domain.Question, error) {
	query := url.Values{}
	query.Set("amount", strconv.Itoa(cfg.Amount))
	query.Set("category", strconv.Itoa(cfg.Category))
	query.Set("difficulty", string(cfg.Difficulty))
	query.Set("type", string(cfg.Type))

	var body questionsResponse
	if err := c.getJSON(ctx, "/api.php?"+query.Encode(), &body); err != nil {
		return nil, err
	}
	if body.ResponseCode != 0 {
		return nil, &domain.FetchError{
			Kind:   domain.FetchResponseCode,
			Status: body.ResponseCode,
			Err:    errors.New(responseCodeText(body.ResponseCode)),
		}
	}
	if len(body.Results) == 0 {
		return nil, &domain.FetchError{Kind: domain.FetchEmpty}
	}
	return body.Results, nil
}

// FetchCategories returns the remote category list.
func (c *Client) FetchCategories(ctx context.Context) ([]domain.Category, error) {
	var body categoriesResponse
	if err := c.getJSON(ctx, "/api_category.php", &body); err != nil {
		return nil, err
	}
	if len(body.TriviaCategories) == 0 {
		return nil, &domain.FetchError{Kind: domain.FetchEmpty}
	}
	return body.TriviaCategories, nil
}

func (c *Client) getJSON(ctx context.Context, path string, dst any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return &domain.FetchError{Kind: domain.FetchNetwork, Err: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return &domain.FetchError{Kind: domain.FetchNetwork, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &domain.FetchError{
			Kind:   domain.FetchStatus,
			Status: resp.StatusCode,
			Err:    errors.New(http.StatusText(resp.StatusCode)),
		}
	}
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return &domain.FetchError{Kind: domain.FetchDecode, Err: fmt.Errorf("decode %s: %w", path, err)}
	}
	return nil
}

func responseCodeText(code int) string {
	switch code {
	case 1:
		return "not enough questions for the query"
	case 2:
		return "invalid parameter"
	case 3:
		return "session token not found"
	case 4:
		return "session token exhausted"
	case 5:
		return "rate limited, retry later"
	}
	return "unexpected response code " + strconv.Itoa(code)
}
