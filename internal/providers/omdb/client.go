package omdb

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/feral-file/ff-movie-etl/internal/adapter"
)

const PROVIDER_NAME = "omdb"

const (
	responseTrue  = "True"
	responseFalse = "False"
	notAvailable  = "N/A"
)

var (
	// ErrNoAPIKey is returned when the client has no API key configured
	ErrNoAPIKey = errors.New("no API key provided")

	// ErrTransport is returned when no usable HTTP response was received
	ErrTransport = errors.New("omdb transport failure")

	// ErrMalformedResponse is returned when the response body is not a recognizable OMDb envelope
	ErrMalformedResponse = errors.New("omdb malformed response")
)

// MalformedResponseError is returned when a 200 response cannot be decoded as an OMDb envelope.
// It matches ErrMalformedResponse with errors.Is and keeps the body for diagnosis.
type MalformedResponseError struct {
	Body []byte
	Err  error
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("%s: %s", ErrMalformedResponse, e.Err)
}

func (e *MalformedResponseError) Is(target error) bool {
	return target == ErrMalformedResponse
}

func (e *MalformedResponseError) Unwrap() error {
	return e.Err
}

// Response represents the OMDb title lookup response.
// Response is the success discriminator, "True" or "False".
type Response struct {
	Response  string `json:"Response"`
	Error     string `json:"Error,omitempty"`
	Title     string `json:"Title,omitempty"`
	Year      string `json:"Year,omitempty"`
	ImdbID    string `json:"imdbID,omitempty"`
	Director  string `json:"Director,omitempty"`
	Plot      string `json:"Plot,omitempty"`
	BoxOffice string `json:"BoxOffice,omitempty"`

	// Raw is the undecoded response body
	Raw []byte `json:"-"`
}

// Found reports whether OMDb matched the query
func (r *Response) Found() bool {
	return r.Response == responseTrue
}

// Field returns a pointer to the value, or nil when OMDb left it empty or "N/A"
func Field(value string) *string {
	value = strings.TrimSpace(value)
	if value == "" || value == notAvailable {
		return nil
	}
	return &value
}

// Client defines the interface for OMDb client operations to enable mocking
//
//go:generate mockgen -source=client.go -destination=../../mocks/omdb_client.go -package=mocks -mock_names=Client=MockOMDbClient
type Client interface {
	// Lookup fetches a movie by title and optional release year.
	// A well-formed "not found" answer is returned as a Response with Found() == false.
	Lookup(ctx context.Context, title string, year *int) (*Response, error)
}

// OMDbClient implements the OMDb client
type OMDbClient struct {
	httpClient adapter.HTTPClient
	apiURL     string
	apiKey     string
	json       adapter.JSON
}

// NewClient creates a new OMDb client
func NewClient(httpClient adapter.HTTPClient, apiURL string, apiKey string, json adapter.JSON) Client {
	return &OMDbClient{
		httpClient: httpClient,
		apiURL:     apiURL,
		apiKey:     apiKey,
		json:       json,
	}
}

// Lookup fetches a movie by title and optional release year
func (c *OMDbClient) Lookup(ctx context.Context, title string, year *int) (*Response, error) {
	if c.apiKey == "" {
		return nil, ErrNoAPIKey
	}

	requestURL, err := c.buildURL(title, year)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Get(ctx, requestURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTransport, err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: unexpected status code %d", ErrTransport, resp.StatusCode)
	}

	var response Response
	if err := c.json.Unmarshal(resp.Body, &response); err != nil {
		return nil, &MalformedResponseError{Body: resp.Body, Err: err}
	}

	if response.Response != responseTrue && response.Response != responseFalse {
		return nil, &MalformedResponseError{
			Body: resp.Body,
			Err:  fmt.Errorf("unexpected Response value %q", response.Response),
		}
	}

	response.Raw = resp.Body
	return &response, nil
}

// buildURL builds the lookup URL; the year parameter is omitted when unknown
func (c *OMDbClient) buildURL(title string, year *int) (string, error) {
	u, err := url.Parse(c.apiURL)
	if err != nil {
		return "", fmt.Errorf("invalid OMDb URL: %w", err)
	}

	params := u.Query()
	params.Set("apikey", c.apiKey)
	params.Set("t", title)
	if year != nil {
		params.Set("y", strconv.Itoa(*year))
	}
	u.RawQuery = params.Encode()

	return u.String(), nil
}
