// Package lookup fetches characters from the Dragon Ball API.
package lookup

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/teenjuna/again"
)

const DefaultBaseURL = "https://dragonball-api.com/api"

// ErrNotFound is returned by [Client.Find] when no character matches.
var ErrNotFound = errors.New("character not found")

// StatusError is returned for non-2xx responses.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d %s", e.Code, http.StatusText(e.Code))
}

type Character struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Race  string `json:"race"`
	Ki    string `json:"ki"`
	Image string `json:"image"`
}

// Power parses Ki, ignoring thousands separators. It returns 0 if Ki isn't a number.
func (c Character) Power() int64 {
	ki := strings.NewReplacer(".", "", ",", "", " ", "").Replace(c.Ki)
	power, err := strconv.ParseInt(ki, 10, 64)
	if err != nil {
		return 0
	}
	return power
}

func (c Character) String() string {
	return c.Name
}

func (c *Character) UnmarshalJSON(data []byte) error {
	// Fields of unexpected types are left empty instead of failing the whole character.
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	field := func(key string, v any) bool {
		value, ok := raw[key]
		return ok && json.Unmarshal(value, v) == nil
	}

	*c = Character{}
	field("id", &c.ID)
	field("name", &c.Name)
	field("race", &c.Race)
	if !field("ki", &c.Ki) {
		var ki json.Number
		if field("ki", &ki) {
			c.Ki = ki.String()
		}
	}
	if !field("image", &c.Image) {
		field("image_url", &c.Image)
	}

	return nil
}

type Client struct {
	baseURL string
	http    *http.Client
}

type Option = func(*Client)

func WithHTTPClient(client *http.Client) Option {
	if client == nil {
		panic("http client can't be nil")
	}
	return func(c *Client) {
		c.http = client
	}
}

// WithTimeout limits every request made by the client.
func WithTimeout(timeout time.Duration) Option {
	if timeout <= 0 {
		panic("timeout can't be <= 0")
	}
	return func(c *Client) {
		client := *c.http
		client.Timeout = timeout
		c.http = &client
	}
}

// New creates a client of the API at baseURL, such as [DefaultBaseURL].
func New(baseURL string, options ...Option) *Client {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		panic("base URL can't be blank")
	}
	if _, err := url.Parse(baseURL); err != nil {
		panic(fmt.Sprintf("base URL is invalid: %v", err))
	}

	c := &Client{
		baseURL: baseURL,
		http:    &http.Client{},
	}
	for _, opt := range options {
		opt(c)
	}

	return c
}

// Find returns the first character whose name matches name, case-insensitively.
func (c *Client) Find(ctx context.Context, name string) (Character, error) {
	query := url.Values{}
	query.Set("name", strings.ToLower(name))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/characters?"+query.Encode(), nil)
	if err != nil {
		return Character{}, fmt.Errorf("request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return Character{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Character{}, &StatusError{Code: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Character{}, fmt.Errorf("read: %w", err)
	}

	character, err := decode(body)
	if err != nil {
		return Character{}, fmt.Errorf("decode: %w", err)
	}

	return character, nil
}

// Operation returns an operation looking up name, ready to be retried.
func (c *Client) Operation(name string) again.Operation[Character] {
	return func(ctx context.Context) (Character, error) {
		return c.Find(ctx, name)
	}
}

// decode accepts {"items": [...]}, a bare array or a single character.
func decode(body []byte) (Character, error) {
	body = bytes.TrimSpace(body)

	var characters []Character
	switch {
	case bytes.HasPrefix(body, []byte("[")):
		if err := json.Unmarshal(body, &characters); err != nil {
			return Character{}, err
		}
	default:
		var page struct {
			Items *[]Character `json:"items"`
		}
		if err := json.Unmarshal(body, &page); err != nil {
			return Character{}, err
		}
		if page.Items != nil {
			characters = *page.Items
			break
		}
		var character Character
		if err := json.Unmarshal(body, &character); err != nil {
			return Character{}, err
		}
		if character.ID != 0 || character.Name != "" {
			characters = append(characters, character)
		}
	}

	if len(characters) == 0 {
		return Character{}, ErrNotFound
	}

	return characters[0], nil
}
