package drand

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const DefaultBaseURL = "https://api.drand.sh"

// Client fetches public beacon values from a drand HTTP endpoint.
type Client struct {
	baseURL string
	client  *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

type PublicRound struct {
	Round      uint64 `json:"round"`
	Randomness string `json:"randomness"`
	Signature  string `json:"signature"`
}

type ChainInfo struct {
	PublicKey   string `json:"public_key"`
	Period      uint64 `json:"period"`
	GenesisTime int64  `json:"genesis_time"`
}

type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("drand endpoint returned status %d", e.StatusCode)
}

// Latest returns the most recently published round.
func (c *Client) Latest(ctx context.Context) (*PublicRound, error) {
	var round PublicRound
	if err := c.get(ctx, "/public/latest", &round); err != nil {
		return nil, err
	}
	if round.Round == 0 || round.Randomness == "" || round.Signature == "" {
		return nil, fmt.Errorf("invalid drand response format")
	}
	return &round, nil
}

// Info returns the chain parameters published by the endpoint.
func (c *Client) Info(ctx context.Context) (*ChainInfo, error) {
	var info ChainInfo
	if err := c.get(ctx, "/info", &info); err != nil {
		return nil, err
	}
	return &info, nil
}

func (c *Client) get(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &StatusError{StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	return json.Unmarshal(body, out)
}
