package importer

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/zots0127/codepoint/pkg/types"
)

var (
	// ErrSourceUnavailable covers transport and status failures against
	// the download API.
	ErrSourceUnavailable = errors.New("failed to access source")
	// ErrUnexpectedShape covers descriptor responses that are not a
	// non-empty JSON array.
	ErrUnexpectedShape = errors.New("unexpected data shape")
)

// Client talks to the postcode product download API.
type Client struct {
	baseURL     string
	productPath string
	key         string
	http        *http.Client
}

func NewClient(baseURL, productPath, key string) *Client {
	return &Client{
		baseURL:     baseURL,
		productPath: productPath,
		key:         key,
		http:        &http.Client{Timeout: 5 * time.Minute},
	}
}

// Latest returns the first descriptor advertised for the product.
func (c *Client) Latest() (*types.ProductDescriptor, error) {
	endpoint := fmt.Sprintf("%s%s?key=%s&format=Zip", c.baseURL, c.productPath, url.QueryEscape(c.key))

	resp, err := c.http.Get(endpoint)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrSourceUnavailable, resp.StatusCode)
	}

	var descriptors []types.ProductDescriptor
	if err := json.NewDecoder(resp.Body).Decode(&descriptors); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnexpectedShape, err)
	}
	if len(descriptors) == 0 {
		return nil, ErrUnexpectedShape
	}

	return &descriptors[0], nil
}

// Fetch opens the archive download. The caller owns the returned body.
func (c *Client) Fetch(rawURL string) (io.ReadCloser, error) {
	resp, err := c.http.Get(rawURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("%w: status %d", ErrSourceUnavailable, resp.StatusCode)
	}
	return resp.Body, nil
}
