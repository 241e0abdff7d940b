// Package rapidapi talks to the hotels4 API on RapidAPI and implements
// hotel.Searcher.
package rapidapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/AzielCF/az-hotelbot/dialog/domain/hotel"
)

const (
	DefaultBaseURL      = "https://hotels4.p.rapidapi.com"
	DefaultHost         = "hotels4.p.rapidapi.com"
	DefaultTimeout      = 10 * time.Second
	DefaultCityAttempts = 3
	DefaultPhotoTTL     = 30 * time.Minute

	maxBodySize = 4 << 20
)

type Config struct {
	BaseURL string
	Host    string
	// Keys are tried in order; a 429 answer moves on to the next one.
	Keys         []string
	Timeout      time.Duration
	RatePerSec   float64
	Burst        int
	CityAttempts int
	PhotoTTL     time.Duration
}

func (c Config) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Keys, validation.Required, validation.Each(validation.Required)),
		validation.Field(&c.RatePerSec, validation.Min(0.0)),
		validation.Field(&c.Burst, validation.Min(0)),
		validation.Field(&c.CityAttempts, validation.Min(0)),
	)
}

// Client is safe for concurrent use.
type Client struct {
	baseURL      string
	host         string
	http         *http.Client
	limiter      *rate.Limiter
	cityAttempts int

	keysMu sync.Mutex
	keys   []string
	keyIdx int

	photos *photoCache
}

func NewClient(cfg Config) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid rapidapi config: %w", err)
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Host == "" {
		cfg.Host = DefaultHost
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.CityAttempts <= 0 {
		cfg.CityAttempts = DefaultCityAttempts
	}
	if cfg.PhotoTTL <= 0 {
		cfg.PhotoTTL = DefaultPhotoTTL
	}

	limit := rate.Inf
	if cfg.RatePerSec > 0 {
		limit = rate.Limit(cfg.RatePerSec)
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}

	return &Client{
		baseURL:      strings.TrimRight(cfg.BaseURL, "/"),
		host:         cfg.Host,
		http:         &http.Client{Timeout: cfg.Timeout},
		limiter:      rate.NewLimiter(limit, burst),
		cityAttempts: cfg.CityAttempts,
		keys:         append([]string(nil), cfg.Keys...),
		photos:       newPhotoCache(cfg.PhotoTTL),
	}, nil
}

func (c *Client) currentKey() string {
	c.keysMu.Lock()
	defer c.keysMu.Unlock()
	return c.keys[c.keyIdx]
}

// rotateKey moves to the next key unless another request already did.
func (c *Client) rotateKey(used string) {
	c.keysMu.Lock()
	defer c.keysMu.Unlock()
	if c.keys[c.keyIdx] != used {
		return
	}
	c.keyIdx = (c.keyIdx + 1) % len(c.keys)
	logrus.Warnf("[RAPIDAPI] quota exhausted, switching to key #%d of %d", c.keyIdx+1, len(c.keys))
}

// get performs one GET and decodes the JSON body into dest. Transport
// timeouts become hotel.ErrUpstreamTimeout; any answer without a usable
// body becomes hotel.ErrUpstreamEmpty.
func (c *Client) get(ctx context.Context, path string, params url.Values, dest interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return hotel.ErrUpstreamTimeout
		}
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return err
	}
	key := c.currentKey()
	req.Header.Set("X-RapidAPI-Key", key)
	req.Header.Set("X-RapidAPI-Host", c.host)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		if isTimeout(err) {
			logrus.Warnf("[RAPIDAPI] %s timed out after %s", path, time.Since(start).Round(time.Millisecond))
			return hotel.ErrUpstreamTimeout
		}
		return fmt.Errorf("rapidapi %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		c.rotateKey(key)
		return fmt.Errorf("%w: rate limited on %s", hotel.ErrUpstreamEmpty, path)
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		logrus.Warnf("[RAPIDAPI] %s answered %d: %s", path, resp.StatusCode, strings.TrimSpace(string(body)))
		return fmt.Errorf("%w: status %d on %s", hotel.ErrUpstreamEmpty, resp.StatusCode, path)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		if isTimeout(err) {
			return hotel.ErrUpstreamTimeout
		}
		return fmt.Errorf("rapidapi %s: read body: %w", path, err)
	}
	if len(strings.TrimSpace(string(data))) == 0 || string(data) == "null" {
		return fmt.Errorf("%w: empty body on %s", hotel.ErrUpstreamEmpty, path)
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("%w: %v", hotel.ErrBadUpstreamShape, err)
	}
	logrus.Debugf("[RAPIDAPI] %s ok in %s", path, time.Since(start).Round(time.Millisecond))
	return nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
