// Package request handles rate-limited dispatch of HTTP requests to exchange
// endpoints and decodes the JSON replies.
package request

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/ioutil"
	"net/http"
	"net/http/httputil"
	"time"

	"golang.org/x/time/rate"

	"github.com/cryptoadapters/coinsbit/log"
)

const userAgent = "User-Agent"

var (
	errRequestSystemIsNil = errors.New("request system is nil")
	errRequestItemNil     = errors.New("request item is nil")
	errInvalidPath        = errors.New("invalid path")
)

// Item is a temporary holder for a request's attributes
type Item struct {
	Method        string
	Path          string
	Headers       map[string]string
	Body          io.Reader
	Result        interface{}
	AuthRequest   bool
	Verbose       bool
	HTTPDebugging bool
}

// Requester struct for the request client
type Requester struct {
	Name       string
	HTTPClient *http.Client
	UserAgent  string
	limiter    *rate.Limiter
}

// RequesterOption is a function option applied when calling New
type RequesterOption func(*Requester)

// WithLimiter applies a rate limiter to the requester
func WithLimiter(l *rate.Limiter) RequesterOption {
	return func(r *Requester) {
		r.limiter = l
	}
}

// NewRateLimit creates a new limiter from a time interval and how many
// actions are allowed within it, broken down to an actions-per-second basis.
// Burst is kept at one as bursting is not supported for outbound requests.
func NewRateLimit(interval time.Duration, actions int) *rate.Limiter {
	if actions <= 0 || interval <= 0 {
		// Unrestricted
		return rate.NewLimiter(rate.Inf, 1)
	}
	rps := float64(actions) / interval.Seconds()
	return rate.NewLimiter(rate.Limit(rps), 1)
}

// New returns a new Requester
func New(name string, httpRequester *http.Client, opts ...RequesterOption) *Requester {
	r := &Requester{
		Name:       name,
		HTTPClient: httpRequester,
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// SendPayload performs a rate-limited HTTP request with the supplied item and
// unmarshals the JSON response into Item.Result. Transport and HTTP status
// failures are returned unchanged; no retry or back-off policy is applied.
func (r *Requester) SendPayload(ctx context.Context, i *Item) error {
	if r == nil {
		return errRequestSystemIsNil
	}
	if i == nil {
		return errRequestItemNil
	}
	if i.Path == "" {
		return errInvalidPath
	}

	if r.limiter != nil {
		if err := r.limiter.Wait(ctx); err != nil {
			return err
		}
	}

	req, err := http.NewRequestWithContext(ctx, i.Method, i.Path, i.Body)
	if err != nil {
		return err
	}
	for k, v := range i.Headers {
		req.Header.Add(k, v)
	}
	if r.UserAgent != "" && req.Header.Get(userAgent) == "" {
		req.Header.Add(userAgent, r.UserAgent)
	}

	if i.HTTPDebugging {
		dump, _ := httputil.DumpRequestOut(req, true)
		log.Debugf(log.RequestSys, "DumpRequest:\n%s", dump)
	}
	if i.Verbose {
		log.Debugf(log.RequestSys, "%s request path: %s", r.Name, i.Path)
	}

	resp, err := r.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	contents, err := ioutil.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode < http.StatusOK ||
		resp.StatusCode > http.StatusAccepted {
		return fmt.Errorf("%s unsuccessful HTTP status code: %d raw response: %s",
			r.Name,
			resp.StatusCode,
			string(contents))
	}

	if i.Verbose {
		log.Debugf(log.RequestSys, "%s raw response: %s", r.Name, string(contents))
	}

	if i.Result != nil {
		return json.Unmarshal(contents, i.Result)
	}
	return nil
}
