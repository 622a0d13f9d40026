package client

import (
	"context"
	"log/slog"
	"net"
	nethttp "net/http"
	"net/url"

	"trooba-http-transport/application/callctx"
	"trooba-http-transport/application/http"
	"trooba-http-transport/application/http/status"
	"trooba-http-transport/application/http/timeout"
	"trooba-http-transport/application/propagation"
	"trooba-http-transport/application/util/domain"
	iolib "trooba-http-transport/lib/io"
	"trooba-http-transport/metrics"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"
)

var (
	ErrConnectTimeout   = errors.New("connect timeout exceeded")
	ErrReadTimeout      = errors.New("socket timeout exceeded")
	ErrServerOriginated = errors.New("context belongs to an inbound call, derive a new one")
)

type Client struct {
	http *nethttp.Client

	opts Options

	codec    propagation.Codec
	lookuper domain.Lookuper
	dialer   *net.Dialer

	logger *slog.Logger
	clock  clock.Clock
}

// New creates a client bound to the static endpoint in opts.
// codec may be nil, in which case no context travels with the calls.
// A nil lookuper resolves through the system resolver.
func New(
	codec propagation.Codec,
	lookuper domain.Lookuper,
	logger *slog.Logger,
	clock clock.Clock,
	opts Options,
) *Client {
	if lookuper == nil {
		lookuper = domain.NetLookuper{}
	}

	client := &Client{
		opts:     opts,
		codec:    codec,
		lookuper: lookuper,
		dialer:   &net.Dialer{},
		logger:   logger,
		clock:    clock,
	}

	transport := nethttp.DefaultTransport.(*nethttp.Transport).Clone()
	transport.DialContext = client.dial
	// Host resolution belongs to the lookuper.
	transport.Proxy = nil
	if opts.Timeout.IdleTimeout > 0 {
		transport.IdleConnTimeout = opts.Timeout.IdleTimeout
	}

	client.http = &nethttp.Client{
		Transport: transport,
		// 3xx responses are delivered as they are.
		CheckRedirect: func(*nethttp.Request, []*nethttp.Request) error {
			return nethttp.ErrUseLastResponse
		},
	}

	return client
}

// Send issues one call described by request, merged over the configured endpoint.
//
// call carries the context that travels with the request. Values returned by
// the peer are merged back into it once the response arrives. call must not be
// a context created by an inbound call.
func (c *Client) Send(ctx context.Context, call *callctx.Context, request http.Request) (*http.Response, error) {
	if call == nil {
		call = callctx.New(nil)
	}
	if call.Meta.Server {
		return nil, ErrServerOriginated
	}

	merged := http.Merge(c.opts.Endpoint.Normalize(), request.Normalize()).Normalize()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	req, err := c.newRequest(ctx, merged)
	if err != nil {
		c.opts.Metrics.ClientOutcome(metrics.OutcomeError)
		return nil, err
	}

	logger := c.logger.With("method", req.Method, "url", req.URL.Redacted())

	if c.codec != nil {
		if err := c.codec.Serialize(call, req.Header); err != nil {
			logger.Warn("skipping context serialization", "error", err.Error())
			c.opts.Metrics.CodecFailure("client", "serialize")
		}
	}

	logger.Debug("sending request")

	d := newDeadline(c.clock, cancel)

	d.arm(timeout.Connect, merged.Timeout)
	res, err := c.http.Do(req)
	elapsed, expired := d.disarm()
	c.opts.Metrics.ObservePhase(timeout.Connect.String(), elapsed)

	if expired {
		if res != nil {
			res.Body.Close()
		}
		logger.Info("connect timeout", slog.Duration("elapsed", elapsed))
		c.opts.Metrics.ClientOutcome(metrics.OutcomeConnectTimeout)
		return nil, status.NewError(ErrConnectTimeout, status.GatewayTimeout)
	}
	if err != nil {
		c.opts.Metrics.ClientOutcome(metrics.OutcomeError)
		return nil, unwrapURLError(err)
	}
	defer res.Body.Close()

	d.arm(timeout.Socket, merged.Timeout)
	body, err := iolib.ReadAll(res.Body, c.opts.MaxBodyBytes)
	elapsed, expired = d.disarm()
	c.opts.Metrics.ObservePhase(timeout.Socket.String(), elapsed)

	if expired {
		logger.Info("socket timeout", slog.Duration("elapsed", elapsed))
		c.opts.Metrics.ClientOutcome(metrics.OutcomeReadTimeout)
		return nil, status.NewError(ErrReadTimeout, status.RequestTimeout)
	}
	if err != nil {
		c.opts.Metrics.ClientOutcome(metrics.OutcomeError)
		return nil, errors.Wrap(err, "reading response body")
	}

	if c.codec != nil {
		if err := c.codec.Deserialize(res.Header, call); err != nil {
			logger.Warn("skipping context deserialization", "error", err.Error())
			c.opts.Metrics.CodecFailure("client", "deserialize")
		}
	}

	response := &http.Response{
		Status:  res.StatusCode,
		Headers: res.Header,
		Body:    body,
	}

	if merged.IsJSON() {
		if err := response.DecodeJSON(); err != nil {
			c.opts.Metrics.ClientOutcome(metrics.OutcomeError)
			return nil, err
		}
	}

	logger.Debug("received response", slog.Int("status", response.Status))
	c.opts.Metrics.ClientOutcome(metrics.OutcomeOK)

	return response, nil
}

func (c *Client) Get(ctx context.Context, call *callctx.Context, request http.Request) (*http.Response, error) {
	request.Method = nethttp.MethodGet
	return c.Send(ctx, call, request)
}

func (c *Client) Post(ctx context.Context, call *callctx.Context, request http.Request) (*http.Response, error) {
	request.Method = nethttp.MethodPost
	return c.Send(ctx, call, request)
}

func (c *Client) Put(ctx context.Context, call *callctx.Context, request http.Request) (*http.Response, error) {
	request.Method = nethttp.MethodPut
	return c.Send(ctx, call, request)
}

func (c *Client) Patch(ctx context.Context, call *callctx.Context, request http.Request) (*http.Response, error) {
	request.Method = nethttp.MethodPatch
	return c.Send(ctx, call, request)
}

func (c *Client) Delete(ctx context.Context, call *callctx.Context, request http.Request) (*http.Response, error) {
	request.Method = nethttp.MethodDelete
	return c.Send(ctx, call, request)
}

// Close releases idle connections. The client stays usable.
func (c *Client) Close() {
	c.http.CloseIdleConnections()
}

func (c *Client) newRequest(ctx context.Context, merged http.Request) (*nethttp.Request, error) {
	target, err := merged.URL()
	if err != nil {
		return nil, errors.Wrap(err, "building target url")
	}

	body, contentType, err := merged.EncodePayload()
	if err != nil {
		return nil, err
	}

	req, err := nethttp.NewRequestWithContext(ctx, merged.MethodOrDefault(), target.String(), body)
	if err != nil {
		return nil, errors.Wrap(err, "creating request")
	}

	for k, v := range merged.Headers {
		req.Header.Set(k, v)
	}
	if host := req.Header.Get("Host"); host != "" {
		req.Host = host
	}
	if contentType != "" && req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", contentType)
	}
	if merged.IsJSON() && req.Header.Get("Accept") == "" {
		req.Header.Set("Accept", http.ContentTypeJSON)
	}

	return req, nil
}

// unwrapURLError strips the locator decoration net/http adds,
// so the transport error reaches the caller as it was raised.
func unwrapURLError(err error) error {
	var uerr *url.Error
	if errors.As(err, &uerr) {
		return uerr.Err
	}
	return err
}
