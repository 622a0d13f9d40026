package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net"
	nethttp "net/http"
	"sync"

	"trooba-http-transport/application/callctx"
	"trooba-http-transport/application/http"
	"trooba-http-transport/application/propagation"
	"trooba-http-transport/transport"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

var ErrAlreadyStarted = errors.New("server already started")

// Factory builds a server around a pipeline.
type Factory func(pipeline Pipeline) *Server

type Server struct {
	pipeline Pipeline
	codec    propagation.Codec
	listen   transport.ListenFunc

	srv *nethttp.Server
	l   net.Listener
	wg  sync.WaitGroup
	mu  sync.Mutex

	logger *slog.Logger
	opts   Options
	clock  clock.Clock
}

// New creates a server. codec may be nil, in which case inbound context
// is ignored and none is written back.
func New(
	pipeline Pipeline,
	codec propagation.Codec,
	listen transport.ListenFunc,
	logger *slog.Logger,
	clock clock.Clock,
	opts Options,
) *Server {
	if listen == nil {
		listen = transport.Listen
	}

	return &Server{
		pipeline: pipeline,
		codec:    codec,
		listen:   listen,
		logger:   logger,
		opts:     opts,
		clock:    clock,
	}
}

// Start binds the listener and serves in the background.
// Bind errors are returned synchronously.
func (s *Server) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.srv != nil {
		return ErrAlreadyStarted
	}

	l, err := s.listen(context.Background(), transport.PortAddr(s.opts.Port))
	if err != nil {
		return errors.Wrapf(err, "binding port %d", s.opts.Port)
	}

	s.l = l
	s.srv = &nethttp.Server{
		Handler:           s,
		ReadHeaderTimeout: s.opts.Timeout.ReadHeaderTimeout,
		IdleTimeout:       s.opts.Timeout.IdleTimeout,
		ErrorLog:          slog.NewLogLogger(s.logger.Handler(), slog.LevelWarn),
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.srv.Serve(l); !errors.Is(err, nethttp.ErrServerClosed) {
			s.logger.Error(
				"unexpected error when serving",
				"error", err.Error(),
			)
		}
	}()

	s.logger.Info("server listening", "addr", l.Addr().String())
	return nil
}

// Addr returns the bound address, or nil before Start.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.l == nil {
		return nil
	}
	return s.l.Addr()
}

// Close stops the listener and closes every connection.
func (s *Server) Close() error {
	s.mu.Lock()
	srv := s.srv
	s.mu.Unlock()

	if srv == nil {
		return nil
	}

	err := srv.Close()
	s.wg.Wait()
	return errors.Wrap(err, "closing server")
}

// Shutdown stops accepting calls and waits for in-flight ones until ctx ends.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	srv := s.srv
	s.mu.Unlock()

	if srv == nil {
		return nil
	}

	err := srv.Shutdown(ctx)
	s.wg.Wait()
	return errors.Wrap(err, "shutting down server")
}

func (s *Server) ServeHTTP(w nethttp.ResponseWriter, r *nethttp.Request) {
	started := s.clock.Now()

	id := uuid.NewString()
	logger := s.logger.With("call", id)

	call := callctx.New(nil)
	call.Meta = callctx.Metadata{
		Path:       r.URL.Path,
		Operation:  r.Method,
		RawRequest: r,
		Server:     true,
		CallID:     id,
	}

	if s.codec != nil {
		if err := s.codec.Deserialize(r.Header, call); err != nil {
			logger.Warn("skipping context deserialization", "error", err.Error())
			s.opts.Metrics.CodecFailure("server", "deserialize")
		}
	}

	hctx := &HandleContext{
		ctx:     r.Context(),
		call:    call,
		request: newRequest(r),
	}

	res, err := hctx.doHandle(s.pipeline)
	if err != nil {
		logger.Error("pipeline failed", "error", err.Error())
		res = http.Text(nethttp.StatusInternalServerError, err.Error())
		res.Headers = nethttp.Header{"Content-Type": {"text/plain; charset=utf-8"}}
	}

	code := s.write(w, call, res, logger)

	s.opts.Metrics.ServerStatus(code)
	logger.Debug("served call",
		"method", r.Method,
		"path", r.URL.Path,
		"status", code,
		"elapsed", s.clock.Since(started),
	)
}

// write sends res. The context header is written after the pipeline's own
// headers and replaces any it set under the same name.
func (s *Server) write(w nethttp.ResponseWriter, call *callctx.Context, res *http.Response, logger *slog.Logger) int {
	body, contentType, err := encodeBody(res)
	if err != nil {
		logger.Error("encoding response", "error", err.Error())
		res = http.Text(nethttp.StatusInternalServerError, err.Error())
		body = res.Body
	}

	h := w.Header()
	for k, v := range res.Headers {
		h[k] = append([]string(nil), v...)
	}
	if contentType != "" && h.Get("Content-Type") == "" {
		h.Set("Content-Type", contentType)
	}

	if s.codec != nil {
		if err := s.codec.Serialize(call, h); err != nil {
			logger.Warn("skipping context serialization", "error", err.Error())
			s.opts.Metrics.CodecFailure("server", "serialize")
		}
	}

	code := res.Status
	if code == 0 {
		code = nethttp.StatusOK
	}

	w.WriteHeader(code)
	if _, err := w.Write(body); err != nil {
		logger.Debug("writing response body", "error", err.Error())
	}

	return code
}

// encodeBody returns the body verbatim, or Value as JSON when no body is set.
func encodeBody(res *http.Response) (body []byte, contentType string, err error) {
	if res.Body != nil || res.Value == nil {
		return res.Body, "", nil
	}

	body, err = json.Marshal(res.Value)
	if err != nil {
		return nil, "", errors.Wrap(err, "encoding response value")
	}
	return body, http.ContentTypeJSON, nil
}
