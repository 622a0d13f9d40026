package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/url"

	"trooba-http-transport/application/callctx"
	"trooba-http-transport/application/http"
	"trooba-http-transport/application/http/bridge"
	"trooba-http-transport/application/http/status"
	"trooba-http-transport/application/util/domain"
	"trooba-http-transport/metrics"

	"github.com/benbjohnson/clock"
	"github.com/fatih/color"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/tidwall/gjson"
)

type requestOptions struct {
	method  string
	data    string
	headers map[string]string
	query   map[string]string
	context map[string]string
	json    bool
	sel     string
}

func newRequestCmd(opts *rootOptions) *cobra.Command {
	ro := &requestOptions{}

	cmd := &cobra.Command{
		Use:   "request [path]",
		Short: "Send one call to the configured endpoint",
		Long: `Send one call to the endpoint in the client section of the config
and print the status, the body and the context returned by the peer.

Examples:
  trooba-http request /search --query q=nike
  trooba-http request /user -X POST --json -d '{"name":"nike"}' --context foo=bar
  trooba-http request /user --json --select name`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}

			logger := newLogger(cmd.ErrOrStderr(), cfg.LogLevel)
			tr, err := bridge.New(cfg.Bridge(metrics.New(prometheus.NewRegistry())), nil, domain.NetLookuper{}, nil, logger, clock.New())
			if err != nil {
				return err
			}

			request, err := ro.build(args)
			if err != nil {
				return err
			}

			c := tr.Client()
			defer c.Close()

			call := callctx.New(nil)
			for k, v := range ro.context {
				call.Set(k, v)
			}

			res, err := c.Send(cmd.Context(), call, request)
			if err != nil {
				if code, ok := status.Code(err); ok {
					printStatus(cmd.OutOrStdout(), code)
				}
				return err
			}

			return ro.print(cmd.OutOrStdout(), res, call)
		},
	}

	cmd.Flags().StringVarP(&ro.method, "method", "X", "", "request method (default from config, else GET)")
	cmd.Flags().StringVarP(&ro.data, "data", "d", "", "request body")
	cmd.Flags().StringToStringVarP(&ro.headers, "header", "H", nil, "request headers as key=value")
	cmd.Flags().StringToStringVar(&ro.query, "query", nil, "query parameters as key=value")
	cmd.Flags().StringToStringVar(&ro.context, "context", nil, "context values sent along as key=value")
	cmd.Flags().BoolVar(&ro.json, "json", false, "encode the body and decode the response as JSON")
	cmd.Flags().StringVar(&ro.sel, "select", "", "print only this gjson path of the response body")

	return cmd
}

func (ro *requestOptions) build(args []string) (http.Request, error) {
	request := http.Request{
		Method:  ro.method,
		Headers: ro.headers,
	}
	if len(args) > 0 {
		request.Path = args[0]
	}
	if len(ro.query) > 0 {
		request.Query = make(url.Values, len(ro.query))
		for k, v := range ro.query {
			request.Query.Set(k, v)
		}
	}
	if ro.json {
		request.JSON = &ro.json
	}

	if ro.data == "" {
		return request, nil
	}
	if !ro.json {
		request.Body = ro.data
		return request, nil
	}

	var payload any
	if err := json.Unmarshal([]byte(ro.data), &payload); err != nil {
		return http.Request{}, errors.Wrap(err, "parsing --data as json")
	}
	request.Body = payload
	return request, nil
}

func (ro *requestOptions) print(w io.Writer, res *http.Response, call *callctx.Context) error {
	printStatus(w, res.Status)

	body := res.String()
	if ro.sel != "" {
		if !gjson.Valid(body) {
			return errors.New("response body is not json, cannot select")
		}
		body = gjson.Get(body, ro.sel).String()
	}
	fmt.Fprintln(w, body)

	if public := call.Snapshot(); len(public) > 0 {
		b, err := json.Marshal(public)
		if err != nil {
			return errors.Wrap(err, "encoding returned context")
		}
		fmt.Fprintf(w, "%s %s\n", color.New(color.Bold).Sprint("context:"), b)
	}

	return nil
}

func printStatus(w io.Writer, code int) {
	c := color.New(color.FgGreen)
	switch {
	case code >= 500:
		c = color.New(color.FgRed)
	case code >= 300:
		c = color.New(color.FgYellow)
	}
	fmt.Fprintln(w, c.Sprint(status.FromCode(code).String()))
}
