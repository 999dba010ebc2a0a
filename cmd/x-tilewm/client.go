package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ItsNotGoodName/x-tilewm/internal/build"
	"github.com/ItsNotGoodName/x-tilewm/internal/core"
	"github.com/ItsNotGoodName/x-tilewm/internal/tree"
	"github.com/danielgtaylor/huma/v2/humacli"
	"github.com/k0kubun/pp"
	"github.com/spf13/cobra"
)

const clientTimeout = 5 * time.Second

type client struct {
	baseURL string
	http    *http.Client
}

func newClient(options *Options) client {
	host := options.Host
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "localhost"
	}
	return client{
		baseURL: "http://" + core.Address(host, options.Port),
		http:    &http.Client{Timeout: clientTimeout},
	}
}

func (c client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", build.Current.UserAgent())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return responseError(method, path, resp)
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// responseError describes a failed request, with the problem detail when the
// body carries one.
func responseError(method, path string, resp *http.Response) error {
	var problem struct {
		Detail string `json:"detail"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&problem); err != nil || problem.Detail == "" {
		return fmt.Errorf("%s %s: %s", method, path, resp.Status)
	}
	return fmt.Errorf("%s %s: %s: %s", method, path, resp.Status, problem.Detail)
}

func newSendCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "send <command>",
		Short: "Send a command to the running window manager",
		Args:  cobra.MinimumNArgs(1),
		Run: humacli.WithOptions(func(cmd *cobra.Command, args []string, options *Options) {
			var out struct {
				ID string `json:"id"`
			}
			err := newClient(options).do(cmd.Context(), http.MethodPost, "/api/commands", map[string]string{
				"command": strings.Join(args, " "),
			}, &out)
			if err != nil {
				cmd.PrintErrln(err)
				return
			}
			cmd.Println(out.ID)
		}),
	}
}

func newTreeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "tree",
		Short: "Print the tree of the active desktop",
		Run: humacli.WithOptions(func(cmd *cobra.Command, args []string, options *Options) {
			var snapshot tree.Snapshot
			if err := newClient(options).do(cmd.Context(), http.MethodGet, "/api/tree", nil, &snapshot); err != nil {
				cmd.PrintErrln(err)
				return
			}
			pp.Fprintln(cmd.OutOrStdout(), snapshot)
		}),
	}
}
