// lattice-cli: command-line tool for poking Lattice API endpoints through the
// SDK engine, mostly useful for diagnostics and strategy experiments.
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/carlmjohnson/versioninfo"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"github.com/lattice-web/lattice/client"
	"github.com/lattice-web/lattice/config"
)

func main() {
	if err := run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	_ = godotenv.Load()

	app := cli.App{
		Name:    "lattice-cli",
		Usage:   "command-line client for the Lattice API",
		Version: versioninfo.Short(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "base-url",
				Usage:   "API origin, eg https://api.lattice.example",
				EnvVars: []string{config.EnvBaseURL},
			},
			&cli.StringFlag{
				Name:    "service-key",
				EnvVars: []string{config.EnvServiceKey},
			},
			&cli.StringFlag{
				Name:    "service-secret",
				EnvVars: []string{config.EnvServiceSecret},
			},
			&cli.StringFlag{
				Name:    "owner-key",
				EnvVars: []string{config.EnvServiceOwnerKey},
			},
			&cli.StringFlag{
				Name:    "owner-secret",
				EnvVars: []string{config.EnvServiceOwnerSecret},
			},
			&cli.StringFlag{
				Name:    "proof-key-file",
				Usage:   "path to a JWK file enabling DPoP proofs on every call",
				EnvVars: []string{config.EnvProofKeyFile},
			},
			&cli.IntFlag{
				Name:    "connect-timeout-ms",
				Value:   int(config.DefaultConnectTimeout / time.Millisecond),
				EnvVars: []string{config.EnvConnectTimeoutMS},
			},
			&cli.IntFlag{
				Name:    "read-timeout-ms",
				Value:   int(config.DefaultReadTimeout / time.Millisecond),
				EnvVars: []string{config.EnvReadTimeoutMS},
			},
			&cli.BoolFlag{
				Name:  "owner",
				Usage: "authenticate with the service-owner credential pair",
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "enable debug logging",
			},
		},
		Commands: []*cli.Command{
			{
				Name:      "echo",
				Usage:     "unauthenticated diagnostic call",
				ArgsUsage: "<path>",
				Flags:     callFlags(),
				Action:    runCall(http.MethodGet, true),
			},
			{
				Name:      "get",
				Usage:     "GET an endpoint",
				ArgsUsage: "<path>",
				Flags:     callFlags(),
				Action:    runCall(http.MethodGet, false),
			},
			{
				Name:      "post",
				Usage:     "POST a JSON body (from --body or stdin) to an endpoint",
				ArgsUsage: "<path>",
				Flags: append(callFlags(),
					&cli.StringFlag{
						Name:  "body",
						Usage: "request body as a JSON string; '-' reads stdin",
					},
				),
				Action: runCall(http.MethodPost, false),
			},
			{
				Name:      "delete",
				Usage:     "DELETE an endpoint",
				ArgsUsage: "<path>",
				Flags:     callFlags(),
				Action:    runCall(http.MethodDelete, false),
			},
		},
		Before: func(cctx *cli.Context) error {
			level := slog.LevelInfo
			if cctx.Bool("verbose") {
				level = slog.LevelDebug
			}
			h := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
			slog.SetDefault(slog.New(h))
			return nil
		},
	}
	return app.Run(args)
}

func callFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringSliceFlag{
			Name:  "param",
			Usage: "query parameter as key=value (repeatable; order preserved)",
		},
		&cli.StringSliceFlag{
			Name:  "header",
			Usage: "extra request header as Name: Value (repeatable)",
		},
		&cli.StringFlag{
			Name:  "on-not-found",
			Usage: "404 handling: error, nil, parse, or success",
			Value: "error",
		},
		&cli.StringFlag{
			Name:  "on-client-error",
			Usage: "4xx handling: error, parse, or default",
			Value: "error",
		},
	}
}

func configFromFlags(cctx *cli.Context) (*config.Config, error) {
	cfg := &config.Config{
		BaseURL:            cctx.String("base-url"),
		ServiceOwnerKey:    cctx.String("owner-key"),
		ServiceOwnerSecret: cctx.String("owner-secret"),
		ServiceKey:         cctx.String("service-key"),
		ServiceSecret:      cctx.String("service-secret"),
		ConnectTimeout:     time.Duration(cctx.Int("connect-timeout-ms")) * time.Millisecond,
		ReadTimeout:        time.Duration(cctx.Int("read-timeout-ms")) * time.Millisecond,
	}
	if fpath := cctx.String("proof-key-file"); fpath != "" {
		key, err := config.LoadProofKeyFile(fpath)
		if err != nil {
			return nil, err
		}
		cfg.ProofKey = key
	}
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runCall(method string, unauthenticated bool) cli.ActionFunc {
	return func(cctx *cli.Context) error {
		if cctx.Args().Len() != 1 {
			return fmt.Errorf("expected exactly one argument: the endpoint path")
		}
		path := cctx.Args().First()

		cfg, err := configFromFlags(cctx)
		if err != nil {
			return err
		}
		var c *client.APIClient
		if cctx.Bool("owner") {
			c, err = client.NewServiceOwnerClient(cfg)
		} else {
			c, err = client.NewServiceClient(cfg)
		}
		if err != nil {
			return err
		}

		req := &client.APIRequest{
			Method:          method,
			Path:            path,
			Unauthenticated: unauthenticated,
		}
		for _, raw := range cctx.StringSlice("param") {
			k, v, _ := strings.Cut(raw, "=")
			req.Params.Add(k, v)
		}
		if headers := cctx.StringSlice("header"); len(headers) > 0 {
			req.Options = &client.Options{Headers: map[string]string{}}
			for _, raw := range headers {
				k, v, ok := strings.Cut(raw, ":")
				if !ok {
					return fmt.Errorf("malformed header flag (want 'Name: Value'): %q", raw)
				}
				req.Options.Headers[strings.TrimSpace(k)] = strings.TrimSpace(v)
			}
		}
		if req.OnNotFound, err = client.ParseNotFoundHandling(cctx.String("on-not-found")); err != nil {
			return err
		}
		if req.OnClientError, err = client.ParseClientErrorHandling(cctx.String("on-client-error")); err != nil {
			return err
		}
		if method == http.MethodPost {
			body, err := readBody(cctx)
			if err != nil {
				return err
			}
			req.Body = body
		}

		var out json.RawMessage
		produced, err := c.Do(cctx.Context, req, &out)
		if err != nil {
			return err
		}
		if !produced {
			slog.Info("call succeeded with no response value")
			return nil
		}
		var pretty bytes.Buffer
		if err := json.Indent(&pretty, out, "", "  "); err != nil {
			// not JSON after all; print raw
			fmt.Println(string(out))
			return nil
		}
		fmt.Println(pretty.String())
		return nil
	}
}

func readBody(cctx *cli.Context) (json.RawMessage, error) {
	raw := cctx.String("body")
	if raw == "-" {
		b, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, err
		}
		raw = string(b)
	}
	if raw == "" {
		return nil, fmt.Errorf("POST requires --body")
	}
	if !json.Valid([]byte(raw)) {
		return nil, fmt.Errorf("request body is not valid JSON")
	}
	return json.RawMessage(raw), nil
}
