package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sammck-go/objectgate/gw"
)

var help = `
  Usage: objectgate [options]

  Sets up a client for a host object gateway (connections are dialed
  on first use), optionally starts the inbound callback server, and
  logs pool status until interrupted.

  Options:

    --addr, Outbound gateway address (defaults to 127.0.0.1:25333).

    --token, Auth token presented during each connection's handshake
    (defaults to the OBJECTGATE_TOKEN environment variable).

    --token-file, Path to a file holding the auth token; reloaded
    automatically on change instead of --token.

    --callback-addr, Inbound callback listen address (defaults to
    127.0.0.1:25334). Pass "" to disable the callback server.

    --max-connections, Bound on concurrently open outbound connections
    (defaults to 4).

    -v, Enable debug logging.

    --help, This help text.

`

func sigIntHandler(ctx context.Context, cancel context.CancelFunc) {
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sig:
	case <-ctx.Done():
	}
	signal.Stop(sig)
	cancel()
}

func main() {
	ctx, ctxCancel := context.WithCancel(context.Background())
	defer ctxCancel()

	addr := flag.String("addr", gw.DefaultGatewayAddr, "")
	token := flag.String("token", "", "")
	tokenFile := flag.String("token-file", "", "")
	callbackAddr := flag.String("callback-addr", gw.DefaultCallbackAddr, "")
	maxConnections := flag.Int("max-connections", gw.DefaultMaxConnections, "")
	verbose := flag.Bool("v", false, "")
	showHelp := flag.Bool("help", false, "")
	flag.Usage = func() {
		fmt.Print(help)
		os.Exit(1)
	}
	flag.Parse()
	if *showHelp {
		flag.Usage()
	}

	if *token == "" {
		*token = os.Getenv("OBJECTGATE_TOKEN")
	}

	logLevel := gw.LogLevelInfo
	if *verbose {
		logLevel = gw.LogLevelDebug
	}
	logger := gw.NewLogger("objectgate", logLevel)

	go sigIntHandler(ctx, ctxCancel)

	cfg := gw.Config{
		Addr:           *addr,
		Token:          *token,
		MaxConnections: *maxConnections,
		DialTimeout:    10 * time.Second,
	}
	if *tokenFile != "" {
		tf, err := gw.NewTokenFile(logger, *tokenFile)
		if err != nil {
			logger.Fatalf("cannot load token file: %s", err)
		}
		cfg.TokenSource = tf
	}

	client := gw.NewClient(logger, cfg)
	defer client.Close()

	var cbServer *gw.CallbackServer
	if *callbackAddr != "" {
		cbServer = gw.NewCallbackServer(logger, client, client.ProxyPool())
		go func() {
			if err := cbServer.ListenAndServe(ctx, *callbackAddr); err != nil {
				logger.ELogf("callback server exited: %s", err)
			}
		}()
	}

	logger.ILogf("client ready for gateway at %s", *addr)

	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			logger.ILogf("shutting down")
			if cbServer != nil {
				cbServer.Close()
			}
			return
		case <-ticker.C:
			logger.ILogf("pool status: %s", client.Stats())
		}
	}
}
