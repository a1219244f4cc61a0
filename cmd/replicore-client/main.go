// Command replicore-client is a minimal example client host wiring
// config, logging, engine.Client, and transport/wsocket against a
// replicore-server instance.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"os/signal"
	"syscall"

	"github.com/gorilla/websocket"

	"replicore/channel"
	"replicore/config"
	"replicore/engine"
	"replicore/logging"
	"replicore/protocol"
	"replicore/transport/wsocket"
)

func buildRegistry() *protocol.Registry {
	registry := protocol.NewRegistry()
	registry.RegisterChannel(channel.Descriptor{Name: "state", Mode: channel.UnreliableSequenced, BasePriority: 1})
	registry.RegisterChannel(channel.Descriptor{Name: "events", Mode: channel.ReliableOrdered, BasePriority: 2})
	registry.RegisterComponent(protocol.ComponentDescriptor{
		Name: "transform",
		Serialize: func(value any) ([]byte, error) {
			return json.Marshal(value)
		},
		Deserialize: func(data []byte) (any, error) {
			var v map[string]any
			err := json.Unmarshal(data, &v)
			return v, err
		},
	})
	return registry
}

func main() {
	serverURL := os.Getenv("REPLICORE_SERVER_URL")
	if serverURL == "" {
		serverURL = "ws://127.0.0.1:8080/ws?peer=server"
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.New(os.Stderr, cfg.Logging.Level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize structured logger: %v\n", err)
		os.Exit(1)
	}
	logging.ReplaceGlobals(logger)

	u, err := url.Parse(serverURL)
	if err != nil {
		logger.Fatal("invalid server url", logging.Error(err))
	}

	conn, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		logger.Fatal("failed to dial server", logging.Error(err))
	}

	socket := wsocket.New(wsocket.WithPingInterval(cfg.PingInterval), wsocket.WithLogger(logger))
	const serverPeer engine.PeerID = "server"
	socket.Adopt(serverPeer, conn)

	registry := buildRegistry()
	client := engine.NewClient(registry, socket, serverPeer,
		engine.WithTickDuration(cfg.TickDuration),
		engine.WithPingInterval(cfg.PingInterval),
		engine.WithLogger(logger),
	)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	logger.Info("connected to server", logging.String("url", serverURL))
	if err := client.Start(ctx); err != nil && ctx.Err() == nil {
		logger.Error("engine terminated unexpectedly", logging.Error(err))
	}
}
