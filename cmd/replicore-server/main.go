// Command replicore-server is a minimal example host binary wiring
// together config, logging, engine.Server, transport/wsocket, admin, and
// statushttp into a single process.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/websocket"
	"google.golang.org/grpc"

	"replicore/admin"
	"replicore/channel"
	"replicore/config"
	"replicore/engine"
	"replicore/logging"
	"replicore/protocol"
	"replicore/statushttp"
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
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	var logWriter = os.Stderr
	logger, err := logging.New(logWriter, cfg.Logging.Level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize structured logger: %v\n", err)
		os.Exit(1)
	}
	logging.ReplaceGlobals(logger)

	socket := wsocket.New(wsocket.WithPingInterval(cfg.PingInterval), wsocket.WithLogger(logger))

	registry := buildRegistry()
	server := engine.NewServer(registry, socket,
		engine.WithTickDuration(cfg.TickDuration),
		engine.WithPingInterval(cfg.PingInterval),
		engine.WithLogger(logger),
	)

	mux := http.NewServeMux()
	upgrader := websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}
	var authenticator wsocket.Authenticator = wsocket.AllowAll{}
	if secret := os.Getenv("REPLICORE_WS_HMAC_SECRET"); secret != "" {
		hmacAuth, err := wsocket.NewHMACAuthenticator(secret, 2*time.Second)
		if err != nil {
			logger.Fatal("failed to configure websocket authenticator", logging.Error(err))
		}
		authenticator = hmacAuth
		logger.Info("websocket HMAC authentication enabled")
	} else {
		logger.Info("websocket authentication disabled")
	}
	mux.HandleFunc("/ws", wsocket.Upgrader(socket, upgrader, authenticator))

	handlers := statushttp.NewHandlerSet(statushttp.Options{Readiness: server})
	handlers.Register(mux)

	httpServer := &http.Server{Addr: ":8080", Handler: mux}
	go func() {
		logger.Info("http listening", logging.String("address", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server terminated", logging.Error(err))
		}
	}()

	grpcServer := grpc.NewServer(grpc.ForceServerCodec(admin.Codec()))
	adminService := admin.NewService(server, nil, cfg.PingInterval)
	admin.Register(grpcServer, adminService)
	go func() {
		listener, err := net.Listen("tcp", ":9090")
		if err != nil {
			logger.Error("grpc listener failed", logging.Error(err))
			return
		}
		logger.Info("grpc listening", logging.String("address", ":9090"))
		if err := grpcServer.Serve(listener); err != nil {
			logger.Error("grpc server terminated", logging.Error(err))
		}
	}()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := server.Start(ctx); err != nil && ctx.Err() == nil {
		logger.Error("engine terminated unexpectedly", logging.Error(err))
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	_ = httpServer.Shutdown(shutdownCtx)
	grpcServer.GracefulStop()
}
