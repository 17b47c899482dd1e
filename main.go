// main.go
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/xiaoliu2354/huobao-canvas/internal/websocket"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	app := NewApp(logger)
	if err := app.Startup(ctx); err != nil {
		logger.Fatal("startup failed", zap.Error(err))
	}

	wsServer := websocket.NewServer(app, os.Getenv("HUOBAO_CANVAS_AUTH_KEY"), logger)
	app.SetEventHubBroadcaster(wsServer)

	port, err := wsServer.Start(ctx)
	if err != nil {
		logger.Fatal("websocket server failed", zap.Error(err))
	}

	// The launcher reads this line to find the port.
	fmt.Printf("HUOBAO_CANVAS_READY:port=%d\n", port)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	logger.Info("shutting down")
	if err := wsServer.Stop(ctx); err != nil {
		logger.Warn("websocket shutdown failed", zap.Error(err))
	}
	app.Shutdown(ctx)
}
