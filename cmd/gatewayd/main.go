/*
Command gatewayd runs the SSE Gateway: the HTTP process external
clients talk to, bridging into the Agent Service over gRPC.
*/
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"google.golang.org/grpc"

	"travelagent/internal/config"
	"travelagent/internal/gateway"
	"travelagent/internal/modelmanager"
	"travelagent/internal/rpc"
	"travelagent/internal/session"
)

func main() {
	v := viper.New()
	root := &cobra.Command{
		Use:   "gatewayd",
		Short: "Runs the travel agent's HTTP/SSE Gateway Service",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(v)
		},
	}

	root.Flags().String("http-addr", "", "address to listen on (overrides TRAVELAGENT_HTTP_ADDR)")
	root.Flags().String("agent-addr", "", "address of the Agent Service")
	_ = v.BindPFlag("http_addr", root.Flags().Lookup("http-addr"))
	_ = v.BindPFlag("agent_grpc_addr", root.Flags().Lookup("agent-addr"))

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(v *viper.Viper) error {
	cfg := config.LoadGateway(v)
	logger := config.InitLogger(cfg.LogLevel, cfg.LogFormat)
	logger.WithFields(logrus.Fields{
		"http_addr":  cfg.HTTPAddr,
		"agent_addr": cfg.AgentGRPCAddr,
	}).Info("starting gateway service")

	conn, err := grpc.NewClient(cfg.AgentGRPCAddr, rpc.DialOptions()...)
	if err != nil {
		return fmt.Errorf("dial agent service at %s: %w", cfg.AgentGRPCAddr, err)
	}
	defer conn.Close()

	agentClient := rpc.NewAgentClient(conn)
	sessions := session.New(logger)

	models, err := modelmanager.New(cfg.ModelConfigPath, logger)
	if err != nil {
		return fmt.Errorf("load model config: %w", err)
	}

	gw := gateway.New(agentClient, sessions, models, cfg.HeartbeatEvery, logger)

	e := echo.New()
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	gw.RegisterRoutes(e, cfg.CORSOrigins)

	go func() {
		logger.WithField("addr", cfg.HTTPAddr).Info("gateway service listening")
		if err := e.Start(cfg.HTTPAddr); err != nil {
			logger.WithError(err).Info("gateway http server stopped")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down gateway service")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		logger.WithError(err).Error("gateway shutdown did not complete cleanly")
	}
	return nil
}
