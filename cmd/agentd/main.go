/*
Command agentd runs the Agent Service: the gRPC process exposing
ProcessMessage, StreamMessage and HealthCheck over the Mode
Dispatcher. Generalized from the teacher's single main.go into a
cobra-rooted entrypoint so flags and environment variables compose the
usual way for this stack.
*/
package main

import (
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"google.golang.org/grpc"

	"travelagent/internal/cancel"
	"travelagent/internal/config"
	"travelagent/internal/modelmanager"
	"travelagent/internal/registry"
	"travelagent/internal/rpc"
	"travelagent/internal/travel"
)

func main() {
	v := viper.New()
	root := &cobra.Command{
		Use:   "agentd",
		Short: "Runs the travel agent's gRPC Agent Service",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(v)
		},
	}

	root.Flags().String("grpc-addr", "", "address to listen on (overrides TRAVELAGENT_GRPC_ADDR)")
	root.Flags().String("model-config", "", "path to the model registry YAML file")
	_ = v.BindPFlag("grpc_addr", root.Flags().Lookup("grpc-addr"))
	_ = v.BindPFlag("model_config_path", root.Flags().Lookup("model-config"))

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(v *viper.Viper) error {
	cfg := config.LoadAgent(v)
	logger := config.InitLogger(cfg.LogLevel, cfg.LogFormat)
	logger.WithFields(logrus.Fields{
		"grpc_addr":   cfg.GRPCAddr,
		"max_steps":   cfg.MaxSteps,
		"model_config": cfg.ModelConfigPath,
	}).Info("starting agent service")

	models, err := modelmanager.New(cfg.ModelConfigPath, logger)
	if err != nil {
		return fmt.Errorf("load model config: %w", err)
	}

	reg := registry.New(logger)
	travel.RegisterDefaults(reg)

	cancels := cancel.New()
	server := rpc.New(reg, models, cancels, cfg.MaxSteps, logger)

	grpcServer := grpc.NewServer()
	rpc.RegisterAgentServer(grpcServer, server)

	listener, err := net.Listen("tcp", cfg.GRPCAddr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", cfg.GRPCAddr, err)
	}

	go func() {
		logger.WithField("addr", cfg.GRPCAddr).Info("agent service listening")
		if err := grpcServer.Serve(listener); err != nil {
			logger.WithError(err).Fatal("grpc server stopped unexpectedly")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down agent service")
	stopped := make(chan struct{})
	go func() {
		grpcServer.GracefulStop()
		close(stopped)
	}()

	select {
	case <-stopped:
		logger.Info("agent service shutdown complete")
	case <-time.After(30 * time.Second):
		logger.Warn("graceful shutdown timed out, forcing stop")
		grpcServer.Stop()
	}

	return nil
}
