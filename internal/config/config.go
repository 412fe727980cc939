/*
Package config centralizes environment-driven configuration for both
binaries (agentd, gatewayd), generalized from the teacher's
core/config.go LoadConfig/InitializeLogger. Loading goes through
viper so cobra flags, environment variables, and defaults compose the
usual way for this stack.
*/
package config

import (
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// AgentConfig holds everything cmd/agentd needs to start the gRPC
// Agent Service.
type AgentConfig struct {
	GRPCAddr        string
	ModelConfigPath string
	MaxSteps        int
	TaskTimeout     time.Duration

	LogLevel  string
	LogFormat string
}

// GatewayConfig holds everything cmd/gatewayd needs to start the
// HTTP/SSE Gateway Service.
type GatewayConfig struct {
	HTTPAddr        string
	AgentGRPCAddr   string
	ModelConfigPath string
	CORSOrigins     []string
	HeartbeatEvery  time.Duration

	LogLevel  string
	LogFormat string
}

// LoadAgent reads AgentConfig from environment variables (and any
// flags a caller has already bound into v), applying the same
// sensible-defaults-then-override strategy as the teacher's
// LoadConfig.
func LoadAgent(v *viper.Viper) AgentConfig {
	v.SetDefault("grpc_addr", ":9090")
	v.SetDefault("model_config_path", "config/models.yaml")
	v.SetDefault("max_steps", 10)
	v.SetDefault("task_timeout_seconds", 120)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "json")
	bindEnv(v)

	return AgentConfig{
		GRPCAddr:        v.GetString("grpc_addr"),
		ModelConfigPath: v.GetString("model_config_path"),
		MaxSteps:        v.GetInt("max_steps"),
		TaskTimeout:     time.Duration(v.GetInt("task_timeout_seconds")) * time.Second,
		LogLevel:        v.GetString("log_level"),
		LogFormat:       v.GetString("log_format"),
	}
}

// LoadGateway reads GatewayConfig the same way.
func LoadGateway(v *viper.Viper) GatewayConfig {
	v.SetDefault("http_addr", ":8080")
	v.SetDefault("agent_grpc_addr", "localhost:9090")
	v.SetDefault("model_config_path", "config/models.yaml")
	v.SetDefault("cors_origins", "*")
	v.SetDefault("heartbeat_seconds", 30)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "json")
	bindEnv(v)

	return GatewayConfig{
		HTTPAddr:        v.GetString("http_addr"),
		AgentGRPCAddr:   v.GetString("agent_grpc_addr"),
		ModelConfigPath: v.GetString("model_config_path"),
		CORSOrigins:     strings.Split(v.GetString("cors_origins"), ","),
		HeartbeatEvery:  time.Duration(v.GetInt("heartbeat_seconds")) * time.Second,
		LogLevel:        v.GetString("log_level"),
		LogFormat:       v.GetString("log_format"),
	}
}

func bindEnv(v *viper.Viper) {
	v.SetEnvPrefix("TRAVELAGENT")
	v.AutomaticEnv()
}

// InitLogger configures a logrus.Logger the way the teacher's
// InitializeLogger does: JSON formatting, RFC3339 timestamps, level
// from config, stdout output.
func InitLogger(level, format string) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stdout)

	if format == "text" {
		logger.SetFormatter(&logrus.TextFormatter{TimestampFormat: time.RFC3339})
	} else {
		logger.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339})
	}

	switch strings.ToLower(level) {
	case "debug":
		logger.SetLevel(logrus.DebugLevel)
	case "warn", "warning":
		logger.SetLevel(logrus.WarnLevel)
	case "error":
		logger.SetLevel(logrus.ErrorLevel)
	default:
		logger.SetLevel(logrus.InfoLevel)
	}

	return logger
}
