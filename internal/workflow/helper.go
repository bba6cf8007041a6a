package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/chameleoncloud/hammers-go/internal/cloud"
	"github.com/chameleoncloud/hammers-go/internal/cloud/openstack"
	"github.com/chameleoncloud/hammers-go/internal/notifications"
	"github.com/google/uuid"
	"github.com/lmittmann/tint"
)

// Options carries the shared invocation configuration into each
// workflow. There is deliberately no package-level state; everything a
// workflow needs arrives through this struct.
type Options struct {
	// CloudProfile is the clouds.yaml entry; empty means OS_* env vars.
	CloudProfile string
	// TimeoutSeconds bounds the whole invocation (0 = no limit).
	TimeoutSeconds int
	// LogLevel is one of debug, info, warn, error.
	LogLevel string
	// Slack is the optional report sink; nil disables notifications.
	Slack *notifications.Slack
}

// SetupLogger configures the application-wide logger. It uses tint for
// colorized, structured logging that is easy to read in terminals.
func SetupLogger(level string, cloudName string) *slog.Logger {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	handler := tint.NewHandler(os.Stderr, &tint.Options{
		Level: logLevel,
	})

	return slog.New(handler).With("cloud_profile", cloudName)
}

// runLogger builds the per-invocation logger with a unique run ID so
// interleaved daemon runs can be told apart.
func (o Options) runLogger(workflowName string) *slog.Logger {
	runID := fmt.Sprintf("run-%s", uuid.New().String())
	return SetupLogger(o.LogLevel, o.CloudProfile).With("workflow", workflowName, "run_id", runID)
}

// newContext applies the global invocation timeout when one is set.
func (o Options) newContext() (context.Context, context.CancelFunc) {
	if o.TimeoutSeconds > 0 {
		return context.WithTimeout(context.Background(), time.Duration(o.TimeoutSeconds)*time.Second)
	}
	return context.WithCancel(context.Background())
}

// initClient authenticates and returns a ready OpenStack client.
// Authentication failure aborts the invocation before any resource is
// touched.
func (o Options) initClient(logger *slog.Logger) (*openstack.Client, error) {
	client := &openstack.Client{
		ProfileName: o.CloudProfile,
		RetryConfig: cloud.DefaultRetryConfig(),
	}

	if err := client.NewClient(); err != nil {
		logger.Error("OpenStack client initialization failed", "error", err)
		return nil, fmt.Errorf("client init failed: %w", err)
	}
	logger.Info("OpenStack connection established")

	return client, nil
}

// notify posts to Slack when configured. Notification failures are
// logged and swallowed; they never abort a workflow.
func (o Options) notify(logger *slog.Logger, subcommand, message, color string) {
	if err := o.Slack.Post(subcommand, message, color); err != nil {
		logger.Warn("Slack notification failed", "error", err)
	}
}
