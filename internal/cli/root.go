package cli

import (
	"github.com/chameleoncloud/hammers-go/internal/notifications"
	"github.com/chameleoncloud/hammers-go/internal/workflow"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cloudProfile, logLevel string
	timeout                int
	slackConfigPath        string
)

var rootCommand = &cobra.Command{
	Use:     "hammers",
	Aliases: []string{"hammer"},
	Short:   "Bag o' Hammers: Chameleon testbed maintenance tools",
	Long: `A collection of blunt instruments for keeping an OpenStack-based
testbed tidy: reclaim idle floating IPs and ports, remove orphaned
Neutron ports that conflict with Ironic MACs, kick nodes clinging to
deleted instances, retry stuck IPMI teardowns (with a bounded attempt
ledger), and manage Blazar leases and isolated networks.

Credentials come from a clouds.yaml profile (--cloud) or the standard
OS_* environment variables loaded from an openrc file.`,
}

func Execute() error {
	return rootCommand.Execute()
}

// workflowOptions assembles the shared invocation config from the
// persistent flags. Slack config load failure is surfaced to the
// caller so a typoed path doesn't silently disable reporting.
func workflowOptions() (workflow.Options, error) {
	opts := workflow.Options{
		CloudProfile:   cloudProfile,
		TimeoutSeconds: timeout,
		LogLevel:       logLevel,
	}

	if slackConfigPath != "" {
		slack, err := notifications.LoadSlackConfig(slackConfigPath)
		if err != nil {
			return workflow.Options{}, err
		}
		opts.Slack = slack
	}

	return opts, nil
}

func init() {
	rootCommand.AddGroup(&cobra.Group{ID: "janitor", Title: "Janitor Tools"})
	rootCommand.AddGroup(&cobra.Group{ID: "testbed", Title: "Testbed Tools"})

	// Global persistent flags with env var support
	rootCommand.PersistentFlags().StringVar(&cloudProfile, "cloud", "", "Name of the cloud profile as in clouds.yaml (empty uses OS_* env vars)")
	rootCommand.PersistentFlags().IntVar(&timeout, "timeout", 0, "Global execution timeout in seconds (0 = run indefinitely)")
	rootCommand.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Logging level (debug, info, warn, error)")
	rootCommand.PersistentFlags().StringVar(&slackConfigPath, "slack", "", "JSON file with Slack webhook information to send notifications to")

	// Bind to env vars
	_ = viper.BindPFlag("cloud", rootCommand.PersistentFlags().Lookup("cloud"))
	_ = viper.BindPFlag("timeout", rootCommand.PersistentFlags().Lookup("timeout"))
	_ = viper.BindPFlag("log-level", rootCommand.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("slack", rootCommand.PersistentFlags().Lookup("slack"))

	viper.SetEnvPrefix("HAMMERS")
	viper.AutomaticEnv()
}
