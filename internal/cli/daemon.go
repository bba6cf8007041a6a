package cli

import (
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/chameleoncloud/hammers-go/internal/workflow"
	"github.com/go-co-op/gocron-ui/server"
	"github.com/go-co-op/gocron/v2"
	"github.com/spf13/cobra"
)

var (
	reaperSchedule    string
	janitorSchedule   string
	daemonGraceDays   float64
	daemonWhitelist   string
	daemonBindAddress string
)

var daemonCommand = &cobra.Command{
	Use:     "daemon",
	GroupID: "janitor",
	Short:   "Run the janitor tools on a schedule",
	Long: `Starts hammers as a long-running service that periodically sweeps the
cloud: the neutron reaper on one cron schedule, and the MAC conflict,
undead instance and IPMI retry janitors on another. A small dashboard
exposes job status.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		banner := fmt.Sprintf("Hammers - Daemon Mode \n\nVersion: %s\nBuild Date: %s", HammersVersion, HammersDate)
		fmt.Println(headerStyle.Render(banner))

		opts, err := workflowOptions()
		if err != nil {
			return err
		}

		dlog := workflow.SetupLogger(logLevel, cloudProfile).With("component", "daemon")

		s, err := gocron.NewScheduler()
		if err != nil {
			return fmt.Errorf("failed to create scheduler: %w", err)
		}
		s.Start()
		dlog.Info("Scheduler started", "cloud", cloudProfile)

		jobs := []struct {
			name     string
			schedule string
			task     func()
		}{
			{
				name:     "Neutron Reaper (floating IPs)",
				schedule: reaperSchedule,
				task: func() {
					if err := workflow.RunNeutronReaper(opts, workflow.ReapIPs, daemonGraceDays, workflow.ModeDelete, daemonWhitelist); err != nil {
						dlog.Error("Reaper run failed", "resource", "ip", "error", err)
					}
				},
			},
			{
				name:     "Neutron Reaper (ports)",
				schedule: reaperSchedule,
				task: func() {
					if err := workflow.RunNeutronReaper(opts, workflow.ReapPorts, daemonGraceDays, workflow.ModeDelete, daemonWhitelist); err != nil {
						dlog.Error("Reaper run failed", "resource", "port", "error", err)
					}
				},
			},
			{
				name:     "Conflict MACs",
				schedule: janitorSchedule,
				task: func() {
					if err := workflow.RunConflictMACs(opts, true, false); err != nil {
						dlog.Error("Conflict MACs run failed", "error", err)
					}
				},
			},
			{
				name:     "Undead Instances",
				schedule: janitorSchedule,
				task: func() {
					if err := workflow.RunUndeadInstances(opts, true, false); err != nil {
						dlog.Error("Undead instances run failed", "error", err)
					}
				},
			},
			{
				name:     "IPMI Retry",
				schedule: janitorSchedule,
				task: func() {
					if err := workflow.RunIPMIRetry(opts, true, false, false); err != nil {
						dlog.Error("IPMI retry run failed", "error", err)
					}
				},
			},
		}

		for _, jobSpec := range jobs {
			job, err := s.NewJob(
				gocron.CronJob(jobSpec.schedule, false),
				gocron.NewTask(jobSpec.task),
				gocron.WithName(jobSpec.name),
				gocron.WithSingletonMode(gocron.LimitModeReschedule),
			)
			if err != nil {
				return fmt.Errorf("failed to schedule %s: %w", jobSpec.name, err)
			}

			if nextRun, err := job.NextRun(); err == nil {
				dlog.Info("Job scheduled",
					"job_name", job.Name(),
					"job_id", job.ID(),
					"schedule", jobSpec.schedule,
					"next_run", nextRun.Format(time.RFC3339))
			}
		}

		// Serve the dashboard in the background so the signal handler
		// below still owns shutdown.
		srv := server.NewServer(s, 8080, server.WithTitle("Bag o' Hammers - Dashboard"))
		go func() {
			dlog.Info("Dashboard started", "address", daemonBindAddress)
			if err := http.ListenAndServe(daemonBindAddress, srv.Router); err != nil {
				dlog.Error("Dashboard server stopped", "error", err)
			}
		}()

		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		<-sigChan

		dlog.Warn("Shutting down scheduler due to system signal...")
		return s.Shutdown()
	},
}

func init() {
	daemonCommand.Flags().StringVar(&reaperSchedule, "reaper-schedule", "0 */6 * * *", "Cron schedule for the neutron reaper")
	daemonCommand.Flags().StringVar(&janitorSchedule, "janitor-schedule", "*/30 * * * *", "Cron schedule for the conflict/undead/ipmi janitors")
	daemonCommand.Flags().Float64Var(&daemonGraceDays, "grace-days", 14, "Idle grace period for the reaper, in days")
	daemonCommand.Flags().StringVar(&daemonWhitelist, "whitelist", "", "Project whitelist file for the reaper")
	daemonCommand.Flags().StringVar(&daemonBindAddress, "bind-address", "0.0.0.0:8080", "Address to bind the dashboard server")
	rootCommand.AddCommand(daemonCommand)
}
