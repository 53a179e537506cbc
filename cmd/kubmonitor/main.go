package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/yourusername/kubmonitor/internal/app"
	"go.uber.org/zap"
	"k8s.io/klog/v2"
)

var (
	// Version will be set by build flags
	Version = "dev"

	// Global flags
	configFile string
	kubeconfig string
	kubeCtx    string
	namespace  string
	verbose    bool
	locale     string
	useMock    bool
)

var rootCmd = &cobra.Command{
	Use:   "kubmonitor",
	Short: "A terminal dashboard for Kubernetes batch jobs",
	Long: `kubmonitor watches the Jobs of one namespace: their pods, status,
GPU requests and durations, the namespace quota, and the machine it runs
on. Select a pod and press enter to follow its logs.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	Run: func(cmd *cobra.Command, args []string) {
		_ = cmd.Help()
	},
}

var consoleCmd = &cobra.Command{
	Use:   "console <namespace>",
	Short: "Start the interactive job dashboard",
	Args:  namespaceArg,
	RunE:  runConsole,
}

var snapshotCmd = &cobra.Command{
	Use:   "snapshot <namespace>",
	Short: "Print one cluster snapshot and exit",
	Args:  namespaceArg,
	RunE:  runSnapshot,
}

var checkCmd = &cobra.Command{
	Use:   "check <namespace>",
	Short: "Check RBAC permissions the dashboard needs",
	Args:  namespaceArg,
	RunE:  runCheck,
}

// namespaceArg accepts the namespace as the only positional argument or
// through --namespace
func namespaceArg(cmd *cobra.Command, args []string) error {
	if err := cobra.MaximumNArgs(1)(cmd, args); err != nil {
		return err
	}
	if len(args) == 0 && namespace == "" {
		return errors.New("a namespace is required: pass it as an argument or with --namespace")
	}
	return nil
}

func init() {
	// klog writes to stderr by default, which would corrupt the dashboard
	klog.InitFlags(nil)
	_ = flag.Set("logtostderr", "false")
	_ = flag.Set("alsologtostderr", "false")
	_ = flag.Set("stderrthreshold", "FATAL")
	_ = flag.Set("v", "0")

	// Add Go flags to pflag so Cobra can parse them
	pflag.CommandLine.AddGoFlagSet(flag.CommandLine)

	rootCmd.AddCommand(consoleCmd, snapshotCmd, checkCmd)

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (default: ./config/config.yaml)")
	rootCmd.PersistentFlags().StringVarP(&kubeconfig, "kubeconfig", "k", "", "path to kubeconfig file (default: $HOME/.kube/config)")
	rootCmd.PersistentFlags().StringVarP(&kubeCtx, "context", "c", "", "kubernetes context to use")
	rootCmd.PersistentFlags().StringVarP(&namespace, "namespace", "n", "", "namespace to monitor")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "enable verbose logging")
	rootCmd.PersistentFlags().StringVarP(&locale, "locale", "l", "auto", "interface language (en, zh, auto)")
	rootCmd.PersistentFlags().BoolVar(&useMock, "mock", false, "use a synthetic namespace instead of a cluster")

	consoleCmd.Flags().Bool("plain", false, "draw with the plain raw-terminal loop instead of bubbletea")
	consoleCmd.Flags().Duration("refresh", 0, "snapshot refresh interval (default 2s)")
	consoleCmd.Flags().Duration("log-refresh", 0, "log refresh interval in the log viewer (default: --refresh)")
	consoleCmd.Flags().Int("tail", 0, "log lines to fetch per refresh (default 200)")
	consoleCmd.Flags().Bool("no-color", false, "disable color output")
	consoleCmd.Flags().Bool("async", false, "fetch snapshots on a background worker")

	snapshotCmd.Flags().StringP("output", "o", "yaml", "output format (yaml, json)")
}

// loadConfig reads the config file and applies command-line overrides
func loadConfig(cmd *cobra.Command, args []string) (*app.Config, error) {
	config, err := app.LoadConfig(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if kubeconfig != "" {
		config.Kubeconfig = kubeconfig
	}
	if kubeCtx != "" {
		config.Context = kubeCtx
	}
	if namespace != "" {
		config.Namespace = namespace
	}
	if len(args) == 1 {
		config.Namespace = args[0]
	}
	// Only override locale if user explicitly specified it
	if cmd.Flags().Changed("locale") {
		config.Locale = locale
	}
	if verbose {
		config.LogLevel = "debug"
	}
	if useMock {
		config.SourceMode = app.SourceMock
	}
	return config, nil
}

func applyConsoleFlags(cmd *cobra.Command, config *app.Config) {
	flags := cmd.Flags()
	if plain, _ := flags.GetBool("plain"); plain {
		config.Renderer = app.RendererPlain
	}
	if refresh, _ := flags.GetDuration("refresh"); refresh > 0 {
		config.RefreshInterval = refresh
		if !flags.Changed("log-refresh") {
			config.LogRefreshInterval = refresh
		}
	}
	if logRefresh, _ := flags.GetDuration("log-refresh"); logRefresh > 0 {
		config.LogRefreshInterval = logRefresh
	}
	if tail, _ := flags.GetInt("tail"); tail > 0 {
		config.LogTailLines = tail
	}
	if noColor, _ := flags.GetBool("no-color"); noColor {
		config.NoColor = true
	}
	if async, _ := flags.GetBool("async"); async {
		config.Async = true
	}
}

func runConsole(cmd *cobra.Command, args []string) error {
	config, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}
	applyConsoleFlags(cmd, config)
	if err := config.Validate(); err != nil {
		return err
	}

	application, err := app.New(config, Version)
	if err != nil {
		return fmt.Errorf("failed to create application: %w", err)
	}
	defer func() {
		if err := application.Shutdown(); err != nil {
			fmt.Fprintf(os.Stderr, "Error during shutdown: %v\n", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := application.Run(ctx); err != nil {
		return fmt.Errorf("application error: %w", err)
	}
	if ctx.Err() != nil {
		zap.L().Info("Received signal, shutting down...")
	}
	return nil
}

func runSnapshot(cmd *cobra.Command, args []string) error {
	config, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}
	if err := config.Validate(); err != nil {
		return err
	}
	format, _ := cmd.Flags().GetString("output")

	application, err := app.New(config, Version)
	if err != nil {
		return fmt.Errorf("failed to create application: %w", err)
	}
	defer func() { _ = application.Shutdown() }()

	ctx, cancel := context.WithTimeout(context.Background(), config.Timeout+time.Second)
	defer cancel()

	snap, err := application.Snapshot(ctx)
	if err != nil {
		return err
	}
	return app.WriteSnapshot(cmd.OutOrStdout(), snap, format)
}

func runCheck(cmd *cobra.Command, args []string) error {
	config, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}
	if err := config.Validate(); err != nil {
		return err
	}

	application, err := app.New(config, Version)
	if err != nil {
		return fmt.Errorf("failed to create application: %w", err)
	}
	defer func() { _ = application.Shutdown() }()

	ctx, cancel := context.WithTimeout(context.Background(), config.Timeout)
	defer cancel()

	report, err := application.CheckAccess(ctx)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, res := range report.Results {
		mark := "ok  "
		if !res.Allowed {
			mark = "FAIL"
			if res.Requirement.Optional {
				mark = "warn"
			}
		}
		fmt.Fprintf(out, "[%s] %s\n", mark, res.Requirement)
		if !res.Allowed {
			fmt.Fprintf(out, "       %s\n", res.Message(report.Namespace))
		}
	}
	if !report.Usable() {
		return fmt.Errorf("missing permissions in namespace %s", report.Namespace)
	}
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
