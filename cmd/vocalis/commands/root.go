package commands

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/praxislabs/vocalis/pkg/cli"
)

var (
	// Global flags
	cfgFile     string
	contextName string
	outputFile  string
	outputJSON  bool
	verbose     bool

	// Global configuration
	globalConfig *cli.Config
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "vocalis",
	Short: "Real-time voice session CLI",
	Long: `vocalis - a command line client for real-time voice sessions.

The tool negotiates a peer connection to a remote speech endpoint,
streams local audio, and aggregates the conversation transcript.
Finished sessions are archived locally and can be listed, inspected,
exported to disk or S3, and deleted.

Configuration is stored in ~/.vocalis/ and supports multiple contexts,
similar to kubectl's context management.

Examples:
  # Set up a new context
  vocalis config add-context staging \
      --broker-url https://broker.example.com/session \
      --speech-url https://speech.example.com/v1/realtime

  # Run a session streaming a PCM file as microphone input
  vocalis -c staging run --input recording.pcm

  # Inspect an archived session
  vocalis sessions show 2f9c... --jq '.entries[].text'
`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and runs it.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig, initLogging)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.vocalis/config.yaml)")
	rootCmd.PersistentFlags().StringVarP(&contextName, "context", "c", "", "context name to use")
	rootCmd.PersistentFlags().StringVarP(&outputFile, "output", "o", "", "output file (default: stdout)")
	rootCmd.PersistentFlags().BoolVar(&outputJSON, "json", false, "output as JSON (for piping)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(sessionsCmd)
	rootCmd.AddCommand(versionCmd)
}

func initConfig() {
	var err error
	if cfgFile != "" {
		globalConfig, err = cli.LoadConfigWithPath(cfgFile)
	} else {
		globalConfig, err = cli.LoadConfig()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing config: %v\n", err)
		os.Exit(1)
	}
}

func initLogging() {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

// getConfig returns the global configuration.
func getConfig() *cli.Config {
	return globalConfig
}

// getContext returns the context configuration to use.
func getContext() (*cli.Context, error) {
	cfg := getConfig()
	if cfg == nil {
		return nil, fmt.Errorf("configuration not initialized")
	}
	ctx, err := cfg.ResolveContext(contextName)
	if err != nil {
		if contextName == "" {
			return nil, fmt.Errorf("no context specified. Use -c flag or set a default context with 'vocalis config use-context'")
		}
		return nil, err
	}
	return ctx, nil
}

// outputResult writes a result using the global output flags.
func outputResult(result any) error {
	format := cli.FormatYAML
	if outputJSON {
		format = cli.FormatJSON
	}
	return cli.Output(result, cli.OutputOptions{Format: format, File: outputFile})
}
