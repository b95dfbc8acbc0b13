package commands

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/praxislabs/vocalis/pkg/cli"
	"github.com/praxislabs/vocalis/pkg/jsontime"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage CLI configuration",
	Long: `Manage CLI configuration and contexts.

Contexts allow you to manage multiple endpoint configurations,
similar to kubectl's context management.

Configuration is stored in ~/.vocalis/config.yaml`,
}

var configAddContextCmd = &cobra.Command{
	Use:   "add-context <name>",
	Short: "Add a new context",
	Long: `Add a new context with the specified name.

Example:
  vocalis config add-context staging \
      --broker-url https://broker.example.com/session \
      --speech-url https://speech.example.com/v1/realtime
  vocalis config add-context lab \
      --broker-url http://localhost:8080/session \
      --signaling-url ws://localhost:8080/signal`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]

		brokerURL, err := cmd.Flags().GetString("broker-url")
		if err != nil {
			return fmt.Errorf("failed to read 'broker-url' flag: %w", err)
		}
		if brokerURL == "" {
			return fmt.Errorf("--broker-url is required")
		}
		speechURL, err := cmd.Flags().GetString("speech-url")
		if err != nil {
			return fmt.Errorf("failed to read 'speech-url' flag: %w", err)
		}
		signalingURL, err := cmd.Flags().GetString("signaling-url")
		if err != nil {
			return fmt.Errorf("failed to read 'signaling-url' flag: %w", err)
		}
		if speechURL == "" && signalingURL == "" {
			return fmt.Errorf("one of --speech-url or --signaling-url is required")
		}
		clientID, err := cmd.Flags().GetString("client-id")
		if err != nil {
			return fmt.Errorf("failed to read 'client-id' flag: %w", err)
		}
		voice, err := cmd.Flags().GetString("voice")
		if err != nil {
			return fmt.Errorf("failed to read 'voice' flag: %w", err)
		}
		iceServers, err := cmd.Flags().GetStringSlice("ice-server")
		if err != nil {
			return fmt.Errorf("failed to read 'ice-server' flag: %w", err)
		}
		connectTimeout, err := cmd.Flags().GetDuration("connect-timeout")
		if err != nil {
			return fmt.Errorf("failed to read 'connect-timeout' flag: %w", err)
		}

		ctx := &cli.Context{
			BrokerURL:      brokerURL,
			SpeechURL:      speechURL,
			SignalingURL:   signalingURL,
			ClientID:       clientID,
			Voice:          voice,
			ICEServers:     iceServers,
			ConnectTimeout: jsontime.Duration(connectTimeout),
		}

		cfg := getConfig()
		if err := cfg.AddContext(name, ctx); err != nil {
			return err
		}

		cli.PrintSuccess("Context %q added successfully", name)
		return nil
	},
}

var configDeleteContextCmd = &cobra.Command{
	Use:   "delete-context <name>",
	Short: "Delete a context",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		cfg := getConfig()
		if err := cfg.DeleteContext(name); err != nil {
			return err
		}
		cli.PrintSuccess("Context %q deleted", name)
		return nil
	},
}

var configUseContextCmd = &cobra.Command{
	Use:   "use-context <name>",
	Short: "Set the current context",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		cfg := getConfig()
		if err := cfg.UseContext(name); err != nil {
			return err
		}
		cli.PrintSuccess("Switched to context %q", name)
		return nil
	},
}

var configListContextsCmd = &cobra.Command{
	Use:   "list-contexts",
	Short: "List all contexts",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := getConfig()
		names := cfg.ListContexts()
		if len(names) == 0 {
			cli.PrintInfo("No contexts configured. Add one with 'vocalis config add-context'")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "CURRENT\tNAME\tBROKER\tEXCHANGE")
		for _, name := range names {
			ctx := cfg.Contexts[name]
			current := ""
			if name == cfg.CurrentContext {
				current = "*"
			}
			exchange := ctx.SpeechURL
			if ctx.SignalingURL != "" {
				exchange = ctx.SignalingURL
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", current, name, ctx.BrokerURL, exchange)
		}
		return w.Flush()
	},
}

var configShowContextCmd = &cobra.Command{
	Use:   "show-context [name]",
	Short: "Show a context (current if no name given)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := ""
		if len(args) > 0 {
			name = args[0]
		}
		ctx, err := getConfig().ResolveContext(name)
		if err != nil {
			return err
		}
		return outputResult(ctx)
	},
}

func init() {
	configAddContextCmd.Flags().String("broker-url", "", "credential endpoint URL (required)")
	configAddContextCmd.Flags().String("speech-url", "", "speech endpoint URL for direct SDP exchange")
	configAddContextCmd.Flags().String("signaling-url", "", "WebSocket signaling URL (alternative to --speech-url)")
	configAddContextCmd.Flags().String("client-id", "", "client identifier sent to the credential endpoint")
	configAddContextCmd.Flags().String("voice", "", "default remote voice")
	configAddContextCmd.Flags().StringSlice("ice-server", nil, "STUN server URL (repeatable)")
	configAddContextCmd.Flags().Duration("connect-timeout", 15*time.Second, "connect timeout")

	configCmd.AddCommand(configAddContextCmd)
	configCmd.AddCommand(configDeleteContextCmd)
	configCmd.AddCommand(configUseContextCmd)
	configCmd.AddCommand(configListContextsCmd)
	configCmd.AddCommand(configShowContextCmd)
}
