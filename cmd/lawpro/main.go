// Command lawpro runs the conversation extraction pipeline offline.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/danilovichz/lawpro-v2/location"
	"github.com/danilovichz/lawpro-v2/models"
	"github.com/danilovichz/lawpro-v2/service"
	"github.com/danilovichz/lawpro-v2/storage"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type cli struct {
	verbose bool
	logger  *zap.Logger
}

func newRootCmd() *cobra.Command {
	c := &cli{logger: zap.NewNop()}

	root := &cobra.Command{
		Use:   "lawpro",
		Short: "Inspect how lawpro reads legal-help messages",
		Long: `lawpro runs the rule-based extraction pipeline locally.

No AI provider or database is contacted; location correction is skipped.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			_ = godotenv.Load()
			if !c.verbose {
				return nil
			}
			config := zap.NewDevelopmentConfig()
			config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
			logger, err := config.Build()
			if err != nil {
				return err
			}
			c.logger = logger
			return nil
		},
	}
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "Enable debug logging")

	root.AddCommand(c.extractCmd(), c.classifyCmd(), c.normalizeCmd(), c.chatCmd())
	return root
}

func (c *cli) extractCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "extract <message>",
		Short: "Extract county, state and case type with the fallback rules",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			parsed := service.NewFallbackExtractor(service.FallbackWithLogger(c.logger)).Extract(strings.Join(args, " "))
			return writeJSON(cmd.OutOrStdout(), parsed)
		},
	}
}

func (c *cli) classifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "classify <message>",
		Short: "Print the case category a message maps to",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			caseType := service.ClassifyCaseType(strings.ToLower(strings.Join(args, " ")))
			if caseType == nil {
				fmt.Fprintln(cmd.OutOrStdout(), "none")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s (%s)\n", *caseType, caseType.DisplayName())
			return nil
		},
	}
}

func (c *cli) normalizeCmd() *cobra.Command {
	var kind string
	cmd := &cobra.Command{
		Use:   "normalize <location>",
		Short: "Print the lookup candidates for a county or state",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			k := models.LocationKind(kind)
			if k != models.LocationKindCounty && k != models.LocationKindState {
				return fmt.Errorf("--kind must be county or state, got %q", kind)
			}
			for _, candidate := range location.Normalize(strings.Join(args, " "), k) {
				fmt.Fprintln(cmd.OutOrStdout(), candidate)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&kind, "kind", string(models.LocationKindState), "Location kind: county or state")
	return cmd
}

func (c *cli) chatCmd() *cobra.Command {
	var sessionID, stateDir string
	cmd := &cobra.Command{
		Use:   "chat <message>",
		Short: "Process a message against a session stored on disk",
		Long: `chat merges the message into the session's stored state and prints the
result, exactly as the server would with AI_PROVIDER=none and STATE_STORE=local.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := storage.NewLocalStateStore(stateDir)
			if err != nil {
				return err
			}
			svc := service.NewConversationService(
				service.WithStateStore(store),
				service.WithFallbackExtractor(service.NewFallbackExtractor(service.FallbackWithLogger(c.logger))),
				service.WithLogger(c.logger),
			)
			result := svc.Process(cmd.Context(), service.ProcessMessageRequest{
				SessionID: sessionID,
				Message:   strings.Join(args, " "),
			})
			return writeJSON(cmd.OutOrStdout(), result)
		},
	}
	cmd.Flags().StringVar(&sessionID, "session", "cli", "Session id")
	cmd.Flags().StringVar(&stateDir, "state-dir", "./storage/state", "Directory holding session state files")
	return cmd
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
