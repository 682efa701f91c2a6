package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/codeincraft/MathAi/config"
	"github.com/codeincraft/MathAi/internal/api"
	"github.com/codeincraft/MathAi/internal/assistant"
	"github.com/codeincraft/MathAi/internal/credentials"
	"github.com/codeincraft/MathAi/internal/llm"
	"github.com/codeincraft/MathAi/internal/metrics"
	"github.com/codeincraft/MathAi/internal/session"
	"github.com/codeincraft/MathAi/internal/wikipedia"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

const askTimeout = 5 * time.Minute

var (
	cfg       *config.Config
	logger    zerolog.Logger
	strategy  string
	showSteps bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "mathai [question]",
		Short: "Fast assistant for math and knowledge questions",
		Long: `MathAi answers math and general-knowledge questions. Each question is
routed to a calculator, a Wikipedia lookup or a short reasoning answer.

Routing strategies:
  --strategy agent    The model picks capabilities step by step (default)
  --strategy keyword  Fixed keyword rules: math, then lookup, then reasoning

Examples:
  mathai "calculate 12*7+1"
  mathai --strategy keyword "who is Ada Lovelace"
  mathai chat --steps
  mathai serve --port 8080`,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cfg, err = config.Load()
			if err != nil {
				return err
			}
			if strategy != "" {
				cfg.RouterStrategy = strategy
				if err := cfg.Validate(); err != nil {
					return err
				}
			}

			level, err := zerolog.ParseLevel(cfg.LogLevel)
			if err != nil {
				level = zerolog.InfoLevel
			}
			logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
				Level(level).
				With().
				Timestamp().
				Logger()

			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return cmd.Help()
			}
			return runAsk(strings.Join(args, " "))
		},
	}

	rootCmd.PersistentFlags().StringVar(&strategy, "strategy", "", "Routing strategy: agent, keyword (overrides ROUTER_STRATEGY)")
	rootCmd.PersistentFlags().BoolVar(&showSteps, "steps", false, "Print the intermediate capability steps")

	rootCmd.AddCommand(chatCmd())
	rootCmd.AddCommand(askCmd())
	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(testCmd())
	rootCmd.AddCommand(configCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func chatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive chat session",
		Long:  "Start an interactive session. Type 'clear' to start over, 'exit' or 'quit' to leave.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChat()
		},
	}
}

func askCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ask [question]",
		Short: "Ask a single question",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAsk(strings.Join(args, " "))
		},
	}
}

func serveCmd() *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the REST API server",
		Long:  "Start the REST API server for programmatic access",
		RunE: func(cmd *cobra.Command, args []string) error {
			if port > 0 {
				cfg.ServerPort = port
			}
			return runServer()
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 0, "Port to listen on (default: 8080)")
	return cmd
}

func buildAssistant(ctx context.Context, m *metrics.Metrics) (*assistant.Assistant, error) {
	return assistant.Build(ctx, cfg, m, logger)
}

// configurationMissing prints the setup prompt; the process keeps running.
func configurationMissing() {
	fmt.Println(config.ConfigurationPrompt)
	fmt.Printf("Set %s or run 'mathai config setup'.\n", keyEnvVar(cfg.Provider()))
}

func keyEnvVar(p config.Provider) string {
	switch p {
	case config.ProviderOpenAI:
		return "OPENAI_API_KEY"
	case config.ProviderAnthropic:
		return "ANTHROPIC_API_KEY"
	default:
		return "GROQ_API_KEY"
	}
}

func runChat() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	asst, err := buildAssistant(ctx, nil)
	if err != nil {
		return err
	}
	defer asst.Close()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Println("\nGoodbye!")
		cancel()
		os.Exit(0)
	}()

	out := newPrinter(os.Stdout)
	store := session.NewStore()
	sess := store.Create("")

	fmt.Println("MathAi - math and knowledge assistant")
	fmt.Println("=====================================")
	fmt.Printf("Strategy: %s. Type 'clear' to start over, 'exit' or 'quit' to leave.\n\n", asst.Strategy())
	out.transcript(sess.Transcript.Entries())

	if cfg.RequireModelKey() != nil {
		configurationMissing()
		return nil
	}

	reader := bufio.NewReader(os.Stdin)
	for {
		fmt.Print("You: ")
		input, err := reader.ReadString('\n')
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}

		switch strings.ToLower(input) {
		case "exit", "quit":
			fmt.Println("Goodbye!")
			return nil
		case "clear":
			store.Delete(sess.ID)
			sess = store.Create("")
			fmt.Println("Conversation cleared.")
			fmt.Println()
			out.transcript(sess.Transcript.Entries())
			continue
		}

		fmt.Print("Thinking...")
		res, err := asst.Ask(ctx, sess, input)
		fmt.Print("\r           \r")
		if errors.Is(err, config.ErrConfigurationMissing) {
			configurationMissing()
			return nil
		}
		if err != nil {
			fmt.Printf("Error: %v\n\n", err)
			continue
		}

		if showSteps {
			out.steps(res.Steps)
		}
		out.answer(res.Answer)
	}
}

func runAsk(question string) error {
	ctx, cancel := context.WithTimeout(context.Background(), askTimeout)
	defer cancel()

	asst, err := buildAssistant(ctx, nil)
	if err != nil {
		return err
	}
	defer asst.Close()

	res, err := asst.Ask(ctx, session.NewStore().Create(""), question)
	if errors.Is(err, config.ErrConfigurationMissing) {
		configurationMissing()
		return err
	}
	if err != nil {
		return err
	}

	out := newPrinter(os.Stdout)
	if showSteps {
		out.steps(res.Steps)
	}
	out.answer(res.Answer)
	return nil
}

func runServer() error {
	m := metrics.New()
	asst, err := buildAssistant(context.Background(), m)
	if err != nil {
		return err
	}
	defer asst.Close()

	if cfg.RequireModelKey() != nil {
		logger.Warn().Msg("no model API key configured; /api/v1/ask will return 503 until one is set")
	}

	server := api.NewServer(asst, asst.Strategy(), cfg, m, logger)
	return server.Start()
}

func testCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "test",
		Short: "Test model and Wikipedia connectivity",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTest()
		},
	}
}

func runTest() error {
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	fmt.Println("Testing model connectivity...")
	fmt.Printf("  Provider: %s\n", cfg.Provider())
	fmt.Printf("  Model: %s\n", cfg.Model())

	var failed error
	if err := cfg.RequireModelKey(); err != nil {
		fmt.Printf("  SKIPPED: %v\n", err)
		failed = err
	} else {
		model, err := llm.New(cfg)
		if err != nil {
			return err
		}
		if ok, probed := llm.Reachable(ctx, model); probed && !ok {
			fmt.Printf("  FAILED: %s is not reachable at %s\n", cfg.Provider(), cfg.OllamaURL)
			return fmt.Errorf("model backend unreachable")
		}
		reply, err := model.Complete(ctx, llm.UserPrompt("", "Reply with the single word OK."))
		if err != nil {
			fmt.Printf("  FAILED: %v\n", err)
			failed = err
		} else {
			fmt.Printf("  OK - %q\n", strings.TrimSpace(reply))
		}
	}

	fmt.Println("\nTesting Wikipedia connectivity...")
	fmt.Printf("  URL: %s\n", cfg.WikipediaURL)
	wiki := wikipedia.NewClient(cfg.WikipediaURL, 1, cfg.CallTimeout, logger)
	pages, err := wiki.Lookup(ctx, "Ada Lovelace")
	if err != nil {
		fmt.Printf("  FAILED: %v\n", err)
		return err
	}
	fmt.Printf("  OK - found %q\n", pages[0].Title)

	return failed
}

func configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage credentials stored in OS keychain",
		Long: `Manage model API keys stored securely in your OS keychain.

Credentials are stored in:
  - macOS: Keychain Access
  - Windows: Credential Manager
  - Linux: Secret Service (GNOME Keyring)

Examples:
  mathai config setup          # Interactive setup
  mathai config show           # Show configured credentials
  mathai config clear          # Remove all stored credentials`,
	}

	cmd.AddCommand(configSetupCmd())
	cmd.AddCommand(configShowCmd())
	cmd.AddCommand(configClearCmd())

	return cmd
}

func configSetupCmd() *cobra.Command {
	var groqKey, openaiKey, anthropicKey string

	cmd := &cobra.Command{
		Use:   "setup",
		Short: "Configure API credentials",
		Long:  "Interactively configure and store model API keys in OS keychain",
		RunE: func(cmd *cobra.Command, args []string) error {
			prompts := []struct {
				label string
				value *string
			}{
				{"Groq API Key", &groqKey},
				{"OpenAI API Key", &openaiKey},
				{"Anthropic API Key", &anthropicKey},
			}
			for _, p := range prompts {
				if *p.value != "" {
					continue
				}
				fmt.Printf("%s (press Enter to skip): ", p.label)
				key, _ := readPassword()
				*p.value = strings.TrimSpace(key)
			}

			err := credentials.Setup(map[credentials.KeyType]string{
				credentials.KeyGroq:      groqKey,
				credentials.KeyOpenAI:    openaiKey,
				credentials.KeyAnthropic: anthropicKey,
			})
			if err != nil {
				return fmt.Errorf("failed to store credentials: %w", err)
			}

			fmt.Println("\nCredentials stored securely in OS keychain.")
			fmt.Println("You can now run mathai without setting environment variables.")
			return nil
		},
	}

	cmd.Flags().StringVar(&groqKey, "groq-key", "", "Groq API key")
	cmd.Flags().StringVar(&openaiKey, "openai-key", "", "OpenAI API key")
	cmd.Flags().StringVar(&anthropicKey, "anthropic-key", "", "Anthropic API key")

	return cmd
}

func configShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show configured credentials",
		Long:  "Display which credentials are configured in the OS keychain",
		RunE: func(cmd *cobra.Command, args []string) error {
			configured := credentials.ListConfigured()

			fmt.Println("Credential Status (stored in OS keychain):")
			fmt.Println("==========================================")

			status := func(ok bool) string {
				if ok {
					return "configured"
				}
				return "not set"
			}

			fmt.Printf("  Groq API Key:      %s\n", status(configured[credentials.KeyGroq]))
			fmt.Printf("  OpenAI API Key:    %s\n", status(configured[credentials.KeyOpenAI]))
			fmt.Printf("  Anthropic API Key: %s\n", status(configured[credentials.KeyAnthropic]))
			fmt.Printf("\nActive provider: %s (model %s)\n", cfg.Provider(), cfg.Model())

			fmt.Println("\nNote: Environment variables override keychain values.")
			return nil
		},
	}
}

func configClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Clear all stored credentials",
		Long:  "Remove all credentials from the OS keychain",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Print("Are you sure you want to clear all stored credentials? [y/N]: ")
			reader := bufio.NewReader(os.Stdin)
			response, _ := reader.ReadString('\n')
			response = strings.TrimSpace(strings.ToLower(response))

			if response != "y" && response != "yes" {
				fmt.Println("Cancelled.")
				return nil
			}

			if err := credentials.ClearAll(); err != nil {
				fmt.Printf("Warning: some credentials may not have been cleared: %v\n", err)
			}

			fmt.Println("All credentials cleared from keychain.")
			return nil
		},
	}
}

func readPassword() (string, error) {
	if term.IsTerminal(int(os.Stdin.Fd())) {
		fmt.Println()
		bytes, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Println()
		return string(bytes), err
	}
	reader := bufio.NewReader(os.Stdin)
	return reader.ReadString('\n')
}
