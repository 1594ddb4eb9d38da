package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kalambet/folio/internal/answer"
	"github.com/kalambet/folio/internal/chat"
	"github.com/kalambet/folio/internal/config"
	"github.com/kalambet/folio/internal/profile"
	"github.com/kalambet/folio/internal/seed"
	"github.com/kalambet/folio/internal/storage"
)

// --- seed ---

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Replace the stored portfolio with a seed document",
	Long: `Replace the stored portfolio with a seed document.

Every existing skill, project, experience, education, and certification row
is deleted first. Without --file the built-in sample portfolio is used.

Examples:
  folio seed
  folio seed --file portfolio.yaml
  folio seed --file portfolio.yaml --about-pdf resume.pdf`,
	RunE: func(cmd *cobra.Command, args []string) error {
		file, _ := cmd.Flags().GetString("file")
		aboutPDF, _ := cmd.Flags().GetString("about-pdf")

		cfg, err := config.Load()
		if err != nil {
			return err
		}

		p, err := runSeed(cmd.Context(), cfg.Storage.DataDir, file, aboutPDF)
		if err != nil {
			return err
		}
		printSuccess("Seeded portfolio for %s: %d skills, %d projects, %d experience entries",
			p.Name, len(p.Skills), len(p.Projects), len(p.Experience))
		return nil
	},
}

func init() {
	seedCmd.Flags().String("file", "", "YAML seed document (default: built-in sample)")
	seedCmd.Flags().String("about-pdf", "", "take the about text from this PDF")
}

func runSeed(ctx context.Context, dataDir, file, aboutPDF string) (profile.Profile, error) {
	var (
		p   profile.Profile
		err error
	)
	if file == "" {
		printStep("Using built-in sample portfolio")
		p, err = seed.Default()
	} else {
		printStep("Reading %s", file)
		p, err = seed.LoadFile(file)
	}
	if err != nil {
		return profile.Profile{}, err
	}

	if aboutPDF != "" {
		printStep("Extracting about text from %s", aboutPDF)
		about, err := seed.AboutFromPDF(aboutPDF)
		if err != nil {
			return profile.Profile{}, err
		}
		p.About = about
	}

	store, err := storage.Open(dataDir)
	if err != nil {
		return profile.Profile{}, fmt.Errorf("opening storage: %w", err)
	}
	defer store.Close()

	if err := store.ReplaceProfile(ctx, p); err != nil {
		return profile.Profile{}, err
	}
	return p, nil
}

// --- chat ---

var chatCmd = &cobra.Command{
	Use:   "chat [message]",
	Short: "Ask the running server a question or send an add command",
	Long: `Ask the running server a question or send an add command.

Without arguments, an interactive session starts; prior turns are sent as
history with each message.

Examples:
  folio chat "What projects has Alex built?"
  folio chat add skill name=Rust level=Beginner category=Systems
  folio chat`,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAPIClient()
		if err != nil {
			return err
		}

		if len(args) > 0 {
			resp, err := sendChat(cmd.Context(), client, chat.Request{Message: strings.Join(args, " ")})
			if err != nil {
				return err
			}
			fmt.Fprintln(stdout, resp.Answer)
			return nil
		}
		return chatLoop(cmd.Context(), client, bufio.NewScanner(os.Stdin))
	},
}

func sendChat(ctx context.Context, client *apiClient, req chat.Request) (chat.Response, error) {
	resp, err := client.post(ctx, "/api/chat", req)
	if err != nil {
		return chat.Response{}, err
	}
	var out chat.Response
	if err := decodeJSON(resp, &out); err != nil {
		return chat.Response{}, err
	}
	return out, nil
}

// chatLoop reads one message per line until EOF or "exit", carrying the
// conversation as history.
func chatLoop(ctx context.Context, client *apiClient, in *bufio.Scanner) error {
	var req chat.Request
	for {
		fmt.Fprint(stderr, colorize(colorCyan, "you> "))
		if !in.Scan() {
			fmt.Fprintln(stderr)
			return in.Err()
		}
		line := strings.TrimSpace(in.Text())
		if line == "" {
			continue
		}
		if line == "exit" || line == "quit" {
			return nil
		}

		req.Message = line
		resp, err := sendChat(ctx, client, req)
		if err != nil {
			printError("%v", err)
			continue
		}
		fmt.Fprintln(stdout, resp.Answer)
		req.History = appendTurns(req.History, line, resp.Answer)
	}
}

// maxLocalHistory bounds the history kept by an interactive session. The
// server forwards fewer turns than this to the model.
const maxLocalHistory = 20

func appendTurns(history []answer.Turn, question, reply string) []answer.Turn {
	history = append(history,
		answer.Turn{Role: "user", Content: question},
		answer.Turn{Role: "assistant", Content: reply},
	)
	if len(history) > maxLocalHistory {
		history = history[len(history)-maxLocalHistory:]
	}
	return history
}

// --- portfolio ---

var portfolioCmd = &cobra.Command{
	Use:   "portfolio",
	Short: "Inspect the stored portfolio",
}

var portfolioShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the portfolio as JSON, or as the model context with --context",
	RunE: func(cmd *cobra.Command, args []string) error {
		asContext, _ := cmd.Flags().GetBool("context")

		client, err := newAPIClient()
		if err != nil {
			return err
		}
		return showPortfolio(cmd.Context(), client, asContext)
	},
}

func init() {
	portfolioShowCmd.Flags().Bool("context", false, "print the context block sent to the model")
	portfolioCmd.AddCommand(portfolioShowCmd)
}

func showPortfolio(ctx context.Context, client *apiClient, asContext bool) error {
	resp, err := client.get(ctx, "/api/portfolio")
	if err != nil {
		return err
	}

	var p profile.Profile
	if err := decodeJSON(resp, &p); err != nil {
		return err
	}

	if asContext {
		fmt.Fprintln(stdout, profile.BuildContext(p))
		return nil
	}
	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(p)
}

// --- config ---

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or update configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		for _, k := range config.ShowAll(cfg) {
			fmt.Fprintf(stdout, "  %s = %s  (%s)\n", colorize(colorBold, k.Key), k.Value, k.EnvVar)
		}
		if cfg.Proxy.OpenRouterAPIKey == "" {
			printWarning("OpenRouter API key not set; use `folio config set-key` or FOLIO_OPENROUTER_API_KEY")
		}
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Long:  "Set a configuration value. Valid keys: " + strings.Join(config.ValidKeys(), ", "),
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, value := args[0], args[1]

		if err := config.SetKey(key, value); err != nil {
			return err
		}

		printSuccess("Set %s = %s", key, value)
		return nil
	},
}

var configSetKeyCmd = &cobra.Command{
	Use:   "set-key",
	Short: "Store the OpenRouter API key (read from stdin)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Fprint(stderr, "OpenRouter API key: ")
		in := bufio.NewScanner(os.Stdin)
		if !in.Scan() {
			if err := in.Err(); err != nil {
				return err
			}
			return errors.New("no key provided")
		}
		key := strings.TrimSpace(in.Text())
		if key == "" {
			return errors.New("no key provided")
		}

		if err := config.SetAPIKey(key); err != nil {
			return fmt.Errorf("storing API key: %w", err)
		}
		printSuccess("OpenRouter API key stored")
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configSetKeyCmd)
}
