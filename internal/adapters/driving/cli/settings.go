package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/medgenius/docindex/internal/core/domain"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and configure storage, indexing and AI provider settings.

Use subcommands to configure the embedding and vision providers.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsEmbeddingCmd = &cobra.Command{
	Use:   "embedding",
	Short: "Configure embedding provider",
	Long:  `Configure the provider used to embed text chunks.`,
	RunE:  runSettingsEmbedding,
}

var settingsVisionCmd = &cobra.Command{
	Use:   "vision",
	Short: "Configure vision provider",
	Long:  `Configure the multimodal provider used to describe images when preprocessing.`,
	RunE:  runSettingsVision,
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsEmbeddingCmd)
	settingsCmd.AddCommand(settingsVisionCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println(headingStyle.Render("Current Settings"))
	cmd.Println()

	cmd.Println("[Storage]")
	cmd.Printf("  Bucket: %s\n", settings.Storage.Bucket)
	cmd.Printf("  Region: %s\n", settings.Storage.Region)
	cmd.Printf("  Source prefix: %s\n", settings.Storage.SourcePrefix)
	cmd.Printf("  Index prefix: %s\n", settings.Storage.IndexPrefix)
	cmd.Println()

	cmd.Println("[Staging]")
	cmd.Printf("  Source: %s\n", settings.Staging.Source)
	cmd.Printf("  Local directory: %s\n", settings.Staging.LocalDir)
	cmd.Printf("  Staging directory: %s\n", settings.Staging.Dir)
	cmd.Println()

	cmd.Println("[Index]")
	cmd.Printf("  Mode: %s\n", settings.Index.Mode.Description())
	cmd.Printf("  Local directory: %s\n", settings.Index.LocalDir)
	cmd.Printf("  Chunking: rich %d/%d, plain %d/%d\n",
		settings.Chunking.Rich.Size, settings.Chunking.Rich.Overlap,
		settings.Chunking.Plain.Size, settings.Chunking.Plain.Overlap)
	cmd.Println()

	cmd.Println("[Embedding]")
	printProvider(cmd, settings.Embedding.Provider, settings.Embedding.Model,
		settings.Embedding.Region, settings.Embedding.BaseURL, settings.Embedding.APIKey,
		settings.Embedding.IsConfigured())
	cmd.Println()

	cmd.Println("[Vision]")
	printProvider(cmd, settings.Vision.Provider, settings.Vision.Model,
		settings.Vision.Region, settings.Vision.BaseURL, settings.Vision.APIKey,
		settings.Vision.IsConfigured())
	cmd.Printf("  Max tokens: %d\n", settings.Vision.MaxTokens)
	cmd.Printf("  Concurrency: %d\n", settings.Vision.Concurrency)
	cmd.Println()

	if err := settingsService.Validate(); err != nil {
		cmd.Println(warnStyle.Render(fmt.Sprintf("Warning: %v", err)))
		cmd.Println(mutedStyle.Render("Run 'docindex settings embedding' or 'docindex settings vision' to fix configuration issues."))
	} else {
		cmd.Println(successStyle.Render("Configuration is valid."))
	}

	return nil
}

func printProvider(cmd *cobra.Command, provider domain.AIProvider, model, region, baseURL, apiKey string, configured bool) {
	cmd.Printf("  Provider: %s\n", provider.Description())
	cmd.Printf("  Model: %s\n", model)
	if provider.RequiresRegion() {
		cmd.Printf("  Region: %s\n", region)
	}
	if provider.IsLocal() {
		cmd.Printf("  Base URL: %s\n", baseURL)
	}
	if provider.RequiresAPIKey() {
		if apiKey != "" {
			cmd.Printf("  API Key: %s\n", maskAPIKey(apiKey))
		} else {
			cmd.Printf("  API Key: (not set)\n")
		}
	}
	status := "configured"
	if !configured {
		status = "not configured"
	}
	cmd.Printf("  Status: %s\n", status)
}

func runSettingsEmbedding(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	reader := bufio.NewReader(cmd.InOrStdin())
	choice, err := promptProvider(cmd, reader, "Embedding", domain.AllEmbeddingProviders(), domain.DefaultEmbeddingModels())
	if err != nil {
		return err
	}

	if err := settingsService.SetEmbeddingProvider(choice.provider, choice.model, choice.apiKey); err != nil {
		return fmt.Errorf("failed to configure embedding provider: %w", err)
	}

	cmd.Print("Validating configuration... ")
	if err := settingsService.ValidateEmbeddingConfig(); err != nil {
		cmd.Printf("FAILED: %v\n", err)
		return fmt.Errorf("embedding configuration validation failed: %w", err)
	}
	cmd.Println("OK")

	cmd.Printf("Embedding provider configured: %s (%s)\n", choice.provider.Description(), choice.model)
	return nil
}

func runSettingsVision(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	reader := bufio.NewReader(cmd.InOrStdin())
	choice, err := promptProvider(cmd, reader, "Vision", domain.AllVisionProviders(), domain.DefaultVisionModels())
	if err != nil {
		return err
	}

	if err := settingsService.SetVisionProvider(choice.provider, choice.model, choice.apiKey); err != nil {
		return fmt.Errorf("failed to configure vision provider: %w", err)
	}

	cmd.Print("Validating configuration... ")
	if err := settingsService.ValidateVisionConfig(); err != nil {
		cmd.Printf("FAILED: %v\n", err)
		return fmt.Errorf("vision configuration validation failed: %w", err)
	}
	cmd.Println("OK")

	cmd.Printf("Vision provider configured: %s (%s)\n", choice.provider.Description(), choice.model)
	return nil
}

type providerChoice struct {
	provider domain.AIProvider
	model    string
	apiKey   string
}

func promptProvider(
	cmd *cobra.Command,
	reader *bufio.Reader,
	kind string,
	providers []domain.AIProvider,
	defaults map[domain.AIProvider]string,
) (providerChoice, error) {
	cmd.Printf("Select %s Provider\n", kind)
	for i, p := range providers {
		cmd.Printf("  %d. %s\n", i+1, p.Description())
	}
	cmd.Print("\nEnter choice [1]: ")
	idx := parseChoice(readLine(reader), len(providers), 1)
	choice := providerChoice{provider: providers[idx-1]}

	defaultModel := defaults[choice.provider]
	cmd.Printf("Enter model name [%s]: ", defaultModel)
	choice.model = readLine(reader)
	if choice.model == "" {
		choice.model = defaultModel
	}

	if choice.provider.RequiresAPIKey() {
		cmd.Print("Enter API key: ")
		choice.apiKey = readPassword(cmd.InOrStdin(), reader)
		cmd.Println()
		if choice.apiKey == "" {
			return choice, errors.New("API key is required for this provider")
		}
	}

	return choice, nil
}

// Helper functions.

//nolint:errcheck // CLI helper, error ignored for UX
func readLine(reader *bufio.Reader) string {
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func parseChoice(input string, maxVal, defaultVal int) int {
	if input == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(input)
	if err != nil || val < 1 || val > maxVal {
		return defaultVal
	}
	return val
}

// readPassword reads without echo when in is a terminal.
func readPassword(in io.Reader, reader *bufio.Reader) string {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		password, err := term.ReadPassword(int(f.Fd()))
		if err == nil {
			return strings.TrimSpace(string(password))
		}
	}
	return readLine(reader)
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
