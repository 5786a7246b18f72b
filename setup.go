package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"vehicle-damage-analyzer/config"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/joho/godotenv"
	"golang.org/x/term"
)

// getConfigDir returns the application's config directory path.
// Creates the directory if it doesn't exist.
func getConfigDir() (string, error) {
	configBase, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user config directory: %w", err)
	}

	configDir := filepath.Join(configBase, config.AppName)
	if err := os.MkdirAll(configDir, 0700); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	return configDir, nil
}

// getConfigFilePath returns the full path to the config file.
func getConfigFilePath() (string, error) {
	configDir, err := getConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, config.EnvFileName), nil
}

// requiredEnvVars lists all environment variables that must be set before any
// model call can be made.
var requiredEnvVars = []string{"GEMINI_API_KEY"}

// checkRequiredConfig checks if all required environment variables are set.
// Returns the names of any missing variables.
func checkRequiredConfig() []string {
	var missing []string
	for _, v := range requiredEnvVars {
		if os.Getenv(v) == "" {
			missing = append(missing, v)
		}
	}
	return missing
}

// isInteractiveTerminal returns true if both stdin and stdout are TTYs.
// This is used to determine if we can run the interactive setup wizard.
func isInteractiveTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
}

// runSetupWizard runs an interactive wizard to collect required configuration.
// Returns true if setup was successful and the analyzer should continue.
func runSetupWizard() bool {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("99")).
		MarginBottom(1)

	fmt.Println()
	fmt.Println(titleStyle.Render("🚗 Vehicle Damage Analyzer - First-time Setup"))
	fmt.Println()

	var geminiKey string

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Gemini API Key").
				Description("Get yours at https://aistudio.google.com/apikey").
				Value(&geminiKey).
				Validate(func(s string) error {
					if s == "" {
						return errors.New("API key is required")
					}
					return validateGeminiKey(s)
				}),
		),
	).WithTheme(huh.ThemeBase16())

	if err := form.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			fmt.Println("\nSetup cancelled.")
			return false
		}
		fmt.Printf("\nError: %v\n", err)
		return false
	}

	cfg := map[string]string{
		"GEMINI_API_KEY": geminiKey,
	}

	configPath, err := writeEnvFile(cfg)
	if err != nil {
		fmt.Printf("\nError saving configuration: %v\n", err)
		waitOnWindows()
		return false
	}

	// Set values in current process
	for k, v := range cfg {
		os.Setenv(k, v)
	}

	successStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("42")).
		Bold(true)

	pathStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("245"))

	fmt.Println()
	fmt.Println(successStyle.Render("✓ Configuration saved"))
	fmt.Println(pathStyle.Render("  " + configPath))
	fmt.Println()

	return true
}

// writeEnvFile writes the configuration to the env file in the config dir.
func writeEnvFile(cfg map[string]string) (string, error) {
	configPath, err := getConfigFilePath()
	if err != nil {
		return "", err
	}
	if err := godotenv.Write(cfg, configPath); err != nil {
		return "", fmt.Errorf("failed to write config file: %w", err)
	}
	if err := os.Chmod(configPath, 0600); err != nil {
		return "", fmt.Errorf("failed to set config file permissions: %w", err)
	}
	return configPath, nil
}

// validateGeminiKey validates a Gemini API key by making a simple API call.
func validateGeminiKey(key string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Use the models list endpoint which is lightweight and validates the key.
	// URL-encode the key to handle any special characters.
	q := url.Values{}
	q.Add("key", key)
	reqURL := fmt.Sprintf("https://generativelanguage.googleapis.com/v1beta/models?%s", q.Encode())
	req, err := http.NewRequestWithContext(ctx, "GET", reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return errors.New("connection timed out - check your internet")
		}
		return errors.New("connection failed - check your internet")
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusOK {
		return nil
	}
	if resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusForbidden {
		return errors.New("API key rejected by Google")
	}
	return fmt.Errorf("unexpected response: %s", resp.Status)
}
