package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"steamcollect/pkg/auth"
)

// authCmd represents the auth command
var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage the stored Steam web API key",
	Long: `Manage the stored Steam web API key.

The key is stored using:
  - System keychain (when available)
  - Encrypted file with PBKDF2 key derivation
  - STEAM_API_KEY environment variable (read-only fallback)

Get a key at https://steamcommunity.com/dev/apikey`,
}

// authSetCmd represents the auth set command
var authSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Store a Steam web API key securely",
	Long: `Store a Steam web API key in the system keychain or an encrypted file.

You will be prompted for the key; input is hidden as you type.`,
	Args: cobra.NoArgs,
	RunE: runAuthSet,
}

// authShowCmd represents the auth show command
var authShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the stored API key (sanitized)",
	Args:  cobra.NoArgs,
	RunE:  runAuthShow,
}

// authRemoveCmd represents the auth remove command
var authRemoveCmd = &cobra.Command{
	Use:   "remove",
	Short: "Remove the stored API key",
	Args:  cobra.NoArgs,
	RunE:  runAuthRemove,
}

func init() {
	rootCmd.AddCommand(authCmd)
	authCmd.AddCommand(authSetCmd)
	authCmd.AddCommand(authShowCmd)
	authCmd.AddCommand(authRemoveCmd)
}

func runAuthSet(cmd *cobra.Command, args []string) error {
	manager, err := auth.NewManager()
	if err != nil {
		return fmt.Errorf("failed to initialize credential manager: %w", err)
	}

	if manager.Exists() {
		reader := bufio.NewReader(os.Stdin)
		fmt.Print("An API key is already stored. Replace it? (y/N): ")
		input, _ := reader.ReadString('\n')
		if !strings.HasPrefix(strings.ToLower(strings.TrimSpace(input)), "y") {
			return nil
		}
	}

	fmt.Print("Steam web API key: ")
	key, err := readPassword()
	if err != nil {
		return fmt.Errorf("failed to read API key: %w", err)
	}

	key = strings.TrimSpace(key)
	if len(key) != 32 {
		fmt.Println("\nThat doesn't look like a Steam API key (expected 32 hex characters).")
		return fmt.Errorf("invalid API key")
	}

	if err := manager.Store(&auth.Credential{APIKey: key}); err != nil {
		return fmt.Errorf("failed to store API key: %w", err)
	}

	fmt.Println("API key stored.")
	return nil
}

func runAuthShow(cmd *cobra.Command, args []string) error {
	manager, err := auth.NewManager()
	if err != nil {
		return fmt.Errorf("failed to initialize credential manager: %w", err)
	}

	cred, err := manager.Retrieve()
	if err != nil {
		fmt.Println("No API key stored. Use 'steamcollect auth set' to store one.")
		return nil
	}

	key := cred.APIKey
	masked := key
	if len(key) > 8 {
		masked = key[:4] + strings.Repeat("*", len(key)-8) + key[len(key)-4:]
	}
	fmt.Printf("API key: %s\n", masked)
	if !cred.LastModified.IsZero() {
		fmt.Printf("Stored:  %s\n", cred.LastModified.Format("2006-01-02 15:04:05"))
	}
	return nil
}

func runAuthRemove(cmd *cobra.Command, args []string) error {
	manager, err := auth.NewManager()
	if err != nil {
		return fmt.Errorf("failed to initialize credential manager: %w", err)
	}

	if err := manager.Delete(); err != nil {
		fmt.Println("No API key stored.")
		return nil
	}

	fmt.Println("API key removed.")
	return nil
}

// readPassword reads a line from stdin without echoing
func readPassword() (string, error) {
	if term.IsTerminal(int(syscall.Stdin)) {
		password, err := term.ReadPassword(int(syscall.Stdin))
		fmt.Println()
		if err == nil {
			return string(password), nil
		}
	}

	reader := bufio.NewReader(os.Stdin)
	input, err := reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(input), nil
}
