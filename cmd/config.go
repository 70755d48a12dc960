package cmd

import (
	"bufio"
	"crypto/sha256"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/benoctopus/titan/internal/config"
	"github.com/benoctopus/titan/internal/display"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show, validate, or edit the titan configuration",
	Long: `Manage the titan configuration file.

The config file is located at:
  - Linux: ~/.config/titan/config.yaml
  - macOS: ~/Library/Application Support/titan/config.yaml
  - Windows: %APPDATA%\titan\config.yaml

Every setting can be overridden with an environment variable:
TITAN_DB, TITAN_DAY_POLICY, TITAN_LOG_LEVEL, TITAN_LOG_FILE,
TITAN_ROUTINE_FILE, TITAN_WEIGHT_STEP, TITAN_FUZZY_FINDER.

Example config.yaml:
  version: "1"
  db_path: ~/.config/titan/titan.db
  day_policy: latest-session
  log_level: warn
  weight_step: 2.5
  fuzzy_finder: auto
`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the resolved configuration",
	Args:  cobra.NoArgs,
	RunE:  runConfigShow,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file path",
	Args:  cobra.NoArgs,
	RunE:  runConfigPath,
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the config file",
	Args:  cobra.NoArgs,
	RunE:  runConfigValidate,
}

// configEditCmd represents the config edit command
var configEditCmd = &cobra.Command{
	Use:   "edit",
	Short: "Edit the titan configuration file",
	Long: `Opens the titan configuration file in your default editor.

The editor is determined by the VISUAL or EDITOR environment variable (falls
back to vi).

After editing, the configuration will be validated. If validation fails, you'll
be prompted to fix the errors before the changes are saved.`,
	Args: cobra.NoArgs,
	RunE: runConfigEdit,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configPathCmd)
	configCmd.AddCommand(configValidateCmd)
	configCmd.AddCommand(configEditCmd)
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return eris.Wrap(err, "failed to load config")
	}
	if dbPathFlag != "" {
		cfg.DBPath = dbPathFlag
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return eris.Wrap(err, "failed to marshal config to YAML")
	}
	fmt.Fprint(cmd.OutOrStdout(), string(data))
	return nil
}

func runConfigPath(cmd *cobra.Command, args []string) error {
	configPath, err := config.GetConfigPath()
	if err != nil {
		return eris.Wrap(err, "failed to get config path")
	}
	fmt.Fprintln(cmd.OutOrStdout(), configPath)
	return nil
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	configPath, err := config.GetConfigPath()
	if err != nil {
		return eris.Wrap(err, "failed to get config path")
	}

	out := display.New(cmd.OutOrStdout())
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		out.Infof("No config file at %s, using defaults", configPath)
		return nil
	}

	if err := config.ValidateConfigFile(configPath); err != nil {
		return eris.Wrap(err, "config validation failed")
	}

	out.Successf("Config is valid: %s", configPath)
	return nil
}

func runConfigEdit(cmd *cobra.Command, args []string) error {
	return editConfig(cmd, bufio.NewReader(cmd.InOrStdin()))
}

func editConfig(cmd *cobra.Command, in *bufio.Reader) error {
	out := display.New(cmd.OutOrStdout())

	// Get config path
	configPath, err := config.GetConfigPath()
	if err != nil {
		return eris.Wrap(err, "failed to get config path")
	}

	// Ensure config directory exists
	if err := config.EnsureConfigDir(); err != nil {
		return eris.Wrap(err, "failed to ensure config directory")
	}

	// Create config file with defaults if it doesn't exist
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		if err := createDefaultConfig(); err != nil {
			return eris.Wrap(err, "failed to create default config")
		}
		out.Printf("Created default config at: %s\n", configPath)
	}

	// Get the file hash before editing
	hashBefore, err := hashFile(configPath)
	if err != nil {
		return eris.Wrap(err, "failed to hash config file")
	}

	// Open in editor
	editor := getEditor()
	editorCmd := exec.CommandContext(cmd.Context(), editor, configPath)
	editorCmd.Stdin = os.Stdin
	editorCmd.Stdout = cmd.OutOrStdout()
	editorCmd.Stderr = cmd.ErrOrStderr()

	if err := editorCmd.Run(); err != nil {
		return eris.Wrapf(err, "failed to run editor: %s", editor)
	}

	// Get the file hash after editing
	hashAfter, err := hashFile(configPath)
	if err != nil {
		return eris.Wrap(err, "failed to hash config file after editing")
	}

	// Check if file was modified
	if hashBefore == hashAfter {
		out.Println("No changes made to config")
		return nil
	}

	// Validate the config
	if err := config.ValidateConfigFile(configPath); err != nil {
		out.Printf("\nConfig validation failed: %s\n", eris.ToString(err, false))
		out.Printf("\nThe config file has errors. Do you want to:\n")
		out.Printf("  1. Edit again to fix errors\n")
		out.Printf("  2. Keep the file and fix it later\n")
		out.Printf("\nChoice (1-2): ")

		choice, _ := in.ReadString('\n')

		switch strings.TrimSpace(choice) {
		case "1":
			return editConfig(cmd, in)
		case "2":
			return eris.New("config validation failed")
		default:
			return eris.New("invalid choice")
		}
	}

	out.Successf("Config saved and validated successfully: %s", configPath)
	return nil
}

// getEditor returns the user's preferred editor
// Priority: VISUAL > EDITOR > vi
func getEditor() string {
	if editor := os.Getenv("VISUAL"); editor != "" {
		return editor
	}
	if editor := os.Getenv("EDITOR"); editor != "" {
		return editor
	}
	return "vi"
}

// createDefaultConfig creates a default configuration file
func createDefaultConfig() error {
	cfg := &config.Config{
		DayPolicy:   config.DefaultDayPolicy,
		LogLevel:    config.DefaultLogLevel,
		WeightStep:  config.DefaultWeightStep,
		FuzzyFinder: "auto",
	}

	return config.SaveConfig(cfg)
}

// hashFile computes the SHA256 hash of a file
func hashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}

	return fmt.Sprintf("%x", h.Sum(nil)), nil
}
