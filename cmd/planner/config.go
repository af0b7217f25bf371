package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"

	"planner/internal/config"
	"planner/internal/errors"
)

var (
	configFormat string
	configSave   bool
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage planner configuration",
	Long:  "View and manage planner configuration stored in <home>/config.json",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long: `Display the effective configuration after environment overrides.

Examples:
  planner config show                 # Pretty-print current config
  planner config show --as json       # Raw JSON output
  planner config show --as toml       # TOML rendering
  planner config show --save          # Write defaults to config.json`,
	Args: cobra.NoArgs,
	RunE: runConfigShow,
}

var configEnvCmd = &cobra.Command{
	Use:   "env",
	Short: "List supported environment variables",
	Long:  "Display all supported PLANNER_* environment variable overrides",
	Args:  cobra.NoArgs,
	RunE:  runConfigEnv,
}

func init() {
	configShowCmd.Flags().StringVar(&configFormat, "as", "human", "Output format (human, json, toml)")
	configShowCmd.Flags().BoolVar(&configSave, "save", false, "Write the effective configuration to config.json")

	configCmd.AddCommand(configShowCmd, configEnvCmd)
	rootCmd.AddCommand(configCmd)
}

// ConfigShowResponse is the response format for config show
type ConfigShowResponse struct {
	Home         string               `json:"home"`
	ConfigPath   string               `json:"configPath,omitempty"`
	UsedDefaults bool                 `json:"usedDefaults"`
	EnvOverrides []config.EnvOverride `json:"envOverrides,omitempty"`
	StoragePath  string               `json:"storagePath"`
	Config       *config.Config       `json:"config"`
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	home, err := config.ResolveHome(homeFlag)
	if err != nil {
		return errors.New(errors.ConfigInvalid, "resolve home directory", err)
	}

	result, err := config.LoadConfigWithDetails(home)
	if err != nil {
		return errors.New(errors.ConfigInvalid, "load configuration", err)
	}
	if configSave {
		if err := result.Config.Save(home); err != nil {
			return errors.New(errors.ConfigInvalid, "save configuration", err)
		}
	}

	out := cmd.OutOrStdout()
	format := configFormat
	if formatFlag == string(FormatJSON) && !cmd.Flags().Changed("as") {
		format = "json"
	}

	switch strings.ToLower(format) {
	case "json":
		s, err := formatJSON(&ConfigShowResponse{
			Home:         home,
			ConfigPath:   result.ConfigPath,
			UsedDefaults: result.UsedDefaults,
			EnvOverrides: result.EnvOverrides,
			StoragePath:  result.Config.StoragePath(home),
			Config:       result.Config,
		})
		if err != nil {
			return err
		}
		fmt.Fprintln(out, s)
	case "toml":
		data, err := toml.Marshal(result.Config)
		if err != nil {
			return fmt.Errorf("encode toml: %w", err)
		}
		fmt.Fprint(out, string(data))
	case "human":
		outputConfigHuman(out, home, result)
	default:
		return errors.New(errors.InvalidInput, fmt.Sprintf("unsupported format: %s", format), nil)
	}
	return nil
}

func outputConfigHuman(out io.Writer, home string, result *config.LoadResult) {
	fmt.Fprintln(out, styles.Title.Render("Planner Configuration"))
	fmt.Fprintln(out, strings.Repeat("─", 50))

	fmt.Fprintf(out, "Home: %s\n", home)
	if result.UsedDefaults {
		fmt.Fprintln(out, "Source: defaults (no config file found)")
	} else if result.ConfigPath != "" {
		fmt.Fprintf(out, "Source: %s\n", result.ConfigPath)
	}

	if len(result.EnvOverrides) > 0 {
		fmt.Fprintln(out, "\nEnvironment Overrides:")
		for _, ov := range result.EnvOverrides {
			fmt.Fprintf(out, "  %s=%s → %s\n", ov.EnvVar, ov.FromValue, ov.Path)
		}
	}

	cfg := result.Config
	defaults := config.DefaultConfig()

	fmt.Fprintln(out)
	printConfigSection(out, "version", cfg.Version, defaults.Version)

	fmt.Fprintln(out, "\nstorage:")
	printConfigSection(out, "  backend", cfg.Storage.Backend, defaults.Storage.Backend)
	printConfigSection(out, "  path", cfg.StoragePath(home), defaults.StoragePath(home))
	printConfigSection(out, "  syncWrites", cfg.Storage.SyncWrites, defaults.Storage.SyncWrites)
	printConfigSection(out, "  gcIntervalSeconds", cfg.Storage.GCIntervalSeconds, defaults.Storage.GCIntervalSeconds)

	fmt.Fprintln(out, "\nagenda:")
	printConfigSection(out, "  weekStart", cfg.Agenda.WeekStart, defaults.Agenda.WeekStart)
	printConfigSection(out, "  toggleDelayMs", cfg.Agenda.ToggleDelayMs, defaults.Agenda.ToggleDelayMs)
	printConfigSection(out, "  includeDone", cfg.Agenda.IncludeDone, defaults.Agenda.IncludeDone)
	printConfigSection(out, "  exclusiveDates", cfg.Agenda.ExclusiveDates, defaults.Agenda.ExclusiveDates)

	fmt.Fprintln(out, "\nlogging:")
	printConfigSection(out, "  level", cfg.Logging.Level, defaults.Logging.Level)
	printConfigSection(out, "  format", cfg.Logging.Format, defaults.Logging.Format)
	printConfigSection(out, "  file", cfg.LogPath(home), defaults.LogPath(home))

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(out, "\n%s %s\n", styles.Error.Render("Invalid:"), err.Error())
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, "Use 'planner config show --as json' for full configuration")
	fmt.Fprintln(out, "Use 'planner config env' to see supported environment variables")
}

func printConfigSection(out io.Writer, name string, value, defaultValue interface{}) {
	modified := ""
	if fmt.Sprint(value) != fmt.Sprint(defaultValue) {
		modified = styles.Muted.Render(fmt.Sprintf(" (default: %v)", defaultValue))
	}
	fmt.Fprintf(out, "%s: %v%s\n", name, value, modified)
}

// EnvVarCLI describes one supported environment variable.
type EnvVarCLI struct {
	Name  string `json:"name"`
	Path  string `json:"path"`
	Value string `json:"value,omitempty"`
}

func runConfigEnv(cmd *cobra.Command, args []string) error {
	vars := make([]EnvVarCLI, 0)
	for _, name := range append([]string{"PLANNER_HOME", "PLANNER_CONFIG_PATH"}, config.GetSupportedEnvVars()...) {
		path, _ := config.EnvVarPath(name)
		switch name {
		case "PLANNER_HOME":
			path = "(home directory)"
		case "PLANNER_CONFIG_PATH":
			path = "(config file)"
		}
		vars = append(vars, EnvVarCLI{Name: name, Path: path, Value: os.Getenv(name)})
	}

	if formatFlag == string(FormatJSON) {
		return printResponse(cmd, vars)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, styles.Title.Render("Supported Environment Variables"))
	fmt.Fprintln(out, strings.Repeat("─", 50))
	for _, v := range vars {
		line := fmt.Sprintf("  %-38s → %s", v.Name, v.Path)
		if v.Value != "" {
			line += styles.Muted.Render(fmt.Sprintf("  [set: %s]", v.Value))
		}
		fmt.Fprintln(out, line)
	}
	return nil
}
