package main

import (
	"io"

	toml "github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"

	"neuralnotes/internal/config"
)

const formatTOML = "toml"

type ConfigCommand struct {
	stdout   io.Writer
	globals  *globalOptions
	defaults bool
	format   string
}

type configOutput struct {
	ConfigPath string        `json:"config_path,omitempty" toml:"config_path,omitempty"`
	DataDir    string        `json:"data_dir,omitempty" toml:"data_dir,omitempty"`
	Config     config.Config `json:"config" toml:"config"`
	Effective  effective     `json:"effective" toml:"effective"`
}

type effective struct {
	ServerURL        string `json:"server_url" toml:"server_url"`
	NotesPath        string `json:"notes_path" toml:"notes_path"`
	TimeoutMS        int64  `json:"timeout_ms" toml:"timeout_ms"`
	DebounceMS       int64  `json:"debounce_ms" toml:"debounce_ms"`
	SilentWindowMS   int64  `json:"silent_window_ms" toml:"silent_window_ms"`
	RelatedLimit     int    `json:"related_limit" toml:"related_limit"`
	PlaceholderTitle string `json:"placeholder_title" toml:"placeholder_title"`
	LogLevel         string `json:"log_level" toml:"log_level"`
	Storage          string `json:"storage" toml:"storage"`
}

func NewConfigCommand(stdout io.Writer, globals *globalOptions) *ConfigCommand {
	return &ConfigCommand{stdout: stdout, globals: globals}
}

func (c *ConfigCommand) Command() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print configuration (effective or defaults)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			format, err := resolveFormat(c.format, formatTOML, formatJSON)
			if err != nil {
				return err
			}
			payload, err := c.buildOutput()
			if err != nil {
				return err
			}
			return writeConfigOutput(c.stdout, format, payload)
		},
	}
	cmd.Flags().BoolVar(&c.defaults, "defaults", false, "print default config values")
	cmd.Flags().StringVar(&c.format, "format", formatTOML, "output format: toml|json")
	return cmd
}

func (c *ConfigCommand) buildOutput() (configOutput, error) {
	var out configOutput
	var cfg config.Config
	if c.defaults {
		cfg = config.Default()
	} else {
		loaded, err := loadConfig(c.globals)
		if err != nil {
			return configOutput{}, err
		}
		cfg = loaded
		path := ""
		if c.globals != nil {
			path = c.globals.configPath
		}
		if path == "" {
			path, err = config.ConfigPath()
			if err != nil {
				return configOutput{}, err
			}
		}
		out.ConfigPath = path
		if out.DataDir, err = config.DataDir(); err != nil {
			return configOutput{}, err
		}
	}
	out.Config = cfg
	out.Effective = effective{
		ServerURL:        cfg.ServerURL(),
		NotesPath:        cfg.NotesPath(),
		TimeoutMS:        cfg.RequestTimeout().Milliseconds(),
		DebounceMS:       cfg.AutosaveDebounce().Milliseconds(),
		SilentWindowMS:   cfg.SilentWindow().Milliseconds(),
		RelatedLimit:     cfg.RelatedLimit(),
		PlaceholderTitle: cfg.PlaceholderTitle(),
		LogLevel:         cfg.LogLevel(),
		Storage:          cfg.StorageBackend(),
	}
	return out, nil
}

func writeConfigOutput(out io.Writer, format string, payload configOutput) error {
	if format != formatTOML {
		return writeStructured(out, format, payload)
	}
	data, err := toml.Marshal(payload)
	if err != nil {
		return err
	}
	if len(data) == 0 || data[len(data)-1] != '\n' {
		data = append(data, '\n')
	}
	_, err = out.Write(data)
	return err
}
