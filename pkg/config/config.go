// Copyright (c) 2025 The FileSplitter developers

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/VetheonGames/FileSplitter/pkg/logging"
	"github.com/VetheonGames/FileSplitter/pkg/units"
	"github.com/jessevdk/go-flags"
)

const (
	defaultConfigFilename = "filesplitter.conf"
	defaultLogFilename    = "filesplitter.log"
	defaultDebugLevel     = "info"
	defaultSize           = "10:MB"
)

var (
	defaultHomeDir    = filepath.Join(os.Getenv("HOME"), ".filesplitter")
	defaultConfigFile = filepath.Join(defaultHomeDir, defaultConfigFilename)
)

// Config defines the configuration options for filesplitter.
type Config struct {
	ConfigFile  string `short:"C" long:"configfile" description:"Path to configuration file"`
	ShowVersion bool   `short:"V" long:"version" description:"Display version information and exit"`

	Path   string `short:"p" long:"path" description:"Path of the file to split, or of the summary (.sum) file to merge"`
	Export string `short:"e" long:"export" description:"Directory to export the split or merged file(s); defaults to the directory of --path"`
	Size   string `short:"s" long:"size" description:"Size of each chunk and its unit (KB, MB, GB), e.g. 10:MB"`
	Merge  bool   `short:"m" long:"merge" description:"Merge chunks instead of splitting into them"`
	Info   bool   `short:"i" long:"info" description:"Print a summary file and check it against its chunks"`
	Yes    bool   `short:"y" long:"yes" description:"Answer yes to every confirmation"`

	LogDir     string `long:"logdir" description:"Directory to write a rotated log file to"`
	DebugLevel string `short:"d" long:"debuglevel" description:"Logging level for all subsystems {trace, debug, info, warn, error, critical, off} -- You may also specify <subsystem>=<level>,<subsystem2>=<level>,... to set the log level for individual subsystems"`

	// ChunkSize is Size in bytes.
	ChunkSize uint64 `no-flag:"true"`
}

// LogFile returns the log file path, or "" when file logging is disabled.
func (c *Config) LogFile() string {
	if c.LogDir == "" {
		return ""
	}
	return filepath.Join(c.LogDir, defaultLogFilename)
}

// ErrHelp is returned when the help message was requested and printed.
var ErrHelp = errors.New("help requested")

// LoadConfig initializes and parses the config using a config file and
// command line options.
//
// The configuration proceeds as follows:
//  1. Start with a default config with sane settings
//  2. Pre-parse the command line to check for an alternative config file
//  3. Load configuration file overwriting defaults with any specified options
//  4. Parse CLI options and overwrite/add any specified options
func LoadConfig(args []string) (*Config, error) {
	// Default config
	cfg := Config{
		ConfigFile: defaultConfigFile,
		Size:       defaultSize,
		DebugLevel: defaultDebugLevel,
	}

	// Pre-parse the command line options to see if an alternative config
	// file or the version flag was specified.
	preCfg := cfg
	preParser := flags.NewParser(&preCfg, flags.HelpFlag)
	if _, err := preParser.ParseArgs(args); err != nil {
		if e, ok := err.(*flags.Error); ok && e.Type == flags.ErrHelp {
			fmt.Fprintln(os.Stdout, err)
			return nil, ErrHelp
		}
		preParser.WriteHelp(os.Stderr)
		return nil, err
	}

	if preCfg.ShowVersion {
		return &preCfg, nil
	}

	// Load additional config from file.
	parser := flags.NewParser(&cfg, flags.Default)
	if err := flags.NewIniParser(parser).ParseFile(preCfg.ConfigFile); err != nil {
		var pathErr *os.PathError
		if !errors.As(err, &pathErr) || preCfg.ConfigFile != defaultConfigFile {
			return nil, fmt.Errorf("error parsing config file %s: %v", preCfg.ConfigFile, err)
		}
	}

	// Parse command line options again to ensure they take precedence.
	if _, err := parser.ParseArgs(args); err != nil {
		if e, ok := err.(*flags.Error); !ok || e.Type != flags.ErrHelp {
			parser.WriteHelp(os.Stderr)
		}
		return nil, err
	}
	cfg.ConfigFile = preCfg.ConfigFile

	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// validate checks option values and fills in derived ones.
func validate(cfg *Config) error {
	if cfg.Merge && cfg.Info {
		return fmt.Errorf("--merge and --info cannot be used together")
	}

	if cfg.Path == "" {
		return fmt.Errorf("a file path is required (--path)")
	}
	cfg.Path = filepath.Clean(cfg.Path)

	if cfg.Export == "" {
		cfg.Export = filepath.Dir(cfg.Path)
	}
	cfg.Export = filepath.Clean(cfg.Export)

	chunkSize, err := units.ParseSize(cfg.Size)
	if err != nil {
		return fmt.Errorf("invalid --size: %w", err)
	}
	cfg.ChunkSize = chunkSize

	if err := logging.ParseAndSetDebugLevels(cfg.DebugLevel); err != nil {
		return err
	}

	return nil
}
