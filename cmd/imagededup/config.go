package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/pflag"
)

const defaultConfigPath = "~/.config/imagededup/config.toml"

// options is the resolved CLI configuration. Field tags double as the TOML
// schema of the config file.
type options struct {
	Folder          string   `toml:"folder"`
	PriorityList    []string `toml:"priority_list"`
	NonRecursive    bool     `toml:"non_recursive"`
	PermanentDelete bool     `toml:"permanent_delete"`
	Hash            string   `toml:"hash"`
	PriorityMatch   string   `toml:"priority_match"`
	TrashDir        string   `toml:"trash_dir"`
	Viewer          string   `toml:"viewer"`
	SkipTies        bool     `toml:"skip_ties"`
	Verbose         bool     `toml:"verbose"`
}

func defaultOptions() options {
	return options{
		Folder:        ".",
		Hash:          "whash",
		PriorityMatch: "substring",
	}
}

// loadOptions starts from the defaults and overlays the config file, if one
// exists. It returns the resolved path and whether the file was read.
func loadOptions(path string) (options, string, bool, error) {
	opts := defaultOptions()

	resolved, exists, err := resolveConfigPath(path)
	if err != nil {
		return options{}, "", false, err
	}
	if !exists {
		return opts, resolved, false, nil
	}

	file, err := os.Open(resolved)
	if err != nil {
		return options{}, "", false, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	decoder := toml.NewDecoder(file)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&opts); err != nil {
		return options{}, "", false, fmt.Errorf("parse config %s: %w", resolved, err)
	}
	return opts, resolved, true, nil
}

// resolveConfigPath returns the config file to read. An explicit path must
// exist; the default location is optional.
func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		if _, err := os.Stat(expanded); err != nil {
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}
	info, err := os.Stat(defaultPath)
	switch {
	case err == nil && !info.IsDir():
		return defaultPath, true, nil
	case err == nil, errors.Is(err, fs.ErrNotExist):
		return defaultPath, false, nil
	default:
		return "", false, fmt.Errorf("stat config: %w", err)
	}
}

// overlayFlags copies every flag the user set explicitly over opts.
func overlayFlags(opts *options, flags *pflag.FlagSet, set options) {
	flags.Visit(func(f *pflag.Flag) {
		switch f.Name {
		case "folder":
			opts.Folder = set.Folder
		case "priority-list":
			opts.PriorityList = set.PriorityList
		case "non-recursive":
			opts.NonRecursive = set.NonRecursive
		case "permanent-delete":
			opts.PermanentDelete = set.PermanentDelete
		case "hash":
			opts.Hash = set.Hash
		case "priority-match":
			opts.PriorityMatch = set.PriorityMatch
		case "trash-dir":
			opts.TrashDir = set.TrashDir
		case "viewer":
			opts.Viewer = set.Viewer
		case "skip-ties":
			opts.SkipTies = set.SkipTies
		case "verbose":
			opts.Verbose = set.Verbose
		}
	})
}

// expandPath makes p absolute, replacing a leading "~" or "~/" with the
// home directory. "~user" forms are left as relative names.
func expandPath(p string) (string, error) {
	if p == "" {
		return "", nil
	}
	if rest, ok := strings.CutPrefix(p, "~"); ok && (rest == "" || os.IsPathSeparator(rest[0])) {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		p = home + rest
	}
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", fmt.Errorf("resolve %q: %w", p, err)
	}
	return abs, nil
}
