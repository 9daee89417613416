package config

// This file implements CLI flag parsing and help text.
// Flags are grouped into backends, assets, scheduling, output, display, and utility.
// Negated flags (e.g. --no-parallel) are applied after Parse so Config defaults hold unless set.

import (
	"flag"
	"fmt"
	"os"
	"strings"
)

// ParseFlags applies the config file named by --config (if any), then
// SOURCE1IMPORT_* environment overrides, then parses args into cfg so that
// flags always win. On --help or --version it prints and exits.
// On error it returns non-nil (e.g. unknown flag, missing positional args).
func ParseFlags(cfg *Config, args []string, version string) error {
	if path := configFileArg(args); path != "" {
		if err := LoadFile(path, cfg); err != nil {
			return err
		}
		cfg.ConfigFile = path
	}
	if err := ApplyEnv(cfg); err != nil {
		return err
	}

	fs := flag.NewFlagSet("vtfimport", flag.ContinueOnError)
	fs.Usage = func() { printUsage(version) }

	// Negated/override flags: we capture bools then apply to cfg after Parse,
	// so that defaults from DefaultConfig() hold unless the user passes the flag.
	var negated negatedFlags

	defineBackendFlags(fs, cfg, &negated)
	defineAssetFlags(fs, cfg, &negated)
	defineSchedulingFlags(fs, cfg, &negated)
	defineOutputFlags(fs, cfg)
	defineDisplayFlags(fs, cfg, &negated)
	defineUtilityFlags(fs, &negated)

	if err := fs.Parse(args); err != nil {
		return err
	}

	applyNegatedFlags(cfg, &negated)

	if negated.showHelp {
		printUsage(version)
		os.Exit(0)
	}
	if negated.showVersion {
		fmt.Fprintln(os.Stdout, "vtfimport v"+version)
		os.Exit(0)
	}

	return parsePositionalArgs(fs, cfg)
}

// negatedFlags holds boolean flags that are applied after Parse.
// These either invert a default (e.g. noParallel -> Parallel=false) or trigger exit (showHelp, showVersion).
type negatedFlags struct {
	noParallel        bool
	keepWorldCubemaps bool
	noForceBackend    bool
	force             bool
	forceColor        bool
	noColor           bool
	showVersion       bool
	showHelp          bool
}

// defineBackendFlags registers -b/--backend, --base-dir, --timeout, --skybox-marker, --force-backend.
func defineBackendFlags(fs *flag.FlagSet, cfg *Config, n *negatedFlags) {
	backends := &listValue{p: &cfg.Backends}
	fs.Var(backends, "backend", "Converter executable (repeatable, highest priority first)")
	fs.Var(backends, "b", "Same as --backend")
	fs.StringVar(&cfg.BaseDir, "base-dir", cfg.BaseDir, "Directory relative backend paths are resolved against")
	fs.DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "Per-invocation backend timeout (0 = none)")
	fs.StringVar(&cfg.SkyboxMarker, "skybox-marker", cfg.SkyboxMarker, "Path substring that triggers the forced backend")
	fs.IntVar(&cfg.ForceBackend, "force-backend", cfg.ForceBackend, "Candidate position (0-based) of the backend always run for marked assets")
	fs.BoolVar(&n.noForceBackend, "no-force-backend", false, "Disable the forced-backend hint")
}

// defineAssetFlags registers -e/--ext, --in-ext, -f/--force, --keep-world-cubemaps, --vtex-params.
func defineAssetFlags(fs *flag.FlagSet, cfg *Config, n *negatedFlags) {
	exts := &listValue{p: &cfg.OutputExts, split: true}
	fs.Var(exts, "ext", "Output extension to look for (repeatable or comma-separated)")
	fs.Var(exts, "e", "Same as --ext")
	fs.StringVar(&cfg.InputExt, "in-ext", cfg.InputExt, "Input asset extension")
	fs.BoolVar(&n.force, "force", false, "Re-convert assets whose outputs already exist")
	fs.BoolVar(&n.force, "f", false, "Same as --force")
	fs.BoolVar(&n.keepWorldCubemaps, "keep-world-cubemaps", false, "Convert auto-generated environment cubemaps too")
	fs.BoolVar(&cfg.VtexParams, "vtex-params", cfg.VtexParams, "Translate vtex compile parameter files")
}

// defineSchedulingFlags registers -j/--jobs and --no-parallel.
func defineSchedulingFlags(fs *flag.FlagSet, cfg *Config, n *negatedFlags) {
	fs.IntVar(&cfg.Jobs, "jobs", cfg.Jobs, "Concurrent conversions (0 = auto)")
	fs.IntVar(&cfg.Jobs, "j", cfg.Jobs, "Same as --jobs")
	fs.BoolVar(&n.noParallel, "no-parallel", false, "Convert one asset at a time")
}

// defineOutputFlags registers -d/--dry-run, --report, --metrics-file.
func defineOutputFlags(fs *flag.FlagSet, cfg *Config) {
	fs.BoolVar(&cfg.DryRun, "dry-run", false, "List jobs only; do not run any backend")
	fs.BoolVar(&cfg.DryRun, "d", false, "Same as --dry-run")
	fs.StringVar(&cfg.ReportFile, "report", cfg.ReportFile, "Write the final report (.json, .yaml)")
	fs.StringVar(&cfg.MetricsFile, "metrics-file", cfg.MetricsFile, "Write Prometheus metrics in textfile format")
}

// defineDisplayFlags registers --color, --no-color, verbose, --check, --log, --config.
func defineDisplayFlags(fs *flag.FlagSet, cfg *Config, n *negatedFlags) {
	fs.BoolVar(&n.forceColor, "color", false, "Force colored logs")
	fs.BoolVar(&n.noColor, "no-color", false, "Disable colored logs")
	fs.BoolVar(&cfg.Verbose, "verbose", cfg.Verbose, "Verbose output")
	fs.BoolVar(&cfg.Verbose, "v", cfg.Verbose, "Same as --verbose")
	fs.BoolVar(&cfg.CheckOnly, "check", false, "Run system diagnostics and exit")
	fs.BoolVar(&cfg.CheckOnly, "c", false, "Same as --check")
	fs.StringVar(&cfg.LogFile, "log", cfg.LogFile, "Append JSON logs to file")
	fs.StringVar(&cfg.LogFile, "l", cfg.LogFile, "Same as --log")
	// Consumed before Parse by configFileArg; registered so Parse accepts it.
	fs.StringVar(&cfg.ConfigFile, "config", cfg.ConfigFile, "TOML or YAML config file")
	fs.StringVar(&cfg.ConfigFile, "C", cfg.ConfigFile, "Same as --config")
}

// defineUtilityFlags registers --version and --help (exit after printing).
func defineUtilityFlags(fs *flag.FlagSet, n *negatedFlags) {
	fs.BoolVar(&n.showVersion, "version", false, "Print version and exit")
	fs.BoolVar(&n.showVersion, "V", false, "Same as --version")
	fs.BoolVar(&n.showHelp, "help", false, "Show this help and exit")
	fs.BoolVar(&n.showHelp, "h", false, "Same as --help")
}

// applyNegatedFlags copies negated and override flag values into cfg.
func applyNegatedFlags(cfg *Config, n *negatedFlags) {
	if n.noParallel {
		cfg.Parallel = false
	}
	if n.keepWorldCubemaps {
		cfg.IgnoreWorldCubemaps = false
	}
	if n.noForceBackend {
		cfg.ForceBackend = NoForcedBackend
	}
	if n.force {
		cfg.Overwrite = true
	}
	if n.noColor {
		cfg.ColorMode = ColorNever
	} else if n.forceColor {
		cfg.ColorMode = ColorAlways
	}
}

// parsePositionalArgs sets InputDir and OutputDir from the two positional args when not in CheckOnly mode.
func parsePositionalArgs(fs *flag.FlagSet, cfg *Config) error {
	args := fs.Args()
	if cfg.CheckOnly {
		return nil
	}
	if len(args) != 2 {
		return fmt.Errorf("need exactly input_dir and output_dir")
	}
	cfg.InputDir = NormalizeDirArg(args[0])
	cfg.OutputDir = NormalizeDirArg(args[1])
	return nil
}

// configFileArg finds the value of -C/--config in args without parsing the
// rest, so the file can be applied before flags override it.
func configFileArg(args []string) string {
	for i := 0; i < len(args); i++ {
		a := args[i]
		if a == "--" {
			return ""
		}
		name := strings.TrimLeft(a, "-")
		if name == a {
			continue
		}
		if key, val, ok := strings.Cut(name, "="); ok {
			if key == "config" || key == "C" {
				return val
			}
			continue
		}
		if (name == "config" || name == "C") && i+1 < len(args) {
			return args[i+1]
		}
	}
	return ""
}

// printUsage writes the help text to stderr. Column-aligned for readability.
func printUsage(version string) {
	const col1 = 30 // width of "  -x, --long-name <arg>  "
	lines := []struct {
		flags string
		desc  string
	}{
		{"", "vtfimport v" + version + " - batch vtf2tga driver for Source 1 materials"},
		{"", ""},
		{"  vtfimport [OPTIONS] <input_dir> <output_dir>", ""},
		{"", ""},
		{"Backends", ""},
		{"  -b, --backend <path>", "Converter executable, repeatable (priority order)"},
		{"  --base-dir <dir>", "Base for relative backend paths (default: binary dir)"},
		{"  --timeout <duration>", "Per-invocation timeout (default: none)"},
		{"  --skybox-marker <text>", "Path marker that forces a backend (default: skybox)"},
		{"  --force-backend <pos>", "Candidate position forced for marked assets (default: 1)"},
		{"  --no-force-backend", "Disable the forced-backend hint"},
		{"", ""},
		{"Assets", ""},
		{"  -e, --ext <.tga,.pfm>", "Output extensions to look for (default: .tga,.pfm)"},
		{"  --in-ext <.vtf>", "Input asset extension (default: .vtf)"},
		{"  -f, --force", "Re-convert assets whose outputs already exist"},
		{"  --keep-world-cubemaps", "Do not skip auto-generated env cubemaps"},
		{"  --vtex-params", "Translate vtex compile parameter files"},
		{"", ""},
		{"Scheduling", ""},
		{"  -j, --jobs <n>", "Concurrent conversions (default: min(CPUs+2, 10))"},
		{"  --no-parallel", "Convert one asset at a time"},
		{"", ""},
		{"Output", ""},
		{"  -d, --dry-run", "List jobs only; do not run any backend"},
		{"  --report <path>", "Write the final report (.json, .yaml)"},
		{"  --metrics-file <path>", "Write Prometheus textfile metrics"},
		{"", ""},
		{"Display", ""},
		{"  --color", "Force colored logs"},
		{"  --no-color", "Disable colored logs"},
		{"  -v, --verbose", "Verbose output"},
		{"", ""},
		{"Utility", ""},
		{"  -C, --config <path>", "TOML or YAML config file"},
		{"  -l, --log <path>", "Append JSON logs to file"},
		{"  -c, --check", "System diagnostics (backends, CPUs, capacity)"},
		{"  -V, --version", "Print version and exit"},
		{"  -h, --help", "Show this help and exit"},
	}

	for _, l := range lines {
		if l.flags == "" && l.desc == "" {
			fmt.Fprintln(os.Stderr)
			continue
		}
		if l.desc == "" {
			fmt.Fprintln(os.Stderr, l.flags)
			continue
		}
		if l.flags == "" {
			fmt.Fprintln(os.Stderr, l.desc)
			continue
		}
		padding := col1 - len(l.flags)
		if padding < 1 {
			padding = 1
		}
		fmt.Fprintf(os.Stderr, "%s%*s%s\n", l.flags, padding, "", l.desc)
	}
}

// listValue is a repeatable flag.Value. The first Set replaces the default
// list; later Sets append. With split, values are also comma-separated.
type listValue struct {
	p     *[]string
	split bool
	set   bool
}

func (l *listValue) String() string {
	if l.p == nil {
		return ""
	}
	return strings.Join(*l.p, ",")
}

func (l *listValue) Set(s string) error {
	if !l.set {
		*l.p = nil
		l.set = true
	}
	parts := []string{s}
	if l.split {
		parts = strings.Split(s, ",")
	}
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			*l.p = append(*l.p, part)
		}
	}
	return nil
}
