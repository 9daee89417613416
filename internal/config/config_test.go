package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeDirArg(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"no trailing slash", "/games/materials", "/games/materials"},
		{"single trailing slash", "/games/materials/", "/games/materials"},
		{"multiple trailing slashes", "/games/materials///", "/games/materials"},
		{"root path", "/", "/"},
		{"relative path", "output", "output"},
		{"relative with slash", "output/", "output"},
		{"empty string", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeDirArg(tt.in))
		})
	}
}

func TestNormalizeExt(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{".tga", ".tga"},
		{"tga", ".tga"},
		{".PFM", ".pfm"},
		{" vtf ", ".vtf"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeExt(tt.in), "NormalizeExt(%q)", tt.in)
	}
}

func TestValidate_ColorMode(t *testing.T) {
	tests := []struct {
		name    string
		mode    ColorMode
		wantErr bool
	}{
		{"auto is valid", ColorAuto, false},
		{"always is valid", ColorAlways, false},
		{"never is valid", ColorNever, false},
		{"empty is invalid", "", true},
		{"unknown is invalid", "rainbow", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.CheckOnly = true // skip path requirement
			cfg.ColorMode = tt.mode
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidate_Ranges(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"no backends", func(c *Config) { c.Backends = nil }, true},
		{"negative jobs", func(c *Config) { c.Jobs = -1 }, true},
		{"negative timeout", func(c *Config) { c.Timeout = -time.Second }, true},
		{"force disabled", func(c *Config) { c.ForceBackend = NoForcedBackend }, false},
		{"force below disabled", func(c *Config) { c.ForceBackend = -2 }, true},
		{"empty input ext", func(c *Config) { c.InputExt = "" }, true},
		{"no output exts", func(c *Config) { c.OutputExts = nil }, true},
		{"output equals input ext", func(c *Config) { c.OutputExts = []string{"vtf"} }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.CheckOnly = true
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidate_NormalizesExtensions(t *testing.T) {
	cfg := DefaultConfig()
	cfg.CheckOnly = true
	cfg.InputExt = "VTF"
	cfg.OutputExts = []string{"TGA", ".Pfm"}

	require.NoError(t, cfg.Validate())
	assert.Equal(t, ".vtf", cfg.InputExt)
	assert.Equal(t, []string{".tga", ".pfm"}, cfg.OutputExts)
}

func TestValidate_RequiresPaths(t *testing.T) {
	cfg := DefaultConfig()
	cfg.CheckOnly = false
	cfg.InputDir = ""
	cfg.OutputDir = ""

	assert.Error(t, cfg.Validate(), "Validate() should fail when paths are empty and CheckOnly is false")

	cfg.InputDir = "/in"
	cfg.OutputDir = "/out"
	assert.NoError(t, cfg.Validate())
}

func TestValidate_CheckOnlySkipsPaths(t *testing.T) {
	cfg := DefaultConfig()
	cfg.CheckOnly = true
	cfg.InputDir = ""
	cfg.OutputDir = ""

	assert.NoError(t, cfg.Validate())
}

func TestValidatePaths(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		output  string
		wantErr bool
	}{
		{"separate directories", "/games/in", "/games/out", false},
		{"output equals input", "/games/mod", "/games/mod", true},
		{"output inside input", "/games/mod", "/games/mod/output", true},
		{"output is parent of input", "/games/mod/sub", "/games/mod", false},
		{"similar prefix not nested", "/games/materials", "/games/materials2", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			err := cfg.ValidatePaths(tt.input, tt.output)
			assert.Equal(t, tt.wantErr, err != nil, "ValidatePaths(%q, %q) error = %v", tt.input, tt.output, err)
		})
	}
}

func TestDefaultConfig_SaneDefaults(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, DefaultBackends, cfg.Backends)
	assert.Equal(t, ".vtf", cfg.InputExt)
	assert.Equal(t, []string{".tga", ".pfm"}, cfg.OutputExts)
	assert.Equal(t, "skybox", cfg.SkyboxMarker)
	assert.Equal(t, 1, cfg.ForceBackend)
	assert.Equal(t, ColorAuto, cfg.ColorMode)
	assert.True(t, cfg.IgnoreWorldCubemaps, "default IgnoreWorldCubemaps should be true")
	assert.True(t, cfg.Parallel, "default Parallel should be true")
	assert.False(t, cfg.Overwrite, "default Overwrite should be false")
	assert.False(t, cfg.DryRun, "default DryRun should be false")
	assert.Zero(t, cfg.Timeout)

	// The default list must be a copy so callers can't mutate the package var.
	cfg.Backends[0] = "mutated"
	assert.NotEqual(t, "mutated", DefaultBackends[0])
}

func TestParseFlags_Positional(t *testing.T) {
	cfg := DefaultConfig()
	err := ParseFlags(&cfg, []string{"-j", "4", "--no-parallel", "in/", "out"}, "test")
	require.NoError(t, err)

	assert.Equal(t, "in", cfg.InputDir)
	assert.Equal(t, "out", cfg.OutputDir)
	assert.Equal(t, 4, cfg.Jobs)
	assert.False(t, cfg.Parallel)
}

func TestParseFlags_MissingPositional(t *testing.T) {
	cfg := DefaultConfig()
	assert.Error(t, ParseFlags(&cfg, []string{"only-one"}, "test"))

	cfg = DefaultConfig()
	assert.NoError(t, ParseFlags(&cfg, []string{"--check"}, "test"), "--check needs no paths")
	assert.True(t, cfg.CheckOnly)
}

func TestParseFlags_RepeatableLists(t *testing.T) {
	cfg := DefaultConfig()
	args := []string{
		"-b", "/opt/a/vtf2tga", "--backend", "/opt/b/vtf2tga",
		"--ext", "tga,pfm", "-e", "png",
		"in", "out",
	}
	require.NoError(t, ParseFlags(&cfg, args, "test"))

	// The first occurrence replaces the defaults; later ones append.
	assert.Equal(t, []string{"/opt/a/vtf2tga", "/opt/b/vtf2tga"}, cfg.Backends)
	assert.Equal(t, []string{"tga", "pfm", "png"}, cfg.OutputExts)
}

func TestParseFlags_NegatedFlags(t *testing.T) {
	cfg := DefaultConfig()
	args := []string{"--keep-world-cubemaps", "--no-force-backend", "-f", "--no-color", "--color", "in", "out"}
	require.NoError(t, ParseFlags(&cfg, args, "test"))

	assert.False(t, cfg.IgnoreWorldCubemaps)
	assert.Equal(t, NoForcedBackend, cfg.ForceBackend)
	assert.True(t, cfg.Overwrite)
	assert.Equal(t, ColorNever, cfg.ColorMode, "--no-color wins over --color")
}

func TestParseFlags_UnknownFlag(t *testing.T) {
	cfg := DefaultConfig()
	assert.Error(t, ParseFlags(&cfg, []string{"--bogus", "in", "out"}, "test"))
}

func TestParseFlags_ConfigFileThenFlags(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "import.toml")
	writeFile(t, path, "jobs = 3\nskybox_marker = \"sky\"\ntimeout = \"30s\"\n")

	cfg := DefaultConfig()
	require.NoError(t, ParseFlags(&cfg, []string{"-C", path, "-j", "7", "in", "out"}, "test"))

	assert.Equal(t, path, cfg.ConfigFile)
	assert.Equal(t, "sky", cfg.SkyboxMarker, "file value applies")
	assert.Equal(t, 30*time.Second, cfg.Timeout)
	assert.Equal(t, 7, cfg.Jobs, "flag overrides file")
}

func TestConfigFileArg(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"absent", []string{"in", "out"}, ""},
		{"long with space", []string{"--config", "a.toml", "in"}, "a.toml"},
		{"long with equals", []string{"--config=b.yaml"}, "b.yaml"},
		{"short", []string{"-C", "c.yml"}, "c.yml"},
		{"single dash long", []string{"-config=d.toml"}, "d.toml"},
		{"after terminator", []string{"--", "--config", "x.toml"}, ""},
		{"dangling", []string{"--config"}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, configFileArg(tt.args))
		})
	}
}

func TestLoadFile_TOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg.toml")
	writeFile(t, path, `
backends = ["/opt/vtf2tga"]
base_dir = "/opt"
force_backend = -1
output_exts = [".tga"]
overwrite = true
ignore_world_cubemaps = false
parallel = false
color = "never"
`)
	cfg := DefaultConfig()
	require.NoError(t, LoadFile(path, &cfg))

	assert.Equal(t, []string{"/opt/vtf2tga"}, cfg.Backends)
	assert.Equal(t, "/opt", cfg.BaseDir)
	assert.Equal(t, NoForcedBackend, cfg.ForceBackend)
	assert.Equal(t, []string{".tga"}, cfg.OutputExts)
	assert.True(t, cfg.Overwrite)
	assert.False(t, cfg.IgnoreWorldCubemaps)
	assert.False(t, cfg.Parallel)
	assert.Equal(t, ColorNever, cfg.ColorMode)
	assert.Equal(t, "skybox", cfg.SkyboxMarker, "absent keys keep their defaults")
}

func TestLoadFile_YAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg.yaml")
	writeFile(t, path, "jobs: 2\nvtex_params: true\nreport: out.json\nmetrics_file: run.prom\n")

	cfg := DefaultConfig()
	require.NoError(t, LoadFile(path, &cfg))

	assert.Equal(t, 2, cfg.Jobs)
	assert.True(t, cfg.VtexParams)
	assert.Equal(t, "out.json", cfg.ReportFile)
	assert.Equal(t, "run.prom", cfg.MetricsFile)
}

func TestLoadFile_EmptyYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.yml")
	writeFile(t, path, "")

	cfg := DefaultConfig()
	assert.NoError(t, LoadFile(path, &cfg))
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadFile_Errors(t *testing.T) {
	dir := t.TempDir()
	unknownTOML := filepath.Join(dir, "typo.toml")
	writeFile(t, unknownTOML, "jbos = 3\n")
	unknownYAML := filepath.Join(dir, "typo.yaml")
	writeFile(t, unknownYAML, "jbos: 3\n")
	badTimeout := filepath.Join(dir, "timeout.toml")
	writeFile(t, badTimeout, "timeout = \"soon\"\n")
	badColor := filepath.Join(dir, "color.yaml")
	writeFile(t, badColor, "color: plaid\n")
	ini := filepath.Join(dir, "cfg.ini")
	writeFile(t, ini, "jobs=3\n")

	for _, path := range []string{unknownTOML, unknownYAML, badTimeout, badColor, ini, filepath.Join(dir, "missing.yaml")} {
		cfg := DefaultConfig()
		assert.Error(t, LoadFile(path, &cfg), path)
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv(EnvBackends, "/opt/a/vtf2tga"+string(os.PathListSeparator)+"/opt/b/vtf2tga")
	t.Setenv(EnvJobs, "5")
	t.Setenv(EnvTimeout, "2m")
	t.Setenv(EnvLogLevel, "DEBUG")
	t.Setenv(EnvNoColor, "1")

	cfg := DefaultConfig()
	require.NoError(t, ApplyEnv(&cfg))

	assert.Equal(t, []string{"/opt/a/vtf2tga", "/opt/b/vtf2tga"}, cfg.Backends)
	assert.Equal(t, 5, cfg.Jobs)
	assert.Equal(t, 2*time.Minute, cfg.Timeout)
	assert.True(t, cfg.Verbose)
	assert.Equal(t, ColorNever, cfg.ColorMode)
}

func TestApplyEnv_Invalid(t *testing.T) {
	t.Setenv(EnvJobs, "many")
	cfg := DefaultConfig()
	assert.Error(t, ApplyEnv(&cfg))

	t.Setenv(EnvJobs, "")
	t.Setenv(EnvTimeout, "eventually")
	cfg = DefaultConfig()
	assert.Error(t, ApplyEnv(&cfg))
}

func TestApplyEnv_DotEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	cfg := DefaultConfig()
	require.NoError(t, ApplyEnv(&cfg), "a missing .env is not an error")

	// Restored by t.Setenv's cleanup once godotenv has set it.
	t.Setenv(EnvTimeout, "")
	require.NoError(t, os.Unsetenv(EnvTimeout))
	writeFile(t, filepath.Join(dir, ".env"), EnvTimeout+"=45s\n")
	cfg = DefaultConfig()
	require.NoError(t, ApplyEnv(&cfg))
	assert.Equal(t, 45*time.Second, cfg.Timeout)
}

func TestApplyEnv_MalformedDotEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	writeFile(t, filepath.Join(dir, ".env"), "BAD-KEY=1\n")

	cfg := DefaultConfig()
	err := ApplyEnv(&cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), ".env")
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}
