package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/restroom/internal/app"
	"github.com/mesh-intelligence/restroom/internal/auth"
	"github.com/mesh-intelligence/restroom/internal/content"
	"github.com/mesh-intelligence/restroom/internal/logging"
	"github.com/mesh-intelligence/restroom/internal/paths"
	"github.com/mesh-intelligence/restroom/pkg/types"
)

const (
	configFileName = "config"
	configFileType = "yaml"
	envPrefix      = "RESTROOM"
)

// Config keys.
const (
	cfgKeyBackend           = "backend"
	cfgKeyDataDir           = "data_dir"
	cfgKeyLogLevel          = "log.level"
	cfgKeyLogFormat         = "log.format"
	cfgKeyHasher            = "auth.hasher"
	cfgKeyStripHTML         = "content.strip_html"
	cfgKeyRejectEmpty       = "content.reject_empty"
	cfgKeyFacilityCache     = "cache.facilities"
	cfgKeyHTTPAddr          = "http.addr"
	cfgKeyHTTPSessionSecret = "http.session_secret"
)

const defaultHTTPAddr = ":8080"

// envKeys are the keys that RESTROOM_* variables may override. data_dir is
// excluded: RESTROOM_DATA_DIR ranks below config.yaml and is handled by
// paths.ResolveDataDir.
var envKeys = []string{
	cfgKeyBackend,
	cfgKeyLogLevel,
	cfgKeyLogFormat,
	cfgKeyHasher,
	cfgKeyStripHTML,
	cfgKeyRejectEmpty,
	cfgKeyFacilityCache,
	cfgKeyHTTPAddr,
	cfgKeyHTTPSessionSecret,
}

// configFile is the structure written to config.yaml on first run.
type configFile struct {
	Backend string `yaml:"backend"`
	DataDir string `yaml:"data_dir,omitempty"`
	Log     struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`
	Auth struct {
		Hasher string `yaml:"hasher"`
	} `yaml:"auth"`
	Content struct {
		StripHTML   bool `yaml:"strip_html"`
		RejectEmpty bool `yaml:"reject_empty"`
	} `yaml:"content"`
	Cache struct {
		Facilities int `yaml:"facilities"`
	} `yaml:"cache"`
	HTTP struct {
		Addr string `yaml:"addr"`
	} `yaml:"http"`
}

func defaultConfig(dataDir string) configFile {
	var c configFile
	c.Backend = types.BackendSQLite
	c.DataDir = dataDir
	c.Log.Level = "warn"
	c.Log.Format = logging.FormatConsole
	c.Auth.Hasher = auth.HasherBcrypt
	c.Content.StripHTML = true
	c.Cache.Facilities = types.DefaultFacilityCacheSize
	c.HTTP.Addr = defaultHTTPAddr
	return c
}

func setDefaults(v *viper.Viper) {
	d := defaultConfig("")
	v.SetDefault(cfgKeyBackend, d.Backend)
	v.SetDefault(cfgKeyLogLevel, d.Log.Level)
	v.SetDefault(cfgKeyLogFormat, d.Log.Format)
	v.SetDefault(cfgKeyHasher, d.Auth.Hasher)
	v.SetDefault(cfgKeyStripHTML, d.Content.StripHTML)
	v.SetDefault(cfgKeyRejectEmpty, d.Content.RejectEmpty)
	v.SetDefault(cfgKeyFacilityCache, d.Cache.Facilities)
	v.SetDefault(cfgKeyHTTPAddr, d.HTTP.Addr)
}

// loadConfig reads config.yaml from configDir using Viper, creating the
// directory and a default config.yaml on first run. RESTROOM_* variables
// override file values.
func loadConfig(configDir string) (*viper.Viper, error) {
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return nil, fmt.Errorf("ensure config dir: %w", err)
	}
	if err := writeConfigIfMissing(paths.ConfigFile(configDir), ""); err != nil {
		return nil, fmt.Errorf("ensure default config: %w", err)
	}

	v := viper.New()
	setDefaults(v)
	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	v.AddConfigPath(configDir)
	for _, key := range envKeys {
		if err := v.BindEnv(key, envName(key)); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", key, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return v, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	return v, nil
}

// envName maps a dotted key to its environment variable: log.level becomes
// RESTROOM_LOG_LEVEL.
func envName(key string) string {
	return envPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}

// writeConfigIfMissing creates config.yaml with default values if the file
// does not exist. If it already exists, the function returns nil.
func writeConfigIfMissing(path, dataDir string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("stat config file: %w", err)
	}

	data, err := yaml.Marshal(defaultConfig(dataDir))
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	header := []byte("# restroom configuration\n")
	return os.WriteFile(path, append(header, data...), 0o644)
}

// loadDotEnv loads .env from the working directory and then from configDir.
// Variables already set in the process win; missing files are ignored.
func loadDotEnv(configDir string) error {
	for _, path := range []string{paths.EnvFileName, filepath.Join(configDir, paths.EnvFileName)} {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			return err
		}
	}
	return nil
}

// settingsFrom translates configuration into app settings.
func settingsFrom(v *viper.Viper, dataDir string) app.Settings {
	return app.Settings{
		Store: types.Config{
			Backend:           v.GetString(cfgKeyBackend),
			DataDir:           dataDir,
			FacilityCacheSize: v.GetInt(cfgKeyFacilityCache),
		},
		Hasher: v.GetString(cfgKeyHasher),
		Content: content.Options{
			StripHTML:   v.GetBool(cfgKeyStripHTML),
			RejectEmpty: v.GetBool(cfgKeyRejectEmpty),
		},
	}
}
