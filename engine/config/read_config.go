package config

import (
	"encoding/json"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/go-ini/ini"
	"github.com/gwparam/paramstore/engine/common"
	"github.com/gwparam/paramstore/engine/gwlog"
	"github.com/pkg/errors"
)

const (
	_DEFAULT_CONFIG_FILE       = "paramstore.ini"
	_DEFAULT_LOG_LEVEL         = "info"
	_DEFAULT_STORAGE_TYPE      = "filesystem"
	_DEFAULT_STORAGE_DIRECTORY = "_object_storage"
	_DEFAULT_STORAGE_DB        = "paramstore"
)

var (
	configFilePath   = _DEFAULT_CONFIG_FILE
	paramStoreConfig *ParamStoreConfig
	configLock       sync.Mutex
)

// LogConfig defines fields of the [log] section
type LogConfig struct {
	Level  string
	Source string
	Output []string // zap output paths
}

// SchemaConfig defines fields of the [schema] section
type SchemaConfig struct {
	Files []string // YAML schema files, relative to the config file
}

// StorageConfig defines fields of the [storage] section
type StorageConfig struct {
	Type       string           // filesystem, mongodb, redis or redis_cluster
	Directory  string           // Directory of filesystem storage (filesystem)
	Url        string           // Connection URL (mongodb, redis)
	DB         string           // Database name (mongodb, redis)
	StartNodes common.StringSet // Start nodes (redis_cluster)
}

// ParamStoreConfig defines the whole config file structure
type ParamStoreConfig struct {
	Log     LogConfig
	Schema  SchemaConfig
	Storage StorageConfig
}

// SetConfigFile sets the config file path (paramstore.ini by default)
func SetConfigFile(f string) {
	configFilePath = f
}

// GetConfigDir returns the directory of the config file
func GetConfigDir() string {
	return filepath.Dir(configFilePath)
}

// GetConfigFilePath returns the config file path
func GetConfigFilePath() string {
	return configFilePath
}

// Get returns the config, reading the config file on first use. A bad config file panics.
func Get() *ParamStoreConfig {
	configLock.Lock()
	defer configLock.Unlock()
	if paramStoreConfig == nil {
		cfg, err := Load(configFilePath)
		if err != nil {
			gwlog.Panicf("read config error: %s", err)
		}
		paramStoreConfig = cfg
	}
	return paramStoreConfig
}

// Reload forces the config file to be read again
func Reload() *ParamStoreConfig {
	configLock.Lock()
	paramStoreConfig = nil
	configLock.Unlock()

	return Get()
}

// GetLog returns the log config
func GetLog() *LogConfig {
	return &Get().Log
}

// GetSchema returns the schema config
func GetSchema() *SchemaConfig {
	return &Get().Schema
}

// GetStorage returns the storage config
func GetStorage() *StorageConfig {
	return &Get().Storage
}

// DumpPretty formats a config as indented JSON
func DumpPretty(cfg interface{}) string {
	s, err := json.MarshalIndent(cfg, "", "    ")
	if err != nil {
		return err.Error()
	}
	return string(s)
}

// Load reads a config file
func Load(path string) (*ParamStoreConfig, error) {
	gwlog.Infof("Using config file: %s", path)
	iniFile, err := ini.Load(path)
	if err != nil {
		return nil, errors.Wrap(err, "load config")
	}
	return parse(iniFile, filepath.Dir(path))
}

// LoadBytes reads config file content. Relative schema paths are resolved against dir.
func LoadBytes(data []byte, dir string) (*ParamStoreConfig, error) {
	iniFile, err := ini.Load(data)
	if err != nil {
		return nil, errors.Wrap(err, "load config")
	}
	return parse(iniFile, dir)
}

func parse(iniFile *ini.File, dir string) (*ParamStoreConfig, error) {
	config := &ParamStoreConfig{}
	readLogConfig(nil, &config.Log)
	readSchemaConfig(nil, &config.Schema, dir)
	readStorageConfig(nil, &config.Storage)

	for _, sec := range iniFile.Sections() {
		if sec.Name() == ini.DefaultSection {
			if len(sec.Keys()) > 0 {
				return nil, errors.Errorf("keys outside of any section: %s", strings.Join(sec.KeyStrings(), ", "))
			}
			continue
		}

		var err error
		switch secName := strings.ToLower(sec.Name()); secName {
		case "log":
			err = readLogConfig(sec, &config.Log)
		case "schema":
			err = readSchemaConfig(sec, &config.Schema, dir)
		case "storage":
			err = readStorageConfig(sec, &config.Storage)
		default:
			err = errors.Errorf("unknown section: %s", secName)
		}
		if err != nil {
			return nil, err
		}
	}

	if err := validateStorageConfig(&config.Storage); err != nil {
		return nil, err
	}
	return config, nil
}

func unknownKey(sec *ini.Section, key *ini.Key) error {
	return errors.Errorf("section %s has unknown key: %s", sec.Name(), key.Name())
}

func splitList(s string) []string {
	var list []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			list = append(list, item)
		}
	}
	return list
}

func readLogConfig(sec *ini.Section, config *LogConfig) error {
	if sec == nil {
		config.Level = _DEFAULT_LOG_LEVEL
		config.Output = []string{"stderr"}
		return nil
	}
	for _, key := range sec.Keys() {
		switch strings.ToLower(key.Name()) {
		case "level":
			config.Level = key.MustString(config.Level)
		case "source":
			config.Source = key.MustString(config.Source)
		case "output":
			config.Output = splitList(key.String())
		default:
			return unknownKey(sec, key)
		}
	}
	return nil
}

func readSchemaConfig(sec *ini.Section, config *SchemaConfig, dir string) error {
	if sec == nil {
		config.Files = nil
		return nil
	}
	for _, key := range sec.Keys() {
		switch strings.ToLower(key.Name()) {
		case "files":
			config.Files = nil
			for _, f := range splitList(key.String()) {
				if !filepath.IsAbs(f) {
					f = filepath.Join(dir, f)
				}
				config.Files = append(config.Files, f)
			}
		default:
			return unknownKey(sec, key)
		}
	}
	return nil
}

func readStorageConfig(sec *ini.Section, config *StorageConfig) error {
	if sec == nil {
		// setup default values
		config.Type = _DEFAULT_STORAGE_TYPE
		config.Directory = _DEFAULT_STORAGE_DIRECTORY
		config.DB = _DEFAULT_STORAGE_DB
		config.StartNodes = common.StringSet{}
		return nil
	}

	dbSet := false
	for _, key := range sec.Keys() {
		name := strings.ToLower(key.Name())
		switch {
		case name == "type":
			config.Type = key.MustString(config.Type)
		case name == "directory":
			config.Directory = key.MustString(config.Directory)
		case name == "url":
			config.Url = key.MustString(config.Url)
		case name == "db":
			config.DB = key.MustString(config.DB)
			dbSet = true
		case name == "start_nodes":
			for node := range common.SplitStringSet(key.String()) {
				config.StartNodes.Add(node)
			}
		case strings.HasPrefix(name, "start_nodes_"):
			config.StartNodes.Add(key.MustString(""))
		default:
			return unknownKey(sec, key)
		}
	}

	if config.Type == "redis" && !dbSet {
		config.DB = "0"
	}
	return nil
}

func validateStorageConfig(config *StorageConfig) error {
	switch config.Type {
	case "filesystem":
		if config.Directory == "" {
			return errors.Errorf("directory is not set in %s storage config", config.Type)
		}
	case "mongodb":
		if config.Url == "" {
			return errors.Errorf("url is not set in %s storage config", config.Type)
		}
		if config.DB == "" {
			return errors.Errorf("db is not set in %s storage config", config.Type)
		}
	case "redis":
		if config.Url == "" {
			return errors.Errorf("redis host is not set")
		}
		if _, err := strconv.Atoi(config.DB); err != nil {
			return errors.Wrap(err, "redis db must be integer")
		}
	case "redis_cluster":
		if len(config.StartNodes) == 0 {
			return errors.Errorf("must have at least 1 start_nodes for [storage].redis_cluster")
		}
		for s := range config.StartNodes {
			if s == "" {
				return errors.Errorf("start_nodes must not be empty")
			}
		}
	default:
		return errors.Errorf("unknown storage type: %s", config.Type)
	}
	return nil
}
