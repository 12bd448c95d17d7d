package models

import (
	"os"

	"github.com/kelseyhightower/envconfig"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	yaml "gopkg.in/yaml.v2"
)

type Config struct {
	Debug bool `yaml:"debug" envconfig:"XBROWSE_DEBUG"`

	Api struct {
		Port string `yaml:"port" envconfig:"XBROWSE_API_INTERNAL_PORT"`
	} `yaml:"api"`

	Elasticsearch struct {
		Url           string `yaml:"url" envconfig:"XBROWSE_ES_URL"`
		Username      string `yaml:"username" envconfig:"XBROWSE_ES_USERNAME"`
		Password      string `yaml:"password" envconfig:"XBROWSE_ES_PASSWORD"`
		VariantsIndex string `yaml:"variantsIndex" envconfig:"XBROWSE_ES_VARIANTS_INDEX"`
		GenesIndex    string `yaml:"genesIndex" envconfig:"XBROWSE_ES_GENES_INDEX"`
		PageSize      int    `yaml:"pageSize" envconfig:"XBROWSE_ES_PAGE_SIZE"`
	} `yaml:"elasticsearch"`

	Search struct {
		FailOnUnrankedConsequence   bool   `yaml:"failOnUnrankedConsequence" envconfig:"XBROWSE_FAIL_ON_UNRANKED_CONSEQUENCE"`
		StrictPopulationFrequencies bool   `yaml:"strictPopulationFrequencies" envconfig:"XBROWSE_STRICT_POPULATION_FREQUENCIES"`
		FamilyConcurrencyLevel      int    `yaml:"familyConcurrencyLevel" envconfig:"XBROWSE_FAMILY_CONCURRENCY_LEVEL"`
		GeneBoundsRefreshAt         string `yaml:"geneBoundsRefreshAt" envconfig:"XBROWSE_GENE_BOUNDS_REFRESH_AT"`
	} `yaml:"search"`

	Log struct {
		Level  string `yaml:"level" envconfig:"XBROWSE_LOG_LEVEL"`
		Format string `yaml:"format" envconfig:"XBROWSE_LOG_FORMAT"`
	} `yaml:"log"`
}

// LoadConfig reads an optional YAML file, then lets environment variables
// override whatever it set.
func LoadConfig(path string) (*Config, error) {
	var cfg Config

	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, eris.Wrapf(err, "config: open %s", path)
		}
		defer f.Close()

		if err := yaml.NewDecoder(f).Decode(&cfg); err != nil {
			return nil, eris.Wrapf(err, "config: decode %s", path)
		}
	}

	if err := envconfig.Process("", &cfg); err != nil {
		return nil, eris.Wrap(err, "config: environment")
	}
	cfg.applyDefaults()

	return &cfg, nil
}

func (cfg *Config) applyDefaults() {
	if cfg.Api.Port == "" {
		cfg.Api.Port = "5000"
	}
	if cfg.Elasticsearch.VariantsIndex == "" {
		cfg.Elasticsearch.VariantsIndex = "variants-*"
	}
	if cfg.Elasticsearch.GenesIndex == "" {
		cfg.Elasticsearch.GenesIndex = "genes"
	}
	if cfg.Elasticsearch.PageSize <= 0 {
		cfg.Elasticsearch.PageSize = 1000
	}
	if cfg.Search.FamilyConcurrencyLevel <= 0 {
		cfg.Search.FamilyConcurrencyLevel = 4
	}
	if cfg.Search.GeneBoundsRefreshAt == "" {
		cfg.Search.GeneBoundsRefreshAt = "04:00:00"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
}

// NewLogger builds the process logger from the log section.
func NewLogger(cfg *Config) (*zap.Logger, error) {
	var zapCfg zap.Config
	if cfg.Log.Format == "console" || cfg.Debug {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	if cfg.Log.Level != "" {
		level, err := zapcore.ParseLevel(cfg.Log.Level)
		if err != nil {
			return nil, eris.Wrap(err, "config: parse log level")
		}
		zapCfg.Level.SetLevel(level)
	}

	logger, err := zapCfg.Build()
	if err != nil {
		return nil, eris.Wrap(err, "config: build logger")
	}
	return logger, nil
}
