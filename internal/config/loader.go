package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// configName is the config file name without extension.
const configName = ".twitteranalyzer"

// configType is the config file format.
const configType = "yaml"

// envPrefix is the environment variable prefix for twitteranalyzer settings.
const envPrefix = "TWITTERANALYZER"

// envKeySeparator is the nested key separator in environment variable names.
const envKeySeparator = "_"

// LoadConfig loads configuration from file, env vars, and defaults.
// If configPath is non-empty, it is used as the explicit config file path.
// Otherwise, the config file is searched in CWD and $HOME.
// Missing config file is not an error; defaults are used.
func LoadConfig(configPath string) (*Config, error) {
	viperCfg := viper.New()

	applyDefaults(viperCfg)

	viperCfg.SetConfigType(configType)
	viperCfg.SetEnvPrefix(envPrefix)
	viperCfg.SetEnvKeyReplacer(strings.NewReplacer(".", envKeySeparator))
	viperCfg.AutomaticEnv()

	if configPath != "" {
		viperCfg.SetConfigFile(configPath)
	} else {
		viperCfg.SetConfigName(configName)
		viperCfg.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viperCfg.AddConfigPath(home)
		}
	}

	readErr := viperCfg.ReadInConfig()
	if readErr != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(readErr, &notFound) {
			return nil, fmt.Errorf("read config: %w", readErr)
		}
	}

	var cfg Config

	unmarshalErr := viperCfg.Unmarshal(&cfg)
	if unmarshalErr != nil {
		return nil, fmt.Errorf("unmarshal config: %w", unmarshalErr)
	}

	validateErr := cfg.Validate()
	if validateErr != nil {
		return nil, fmt.Errorf("validate config: %w", validateErr)
	}

	return &cfg, nil
}

func applyDefaults(viperCfg *viper.Viper) {
	viperCfg.SetDefault("data.outputs_dir", DefaultOutputsDir)
	viperCfg.SetDefault("data.analyses_dir", DefaultAnalysesDir)
	viperCfg.SetDefault("data.plots_dir", DefaultPlotsDir)
	viperCfg.SetDefault("data.archives_dir", DefaultArchivesDir)
	viperCfg.SetDefault("data.topics_file", DefaultTopicsFile)
	viperCfg.SetDefault("data.stop_words_file", DefaultStopWordsFile)

	viperCfg.SetDefault("feed.base_url", DefaultFeedBaseURL)
	viperCfg.SetDefault("feed.bearer_token", "")
	viperCfg.SetDefault("feed.page_size", DefaultFeedPageSize)
	viperCfg.SetDefault("feed.decode_retries", DefaultFeedDecodeRetries)
	viperCfg.SetDefault("feed.retry_delay", DefaultFeedRetryDelay)
	viperCfg.SetDefault("feed.rate_window", DefaultFeedRateWindow)
	viperCfg.SetDefault("feed.rate_budget", DefaultFeedRateBudget)
	viperCfg.SetDefault("feed.timeout", DefaultFeedTimeout)

	viperCfg.SetDefault("analysis.language", DefaultAnalysisLanguage)
	viperCfg.SetDefault("analysis.sentiment", DefaultAnalysisSentiment)

	viperCfg.SetDefault("watch.schedule", DefaultWatchSchedule)
	viperCfg.SetDefault("watch.analyze", DefaultWatchAnalyze)
	viperCfg.SetDefault("watch.listen_addr", DefaultWatchListenAddr)

	viperCfg.SetDefault("observability.service_name", DefaultServiceName)
	viperCfg.SetDefault("observability.environment", DefaultEnvironment)
	viperCfg.SetDefault("observability.otlp_endpoint", "")
	viperCfg.SetDefault("observability.otlp_insecure", false)
	viperCfg.SetDefault("observability.log_level", DefaultLogLevel)
	viperCfg.SetDefault("observability.log_json", false)
}
