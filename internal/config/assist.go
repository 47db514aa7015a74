package config

import (
	"errors"
	"log"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// AssistConfig tunes the AI assistant without requiring a redeploy.
type AssistConfig struct {
	SummarySystemPrompt  string  `mapstructure:"summarySystemPrompt"`
	InsightsSystemPrompt string  `mapstructure:"insightsSystemPrompt"`
	Temperature          float64 `mapstructure:"temperature"`
	MaxOutputTokens      int     `mapstructure:"maxOutputTokens"`
}

func DefaultAssistConfig() AssistConfig {
	return AssistConfig{
		SummarySystemPrompt:  "You summarize B2B quotes for busy account managers. Reply in two short sentences.",
		InsightsSystemPrompt: "You analyze a seller's quote pipeline and point out risks and follow-ups. Reply with at most three bullet points.",
		Temperature:          0.3,
		MaxOutputTokens:      400,
	}
}

type AssistConfigHolder struct {
	current atomic.Value // holds AssistConfig
}

func NewAssistConfigHolder() (*AssistConfigHolder, error) {
	v := viper.New()

	v.SetConfigName("assist")
	v.SetConfigType("yml")
	v.AddConfigPath("/var/lib/relationshipos/config")
	v.AddConfigPath("/etc/relationshipos")
	v.AddConfigPath(".")

	v.SetEnvPrefix("RELATIONSHIPOS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		defaults := DefaultAssistConfig()
		v.SetDefault("assist.summarySystemPrompt", defaults.SummarySystemPrompt)
		v.SetDefault("assist.insightsSystemPrompt", defaults.InsightsSystemPrompt)
		v.SetDefault("assist.temperature", defaults.Temperature)
		v.SetDefault("assist.maxOutputTokens", defaults.MaxOutputTokens)
	}

	var cfg AssistConfig
	if err := v.UnmarshalKey("assist", &cfg); err != nil {
		return nil, err
	}
	if err := validateAssistConfig(cfg); err != nil {
		return nil, err
	}

	holder := &AssistConfigHolder{}
	holder.current.Store(cfg)

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		var updated AssistConfig
		if err := v.UnmarshalKey("assist", &updated); err != nil {
			log.Printf("[assist-config] reload failed: %v", err)
			return
		}
		if err := validateAssistConfig(updated); err != nil {
			log.Printf("[assist-config] invalid config ignored: %v", err)
			return
		}
		holder.current.Store(updated)
		log.Printf("[assist-config] reloaded from %s", e.Name)
	})

	return holder, nil
}

// NewStaticAssistConfigHolder wraps a fixed config, bypassing file watching.
func NewStaticAssistConfigHolder(cfg AssistConfig) *AssistConfigHolder {
	holder := &AssistConfigHolder{}
	holder.current.Store(cfg)
	return holder
}

func (h *AssistConfigHolder) Get() AssistConfig {
	return h.current.Load().(AssistConfig)
}

func validateAssistConfig(cfg AssistConfig) error {
	if strings.TrimSpace(cfg.SummarySystemPrompt) == "" {
		return errors.New("assist.summarySystemPrompt cannot be empty")
	}
	if strings.TrimSpace(cfg.InsightsSystemPrompt) == "" {
		return errors.New("assist.insightsSystemPrompt cannot be empty")
	}
	if cfg.MaxOutputTokens <= 0 {
		return errors.New("assist.maxOutputTokens must be positive")
	}
	return nil
}
