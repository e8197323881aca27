package config

import (
	"errors"
	"strings"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const (
	DefaultInvitationTTL      = 72 * time.Hour
	DefaultDomainRecordPrefix = "_whitelabel-challenge"
	DefaultPortalURL          = "http://localhost:3000"
)

// WorkflowConfig tunes the invitation and domain workflows.
type WorkflowConfig struct {
	Invitation InvitationConfig `mapstructure:"invitation"`
	Domain     DomainConfig     `mapstructure:"domain"`
}

type InvitationConfig struct {
	TTL time.Duration `mapstructure:"ttl"`
	// PortalURL prefixes the accept link mailed to invitees.
	PortalURL string `mapstructure:"portal_url"`
}

type DomainConfig struct {
	RecordPrefix string `mapstructure:"record_prefix"`
}

func DefaultWorkflowConfig() WorkflowConfig {
	return WorkflowConfig{
		Invitation: InvitationConfig{TTL: DefaultInvitationTTL, PortalURL: DefaultPortalURL},
		Domain:     DomainConfig{RecordPrefix: DefaultDomainRecordPrefix},
	}
}

// WorkflowConfigHolder keeps the latest valid WorkflowConfig. Readers must call
// Get on every use so a reload is observed by the next request.
type WorkflowConfigHolder struct {
	current atomic.Value // holds WorkflowConfig
}

// NewStaticWorkflowConfigHolder returns a holder that never reloads.
func NewStaticWorkflowConfigHolder(cfg WorkflowConfig) *WorkflowConfigHolder {
	holder := &WorkflowConfigHolder{}
	holder.current.Store(cfg)
	return holder
}

func NewWorkflowConfigHolder() (*WorkflowConfigHolder, error) {
	v := viper.New()

	v.SetConfigName("whitelabel")
	v.SetConfigType("yml")
	v.AddConfigPath("/etc/whitelabel")
	v.AddConfigPath(".")

	v.SetEnvPrefix("WHITELABEL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := DefaultWorkflowConfig()
	v.SetDefault("invitation.ttl", defaults.Invitation.TTL)
	v.SetDefault("invitation.portal_url", defaults.Invitation.PortalURL)
	v.SetDefault("domain.record_prefix", defaults.Domain.RecordPrefix)

	fileLoaded := true
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		fileLoaded = false
	}

	var cfg WorkflowConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	if err := validateWorkflowConfig(cfg); err != nil {
		return nil, err
	}

	holder := NewStaticWorkflowConfigHolder(cfg)

	if fileLoaded {
		v.WatchConfig()
		v.OnConfigChange(func(e fsnotify.Event) {
			var updated WorkflowConfig
			if err := v.Unmarshal(&updated); err != nil {
				zap.L().Warn("workflow config reload failed", zap.Error(err))
				return
			}
			if err := validateWorkflowConfig(updated); err != nil {
				zap.L().Warn("invalid workflow config ignored", zap.Error(err))
				return
			}
			holder.current.Store(updated)
			zap.L().Info("workflow config reloaded", zap.String("file", e.Name))
		})
	}

	return holder, nil
}

func (h *WorkflowConfigHolder) Get() WorkflowConfig {
	if h == nil {
		return DefaultWorkflowConfig()
	}
	cfg, ok := h.current.Load().(WorkflowConfig)
	if !ok {
		return DefaultWorkflowConfig()
	}
	return cfg
}

func validateWorkflowConfig(cfg WorkflowConfig) error {
	if cfg.Invitation.TTL <= 0 {
		return errors.New("invitation.ttl must be positive")
	}
	if strings.TrimSpace(cfg.Domain.RecordPrefix) == "" {
		return errors.New("domain.record_prefix cannot be empty")
	}
	return nil
}
