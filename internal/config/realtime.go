package config

import (
	pubnub "github.com/pubnub/go/v7"
	"go.uber.org/zap"
)

type RealtimeConfig struct {
	PublishKey   string
	SubscribeKey string
	SecretKey    string
	UserID       string
}

func NewRealtimeConfig() *RealtimeConfig {
	return &RealtimeConfig{
		PublishKey:   getEnv("PUBNUB_PUBLISH_KEY", ""),
		SubscribeKey: getEnv("PUBNUB_SUBSCRIBE_KEY", ""),
		SecretKey:    getEnv("PUBNUB_SECRET_KEY", ""),
		UserID:       getEnv("PUBNUB_USER_ID", "ghx-portal-server"),
	}
}

// NewPubNub returns nil when no publish key is configured.
func NewPubNub(cfg *RealtimeConfig, logger *zap.Logger) *pubnub.PubNub {
	if cfg.PublishKey == "" || cfg.SubscribeKey == "" {
		logger.Info("PubNub keys not set, realtime push disabled")
		return nil
	}
	pnConfig := pubnub.NewConfigWithUserId(pubnub.UserId(cfg.UserID))
	pnConfig.PublishKey = cfg.PublishKey
	pnConfig.SubscribeKey = cfg.SubscribeKey
	pnConfig.SecretKey = cfg.SecretKey
	return pubnub.NewPubNub(pnConfig)
}
