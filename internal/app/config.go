package app

import (
	"time"

	"github.com/inocenciorjr/medbrave-backend/internal/logger"
	"github.com/inocenciorjr/medbrave-backend/internal/utils"
)

type Config struct {
	Port               string
	JWTSecretKey       string
	AccessTokenTTL     time.Duration
	RefreshTokenTTL    time.Duration
	SyncWorkerInterval time.Duration
}

func LoadConfig(log *logger.Logger) Config {
	port := utils.GetEnv("PORT", "8080", log)
	jwtSecretKey := utils.GetEnv("JWT_SECRET_KEY", "defaultsecret", log)
	accessTokenTTLSeconds := utils.GetEnvAsInt("ACCESS_TOKEN_TTL", 3600, log)
	refreshTokenTTLSeconds := utils.GetEnvAsInt("REFRESH_TOKEN_TTL", 86400, log)
	syncWorkerIntervalSeconds := utils.GetEnvAsInt("SYNC_WORKER_INTERVAL", 5, log)
	return Config{
		Port:               port,
		JWTSecretKey:       jwtSecretKey,
		AccessTokenTTL:     time.Duration(accessTokenTTLSeconds) * time.Second,
		RefreshTokenTTL:    time.Duration(refreshTokenTTLSeconds) * time.Second,
		SyncWorkerInterval: time.Duration(syncWorkerIntervalSeconds) * time.Second,
	}
}
