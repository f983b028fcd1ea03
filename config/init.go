package config

import (
	"log"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"

	"github.com/customeros/mailtriage/internal/logger"
	"github.com/customeros/mailtriage/internal/tracing"
)

type Config struct {
	AppConfig          *AppConfig
	Logger             *logger.Config
	Tracing            *tracing.JaegerConfig
	PolicyConfig       *PolicyConfig
	CapabilitiesConfig *CapabilitiesConfig
	RedisConfig        *RedisConfig
	RabbitMQConfig     *RabbitMQConfig
	CronConfig         *CronConfig
	AIConfig           *AIConfig
	IMAPConfig         *IMAPConfig
	DraftStorageConfig *DraftStorageConfig
}

func InitConfig() (*Config, error) {
	config := &Config{
		AppConfig:          &AppConfig{},
		Logger:             &logger.Config{},
		Tracing:            &tracing.JaegerConfig{},
		PolicyConfig:       &PolicyConfig{},
		CapabilitiesConfig: &CapabilitiesConfig{},
		RedisConfig:        &RedisConfig{},
		RabbitMQConfig:     &RabbitMQConfig{},
		CronConfig:         &CronConfig{},
		AIConfig:           &AIConfig{},
		IMAPConfig:         &IMAPConfig{},
		DraftStorageConfig: &DraftStorageConfig{},
	}

	err := godotenv.Load()
	if err != nil {
		log.Print("Unable to load .env file")
	}

	err = env.Parse(config)
	if err != nil {
		return nil, errors.Wrap(err, "error loading mailtriage config")
	}

	return config, nil
}
