package service_test

import (
	"time"

	"github.com/IvanChernomyrdin/go-carrental/internal/server/config"
)

// testConfig - минимальный конфиг для сервисов; bcrypt с минимальной стоимостью, чтобы тесты были быстрыми.
func testConfig() *config.Config {
	return &config.Config{
		Auth: config.AuthConfig{
			Issuer:    "carrental",
			Audience:  "carrental-web",
			AccessTTL: time.Hour,
			JWT: config.JWTConfig{
				Algorithm:  "HS256",
				SigningKey: "supersecretkeysupersecretkey123456",
			},
		},
		Password: config.PasswordConfig{
			Hasher:    "bcrypt",
			MinLength: 8,
			Bcrypt:    config.BcryptConfig{Cost: 4},
		},
		OTP: config.OTPConfig{
			ResendInterval: time.Minute,
		},
	}
}
