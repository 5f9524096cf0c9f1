package env

import (
	"github.com/joho/godotenv"
	"rollcall.io/infrastructure/logger"
)

func init() {
	err := godotenv.Load()
	if err != nil {
		logger.Info("error loading env variables")
	}
}

// LoadEnv exists so main can force this package's init to run first.
func LoadEnv() {
}
