package config

import (
	"os"
	"strconv"
	"strings"
)

// FromEnv applies CAREERQUEST_* environment overrides on top of the loaded
// configuration.
func FromEnv(c *Config) *Config {
	if v := os.Getenv("CAREERQUEST_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv("CAREERQUEST_TIMEZONE"); v != "" {
		c.Timezone = v
	}
	if v := getEnvInt("CAREERQUEST_XP_PER_LEVEL"); v > 0 {
		c.Leveling.XPPerLevel = v
	}
	if v := getEnvInt("CAREERQUEST_BASE_TASK_XP"); v > 0 {
		c.Leveling.BaseTaskXP = v
	}
	if v := getEnvInt("CAREERQUEST_MIN_TASK_XP"); v > 0 {
		c.Leveling.MinTaskXP = v
	}
	if v := os.Getenv("CAREERQUEST_DATA_DIR"); v != "" {
		c.Storage.DataDir = v
	}
	if v := os.Getenv("CAREERQUEST_REDIS_ENABLED"); v != "" {
		c.Storage.Redis.Enabled = isTruthy(v)
	}
	if v := os.Getenv("CAREERQUEST_REDIS_ADDR"); v != "" {
		c.Storage.Redis.Addr = v
	}
	if v := os.Getenv("CAREERQUEST_REDIS_PASSWORD"); v != "" {
		c.Storage.Redis.Password = v
	}
	if v := getEnvInt("CAREERQUEST_REDIS_DB"); v > 0 {
		c.Storage.Redis.DB = v
	}
	return c
}

func getEnvInt(key string) int {
	val := os.Getenv(key)
	if val == "" {
		return 0
	}
	num, err := strconv.Atoi(val)
	if err != nil {
		return 0
	}
	return num
}

func isTruthy(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes":
		return true
	default:
		return false
	}
}
