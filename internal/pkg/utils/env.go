package utils

import (
	"fmt"
	"os"
	"primarycare-identity-service/internal/pkg/constvars"
	"strconv"
	"strings"
	"time"
)

// Values that fail to parse fall back to the default. Config is read before
// the zap logger exists, so the complaint goes to stderr.
func lookupEnv[T any](key string, defaultValue T, parse func(string) (T, error)) T {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue
	}

	value, err := parse(raw)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: cannot parse %s=%q (%v), using %v\n", constvars.ServiceName, key, raw, err, defaultValue)
		return defaultValue
	}
	return value
}

func GetEnvString(key, defaultValue string) string {
	return lookupEnv(key, defaultValue, func(raw string) (string, error) { return raw, nil })
}

func GetEnvInt(key string, defaultValue int) int {
	return lookupEnv(key, defaultValue, strconv.Atoi)
}

func GetEnvBool(key string, defaultValue bool) bool {
	return lookupEnv(key, defaultValue, strconv.ParseBool)
}

func GetEnvFloat(key string, defaultValue float64) float64 {
	return lookupEnv(key, defaultValue, func(raw string) (float64, error) {
		return strconv.ParseFloat(raw, 64)
	})
}

// GetEnvSeconds reads a whole number of seconds.
func GetEnvSeconds(key string, defaultSeconds int) time.Duration {
	return time.Duration(GetEnvInt(key, defaultSeconds)) * time.Second
}

func GetEnvMillis(key string, defaultMillis int) time.Duration {
	return time.Duration(GetEnvInt(key, defaultMillis)) * time.Millisecond
}
