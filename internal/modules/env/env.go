package env

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

var (
	ErrNotFound         = errors.New("environment variable with key not found")
	ErrConversionFailed = errors.New("failed to convert environment variable with key to value")
)

func errNotFound(key string) error {
	return fmt.Errorf("key: %s: %w", key, ErrNotFound)
}

func errConversionFailed(key string, typeName string, err error) error {
	return fmt.Errorf("key: %s type: %s: %w: %v", key, typeName, ErrConversionFailed, err)
}

func MustGetString(key string) string {
	if val, found := os.LookupEnv(key); found {
		return val
	}

	panic(errNotFound(key))
}

func GetStringOrDefault(key string, defaultVal string) string {
	if val, found := os.LookupEnv(key); found && val != "" {
		return val
	}

	return defaultVal
}

func GetIntOrDefault(key string, defaultVal int) (int, error) {
	envVal, found := lookup(key)
	if !found {
		return defaultVal, nil
	}

	val, err := strconv.Atoi(envVal)
	if err != nil {
		return 0, errConversionFailed(key, "int", err)
	}

	return val, nil
}

func GetDurationOrDefault(key string, defaultVal time.Duration) (time.Duration, error) {
	envVal, found := lookup(key)
	if !found {
		return defaultVal, nil
	}

	val, err := time.ParseDuration(envVal)
	if err != nil {
		return 0, errConversionFailed(key, "time.Duration", err)
	}

	return val, nil
}

// GetStringListOrDefault reads a comma separated list. Blank items are skipped.
func GetStringListOrDefault(key string, defaultVal []string) []string {
	envVal, found := lookup(key)
	if !found {
		return defaultVal
	}

	var values []string
	for _, item := range strings.Split(envVal, ",") {
		if item = strings.TrimSpace(item); item != "" {
			values = append(values, item)
		}
	}

	return values
}

func GetIntListOrDefault(key string, defaultVal []int) ([]int, error) {
	items := GetStringListOrDefault(key, nil)
	if items == nil {
		return defaultVal, nil
	}

	values := make([]int, 0, len(items))
	for _, item := range items {
		val, err := strconv.Atoi(item)
		if err != nil {
			return nil, errConversionFailed(key, "[]int", err)
		}
		values = append(values, val)
	}

	return values, nil
}

func GetInt64ListOrDefault(key string, defaultVal []int64) ([]int64, error) {
	items := GetStringListOrDefault(key, nil)
	if items == nil {
		return defaultVal, nil
	}

	values := make([]int64, 0, len(items))
	for _, item := range items {
		val, err := strconv.ParseInt(item, 10, 64)
		if err != nil {
			return nil, errConversionFailed(key, "[]int64", err)
		}
		values = append(values, val)
	}

	return values, nil
}

func lookup(key string) (string, bool) {
	val, found := os.LookupEnv(key)
	if !found || strings.TrimSpace(val) == "" {
		return "", false
	}
	return strings.TrimSpace(val), true
}
