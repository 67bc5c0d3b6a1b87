package config

import "time"

func GetEnvAsBool(key string, defaultValue bool) bool {
	return getEnvAsBool(key, defaultValue)
}

func GetEnvAsDuration(key string) (time.Duration, error) {
	return getEnvAsDuration(key)
}

func AllNonEmpty(keyValues map[string]string) error {
	return allNonEmpty(keyValues)
}

func AllNumbers(keyValues map[string]string) error {
	return allNumbers(keyValues)
}
