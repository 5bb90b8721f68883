package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// EnvPrefix marks variables that override the file configuration.
const EnvPrefix = "PARTICLES_"

// LoadEnv sources the given dotenv files (.env when none are named; missing
// files are skipped) and applies PARTICLES_* variables over cfg. Variables
// already set in the process win over dotenv values.
func LoadEnv(cfg *Config, files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", f, err)
		}
	}

	cfg.Strategy = getEnv("STRATEGY", cfg.Strategy)
	cfg.Scenario = getEnv("SCENARIO", cfg.Scenario)
	cfg.DataDir = getEnv("DATA_DIR", cfg.DataDir)
	cfg.Addr = getEnv("ADDR", cfg.Addr)

	var err error
	if cfg.TimeStep, err = getEnvFloat("TIME_STEP", cfg.TimeStep); err != nil {
		return err
	}
	if cfg.Threshold, err = getEnvFloat("THRESHOLD", cfg.Threshold); err != nil {
		return err
	}
	if cfg.MinSubstep, err = getEnvFloat("MIN_SUBSTEP", cfg.MinSubstep); err != nil {
		return err
	}
	if cfg.Workers, err = getEnvInt("WORKERS", cfg.Workers); err != nil {
		return err
	}
	if cfg.Count, err = getEnvInt("COUNT", cfg.Count); err != nil {
		return err
	}
	if cfg.TickInterval, err = getEnvDuration("TICK_INTERVAL", cfg.TickInterval); err != nil {
		return err
	}
	if cfg.FrameInterval, err = getEnvDuration("FRAME_INTERVAL", cfg.FrameInterval); err != nil {
		return err
	}
	seed, err := getEnvInt("SEED", int(cfg.Seed))
	if err != nil {
		return err
	}
	cfg.Seed = int64(seed)
	return nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(EnvPrefix + key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) (int, error) {
	val := os.Getenv(EnvPrefix + key)
	if val == "" {
		return defaultVal, nil
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("%w: %s%s=%q", ErrInvalid, EnvPrefix, key, val)
	}
	return n, nil
}

func getEnvFloat(key string, defaultVal float64) (float64, error) {
	val := os.Getenv(EnvPrefix + key)
	if val == "" {
		return defaultVal, nil
	}
	f, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s%s=%q", ErrInvalid, EnvPrefix, key, val)
	}
	return f, nil
}

func getEnvDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	val := os.Getenv(EnvPrefix + key)
	if val == "" {
		return defaultVal, nil
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return 0, fmt.Errorf("%w: %s%s=%q", ErrInvalid, EnvPrefix, key, val)
	}
	return d, nil
}
