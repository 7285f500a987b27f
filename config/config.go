// Package config loads runtime settings from the environment. A .env file in
// the working directory is read first when present.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Database drivers
const (
	DriverMySQL  = "mysql"
	DriverSQLite = "sqlite"
	DriverNone   = "none"
)

// Config - everything the serve/run/watch commands need
type Config struct {
	Port             string
	CORSAllowOrigins string
	LogLevel         string
	ScenarioFile     string

	Database DatabaseConfig
	Sim      SimConfig
}

// DatabaseConfig selects and addresses the run-event store
type DatabaseConfig struct {
	Driver        string
	MySQL         MySQLConfig
	SQLitePath    string
	FlushSize     int
	FlushInterval time.Duration
}

// MySQLConfig - MYSQL_* variables
type MySQLConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
}

// SimConfig - frame loop and canvas defaults
type SimConfig struct {
	FPS            int
	BroadcastEvery int
	CanvasWidth    float64
	CanvasHeight   float64
	CellSize       float64
}

// Load reads .env (if any) and the process environment. A missing .env is
// reported through the second return value, not as an error.
func Load() (Config, bool, error) {
	envLoaded := godotenv.Load() == nil

	cfg := Config{
		Port:             getEnv("PORT", "3000"),
		CORSAllowOrigins: getEnv("CORS_ALLOW_ORIGINS", "http://localhost:5173, http://localhost:3000"),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		ScenarioFile:     os.Getenv("SCENARIO_FILE"),
		Database: DatabaseConfig{
			Driver:     strings.ToLower(getEnv("DB_DRIVER", DriverSQLite)),
			SQLitePath: getEnv("SQLITE_PATH", "rover.db"),
			MySQL: MySQLConfig{
				Host:     os.Getenv("MYSQL_HOST"),
				User:     os.Getenv("MYSQL_USER"),
				Password: os.Getenv("MYSQL_PASSWORD"),
				Database: os.Getenv("MYSQL_DATABASE"),
			},
		},
	}

	var err error
	if cfg.Database.MySQL.Port, err = getInt("MYSQL_PORT", 3306); err != nil {
		return cfg, envLoaded, err
	}
	if cfg.Database.FlushSize, err = getInt("LOG_FLUSH_SIZE", 50); err != nil {
		return cfg, envLoaded, err
	}
	if cfg.Database.FlushInterval, err = getDuration("LOG_FLUSH_INTERVAL", 10*time.Second); err != nil {
		return cfg, envLoaded, err
	}
	if cfg.Sim.FPS, err = getInt("SIM_FPS", 60); err != nil {
		return cfg, envLoaded, err
	}
	if cfg.Sim.BroadcastEvery, err = getInt("SIM_BROADCAST_EVERY", 2); err != nil {
		return cfg, envLoaded, err
	}
	if cfg.Sim.CanvasWidth, err = getFloat("CANVAS_WIDTH", 800); err != nil {
		return cfg, envLoaded, err
	}
	if cfg.Sim.CanvasHeight, err = getFloat("CANVAS_HEIGHT", 600); err != nil {
		return cfg, envLoaded, err
	}
	if cfg.Sim.CellSize, err = getFloat("GRID_CELL_SIZE", 25); err != nil {
		return cfg, envLoaded, err
	}

	return cfg, envLoaded, cfg.Validate()
}

// Validate rejects values the simulator can't run with
func (c Config) Validate() error {
	switch c.Database.Driver {
	case DriverMySQL, DriverSQLite, DriverNone:
	default:
		return fmt.Errorf("DB_DRIVER must be mysql, sqlite or none, got %q", c.Database.Driver)
	}
	if c.Sim.FPS <= 0 {
		return fmt.Errorf("SIM_FPS must be positive, got %d", c.Sim.FPS)
	}
	if c.Sim.BroadcastEvery <= 0 {
		return fmt.Errorf("SIM_BROADCAST_EVERY must be positive, got %d", c.Sim.BroadcastEvery)
	}
	if c.Sim.CanvasWidth <= 0 || c.Sim.CanvasHeight <= 0 {
		return fmt.Errorf("canvas must be positive, got %.0fx%.0f", c.Sim.CanvasWidth, c.Sim.CanvasHeight)
	}
	if c.Sim.CellSize <= 0 {
		return fmt.Errorf("GRID_CELL_SIZE must be positive, got %g", c.Sim.CellSize)
	}
	if c.Database.FlushSize <= 0 || c.Database.FlushInterval <= 0 {
		return fmt.Errorf("LOG_FLUSH_SIZE and LOG_FLUSH_INTERVAL must be positive")
	}
	return nil
}

// DSN - go-sql-driver/mysql connection string
func (m MySQLConfig) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		m.User, m.Password, m.Host, m.Port, m.Database)
}

// Redacted describes the store target without credentials
func (d DatabaseConfig) Redacted() string {
	switch d.Driver {
	case DriverMySQL:
		return fmt.Sprintf("%s@%s:%d/%s", d.MySQL.User, d.MySQL.Host, d.MySQL.Port, d.MySQL.Database)
	case DriverSQLite:
		return d.SQLitePath
	}
	return d.Driver
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func getFloat(key string, fallback float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return f, nil
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}
