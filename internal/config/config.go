package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/smartcity/crimedash/internal/render"
)

// Config holds application settings read from the environment
type Config struct {
	DataPath    string
	DatabaseURL string
	SQLitePath  string
	Port        string
	Env         string
	ChartWidth  int
	ChartHeight int
}

// Load reads an optional .env file and the process environment
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment")
	}

	return &Config{
		DataPath:    getEnv("DATA_PATH", "Crime_Data_from_2020_to_Present.csv"),
		DatabaseURL: getEnv("DATABASE_URL", ""),
		SQLitePath:  getEnv("SQLITE_PATH", ""),
		Port:        getEnv("PORT", "8080"),
		Env:         getEnv("GO_ENV", "development"),
		ChartWidth:  getEnvInt("CHART_WIDTH", render.DefaultWidth),
		ChartHeight: getEnvInt("CHART_HEIGHT", render.DefaultHeight),
	}
}

// RenderOptions returns the chart canvas settings
func (c *Config) RenderOptions() render.Options {
	return render.Options{Width: c.ChartWidth, Height: c.ChartHeight}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil || n <= 0 {
		log.Printf("Ignoring invalid %s=%q, using %d", key, value, defaultValue)
		return defaultValue
	}
	return n
}
