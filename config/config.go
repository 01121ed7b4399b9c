package config

import (
	"log"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Env            string
	BaseURL        string
	SocketURL      string
	HomeDir        string
	LogLevel       string
	RequestTimeout time.Duration
	UploadTimeout  time.Duration
}

func (c Config) IsDev() bool {
	return c.Env == "development"
}

var Current Config

// Init loads .env (if present) and then reads STORYBOX_* variables.
func Init() {
	err := godotenv.Load()
	if err != nil && !os.IsNotExist(err) {
		log.Printf("warning: couldn't load .env file: %v", err)
	}

	env := getEnv("STORYBOX_ENV", "production")

	defaultBase := "https://api.storybox.app"
	if env == "development" {
		defaultBase = "http://localhost:3000"
	}

	Current = Config{
		Env:            env,
		BaseURL:        strings.TrimRight(getEnv("STORYBOX_BASE_URL", defaultBase), "/"),
		HomeDir:        getEnv("STORYBOX_HOME", ""),
		LogLevel:       getEnv("STORYBOX_LOG_LEVEL", "info"),
		RequestTimeout: getEnvAsDuration("STORYBOX_REQUEST_TIMEOUT", 30*time.Second),
		UploadTimeout:  getEnvAsDuration("STORYBOX_UPLOAD_TIMEOUT", 5*time.Minute),
	}

	Current.SocketURL = getEnv("STORYBOX_SOCKET_URL", SocketURLFor(Current.BaseURL))
}

// SocketURLFor maps an http(s) base address to the ws(s) chat endpoint.
func SocketURLFor(baseURL string) string {
	u, err := url.Parse(baseURL)
	if err != nil {
		return ""
	}

	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/socket"

	return u.String()
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsDuration(key string, defaultVal time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultVal
}
