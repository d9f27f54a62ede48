package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Server    ServerConfig
	Embedding EmbeddingConfig
	Camera    CameraConfig
	Match     MatchConfig
	Database  DatabaseConfig
}

type ServerConfig struct {
	URL            string        // base URL of the attendance server (e.g. http://localhost:8000)
	FaceDir        string        // local directory for reference images
	SubmitTimeout  time.Duration // timeout for attendance submissions
	RequestTimeout time.Duration // timeout for roster and image downloads
}

type EmbeddingConfig struct {
	URL string // defaults to http://localhost:8000 in the embedder client
	Dim int    // defaults to 128
}

type CameraConfig struct {
	URL       string  // MJPEG stream URL (e.g. http://192.168.1.10:8080/video)
	SkipRate  int     // process every Nth frame (default 2)
	Downscale float64 // spatial downscale factor before embedding (default 0.25)
}

type MatchConfig struct {
	Tolerance float64 // maximum accepted embedding distance (default 0.45)
}

type DatabaseConfig struct {
	URL          string // PostgreSQL connection URL for the serve command
	MaxOpenConns int    // maximum open connections (default 25)
	MaxIdleConns int    // maximum idle connections (default 5)
}

// envInt reads an environment variable and parses it as a positive integer.
// Returns the default value if the env var is unset, empty, or invalid.
func envInt(key string, defaultVal int) int {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if n, err := strconv.Atoi(s); err == nil && n > 0 {
		return n
	}
	return defaultVal
}

// envFloat reads an environment variable and parses it as a positive float.
// Returns the default value if the env var is unset, empty, or invalid.
func envFloat(key string, defaultVal float64) float64 {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && f > 0 {
		return f
	}
	return defaultVal
}

// envDuration reads an environment variable holding a whole number of
// seconds. Returns the default value if unset or invalid.
func envDuration(key string, defaultVal time.Duration) time.Duration {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if n, err := strconv.Atoi(s); err == nil && n > 0 {
		return time.Duration(n) * time.Second
	}
	return defaultVal
}

func envString(key, defaultVal string) string {
	if s := os.Getenv(key); s != "" {
		return s
	}
	return defaultVal
}

func Load() *Config {
	return &Config{
		Server: ServerConfig{
			URL:            envString("FACEGATE_SERVER_URL", "http://localhost:8000"),
			FaceDir:        envString("FACEGATE_FACE_DIR", "faces"),
			SubmitTimeout:  envDuration("FACEGATE_SUBMIT_TIMEOUT", 5*time.Second),
			RequestTimeout: envDuration("FACEGATE_REQUEST_TIMEOUT", 10*time.Second),
		},
		Embedding: EmbeddingConfig{
			URL: os.Getenv("EMBEDDING_URL"),
			Dim: envInt("EMBEDDING_DIM", 128),
		},
		Camera: CameraConfig{
			URL:       os.Getenv("FACEGATE_CAMERA_URL"),
			SkipRate:  envInt("FRAME_SKIP_RATE", 2),
			Downscale: envFloat("RESIZE_FACTOR", 0.25),
		},
		Match: MatchConfig{
			Tolerance: envFloat("TOLERANCE", 0.45),
		},
		Database: DatabaseConfig{
			URL:          os.Getenv("DATABASE_URL"),
			MaxOpenConns: envInt("DATABASE_MAX_OPEN_CONNS", 25),
			MaxIdleConns: envInt("DATABASE_MAX_IDLE_CONNS", 5),
		},
	}
}
