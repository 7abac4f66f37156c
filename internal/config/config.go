package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port            string
	DatabaseURL     string
	JWTSecret       string
	JWTTTL          time.Duration
	GoogleAPIKey    string
	GoogleAudience  string
	PlacesBaseURL   string
	GeocodeBaseURL  string
	DefaultRadiusM  int
	AllowOrigins    []string
	LogstashTCPAddr string
	MinIOEndpoint   string
	MinIOAccessKey  string
	MinIOSecretKey  string
	MinIOUseSSL     bool
	MinIOBucket     string
	MinIOPublicURL  string
	PhotoMaxBytes   int64
	FFMPEGPath      string
}

func Load() Config {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found: %v", err)
	}

	ttl := 24 * time.Hour
	if v, err := time.ParseDuration(getenv("JWT_TTL", "24h")); err == nil && v > 0 {
		ttl = v
	}

	radius := 5000
	if v, err := strconv.Atoi(getenv("PLACES_DEFAULT_RADIUS", "5000")); err == nil && v > 0 {
		radius = v
	}

	photoMax := int64(5 * 1024 * 1024)
	if v, err := strconv.ParseInt(getenv("DESTINATION_PHOTO_MAX_BYTES", "5242880"), 10, 64); err == nil && v > 0 {
		photoMax = v
	}

	return Config{
		Port:            getenv("PORT", "8080"),
		DatabaseURL:     must("DATABASE_URL"),
		JWTSecret:       must("JWT_SECRET"),
		JWTTTL:          ttl,
		GoogleAPIKey:    must("GOOGLE_API_KEY"),
		GoogleAudience:  getenv("GOOGLE_AUDIENCE", ""),
		PlacesBaseURL:   getenv("PLACES_BASE_URL", "https://maps.googleapis.com/maps/api/place"),
		GeocodeBaseURL:  getenv("GEOCODE_BASE_URL", "https://maps.googleapis.com/maps/api/geocode"),
		DefaultRadiusM:  radius,
		AllowOrigins:    splitAndTrim(getenv("ALLOW_ORIGINS", "*")),
		LogstashTCPAddr: getenv("LOGSTASH_TCP_ADDR", ""),
		MinIOEndpoint:   must("MINIO_ENDPOINT"),
		MinIOAccessKey:  must("MINIO_ACCESS_KEY"),
		MinIOSecretKey:  must("MINIO_SECRET_KEY"),
		MinIOUseSSL:     getenv("MINIO_USE_SSL", "false") == "true",
		MinIOBucket:     getenv("MINIO_BUCKET_PHOTOS", "wayfare-photos"),
		MinIOPublicURL:  getenv("MINIO_PUBLIC_URL", ""),
		PhotoMaxBytes:   photoMax,
		FFMPEGPath:      getenv("FFMPEG_PATH", "ffmpeg"),
	}
}

func splitAndTrim(input string) []string {
	parts := strings.Split(input, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		trimmed := strings.TrimSpace(p)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}

func getenv(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func must(k string) string {
	v := os.Getenv(k)
	if v == "" {
		panic("missing env: " + k)
	}
	return v
}
