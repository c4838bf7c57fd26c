package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

var (
	MYSQL_DSN          = ""               // MySQL will be used if this is set
	SQLITE_FILE        = "pinaly.db"      // SQLite will be used if MYSQL_DSN is not configured
	BIND_ADDRESS       = "0.0.0.0:8080"
	TLS_DOMAINS        = ""               // e.g. "example.com,example2.com"
	TMP_DIR            = "/tmp"
	DEFAULT_BUCKET_DIR = "./data"         // Used for creating the initial bucket
	DEBUG_MODE         = true
	MAX_UPLOAD_MB      = 50

	// GeoCLIP inference service
	GEOCLIP_URL         = "http://localhost:9090"
	GEOCLIP_TOP_K       = 3
	GEOCLIP_TIMEOUT_SEC = 30

	// Reverse geocoding
	NOMINATIM_URL    = "https://nominatim.openstreetmap.org/reverse"
	GEOCODE_LANGUAGE = "en"

	// Auth
	JWT_SECRET      = "pinaly-dev-secret" // Override in production
	TOKEN_TTL_HOURS = 7 * 24
)

func init() {
	_ = godotenv.Load()

	readEnvString("MYSQL_DSN", &MYSQL_DSN)
	readEnvString("SQLITE_FILE", &SQLITE_FILE)
	readEnvString("BIND_ADDRESS", &BIND_ADDRESS)
	readEnvString("TLS_DOMAINS", &TLS_DOMAINS)
	readEnvString("TMP_DIR", &TMP_DIR)
	readEnvString("DEFAULT_BUCKET_DIR", &DEFAULT_BUCKET_DIR)
	readEnvBool("DEBUG_MODE", &DEBUG_MODE)
	readEnvInt("MAX_UPLOAD_MB", &MAX_UPLOAD_MB)
	readEnvString("GEOCLIP_URL", &GEOCLIP_URL)
	readEnvInt("GEOCLIP_TOP_K", &GEOCLIP_TOP_K)
	readEnvInt("GEOCLIP_TIMEOUT_SEC", &GEOCLIP_TIMEOUT_SEC)
	readEnvString("NOMINATIM_URL", &NOMINATIM_URL)
	readEnvString("GEOCODE_LANGUAGE", &GEOCODE_LANGUAGE)
	readEnvString("JWT_SECRET", &JWT_SECRET)
	readEnvInt("TOKEN_TTL_HOURS", &TOKEN_TTL_HOURS)
}

func readEnvString(name string, value *string) {
	v := os.Getenv(name)
	if v == "" {
		return
	}
	*value = v
}

func readEnvBool(name string, value *bool) {
	v := strings.ToLower(os.Getenv(name))
	if v == "true" || v == "1" || v == "yes" || v == "on" {
		*value = true
	} else if v == "false" || v == "0" || v == "no" || v == "off" {
		*value = false
	}
}

func readEnvInt(name string, value *int) {
	v := os.Getenv(name)
	if v == "" {
		return
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return
	}
	*value = i
}
