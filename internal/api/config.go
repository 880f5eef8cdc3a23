package api

import (
	"fmt"
	"log"
	"os"
	"reflect"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	ConfigPath  string
	Verbose     bool
	ApiGinMode  string
	InitSQLPath string

	Port string

	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string

	// keycloak
	AuthAddress  string
	Realm        string
	Audience     string
	ClientID     string
	ClientSecret string

	// database
	DBAddress  string
	DBUser     string
	DBPassword string
	DBName     string
}

func loadConfig(path string) Config {
	if err := godotenv.Load(path); err != nil {
		log.Printf("Failed to load the config file at %s, using default ones...", path)
	}

	s := strings.Split(path, "/")
	config := Config{
		ConfigPath:  s[len(s)-1],
		Verbose:     getBoolEnv("VERBOSE", "true"),
		ApiGinMode:  getEnv("GIN_MODE", "debug"),
		InitSQLPath: getEnv("INIT_SQL_PATH", "./internal/dal/db/init.sql"),

		Port:           getEnv("PORT", "5060"),
		AllowedOrigins: getEnvFields("ALLOW_ORIGINS", []string{"*"}),
		AllowedMethods: getEnvFields("ALLOW_METHODS", []string{"*"}),
		AllowedHeaders: getEnvFields("ALLOW_HEADERS", []string{"*"}),

		AuthAddress:  getEnv("AUTH_ADDRESS", "localhost:5555"),
		Realm:        getEnv("KC_REALM", "atelier"),
		Audience:     getEnv("KC_AUDIENCE", "atelier-front"),
		ClientID:     getEnv("KC_CLIENT", "atelier-api"),
		ClientSecret: getEnv("KC_CLIENT_SECRET", ""),

		DBAddress:  getEnv("DB_ADDRESS", "api-db:5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", "postgres"),
		DBName:     getEnv("DB_NAME", "atelier"),
	}

	if config.Verbose {
		log.Print(config.toString())
	}

	return config
}

func getEnv(env, fallback string) string {
	if value, exists := os.LookupEnv(env); exists {
		return value
	}

	return fallback
}

func getEnvFields(env string, fallback []string) []string {
	if value, exists := os.LookupEnv(env); exists {
		return strings.Split(strings.TrimSpace(value), ",")
	}

	return fallback
}

func getBoolEnv(env, fallback string) bool {
	if value, exists := os.LookupEnv(env); exists {
		return strings.ToLower(value) == "true"
	}

	return strings.ToLower(fallback) == "true"
}

func (cfg *Config) toString() string {
	var strBuilder strings.Builder

	reflectedValues := reflect.ValueOf(cfg).Elem()
	reflectedTypes := reflect.TypeOf(cfg).Elem()

	strBuilder.WriteString(fmt.Sprintf("[CFG]CONFIGURATION: %s\n", cfg.ConfigPath))

	for i := 0; i < reflectedValues.NumField(); i++ {
		fieldName := reflectedTypes.Field(i).Name
		fieldValue := reflectedValues.Field(i).Interface()

		if fieldName == "ClientSecret" || fieldName == "DBPassword" {
			fieldValue = "<redacted>"
		}

		strBuilder.WriteString(fmt.Sprintf("[CFG]%d. %v -> %v\n", i+1, fieldName, fieldValue))
	}

	return strBuilder.String()
}
