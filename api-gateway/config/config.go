package config

import (
	"os"
	"strings"
	"time"
)

// ServiceConfig holds configuration for a backend service
type ServiceConfig struct {
	Name        string
	BaseURL     string
	Instances   []string
	Timeout     time.Duration
	HealthCheck string
}

// GatewayConfig holds the main gateway configuration
type GatewayConfig struct {
	Port     string
	Services map[string]ServiceConfig
}

// LoadConfig loads the gateway configuration. Extra instances of a service
// are listed comma separated in <NAME>_SERVICE_INSTANCES.
func LoadConfig() *GatewayConfig {
	return &GatewayConfig{
		Port: getEnv("GATEWAY_PORT", "8000"),
		Services: map[string]ServiceConfig{
			"inventory": {
				Name:        "inventory-service",
				BaseURL:     getEnv("INVENTORY_SERVICE_URL", "http://localhost:8082"),
				Instances:   instances("INVENTORY_SERVICE_INSTANCES", getEnv("INVENTORY_SERVICE_URL", "http://localhost:8082")),
				Timeout:     30 * time.Second,
				HealthCheck: "/health",
			},
			"workorder": {
				Name:        "workorder-service",
				BaseURL:     getEnv("WORKORDER_SERVICE_URL", "http://localhost:8084"),
				Instances:   instances("WORKORDER_SERVICE_INSTANCES", getEnv("WORKORDER_SERVICE_URL", "http://localhost:8084")),
				Timeout:     30 * time.Second,
				HealthCheck: "/health",
			},
		},
	}
}

func instances(key, fallback string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		return parts
	}
	return []string{fallback}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
