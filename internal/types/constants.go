package types

import (
	"os"
	"strconv"
	"strings"
)

const ContextActorKey = "actor"

// Username that can never be registered: it collides with the /users/me route.
const ReservedUsername = "me"

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

var (
	// Default allowed origins for development
	defaultOrigins = []string{
		"http://localhost:3000",
		"http://localhost:5173",
	}

	AllowedOrigins = initAllowedOrigins()
)

func initAllowedOrigins() []string {
	origins := make([]string, len(defaultOrigins))
	copy(origins, defaultOrigins)

	if clientURL := os.Getenv("CLIENT_URL"); clientURL != "" {
		origins = append(origins, clientURL)
	}

	if allowedOrigins := os.Getenv("ALLOWED_ORIGINS"); allowedOrigins != "" {
		envOrigins := strings.Split(allowedOrigins, ",")
		for _, origin := range envOrigins {
			trimmed := strings.TrimSpace(origin)
			if trimmed != "" {
				origins = append(origins, trimmed)
			}
		}
	}

	return origins
}

// PageSize returns the configured default page size for list endpoints.
func PageSize() int {
	if raw := os.Getenv("PAGE_SIZE"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= MaxPageSize {
			return n
		}
	}
	return DefaultPageSize
}
