package numcalc

import (
	"os"
	"strconv"
	"strings"
	"sync"
)

// FeatureFlags controls experimental/tunable behavior: a struct of
// env-seeded toggles behind a single package-level singleton, loaded once.
type FeatureFlags struct {
	mu sync.RWMutex

	// EnableCaching gates the expression memoization cache (cache.go).
	EnableCaching bool
	CacheSize     int

	// CacheHash selects the cache key digest: "fnv" (default) or
	// "highway" for the wider highwayhash digest.
	CacheHash string

	// EnableMetrics gates Context.Metrics counters.
	EnableMetrics bool

	// CollectErrors makes the converter record up to CollectErrorsMax
	// errors instead of failing on the first one.
	CollectErrors    bool
	CollectErrorsMax int
}

var (
	globalFlags     *FeatureFlags
	globalFlagsOnce sync.Once
)

// GetFeatureFlags returns the process-wide FeatureFlags, loading it from
// the environment on first use.
func GetFeatureFlags() *FeatureFlags {
	globalFlagsOnce.Do(func() {
		globalFlags = loadFeatureFlags()
	})
	return globalFlags
}

func loadFeatureFlags() *FeatureFlags {
	return &FeatureFlags{
		EnableCaching:    getEnvBool("NUMCALC_CACHE", true),
		CacheSize:        getEnvInt("NUMCALC_CACHE_SIZE", 1000),
		CacheHash:        getEnvString("NUMCALC_CACHE_HASH", "fnv"),
		EnableMetrics:    getEnvBool("NUMCALC_METRICS", false),
		CollectErrors:    getEnvBool("NUMCALC_COLLECT_ERRORS", false),
		CollectErrorsMax: getEnvInt("NUMCALC_COLLECT_ERRORS_MAX", 10),
	}
}

func getEnvString(name, def string) string {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return def
	}
	return strings.ToLower(v)
}

func getEnvBool(name string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func getEnvInt(name string, def int) int {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
