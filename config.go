package lattice

import (
	"os"
	"strconv"

	"github.com/lattice-ecs/lattice/rtree"
)

type WorldConfig struct {
	LogLevel         string
	BTreeOrder       int
	RTreeMaxChildren int
}

func GetWorldConfig() WorldConfig {
	return WorldConfig{
		LogLevel:         getEnv("LATTICE_LOG_LEVEL", "info"),
		BTreeOrder:       getEnvInt("LATTICE_BTREE_ORDER", DefaultBTreeOrder),
		RTreeMaxChildren: getEnvInt("LATTICE_RTREE_MAX_CHILDREN", rtree.DefaultMaxChildren),
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if n, err := strconv.Atoi(value); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}
