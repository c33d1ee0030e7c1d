package properties

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/forest-guardian/landcover-change/internal/change"
	"github.com/forest-guardian/landcover-change/internal/log"
	"go.uber.org/zap"
)

const (
	DefaultReflectanceScale = 10000.0
	DefaultWorkers          = 4
)

func RootPath() string {
	return os.Getenv("ROOT_PATH")
}

func DataPath(elem ...string) string {
	return filepath.Join(append([]string{RootPath(), "data"}, elem...)...)
}

func ScenesPath() string {
	return DataPath("scenes")
}

func ZonesPath() string {
	return DataPath("vector")
}

func ResultPath() string {
	return DataPath("result")
}

func CachePath() string {
	return DataPath("cache")
}

// Thresholds reads the classification thresholds; unset keys keep their defaults.
func Thresholds() change.ThresholdConfig {
	d := change.DefaultThresholds()
	return change.ThresholdConfig{
		VegThreshold:    floatEnv("VEG_THRESHOLD", d.VegThreshold),
		UrbanThreshold:  floatEnv("URBAN_THRESHOLD", d.UrbanThreshold),
		ChangeThreshold: floatEnv("CHANGE_THRESHOLD", d.ChangeThreshold),
		WaterThreshold:  floatEnv("WATER_THRESHOLD", d.WaterThreshold),
	}
}

// PixelAreaHa returns the configured pixel area; 0 means derive it from the geotransform.
func PixelAreaHa() float64 {
	return floatEnv("PIXEL_AREA_HA", 0)
}

func ReflectanceScale() float64 {
	return floatEnv("REFLECTANCE_SCALE", DefaultReflectanceScale)
}

func Workers() int {
	n := intEnv("WORKERS", DefaultWorkers)
	if n < 1 {
		log.Warn("WORKERS must be positive, using default", zap.Int("value", n), zap.Int("default", DefaultWorkers))
		return DefaultWorkers
	}
	return n
}

func LogLevel() string {
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		return level
	}
	return "info"
}

func DiscordErrorNotificationUrl() string {
	return os.Getenv("DISCORD_ERROR_NOTIFICATION_URL")
}

func DiscordSuccessNotificationUrl() string {
	return os.Getenv("DISCORD_SUCCESS_NOTIFICATION_URL")
}

func floatEnv(key string, def float64) float64 {
	raw := os.Getenv(key)
	if raw == "" {
		return def
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		log.Warn("invalid number in environment, using default", zap.String("key", key), zap.String("value", raw), zap.Float64("default", def))
		return def
	}
	return v
}

func intEnv(key string, def int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		log.Warn("invalid integer in environment, using default", zap.String("key", key), zap.String("value", raw), zap.Int("default", def))
		return def
	}
	return v
}
