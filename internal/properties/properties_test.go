package properties

import (
	"path/filepath"
	"testing"

	"github.com/forest-guardian/landcover-change/internal/change"
	"github.com/stretchr/testify/assert"
)

func TestThresholdsFromEnv(t *testing.T) {
	t.Setenv("VEG_THRESHOLD", "0.4")
	t.Setenv("CHANGE_THRESHOLD", "not-a-number")
	t.Setenv("URBAN_THRESHOLD", "")

	got := Thresholds()
	want := change.DefaultThresholds()
	want.VegThreshold = 0.4
	assert.Equal(t, want, got)
}

func TestNumericDefaults(t *testing.T) {
	t.Setenv("PIXEL_AREA_HA", "")
	t.Setenv("REFLECTANCE_SCALE", "")
	t.Setenv("WORKERS", "0")
	t.Setenv("LOG_LEVEL", "")

	assert.Equal(t, 0.0, PixelAreaHa())
	assert.Equal(t, DefaultReflectanceScale, ReflectanceScale())
	assert.Equal(t, DefaultWorkers, Workers())
	assert.Equal(t, "info", LogLevel())

	t.Setenv("WORKERS", "8")
	assert.Equal(t, 8, Workers())
}

func TestPaths(t *testing.T) {
	t.Setenv("ROOT_PATH", "/srv/landcover")
	assert.Equal(t, filepath.Join("/srv/landcover", "data", "scenes"), ScenesPath())
	assert.Equal(t, filepath.Join("/srv/landcover", "data", "result", "2020"), DataPath("result", "2020"))
}
