package sentinel

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/forest-guardian/landcover-change/internal/utils"
)

const sceneDateLayout = "20060102"

// Scene is one multi-band acquisition on disk, named YYYYMMDD*.tif.
type Scene struct {
	Date time.Time
	Path string
}

func ParseSceneDate(name string) (time.Time, error) {
	base := filepath.Base(name)
	if len(base) < len(sceneDateLayout) {
		return time.Time{}, fmt.Errorf("scene name %q does not start with a YYYYMMDD date", base)
	}
	date, err := time.Parse(sceneDateLayout, base[:len(sceneDateLayout)])
	if err != nil {
		return time.Time{}, fmt.Errorf("scene name %q does not start with a YYYYMMDD date: %w", base, err)
	}
	return date, nil
}

// ListScenes returns the dated GeoTIFFs of dir in ascending date order, restricted to
// [start, end] when those are non-zero. Two files with the same date are an error.
func ListScenes(dir string, start, end time.Time) ([]Scene, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenes folder: %w", err)
	}

	byDate := make(map[time.Time]string)
	for _, entry := range entries {
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if entry.IsDir() || (ext != ".tif" && ext != ".tiff") {
			continue
		}
		date, err := ParseSceneDate(entry.Name())
		if err != nil {
			continue
		}
		if !start.IsZero() && date.Before(start) {
			continue
		}
		if !end.IsZero() && date.After(end) {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if other, ok := byDate[date]; ok {
			return nil, fmt.Errorf("scenes %s and %s share the date %s", other, path, date.Format(time.DateOnly))
		}
		byDate[date] = path
	}

	scenes := make([]Scene, 0, len(byDate))
	for _, date := range utils.GetSortedKeys(byDate, true) {
		scenes = append(scenes, Scene{Date: date, Path: byDate[date]})
	}
	return scenes, nil
}
