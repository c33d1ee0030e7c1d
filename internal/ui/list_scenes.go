package ui

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/forest-guardian/landcover-change/internal/properties"
	"github.com/forest-guardian/landcover-change/internal/sentinel"
)

// ListScenes handles the UI for viewing the dated scenes
func ListScenes() {
	scenes, err := sentinel.ListScenes(properties.ScenesPath(), time.Time{}, time.Time{})
	if err != nil {
		PrintError(err.Error())
		return
	}

	PrintWarning("To add a new scene, add a multi-band 'YYYYMMDD*.tif' file at 'data/scenes' folder.")
	if len(scenes) == 0 {
		PrintError("no dated scenes found")
		return
	}

	fmt.Printf("\n%sAvailable scenes:%s\n", ColorGreen, ColorReset)
	for _, scene := range scenes {
		fmt.Printf("%s- %s  %s%s\n", ColorGreen, scene.Date.Format(time.DateOnly), filepath.Base(scene.Path), ColorReset)
	}
}
