package delivery

import (
	"fmt"
	"slices"
	"time"

	"github.com/forest-guardian/landcover-change/internal/change"
	"github.com/forest-guardian/landcover-change/internal/indexes"
	"github.com/forest-guardian/landcover-change/internal/log"
	"github.com/forest-guardian/landcover-change/internal/notification"
	"github.com/forest-guardian/landcover-change/internal/properties"
	"github.com/forest-guardian/landcover-change/internal/sentinel"
	"github.com/forest-guardian/landcover-change/internal/zonal"
	"go.uber.org/zap"
)

// Request selects the scenes, zones and indexes of one change detection run.
// Zero Start/End leave the window open; an empty ZonesPath falls back to a 4x4 zone grid.
type Request struct {
	ScenesDir   string
	ZonesPath   string
	ZoneIDField string
	Start, End  time.Time
	Requested   []indexes.Name
}

type Config struct {
	Thresholds       change.ThresholdConfig
	PixelAreaHa      float64
	ReflectanceScale float64
	Workers          int
	CacheDir         string
	ResultDir        string
	Notify           bool
}

func ConfigFromEnv() Config {
	return Config{
		Thresholds:       properties.Thresholds(),
		PixelAreaHa:      properties.PixelAreaHa(),
		ReflectanceScale: properties.ReflectanceScale(),
		Workers:          properties.Workers(),
		CacheDir:         properties.CachePath(),
		ResultDir:        properties.ResultPath(),
		Notify:           true,
	}
}

type Result struct {
	Scenes    []sentinel.Scene
	Analysis  *Analysis
	OutputDir string
	Files     []string
}

const fallbackGridSize = 4

// classificationIndexes are always computed because both methods need them.
var classificationIndexes = []indexes.Name{indexes.NDVI, indexes.NDBI, indexes.NDWI}

func indexesToCompute(requested []indexes.Name) []indexes.Name {
	if len(requested) == 0 {
		return indexes.AllIndexes
	}
	names := slices.Clone(requested)
	for _, name := range classificationIndexes {
		if !slices.Contains(names, name) {
			names = append(names, name)
		}
	}
	return names
}

// RunChangeDetection computes indexes for every scene in the window, classifies the first
// and last dates with both methods, aggregates by zone and over time, and writes the results.
// Nothing is written unless every step succeeds.
func RunChangeDetection(req Request, cfg Config) (*Result, error) {
	result, err := runChangeDetection(req, cfg)
	if err != nil {
		log.Error("change detection failed", zap.String("scenes", req.ScenesDir), zap.Error(err))
		if cfg.Notify {
			if nerr := notification.SendDiscordErrorNotification(err.Error()); nerr != nil {
				log.Warn("failed to send notification", zap.Error(nerr))
			}
		}
		return nil, err
	}

	log.Info("change detection finished",
		zap.String("output", result.OutputDir),
		zap.Int("scenes", len(result.Scenes)),
		zap.Int("files", len(result.Files)))
	if cfg.Notify {
		msg := fmt.Sprintf("Compared %s to %s over %d scenes.\n\nResults located at: %s",
			result.Analysis.Start.Date.Format(time.DateOnly), result.Analysis.End.Date.Format(time.DateOnly),
			len(result.Scenes), result.OutputDir)
		if nerr := notification.SendDiscordSuccessNotification(msg); nerr != nil {
			log.Warn("failed to send notification", zap.Error(nerr))
		}
	}
	return result, nil
}

func runChangeDetection(req Request, cfg Config) (*Result, error) {
	if err := cfg.Thresholds.Validate(); err != nil {
		return nil, err
	}

	var layer *zonal.ZoneLayer
	if req.ZonesPath != "" {
		l, err := zonal.LoadZones(req.ZonesPath, req.ZoneIDField)
		if err != nil {
			return nil, err
		}
		layer = &l
	}

	scenes, err := sentinel.ListScenes(req.ScenesDir, req.Start, req.End)
	if err != nil {
		return nil, err
	}
	if len(scenes) < 2 {
		return nil, fmt.Errorf("need at least two dated scenes in %s, found %d", req.ScenesDir, len(scenes))
	}
	log.Info("scenes selected",
		zap.Int("count", len(scenes)),
		zap.Time("first", scenes[0].Date),
		zap.Time("last", scenes[len(scenes)-1].Date))

	sets, err := loadIndexSets(scenes, indexesToCompute(req.Requested), cfg)
	if err != nil {
		return nil, err
	}

	if layer == nil {
		l, err := zonal.GridZones(sets[scenes[0].Date].Grid, fallbackGridSize, fallbackGridSize)
		if err != nil {
			return nil, err
		}
		layer = &l
		log.Info("no zone layer given, using a zone grid over the scene extent",
			zap.Int("cols", fallbackGridSize), zap.Int("rows", fallbackGridSize))
	}

	analysis, err := Analyze(sets, *layer, cfg)
	if err != nil {
		return nil, err
	}

	outDir, files, err := writeResults(cfg.ResultDir, analysis)
	if err != nil {
		return nil, err
	}
	return &Result{Scenes: scenes, Analysis: analysis, OutputDir: outDir, Files: files}, nil
}
