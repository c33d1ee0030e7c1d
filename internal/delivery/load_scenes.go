package delivery

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/forest-guardian/landcover-change/internal/cache"
	"github.com/forest-guardian/landcover-change/internal/indexes"
	"github.com/forest-guardian/landcover-change/internal/log"
	"github.com/forest-guardian/landcover-change/internal/sentinel"
	"github.com/gammazero/workerpool"
	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"
)

func loadIndexSets(scenes []sentinel.Scene, names []indexes.Name, cfg Config) (map[time.Time]indexes.IndexSet, error) {
	var (
		mu             sync.Mutex
		sets           = make(map[time.Time]indexes.IndexSet, len(scenes))
		progressBar    = progressbar.Default(int64(len(scenes)), "Computing indices")
		errChan        = make(chan error, 1)
		stopProcessing sync.Once
		indexCache     *cache.FileCache[indexes.IndexSet]
	)
	if cfg.CacheDir != "" {
		indexCache = cache.NewFileCache[indexes.IndexSet](cfg.CacheDir)
	}

	wp := workerpool.New(max(cfg.Workers, 1))
	for _, scene := range scenes {
		wp.Submit(func() {
			set, err := loadScene(scene, names, cfg.ReflectanceScale, indexCache)
			if err != nil {
				stopProcessing.Do(func() { errChan <- err })
				return
			}
			mu.Lock()
			sets[scene.Date] = set
			progressBar.Add(1)
			mu.Unlock()
		})
	}
	wp.StopWait()
	progressBar.Finish()
	close(errChan)

	if err := <-errChan; err != nil {
		return nil, fmt.Errorf("error while computing indices: %w", err)
	}
	return sets, nil
}

func loadScene(scene sentinel.Scene, names []indexes.Name, scale float64, indexCache *cache.FileCache[indexes.IndexSet]) (indexes.IndexSet, error) {
	var key string
	if indexCache != nil {
		info, err := os.Stat(scene.Path)
		if err != nil {
			return indexes.IndexSet{}, fmt.Errorf("failed to stat scene: %w", err)
		}
		key = indexCache.GenerateKey(scene.Path, info.ModTime().UnixNano(), info.Size(), scale, names)
		if set, ok := indexCache.Get(key); ok {
			log.Debug("index cache hit", zap.String("scene", scene.Path))
			set.Date = scene.Date
			return set, nil
		}
	}

	bands, err := sentinel.ReadBandSet(scene.Path, scene.Date)
	if err != nil {
		return indexes.IndexSet{}, err
	}
	bands, err = indexes.ScaleReflectance(bands, scale)
	if err != nil {
		return indexes.IndexSet{}, err
	}
	set, err := indexes.ComputeIndices(bands, names)
	if err != nil {
		return indexes.IndexSet{}, fmt.Errorf("scene %s: %w", scene.Path, err)
	}

	if indexCache != nil {
		if err := indexCache.Set(key, set); err != nil {
			log.Warn("failed to cache indices", zap.String("scene", scene.Path), zap.Error(err))
		}
	}
	return set, nil
}
