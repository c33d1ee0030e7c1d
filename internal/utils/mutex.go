package utils

import "sync"

var gdalMu sync.Mutex

// ExecuteWithMutex serializes calls into GDAL, which is not safe for concurrent use
// on shared dataset handles.
func ExecuteWithMutex(fn func()) {
	gdalMu.Lock()
	defer gdalMu.Unlock()
	fn()
}
