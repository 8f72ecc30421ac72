package logging

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// rotate removes the oldest sentidash log files in dir so that at most maxFiles remain.
func rotate(dir string, maxFiles int) error {
	if maxFiles <= 0 {
		return nil
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	type logFile struct {
		path    string
		modTime time.Time
	}
	var logFiles []logFile
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, filePrefix) || !strings.HasSuffix(name, ".log") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		logFiles = append(logFiles, logFile{path: filepath.Join(dir, name), modTime: info.ModTime()})
	}
	if len(logFiles) <= maxFiles {
		return nil
	}
	sort.SliceStable(logFiles, func(i, j int) bool {
		return logFiles[i].modTime.Before(logFiles[j].modTime)
	})
	for _, lf := range logFiles[:len(logFiles)-maxFiles] {
		os.Remove(lf.path)
	}
	return nil
}
