package filestorage

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/yigit/fneseed/internal/pkg/apperrors"
	"github.com/yigit/fneseed/internal/pkg/logger"
	"github.com/yigit/fneseed/internal/pkg/validation"
)

// ReportPrefix starts every report filename
const ReportPrefix = "seed-report-"

// ReportName returns the artifact name of a run finished at t
func ReportName(t time.Time) string {
	return ReportPrefix + t.UTC().Format("20060102T150405Z") + ".json"
}

// LocalStorage keeps reports on the local filesystem.
type LocalStorage struct {
	basePath string // The directory reports are written to
}

// NewLocalStorage creates a new LocalStorage instance, creating basePath if needed.
func NewLocalStorage(basePath string) (*LocalStorage, error) {
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		logger.Error().Err(err).Str("path", basePath).Msg("Failed to create report directory")
		return nil, fmt.Errorf("failed to create report directory %s: %w", basePath, err)
	}
	logger.Debug().Str("path", basePath).Msg("Report directory ensured")

	return &LocalStorage{basePath: basePath}, nil
}

// SaveReport writes data to a temporary file and renames it into place so
// readers never see a partial report
func (ls *LocalStorage) SaveReport(name string, data []byte) (string, error) {
	if err := checkName(name); err != nil {
		return "", err
	}

	dstPath := filepath.Join(ls.basePath, name)
	tmp, err := os.CreateTemp(ls.basePath, ".report-*")
	if err != nil {
		logger.Error().Err(err).Str("path", ls.basePath).Msg("Failed to create temporary report file")
		return "", fmt.Errorf("failed to create report file: %w", err)
	}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		_ = os.Remove(tmp.Name())
		return "", fmt.Errorf("failed to write report: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return "", fmt.Errorf("failed to write report: %w", err)
	}
	if err := os.Rename(tmp.Name(), dstPath); err != nil {
		_ = os.Remove(tmp.Name())
		return "", fmt.Errorf("failed to move report into place: %w", err)
	}

	logger.Info().Str("path", dstPath).Int("bytes", len(data)).Msg("Report saved")
	return dstPath, nil
}

// ListReports returns the stored reports, newest first. The timestamp in the
// name sorts lexically, so name order is time order.
func (ls *LocalStorage) ListReports() ([]FileInfo, error) {
	entries, err := os.ReadDir(ls.basePath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []FileInfo{}, nil
		}
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}

	reports := make([]FileInfo, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !validation.CompiledPatterns.ReportName.MatchString(entry.Name()) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			logger.Warn().Err(err).Str("file", entry.Name()).Msg("Skipping unreadable report")
			continue
		}
		reports = append(reports, FileInfo{
			Filename: entry.Name(),
			Path:     filepath.Join(ls.basePath, entry.Name()),
			FileSize: info.Size(),
			ModTime:  info.ModTime(),
		})
	}

	sort.Slice(reports, func(i, j int) bool {
		return strings.Compare(reports[i].Filename, reports[j].Filename) > 0
	})
	return reports, nil
}

// ReadReport returns the content of the named report
func (ls *LocalStorage) ReadReport(name string) ([]byte, error) {
	if err := checkName(name); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(filepath.Join(ls.basePath, name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, apperrors.NewResourceNotFoundError(fmt.Sprintf("report %s not found", name))
		}
		return nil, fmt.Errorf("failed to read report: %w", err)
	}
	return data, nil
}

// LatestReport returns the newest report
func (ls *LocalStorage) LatestReport() (FileInfo, error) {
	reports, err := ls.ListReports()
	if err != nil {
		return FileInfo{}, err
	}
	if len(reports) == 0 {
		return FileInfo{}, apperrors.NewResourceNotFoundError("no reports have been generated yet")
	}
	return reports[0], nil
}

// checkName only accepts generated report names, which also rules out path traversal
func checkName(name string) error {
	if !validation.CompiledPatterns.ReportName.MatchString(name) {
		return apperrors.NewBadRequestError(fmt.Sprintf("invalid report name: %s", name))
	}
	return nil
}
