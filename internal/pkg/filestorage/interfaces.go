package filestorage

import "time"

// FileInfo represents information about a stored report artifact
type FileInfo struct {
	Filename string    `json:"filename"`
	Path     string    `json:"path"`
	FileSize int64     `json:"fileSize"`
	ModTime  time.Time `json:"modifiedAt"`
}

// ReportStorage defines the operations on generated run reports
type ReportStorage interface {
	// SaveReport writes a report under name and returns the path it was stored at
	SaveReport(name string, data []byte) (string, error)

	// ListReports returns every stored report, newest first
	ListReports() ([]FileInfo, error)

	// ReadReport returns the content of one report
	ReadReport(name string) ([]byte, error)

	// LatestReport returns the most recent report
	LatestReport() (FileInfo, error)
}
