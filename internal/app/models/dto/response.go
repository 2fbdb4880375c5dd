package dto

import (
	"encoding/json"
	"time"

	"github.com/yigit/fneseed/internal/pkg/filestorage"
)

// APIResponse is the envelope every viewer endpoint answers with
type APIResponse struct {
	Success   bool         `json:"success"`
	Message   string       `json:"message,omitempty"`
	Data      interface{}  `json:"data,omitempty"`
	Error     *ErrorDetail `json:"error,omitempty"`
	Timestamp time.Time    `json:"timestamp"`
}

// NewAPIResponse wraps data in a successful response
func NewAPIResponse(data interface{}, message string) APIResponse {
	return APIResponse{
		Success:   true,
		Message:   message,
		Data:      data,
		Timestamp: time.Now(),
	}
}

// PaginationInfo describes one page of a listing
type PaginationInfo struct {
	CurrentPage int `json:"currentPage"`
	TotalPages  int `json:"totalPages"`
	PageSize    int `json:"pageSize"`
	TotalItems  int `json:"totalItems"`
}

// PaginatedResponse represents a paginated list with metadata
type PaginatedResponse struct {
	Items      interface{}    `json:"items"`
	Pagination PaginationInfo `json:"pagination"`
}

// ReportFileResponse lists one stored run report
type ReportFileResponse struct {
	Filename   string    `json:"filename"`
	FileSize   int64     `json:"fileSize"`
	ModifiedAt time.Time `json:"modifiedAt"`
}

// FromFileInfo converts a stored file to its listing entry
func FromFileInfo(f filestorage.FileInfo) ReportFileResponse {
	return ReportFileResponse{
		Filename:   f.Filename,
		FileSize:   f.FileSize,
		ModifiedAt: f.ModTime,
	}
}

// ReportResponse carries a stored report verbatim
type ReportResponse struct {
	Filename string          `json:"filename"`
	Report   json.RawMessage `json:"report"`
}
