package documents

import (
	"encoding/json"
	"time"
)

// UploadResponse is returned after an accepted upload has run through the
// pipeline.
type UploadResponse struct {
	ID             string          `json:"id"`
	Filename       string          `json:"filename"`
	FileType       string          `json:"fileType"`
	StorageURL     string          `json:"storageUrl"`
	Classification string          `json:"classification"`
	Status         string          `json:"status"`
	ExtractedData  json.RawMessage `json:"extracted_data"`
	CreatedAt      time.Time       `json:"createdAt"`
}

// DocumentResponse is the outward-facing representation of a document.
type DocumentResponse struct {
	ID             string          `json:"id"`
	Filename       string          `json:"filename"`
	FileType       string          `json:"fileType"`
	StorageURL     string          `json:"storageUrl"`
	Classification string          `json:"classification"`
	Status         string          `json:"status"`
	ExtractedData  json.RawMessage `json:"extracted_data"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
}

func toUploadResponse(doc Document) UploadResponse {
	return UploadResponse{
		ID:             doc.ID,
		Filename:       doc.OriginalFilename,
		FileType:       doc.FileType,
		StorageURL:     doc.StorageURL,
		Classification: string(doc.Classification),
		Status:         doc.Status,
		ExtractedData:  doc.ExtractedData,
		CreatedAt:      doc.CreatedAt,
	}
}

func toResponse(doc Document) DocumentResponse {
	return DocumentResponse{
		ID:             doc.ID,
		Filename:       doc.OriginalFilename,
		FileType:       doc.FileType,
		StorageURL:     doc.StorageURL,
		Classification: string(doc.Classification),
		Status:         doc.Status,
		ExtractedData:  doc.ExtractedData,
		CreatedAt:      doc.CreatedAt,
		UpdatedAt:      doc.UpdatedAt,
	}
}
