package dto

import (
	"time"

	"github.com/tatweer-edu/visit-plans-api/internal/models"
)

// ImportBatchResponse summarizes one processed file within a submission.
type ImportBatchResponse struct {
	Source   string `json:"source"`
	FileName string `json:"file_name"`
	Created  int    `json:"created"`
	Updated  int    `json:"updated"`
	Skipped  int    `json:"skipped"`
}

// NewImportBatchResponse converts a model into a DTO.
func NewImportBatchResponse(model models.ImportBatch) ImportBatchResponse {
	return ImportBatchResponse{
		Source:   model.Source,
		FileName: model.FileName,
		Created:  model.Created,
		Updated:  model.Updated,
		Skipped:  model.Skipped,
	}
}

// ImportResultResponse is returned after a submission finishes. SubmissionID
// keys the rejected-rows download.
type ImportResultResponse struct {
	SubmissionID string                `json:"submission_id"`
	Batches      []ImportBatchResponse `json:"batches"`
	Rejected     int                   `json:"rejected"`
	FinishedAt   time.Time             `json:"finished_at"`
}

// NewImportResultResponse converts a submission's batches into a DTO.
func NewImportResultResponse(submissionID string, batches []models.ImportBatch) ImportResultResponse {
	responses := make([]ImportBatchResponse, 0, len(batches))
	rejected := 0
	for _, batch := range batches {
		responses = append(responses, NewImportBatchResponse(batch))
		rejected += batch.Skipped
	}

	return ImportResultResponse{
		SubmissionID: submissionID,
		Batches:      responses,
		Rejected:     rejected,
		FinishedAt:   time.Now().UTC(),
	}
}
