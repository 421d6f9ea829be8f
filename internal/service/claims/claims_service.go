package claims

import (
	"context"
	"mime/multipart"

	"github.com/SHADOW-0602/Smart-Claims-Processing-Platform-HiDevs/internal/models"
	"github.com/SHADOW-0602/Smart-Claims-Processing-Platform-HiDevs/pkg/queue"
)

// ClaimProcessor is the claim intake service. SubmitClaim is the async
// path (store image, enqueue, poll status); TriageClaim runs the pipeline
// inline and returns the full trace.
type ClaimProcessor interface {
	SubmitClaim(ctx context.Context, file multipart.File, header *multipart.FileHeader, sourceID string) (*models.ProcessingTask, error)
	SubmitBatch(ctx context.Context, files []*multipart.FileHeader, sourceID string) ([]*models.ProcessingTask, error)
	TriageClaim(ctx context.Context, filename string, data []byte, sourceID string) (*models.PipelineRun, error)
	HandleClaim(ctx context.Context, task *queue.Task) error
	GetProcessingStatus(ctx context.Context, taskID string) (*models.ProcessingTask, error)
	GetPipelineRun(ctx context.Context, taskID string) (*models.PipelineRun, error)
	CancelTask(ctx context.Context, taskID string) error
}
