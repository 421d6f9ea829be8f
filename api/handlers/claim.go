package handlers

import (
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SHADOW-0602/Smart-Claims-Processing-Platform-HiDevs/internal/service/claims"
	"github.com/SHADOW-0602/Smart-Claims-Processing-Platform-HiDevs/pkg/logger"
)

type ClaimHandler struct {
	service claims.ClaimProcessor
	logger  logger.Logger
}

// SubmitResponse describes an accepted claim submission.
type SubmitResponse struct {
	TaskID    string `json:"taskId"`
	Status    string `json:"status"`
	Filename  string `json:"filename"`
	FileSize  int64  `json:"fileSize"`
	CreatedAt string `json:"createdAt"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func NewClaimHandler(service claims.ClaimProcessor, log logger.Logger) *ClaimHandler {
	return &ClaimHandler{
		service: service,
		logger:  log,
	}
}

// SubmitClaim accepts a claim image and queues it for async triage.
func (h *ClaimHandler) SubmitClaim(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		h.handleError(c, http.StatusBadRequest, "Invalid file upload", err)
		return
	}
	defer file.Close()

	task, err := h.service.SubmitClaim(c.Request.Context(), file, header, c.PostForm("sourceId"))
	if err != nil {
		h.handleError(c, http.StatusUnprocessableEntity, "Failed to submit claim", err)
		return
	}

	c.JSON(http.StatusAccepted, SubmitResponse{
		TaskID:    task.ID,
		Status:    string(task.Status),
		Filename:  header.Filename,
		FileSize:  header.Size,
		CreatedAt: task.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	})
}

// SubmitBatch accepts multiple claim images at once.
func (h *ClaimHandler) SubmitBatch(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		h.handleError(c, http.StatusBadRequest, "Invalid form data", err)
		return
	}

	files := form.File["files"]
	if len(files) == 0 {
		h.handleError(c, http.StatusBadRequest, "No files provided", nil)
		return
	}

	tasks, err := h.service.SubmitBatch(c.Request.Context(), files, c.PostForm("sourceId"))
	if err != nil {
		h.handleError(c, http.StatusUnprocessableEntity, "Failed to submit claims", err)
		return
	}

	responses := make([]SubmitResponse, len(tasks))
	for i, task := range tasks {
		responses[i] = SubmitResponse{
			TaskID:    task.ID,
			Status:    string(task.Status),
			Filename:  task.Metadata["filename"],
			CreatedAt: task.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		}
	}

	c.JSON(http.StatusAccepted, gin.H{
		"message": fmt.Sprintf("Processing %d claims", len(tasks)),
		"tasks":   responses,
	})
}

// TriageClaim runs the pipeline synchronously and returns the full
// decision trace in the response.
func (h *ClaimHandler) TriageClaim(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		h.handleError(c, http.StatusBadRequest, "Invalid file upload", err)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		h.handleError(c, http.StatusBadRequest, "Failed to read upload", err)
		return
	}

	run, err := h.service.TriageClaim(c.Request.Context(), header.Filename, data, c.PostForm("sourceId"))
	if err != nil {
		// The partial run still carries the stage trace for diagnosis.
		if run != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error": err.Error(),
				"run":   run,
			})
			return
		}
		h.handleError(c, http.StatusUnprocessableEntity, "Failed to triage claim", err)
		return
	}

	c.JSON(http.StatusOK, run)
}

// GetStatus reports the async processing state of a claim task.
func (h *ClaimHandler) GetStatus(c *gin.Context) {
	taskID := c.Param("taskId")
	if taskID == "" {
		h.handleError(c, http.StatusBadRequest, "Task ID is required", nil)
		return
	}

	task, err := h.service.GetProcessingStatus(c.Request.Context(), taskID)
	if err != nil {
		h.handleError(c, http.StatusNotFound, "Failed to get status", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"taskId":   task.ID,
		"status":   string(task.Status),
		"progress": task.Progress,
		"workflow": task.Workflow,
		"error":    task.Error,
	})
}

// GetResult returns the stored pipeline run of a completed task.
func (h *ClaimHandler) GetResult(c *gin.Context) {
	taskID := c.Param("taskId")
	if taskID == "" {
		h.handleError(c, http.StatusBadRequest, "Task ID is required", nil)
		return
	}

	run, err := h.service.GetPipelineRun(c.Request.Context(), taskID)
	if err != nil {
		h.handleError(c, http.StatusNotFound, "Failed to get result", err)
		return
	}

	c.JSON(http.StatusOK, run)
}

// CancelTask cancels a pending claim task.
func (h *ClaimHandler) CancelTask(c *gin.Context) {
	taskID := c.Param("taskId")
	if taskID == "" {
		h.handleError(c, http.StatusBadRequest, "Task ID is required", nil)
		return
	}

	if err := h.service.CancelTask(c.Request.Context(), taskID); err != nil {
		h.handleError(c, http.StatusInternalServerError, "Failed to cancel task", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Task cancelled successfully",
		"taskId":  taskID,
	})
}

func (h *ClaimHandler) handleError(c *gin.Context, status int, message string, err error) {
	h.logger.Error(message,
		logger.String("path", c.Request.URL.Path),
		logger.Error(err),
	)

	response := ErrorResponse{
		Message: message,
	}
	if err != nil {
		response.Error = err.Error()
	}

	c.JSON(status, response)
}
