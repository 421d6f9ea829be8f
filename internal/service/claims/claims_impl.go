package claims

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/sync/errgroup"

	cfg "github.com/SHADOW-0602/Smart-Claims-Processing-Platform-HiDevs/config"
	"github.com/SHADOW-0602/Smart-Claims-Processing-Platform-HiDevs/internal/classifier"
	"github.com/SHADOW-0602/Smart-Claims-Processing-Platform-HiDevs/internal/compliance"
	"github.com/SHADOW-0602/Smart-Claims-Processing-Platform-HiDevs/internal/extract"
	"github.com/SHADOW-0602/Smart-Claims-Processing-Platform-HiDevs/internal/models"
	"github.com/SHADOW-0602/Smart-Claims-Processing-Platform-HiDevs/internal/pipeline"
	"github.com/SHADOW-0602/Smart-Claims-Processing-Platform-HiDevs/internal/router"
	"github.com/SHADOW-0602/Smart-Claims-Processing-Platform-HiDevs/pkg/logger"
	"github.com/SHADOW-0602/Smart-Claims-Processing-Platform-HiDevs/pkg/queue"
	"github.com/SHADOW-0602/Smart-Claims-Processing-Platform-HiDevs/pkg/storage"
)

type ClaimService struct {
	pipeline *pipeline.Pipeline
	rules    *cfg.Store
	queue    queue.Queue
	storage  storage.Storage
	cache    *gocache.Cache
	logger   logger.Logger
	config   *ServiceConfig
}

type ServiceConfig struct {
	QueuePriority   int
	RetentionPeriod time.Duration
	CacheTTL        time.Duration
}

func NewService(
	p *pipeline.Pipeline,
	rules *cfg.Store,
	q queue.Queue,
	store storage.Storage,
	log logger.Logger,
	sc *ServiceConfig,
) *ClaimService {
	if sc == nil {
		sc = &ServiceConfig{
			QueuePriority:   2,
			RetentionPeriod: 24 * time.Hour,
			CacheTTL:        30 * time.Minute,
		}
	}

	return &ClaimService{
		pipeline: p,
		rules:    rules,
		queue:    q,
		storage:  store,
		cache:    gocache.New(sc.CacheTTL, 10*time.Minute),
		logger:   log,
		config:   sc,
	}
}

// GetService wires the full claim service from environment configuration.
func GetService(log logger.Logger) (*ClaimService, error) {
	pc := cfg.GetPipelineConfig()

	rules, err := cfg.NewStore(pc.RulesPath, log)
	if err != nil {
		return nil, fmt.Errorf("failed to load rules: %w", err)
	}

	store, err := storage.NewStorage(storage.StorageType(pc.StorageType), log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	q, err := queue.GetQueue()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize queue: %w", err)
	}

	p, err := BuildPipeline(context.Background(), rules, extract.Engine(pc.OCREngine), log)
	if err != nil {
		return nil, err
	}

	return NewService(p, rules, q, store, log, nil), nil
}

// BuildPipeline assembles the orchestrator and its collaborators. The
// classifier model is fitted here, once, from the snapshot's training
// data; a later rules reload does not refit it.
func BuildPipeline(ctx context.Context, rules *cfg.Store, engine extract.Engine, log logger.Logger) (*pipeline.Pipeline, error) {
	snap := rules.Snapshot()

	ocr, err := extract.NewOCRClient(ctx, engine, log)
	if err != nil {
		return nil, fmt.Errorf("failed to create ocr client: %w", err)
	}

	adapter := extract.NewAdapter(ocr, extract.NewRegexExtractor(), log, extract.Options{
		MinQuality: snap.Rules.MinQuality,
		MinWidth:   snap.Rules.MinWidth,
		MinHeight:  snap.Rules.MinHeight,
	})

	model, err := classifier.Fit(snap.Rules.TrainingData, snap.Rules.ClassOrder)
	if err != nil {
		return nil, fmt.Errorf("failed to fit classifier model: %w", err)
	}

	return pipeline.New(
		adapter,
		classifier.NewClassifier(model, &snap.Rules, log),
		compliance.NewChecker(log),
		router.NewRouter(log),
		log,
	), nil
}

// Rules exposes the rule store so callers can start the hot-reload watch.
func (s *ClaimService) Rules() *cfg.Store {
	return s.rules
}

// SubmitClaim validates the upload, stores the image and queues a
// processing task.
func (s *ClaimService) SubmitClaim(
	ctx context.Context,
	file multipart.File,
	header *multipart.FileHeader,
	sourceID string,
) (*models.ProcessingTask, error) {
	s.logger.Info("Claim submitted",
		logger.String("filename", header.Filename),
		logger.Int64("size", header.Size),
	)

	data, format, err := s.readAndValidate(file, header.Size)
	if err != nil {
		s.logger.Error("Claim upload rejected",
			logger.String("filename", header.Filename),
			logger.Error(err),
		)
		return nil, err
	}

	taskID := uuid.New().String()
	imageKey := fmt.Sprintf("claims/%s.%s", taskID, format)

	if _, err := s.storage.Store(ctx, bytes.NewReader(data), imageKey); err != nil {
		return nil, fmt.Errorf("failed to store claim image: %w", err)
	}

	task := &models.ProcessingTask{
		ID:        taskID,
		Status:    models.StatusPending,
		Type:      queue.TaskTypeClaimProcess,
		Priority:  s.config.QueuePriority,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
		Metadata: map[string]string{
			"filename": header.Filename,
			"format":   string(format),
			"sourceId": sourceID,
		},
	}

	queueTask := &queue.Task{
		ID:       taskID,
		Type:     task.Type,
		Priority: task.Priority,
		Payload: map[string]interface{}{
			"imageKey": imageKey,
			"format":   string(format),
			"size":     header.Size,
			"sourceId": sourceID,
		},
		Metadata:  task.Metadata,
		CreatedAt: task.CreatedAt,
	}

	if err := s.queue.Enqueue(ctx, queueTask); err != nil {
		return nil, fmt.Errorf("failed to enqueue task: %w", err)
	}

	initialStatus := &queue.TaskStatus{
		TaskID:    taskID,
		Status:    "pending",
		StartedAt: time.Now(),
	}
	if err := s.queue.SaveFinalStatus(ctx, initialStatus); err != nil {
		s.logger.Error("Failed to save initial status",
			logger.String("taskId", taskID),
			logger.Error(err),
		)
	}

	return task, nil
}

// SubmitBatch submits multiple claim uploads concurrently.
func (s *ClaimService) SubmitBatch(ctx context.Context, files []*multipart.FileHeader, sourceID string) ([]*models.ProcessingTask, error) {
	tasks := make([]*models.ProcessingTask, 0, len(files))
	var mu sync.Mutex

	g, ctx := errgroup.WithContext(ctx)
	for _, header := range files {
		g.Go(func() error {
			file, err := header.Open()
			if err != nil {
				return fmt.Errorf("failed to open file %s: %w", header.Filename, err)
			}
			defer file.Close()

			task, err := s.SubmitClaim(ctx, file, header, sourceID)
			if err != nil {
				return fmt.Errorf("failed to submit claim %s: %w", header.Filename, err)
			}

			mu.Lock()
			tasks = append(tasks, task)
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return tasks, err
	}
	return tasks, nil
}

// TriageClaim runs the pipeline synchronously. Identical image bytes under
// the same configuration produce the identical decision, so results are
// cached by image digest.
func (s *ClaimService) TriageClaim(ctx context.Context, filename string, data []byte, sourceID string) (*models.PipelineRun, error) {
	format, err := sniffFormat(data)
	if err != nil {
		return nil, err
	}

	snap := s.rules.Snapshot()
	if int64(len(data)) > snap.Rules.MaxFileSize {
		return nil, fmt.Errorf("file size %d exceeds maximum of %d bytes", len(data), snap.Rules.MaxFileSize)
	}

	digest := imageDigest(data, snap)
	if cached, ok := s.cache.Get(digest); ok {
		s.logger.Info("Returning cached decision", logger.String("digest", digest))
		return cached.(*models.PipelineRun), nil
	}

	doc := &models.ClaimDocument{
		ID:         uuid.New().String(),
		Image:      data,
		Format:     format,
		Size:       int64(len(data)),
		SourceID:   sourceID,
		ReceivedAt: time.Now(),
	}

	run, err := s.pipeline.Run(ctx, doc, snap)
	if err != nil {
		return run, err
	}

	s.cache.Set(digest, run, gocache.DefaultExpiration)
	return run, nil
}

// HandleClaim is the worker-side handler for a queued claim task.
func (s *ClaimService) HandleClaim(ctx context.Context, task *queue.Task) error {
	if task == nil || task.Payload == nil {
		return fmt.Errorf("invalid task: missing required data")
	}

	imageKey, _ := task.Payload["imageKey"].(string)
	sourceID, _ := task.Payload["sourceId"].(string)
	if imageKey == "" {
		return fmt.Errorf("invalid task %s: missing image key", task.ID)
	}

	s.logger.Info("Processing claim task",
		logger.String("taskId", task.ID),
		logger.String("imageKey", imageKey),
	)

	reader, err := s.storage.Get(ctx, imageKey)
	if err != nil {
		return fmt.Errorf("failed to get claim image: %w", err)
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return fmt.Errorf("failed to read claim image: %w", err)
	}

	run, err := s.TriageClaim(ctx, imageKey, data, sourceID)
	if err != nil {
		finalStatus := &queue.TaskStatus{
			TaskID:     task.ID,
			Status:     "failed",
			Error:      err.Error(),
			StartedAt:  task.CreatedAt,
			FinishedAt: time.Now(),
		}
		if saveErr := s.queue.SaveFinalStatus(ctx, finalStatus); saveErr != nil {
			s.logger.Error("Failed to save failure status",
				logger.String("taskId", task.ID),
				logger.Error(saveErr),
			)
		}
		return err
	}

	resultData, err := json.Marshal(run)
	if err != nil {
		return fmt.Errorf("failed to marshal run: %w", err)
	}
	if _, err := s.storage.Store(ctx, bytes.NewReader(resultData), resultKey(task.ID)); err != nil {
		return fmt.Errorf("failed to store run result: %w", err)
	}

	// The image is not kept past the run.
	if err := s.storage.Delete(ctx, imageKey); err != nil {
		s.logger.Warn("Failed to delete claim image",
			logger.String("imageKey", imageKey),
			logger.Error(err),
		)
	}

	finalStatus := &queue.TaskStatus{
		TaskID:     task.ID,
		Status:     "completed",
		Progress:   1.0,
		Workflow:   run.Decision.Workflow,
		StartedAt:  task.CreatedAt,
		FinishedAt: time.Now(),
	}
	if err := s.queue.SaveFinalStatus(ctx, finalStatus); err != nil {
		s.logger.Error("Failed to save final status",
			logger.String("taskId", task.ID),
			logger.Error(err),
		)
	}

	s.logger.Info("Claim task completed",
		logger.String("taskId", task.ID),
		logger.String("workflow", run.Decision.Workflow),
	)
	return nil
}

// GetProcessingStatus reads the async task status.
func (s *ClaimService) GetProcessingStatus(ctx context.Context, taskID string) (*models.ProcessingTask, error) {
	status, err := s.queue.GetTaskStatus(ctx, taskID)
	if err != nil {
		return nil, fmt.Errorf("failed to get task status: %w", err)
	}

	var taskStatus models.ProcessingStatus
	switch status.Status {
	case "pending":
		taskStatus = models.StatusPending
	case "running", "active":
		taskStatus = models.StatusRunning
	case "completed":
		taskStatus = models.StatusCompleted
	case "failed":
		taskStatus = models.StatusFailed
	default:
		taskStatus = models.StatusPending
	}

	return &models.ProcessingTask{
		ID:        status.TaskID,
		Status:    taskStatus,
		Type:      queue.TaskTypeClaimProcess,
		Progress:  status.Progress,
		Workflow:  status.Workflow,
		Error:     status.Error,
		Metadata:  make(map[string]string),
		CreatedAt: status.StartedAt,
		UpdatedAt: status.FinishedAt,
	}, nil
}

// GetPipelineRun returns the stored audit trace of a completed task.
func (s *ClaimService) GetPipelineRun(ctx context.Context, taskID string) (*models.PipelineRun, error) {
	status, err := s.GetProcessingStatus(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if status.Status != models.StatusCompleted {
		return nil, fmt.Errorf("task is not completed: %s", status.Status)
	}

	reader, err := s.storage.Get(ctx, resultKey(taskID))
	if err != nil {
		return nil, fmt.Errorf("failed to get run result: %w", err)
	}
	defer reader.Close()

	var run models.PipelineRun
	if err := json.NewDecoder(reader).Decode(&run); err != nil {
		return nil, fmt.Errorf("failed to decode run result: %w", err)
	}
	return &run, nil
}

// CancelTask cancels a pending claim task.
func (s *ClaimService) CancelTask(ctx context.Context, taskID string) error {
	if err := s.queue.CancelTask(ctx, taskID); err != nil {
		return fmt.Errorf("failed to cancel task: %w", err)
	}

	s.logger.Info("Task cancelled", logger.String("taskId", taskID))
	return nil
}

// CleanupTasks removes stored images and results past retention.
func (s *ClaimService) CleanupTasks(ctx context.Context) error {
	threshold := time.Now().Add(-s.config.RetentionPeriod)

	if err := s.storage.CleanupBefore(ctx, threshold); err != nil {
		return fmt.Errorf("failed to cleanup storage: %w", err)
	}

	s.logger.Info("Completed tasks cleanup", logger.Time("threshold", threshold))
	return nil
}

func (s *ClaimService) readAndValidate(file multipart.File, size int64) ([]byte, models.ImageFormat, error) {
	snap := s.rules.Snapshot()
	if size > snap.Rules.MaxFileSize {
		return nil, "", fmt.Errorf("file size %d exceeds maximum of %d bytes", size, snap.Rules.MaxFileSize)
	}

	data, err := io.ReadAll(io.LimitReader(file, snap.Rules.MaxFileSize+1))
	if err != nil {
		return nil, "", fmt.Errorf("failed to read upload: %w", err)
	}
	if int64(len(data)) > snap.Rules.MaxFileSize {
		return nil, "", fmt.Errorf("file size exceeds maximum of %d bytes", snap.Rules.MaxFileSize)
	}

	format, err := sniffFormat(data)
	if err != nil {
		return nil, "", err
	}
	return data, format, nil
}

// sniffFormat detects the image format from content, not the filename.
func sniffFormat(data []byte) (models.ImageFormat, error) {
	switch http.DetectContentType(data) {
	case "image/png":
		return models.FormatPNG, nil
	case "image/jpeg":
		return models.FormatJPEG, nil
	default:
		return "", fmt.Errorf("unsupported file format, only PNG and JPEG are accepted")
	}
}

// imageDigest keys the decision cache. The snapshot load time is part of
// the key so a rules reload invalidates cached decisions.
func imageDigest(data []byte, snap *cfg.Snapshot) string {
	h := sha256.New()
	h.Write(data)
	fmt.Fprintf(h, "|%d", snap.LoadedAt.UnixNano())
	return hex.EncodeToString(h.Sum(nil))
}

func resultKey(taskID string) string {
	return fmt.Sprintf("results/%s.json", taskID)
}
