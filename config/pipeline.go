package config

import (
	"os"
	"sync"
)

var (
	pipelineOnce   sync.Once
	pipelineConfig *PipelineConfig
)

// PipelineConfig selects the pipeline's pluggable backends.
type PipelineConfig struct {
	RulesPath   string // YAML rule file, hot-reloaded
	OCREngine   string // tesseract | textract
	StorageType string // minio | s3
}

func GetPipelineConfig() *PipelineConfig {
	pipelineOnce.Do(func() {
		loadDotEnv()

		rulesPath := os.Getenv("CLAIMS_RULES_PATH")
		if rulesPath == "" {
			rulesPath = "claims.yaml"
		}

		engine := os.Getenv("OCR_ENGINE")
		if engine == "" {
			engine = "tesseract"
		}

		storageType := os.Getenv("STORAGE_TYPE")
		if storageType == "" {
			storageType = "minio"
		}

		pipelineConfig = &PipelineConfig{
			RulesPath:   rulesPath,
			OCREngine:   engine,
			StorageType: storageType,
		}
	})
	return pipelineConfig
}
