package extract

import (
	"context"
	"fmt"
	"strings"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/textract"
	"github.com/aws/aws-sdk-go-v2/service/textract/types"

	cfg "github.com/SHADOW-0602/Smart-Claims-Processing-Platform-HiDevs/config"
	"github.com/SHADOW-0602/Smart-Claims-Processing-Platform-HiDevs/internal/models"
	"github.com/SHADOW-0602/Smart-Claims-Processing-Platform-HiDevs/pkg/logger"
)

// TextractClient runs claim images through AWS Textract.
type TextractClient struct {
	client *textract.Client
	logger logger.Logger
}

func NewTextractClient(ctx context.Context, awsCfg *cfg.AWSConfig, log logger.Logger) (*TextractClient, error) {
	creds := credentials.NewStaticCredentialsProvider(
		awsCfg.AccessKey,
		awsCfg.SecretKey,
		"",
	)

	loaded, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(awsCfg.Region),
		awsconfig.WithCredentialsProvider(creds),
	)
	if err != nil {
		return nil, fmt.Errorf("unable to load AWS config: %w", err)
	}

	return &TextractClient{
		client: textract.NewFromConfig(loaded),
		logger: log,
	}, nil
}

// Recognize implements OCRClient. Quality is the mean detection confidence
// over line blocks, normalized to [0,1].
func (c *TextractClient) Recognize(ctx context.Context, image []byte, format models.ImageFormat) (string, float64, error) {
	result, err := c.client.DetectDocumentText(ctx, &textract.DetectDocumentTextInput{
		Document: &types.Document{Bytes: image},
	})
	if err != nil {
		return "", 0, fmt.Errorf("textract detect failed: %w", err)
	}

	var lines []string
	sum := 0.0
	count := 0
	for _, block := range result.Blocks {
		if block.BlockType != types.BlockTypeLine || block.Text == nil {
			continue
		}
		lines = append(lines, *block.Text)
		if block.Confidence != nil {
			sum += float64(*block.Confidence)
			count++
		}
	}

	quality := 0.0
	if count > 0 {
		quality = sum / float64(count) / 100.0
	}

	return strings.Join(lines, "\n"), quality, nil
}
