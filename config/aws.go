package config

import (
	"os"
	"sync"
)

var (
	awsOnce   sync.Once
	awsConfig *AWSConfig
)

// AWSConfig carries shared credentials for the Textract and S3 clients.
type AWSConfig struct {
	Region     string
	Endpoint   string
	AccessKey  string
	SecretKey  string
	BucketName string
}

func GetAWSConfig() *AWSConfig {
	awsOnce.Do(func() {
		loadDotEnv()

		awsConfig = &AWSConfig{
			Region:     os.Getenv("AWS_REGION"),
			Endpoint:   os.Getenv("AWS_ENDPOINT"),
			AccessKey:  os.Getenv("AWS_ACCESS_KEY"),
			SecretKey:  os.Getenv("AWS_SECRET_KEY"),
			BucketName: os.Getenv("AWS_BUCKET_NAME"),
		}
	})
	return awsConfig
}
