package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"apple-music-schedule-scraper/internal/models"
)

// S3Client publishes schedule snapshots and run artifacts to S3
type S3Client struct {
	client     *s3.Client
	bucketName string
	region     string
}

// S3Config holds configuration for the S3 client
type S3Config struct {
	BucketName string
	Region     string
	Profile    string
}

// S3FileInfo represents metadata about files in S3
type S3FileInfo struct {
	Key          string    `json:"key"`
	Size         int64     `json:"size"`
	LastModified time.Time `json:"last_modified"`
	ETag         string    `json:"etag"`
	ContentType  string    `json:"content_type"`
}

// S3UploadResult represents the result of an S3 upload operation
type S3UploadResult struct {
	Key         string    `json:"key"`
	Location    string    `json:"location"`
	ETag        string    `json:"etag"`
	Size        int64     `json:"size"`
	UploadedAt  time.Time `json:"uploaded_at"`
	ContentType string    `json:"content_type"`
	PublicURL   string    `json:"public_url"`
}

// NewS3Client creates an S3 client from the default AWS config chain
func NewS3Client() (*S3Client, error) {
	cfg, err := config.LoadDefaultConfig(context.TODO())
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	bucketName := os.Getenv("S3_BUCKET_NAME")
	if bucketName == "" {
		return nil, fmt.Errorf("S3_BUCKET_NAME environment variable is not set")
	}

	return &S3Client{
		client:     s3.NewFromConfig(cfg),
		bucketName: bucketName,
		region:     cfg.Region,
	}, nil
}

// NewS3ClientWithConfig creates an S3 client with custom configuration
func NewS3ClientWithConfig(s3Config S3Config) (*S3Client, error) {
	var cfg aws.Config
	var err error

	if s3Config.Profile != "" {
		cfg, err = config.LoadDefaultConfig(
			context.TODO(),
			config.WithSharedConfigProfile(s3Config.Profile),
		)
	} else {
		cfg, err = config.LoadDefaultConfig(context.TODO())
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	if s3Config.Region != "" {
		cfg.Region = s3Config.Region
	}

	return &S3Client{
		client:     s3.NewFromConfig(cfg),
		bucketName: s3Config.BucketName,
		region:     cfg.Region,
	}, nil
}

// UploadLatestSchedule uploads the schedule as the "latest" snapshot pair the
// frontend reads
func (s *S3Client) UploadLatestSchedule(output *models.ScheduleOutput) ([]S3UploadResult, error) {
	jsonResult, err := s.UploadScheduleJSON(output, "schedule/latest.json")
	if err != nil {
		return nil, err
	}
	csvResult, err := s.UploadScheduleCSV(output.Shows, "schedule/latest.csv")
	if err != nil {
		return nil, err
	}
	return []S3UploadResult{*jsonResult, *csvResult}, nil
}

// BackupSchedule writes a timestamped copy of the schedule for history
func (s *S3Client) BackupSchedule(output *models.ScheduleOutput) (*S3UploadResult, error) {
	timestamp := time.Now().UTC().Format("2006-01-02T15-04-05Z")
	key := fmt.Sprintf("schedule/backups/%s.json", timestamp)
	return s.UploadScheduleJSON(output, key)
}

// UploadScheduleJSON uploads a schedule snapshot as JSON
func (s *S3Client) UploadScheduleJSON(output *models.ScheduleOutput, key string) (*S3UploadResult, error) {
	jsonData, err := json.MarshalIndent(output, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal schedule to JSON: %w", err)
	}
	return s.uploadBytes(jsonData, key, "application/json")
}

// UploadScheduleCSV uploads show records as a CSV snapshot
func (s *S3Client) UploadScheduleCSV(shows []models.ShowRecord, key string) (*S3UploadResult, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)
	if err := writer.Write(models.CSVHeader); err != nil {
		return nil, fmt.Errorf("failed to encode CSV header: %w", err)
	}
	for _, show := range shows {
		if err := writer.Write(show.CSVRow()); err != nil {
			return nil, fmt.Errorf("failed to encode CSV row: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("failed to encode CSV snapshot: %w", err)
	}
	return s.uploadBytes(buf.Bytes(), key, "text/csv")
}

// UploadScrapeRun uploads scrape run results for history browsing
func (s *S3Client) UploadScrapeRun(run *models.ScrapeRun, key string) (*S3UploadResult, error) {
	jsonData, err := json.MarshalIndent(run, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal scrape run to JSON: %w", err)
	}
	return s.uploadBytes(jsonData, key, "application/json")
}

// uploadBytes is a helper method to upload data to S3
func (s *S3Client) uploadBytes(data []byte, key, contentType string) (*S3UploadResult, error) {
	key = strings.TrimPrefix(key, "/")

	uploadInput := &s3.PutObjectInput{
		Bucket:      aws.String(s.bucketName),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
		// Schedules refresh on a cadence, let consumers cache briefly
		CacheControl: aws.String("public, max-age=300"),
		Metadata: map[string]string{
			"uploaded-by":  "apple-music-schedule-scraper",
			"content-type": contentType,
			"upload-time":  time.Now().UTC().Format(time.RFC3339),
		},
	}

	result, err := s.client.PutObject(context.TODO(), uploadInput)
	if err != nil {
		return nil, fmt.Errorf("failed to upload to S3: %w", err)
	}

	publicURL := s.GetPublicURL(key)

	return &S3UploadResult{
		Key:         key,
		Location:    publicURL,
		ETag:        strings.Trim(*result.ETag, `"`),
		Size:        int64(len(data)),
		UploadedAt:  time.Now(),
		ContentType: contentType,
		PublicURL:   publicURL,
	}, nil
}

// DownloadSchedule downloads and parses a schedule JSON snapshot from S3
func (s *S3Client) DownloadSchedule(key string) (*models.ScheduleOutput, error) {
	data, err := s.downloadBytes(key)
	if err != nil {
		return nil, err
	}

	var output models.ScheduleOutput
	if err := json.Unmarshal(data, &output); err != nil {
		return nil, fmt.Errorf("failed to unmarshal schedule JSON: %w", err)
	}
	return &output, nil
}

// downloadBytes is a helper method to download an object from S3
func (s *S3Client) downloadBytes(key string) ([]byte, error) {
	key = strings.TrimPrefix(key, "/")

	result, err := s.client.GetObject(context.TODO(), &s3.GetObjectInput{
		Bucket: aws.String(s.bucketName),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to download from S3: %w", err)
	}
	defer result.Body.Close()

	data, err := io.ReadAll(result.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read S3 object body: %w", err)
	}
	return data, nil
}

// ListFiles lists files in the bucket with an optional prefix filter
func (s *S3Client) ListFiles(prefix string) ([]S3FileInfo, error) {
	listInput := &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucketName),
	}
	if prefix != "" {
		listInput.Prefix = aws.String(prefix)
	}

	result, err := s.client.ListObjectsV2(context.TODO(), listInput)
	if err != nil {
		return nil, fmt.Errorf("failed to list S3 objects: %w", err)
	}

	files := make([]S3FileInfo, 0, len(result.Contents))
	for _, obj := range result.Contents {
		files = append(files, S3FileInfo{
			Key:          *obj.Key,
			Size:         obj.Size,
			LastModified: *obj.LastModified,
			ETag:         strings.Trim(*obj.ETag, `"`),
		})
	}
	return files, nil
}

// FileExists checks if an object exists in the bucket
func (s *S3Client) FileExists(key string) (bool, error) {
	key = strings.TrimPrefix(key, "/")

	_, err := s.client.HeadObject(context.TODO(), &s3.HeadObjectInput{
		Bucket: aws.String(s.bucketName),
		Key:    aws.String(key),
	})
	if err != nil {
		if strings.Contains(err.Error(), "NotFound") || strings.Contains(err.Error(), "NoSuchKey") {
			return false, nil
		}
		return false, fmt.Errorf("failed to check if S3 object exists: %w", err)
	}
	return true, nil
}

// GetBucketName returns the configured bucket name
func (s *S3Client) GetBucketName() string {
	return s.bucketName
}

// GetRegion returns the configured AWS region
func (s *S3Client) GetRegion() string {
	return s.region
}

// GetPublicURL generates the public URL for an S3 object
func (s *S3Client) GetPublicURL(key string) string {
	key = strings.TrimPrefix(key, "/")
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucketName, s.region, key)
}
