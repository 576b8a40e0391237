package services

import (
	"context"
	"fmt"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"apple-music-schedule-scraper/internal/models"
)

// Partition key shared by every run item so recent runs can be queried in
// started-at order.
const runHistoryPartition = "RUN"

// RunHistoryService records scrape runs in DynamoDB for history and alerting
type RunHistoryService struct {
	client    *dynamodb.Client
	tableName string
}

// scrapeRunItem wraps a run with the table's key attributes. The sort key
// encodes the start time so recent runs read back newest first.
type scrapeRunItem struct {
	PK string `dynamodbav:"PK"`
	SK string `dynamodbav:"SK"`
	models.ScrapeRun
}

// NewRunHistoryService creates a run history service from the environment.
// Returns an error when RUNS_TABLE_NAME is unset so callers can skip history.
func NewRunHistoryService(ctx context.Context) (*RunHistoryService, error) {
	tableName := os.Getenv("RUNS_TABLE_NAME")
	if tableName == "" {
		return nil, fmt.Errorf("RUNS_TABLE_NAME environment variable is not set")
	}

	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return &RunHistoryService{
		client:    dynamodb.NewFromConfig(cfg),
		tableName: tableName,
	}, nil
}

// NewRunHistoryServiceWithClient creates a run history service with an
// existing client, used by tests and the debug tooling
func NewRunHistoryServiceWithClient(client *dynamodb.Client, tableName string) *RunHistoryService {
	return &RunHistoryService{client: client, tableName: tableName}
}

// PutScrapeRun stores a completed scrape run
func (s *RunHistoryService) PutScrapeRun(ctx context.Context, run *models.ScrapeRun) error {
	if run.ID == "" {
		return fmt.Errorf("scrape run ID cannot be empty")
	}

	item, err := attributevalue.MarshalMap(scrapeRunItem{
		PK:        runHistoryPartition,
		SK:        runSortKey(run),
		ScrapeRun: *run,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal scrape run: %w", err)
	}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.tableName),
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("failed to store scrape run: %w", err)
	}
	return nil
}

// GetRecentRuns returns the most recent scrape runs, newest first
func (s *RunHistoryService) GetRecentRuns(ctx context.Context, limit int32) ([]models.ScrapeRun, error) {
	if limit <= 0 {
		limit = 10
	}

	result, err := s.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(s.tableName),
		KeyConditionExpression: aws.String("PK = :pk"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk": &types.AttributeValueMemberS{Value: runHistoryPartition},
		},
		ScanIndexForward: aws.Bool(false),
		Limit:            aws.Int32(limit),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query recent runs: %w", err)
	}

	var items []scrapeRunItem
	if err := attributevalue.UnmarshalListOfMaps(result.Items, &items); err != nil {
		return nil, fmt.Errorf("failed to unmarshal scrape runs: %w", err)
	}

	runs := make([]models.ScrapeRun, 0, len(items))
	for _, item := range items {
		runs = append(runs, item.ScrapeRun)
	}
	return runs, nil
}

// GetTableName returns the configured table name
func (s *RunHistoryService) GetTableName() string {
	return s.tableName
}

// runSortKey orders runs by start time with the ID as a tiebreaker
func runSortKey(run *models.ScrapeRun) string {
	return fmt.Sprintf("%s#%s", run.StartedAt.UTC().Format("2006-01-02T15:04:05Z"), run.ID)
}
