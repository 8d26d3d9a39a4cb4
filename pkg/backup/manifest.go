package backup

import (
	"context"
	"log"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"tableaubackup/pkg/dynamoutils"
)

// Manifest is the per-run record written to DynamoDB when a manifest table is
// configured.
type Manifest struct {
	RunID       string
	Folder      string
	StartedAt   time.Time
	FinishedAt  time.Time
	Workbooks   int
	PrepFlows   int
	Datasources int
	Documents   int
	Status      string
}

// WriteManifest inserts one run record. The insert is retried a few times;
// losing the manifest row does not invalidate the backup itself, so callers
// may choose to log the error and move on.
func WriteManifest(ctx context.Context, client dynamoutils.PutItemAPI, tableName string, m Manifest) error {
	item := dynamoutils.ConvertStringMap(map[string]string{
		"runId":            m.RunID,
		"backupFolder":     m.Folder,
		"startedAt":        m.StartedAt.UTC().Format(time.RFC3339),
		"finishedAt":       m.FinishedAt.UTC().Format(time.RFC3339),
		"workbookCount":    strconv.Itoa(m.Workbooks),
		"prepFlowCount":    strconv.Itoa(m.PrepFlows),
		"datasourceCount":  strconv.Itoa(m.Datasources),
		"metadataDocCount": strconv.Itoa(m.Documents),
		"status":           m.Status,
	})
	// The table key is a string; an all-digit run id must not be coerced to N.
	item["runId"] = &types.AttributeValueMemberS{Value: m.RunID}

	if err := dynamoutils.InsertItemWithRetry(ctx, client, tableName, item, 3); err != nil {
		return err
	}

	log.Printf("Run manifest written to %s (runId=%s)", tableName, m.RunID)
	return nil
}
