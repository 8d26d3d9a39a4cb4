package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"

	"tableaubackup/pkg/backup"
	"tableaubackup/pkg/secrets"
	"tableaubackup/pkg/tableau"
)

var (
	secretName     = getenv("SECRET_NAME", "tableau_backup_secret")
	regionName     = getenv("REGION_NAME", "us-east-2")
	s3Bucket       = getenv("S3_BUCKET", "tableau-cloud-backups-pablosite")
	tableauBaseURL = getenv("TABLEAU_BASE_URL", "https://eu-west-1a.online.tableau.com/api/3.24")
	siteID         = getenv("SITE_ID", "a20e5c14-bf38-4f1c-a8b8-1042fe2db147")
	manifestTable  = os.Getenv("MANIFEST_TABLE_NAME")

	// Limits for the number of items to back up per object type
	maxWorkbooks   = getenvInt("MAX_WORKBOOKS", 3)
	maxDatasources = getenvInt("MAX_DATASOURCES", 3)
	maxPrepFlows   = getenvInt("MAX_PREP_FLOWS", 3)
)

type Resp struct {
	StatusCode int    `json:"statusCode"`
	Body       string `json:"body"`
}

var runBackup = run

// handler converts a panic anywhere in the run into a failed invocation so
// the scheduler retries instead of recording success.
func handler(ctx context.Context, event events.CloudWatchEvent) (resp Resp, err error) {
	defer func() {
		if r := recover(); r != nil {
			resp, err = fail(fmt.Errorf("panic during backup: %v", r))
		}
	}()

	return runBackup(ctx, event)
}

func run(ctx context.Context, event events.CloudWatchEvent) (Resp, error) {
	log.Printf("Starting Tableau Cloud backup (trigger: %s)", event.Source)
	started := time.Now()

	awscfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(regionName))
	if err != nil {
		return fail(fmt.Errorf("load aws config failed: %w", err))
	}

	var creds tableau.PATCredentials
	if err := secrets.Get(ctx, secretsmanager.NewFromConfig(awscfg), secretName, &creds); err != nil {
		return fail(err)
	}
	log.Printf("Tableau credentials retrieved from Secrets Manager")

	tc := tableau.NewClient(tableauBaseURL, siteID)
	if err := tc.SignIn(ctx, creds); err != nil {
		return fail(err)
	}
	defer func() {
		if err := tc.SignOut(context.WithoutCancel(ctx)); err != nil {
			log.Printf("signout failed: %v", err)
		}
	}()

	writer := backup.NewWriter(s3.NewFromConfig(awscfg), s3Bucket)
	folder := backup.Folder(started)
	log.Printf("Creating backup folder: %s", folder)

	limits := backup.Limits{
		Workbooks:   maxWorkbooks,
		Datasources: maxDatasources,
		PrepFlows:   maxPrepFlows,
	}

	log.Printf("Starting content backup")
	content, err := backup.RunContentBackup(ctx, tc, writer, folder, limits)
	if err != nil {
		return fail(err)
	}
	log.Printf("Content backup completed")

	log.Printf("Starting metadata backup")
	meta, err := backup.RunMetadataBackup(ctx, tc, writer, folder)
	if err != nil {
		return fail(err)
	}
	log.Printf("Metadata backup completed")

	finished := time.Now()

	if _, err := backup.WriteReport(ctx, writer, content, meta, started, finished); err != nil {
		return fail(err)
	}

	if manifestTable != "" {
		manifest := backup.Manifest{
			RunID:       backup.NewRunID(),
			Folder:      folder,
			StartedAt:   started,
			FinishedAt:  finished,
			Workbooks:   len(content.Workbooks),
			PrepFlows:   len(content.PrepFlows),
			Datasources: len(content.Datasources),
			Documents:   len(meta.Documents),
			Status:      "completed",
		}
		if err := backup.WriteManifest(ctx, dynamodb.NewFromConfig(awscfg), manifestTable, manifest); err != nil {
			log.Printf("manifest write failed: %v", err)
		}
	} else {
		log.Printf("MANIFEST_TABLE_NAME not set, skipping run manifest")
	}

	log.Printf("Tableau Cloud backup completed successfully")
	return Resp{
		StatusCode: 200,
		Body:       fmt.Sprintf("Tableau Cloud backup completed successfully: %s", folder),
	}, nil
}

func fail(err error) (Resp, error) {
	log.Printf("Tableau Cloud backup failed: %v", err)
	return Resp{
		StatusCode: 500,
		Body:       fmt.Sprintf("Error during Tableau Cloud backup: %v", err),
	}, err
}

func main() {
	lambda.Start(handler)
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("invalid %s=%q, using default %d", key, v, fallback)
		return fallback
	}
	return n
}
