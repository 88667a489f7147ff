// Package services holds the outward-facing integrations: the Spaces
// evidence archive and the leaderboard image renderer.
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/questguild/questbot/questbot/models"
)

// EvidenceArchive mirrors submission evidence to a DigitalOcean Spaces
// bucket so proof survives outside the local record store. Archiving is
// best-effort: the lifecycle never depends on it.
type EvidenceArchive struct {
	client *s3.Client
	bucket string
	region string
	root   string
}

func NewEvidenceArchive(key, secret, region, bucket, root string) (*EvidenceArchive, error) {
	resolver := aws.EndpointResolverWithOptionsFunc(func(service, region string, options ...interface{}) (aws.Endpoint, error) {
		return aws.Endpoint{
			URL: fmt.Sprintf("https://%s.digitaloceanspaces.com", region),
		}, nil
	})

	cfg, err := config.LoadDefaultConfig(context.TODO(),
		config.WithEndpointResolverWithOptions(resolver),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(key, secret, "")),
		config.WithRegion(region),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load Spaces config: %w", err)
	}

	return &EvidenceArchive{
		client: s3.NewFromConfig(cfg),
		bucket: bucket,
		region: region,
		root:   strings.Trim(root, "/"),
	}, nil
}

func (a *EvidenceArchive) key(entry *models.ProgressEntry) string {
	k := fmt.Sprintf("%s/%s.json", entry.QuestID, entry.UserID)
	if a.root != "" {
		k = a.root + "/" + k
	}
	return k
}

// ArchiveSubmission uploads the progress entry as JSON, overwriting any
// earlier submission by the same user for the same quest.
func (a *EvidenceArchive) ArchiveSubmission(ctx context.Context, entry *models.ProgressEntry) error {
	body, err := json.MarshalIndent(entry, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode evidence: %w", err)
	}

	key := a.key(entry)
	contentType := "application/json"
	_, err = a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      &a.bucket,
		Key:         &key,
		Body:        bytes.NewReader(body),
		ContentType: &contentType,
	})
	if err != nil {
		return fmt.Errorf("failed to upload evidence %s: %w", key, err)
	}

	slog.Info("Evidence archived",
		slog.String("type", "quest"),
		slog.String("quest_id", entry.QuestID),
		slog.String("key", key))
	return nil
}

// URL returns the public address of an archived submission.
func (a *EvidenceArchive) URL(entry *models.ProgressEntry) string {
	return fmt.Sprintf("https://%s.%s.digitaloceanspaces.com/%s", a.bucket, a.region, a.key(entry))
}
