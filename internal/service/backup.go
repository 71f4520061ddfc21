package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/nivkatz/tenants_backend/internal/domain"
)

// s3Uploader is the slice of the S3 client the backup needs, swappable in tests
type s3Uploader interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// BackupService writes a full JSON snapshot of the registry (current
// occupancy plus the history ledger) to an S3 bucket.
type BackupService struct {
	store      domain.Store
	catalog    *domain.Catalog
	client     s3Uploader
	bucketName string
}

// Snapshot is the serialized backup payload
type Snapshot struct {
	GeneratedAt time.Time              `json:"generatedAt"`
	Buildings   []domain.Building      `json:"buildings"`
	Tenants     []domain.TenantRecord  `json:"tenants"`
	History     []domain.TenantHistory `json:"history"`
}

// NewBackupService initializes the backup service against AWS
func NewBackupService(store domain.Store, catalog *domain.Catalog, bucketName, region string) (*BackupService, error) {
	if bucketName == "" {
		return nil, fmt.Errorf("bucket name is not set")
	}

	cfg, err := awsconfig.LoadDefaultConfig(context.TODO(), awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
	}

	return &BackupService{
		store:      store,
		catalog:    catalog,
		client:     s3.NewFromConfig(cfg),
		bucketName: bucketName,
	}, nil
}

// Run builds a snapshot and uploads it, returning the object key
func (s *BackupService) Run() (string, error) {
	snapshot, err := s.buildSnapshot()
	if err != nil {
		return "", err
	}

	payload, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode snapshot: %w", err)
	}

	key := fmt.Sprintf("backups/tenants_%s_%s.json",
		snapshot.GeneratedAt.Format("2006-01-02"), uuid.New().String()[:8])

	_, err = s.client.PutObject(context.TODO(), &s3.PutObjectInput{
		Bucket:      aws.String(s.bucketName),
		Key:         aws.String(key),
		Body:        bytes.NewReader(payload),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload backup to S3: %w", err)
	}

	return key, nil
}

func (s *BackupService) buildSnapshot() (*Snapshot, error) {
	tenants, err := s.store.Tenants().ListCurrent(0)
	if err != nil {
		return nil, fmt.Errorf("failed to read current tenants: %w", err)
	}

	var history []domain.TenantHistory
	for _, b := range s.catalog.All() {
		records, err := s.store.History().ListByBuilding(b.Number)
		if err != nil {
			return nil, fmt.Errorf("failed to read history of building %d: %w", b.Number, err)
		}
		history = append(history, records...)
	}

	return &Snapshot{
		GeneratedAt: time.Now().UTC(),
		Buildings:   s.catalog.All(),
		Tenants:     tenants,
		History:     history,
	}, nil
}
