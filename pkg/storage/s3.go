package storage

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/google/uuid"
	"github.com/questx-lab/contest-backoffice/config"
)

type s3Storage struct {
	uploader *s3manager.Uploader
	cfg      config.S3Configs
}

func NewS3Storage(cfg config.S3Configs) (*s3Storage, error) {
	sess, err := session.NewSession(&aws.Config{
		Region:           aws.String(cfg.Region),
		Credentials:      credentials.NewStaticCredentials(cfg.AccessKey, cfg.SecretKey, ""),
		Endpoint:         aws.String(cfg.Endpoint),
		S3ForcePathStyle: aws.Bool(true),
		DisableSSL:       aws.Bool(cfg.SSLDisabled),
	})
	if err != nil {
		return nil, err
	}

	return &s3Storage{
		uploader: s3manager.NewUploader(sess),
		cfg:      cfg,
	}, nil
}

func (s *s3Storage) bucket(object *UploadObject) string {
	if object.Bucket != "" {
		return object.Bucket
	}

	return s.cfg.Bucket
}

func (s *s3Storage) objectKey(object *UploadObject) string {
	name := fmt.Sprintf("%s-%s", uuid.NewString(), object.FileName)
	if object.Prefix == "" {
		return name
	}

	return fmt.Sprintf("%s/%s", strings.Trim(object.Prefix, "/"), name)
}

func (s *s3Storage) publicURL(bucket, key string) string {
	return fmt.Sprintf("%s/%s/%s", strings.TrimRight(s.cfg.PublicEndpoint, "/"), bucket, key)
}

func (s *s3Storage) Upload(ctx context.Context, object *UploadObject) (*UploadResponse, error) {
	bucket := s.bucket(object)
	key := s.objectKey(object)

	_, err := s.uploader.UploadWithContext(ctx, &s3manager.UploadInput{
		Bucket:      aws.String(bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(object.Data),
		ACL:         aws.String("public-read"),
		ContentType: aws.String(object.Mime),
	})
	if err != nil {
		return nil, fmt.Errorf("upload failed: %w, bucket %s, key %s", err, bucket, key)
	}

	return &UploadResponse{Url: s.publicURL(bucket, key), FileName: key}, nil
}
