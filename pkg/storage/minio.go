// Package storage 提供了与对象存储服务（如 MinIO）交互的功能。
package storage

import (
	"context"
	"drafting-wizard-go/internal/config"
	"drafting-wizard-go/pkg/log"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

const markdownContentType = "text/markdown; charset=utf-8"

// DraftStore 把归档的 draft Markdown 存放在一个存储桶中。
type DraftStore struct {
	client *minio.Client
	bucket string
	expiry time.Duration
}

// ObjectName 返回 draft 在存储桶中的对象名。
func ObjectName(draftID string) string {
	return fmt.Sprintf("drafts/%s.md", draftID)
}

// NewDraftStore 初始化 MinIO 客户端并确保指定的存储桶存在。
func NewDraftStore(ctx context.Context, cfg config.MinIOConfig) (*DraftStore, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("初始化 MinIO 客户端失败: %w", err)
	}
	log.Info("MinIO 客户端初始化成功")

	exists, err := client.BucketExists(ctx, cfg.BucketName)
	if err != nil {
		return nil, fmt.Errorf("检查 MinIO 存储桶失败: %w", err)
	}
	if !exists {
		log.Infof("存储桶 '%s' 不存在，正在创建...", cfg.BucketName)
		if err := client.MakeBucket(ctx, cfg.BucketName, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("创建 MinIO 存储桶失败: %w", err)
		}
		log.Infof("存储桶 '%s' 创建成功", cfg.BucketName)
	}

	expiry := time.Duration(cfg.PresignExpiryMinutes) * time.Minute
	if expiry <= 0 {
		expiry = time.Hour
	}
	return &DraftStore{client: client, bucket: cfg.BucketName, expiry: expiry}, nil
}

// PutMarkdown 写入（或覆盖）draft 的 Markdown 对象。
func (s *DraftStore) PutMarkdown(ctx context.Context, draftID, markdown string) error {
	objectName := ObjectName(draftID)
	_, err := s.client.PutObject(ctx, s.bucket, objectName,
		strings.NewReader(markdown), int64(len(markdown)),
		minio.PutObjectOptions{ContentType: markdownContentType},
	)
	if err != nil {
		return fmt.Errorf("上传 %s 失败: %w", objectName, err)
	}
	return nil
}

// PresignedURL 生成 draft 对象的临时下载链接，浏览器会以附件形式保存。
func (s *DraftStore) PresignedURL(ctx context.Context, draftID string) (string, error) {
	params := make(url.Values)
	params.Set("response-content-disposition", fmt.Sprintf("attachment; filename=\"%s.md\"", draftID))

	presignedURL, err := s.client.PresignedGetObject(ctx, s.bucket, ObjectName(draftID), s.expiry, params)
	if err != nil {
		log.Errorf("生成预签名 URL 失败: %v", err)
		return "", err
	}
	return presignedURL.String(), nil
}
