package s3

import (
	"bytes"
	"context"
	"fmt"
	"os"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/spf13/viper"
)

// Client is the archival object-store client. Documents are stored in a
// bucket per namespace (one namespace per deployment environment).
type Client struct {
	client *minio.Client
}

// MustNewClient creates a new object-store client.
func MustNewClient() *Client {
	client, err := minio.New(viper.GetString("s3.endpoint"), &minio.Options{
		Creds: credentials.NewStaticV4(
			os.Getenv("STOREFRONT_S3_ACCESS_KEY"),
			os.Getenv("STOREFRONT_S3_SECRET_KEY"),
			"",
		),
		Secure: viper.GetBool("s3.use_ssl"),
	})
	if err != nil {
		panic(fmt.Sprintf("Failed to create object store client: %v", err))
	}

	return &Client{client: client}
}

// EnsureNamespace creates the bucket if it does not exist yet.
func (c *Client) EnsureNamespace(ctx context.Context, namespace string) error {
	exists, err := c.client.BucketExists(ctx, namespace)
	if err != nil {
		return fmt.Errorf("failed to check bucket %q: %w", namespace, err)
	}
	if exists {
		return nil
	}

	if err := c.client.MakeBucket(ctx, namespace, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("failed to create bucket %q: %w", namespace, err)
	}

	return nil
}

// Upload stores a named binary blob and returns its storage id.
func (c *Client) Upload(ctx context.Context, namespace, filename string, data []byte) (string, error) {
	info, err := c.client.PutObject(
		ctx,
		namespace,
		filename,
		bytes.NewReader(data),
		int64(len(data)),
		minio.PutObjectOptions{ContentType: "application/pdf"},
	)
	if err != nil {
		return "", fmt.Errorf("failed to upload %q to %q: %w", filename, namespace, err)
	}

	return info.Key, nil
}
