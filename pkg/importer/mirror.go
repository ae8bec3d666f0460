package importer

import (
	"io"
	"os"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"

	"github.com/zots0127/codepoint/pkg/config"
)

// Mirror keeps a copy of the staged archive in an S3-compatible bucket
// under the same fixed key, so a host with a lost working directory can
// still run --use-previous.
type Mirror struct {
	svc    *s3.S3
	bucket string
}

func NewMirror(cfg config.S3Config) (*Mirror, error) {
	sess, err := session.NewSession(&aws.Config{
		Endpoint:         aws.String(cfg.Endpoint),
		Region:           aws.String(cfg.Region),
		Credentials:      credentials.NewStaticCredentials(cfg.AccessKey, cfg.SecretKey, ""),
		S3ForcePathStyle: aws.Bool(true),
	})
	if err != nil {
		return nil, err
	}
	return &Mirror{svc: s3.New(sess), bucket: cfg.Bucket}, nil
}

// Put uploads the staged archive.
func (m *Mirror) Put(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = m.svc.PutObject(&s3.PutObjectInput{
		Bucket:      aws.String(m.bucket),
		Key:         aws.String(ArchiveKey),
		Body:        f,
		ContentType: aws.String("application/zip"),
	})
	return err
}

// Restore downloads the mirrored archive back to path.
func (m *Mirror) Restore(path string) error {
	out, err := m.svc.GetObject(&s3.GetObjectInput{
		Bucket: aws.String(m.bucket),
		Key:    aws.String(ArchiveKey),
	})
	if err != nil {
		return err
	}
	defer out.Body.Close()

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = io.Copy(f, out.Body)
	return err
}
