package batch

import (
	"os"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
)

// S3Sink optionally mirrors every converted document to an S3 bucket,
// keyed by its path relative to the batch output root. This is an
// optional CLI add-on (spec §6 lists no persisted state beyond the output
// document itself; a sink is an explicit opt-in, not a requirement).
type S3Sink struct {
	Bucket   string
	KeyPrefix string
	uploader *s3manager.Uploader
}

// NewS3Sink builds a sink from the default AWS session (environment/
// shared-config credentials, matching the CLI's no-extra-flags-for-auth
// posture).
func NewS3Sink(bucket, keyPrefix string) (*S3Sink, error) {
	sess, err := session.NewSession()
	if err != nil {
		return nil, err
	}
	return &S3Sink{
		Bucket:    bucket,
		KeyPrefix: keyPrefix,
		uploader:  s3manager.NewUploader(sess),
	}, nil
}

// Upload reads localPath and puts it to the bucket under KeyPrefix+key.
func (s *S3Sink) Upload(localPath, key string) error {
	f, err := os.Open(localPath)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = s.uploader.Upload(&s3manager.UploadInput{
		Bucket: aws.String(s.Bucket),
		Key:    aws.String(s.KeyPrefix + key),
		Body:   f,
	})
	return err
}
