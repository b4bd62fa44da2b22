package lifecycle

import (
	"fmt"
	"os"
)

// StorageLocation addresses one object version in the artifact store.
type StorageLocation struct {
	Bucket  string `json:"S3Bucket" yaml:"S3Bucket"`
	Key     string `json:"S3Key" yaml:"S3Key"`
	Version string `json:"S3ObjectVersion,omitempty" yaml:"S3ObjectVersion,omitempty"`
}

// IsZero reports whether no location was declared.
func (l StorageLocation) IsZero() bool {
	return l.Bucket == "" && l.Key == ""
}

// Validate checks that the location can be fetched.
func (l StorageLocation) Validate() error {
	if l.Bucket == "" {
		return ErrBucketRequired
	}
	if l.Key == "" {
		return ErrKeyRequired
	}
	return nil
}

func (l StorageLocation) String() string {
	if l.Version != "" {
		return fmt.Sprintf("s3://%s/%s?versionId=%s", l.Bucket, l.Key, l.Version)
	}
	return fmt.Sprintf("s3://%s/%s", l.Bucket, l.Key)
}

// Definition is the declared desired state of one API.
type Definition struct {
	Location  StorageLocation   `json:"Definition" yaml:"Definition"`
	Variables map[string]string `json:"Variables,omitempty" yaml:"Variables,omitempty"`
	StageName string            `json:"StageName,omitempty" yaml:"StageName,omitempty"`
}

// Artifact is a fetched definition with its placeholders substituted and
// materialized on local disk for the importer.
type Artifact struct {
	// Path is the materialized document.
	Path string
	// Dir is the per-invocation directory holding Path.
	Dir      string
	Document []byte
	// Title is the API name declared in the document (info.title).
	Title string
}

// Cleanup removes the artifact's working directory.
func (a *Artifact) Cleanup() error {
	if a == nil || a.Dir == "" {
		return nil
	}
	return os.RemoveAll(a.Dir)
}
