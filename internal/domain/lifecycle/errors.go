package lifecycle

import "errors"

// Domain errors
var (
	ErrPropertiesRequired = errors.New("resource properties are required")
	ErrBucketRequired     = errors.New("definition S3Bucket is required")
	ErrKeyRequired        = errors.New("definition S3Key is required")
	ErrInvalidCommand     = errors.New("invalid command: must be Create, Update or Delete")
	ErrTitleRequired      = errors.New("definition has no info.title")
)
