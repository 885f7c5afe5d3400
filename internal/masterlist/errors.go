package masterlist

import "errors"

var (
	errTrailingData          = errors.New("trailing data after DER structure")
	errUnsupportedContentType = errors.New("unsupported ContentInfo contentType, expected signedData")
	errEmptyInput            = errors.New("empty input")
)
