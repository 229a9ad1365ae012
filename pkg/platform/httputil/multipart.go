package httputil

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"

	dErrors "confessional/pkg/domain-errors"
)

// multipartMemory is how much of a form is buffered before spilling to disk.
const multipartMemory = 1 << 20

// Upload is a single file part read fully into memory.
type Upload struct {
	Data        []byte
	ContentType string
	Filename    string
}

// ParseMultipart parses a multipart form. A body over the BodyLimit cap maps
// to SizeExceeded; any other parse failure is a bad request.
func ParseMultipart(r *http.Request) error {
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		return uploadError(err)
	}
	return nil
}

// FormFile reads the named part. A missing part returns (nil, nil) so callers
// decide whether the file is optional.
func FormFile(r *http.Request, field string) (*Upload, error) {
	file, header, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, uploadError(err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, uploadError(err)
	}
	return &Upload{
		Data:        data,
		ContentType: partContentType(header),
		Filename:    header.Filename,
	}, nil
}

func partContentType(header *multipart.FileHeader) string {
	if header == nil {
		return ""
	}
	return header.Header.Get("Content-Type")
}

func uploadError(err error) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return dErrors.New(dErrors.CodeSizeExceeded, "request body is too large")
	}
	return dErrors.Wrap(err, dErrors.CodeBadRequest, "invalid multipart form")
}
