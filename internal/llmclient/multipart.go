package llmclient

import (
	"bytes"
	"mime/multipart"
)

// MultipartFile is one file part of a multipart upload.
type MultipartFile struct {
	Field    string
	FileName string
	Data     []byte
}

// MultipartBody encodes fields and files as multipart/form-data and returns the
// body and its content type, ready for Request.RawBody/ContentType.
func MultipartBody(fields map[string]string, files ...MultipartFile) ([]byte, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for name, value := range fields {
		if err := w.WriteField(name, value); err != nil {
			return nil, "", err
		}
	}
	for _, f := range files {
		part, err := w.CreateFormFile(f.Field, f.FileName)
		if err != nil {
			return nil, "", err
		}
		if _, err := part.Write(f.Data); err != nil {
			return nil, "", err
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), w.FormDataContentType(), nil
}
