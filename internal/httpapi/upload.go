package httpapi

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/mgpai22/subclock/internal/subtitle"
)

const uploadField = "srtFile"

const (
	msgNoFile      = "No file uploaded."
	msgInvalidType = "Invalid file type. Only .srt files are allowed."
)

// client-side upload problem, reported before any parsing happens
type uploadError struct {
	msg string
}

func (e *uploadError) Error() string {
	return e.msg
}

// opens the uploaded SubRip file from a multipart request
func (s *Server) openUpload(w http.ResponseWriter, r *http.Request) (multipart.File, *multipart.FileHeader, error) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes)
	if err := r.ParseMultipartForm(s.maxUploadBytes); err != nil {
		if errors.Is(err, http.ErrNotMultipart) {
			return nil, nil, &uploadError{msg: msgNoFile}
		}
		return nil, nil, &uploadError{msg: fmt.Sprintf("File upload error: %v", err)}
	}

	file, header, err := r.FormFile(uploadField)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, nil, &uploadError{msg: msgNoFile}
		}
		return nil, nil, &uploadError{msg: fmt.Sprintf("File upload error: %v", err)}
	}
	if !subtitle.IsSRTFile(header.Filename) {
		_ = file.Close()
		return nil, nil, &uploadError{msg: msgInvalidType}
	}
	return file, header, nil
}

func readUpload(file multipart.File) (string, error) {
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		return "", fmt.Errorf("error reading upload: %w", err)
	}
	return string(data), nil
}

// maps upload and parse failures onto a status code
func errorStatus(err error) int {
	var ue *uploadError
	switch {
	case errors.As(err, &ue):
		return http.StatusBadRequest
	case subtitle.IsEmptyOrInvalid(err):
		return http.StatusUnprocessableEntity
	case subtitle.IsUpstream(err):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
