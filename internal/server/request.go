package server

import (
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/jonathan/interview-agent/internal/artifacts"
	"github.com/jonathan/interview-agent/internal/server/middleware"
	"github.com/jonathan/interview-agent/internal/types"
)

const (
	// maxJSONBody caps JSON request bodies.
	maxJSONBody = 1 << 20
	// multipartMemory is how much of a multipart form is held in memory;
	// the rest spills to temporary files.
	multipartMemory = 8 << 20
	// formOverhead allows for the non-file fields of an upload form.
	formOverhead = 1 << 20
)

// decodeJSON reads a JSON body into v and validates it.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	return decode(w, r, v, false)
}

// decodeOptionalJSON is decodeJSON for endpoints whose body may be empty.
func decodeOptionalJSON(w http.ResponseWriter, r *http.Request, v any) error {
	return decode(w, r, v, true)
}

func decode(w http.ResponseWriter, r *http.Request, v any, optional bool) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxErr):
			return err
		case optional && errors.Is(err, io.EOF):
		default:
			return &types.ValidationError{Message: "invalid request body"}
		}
	}
	return types.ValidateStruct(v)
}

// pathID parses the UUID path value name.
func pathID(r *http.Request, name, resource string) (uuid.UUID, error) {
	id, err := uuid.Parse(r.PathValue(name))
	if err != nil {
		return uuid.Nil, &types.ValidationError{Field: name, Message: "invalid " + resource + " ID"}
	}
	return id, nil
}

// queryID parses an optional UUID query parameter.
func queryID(r *http.Request, name string) (*uuid.UUID, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, &types.ValidationError{Field: name, Message: "must be a UUID"}
	}
	return &id, nil
}

// company returns the authenticated company, writing a 401 when absent.
func company(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	companyID, err := companyFromContext(r)
	if err != nil {
		errorResponse(w, http.StatusUnauthorized, "unauthorized")
		return uuid.Nil, false
	}
	return companyID, true
}

func companyFromContext(r *http.Request) (uuid.UUID, error) {
	companyID, err := middleware.GetCompanyID(r)
	if err != nil {
		return uuid.Nil, &types.UnauthorizedError{}
	}
	return companyID, nil
}

// isMultipart reports whether the request carries a multipart form.
func isMultipart(r *http.Request) bool {
	return strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data")
}

// parseUploadForm parses a multipart form whose files may total limit bytes.
func parseUploadForm(w http.ResponseWriter, r *http.Request, limit int64) error {
	r.Body = http.MaxBytesReader(w, r.Body, limit+formOverhead)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return &artifacts.TooLargeError{Limit: limit}
		}
		return &types.ValidationError{Message: "expected a multipart form"}
	}
	return nil
}

// formFile opens the uploaded file in field of an already parsed form.
func formFile(r *http.Request, field string, limit int64) (multipart.File, *multipart.FileHeader, error) {
	file, header, err := r.FormFile(field)
	if err != nil {
		return nil, nil, &types.ValidationError{Field: field, Message: "file is required"}
	}
	if header.Size > limit {
		_ = file.Close()
		return nil, nil, &artifacts.TooLargeError{Limit: limit}
	}
	return file, header, nil
}

// readFormFile reads the whole uploaded file in field.
func readFormFile(r *http.Request, field string, limit int64) ([]byte, string, error) {
	file, header, err := formFile(r, field, limit)
	if err != nil {
		return nil, "", err
	}
	defer func() { _ = file.Close() }()

	data, err := io.ReadAll(io.LimitReader(file, limit+1))
	if err != nil {
		return nil, "", err
	}
	if int64(len(data)) > limit {
		return nil, "", &artifacts.TooLargeError{Limit: limit}
	}
	return data, header.Filename, nil
}
