package server

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/goliatone/go-intake/pkg/field"
	"github.com/goliatone/go-intake/pkg/storage"
)

var errFileTooLarge = errors.New("server: uploaded file exceeds the size limit")

// formInput reads url-encoded or multipart bodies into a field.Input.
// Uploaded files are read fully; each is capped at storage.MaxObjectSize.
// The request body as a whole is capped by the BodyLimit middleware.
func formInput(c echo.Context) (field.MapInput, error) {
	if strings.HasPrefix(c.Request().Header.Get(echo.HeaderContentType), echo.MIMEMultipartForm) {
		mf, err := c.MultipartForm()
		if err != nil {
			return field.MapInput{}, fmt.Errorf("server: parse multipart form: %w", err)
		}
		in := field.MapInput{Values: mf.Value}
		for name, headers := range mf.File {
			if len(headers) == 0 {
				continue
			}
			attachment, err := readAttachment(headers[0])
			if err != nil {
				return field.MapInput{}, err
			}
			if attachment == nil {
				continue
			}
			if in.Files == nil {
				in.Files = make(map[string]*field.Attachment)
			}
			in.Files[name] = attachment
		}
		return in, nil
	}

	values, err := c.FormParams()
	if err != nil {
		return field.MapInput{}, fmt.Errorf("server: parse form: %w", err)
	}
	return field.MapInput{Values: values}, nil
}

func readAttachment(header *multipart.FileHeader) (*field.Attachment, error) {
	if header.Size == 0 && header.Filename == "" {
		return nil, nil
	}
	if header.Size > storage.MaxObjectSize {
		return nil, errFileTooLarge
	}
	f, err := header.Open()
	if err != nil {
		return nil, fmt.Errorf("server: open upload %q: %w", header.Filename, err)
	}
	defer func() { _ = f.Close() }()

	data, err := io.ReadAll(io.LimitReader(f, storage.MaxObjectSize+1))
	if err != nil {
		return nil, fmt.Errorf("server: read upload %q: %w", header.Filename, err)
	}
	if int64(len(data)) > storage.MaxObjectSize {
		return nil, errFileTooLarge
	}
	if len(data) == 0 {
		return nil, nil
	}

	contentType := header.Header.Get(echo.HeaderContentType)
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = http.DetectContentType(data)
	}
	return &field.Attachment{
		FileName:    header.Filename,
		ContentType: contentType,
		Data:        data,
	}, nil
}
