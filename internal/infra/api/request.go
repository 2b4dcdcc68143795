package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/url"
	"strings"
)

// Encoding selects how a request body is written.
type Encoding int

const (
	EncodingNone      Encoding = iota
	EncodingJSON               // Body marshalled as JSON
	EncodingMultipart          // Fields and Files as multipart/form-data
	EncodingForm               // Fields as application/x-www-form-urlencoded
)

// File is a multipart file part. Open is called every time the body is built.
type File struct {
	Field string
	Name  string
	Open  func() (io.ReadCloser, error)
}

// Request describes one backend call.
type Request struct {
	Method   string
	Path     string
	Endpoint string // monitor key, defaults to "METHOD path"
	Query    url.Values
	Encoding Encoding
	Body     any
	Fields   url.Values
	Files    []File
	Auth     bool // send the stored bearer token
}

func (r Request) endpoint() string {
	if r.Endpoint != "" {
		return r.Endpoint
	}
	return r.Method + " " + r.Path
}

func (r Request) op() string {
	return r.Method + " " + r.Path
}

// body builds a fresh request body and its content type.
func (r Request) body() (io.Reader, string, error) {
	switch r.Encoding {
	case EncodingNone:
		return nil, "", nil

	case EncodingJSON:
		data, err := json.Marshal(r.Body)
		if err != nil {
			return nil, "", fmt.Errorf("marshal request: %w", err)
		}
		return bytes.NewReader(data), "application/json", nil

	case EncodingForm:
		return strings.NewReader(r.Fields.Encode()), "application/x-www-form-urlencoded", nil

	case EncodingMultipart:
		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		for key, values := range r.Fields {
			for _, v := range values {
				if err := mw.WriteField(key, v); err != nil {
					return nil, "", fmt.Errorf("write field %s: %w", key, err)
				}
			}
		}
		for _, f := range r.Files {
			if err := writeFile(mw, f); err != nil {
				return nil, "", err
			}
		}
		if err := mw.Close(); err != nil {
			return nil, "", fmt.Errorf("close multipart: %w", err)
		}
		return &buf, mw.FormDataContentType(), nil

	default:
		return nil, "", fmt.Errorf("unknown encoding %d", r.Encoding)
	}
}

func writeFile(mw *multipart.Writer, f File) error {
	if f.Open == nil {
		return fmt.Errorf("file %s has no content", f.Name)
	}
	rc, err := f.Open()
	if err != nil {
		return fmt.Errorf("open %s: %w", f.Name, err)
	}
	defer rc.Close()

	part, err := mw.CreateFormFile(f.Field, f.Name)
	if err != nil {
		return fmt.Errorf("create part %s: %w", f.Name, err)
	}
	if _, err := io.Copy(part, rc); err != nil {
		return fmt.Errorf("copy %s: %w", f.Name, err)
	}
	return nil
}

// parseDetail extracts the backend's error message. The backend answers
// {"detail": "..."} or, for validation errors, {"detail": [{"msg": "...", "loc": [...]}]}.
func parseDetail(body []byte) string {
	var payload struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &payload); err != nil || len(payload.Detail) == 0 {
		text := strings.TrimSpace(string(body))
		if len(text) > 200 {
			text = text[:200]
		}
		if strings.HasPrefix(text, "<") || strings.HasPrefix(text, "{") {
			return ""
		}
		return text
	}

	var s string
	if err := json.Unmarshal(payload.Detail, &s); err == nil {
		return s
	}

	var items []struct {
		Msg string `json:"msg"`
		Loc []any  `json:"loc"`
	}
	if err := json.Unmarshal(payload.Detail, &items); err == nil {
		msgs := make([]string, 0, len(items))
		for _, it := range items {
			if it.Msg == "" {
				continue
			}
			if len(it.Loc) > 0 {
				msgs = append(msgs, fmt.Sprintf("%v: %s", it.Loc[len(it.Loc)-1], it.Msg))
			} else {
				msgs = append(msgs, it.Msg)
			}
		}
		return strings.Join(msgs, "; ")
	}

	return string(payload.Detail)
}
