package domain

import "io"

// Textbook statuses reported by the backend.
const (
	TextbookProcessing = "processing"
	TextbookProcessed  = "processed"
)

// TextbookUpload describes a file to send to the textbook endpoint.
// Open is called once per attempt so retries resend the whole file.
type TextbookUpload struct {
	Title       string `validate:"required,max=200"`
	Subject     string `validate:"required"`
	Grade       string `validate:"required"`
	Description string `validate:"max=2000"`
	FileName    string `validate:"required,textbook_ext"`
	Open        func() (io.ReadCloser, error)
}

// Textbook is the record returned after an upload.
type Textbook struct {
	ID             string     `json:"id"`
	Title          string     `json:"title"`
	Subject        string     `json:"subject"`
	Grade          string     `json:"grade"`
	Description    string     `json:"description,omitempty"`
	Filename       string     `json:"filename"`
	UploadedAt     Timestamp  `json:"uploaded_at"`
	PagesProcessed int        `json:"pages_processed"`
	Status         string     `json:"status"`
	Provenance     Provenance `json:"provenance,omitempty"`
}
