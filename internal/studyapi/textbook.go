package studyapi

import (
	"context"
	"net/http"
	"net/url"

	"github.com/vietddude/studyclient/internal/core/domain"
	"github.com/vietddude/studyclient/internal/infra/api"
	"github.com/vietddude/studyclient/internal/resolve"
	"github.com/vietddude/studyclient/internal/synth"
)

func uploadRequest(path string, up domain.TextbookUpload, auth bool) api.Request {
	return api.Request{
		Method:   http.MethodPost,
		Path:     path,
		Encoding: api.EncodingMultipart,
		Fields: url.Values{
			"title":       {up.Title},
			"subject":     {up.Subject},
			"grade":       {up.Grade},
			"description": {up.Description},
		},
		Files: []api.File{{Field: "file", Name: up.FileName, Open: up.Open}},
		Auth:  auth,
	}
}

func (c *Client) uploadTextbookOperation() *resolve.Builder[domain.TextbookUpload, domain.Textbook] {
	upload := func(path string, auth bool) resolve.ExecuteFunc[domain.TextbookUpload, domain.Textbook] {
		return func(ctx context.Context, up domain.TextbookUpload) (domain.Textbook, error) {
			tb, err := call[domain.Textbook](ctx, c.transport, uploadRequest(path, up, auth))
			if tb.Filename == "" {
				tb.Filename = up.FileName
			}
			tb.Provenance = domain.ProvenanceReal
			return tb, err
		}
	}
	return operation[domain.TextbookUpload, domain.Textbook](c, OpUploadTextbook).
		Strategy("upload", domain.ProvenanceReal, upload("/api/textbooks/upload", true)).
		Strategy("test-upload", domain.ProvenanceReal, upload("/api/test/textbooks/upload", false)).
		Synthesize(func(_ context.Context, up domain.TextbookUpload) domain.Textbook {
			return synth.ProcessedTextbook(up, c.now())
		})
}

// UploadTextbook sends a textbook for processing. When neither upload
// endpoint accepts it the result is a synthetic record; check
// Result.Synthetic before telling the user the upload was stored.
func (c *Client) UploadTextbook(ctx context.Context, up domain.TextbookUpload) (resolve.Result[domain.Textbook], error) {
	if err := c.check(up); err != nil {
		return resolve.Result[domain.Textbook]{}, err
	}
	if up.Open == nil {
		return resolve.Result[domain.Textbook]{}, resolve.Invalid(errRequired("file content"))
	}
	return c.uploadTextbook.Resolve(ctx, up)
}
