package synth

import (
	"hash/fnv"
	"time"

	"github.com/google/uuid"

	"github.com/vietddude/studyclient/internal/core/domain"
)

// textbookNamespace scopes the name-based IDs of offline textbook records.
var textbookNamespace = uuid.MustParse("6f1c9a8e-4b7d-4c52-9a0e-3d5f2b8c7e14")

// ProcessedTextbook builds the record shown when no upload endpoint accepted the file.
// The same upload always yields the same ID and page count.
func ProcessedTextbook(up domain.TextbookUpload, now time.Time) domain.Textbook {
	seed := up.Title + "\x00" + up.Subject + "\x00" + up.Grade + "\x00" + up.FileName

	h := fnv.New32a()
	_, _ = h.Write([]byte(up.FileName))

	return domain.Textbook{
		ID:             uuid.NewSHA1(textbookNamespace, []byte(seed)).String(),
		Title:          up.Title,
		Subject:        up.Subject,
		Grade:          up.Grade,
		Description:    up.Description,
		Filename:       up.FileName,
		UploadedAt:     domain.NewTimestamp(now),
		PagesProcessed: 20 + int(h.Sum32()%100),
		Status:         domain.TextbookProcessed,
		Provenance:     domain.ProvenanceSynthetic,
	}
}
