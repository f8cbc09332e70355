package photo

import (
	"time"

	"github.com/google/uuid"
)

// Photo is one stored upload: the blob's storage name plus its tagging metadata.
// Records are created once and never updated or deleted.
type Photo struct {
	ID            uuid.UUID `json:"id"`
	Filename      string    `json:"filename"`
	AnimalName    string    `json:"animal_name"`
	SanctuaryName string    `json:"sanctuary_name"`
	UploadDate    time.Time `json:"upload_date"`
}

// View is the listing projection returned by the /photos and /search endpoints.
type View struct {
	Filename      string  `json:"filename"`
	AnimalName    string  `json:"animal_name"`
	SanctuaryName string  `json:"sanctuary_name"`
	UploadDate    *string `json:"upload_date"`
	URL           string  `json:"url"`
}
