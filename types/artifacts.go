package types

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ArtifactKindCode is the only artifact kind the delimiter grammar produces.
const ArtifactKindCode = "code"

// Artifact is an extracted code block with stable identity, displayed
// separately from the conversational transcript.
//
// ID is assigned at creation and owned by the artifact store afterwards.
// Content grows monotonically while the artifact is being collected and is
// frozen once the end marker is observed.
type Artifact struct {
	ID        string
	Kind      string
	Language  string
	Title     string
	Content   string
	CreatedAt time.Time
}

// NewArtifact mints an empty code artifact for the given language.
func NewArtifact(language string) Artifact {
	return Artifact{
		ID:        uuid.NewString(),
		Kind:      ArtifactKindCode,
		Language:  language,
		Title:     fmt.Sprintf("%s snippet", language),
		CreatedAt: time.Now().UTC(),
	}
}
