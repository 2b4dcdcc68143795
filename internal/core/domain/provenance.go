package domain

// Provenance records where a value came from.
type Provenance string

const (
	ProvenanceReal        Provenance = "real"        // served by the primary or an alternate backend endpoint
	ProvenanceRegenerated Provenance = "regenerated" // produced by asking the backend to regenerate
	ProvenanceCached      Provenance = "cached"      // last-known-good copy of an earlier real response
	ProvenanceSynthetic   Provenance = "synthetic"   // generated locally, never seen by the backend
)

// IsSynthetic reports whether the value was fabricated locally.
func (p Provenance) IsSynthetic() bool {
	return p == ProvenanceSynthetic
}

// IsBackend reports whether the value came from a live backend response.
func (p Provenance) IsBackend() bool {
	return p == ProvenanceReal || p == ProvenanceRegenerated
}
