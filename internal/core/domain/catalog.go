package domain

// Subject is a top-level area of study (Mathematics, Physics, ...).
type Subject struct {
	ID          string         `json:"_id"`
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Source      string         `json:"source,omitempty"` // content origin reported by the backend, e.g. "EduAI"
	Metadata    map[string]any `json:"metadata,omitempty"`
	Provenance  Provenance     `json:"provenance,omitempty"`
}

// Topic belongs to a subject.
type Topic struct {
	ID            string     `json:"_id"`
	Name          string     `json:"name"`
	Description   string     `json:"description,omitempty"`
	SubjectID     string     `json:"subject_id"`
	Difficulty    float64    `json:"difficulty,omitempty"`
	Prerequisites []string   `json:"prerequisites,omitempty"`
	SourceURL     string     `json:"source_url,omitempty"`
	Provenance    Provenance `json:"provenance,omitempty"`
}

// Content is a unit of learning material attached to a topic.
type Content struct {
	ID         string     `json:"_id"`
	TopicID    string     `json:"topic_id"`
	Type       string     `json:"type"` // explanation, example, resource, ...
	Title      string     `json:"title"`
	Body       string     `json:"body"`
	Difficulty float64    `json:"difficulty,omitempty"`
	KeyTerms   []string   `json:"key_terms,omitempty"`
	SourceURL  string     `json:"source_url,omitempty"`
	Provenance Provenance `json:"provenance,omitempty"`
}

// EducationSystem is a curriculum family used to tune generated sheets.
type EducationSystem struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	Provenance  Provenance `json:"provenance,omitempty"`
}

// Grade is a level within an education system.
type Grade struct {
	ID                string     `json:"id"`
	Name              string     `json:"name"`
	EducationSystemID string     `json:"education_system_id"`
	Provenance        Provenance `json:"provenance,omitempty"`
}

// FilterTopics returns the topics that belong to subjectID.
// An empty subjectID matches every topic.
func FilterTopics(topics []Topic, subjectID string) []Topic {
	if subjectID == "" {
		return topics
	}
	out := make([]Topic, 0, len(topics))
	for _, t := range topics {
		if t.SubjectID == subjectID {
			out = append(out, t)
		}
	}
	return out
}
