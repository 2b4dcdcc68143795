package domain

import "time"

// Progress tracks a user's mastery of one topic.
type Progress struct {
	ID                string    `json:"_id,omitempty"`
	UserID            string    `json:"user_id"`
	TopicID           string    `json:"topic_id"`
	MasteryLevel      float64   `json:"mastery_level"`
	QuestionsAnswered int       `json:"questions_answered"`
	CorrectAnswers    int       `json:"correct_answers"`
	LastAccessed      Timestamp `json:"last_accessed"`
}

// ProgressUpdate is posted after a study session.
type ProgressUpdate struct {
	UserID            string  `json:"user_id"`
	TopicID           string  `json:"topic_id"           validate:"required"`
	MasteryLevel      float64 `json:"mastery_level"      validate:"gte=0,lte=1"`
	QuestionsAnswered int     `json:"questions_answered" validate:"gte=0"`
	CorrectAnswers    int     `json:"correct_answers"    validate:"gte=0,ltefield=QuestionsAnswered"`
}

// Dashboard is the landing view: a few subjects, progress and recent topics.
type Dashboard struct {
	Subjects     []Subject  `json:"subjects"`
	Progress     []Progress `json:"progress"`
	RecentTopics []Topic    `json:"recent_topics"`
}

// CacheEntry is a stored copy of a successful read.
type CacheEntry struct {
	Key      string    `json:"key"`
	Payload  []byte    `json:"payload"`
	StoredAt time.Time `json:"stored_at"`
}
