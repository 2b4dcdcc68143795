package domain

// Section types used by generated study sheets.
const (
	SectionExplanation  = "explanation"
	SectionCoreConcepts = "core_concepts"
	SectionPractice     = "practice"
	SectionResources    = "resources"
)

// StudySheet is a generated, personalised summary of a topic.
type StudySheet struct {
	Title           string     `json:"title"`
	TopicID         string     `json:"topic_id"`
	TopicName       string     `json:"topic_name"`
	Sections        []Section  `json:"sections"`
	DifficultyLevel float64    `json:"difficulty_level"`
	CreatedAt       Timestamp  `json:"created_at"`
	Username        string     `json:"username,omitempty"`
	Provenance      Provenance `json:"provenance,omitempty"`
}

// Section is one titled block of a study sheet, rendered as markdown.
type Section struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	Type    string `json:"type"`
}

// GenerateRequest carries the customisation options for a study sheet.
type GenerateRequest struct {
	TopicID         string  `json:"topic_id"         validate:"required"`
	KnowledgeLevel  float64 `json:"knowledge_level"  validate:"gte=1,lte=10"`
	EducationSystem string  `json:"education_system,omitempty"`
	Grade           string  `json:"grade,omitempty"`
	AdditionalInfo  string  `json:"additional_info,omitempty" validate:"max=2000"`
	UseTextbooks    bool    `json:"use_textbooks"`
}

// Question is a generated practice question.
type Question struct {
	ID            string   `json:"_id,omitempty"`
	TopicID       string   `json:"topic_id"`
	Text          string   `json:"text"`
	Options       []string `json:"options,omitempty"`
	CorrectAnswer string   `json:"correct_answer"`
	Explanation   string   `json:"explanation"`
	Difficulty    float64  `json:"difficulty,omitempty"`
}

// QuestionRequest asks the backend for practice questions on a topic.
type QuestionRequest struct {
	TopicID      string `json:"topic_id"      validate:"required"`
	NumQuestions int    `json:"num_questions" validate:"gte=1,lte=20"`
}
