package synth

import (
	"fmt"
	"strings"
	"time"

	"github.com/vietddude/studyclient/internal/core/domain"
)

const defaultDifficulty = 5

var algebraSections = []domain.Section{
	{
		Title: "Introduction to Algebra",
		Type:  domain.SectionExplanation,
		Content: "Algebra is a branch of mathematics dealing with symbols and the rules for manipulating these symbols. " +
			"In elementary algebra, those symbols represent quantities without fixed values, known as variables. " +
			"The rules for manipulating these symbols are derived from the properties of numbers and operations.\n\n" +
			"The fundamental concept in algebra is the variable, a symbol (usually a letter) that represents an unspecified number. " +
			"By using variables, algebraic expressions can describe operations that can be performed on any number, not just on specific values.\n\n" +
			"Algebra provides a concise way to represent mathematical relationships and solve problems involving unknown quantities.",
	},
	{
		Title: "Core Concepts in Algebra",
		Type:  domain.SectionCoreConcepts,
		Content: "**Variables and Constants**\nVariables are symbols (like x, y, z) that represent unknown values, while constants are fixed values (like 5, -3, π).\n\n" +
			"**Algebraic Expressions**\nCombinations of variables, constants, and operations (like 3x + 5y, 2a² - 7b + 4).\n\n" +
			"**Equations**\nStatements asserting that two expressions are equal (like x + 5 = 10).\n\n" +
			"**Functions**\nRules that assign exactly one output to each input (like f(x) = 2x + 3).\n\n" +
			"**Polynomials**\nExpressions consisting of variables and coefficients using only addition, subtraction, multiplication, and non-negative integer exponents (like x² + 3x - 7).",
	},
	{
		Title: "Solving Linear Equations",
		Type:  domain.SectionExplanation,
		Content: "Linear equations are equations where each term is either a constant or the product of a constant and a single variable raised to the power of 1.\n\n" +
			"**Steps to Solve Linear Equations:**\n\n" +
			"1. **Simplify** both sides of the equation by combining like terms.\n" +
			"2. **Use addition or subtraction** to isolate the variable terms on one side of the equation.\n" +
			"3. **Use multiplication or division** to isolate the variable.\n" +
			"4. **Check your solution** by substituting it back into the original equation.\n\n" +
			"**Example:**\nSolve for x in 3x + 5 = 20\n\n" +
			"Step 1: No like terms to combine\n\n" +
			"Step 2: Subtract 5 from both sides\n3x + 5 - 5 = 20 - 5\n3x = 15\n\n" +
			"Step 3: Divide both sides by 3\n3x/3 = 15/3\nx = 5\n\n" +
			"Step 4: Check: 3(5) + 5 = 15 + 5 = 20 ✓\n\n" +
			"Therefore, x = 5 is the solution.",
	},
	{
		Title: "Practice Problems",
		Type:  domain.SectionPractice,
		Content: "1. Solve for x: 2x - 7 = 15\n" +
			"2. Solve for y: 4y + 10 = -10\n" +
			"3. Solve for z: 3z/4 - 2 = 10\n" +
			"4. If 5x + 3 = 18, what is the value of 2x - 1?\n" +
			"5. Solve for a: 7 - 2a = 4a + 21",
	},
	{
		Title: "Additional Resources",
		Type:  domain.SectionResources,
		Content: "- Khan Academy: [Algebra I Course](https://www.khanacademy.org/math/algebra)\n" +
			"- Purplemath: [Algebra Lessons](https://www.purplemath.com/modules/index.htm)\n" +
			"- Wolfram Alpha: [Algebra Calculator](https://www.wolframalpha.com/)\n" +
			"- MIT OpenCourseWare: [Algebra](https://ocw.mit.edu/courses/mathematics/)",
	},
}

// StudySheet builds an offline study sheet for topicID. Unknown topics get the
// Algebra guide, keyed to the requested topic ID.
func StudySheet(topicID string, now time.Time) domain.StudySheet {
	if topicID == "" {
		topicID = "t1"
	}
	name := "Algebra"
	sections := algebraSections
	if t, ok := Topic(topicID); ok && t.Name != "Algebra" {
		name = t.Name
		sections = genericSections(t)
	}

	return domain.StudySheet{
		Title:           "Comprehensive Study Guide: " + name,
		TopicID:         topicID,
		TopicName:       name,
		Sections:        append([]domain.Section(nil), sections...),
		DifficultyLevel: defaultDifficulty,
		CreatedAt:       domain.NewTimestamp(now),
		Provenance:      domain.ProvenanceSynthetic,
	}
}

func genericSections(t domain.Topic) []domain.Section {
	return []domain.Section{
		{
			Title:   "Introduction to " + t.Name,
			Type:    domain.SectionExplanation,
			Content: fmt.Sprintf("%s: %s.\n\nThis guide was prepared offline and covers the essentials of the topic.", t.Name, t.Description),
		},
		{
			Title:   "Core Concepts in " + t.Name,
			Type:    domain.SectionCoreConcepts,
			Content: fmt.Sprintf("**Key Terms**\nReview the vocabulary used in %s before moving on.\n\n**Foundations**\nIdentify the principles the rest of the topic builds on.", t.Name),
		},
		{
			Title:   "Working Through " + t.Name,
			Type:    domain.SectionExplanation,
			Content: "1. **Read** the introduction and list unfamiliar terms.\n2. **Summarise** each core concept in one sentence.\n3. **Apply** the concepts to a worked example.\n4. **Review** what you could not explain without notes.",
		},
		{
			Title:   "Practice Problems",
			Type:    domain.SectionPractice,
			Content: fmt.Sprintf("1. Explain the main idea of %s in your own words.\n2. Give one real-world example related to %s.\n3. List three questions you still have about %s.", t.Name, t.Name, t.Name),
		},
		{
			Title:   "Additional Resources",
			Type:    domain.SectionResources,
			Content: "- Khan Academy: [Courses](https://www.khanacademy.org/)\n- MIT OpenCourseWare: [Courses](https://ocw.mit.edu/)",
		},
	}
}

// Contents derives content items from the sections of an offline study sheet.
func Contents(topicID, contentType string) []domain.Content {
	sheet := StudySheet(topicID, time.Time{})
	out := make([]domain.Content, 0, len(sheet.Sections))
	for i, s := range sheet.Sections {
		if contentType != "" && s.Type != contentType {
			continue
		}
		out = append(out, domain.Content{
			ID:         fmt.Sprintf("%s-c%d", sheet.TopicID, i+1),
			TopicID:    sheet.TopicID,
			Type:       s.Type,
			Title:      s.Title,
			Body:       s.Content,
			Difficulty: defaultDifficulty,
			Provenance: domain.ProvenanceSynthetic,
		})
	}
	return out
}

// Content looks up one offline content item by the ID Contents assigns.
// Unknown IDs get the first item of the t1 topic under the requested ID.
func Content(id string) domain.Content {
	if i := strings.LastIndex(id, "-c"); i > 0 {
		for _, c := range Contents(id[:i], "") {
			if c.ID == id {
				return c
			}
		}
	}
	c := Contents("t1", "")[0]
	c.ID = id
	return c
}

// Recommendations picks up to limit offline contents: the sections of one
// topic when topicID is set, otherwise the introduction of each catalog topic.
func Recommendations(topicID string, limit int) []domain.Content {
	var out []domain.Content
	if topicID != "" {
		out = Contents(topicID, "")
	} else {
		for _, t := range Topics("") {
			if items := Contents(t.ID, domain.SectionExplanation); len(items) > 0 {
				out = append(out, items[0])
			}
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
