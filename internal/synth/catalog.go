// Package synth builds deterministic local stand-ins for backend data.
// Every value it returns is tagged with synthetic provenance.
package synth

import (
	"github.com/vietddude/studyclient/internal/core/domain"
)

var subjects = []domain.Subject{
	{ID: "s1", Name: "Mathematics", Description: "Study of numbers, quantities, and shapes"},
	{ID: "s2", Name: "Physics", Description: "Science of matter, energy, and their interactions"},
	{ID: "s3", Name: "Computer Science", Description: "Study of computation, automation, and information"},
	{ID: "s4", Name: "Biology", Description: "Study of living organisms and their interactions"},
	{ID: "s5", Name: "Chemistry", Description: "Study of substances, their properties, structure, and reactions"},
	{ID: "s6", Name: "History", Description: "Study of past events and human affairs"},
	{ID: "s7", Name: "Literature", Description: "Study of written works with artistic merit"},
}

var topics = []domain.Topic{
	{ID: "t1", Name: "Algebra", Description: "Branch of mathematics dealing with symbols", SubjectID: "s1"},
	{ID: "t2", Name: "Calculus", Description: "Study of continuous change and functions", SubjectID: "s1"},
	{ID: "t3", Name: "Geometry", Description: "Study of shapes, sizes, and properties of space", SubjectID: "s1"},
	{ID: "t4", Name: "Quantum Mechanics", Description: "Theory describing nature at the atomic scale", SubjectID: "s2"},
	{ID: "t5", Name: "Mechanics", Description: "Study of motion and forces", SubjectID: "s2"},
	{ID: "t6", Name: "Data Structures", Description: "Methods of organizing data for efficient access", SubjectID: "s3"},
	{ID: "t7", Name: "Algorithms", Description: "Step-by-step procedures for calculations and problem-solving", SubjectID: "s3"},
	{ID: "t8", Name: "Genetics", Description: "Study of genes, heredity, and genetic variation", SubjectID: "s4"},
	{ID: "t9", Name: "Organic Chemistry", Description: "Study of carbon compounds and their reactions", SubjectID: "s5"},
	{ID: "t10", Name: "World War II", Description: "Global war from 1939 to 1945", SubjectID: "s6"},
	{ID: "t11", Name: "Shakespeare", Description: "Works of William Shakespeare", SubjectID: "s7"},
}

var educationSystems = []domain.EducationSystem{
	{ID: "es1", Name: "K-12 (US)", Description: "United States K-12 education system"},
	{ID: "es2", Name: "IB (International Baccalaureate)", Description: "International education foundation"},
	{ID: "es3", Name: "UK National Curriculum", Description: "United Kingdom education system"},
	{ID: "es4", Name: "Other / Generic", Description: "General educational content not specific to a system"},
}

var grades = []domain.Grade{
	{ID: "g1", Name: "Elementary (Grades 1-5)", EducationSystemID: "es1"},
	{ID: "g2", Name: "Middle School (Grades 6-8)", EducationSystemID: "es1"},
	{ID: "g3", Name: "High School (Grades 9-12)", EducationSystemID: "es1"},
	{ID: "g4", Name: "PYP (Primary Years)", EducationSystemID: "es2"},
	{ID: "g5", Name: "MYP (Middle Years)", EducationSystemID: "es2"},
	{ID: "g6", Name: "DP (Diploma Programme)", EducationSystemID: "es2"},
	{ID: "g7", Name: "Key Stage 1-2 (Primary)", EducationSystemID: "es3"},
	{ID: "g8", Name: "Key Stage 3-4 (Secondary)", EducationSystemID: "es3"},
	{ID: "g9", Name: "A-Levels", EducationSystemID: "es3"},
	{ID: "g10", Name: "Beginner", EducationSystemID: "es4"},
	{ID: "g11", Name: "Intermediate", EducationSystemID: "es4"},
	{ID: "g12", Name: "Advanced", EducationSystemID: "es4"},
}

// Subjects returns the built-in subject catalog.
func Subjects() []domain.Subject {
	out := make([]domain.Subject, len(subjects))
	for i, s := range subjects {
		s.Provenance = domain.ProvenanceSynthetic
		out[i] = s
	}
	return out
}

// Subject looks up a catalog subject by ID.
func Subject(id string) (domain.Subject, bool) {
	for _, s := range Subjects() {
		if s.ID == id {
			return s, true
		}
	}
	return domain.Subject{}, false
}

// Topics returns the catalog topics of subjectID, or all topics when it is empty.
func Topics(subjectID string) []domain.Topic {
	out := make([]domain.Topic, 0, len(topics))
	for _, t := range topics {
		if subjectID != "" && t.SubjectID != subjectID {
			continue
		}
		t.Provenance = domain.ProvenanceSynthetic
		out = append(out, t)
	}
	return out
}

// Topic looks up a catalog topic by ID.
func Topic(id string) (domain.Topic, bool) {
	for _, t := range Topics("") {
		if t.ID == id {
			return t, true
		}
	}
	return domain.Topic{}, false
}

// EducationSystems returns the built-in education systems.
func EducationSystems() []domain.EducationSystem {
	out := make([]domain.EducationSystem, len(educationSystems))
	for i, es := range educationSystems {
		es.Provenance = domain.ProvenanceSynthetic
		out[i] = es
	}
	return out
}

// Grades returns the grades of systemID, or all grades when it is empty.
func Grades(systemID string) []domain.Grade {
	out := make([]domain.Grade, 0, len(grades))
	for _, g := range grades {
		if systemID != "" && g.EducationSystemID != systemID {
			continue
		}
		g.Provenance = domain.ProvenanceSynthetic
		out = append(out, g)
	}
	return out
}
