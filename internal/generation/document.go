package generation

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrMalformed marks a model payload that is not a valid resume document.
var ErrMalformed = errors.New("malformed resume document")

// Document is a schema-validated resume as returned by the model, before
// contact details are merged in at render time.
type Document struct {
	Name           string       `json:"name,omitempty"`
	Summary        string       `json:"summary"`
	Skills         []string     `json:"skills"`
	Experience     []Experience `json:"experience"`
	Education      []Education  `json:"education"`
	Certifications []string     `json:"certifications,omitempty"`
}

// Experience is one work history entry, most recent first.
type Experience struct {
	Title     string   `json:"title"`
	Company   string   `json:"company"`
	Location  string   `json:"location,omitempty"`
	StartDate string   `json:"start_date"`
	EndDate   string   `json:"end_date"`
	Bullets   []string `json:"bullets"`
}

// Education is one degree entry.
type Education struct {
	Degree      string `json:"degree"`
	Institution string `json:"institution"`
	Year        string `json:"year,omitempty"`
	GPA         string `json:"gpa,omitempty"`
}

// ParseDocument extracts the first JSON object from raw model output, decodes
// it and validates it. Every error wraps ErrMalformed.
func ParseDocument(raw string) (Document, error) {
	payload := extractJSONObject(raw)
	if payload == "" {
		return Document{}, fmt.Errorf("%w: no JSON object in response", ErrMalformed)
	}
	var doc Document
	if err := json.Unmarshal([]byte(payload), &doc); err != nil {
		return Document{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if err := doc.Validate(); err != nil {
		return Document{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return doc, nil
}

// Validate checks that every required field is present and non-empty.
func (d *Document) Validate() error {
	if d == nil {
		return errors.New("document is nil")
	}
	if strings.TrimSpace(d.Summary) == "" {
		return errors.New("summary is required")
	}
	if len(d.Skills) == 0 {
		return errors.New("skills must not be empty")
	}
	for i, s := range d.Skills {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("skills[%d] is empty", i)
		}
	}
	if len(d.Experience) == 0 {
		return errors.New("experience must not be empty")
	}
	for i, e := range d.Experience {
		switch {
		case strings.TrimSpace(e.Title) == "":
			return fmt.Errorf("experience[%d].title is required", i)
		case strings.TrimSpace(e.Company) == "":
			return fmt.Errorf("experience[%d].company is required", i)
		case strings.TrimSpace(e.StartDate) == "":
			return fmt.Errorf("experience[%d].start_date is required", i)
		case strings.TrimSpace(e.EndDate) == "":
			return fmt.Errorf("experience[%d].end_date is required", i)
		case len(e.Bullets) == 0:
			return fmt.Errorf("experience[%d].bullets must not be empty", i)
		}
	}
	if d.Education == nil {
		return errors.New("education is required")
	}
	for i, e := range d.Education {
		if strings.TrimSpace(e.Degree) == "" || strings.TrimSpace(e.Institution) == "" {
			return fmt.Errorf("education[%d] requires degree and institution", i)
		}
	}
	return nil
}

// extractJSONObject trims prose or code fences around the first JSON object.
func extractJSONObject(s string) string {
	raw := strings.TrimSpace(s)
	start := strings.Index(raw, "{")
	if start < 0 {
		return ""
	}
	dec := json.NewDecoder(strings.NewReader(raw[start:]))
	var obj json.RawMessage
	if err := dec.Decode(&obj); err != nil {
		end := strings.LastIndex(raw, "}")
		if end <= start {
			return ""
		}
		return raw[start : end+1]
	}
	return string(obj)
}
