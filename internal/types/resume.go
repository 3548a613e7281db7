package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// WorkEntry is one position from a candidate's work history.
type WorkEntry struct {
	Title       string     `json:"title"`
	Company     string     `json:"company"`
	StartDate   FlexString `json:"start_date,omitempty"`
	EndDate     FlexString `json:"end_date,omitempty"`
	Description string     `json:"description,omitempty"`
}

// EducationEntry is one degree or certification.
type EducationEntry struct {
	Degree      string     `json:"degree"`
	Institution string     `json:"institution"`
	Year        FlexString `json:"year,omitempty"`
}

// Skills groups a candidate's technical and soft skills.
type Skills struct {
	Technical []string `json:"technical"`
	Soft      []string `json:"soft"`
}

// ResumeProfile is the structured form of a resume.
type ResumeProfile struct {
	Name           string           `json:"name"`
	Email          string           `json:"email"`
	Phone          string           `json:"phone"`
	Location       string           `json:"location"`
	ResumeText     string           `json:"resume_text"`
	WorkExperience []WorkEntry      `json:"work_experience"`
	Education      []EducationEntry `json:"education"`
	Skills         Skills           `json:"skills"`
}

// Normalize replaces missing collections with empty ones so the profile
// always serializes as arrays.
func (p *ResumeProfile) Normalize() {
	if p.WorkExperience == nil {
		p.WorkExperience = []WorkEntry{}
	}
	if p.Education == nil {
		p.Education = []EducationEntry{}
	}
	if p.Skills.Technical == nil {
		p.Skills.Technical = []string{}
	}
	if p.Skills.Soft == nil {
		p.Skills.Soft = []string{}
	}
}

// ResumeMatch is the result of comparing a resume to a job.
type ResumeMatch struct {
	MatchScore   int      `json:"match_score"`
	Strengths    TextList `json:"strengths"`
	Improvements TextList `json:"improvements"`
	Feedback     string   `json:"feedback"`
}

// FlexString accepts a JSON string, number or null. Models are inconsistent
// about whether a year is quoted.
type FlexString string

// UnmarshalJSON implements json.Unmarshaler
func (f *FlexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("expected string or number, got %s", string(data))
	}
	if i, err := strconv.ParseInt(n.String(), 10, 64); err == nil {
		*f = FlexString(strconv.FormatInt(i, 10))
		return nil
	}
	*f = FlexString(n.String())
	return nil
}

// TextList accepts either a JSON array of strings or a single string.
// A single string is split on newlines, with list markers removed.
type TextList []string

// UnmarshalJSON implements json.Unmarshaler
func (l *TextList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*l = TextList{}
		return nil
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*l = splitText(s)
		return nil
	default:
		var items []string
		if err := json.Unmarshal(data, &items); err != nil {
			return fmt.Errorf("expected string or array of strings: %w", err)
		}
		out := make(TextList, 0, len(items))
		for _, item := range items {
			if item = strings.TrimSpace(item); item != "" {
				out = append(out, item)
			}
		}
		*l = out
		return nil
	}
}

// String joins the list with ", ".
func (l TextList) String() string {
	return strings.Join(l, ", ")
}

func splitText(s string) TextList {
	out := TextList{}
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimLeft(line, "-*• ")
		if line != "" {
			out = append(out, line)
		}
	}
	return out
}
