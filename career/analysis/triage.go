package analysis

import (
	"regexp"
	"strings"
)

var (
	emailRe = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)
	phoneRe = regexp.MustCompile(`\+?\d[\d\s\-()]{7,}\d`)
)

// Bucket keywords: a paragraph lands in the first bucket whose keyword
// it contains, checked in this order. Unmatched paragraphs go to others.
var triageBuckets = []struct {
	keywords []string
	assign   func(rd *ResumeData, text string)
}{
	{
		keywords: []string{"skill", "technologies", "tools"},
		assign:   func(rd *ResumeData, text string) { rd.Skills = append(rd.Skills, text) },
	},
	{
		keywords: []string{"project", "developed", "built", "designed"},
		assign:   func(rd *ResumeData, text string) { rd.Projects = append(rd.Projects, text) },
	},
	{
		keywords: []string{"education", "bachelor", "master", "degree", "university", "college"},
		assign:   func(rd *ResumeData, text string) { rd.Education = append(rd.Education, text) },
	},
	{
		keywords: []string{"experience", "worked", "internship", "employment", "job"},
		assign:   func(rd *ResumeData, text string) { rd.Experience = append(rd.Experience, text) },
	},
	{
		keywords: []string{"certification", "certificate"},
		assign:   func(rd *ResumeData, text string) { rd.Certifications = append(rd.Certifications, text) },
	},
}

// TriageParagraphs sorts document paragraphs into resume buckets by
// case-insensitive keyword matching. Duplicates and blanks are dropped.
func TriageParagraphs(paragraphs []string) ResumeData {
	var rd ResumeData
	seen := make(map[string]bool)

	for _, para := range paragraphs {
		text := strings.TrimSpace(para)
		if text == "" || seen[text] {
			continue
		}
		seen[text] = true

		lower := strings.ToLower(text)
		matched := false
		for _, bucket := range triageBuckets {
			for _, keyword := range bucket.keywords {
				if strings.Contains(lower, keyword) {
					bucket.assign(&rd, text)
					matched = true
					break
				}
			}
			if matched {
				break
			}
		}
		if !matched {
			rd.Others = append(rd.Others, text)
		}
	}

	return rd
}

// ApplyKeyValue fills contact fields from a detected form-field pair
// when the key names one of them.
func (rd *ResumeData) ApplyKeyValue(key, value string) {
	value = strings.TrimSpace(value)
	if value == "" {
		return
	}

	lower := strings.ToLower(key)
	switch {
	case strings.Contains(lower, "name") && rd.Name == "":
		rd.Name = value
	case strings.Contains(lower, "email") && rd.Email == "":
		rd.Email = value
	case strings.Contains(lower, "phone") && rd.Phone == "":
		rd.Phone = value
	}
}

// BackfillContact fills missing email and phone fields from patterns
// in the full document text.
func (rd *ResumeData) BackfillContact(fullText string) {
	if rd.Email == "" {
		rd.Email = ExtractEmail(fullText)
	}
	if rd.Phone == "" {
		rd.Phone = ExtractPhone(fullText)
	}
}

// ExtractEmail returns the first email address found in text
func ExtractEmail(text string) string {
	return emailRe.FindString(text)
}

// ExtractPhone returns the first phone-shaped number found in text
func ExtractPhone(text string) string {
	return strings.TrimSpace(phoneRe.FindString(text))
}
