package profile

import (
	"fmt"
	"strings"
)

// bucket pairs the keywords that select it with the renderer for its answer.
type bucket struct {
	name     string
	keywords []string
	render   func(p Profile) string
}

// buckets is checked in order; the first bucket with a keyword contained in
// the lower-cased message answers.
var buckets = []bucket{
	{
		name:     "skills",
		keywords: []string{"skill", "tech"},
		render: func(p Profile) string {
			return "Here are the key skills from this portfolio:\n" + joinLines(p.Skills, func(s Skill) string {
				return fmt.Sprintf("- %s (%s)", s.Name, s.Level)
			})
		},
	},
	{
		name:     "projects",
		keywords: []string{"project"},
		render: func(p Profile) string {
			return "Here are the projects listed in this portfolio:\n" + joinLines(p.Projects, func(pr Project) string {
				return fmt.Sprintf("- %s: %s", pr.Title, pr.Summary)
			})
		},
	},
	{
		name:     "experience",
		keywords: []string{"experience", "work"},
		render: func(p Profile) string {
			return "Here is the work experience in this portfolio:\n" + joinLines(p.Experience, func(e Experience) string {
				return fmt.Sprintf("- %s at %s (%s)", e.Role, e.Company, e.Period)
			})
		},
	},
	{
		name:     "education",
		keywords: []string{"education", "degree", "university"},
		render: func(p Profile) string {
			return "Here is the education information:\n" + joinLines(p.Education, formatEducation)
		},
	},
	{
		name:     "contact",
		keywords: []string{"contact", "email"},
		render: func(p Profile) string {
			return fmt.Sprintf("Contact: %s | %s\nLinkedIn: %s\nGitHub: %s", p.ContactEmail, p.Phone, p.LinkedInURL, p.GitHubURL)
		},
	},
	{
		name:     "certifications",
		keywords: []string{"certification", "certificate"},
		render: func(p Profile) string {
			return "Here are the certifications listed in this portfolio:\n" + joinLines(p.Certifications, formatCertification)
		},
	},
}

// LocalAnswer answers message from p without any network call. It is used
// when the hosted model cannot produce an answer and never fails.
func LocalAnswer(message string, p Profile) string {
	if b, ok := matchBucket(message); ok {
		return b.render(p)
	}
	return fmt.Sprintf("%s is a %s. Ask about skills, projects, experience, education, or contact.", p.Name, p.Title)
}

// BucketFor reports which answer bucket message falls into, or "default".
func BucketFor(message string) string {
	if b, ok := matchBucket(message); ok {
		return b.name
	}
	return "default"
}

func matchBucket(message string) (bucket, bool) {
	q := strings.ToLower(message)
	for _, b := range buckets {
		for _, kw := range b.keywords {
			if strings.Contains(q, kw) {
				return b, true
			}
		}
	}
	return bucket{}, false
}
