package profile

import (
	"fmt"
	"strings"
)

// BuildContext renders p as a flat text block for grounding a language model.
// Sections always appear in the same order and each collection entry takes a
// single line, so identical profiles produce byte-identical output.
func BuildContext(p Profile) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Name: %s\n", p.Name)
	fmt.Fprintf(&sb, "Title: %s\n", p.Title)
	fmt.Fprintf(&sb, "Tagline: %s\n", p.Tagline)
	fmt.Fprintf(&sb, "About: %s\n", p.About)
	fmt.Fprintf(&sb, "Contact: %s, %s, %s\n", p.ContactEmail, p.Phone, p.Location)
	fmt.Fprintf(&sb, "Links: LinkedIn %s, GitHub %s\n\n", p.LinkedInURL, p.GitHubURL)

	sb.WriteString("Skills:\n")
	sb.WriteString(joinLines(p.Skills, func(s Skill) string {
		return fmt.Sprintf("- %s (%s, %s)", s.Name, s.Level, s.Category)
	}))

	sb.WriteString("\n\nProjects:\n")
	sb.WriteString(joinLines(p.Projects, func(pr Project) string {
		return fmt.Sprintf("- %s: %s | Stack: %s | Link: %s", pr.Title, pr.Summary, strings.Join(pr.Stack, ", "), pr.Link)
	}))

	sb.WriteString("\n\nExperience:\n")
	sb.WriteString(joinLines(p.Experience, func(e Experience) string {
		return fmt.Sprintf("- %s at %s (%s) | Highlights: %s", e.Role, e.Company, e.Period, strings.Join(e.Highlights, "; "))
	}))

	sb.WriteString("\n\nEducation:\n")
	sb.WriteString(joinLines(p.Education, formatEducation))

	sb.WriteString("\n\nCertifications:\n")
	sb.WriteString(joinLines(p.Certifications, formatCertification))

	return sb.String()
}

func formatEducation(e Education) string {
	return fmt.Sprintf("- %s, %s (%s)", e.Degree, e.Institution, e.Year)
}

func formatCertification(c Certification) string {
	return fmt.Sprintf("- %s (%s)", c.Name, c.Issuer)
}

func joinLines[T any](items []T, format func(T) string) string {
	lines := make([]string, len(items))
	for i, item := range items {
		lines[i] = format(item)
	}
	return strings.Join(lines, "\n")
}
