// Package seed loads a complete portfolio from a YAML document, optionally
// taking the about text from a résumé PDF.
package seed

import (
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kalambet/folio/internal/profile"
)

//go:embed default.yaml
var defaultDocument []byte

// Document is the on-disk seed format.
type Document struct {
	Name           string          `yaml:"name"`
	Title          string          `yaml:"title"`
	Tagline        string          `yaml:"tagline"`
	About          string          `yaml:"about"`
	ContactEmail   string          `yaml:"contact_email"`
	Phone          string          `yaml:"phone"`
	Location       string          `yaml:"location"`
	LinkedInURL    string          `yaml:"linkedin_url"`
	GitHubURL      string          `yaml:"github_url"`
	Skills         []skillDoc      `yaml:"skills"`
	Projects       []projectDoc    `yaml:"projects"`
	Experience     []experienceDoc `yaml:"experience"`
	Education      []educationDoc  `yaml:"education"`
	Certifications []certDoc       `yaml:"certifications"`
}

type skillDoc struct {
	Name     string `yaml:"name"`
	Level    string `yaml:"level"`
	Category string `yaml:"category"`
}

type projectDoc struct {
	Title   string   `yaml:"title"`
	Summary string   `yaml:"summary"`
	Stack   []string `yaml:"stack"`
	Link    string   `yaml:"link"`
}

type experienceDoc struct {
	Role       string   `yaml:"role"`
	Company    string   `yaml:"company"`
	Period     string   `yaml:"period"`
	Highlights []string `yaml:"highlights"`
}

type educationDoc struct {
	Degree      string `yaml:"degree"`
	Institution string `yaml:"institution"`
	Year        string `yaml:"year"`
}

type certDoc struct {
	Name   string `yaml:"name"`
	Issuer string `yaml:"issuer"`
	Year   string `yaml:"year"`
}

// Default returns the built-in sample portfolio.
func Default() (profile.Profile, error) {
	return Parse(defaultDocument)
}

// LoadFile reads and parses the seed document at path.
func LoadFile(path string) (profile.Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return profile.Profile{}, fmt.Errorf("reading seed file: %w", err)
	}
	return Parse(data)
}

// Parse decodes a seed document. Unknown fields are rejected so typos in key
// names surface instead of silently producing empty values.
func Parse(data []byte) (profile.Profile, error) {
	dec := yaml.NewDecoder(strings.NewReader(string(data)))
	dec.KnownFields(true)

	var doc Document
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return profile.Profile{}, errors.New("seed document is empty")
		}
		return profile.Profile{}, fmt.Errorf("invalid seed yaml: %w", err)
	}
	if err := doc.validate(); err != nil {
		return profile.Profile{}, err
	}
	return doc.Profile(), nil
}

func (d Document) validate() error {
	if strings.TrimSpace(d.Name) == "" {
		return errors.New("seed document: name is required")
	}
	for i, s := range d.Skills {
		if strings.TrimSpace(s.Name) == "" {
			return fmt.Errorf("seed document: skills[%d].name is required", i)
		}
	}
	for i, p := range d.Projects {
		if strings.TrimSpace(p.Title) == "" {
			return fmt.Errorf("seed document: projects[%d].title is required", i)
		}
		for _, item := range p.Stack {
			if strings.Contains(item, ",") {
				return fmt.Errorf("seed document: projects[%d].stack item %q must not contain a comma", i, item)
			}
		}
	}
	for i, e := range d.Experience {
		if e.Role == "" || e.Company == "" || e.Period == "" {
			return fmt.Errorf("seed document: experience[%d] needs role, company, and period", i)
		}
		for _, h := range e.Highlights {
			if strings.Contains(h, "||") {
				return fmt.Errorf("seed document: experience[%d] highlight %q must not contain \"||\"", i, h)
			}
		}
	}
	return nil
}

// Profile converts the document into the portfolio aggregate.
func (d Document) Profile() profile.Profile {
	p := profile.Profile{
		Name:           strings.TrimSpace(d.Name),
		Title:          d.Title,
		Tagline:        d.Tagline,
		About:          d.About,
		ContactEmail:   d.ContactEmail,
		Phone:          d.Phone,
		Location:       d.Location,
		LinkedInURL:    d.LinkedInURL,
		GitHubURL:      d.GitHubURL,
		Skills:         []profile.Skill{},
		Projects:       []profile.Project{},
		Experience:     []profile.Experience{},
		Education:      []profile.Education{},
		Certifications: []profile.Certification{},
	}
	for _, s := range d.Skills {
		p.Skills = append(p.Skills, profile.Skill(s))
	}
	for _, pr := range d.Projects {
		p.Projects = append(p.Projects, profile.Project{
			Title:   pr.Title,
			Summary: pr.Summary,
			Stack:   nonEmpty(pr.Stack),
			Link:    pr.Link,
		})
	}
	for _, e := range d.Experience {
		p.Experience = append(p.Experience, profile.Experience{
			Role:       e.Role,
			Company:    e.Company,
			Period:     e.Period,
			Highlights: nonEmpty(e.Highlights),
		})
	}
	for _, e := range d.Education {
		p.Education = append(p.Education, profile.Education(e))
	}
	for _, c := range d.Certifications {
		p.Certifications = append(p.Certifications, profile.Certification(c))
	}
	return p
}

func nonEmpty(items []string) []string {
	out := []string{}
	for _, s := range items {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
