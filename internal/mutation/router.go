package mutation

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/kalambet/folio/internal/profile"
)

// Appender is the write side of the profile store used by mutations.
type Appender interface {
	AddSkill(ctx context.Context, s profile.Skill) error
	AddProject(ctx context.Context, p profile.Project) error
	AddExperience(ctx context.Context, e profile.Experience) error
}

// Kind identifies which command a message was classified as.
type Kind string

const (
	KindNone       Kind = ""
	KindHelp       Kind = "help"
	KindSkill      Kind = "skill"
	KindProject    Kind = "project"
	KindExperience Kind = "experience"
)

const (
	HelpUsage = "Tell me what to add. Examples: " +
		"add skill name=React level=Advanced category=Frontend, " +
		"add project title=Portfolio summary=Personal site stack=React,FastAPI, " +
		"add experience role=Engineer company=Acme period=2024-Present."
	SkillUsage = "Use: add skill name=React level=Advanced category=Frontend " +
		"or simple: add skill React"
	ProjectUsage = "Use: add project title=My App summary=What it does stack=React,TypeScript link=https://... " +
		"or simple: add project My App"
	ExperienceUsage = "Use format: add experience: role=Senior Engineer | company=Acme | period=2024-Present | " +
		"highlights=Built X; Improved Y"
)

const (
	defaultSkillLevel     = "Intermediate"
	defaultSkillCategory  = "General"
	defaultProjectSummary = "Added via AI assistant."
	defaultProjectLink    = "https://github.com/example/project"
)

// rule pairs a classification predicate with the handler that runs when it
// matches. Predicates receive the trimmed, lower-cased message.
type rule struct {
	kind    Kind
	matches func(lowered string) bool
	apply   func(ctx context.Context, store Appender, text string) (string, error)
}

// rules is evaluated in order and the first match wins, so a message naming
// both a skill and a project is treated as a skill command.
var rules = []rule{
	{
		kind: KindHelp,
		matches: func(l string) bool {
			return l == "add" || l == "add it" || l == "add this"
		},
		apply: func(context.Context, Appender, string) (string, error) {
			return HelpUsage, nil
		},
	},
	{
		kind: KindSkill,
		matches: func(l string) bool {
			return strings.HasPrefix(l, "add skill:") || (strings.Contains(l, "add") && strings.Contains(l, "skill"))
		},
		apply: addSkill,
	},
	{
		kind: KindProject,
		matches: func(l string) bool {
			return strings.HasPrefix(l, "add project:") || (strings.Contains(l, "add") && strings.Contains(l, "project"))
		},
		apply: addProject,
	},
	{
		kind: KindExperience,
		matches: func(l string) bool {
			return strings.HasPrefix(l, "add experience:") ||
				strings.Contains(l, "add exp") ||
				(strings.Contains(l, "add") && strings.Contains(l, "experience"))
		},
		apply: addExperience,
	},
}

// Classify reports which command message is, or KindNone for a question.
func Classify(message string) Kind {
	if r, ok := match(message); ok {
		return r.kind
	}
	return KindNone
}

// Apply interprets message as an add command. When it is one, Apply returns
// the reply for the user and handled == true: either a confirmation after
// exactly one append, or a usage string when required fields are missing
// (nothing is written). When message is not a command, handled is false and
// the caller should answer it as a question. Store errors are returned as is.
func Apply(ctx context.Context, store Appender, message string) (reply string, handled bool, err error) {
	r, ok := match(message)
	if !ok {
		return "", false, nil
	}
	reply, err = r.apply(ctx, store, strings.TrimSpace(message))
	if err != nil {
		return "", true, fmt.Errorf("applying %s command: %w", r.kind, err)
	}
	return reply, true, nil
}

func match(message string) (rule, bool) {
	lowered := strings.ToLower(strings.TrimSpace(message))
	for _, r := range rules {
		if r.matches(lowered) {
			return r, true
		}
	}
	return rule{}, false
}

func addSkill(ctx context.Context, store Appender, text string) (string, error) {
	fields := ExtractFields(text)

	name := fields["name"]
	if name == "" {
		name = trailingName(skillShortForm, text)
	}
	if name == "" {
		return SkillUsage, nil
	}

	sk := profile.Skill{
		Name:     name,
		Level:    valueOr(fields, "level", defaultSkillLevel),
		Category: valueOr(fields, "category", defaultSkillCategory),
	}
	if err := store.AddSkill(ctx, sk); err != nil {
		return "", err
	}
	return fmt.Sprintf("Added skill: %s (%s, %s).", sk.Name, sk.Level, sk.Category), nil
}

func addProject(ctx context.Context, store Appender, text string) (string, error) {
	fields := ExtractFields(text)

	title := fields["title"]
	if title == "" {
		title = trailingName(projectShortForm, text)
	}
	summary := valueOr(fields, "summary", defaultProjectSummary)
	if title == "" || summary == "" {
		return ProjectUsage, nil
	}

	pr := profile.Project{
		Title:   title,
		Summary: summary,
		Stack:   splitTrimmed(fields["stack"], ","),
		Link:    valueOr(fields, "link", defaultProjectLink),
	}
	if err := store.AddProject(ctx, pr); err != nil {
		return "", err
	}
	return fmt.Sprintf("Added project: %s.", pr.Title), nil
}

func addExperience(ctx context.Context, store Appender, text string) (string, error) {
	fields := ExtractFields(text)

	role, company, period := fields["role"], fields["company"], fields["period"]
	if role == "" || company == "" || period == "" {
		return ExperienceUsage, nil
	}

	e := profile.Experience{
		Role:       role,
		Company:    company,
		Period:     period,
		Highlights: splitTrimmed(fields["highlights"], ";"),
	}
	if err := store.AddExperience(ctx, e); err != nil {
		return "", err
	}
	return fmt.Sprintf("Added experience: %s at %s (%s).", e.Role, e.Company, e.Period), nil
}

var (
	skillShortForm   = regexp.MustCompile(`(?i)add(?:\s+my)?\s+skill\s+(.+)$`)
	projectShortForm = regexp.MustCompile(`(?i)add(?:\s+my)?\s+project\s+(.+)$`)
)

// trailingName extracts the free text after "add skill" / "add project".
// Text containing "=" or ":" is a malformed explicit command and is rejected.
func trailingName(re *regexp.Regexp, text string) string {
	m := re.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	v := strings.TrimSpace(m[1])
	if strings.ContainsAny(v, "=:") {
		return ""
	}
	return v
}

func valueOr(fields Fields, key, fallback string) string {
	if v, ok := fields[key]; ok {
		return v
	}
	return fallback
}

func splitTrimmed(raw, sep string) []string {
	parts := []string{}
	for _, p := range strings.Split(raw, sep) {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return parts
}
