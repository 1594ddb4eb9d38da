package profile

import (
	"strings"
	"testing"
)

func sampleProfile() Profile {
	return Profile{
		Name:         "Alex Rivera",
		Title:        "Backend Engineer",
		Tagline:      "Shipping reliable services.",
		About:        "Engineer focused on Go and distributed systems.",
		ContactEmail: "alex@example.com",
		Phone:        "+1 555 0100",
		Location:     "Lisbon",
		LinkedInURL:  "https://www.linkedin.com/in/alex",
		GitHubURL:    "https://github.com/alex",
		Skills: []Skill{
			{Name: "Go", Level: "Advanced", Category: "Languages"},
			{Name: "Python", Level: "Intermediate", Category: "Languages"},
		},
		Projects: []Project{
			{ID: 1, Title: "Folio", Summary: "Portfolio assistant", Stack: []string{"Go", "SQLite"}, Link: "https://github.com/alex/folio"},
		},
		Experience: []Experience{
			{ID: 1, Role: "Engineer", Company: "Acme", Period: "2022-Present", Highlights: []string{"Built X", "Improved Y"}},
		},
		Education: []Education{
			{Degree: "B.Sc. Computer Science", Institution: "IST", Year: "2021"},
		},
		Certifications: []Certification{
			{Name: "CKA", Issuer: "CNCF", Year: "2023"},
		},
	}
}

func TestBuildContext_Layout(t *testing.T) {
	got := BuildContext(sampleProfile())

	want := "Name: Alex Rivera\n" +
		"Title: Backend Engineer\n" +
		"Tagline: Shipping reliable services.\n" +
		"About: Engineer focused on Go and distributed systems.\n" +
		"Contact: alex@example.com, +1 555 0100, Lisbon\n" +
		"Links: LinkedIn https://www.linkedin.com/in/alex, GitHub https://github.com/alex\n\n" +
		"Skills:\n" +
		"- Go (Advanced, Languages)\n" +
		"- Python (Intermediate, Languages)\n\n" +
		"Projects:\n" +
		"- Folio: Portfolio assistant | Stack: Go, SQLite | Link: https://github.com/alex/folio\n\n" +
		"Experience:\n" +
		"- Engineer at Acme (2022-Present) | Highlights: Built X; Improved Y\n\n" +
		"Education:\n" +
		"- B.Sc. Computer Science, IST (2021)\n\n" +
		"Certifications:\n" +
		"- CKA (CNCF)"

	if got != want {
		t.Errorf("BuildContext() =\n%s\n\nwant:\n%s", got, want)
	}
}

func TestBuildContext_Deterministic(t *testing.T) {
	p := sampleProfile()
	first := BuildContext(p)
	for i := 0; i < 10; i++ {
		if got := BuildContext(p); got != first {
			t.Fatalf("BuildContext() differs on run %d", i)
		}
	}
}

func TestBuildContext_EmptyCollections(t *testing.T) {
	got := BuildContext(Profile{Name: "N", Title: "T"})

	for _, section := range []string{"Skills:\n\n\nProjects:", "Experience:\n\n\nEducation:", "Certifications:\n"} {
		if !strings.Contains(got, section) {
			t.Errorf("BuildContext() missing %q in:\n%s", section, got)
		}
	}
	if !strings.HasSuffix(got, "Certifications:\n") {
		t.Errorf("BuildContext() should end with the empty certifications header, got %q", got[len(got)-20:])
	}
}

func TestLocalAnswer_Buckets(t *testing.T) {
	p := sampleProfile()

	tests := []struct {
		message string
		want    string
	}{
		{"What skills do you have?", "Here are the key skills from this portfolio:\n- Go (Advanced)\n- Python (Intermediate)"},
		{"Which TECH stack?", "Here are the key skills from this portfolio:\n- Go (Advanced)\n- Python (Intermediate)"},
		{"Show me a project", "Here are the projects listed in this portfolio:\n- Folio: Portfolio assistant"},
		{"Where did you work?", "Here is the work experience in this portfolio:\n- Engineer at Acme (2022-Present)"},
		{"What degree do you hold?", "Here is the education information:\n- B.Sc. Computer Science, IST (2021)"},
		{"How can I email you?", "Contact: alex@example.com | +1 555 0100\nLinkedIn: https://www.linkedin.com/in/alex\nGitHub: https://github.com/alex"},
		{"Any certificates?", "Here are the certifications listed in this portfolio:\n- CKA (CNCF)"},
		{"Hello there", "Alex Rivera is a Backend Engineer. Ask about skills, projects, experience, education, or contact."},
	}

	for _, tt := range tests {
		t.Run(tt.message, func(t *testing.T) {
			if got := LocalAnswer(tt.message, p); got != tt.want {
				t.Errorf("LocalAnswer(%q) =\n%q\nwant\n%q", tt.message, got, tt.want)
			}
		})
	}
}

func TestLocalAnswer_Priority(t *testing.T) {
	tests := []struct {
		message string
		want    string
	}{
		{"skills used in each project", "skills"},
		{"project work history", "projects"},
		{"work experience and education", "experience"},
		{"university contact email", "education"},
		{"contact me about your certification", "contact"},
		{"certification list", "certifications"},
		{"tell me about yourself", "default"},
	}
	for _, tt := range tests {
		if got := BucketFor(tt.message); got != tt.want {
			t.Errorf("BucketFor(%q) = %q, want %q", tt.message, got, tt.want)
		}
	}
}

func TestLocalAnswer_Deterministic(t *testing.T) {
	p := sampleProfile()
	a := LocalAnswer("what projects?", p)
	b := LocalAnswer("what projects?", p)
	if a != b {
		t.Errorf("LocalAnswer not deterministic: %q vs %q", a, b)
	}
}
