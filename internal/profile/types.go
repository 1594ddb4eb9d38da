package profile

// Profile is the singleton aggregate describing one person's professional
// portfolio. Collections are in insertion order.
type Profile struct {
	Name           string          `json:"name"`
	Title          string          `json:"title"`
	Tagline        string          `json:"tagline"`
	About          string          `json:"about"`
	ContactEmail   string          `json:"contact_email"`
	Phone          string          `json:"phone"`
	Location       string          `json:"location"`
	LinkedInURL    string          `json:"linkedin_url"`
	GitHubURL      string          `json:"github_url"`
	Skills         []Skill         `json:"skills"`
	Projects       []Project       `json:"projects"`
	Experience     []Experience    `json:"experience"`
	Education      []Education     `json:"education"`
	Certifications []Certification `json:"certifications"`
}

// Skill is a named capability. Level is a free-text tier ("Beginner",
// "Advanced", ...). Duplicate names are allowed.
type Skill struct {
	Name     string `json:"name"`
	Level    string `json:"level"`
	Category string `json:"category"`
}

type Project struct {
	ID      int64    `json:"id"`
	Title   string   `json:"title"`
	Summary string   `json:"summary"`
	Stack   []string `json:"stack"`
	Link    string   `json:"link"`
}

type Experience struct {
	ID         int64    `json:"id"`
	Role       string   `json:"role"`
	Company    string   `json:"company"`
	Period     string   `json:"period"`
	Highlights []string `json:"highlights"`
}

type Education struct {
	Degree      string `json:"degree"`
	Institution string `json:"institution"`
	Year        string `json:"year"`
}

type Certification struct {
	Name   string `json:"name"`
	Issuer string `json:"issuer"`
	Year   string `json:"year"`
}
