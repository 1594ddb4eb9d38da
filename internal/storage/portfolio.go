package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/kalambet/folio/internal/profile"
)

// Session is a single checked-out connection. Writes commit immediately.
type Session struct {
	conn *sql.Conn
}

// Close returns the connection to the pool.
func (s *Session) Close() error {
	return s.conn.Close()
}

// PortfolioID returns the id of the singleton portfolio row.
func (s *Session) PortfolioID(ctx context.Context) (int64, error) {
	var id int64
	err := s.conn.QueryRowContext(ctx, "SELECT id FROM portfolio ORDER BY id LIMIT 1").Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, errPortfolioMissing
	}
	if err != nil {
		return 0, fmt.Errorf("loading portfolio id: %w", err)
	}
	return id, nil
}

// LoadProfile reads the portfolio and all owned collections in insertion order.
func (s *Session) LoadProfile(ctx context.Context) (profile.Profile, error) {
	var p profile.Profile
	var id int64
	err := s.conn.QueryRowContext(ctx, `
		SELECT id, name, title, tagline, about, contact_email, phone, location, linkedin_url, github_url
		FROM portfolio ORDER BY id LIMIT 1`,
	).Scan(&id, &p.Name, &p.Title, &p.Tagline, &p.About, &p.ContactEmail, &p.Phone, &p.Location, &p.LinkedInURL, &p.GitHubURL)
	if errors.Is(err, sql.ErrNoRows) {
		return profile.Profile{}, errPortfolioMissing
	}
	if err != nil {
		return profile.Profile{}, fmt.Errorf("loading portfolio: %w", err)
	}

	if p.Skills, err = s.loadSkills(ctx, id); err != nil {
		return profile.Profile{}, err
	}
	if p.Projects, err = s.loadProjects(ctx, id); err != nil {
		return profile.Profile{}, err
	}
	if p.Experience, err = s.loadExperience(ctx, id); err != nil {
		return profile.Profile{}, err
	}
	if p.Education, err = s.loadEducation(ctx, id); err != nil {
		return profile.Profile{}, err
	}
	if p.Certifications, err = s.loadCertifications(ctx, id); err != nil {
		return profile.Profile{}, err
	}
	return p, nil
}

func (s *Session) loadSkills(ctx context.Context, portfolioID int64) ([]profile.Skill, error) {
	rows, err := s.conn.QueryContext(ctx,
		"SELECT name, level, category FROM skills WHERE portfolio_id = ? ORDER BY id", portfolioID)
	if err != nil {
		return nil, fmt.Errorf("loading skills: %w", err)
	}
	defer rows.Close()

	result := []profile.Skill{}
	for rows.Next() {
		var sk profile.Skill
		if err := rows.Scan(&sk.Name, &sk.Level, &sk.Category); err != nil {
			return nil, err
		}
		result = append(result, sk)
	}
	return result, rows.Err()
}

func (s *Session) loadProjects(ctx context.Context, portfolioID int64) ([]profile.Project, error) {
	rows, err := s.conn.QueryContext(ctx,
		"SELECT id, title, summary, stack_csv, link FROM projects WHERE portfolio_id = ? ORDER BY id", portfolioID)
	if err != nil {
		return nil, fmt.Errorf("loading projects: %w", err)
	}
	defer rows.Close()

	result := []profile.Project{}
	for rows.Next() {
		var pr profile.Project
		var stack string
		if err := rows.Scan(&pr.ID, &pr.Title, &pr.Summary, &stack, &pr.Link); err != nil {
			return nil, err
		}
		pr.Stack = splitList(stack, stackSep)
		result = append(result, pr)
	}
	return result, rows.Err()
}

func (s *Session) loadExperience(ctx context.Context, portfolioID int64) ([]profile.Experience, error) {
	rows, err := s.conn.QueryContext(ctx,
		"SELECT id, role, company, period, highlights_csv FROM experience WHERE portfolio_id = ? ORDER BY id", portfolioID)
	if err != nil {
		return nil, fmt.Errorf("loading experience: %w", err)
	}
	defer rows.Close()

	result := []profile.Experience{}
	for rows.Next() {
		var e profile.Experience
		var highlights string
		if err := rows.Scan(&e.ID, &e.Role, &e.Company, &e.Period, &highlights); err != nil {
			return nil, err
		}
		e.Highlights = splitList(highlights, highlightSep)
		result = append(result, e)
	}
	return result, rows.Err()
}

func (s *Session) loadEducation(ctx context.Context, portfolioID int64) ([]profile.Education, error) {
	rows, err := s.conn.QueryContext(ctx,
		"SELECT degree, institution, year FROM education WHERE portfolio_id = ? ORDER BY id", portfolioID)
	if err != nil {
		return nil, fmt.Errorf("loading education: %w", err)
	}
	defer rows.Close()

	result := []profile.Education{}
	for rows.Next() {
		var e profile.Education
		if err := rows.Scan(&e.Degree, &e.Institution, &e.Year); err != nil {
			return nil, err
		}
		result = append(result, e)
	}
	return result, rows.Err()
}

func (s *Session) loadCertifications(ctx context.Context, portfolioID int64) ([]profile.Certification, error) {
	rows, err := s.conn.QueryContext(ctx,
		"SELECT name, issuer, year FROM certifications WHERE portfolio_id = ? ORDER BY id", portfolioID)
	if err != nil {
		return nil, fmt.Errorf("loading certifications: %w", err)
	}
	defer rows.Close()

	result := []profile.Certification{}
	for rows.Next() {
		var c profile.Certification
		if err := rows.Scan(&c.Name, &c.Issuer, &c.Year); err != nil {
			return nil, err
		}
		result = append(result, c)
	}
	return result, rows.Err()
}

// AddSkill appends a skill to the portfolio.
func (s *Session) AddSkill(ctx context.Context, sk profile.Skill) error {
	return s.insert(ctx,
		"INSERT INTO skills (name, level, category, portfolio_id) VALUES (?, ?, ?, ?)",
		sk.Name, sk.Level, sk.Category)
}

// AddProject appends a project to the portfolio.
func (s *Session) AddProject(ctx context.Context, pr profile.Project) error {
	return s.insert(ctx,
		"INSERT INTO projects (title, summary, stack_csv, link, portfolio_id) VALUES (?, ?, ?, ?, ?)",
		pr.Title, pr.Summary, strings.Join(pr.Stack, stackSep), pr.Link)
}

// AddExperience appends an experience entry to the portfolio.
func (s *Session) AddExperience(ctx context.Context, e profile.Experience) error {
	return s.insert(ctx,
		"INSERT INTO experience (role, company, period, highlights_csv, portfolio_id) VALUES (?, ?, ?, ?, ?)",
		e.Role, e.Company, e.Period, strings.Join(e.Highlights, highlightSep))
}

// insert runs one single-row INSERT in its own transaction. The portfolio id
// is appended as the last argument.
func (s *Session) insert(ctx context.Context, query string, args ...any) error {
	portfolioID, err := s.PortfolioID(ctx)
	if err != nil {
		return err
	}

	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning insert: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, query, append(args, portfolioID)...); err != nil {
		return fmt.Errorf("inserting row: %w", err)
	}
	return tx.Commit()
}

// LoadProfile is a convenience wrapper that acquires a session, reads the
// profile, and releases the session.
func (s *Store) LoadProfile(ctx context.Context) (profile.Profile, error) {
	sess, err := s.Acquire(ctx)
	if err != nil {
		return profile.Profile{}, err
	}
	defer sess.Close()
	return sess.LoadProfile(ctx)
}

// ReplaceProfile deletes every portfolio row and collection entry, then
// inserts p as the new singleton, all in one transaction.
func (s *Store) ReplaceProfile(ctx context.Context, p profile.Profile) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning replace: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"skills", "projects", "experience", "education", "certifications", "portfolio"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("clearing %s: %w", table, err)
		}
	}

	res, err := tx.ExecContext(ctx, `
		INSERT INTO portfolio (name, title, tagline, about, contact_email, location, phone, linkedin_url, github_url)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.Name, p.Title, p.Tagline, p.About, p.ContactEmail, p.Location, p.Phone, p.LinkedInURL, p.GitHubURL,
	)
	if err != nil {
		return fmt.Errorf("inserting portfolio: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading portfolio id: %w", err)
	}

	for _, sk := range p.Skills {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO skills (name, level, category, portfolio_id) VALUES (?, ?, ?, ?)",
			sk.Name, sk.Level, sk.Category, id); err != nil {
			return fmt.Errorf("inserting skill %q: %w", sk.Name, err)
		}
	}
	for _, pr := range p.Projects {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO projects (title, summary, stack_csv, link, portfolio_id) VALUES (?, ?, ?, ?, ?)",
			pr.Title, pr.Summary, strings.Join(pr.Stack, stackSep), pr.Link, id); err != nil {
			return fmt.Errorf("inserting project %q: %w", pr.Title, err)
		}
	}
	for _, e := range p.Experience {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO experience (role, company, period, highlights_csv, portfolio_id) VALUES (?, ?, ?, ?, ?)",
			e.Role, e.Company, e.Period, strings.Join(e.Highlights, highlightSep), id); err != nil {
			return fmt.Errorf("inserting experience %q: %w", e.Role, err)
		}
	}
	for _, e := range p.Education {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO education (degree, institution, year, portfolio_id) VALUES (?, ?, ?, ?)",
			e.Degree, e.Institution, e.Year, id); err != nil {
			return fmt.Errorf("inserting education %q: %w", e.Degree, err)
		}
	}
	for _, c := range p.Certifications {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO certifications (name, issuer, year, portfolio_id) VALUES (?, ?, ?, ?)",
			c.Name, c.Issuer, c.Year, id); err != nil {
			return fmt.Errorf("inserting certification %q: %w", c.Name, err)
		}
	}

	return tx.Commit()
}

func splitList(raw, sep string) []string {
	result := []string{}
	for _, item := range strings.Split(raw, sep) {
		if item = strings.TrimSpace(item); item != "" {
			result = append(result, item)
		}
	}
	return result
}
