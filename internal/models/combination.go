package models

import "fmt"

// Kind discriminates the combination variants.
type Kind string

const (
	KindCompanyRole      Kind = "company-role"
	KindCompanySkill     Kind = "company-skill"
	KindRoleSkill        Kind = "role-skill"
	KindCompanyRoleSkill Kind = "company-role-skill"
)

// Kinds lists every variant in generation order.
var Kinds = []Kind{KindCompanyRole, KindCompanySkill, KindRoleSkill, KindCompanyRoleSkill}

// ParseKind accepts the tag spelling used in URLs and exports.
func ParseKind(value string) (Kind, error) {
	for _, kind := range Kinds {
		if string(kind) == value {
			return kind, nil
		}
	}
	return "", fmt.Errorf("unknown combination type: %s", value)
}

// Page holds the text shared by every landing page.
type Page struct {
	Slug        string `json:"slug"`
	Title       string `json:"title"`
	Keyword     string `json:"keyword"`
	Description string `json:"description"`
}

// Info returns the page text of a combination.
func (p Page) Info() Page { return p }

// Combination is one generated landing page. The concrete type is one of
// CompanyRole, CompanySkill, RoleSkill or CompanyRoleSkill.
type Combination interface {
	Kind() Kind
	Info() Page
	sealed()
}

type CompanyRole struct {
	Page
	Company Company `json:"company"`
	Role    Role    `json:"role"`
}

type CompanySkill struct {
	Page
	Company Company `json:"company"`
	Skill   Skill   `json:"skill"`
}

type RoleSkill struct {
	Page
	Role  Role  `json:"role"`
	Skill Skill `json:"skill"`
}

type CompanyRoleSkill struct {
	Page
	Company Company `json:"company"`
	Role    Role    `json:"role"`
	Skill   Skill   `json:"skill"`
}

func (CompanyRole) Kind() Kind      { return KindCompanyRole }
func (CompanySkill) Kind() Kind     { return KindCompanySkill }
func (RoleSkill) Kind() Kind        { return KindRoleSkill }
func (CompanyRoleSkill) Kind() Kind { return KindCompanyRoleSkill }

func (CompanyRole) sealed()      {}
func (CompanySkill) sealed()     {}
func (RoleSkill) sealed()        {}
func (CompanyRoleSkill) sealed() {}

// NewCompanyRole builds the company-role page for c and r.
func NewCompanyRole(c Company, r Role) CompanyRole {
	return CompanyRole{
		Page: Page{
			Slug:        c.Slug + "-" + r.Slug,
			Title:       fmt.Sprintf("%s %s Interview Questions", c.Name, r.Title),
			Keyword:     fmt.Sprintf("%s %s interview questions", c.Name, r.Title),
			Description: fmt.Sprintf("Ace your %s %s interview with real questions and AI-powered practice.", c.Name, r.Title),
		},
		Company: c,
		Role:    r,
	}
}

// NewCompanySkill builds the company-skill page for c and s.
func NewCompanySkill(c Company, s Skill) CompanySkill {
	return CompanySkill{
		Page: Page{
			Slug:        c.Slug + "-" + s.Slug,
			Title:       fmt.Sprintf("%s %s Interview Questions", c.Name, s.Name),
			Keyword:     fmt.Sprintf("%s %s interview questions", c.Name, s.Name),
			Description: fmt.Sprintf("Master %s questions asked at %s interviews.", s.Name, c.Name),
		},
		Company: c,
		Skill:   s,
	}
}

// NewRoleSkill builds the role-skill page for r and s.
func NewRoleSkill(r Role, s Skill) RoleSkill {
	return RoleSkill{
		Page: Page{
			Slug:        r.Slug + "-" + s.Slug,
			Title:       fmt.Sprintf("%s %s Questions", r.Title, s.Name),
			Keyword:     fmt.Sprintf("%s %s questions", r.Title, s.Name),
			Description: fmt.Sprintf("Practice %s questions specifically for %s positions.", s.Name, r.Title),
		},
		Role:  r,
		Skill: s,
	}
}

// NewCompanyRoleSkill builds the long-tail page for c, r and s.
func NewCompanyRoleSkill(c Company, r Role, s Skill) CompanyRoleSkill {
	return CompanyRoleSkill{
		Page: Page{
			Slug:        c.Slug + "-" + r.Slug + "-" + s.Slug,
			Title:       fmt.Sprintf("%s %s %s Questions", c.Name, r.Title, s.Name),
			Keyword:     fmt.Sprintf("%s %s %s questions", c.Name, r.Title, s.Name),
			Description: fmt.Sprintf("Targeted %s practice for %s %s interviews.", s.Name, c.Name, r.Title),
		},
		Company: c,
		Role:    r,
		Skill:   s,
	}
}

// Refs returns the entities a combination references. Absent references
// are nil.
func Refs(c Combination) (company *Company, role *Role, skill *Skill) {
	switch v := c.(type) {
	case CompanyRole:
		return &v.Company, &v.Role, nil
	case CompanySkill:
		return &v.Company, nil, &v.Skill
	case RoleSkill:
		return nil, &v.Role, &v.Skill
	case CompanyRoleSkill:
		return &v.Company, &v.Role, &v.Skill
	}
	return nil, nil, nil
}

// Record is the flat export form of a combination.
type Record struct {
	Type        Kind   `json:"type"`
	Slug        string `json:"slug"`
	Title       string `json:"title"`
	Keyword     string `json:"keyword"`
	Description string `json:"description"`
	Company     string `json:"company,omitempty"`
	Role        string `json:"role,omitempty"`
	Skill       string `json:"skill,omitempty"`
}

// Flatten converts c to a Record.
func Flatten(c Combination) Record {
	info := c.Info()
	rec := Record{
		Type:        c.Kind(),
		Slug:        info.Slug,
		Title:       info.Title,
		Keyword:     info.Keyword,
		Description: info.Description,
	}
	company, role, skill := Refs(c)
	if company != nil {
		rec.Company = company.Slug
	}
	if role != nil {
		rec.Role = role.Slug
	}
	if skill != nil {
		rec.Skill = skill.Slug
	}
	return rec
}
