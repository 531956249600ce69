package catalog

import (
	"fmt"

	"github.com/jimezsa/prepsite/internal/models"
)

// Caps bounds the long-tail company-role-skill subset to the head of each
// list.
type Caps struct {
	Companies int `json:"companies"`
	Roles     int `json:"roles"`
	Skills    int `json:"skills"`
}

// DefaultCaps keeps the triple subset to 10 companies, 5 roles, 5 skills.
var DefaultCaps = Caps{Companies: 10, Roles: 5, Skills: 5}

// DefaultRelatedLimit is the number of related links rendered per page.
const DefaultRelatedLimit = 6

// Generate expands ds into every landing-page combination. The order is
// company-role, company-skill, role-skill, then the capped triples, each
// in dataset order.
func Generate(ds Dataset, caps Caps) []models.Combination {
	tc, tr, ts := capped(len(ds.Companies), caps.Companies), capped(len(ds.Roles), caps.Roles), capped(len(ds.Skills), caps.Skills)

	total := len(ds.Companies)*len(ds.Roles) +
		len(ds.Companies)*len(ds.Skills) +
		len(ds.Roles)*len(ds.Skills) +
		tc*tr*ts
	out := make([]models.Combination, 0, total)

	for _, c := range ds.Companies {
		for _, r := range ds.Roles {
			out = append(out, models.NewCompanyRole(c, r))
		}
	}
	for _, c := range ds.Companies {
		for _, s := range ds.Skills {
			out = append(out, models.NewCompanySkill(c, s))
		}
	}
	for _, r := range ds.Roles {
		for _, s := range ds.Skills {
			out = append(out, models.NewRoleSkill(r, s))
		}
	}
	for _, c := range ds.Companies[:tc] {
		for _, r := range ds.Roles[:tr] {
			for _, s := range ds.Skills[:ts] {
				out = append(out, models.NewCompanyRoleSkill(c, r, s))
			}
		}
	}
	return out
}

func capped(n, limit int) int {
	if limit <= 0 {
		return 0
	}
	if n < limit {
		return n
	}
	return limit
}

// Catalog is the immutable result of one expansion. Build it once with New
// and share it; nothing mutates it afterwards.
type Catalog struct {
	dataset      Dataset
	combinations []models.Combination
	bySlug       map[string]int
}

// New generates the combinations for ds and indexes them by slug. It fails
// when two combinations would share a slug.
func New(ds Dataset, caps Caps) (*Catalog, error) {
	combos := Generate(ds, caps)
	bySlug := make(map[string]int, len(combos))
	for i, c := range combos {
		slug := c.Info().Slug
		if prev, exists := bySlug[slug]; exists {
			return nil, fmt.Errorf("%w: %s (%s and %s)", ErrDuplicateSlug, slug, combos[prev].Kind(), c.Kind())
		}
		bySlug[slug] = i
	}
	// Company indexes live beside the combination pages.
	for _, company := range ds.Companies {
		if company.Slug == TopicsSlug {
			return nil, fmt.Errorf("%w: company %s", ErrReservedSlug, company.Slug)
		}
		if i, exists := bySlug[company.Slug]; exists {
			return nil, fmt.Errorf("%w: company %s collides with a %s page", ErrDuplicateSlug, company.Slug, combos[i].Kind())
		}
	}
	return &Catalog{dataset: ds, combinations: combos, bySlug: bySlug}, nil
}

func (c *Catalog) Companies() []models.Company {
	return append([]models.Company(nil), c.dataset.Companies...)
}

func (c *Catalog) Roles() []models.Role {
	return append([]models.Role(nil), c.dataset.Roles...)
}

func (c *Catalog) Skills() []models.Skill {
	return append([]models.Skill(nil), c.dataset.Skills...)
}

// Combinations returns a copy of every combination in generation order.
func (c *Catalog) Combinations() []models.Combination {
	return append([]models.Combination(nil), c.combinations...)
}

// Len is the number of combinations.
func (c *Catalog) Len() int { return len(c.combinations) }

// Lookup finds a combination by slug.
func (c *Catalog) Lookup(slug string) (models.Combination, bool) {
	i, ok := c.bySlug[slug]
	if !ok {
		return nil, false
	}
	return c.combinations[i], true
}

// OfKind returns the combinations of one variant in generation order.
func (c *Catalog) OfKind(kind models.Kind) []models.Combination {
	var out []models.Combination
	for _, combo := range c.combinations {
		if combo.Kind() == kind {
			out = append(out, combo)
		}
	}
	return out
}

// ForCompany returns every combination referencing the company slug.
func (c *Catalog) ForCompany(slug string) []models.Combination {
	var out []models.Combination
	for _, combo := range c.combinations {
		if company, _, _ := models.Refs(combo); company != nil && company.Slug == slug {
			out = append(out, combo)
		}
	}
	return out
}

// ForSkill returns every combination referencing the skill slug.
func (c *Catalog) ForSkill(slug string) []models.Combination {
	var out []models.Combination
	for _, combo := range c.combinations {
		if _, _, skill := models.Refs(combo); skill != nil && skill.Slug == slug {
			out = append(out, combo)
		}
	}
	return out
}

// Related returns up to limit other combinations sharing a company, role or
// skill with target, in generation order. A reference only matches when both
// sides carry it.
func (c *Catalog) Related(target models.Combination, limit int) []models.Combination {
	if limit <= 0 {
		return nil
	}
	slug := target.Info().Slug
	tc, tr, ts := models.Refs(target)

	out := make([]models.Combination, 0, limit)
	for _, combo := range c.combinations {
		if len(out) == limit {
			break
		}
		if combo.Info().Slug == slug {
			continue
		}
		pc, pr, ps := models.Refs(combo)
		if sameCompany(tc, pc) || sameRole(tr, pr) || sameSkill(ts, ps) {
			out = append(out, combo)
		}
	}
	return out
}

func sameCompany(a, b *models.Company) bool { return a != nil && b != nil && a.Slug == b.Slug }
func sameRole(a, b *models.Role) bool       { return a != nil && b != nil && a.Slug == b.Slug }
func sameSkill(a, b *models.Skill) bool     { return a != nil && b != nil && a.Slug == b.Slug }
