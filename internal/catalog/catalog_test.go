package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/jimezsa/prepsite/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tinyDataset() Dataset {
	return Dataset{
		Companies: []models.Company{{Name: "Acme", Slug: "acme", Tier: "Startup"}},
		Roles:     []models.Role{{Title: "SWE Intern", Slug: "swe-intern"}},
		Skills:    []models.Skill{{Name: "Algorithms", Slug: "algorithms"}},
	}
}

func slugs(combos []models.Combination) []string {
	out := make([]string, 0, len(combos))
	for _, c := range combos {
		out = append(out, c.Info().Slug)
	}
	return out
}

func TestGenerateSingleEntityBoundary(t *testing.T) {
	combos := Generate(tinyDataset(), DefaultCaps)

	require.Len(t, combos, 4)
	assert.Equal(t, []string{
		"acme-swe-intern",
		"acme-algorithms",
		"swe-intern-algorithms",
		"acme-swe-intern-algorithms",
	}, slugs(combos))
	assert.Equal(t, models.KindCompanyRole, combos[0].Kind())
	assert.Equal(t, models.KindCompanySkill, combos[1].Kind())
	assert.Equal(t, models.KindRoleSkill, combos[2].Kind())
	assert.Equal(t, models.KindCompanyRoleSkill, combos[3].Kind())

	triple, ok := combos[3].(models.CompanyRoleSkill)
	require.True(t, ok)
	assert.Equal(t, "Acme SWE Intern Algorithms Questions", triple.Title)
	assert.Equal(t, "Targeted Algorithms practice for Acme SWE Intern interviews.", triple.Description)
}

func TestGenerateDefaultDataset(t *testing.T) {
	ds, err := LoadDefault()
	require.NoError(t, err)
	require.Len(t, ds.Companies, 15)
	require.Len(t, ds.Roles, 10)
	require.Len(t, ds.Skills, 10)

	combos := Generate(ds, DefaultCaps)

	counts := map[models.Kind]int{}
	for _, c := range combos {
		counts[c.Kind()]++
	}
	assert.Equal(t, 15*10, counts[models.KindCompanyRole])
	assert.Equal(t, 15*10, counts[models.KindCompanySkill])
	assert.Equal(t, 10*10, counts[models.KindRoleSkill])
	assert.Equal(t, 10*5*5, counts[models.KindCompanyRoleSkill])

	for _, c := range ds.Companies {
		for _, r := range ds.Roles {
			want := c.Slug + "-" + r.Slug
			n := 0
			for _, combo := range combos {
				if combo.Kind() == models.KindCompanyRole && combo.Info().Slug == want {
					n++
				}
			}
			assert.Equal(t, 1, n, "company-role %s", want)
		}
		for _, s := range ds.Skills {
			want := c.Slug + "-" + s.Slug
			n := 0
			for _, combo := range combos {
				if combo.Kind() == models.KindCompanySkill && combo.Info().Slug == want {
					n++
				}
			}
			assert.Equal(t, 1, n, "company-skill %s", want)
		}
	}

	seen := map[string]struct{}{}
	for _, slug := range slugs(combos) {
		_, dup := seen[slug]
		require.False(t, dup, "duplicate slug %s", slug)
		seen[slug] = struct{}{}
	}
}

func TestGenerateTripleCaps(t *testing.T) {
	ds, err := LoadDefault()
	require.NoError(t, err)

	cases := []struct {
		name string
		caps Caps
		want int
	}{
		{"defaults", DefaultCaps, 10 * 5 * 5},
		{"caps above list length", Caps{Companies: 100, Roles: 100, Skills: 100}, 15 * 10 * 10},
		{"zero cap disables triples", Caps{Companies: 0, Roles: 5, Skills: 5}, 0},
		{"negative cap disables triples", Caps{Companies: 3, Roles: -1, Skills: 2}, 0},
		{"small caps", Caps{Companies: 2, Roles: 3, Skills: 1}, 6},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			n := 0
			for _, c := range Generate(ds, tc.caps) {
				if c.Kind() == models.KindCompanyRoleSkill {
					n++
				}
			}
			assert.Equal(t, tc.want, n)
		})
	}
}

func TestNewRejectsCollidingSlugs(t *testing.T) {
	ds := Dataset{
		Companies: []models.Company{{Name: "A", Slug: "a"}, {Name: "AB", Slug: "a-b"}},
		Roles:     []models.Role{{Title: "BC", Slug: "b-c"}, {Title: "C", Slug: "c"}},
	}
	_, err := New(ds, DefaultCaps)
	require.ErrorIs(t, err, ErrDuplicateSlug)
	assert.Contains(t, err.Error(), "a-b-c")
}

func TestNewRejectsCompanyIndexCollision(t *testing.T) {
	ds := Dataset{
		Companies: []models.Company{{Name: "A", Slug: "a"}, {Name: "AB", Slug: "a-b"}},
		Roles:     []models.Role{{Title: "B", Slug: "b"}},
	}
	_, err := New(ds, DefaultCaps)
	require.ErrorIs(t, err, ErrDuplicateSlug)
	assert.Contains(t, err.Error(), "company a-b")
}

func TestReservedCompanySlug(t *testing.T) {
	ds := Dataset{
		Companies: []models.Company{{Name: "Topics Inc", Slug: TopicsSlug}},
		Roles:     []models.Role{{Title: "Intern", Slug: "intern"}},
	}
	_, err := New(ds, DefaultCaps)
	require.ErrorIs(t, err, ErrReservedSlug)

	path := filepath.Join(t.TempDir(), "data.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`companies:
  - name: Topics Inc
    slug: topics
    tier: Startup
    industry: Media
    description: Reserved.
roles:
  - title: Intern
    slug: intern
    category: Engineering
    description: Intern.
skills:
  - name: Go
    slug: go
    category: Language
    description: Go.
`), 0o644))
	_, err = Load(path)
	require.ErrorIs(t, err, ErrReservedSlug)
}

func TestRelated(t *testing.T) {
	ds, err := LoadDefault()
	require.NoError(t, err)
	cat, err := New(ds, DefaultCaps)
	require.NoError(t, err)

	for _, combo := range cat.Combinations() {
		related := cat.Related(combo, DefaultRelatedLimit)
		require.LessOrEqual(t, len(related), DefaultRelatedLimit)

		tc, tr, ts := models.Refs(combo)
		for _, r := range related {
			require.NotEqual(t, combo.Info().Slug, r.Info().Slug)
			pc, pr, ps := models.Refs(r)
			shares := sameCompany(tc, pc) || sameRole(tr, pr) || sameSkill(ts, ps)
			require.True(t, shares, "%s is not related to %s", r.Info().Slug, combo.Info().Slug)
		}
	}

	target, ok := cat.Lookup("google-software-engineer-intern")
	require.True(t, ok)
	related := cat.Related(target, DefaultRelatedLimit)
	assert.Equal(t, []string{
		"google-software-developer-intern",
		"google-sde-intern",
		"google-data-science-intern",
		"google-machine-learning-intern",
		"google-frontend-developer-intern",
		"google-backend-developer-intern",
	}, slugs(related))

	assert.Empty(t, cat.Related(target, 0))
}

func TestRelatedDoesNotMatchOnMissingReferences(t *testing.T) {
	ds := Dataset{
		Companies: []models.Company{{Name: "A", Slug: "a"}, {Name: "B", Slug: "b"}},
		Roles:     []models.Role{{Title: "R", Slug: "r"}, {Title: "Q", Slug: "q"}},
	}
	cat, err := New(ds, DefaultCaps)
	require.NoError(t, err)

	target, ok := cat.Lookup("a-r")
	require.True(t, ok)
	// b-q shares neither company nor role; the absent skill must not count.
	assert.Equal(t, []string{"a-q", "b-r"}, slugs(cat.Related(target, 10)))
}

func TestForCompanyAndForSkill(t *testing.T) {
	ds, err := LoadDefault()
	require.NoError(t, err)
	cat, err := New(ds, DefaultCaps)
	require.NoError(t, err)

	// 10 roles + 10 skills + 5*5 triples for a top-10 company.
	assert.Len(t, cat.ForCompany("google"), 10+10+25)
	// Salesforce is outside the triple cap.
	assert.Len(t, cat.ForCompany("salesforce"), 10+10)
	// 15 companies + 10 roles + 10*5 triples for a top-5 skill.
	assert.Len(t, cat.ForSkill("algorithms"), 15+10+50)
	assert.Empty(t, cat.ForSkill("unknown"))
}

func TestLoadYAMLAndJSON5(t *testing.T) {
	dir := t.TempDir()

	yamlPath := filepath.Join(dir, "data.yaml")
	require.NoError(t, os.WriteFile(yamlPath, []byte(`
companies:
  - {name: Acme, slug: acme, tier: Startup}
roles:
  - {title: SWE Intern, slug: swe-intern}
skills:
  - {name: Algorithms, slug: algorithms, question_count: 10}
`), 0o644))
	ds, err := Load(yamlPath)
	require.NoError(t, err)
	assert.Equal(t, "acme", ds.Companies[0].Slug)
	assert.Equal(t, 10, ds.Skills[0].QuestionCount)

	jsonPath := filepath.Join(dir, "data.json5")
	require.NoError(t, os.WriteFile(jsonPath, []byte(`{
  // trailing commas and comments are fine
  companies: [{name: "Acme", slug: "acme", tier: "Startup",}],
  roles: [{title: "SWE Intern", slug: "swe-intern"}],
  skills: [],
}`), 0o644))
	ds, err = Load(jsonPath)
	require.NoError(t, err)
	assert.Len(t, ds.Companies, 1)
	assert.Empty(t, ds.Skills)
}

func TestLoadRejectsInvalidDatasets(t *testing.T) {
	dir := t.TempDir()
	cases := map[string]string{
		"bad-slug.yaml":  "companies:\n  - {name: Acme, slug: Acme Corp, tier: X}\n",
		"no-name.yaml":   "roles:\n  - {slug: swe}\n",
		"negative.yaml":  "skills:\n  - {name: Go, slug: go, question_count: -1}\n",
		"duplicate.yaml": "skills:\n  - {name: Go, slug: go}\n  - {name: Golang, slug: go}\n",
		"data.toml":      "",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name)
			require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
			_, err := Load(path)
			require.Error(t, err)
		})
	}

	_, err := Load(filepath.Join(dir, "duplicate.yaml"))
	assert.ErrorIs(t, err, ErrDuplicateSlug)
}
