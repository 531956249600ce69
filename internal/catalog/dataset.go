// Package catalog expands the company, role and skill dataset into the set
// of landing-page combinations and answers lookups over it.
package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/jimezsa/prepsite/internal/models"
	"github.com/yosuke-furukawa/json5/encoding/json5"
	"gopkg.in/yaml.v3"
)

//go:embed data/default.yaml
var defaultDataset []byte

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

// TopicsSlug is the path segment holding topic indexes. Company indexes share
// that namespace, so no company may use it.
const TopicsSlug = "topics"

var (
	// ErrDuplicateSlug reports two entities or combinations sharing a slug.
	ErrDuplicateSlug = errors.New("duplicate slug")
	// ErrReservedSlug reports a company slug that clashes with a fixed path.
	ErrReservedSlug = errors.New("reserved slug")
)

// Dataset is the raw input to the generator. List order is significant.
type Dataset struct {
	Companies []models.Company `json:"companies" yaml:"companies" validate:"dive"`
	Roles     []models.Role    `json:"roles" yaml:"roles" validate:"dive"`
	Skills    []models.Skill   `json:"skills" yaml:"skills" validate:"dive"`
}

// LoadDefault parses the built-in dataset.
func LoadDefault() (Dataset, error) {
	ds, err := decode(defaultDataset, ".yaml")
	if err != nil {
		return Dataset{}, fmt.Errorf("default dataset: %w", err)
	}
	return ds, nil
}

// Load reads a dataset from a YAML or JSON5 file chosen by extension.
func Load(path string) (Dataset, error) {
	if strings.TrimSpace(path) == "" {
		return Dataset{}, fmt.Errorf("dataset path is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Dataset{}, err
	}
	ds, err := decode(data, strings.ToLower(filepath.Ext(path)))
	if err != nil {
		return Dataset{}, fmt.Errorf("dataset %q: %w", path, err)
	}
	return ds, nil
}

func decode(data []byte, ext string) (Dataset, error) {
	var ds Dataset
	switch ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &ds); err != nil {
			return Dataset{}, err
		}
	case ".json", ".json5":
		if err := json5.Unmarshal(data, &ds); err != nil {
			return Dataset{}, err
		}
	default:
		return Dataset{}, fmt.Errorf("unsupported dataset format %q", ext)
	}
	if err := ds.Validate(); err != nil {
		return Dataset{}, err
	}
	return ds, nil
}

// Validate checks required fields, slug syntax, reserved company slugs and
// slug uniqueness per list.
func (ds Dataset) Validate() error {
	if err := newValidator().Struct(ds); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("invalid dataset: %s", strings.Join(msgs, "; "))
		}
		return err
	}

	companySlugs := make([]string, 0, len(ds.Companies))
	for _, c := range ds.Companies {
		if c.Slug == TopicsSlug {
			return fmt.Errorf("%w: company %s", ErrReservedSlug, c.Slug)
		}
		companySlugs = append(companySlugs, c.Slug)
	}
	roleSlugs := make([]string, 0, len(ds.Roles))
	for _, r := range ds.Roles {
		roleSlugs = append(roleSlugs, r.Slug)
	}
	skillSlugs := make([]string, 0, len(ds.Skills))
	for _, s := range ds.Skills {
		skillSlugs = append(skillSlugs, s.Slug)
	}

	lists := []struct {
		name  string
		slugs []string
	}{
		{"companies", companySlugs},
		{"roles", roleSlugs},
		{"skills", skillSlugs},
	}
	for _, list := range lists {
		if dup, ok := firstDuplicate(list.slugs); ok {
			return fmt.Errorf("%w in %s: %s", ErrDuplicateSlug, list.name, dup)
		}
	}
	return nil
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
		return slugPattern.MatchString(fl.Field().String())
	})
	return v
}

func firstDuplicate(values []string) (string, bool) {
	seen := make(map[string]struct{}, len(values))
	for _, value := range values {
		if _, exists := seen[value]; exists {
			return value, true
		}
		seen[value] = struct{}{}
	}
	return "", false
}
