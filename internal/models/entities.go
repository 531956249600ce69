package models

// Company is a hiring company that gets its own landing pages.
type Company struct {
	Name             string   `json:"name" yaml:"name" validate:"required"`
	Slug             string   `json:"slug" yaml:"slug" validate:"required,slug"`
	Tier             string   `json:"tier" yaml:"tier" validate:"required"`
	Locations        []string `json:"locations" yaml:"locations" validate:"dive,required"`
	HiringSeasons    []string `json:"hiring_seasons" yaml:"hiring_seasons" validate:"dive,required"`
	TypicalQuestions int      `json:"typical_questions" yaml:"typical_questions" validate:"gte=0"`
	Difficulty       string   `json:"difficulty" yaml:"difficulty"`
	FocusAreas       []string `json:"focus_areas" yaml:"focus_areas" validate:"dive,required"`
}

// Role is a job title candidates prepare for.
type Role struct {
	Title       string   `json:"title" yaml:"title" validate:"required"`
	Slug        string   `json:"slug" yaml:"slug" validate:"required,slug"`
	Description string   `json:"description" yaml:"description"`
	Skills      []string `json:"skills" yaml:"skills" validate:"dive,required"`
	Difficulty  string   `json:"difficulty" yaml:"difficulty"`
}

// Skill is an interview topic.
type Skill struct {
	Name          string   `json:"name" yaml:"name" validate:"required"`
	Slug          string   `json:"slug" yaml:"slug" validate:"required,slug"`
	Category      string   `json:"category" yaml:"category"`
	Difficulty    string   `json:"difficulty" yaml:"difficulty"`
	Topics        []string `json:"topics" yaml:"topics" validate:"dive,required"`
	QuestionCount int      `json:"question_count" yaml:"question_count" validate:"gte=0"`
}
