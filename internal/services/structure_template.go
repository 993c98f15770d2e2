package services

import (
	"embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/gcfisi/coursehub-backend/internal/platform/logger"
)

//go:embed default_structure.yaml
var structureTemplateFS embed.FS

const defaultTopicNameFormat = "Topic %d"

type StructureTemplate struct {
	Template   string                  `yaml:"template"`
	Version    int                     `yaml:"version"`
	Categories []StructureCategorySpec `yaml:"categories"`
}

type StructureCategorySpec struct {
	Name        string               `yaml:"name"`
	Description string               `yaml:"description"`
	Children    []string             `yaml:"children"`
	Topics      *StructureTopicsSpec `yaml:"topics"`
}

type StructureTopicsSpec struct {
	Count         int      `yaml:"count"`
	NameFormat    string   `yaml:"name_format"`
	Subcategories []string `yaml:"subcategories"`
}

// fallback used when neither the override nor the embedded YAML is usable
func DefaultStructureTemplate() *StructureTemplate {
	return &StructureTemplate{
		Template: "course_structure",
		Version:  1,
		Categories: []StructureCategorySpec{
			{Name: "Syllabus"},
			{Name: "Evaluation Format"},
			{Name: "Extra Material", Children: []string{"Articles", "Books", "Projects"}},
			{Name: "Past Evaluations", Children: []string{"Midterm Exam", "Practice 1", "Practice 2", "Practice 3", "Final Exam"}},
			{Name: "Topics", Topics: &StructureTopicsSpec{
				Count:      16,
				NameFormat: defaultTopicNameFormat,
				Subcategories: []string{
					"Slides",
					"Teamwork Guidelines",
					"Frequently Asked Questions",
					"Class Notes",
					"Topics to Reinforce",
					"Improvement Proposals",
					"Case Studies",
				},
			}},
		},
	}
}

// LoadStructureTemplate reads the template from path when set, then the
// embedded YAML, then the compiled-in default. It never fails.
func LoadStructureTemplate(log *logger.Logger, path string) *StructureTemplate {
	if path = strings.TrimSpace(path); path != "" {
		data, err := os.ReadFile(path)
		if err == nil {
			var tpl *StructureTemplate
			if tpl, err = ParseStructureTemplate(data); err == nil {
				return tpl
			}
		}
		if log != nil {
			log.Warn("structure template override unusable; using embedded", "path", path, "error", err)
		}
	}
	data, err := structureTemplateFS.ReadFile("default_structure.yaml")
	if err == nil {
		var tpl *StructureTemplate
		if tpl, err = ParseStructureTemplate(data); err == nil {
			return tpl
		}
	}
	if log != nil {
		log.Warn("embedded structure template invalid; using fallback", "error", err)
	}
	return DefaultStructureTemplate()
}

func ParseStructureTemplate(data []byte) (*StructureTemplate, error) {
	var tpl StructureTemplate
	if err := yaml.Unmarshal(data, &tpl); err != nil {
		return nil, fmt.Errorf("parse structure template: %w", err)
	}
	if err := tpl.Validate(); err != nil {
		return nil, err
	}
	return &tpl, nil
}

func (t *StructureTemplate) Validate() error {
	if t == nil {
		return errors.New("missing template")
	}
	if len(t.Categories) == 0 {
		return errors.New("template has no categories")
	}
	seen := map[string]bool{}
	for i := range t.Categories {
		c := &t.Categories[i]
		c.Name = strings.TrimSpace(c.Name)
		if c.Name == "" {
			return fmt.Errorf("category %d has no name", i+1)
		}
		if seen[c.Name] {
			return fmt.Errorf("duplicate category %q", c.Name)
		}
		seen[c.Name] = true
		for j, child := range c.Children {
			if strings.TrimSpace(child) == "" {
				return fmt.Errorf("category %q child %d has no name", c.Name, j+1)
			}
		}
		if c.Topics == nil {
			continue
		}
		if c.Topics.Count < 0 {
			return fmt.Errorf("category %q has negative topic count", c.Name)
		}
		if c.Topics.NameFormat == "" {
			c.Topics.NameFormat = defaultTopicNameFormat
		}
		if !validTopicFormat(c.Topics.NameFormat) {
			return fmt.Errorf("category %q topic name_format must contain exactly one %%d verb", c.Name)
		}
		for j, sub := range c.Topics.Subcategories {
			if strings.TrimSpace(sub) == "" {
				return fmt.Errorf("category %q subcategory %d has no name", c.Name, j+1)
			}
		}
	}
	return nil
}

// validTopicFormat reports whether f takes the topic number as its only verb.
// Literal percent signs must be written as %%.
func validTopicFormat(f string) bool {
	bare := strings.ReplaceAll(f, "%%", "")
	return strings.Count(bare, "%") == 1 && strings.Contains(bare, "%d")
}

// NodeCount is the number of rows a generation from this template inserts.
func (t *StructureTemplate) NodeCount() int {
	if t == nil {
		return 0
	}
	total := 0
	for _, c := range t.Categories {
		total += 1 + len(c.Children)
		if c.Topics != nil {
			total += c.Topics.Count * (1 + len(c.Topics.Subcategories))
		}
	}
	return total
}

func (s *StructureTopicsSpec) topicName(i int) string {
	format := s.NameFormat
	if format == "" {
		format = defaultTopicNameFormat
	}
	return fmt.Sprintf(format, i)
}
