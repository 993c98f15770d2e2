package services

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/gcfisi/coursehub-backend/internal/platform/logger"
)

func TestDefaultTemplateHas141Nodes(t *testing.T) {
	if got := DefaultStructureTemplate().NodeCount(); got != 141 {
		t.Fatalf("compiled default: got %d", got)
	}
	if got := LoadStructureTemplate(logger.Nop(), "").NodeCount(); got != 141 {
		t.Fatalf("embedded template: got %d", got)
	}
}

func TestLoadStructureTemplateOverride(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.yaml")
	if err := os.WriteFile(good, []byte(`
template: course_structure
version: 2
categories:
  - name: Syllabus
  - name: Weeks
    topics:
      count: 2
      name_format: "Week %d"
      subcategories: [Slides]
`), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	tpl := LoadStructureTemplate(logger.Nop(), good)
	if tpl.Version != 2 || tpl.NodeCount() != 6 {
		t.Fatalf("override not used: version=%d nodes=%d", tpl.Version, tpl.NodeCount())
	}
	if got := tpl.Categories[1].Topics.topicName(2); got != "Week 2" {
		t.Fatalf("topic name=%q", got)
	}

	if got := LoadStructureTemplate(logger.Nop(), filepath.Join(dir, "missing.yaml")).NodeCount(); got != 141 {
		t.Fatalf("missing override should fall back, got %d nodes", got)
	}
}

func TestParseStructureTemplateRejectsInvalid(t *testing.T) {
	cases := map[string]string{
		"empty":       "template: x\n",
		"blank name":  "categories:\n  - name: ' '\n",
		"duplicate":   "categories:\n  - name: A\n  - name: A\n",
		"bad format":  "categories:\n  - name: T\n    topics:\n      count: 2\n      name_format: Topic\n",
		"extra verb":  "categories:\n  - name: T\n    topics:\n      count: 2\n      name_format: '%s %d'\n",
		"two numbers": "categories:\n  - name: T\n    topics:\n      count: 2\n      name_format: 'Topic %d.%d'\n",
		"negative":    "categories:\n  - name: T\n    topics:\n      count: -1\n",
		"blank child": "categories:\n  - name: A\n    children: ['']\n",
		"not yaml":    "categories: [",
	}
	for name, raw := range cases {
		if _, err := ParseStructureTemplate([]byte(raw)); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}

func TestTopicNameFormatAllowsEscapedPercent(t *testing.T) {
	tpl, err := ParseStructureTemplate([]byte("categories:\n  - name: T\n    topics:\n      count: 1\n      name_format: 'Unit %d (100%%)'\n"))
	if err != nil {
		t.Fatalf("ParseStructureTemplate: %v", err)
	}
	if got := tpl.Categories[0].Topics.topicName(1); got != "Unit 1 (100%)" {
		t.Fatalf("topic name=%q", got)
	}
}
