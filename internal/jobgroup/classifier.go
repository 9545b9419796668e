// Package jobgroup maps employee master data to a job-group profile used to
// parameterize classification thresholds.
package jobgroup

import (
	"strings"

	"github.com/soleview/worklens/internal/model"
)

// Rule maps keyword matches in one profile field to a job group. Rules are
// evaluated in order; the first match wins.
type Rule struct {
	Field    string // "position" or "department"
	Group    model.JobGroup
	Keywords []string
}

// DefaultRules returns the ordered classification table. Position outranks
// department so a production-department team lead still lands in MANAGEMENT.
func DefaultRules() []Rule {
	return []Rule{
		{Field: "position", Group: model.JobManagement, Keywords: []string{"lead", "manager", "director", "executive", "head"}},
		{Field: "department", Group: model.JobProduction, Keywords: []string{"production", "manufacturing", "process", "facility", "utility", "engineering"}},
		{Field: "department", Group: model.JobResearch, Keywords: []string{"research", "development", "r&d", "qc", "quality", "analysis", "lab"}},
	}
}

// Classifier resolves an employee profile to a job group.
type Classifier struct {
	rules []Rule
}

// New creates a classifier with the default rule table.
func New() *Classifier {
	return &Classifier{rules: DefaultRules()}
}

// NewWithRules creates a classifier with a custom rule table.
func NewWithRules(rules []Rule) *Classifier {
	return &Classifier{rules: rules}
}

// Classify maps a profile to its job group. Employees matching no rule
// default to OFFICE.
func (c *Classifier) Classify(profile *model.EmployeeProfile) model.JobGroup {
	dept := strings.ToLower(profile.Department)
	position := strings.ToLower(profile.Position)

	for _, rule := range c.rules {
		field := dept
		if rule.Field == "position" {
			field = position
		}
		for _, kw := range rule.Keywords {
			if strings.Contains(field, kw) {
				return rule.Group
			}
		}
	}

	return model.JobOffice
}
