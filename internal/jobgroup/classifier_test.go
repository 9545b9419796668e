package jobgroup

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/soleview/worklens/internal/model"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name       string
		department string
		position   string
		want       model.JobGroup
	}{
		{"team lead is management", "Production 2", "Team Lead", model.JobManagement},
		{"director in research is management", "R&D Center", "Director", model.JobManagement},
		{"manufacturing engineer is production", "Manufacturing Engineering", "Engineer", model.JobProduction},
		{"facility crew is production", "Facility Management", "Technician", model.JobProduction},
		{"qc analyst is research", "QC Analysis", "Analyst", model.JobResearch},
		{"lab staff is research", "Materials Lab", "Staff", model.JobResearch},
		{"finance staff defaults to office", "Finance", "Staff", model.JobOffice},
		{"empty profile defaults to office", "", "", model.JobOffice},
	}

	classifier := New()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			profile := &model.EmployeeProfile{Department: tt.department, Position: tt.position}
			assert.Equal(t, tt.want, classifier.Classify(profile))
		})
	}
}
