package importer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sells-group/media-import/internal/model"
	"github.com/sells-group/media-import/internal/parser"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
}

const mixedCSV = "first_name,last_name,email,phone,job_title,company,industry\n" +
	"Jane,Doe,jane@acme.com,555-123-4567,VP Media Buying,Acme,Retail\n" +
	"John,Roe,not-an-email,,Media Planner,Acme,Retail\n" +
	"Ann,Lee,ann@globex.com,,Chief Marketing Officer,Globex Media,Advertising\n" +
	",,,,,Initech,Software\n"

func TestPipeline_Run(t *testing.T) {
	res, err := New(nil, nil, nil).Run([]byte(mixedCSV), "people.csv")
	require.NoError(t, err)

	assert.Equal(t, "people.csv", res.FileName)
	assert.Equal(t, 3, res.Summary.Companies)
	assert.Equal(t, 3, res.Summary.Contacts)
	assert.Equal(t, 3, res.Summary.ValidCompanies)
	assert.Equal(t, 2, res.Summary.ValidContacts)
	assert.Equal(t, 1, res.Summary.Errors)
	assert.Equal(t, 0, res.Summary.Warnings)

	require.Len(t, res.Issues, 1)
	assert.Equal(t, 2, res.Issues[0].Row)
	assert.Equal(t, "email", res.Issues[0].Field)

	valid := res.ValidContacts()
	require.Len(t, valid, 2)
	assert.Equal(t, "Jane", valid[0].FirstName)
	assert.Equal(t, "Ann", valid[1].FirstName)

	require.Len(t, res.Quality, 3)
	scores := make([]int, len(res.Quality))
	byRow := make(map[int]ContactQuality)
	for i, q := range res.Quality {
		scores[i] = q.Score
		byRow[q.Row] = q
	}
	assert.IsNonIncreasing(t, scores)
	assert.Equal(t, "Jane Doe", byRow[1].Name)
	assert.Greater(t, byRow[1].Score, 0)
	assert.Equal(t, "John Roe", res.Quality[2].Name)

	var types []model.CompanyType
	for _, c := range res.ValidCompanies() {
		types = append(types, c.Type)
	}
	assert.Equal(t, []model.CompanyType{model.CompanyTypeBrand, model.CompanyTypeAgency, model.CompanyTypeVendor}, types)
}

func TestPipeline_Run_UnsupportedFormat(t *testing.T) {
	_, err := New(nil, nil, nil).Run([]byte("a,b"), "notes.txt")
	var ufe *parser.UnsupportedFormatError
	require.ErrorAs(t, err, &ufe)
}

func TestPipeline_Evaluate_IssuesOrderedByRow(t *testing.T) {
	parsed := &model.ParsedData{
		Companies: []model.CompanyCandidate{
			{Name: "Acme", SourceRow: 1},
			{Name: "acme", SourceRow: 3},
		},
		Contacts: []model.ContactCandidate{
			{FirstName: "A", Title: "Coordinator", CompanyName: "Nobody", SourceRow: 2},
		},
		Errors: []model.ImportError{model.NewError(4, "general", "{}", "boom")},
	}
	res := New(nil, nil, nil).Evaluate("x.json", parsed)

	rows := make([]int, len(res.Issues))
	for i, e := range res.Issues {
		rows[i] = e.Row
	}
	assert.IsNonDecreasing(t, rows)
	assert.Equal(t, 2, res.Summary.Errors)   // duplicate name + row error
	assert.Equal(t, 2, res.Summary.Warnings) // relevance + unknown company
	assert.Equal(t, 1, res.Summary.ValidCompanies)
	assert.Equal(t, 1, res.Summary.ValidContacts)

	run := res.Run()
	assert.Equal(t, "x.json", run.FileName)
	assert.Equal(t, 2, run.Companies)
	assert.Equal(t, 2, run.Errors)
}

func TestPipeline_EmptyFile(t *testing.T) {
	res, err := New(nil, nil, nil).Run([]byte("first_name,company\n"), "empty.csv")
	require.NoError(t, err)
	assert.Equal(t, Summary{}, res.Summary)
	assert.Empty(t, res.Issues)
	assert.Empty(t, res.ValidContacts())
	assert.NotNil(t, res.Quality)
}

func TestPipeline_BadEmployeeCountInvalidatesCompanyOnly(t *testing.T) {
	csv := "first_name,last_name,email,job_title,company,employees\n" +
		"Jane,Doe,jane@acme.com,Media Director,Acme,lots\n" +
		"Ann,Lee,ann@globex.com,Media Planner,Globex Media,40\n"

	res, err := New(nil, nil, nil).Run([]byte(csv), "people.csv")
	require.NoError(t, err)

	require.Len(t, res.Issues, 1)
	assert.Equal(t, 1, res.Issues[0].Row)
	assert.Equal(t, "employeeCount", res.Issues[0].Field)

	assert.Equal(t, 2, res.Summary.Companies)
	assert.Equal(t, 1, res.Summary.ValidCompanies)
	assert.Equal(t, 2, res.Summary.ValidContacts)

	valid := res.ValidCompanies()
	require.Len(t, valid, 1)
	assert.Equal(t, "Globex Media", valid[0].Name)
	assert.Equal(t, "Jane", res.ValidContacts()[0].FirstName)
}

func TestPipeline_QualityRankedBestFirst(t *testing.T) {
	parsed := &model.ParsedData{
		Contacts: []model.ContactCandidate{
			{FirstName: "Cal", Title: "Coordinator", Seniority: model.SeniorityCoordinator, SourceRow: 1},
			{FirstName: "Dee", Title: "Chief Media Officer", Email: "dee@acme.com", Phone: "5551234567",
				Seniority: model.SeniorityCLevel, DecisionMaking: true, SourceRow: 2},
			{FirstName: "Eve", Title: "Coordinator", Seniority: model.SeniorityCoordinator, SourceRow: 3},
		},
	}
	res := New(nil, nil, nil).Evaluate("ranked.json", parsed)

	require.Len(t, res.Quality, 3)
	assert.Equal(t, []int{2, 1, 3}, []int{res.Quality[0].Row, res.Quality[1].Row, res.Quality[2].Row})
	assert.Equal(t, "Dee", res.Quality[0].Name)
}
