package resolve

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Aman-CERP/dorindex/internal/model"
)

func TestPrimaryAuthor(t *testing.T) {
	contributors := []model.Contributor{
		{Name: []dv{{Value: "Second, Author"}}},
		{Name: []dv{{Value: "Primary, Author"}}, Status: "primary"},
	}

	assert.Equal(t, "Primary, Author", PrimaryAuthor(contributors))
	assert.Equal(t, "Second, Author", PrimaryAuthor(contributors[:1]))
	assert.Empty(t, PrimaryAuthor(nil))
}

func TestAuthors_RendersNameForms(t *testing.T) {
	contributors := []model.Contributor{
		{Name: []dv{{Value: "Plain Name"}}},
		{Name: []dv{{Value: "Ignored"}, {Value: "Display Form", Type: "display"}}},
		{Name: []dv{{StructuredValue: []dv{
			{Value: "Ada", Type: "forename"},
			{Value: "Lovelace", Type: "surname"},
			{Value: "1815-1852", Type: "life dates"},
		}}}},
		{Name: []dv{{ParallelValue: []dv{{Value: "Tolstoy"}, {Value: "Толстой", Status: "primary"}}}}},
		{ParallelContributor: []model.Contributor{{Name: []dv{{Value: "Parallel Person"}}}}},
		{Name: []dv{{Value: "Plain Name"}}},
	}

	assert.Equal(t, []string{
		"Plain Name",
		"Display Form",
		"Lovelace, Ada, 1815-1852",
		"Толстой",
		"Parallel Person",
	}, Authors(contributors))
}

func TestORCIDs(t *testing.T) {
	contributors := []model.Contributor{
		{Identifier: []dv{{URI: "https://orcid.org/0000-0001-2345-6789", Type: "ORCID"}}},
		{Identifier: []dv{{Value: "0000-0002-1111-2222", Type: "ORCID", Source: &model.Source{URI: "https://sandbox.orcid.org"}}}},
		{Identifier: []dv{{Value: "0000-0003-3333-4444", Type: "orcid"}}},
		{Identifier: []dv{{Value: "n79021164", Type: "LCNAF"}}},
	}

	assert.Equal(t, []string{
		"https://orcid.org/0000-0001-2345-6789",
		"https://sandbox.orcid.org/0000-0002-1111-2222",
		"https://orcid.org/0000-0003-3333-4444",
	}, ORCIDs(contributors))
}
