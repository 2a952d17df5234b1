package catalog_test

import (
	"strings"
	"testing"

	"github.com/aretw0/mentorai/pkg/catalog"
	"github.com/aretw0/mentorai/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSample(t *testing.T) {
	companies := catalog.Sample()
	require.Len(t, companies, 6)
	assert.Equal(t, "acme-sre", companies[0].ID)
	assert.Equal(t, "Acme Cloud", companies[0].Name)
	assert.Equal(t, 2, companies[0].DSALevel)
	assert.Equal(t, 18.0, companies[0].UGCompensation)
	assert.Equal(t, "Go", companies[0].CodingLanguages["primary"])
	assert.Contains(t, companies[0].SubjectsToStudy, "Linux")
}

func TestParse_JSON(t *testing.T) {
	companies, err := catalog.Read(strings.NewReader(`{"companies":[
		{"id":"a","company_name":"Acme","dsa_level":"3","created_at":"2024-01-02T03:04:05Z"}]}`))
	require.NoError(t, err)
	require.Len(t, companies, 1)
	assert.Equal(t, 3, companies[0].DSALevel, "numeric strings are accepted")
	assert.Equal(t, 2024, companies[0].CreatedAt.Year())
}

func TestParse_Errors(t *testing.T) {
	_, err := catalog.Parse([]byte("companies: [unclosed"))
	assert.Error(t, err)

	_, err = catalog.Parse([]byte("companies:\n  - company_name: NoID\n"))
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = catalog.Parse([]byte("companies:\n  - {id: a, company_name: A}\n  - {id: a, company_name: B}\n"))
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = catalog.Parse([]byte("companies:\n  - {id: a, company_name: A, salary: 3}\n"))
	assert.Error(t, err, "unknown columns are rejected")
}
