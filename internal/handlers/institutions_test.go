package handlers

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/meghan128/sportx-sub001/internal/models"
)

func TestInstitutionSimilarity(t *testing.T) {
	assert.Equal(t, 1.0, institutionSimilarity("State University of Sports Science", "state university of sports science"))
	// OCR noise still scores high against the official record.
	assert.Greater(t, institutionSimilarity("State Universty of Sports Science", "State University of Sports Science"), 0.9)
	assert.Less(t, institutionSimilarity("Acme Widget Corp", "State University of Sports Science"), 0.7)
}

func TestInstitutionBestMatch(t *testing.T) {
	registry := []models.AccreditedInstitution{
		{ID: 1, Name: "National Sports Medicine Institute"},
		{ID: 2, Name: "State University of Sports Science"},
		{ID: 3, Name: "Riverside College of Physiotherapy"},
	}

	best, conf := institutionBestMatch("state university of sports science", registry)
	assert.NotNil(t, best)
	assert.Equal(t, uint(2), best.ID)
	assert.Greater(t, conf, 0.95)

	_, conf = institutionBestMatch("Completely Unrelated Academy", registry)
	assert.Less(t, conf, 0.85)
}
