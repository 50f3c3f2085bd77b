package store

import (
	"fjacquet/gl-posting/internal/models"
)

// MockReferenceStore is an in-memory ReferenceSource for tests.
type MockReferenceStore struct {
	Data models.ReferenceData

	// LoadError is returned by Load when set.
	LoadError error
	Loads     int
}

// Load returns a copy of the mock data.
func (m *MockReferenceStore) Load() (models.ReferenceData, error) {
	m.Loads++
	if m.LoadError != nil {
		return models.ReferenceData{}, m.LoadError
	}
	return m.Data.Clone(), nil
}
