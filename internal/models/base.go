package models

import (
	"urgentsales/server/internal/utils"
)

// Base carries the document ID shared by all primary-store documents.
type Base struct {
	ID utils.SixID `bson:"_id,omitempty" json:"id,omitempty"`
}

func (m *Base) GenIDIfEmpty() {
	if m.ID.IsZero() {
		m.GenID()
	}
}

func (m *Base) GenID() {
	m.ID = utils.NewSixID()
}

func NewBase() Base {
	return Base{ID: utils.NewSixID()}
}
