package domain

import (
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var ErrCertificationNameRequired = errors.New("certification name is required")

// Certification is a catalog entry describing a credential that units
// can require and personnel can hold
type Certification struct {
	ID                  primitive.ObjectID `bson:"_id,omitempty"`
	CertificationID     string             `bson:"certificationId"`
	Name                string             `bson:"name"`
	Description         string             `bson:"description,omitempty"`
	Category            string             `bson:"category,omitempty"`
	TypicalValidityDays int                `bson:"typicalValidityDays,omitempty"`
	CreatedAt           time.Time          `bson:"createdAt"`
}

// NewCertification creates a catalog entry
func NewCertification(certificationID, name, description, category string, typicalValidityDays int) (*Certification, error) {
	if strings.TrimSpace(name) == "" {
		return nil, ErrCertificationNameRequired
	}
	return &Certification{
		CertificationID:     certificationID,
		Name:                name,
		Description:         description,
		Category:            category,
		TypicalValidityDays: typicalValidityDays,
		CreatedAt:           time.Now().UTC(),
	}, nil
}
