package user

import (
	"strings"

	"github.com/novy-stil/service-atelier/pkg/domain"
)

const maxAge = 120

// Profile holds optional personal details of a user.
type Profile struct {
	id            int64
	userID        int64
	name          string
	phone         string
	age           *int
	photoFilename string
}

// ProfileUpdate carries the fields a user sent; nil means untouched.
type ProfileUpdate struct {
	Name  *string
	Phone *string
	Age   *int
}

// NewProfile creates an empty profile for userID.
func NewProfile(userID int64) *Profile {
	return &Profile{userID: userID}
}

// ReconstructProfile rebuilds a Profile from persistence data (no validation).
func ReconstructProfile(id, userID int64, name, phone string, age *int, photoFilename string) *Profile {
	return &Profile{id: id, userID: userID, name: name, phone: phone, age: age, photoFilename: photoFilename}
}

// Apply merges an update. Blank strings clear a field.
func (p *Profile) Apply(u ProfileUpdate) error {
	if u.Age != nil && (*u.Age < 0 || *u.Age > maxAge) {
		return domain.NewValidationError("age must be between 0 and 120")
	}
	if u.Name != nil {
		p.name = strings.TrimSpace(*u.Name)
	}
	if u.Phone != nil {
		p.phone = strings.TrimSpace(*u.Phone)
	}
	if u.Age != nil {
		age := *u.Age
		p.age = &age
	}
	return nil
}

// ReplacePhoto swaps the photo and returns the previous file name.
func (p *Profile) ReplacePhoto(filename string) string {
	old := p.photoFilename
	p.photoFilename = filename
	return old
}

// AssignID records the id given by storage.
func (p *Profile) AssignID(id int64) { p.id = id }

func (p *Profile) ID() int64             { return p.id }
func (p *Profile) UserID() int64         { return p.userID }
func (p *Profile) Name() string          { return p.name }
func (p *Profile) Phone() string         { return p.phone }
func (p *Profile) Age() *int             { return p.age }
func (p *Profile) PhotoFilename() string { return p.photoFilename }
