package costume

import (
	"strings"

	"github.com/novy-stil/service-atelier/pkg/domain"
)

// Costume is a rentable catalog item.
type Costume struct {
	id            int64
	title         string
	description   string
	price         int64
	available     bool
	imageFilename string
}

// NewCostume validates and creates a costume that has not been stored yet.
func NewCostume(title, description string, price int64, available bool, imageFilename string) (*Costume, error) {
	c := &Costume{available: available, imageFilename: imageFilename}
	if err := c.apply(title, description, price); err != nil {
		return nil, err
	}
	if imageFilename == "" {
		return nil, domain.NewValidationError("costume image is required")
	}
	return c, nil
}

// ReconstructCostume rebuilds a Costume from persistence data (no validation).
func ReconstructCostume(id int64, title, description string, price int64, available bool, imageFilename string) *Costume {
	return &Costume{
		id:            id,
		title:         title,
		description:   description,
		price:         price,
		available:     available,
		imageFilename: imageFilename,
	}
}

// Update replaces the editable fields.
func (c *Costume) Update(title, description string, price int64, available bool) error {
	if err := c.apply(title, description, price); err != nil {
		return err
	}
	c.available = available
	return nil
}

// ReplaceImage swaps the stored image and returns the previous file name.
func (c *Costume) ReplaceImage(filename string) string {
	old := c.imageFilename
	c.imageFilename = filename
	return old
}

// AssignID records the id given by storage.
func (c *Costume) AssignID(id int64) { c.id = id }

func (c *Costume) apply(title, description string, price int64) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return domain.NewValidationError("costume title is required")
	}
	if price < 0 {
		return domain.NewValidationError("costume price must not be negative")
	}
	c.title = title
	c.description = strings.TrimSpace(description)
	c.price = price
	return nil
}

func (c *Costume) ID() int64             { return c.id }
func (c *Costume) Title() string         { return c.title }
func (c *Costume) Description() string   { return c.description }
func (c *Costume) Price() int64          { return c.price }
func (c *Costume) Available() bool       { return c.available }
func (c *Costume) ImageFilename() string { return c.imageFilename }
