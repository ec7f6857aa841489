package domain

import "fmt"

// PlaceholderLogo is stored when a company is added without a logo.
const PlaceholderLogo = "/placeholder-logo.svg"

type CompanyRecord struct {
	Name string `json:"name,omitempty"` // Display name, also the detail page key
	URL  string `json:"url,omitempty"`  // Vendor website
	Logo string `json:"logo,omitempty"` // Image URL, placeholder when absent
	See  string `json:"see,omitempty"`  // Related category label, marks a reference entry
}

// IsReference reports whether the record points to another category instead of a company.
func (c CompanyRecord) IsReference() bool {
	return c.See != ""
}

// IsValid reports whether the record carries both a name and a url.
func (c CompanyRecord) IsValid() bool {
	return c.Name != "" && c.URL != ""
}

// HasLogo reports whether the record has a logo other than the placeholder.
func (c CompanyRecord) HasLogo() bool {
	return c.Logo != "" && c.Logo != PlaceholderLogo
}

// DisplayLogo returns the logo to render, substituting the placeholder.
func (c CompanyRecord) DisplayLogo() string {
	if c.Logo == "" {
		return PlaceholderLogo
	}
	return c.Logo
}

// Validate checks the fields required when a company is added.
func (c CompanyRecord) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("%w: name is required", ErrValidation)
	}
	if c.URL == "" {
		return fmt.Errorf("%w: url is required", ErrValidation)
	}
	return nil
}

// WithDefaults fills the logo with the placeholder when it is empty.
func (c CompanyRecord) WithDefaults() CompanyRecord {
	if c.Logo == "" {
		c.Logo = PlaceholderLogo
	}
	return c
}

// Merge applies patch over c field by field. Empty patch fields keep the
// current value, so a field cannot be cleared through Merge.
func (c CompanyRecord) Merge(patch CompanyRecord) CompanyRecord {
	merged := c
	if patch.Name != "" {
		merged.Name = patch.Name
	}
	if patch.URL != "" {
		merged.URL = patch.URL
	}
	if patch.Logo != "" {
		merged.Logo = patch.Logo
	}
	if patch.See != "" {
		merged.See = patch.See
	}
	return merged
}
