package domain

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

const (
	maxAdTitleLen       = 256
	maxAdDescriptionLen = 4000
	maxAdOtherLinks     = 2
)

var (
	embedColorPattern = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)
	snowflakePattern  = regexp.MustCompile(`^[0-9]{1,20}$`)
)

// FieldError describes a single rejected field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationErrors collects every field that failed validation. Validation is
// all-or-nothing: a non-empty result means the whole section is rejected.
type ValidationErrors []FieldError

func (v ValidationErrors) Error() string {
	msgs := make([]string, len(v))
	for i, fe := range v {
		msgs[i] = fe.Field + ": " + fe.Message
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// Validate checks the advertisement section against its size and URL limits.
func (m MainConfig) Validate() ValidationErrors {
	var errs ValidationErrors

	if m.AdTitle == "" {
		errs = append(errs, FieldError{"adTitle", "ad title is required"})
	} else if len(m.AdTitle) > maxAdTitleLen {
		errs = append(errs, FieldError{"adTitle", fmt.Sprintf("must be %d characters or less", maxAdTitleLen)})
	}

	if m.AdDescription == "" {
		errs = append(errs, FieldError{"adDescription", "description is required"})
	} else if len(m.AdDescription) > maxAdDescriptionLen {
		errs = append(errs, FieldError{"adDescription", fmt.Sprintf("must be %d characters or less", maxAdDescriptionLen)})
	}

	if !validURL(m.AdInviteLink) {
		errs = append(errs, FieldError{"adInviteLink", "must be a valid invite link"})
	}

	if len(m.AdOtherLinks) > maxAdOtherLinks {
		errs = append(errs, FieldError{"adOtherLinks", fmt.Sprintf("maximum %d additional links", maxAdOtherLinks)})
	} else {
		for i, link := range m.AdOtherLinks {
			if !validURL(link) {
				errs = append(errs, FieldError{fmt.Sprintf("adOtherLinks[%d]", i), "must be a valid URL"})
			}
		}
	}

	if m.AdBanner != "" && !validURL(m.AdBanner) {
		errs = append(errs, FieldError{"adBanner", "must be a valid image URL"})
	}

	return errs
}

// Validate checks that every assigned channel looks like a Discord channel id.
// Nil entries are valid and mean the function is disabled.
func (c ChannelConfig) Validate() ValidationErrors {
	var errs ValidationErrors

	channels := []struct {
		field string
		value *string
	}{
		{"partnerChannel", c.PartnerChannel},
		{"reviewChannel", c.ReviewChannel},
		{"bumpChannel", c.BumpChannel},
		{"logChannel", c.LogChannel},
	}

	for _, ch := range channels {
		if ch.value != nil && !snowflakePattern.MatchString(*ch.value) {
			errs = append(errs, FieldError{ch.field, "must be a channel id or null"})
		}
	}

	return errs
}

// Validate checks the category against the fixed label set.
func (o OtherConfig) Validate() ValidationErrors {
	if o.Category == "" {
		return ValidationErrors{{Field: "category", Message: "category is required"}}
	}
	if !ValidCategory(o.Category) {
		return ValidationErrors{{Field: "category", Message: "must be one of: " + strings.Join(Categories, ", ")}}
	}
	return nil
}

// Validate checks the embed color format. Call ApplyDefaults first if the
// input may omit the color.
func (p PremiumConfig) Validate() ValidationErrors {
	if !embedColorPattern.MatchString(p.EmbedColor) {
		return ValidationErrors{{Field: "embedColor", Message: "must be a hex color like #5865F2"}}
	}
	return nil
}

// ApplyDefaults fills the embed color when it was omitted. The automation
// flags already default to false via the zero value.
func (p *PremiumConfig) ApplyDefaults() {
	if p.EmbedColor == "" {
		p.EmbedColor = DefaultEmbedColor
	}
}

func validURL(s string) bool {
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
