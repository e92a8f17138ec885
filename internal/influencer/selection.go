package influencer

import (
	"errors"
	"fmt"
)

type Gender string

const (
	Female Gender = "Female"
	Male   Gender = "Male"
)

type Mode string

const (
	Hijab   Mode = "Hijab"
	NoHijab Mode = "No Hijab"
)

type ShotType string

const (
	HalfBody ShotType = "Half-body"
	FullBody ShotType = "Full-body"
)

type AspectRatio string

const (
	Portrait  AspectRatio = "9:16"
	Landscape AspectRatio = "16:9"
)

var ErrInvalidSelection = errors.New("invalid selection")

// Selection is a snapshot of everything the user picked. String fields hold
// the English tokens from the option catalog; only Details is free text.
type Selection struct {
	Gender      Gender      `json:"gender"`
	Mode        Mode        `json:"mode"`
	Ethnicity   string      `json:"ethnicity"`
	AgeRange    string      `json:"ageRange"`
	HairColor   string      `json:"hairColor"`
	HairModel   string      `json:"hairModel"`
	Outfit      string      `json:"outfit"`
	Background  string      `json:"background"`
	AspectRatio AspectRatio `json:"aspectRatio"`
	ShotType    ShotType    `json:"shotType"`
	Model       string      `json:"model"`
	Details     string      `json:"details"`
}

func DefaultSelection() Selection {
	c := Catalog()
	sel := Selection{
		Gender:      Female,
		Mode:        NoHijab,
		Ethnicity:   "Chinese",
		AgeRange:    c.AgeRanges[1].Value,
		HairColor:   c.HairColors[1].Value,
		Outfit:      c.Outfits[0].Value,
		Background:  c.Backgrounds[0].Value,
		AspectRatio: Portrait,
		ShotType:    HalfBody,
		Model:       c.Models[0].Value,
	}
	if valid := HairModelsFor(Female); len(valid) > 0 {
		sel.HairModel = valid[0].Value
	}
	return sel
}

// Normalize replaces a hairstyle that does not fit the gender with the
// first hairstyle that does.
func Normalize(sel Selection) Selection {
	valid := HairModelsFor(sel.Gender)
	for _, hm := range valid {
		if hm.Value == sel.HairModel {
			return sel
		}
	}
	if len(valid) > 0 {
		sel.HairModel = valid[0].Value
	} else {
		sel.HairModel = ""
	}
	return sel
}

func (s Selection) WithGender(g Gender) Selection {
	s.Gender = g
	return Normalize(s)
}

// Validate checks the enumerated fields. Catalog tokens are not checked:
// the prompt builder accepts any phrase.
func Validate(sel Selection) error {
	switch sel.Gender {
	case Female, Male:
	default:
		return fmt.Errorf("%w: gender %q", ErrInvalidSelection, sel.Gender)
	}
	switch sel.Mode {
	case Hijab, NoHijab:
	default:
		return fmt.Errorf("%w: mode %q", ErrInvalidSelection, sel.Mode)
	}
	switch sel.ShotType {
	case HalfBody, FullBody:
	default:
		return fmt.Errorf("%w: shot type %q", ErrInvalidSelection, sel.ShotType)
	}
	switch sel.AspectRatio {
	case Portrait, Landscape:
	default:
		return fmt.Errorf("%w: aspect ratio %q", ErrInvalidSelection, sel.AspectRatio)
	}
	if !isModel(sel.Model) {
		return fmt.Errorf("%w: model %q", ErrInvalidSelection, sel.Model)
	}
	return nil
}
