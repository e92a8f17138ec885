package influencer

import (
	"strings"
)

// ParseArgs applies bot command arguments such as
// "male hijab full 16:9 model=imagen-4 eth=Korean" on top of defaults.
// Tokens that match nothing are collected into Details.
func ParseArgs(raw string, defaults Selection) Selection {
	sel := defaults
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Normalize(sel)
	}

	var details []string
	for _, tok := range strings.Fields(raw) {
		orig := tok
		tok = strings.ToLower(tok)

		switch tok {
		case "female", "woman", "f", "wanita":
			sel.Gender = Female
			continue
		case "male", "man", "m", "pria":
			sel.Gender = Male
			continue
		case "hijab":
			sel.Mode = Hijab
			continue
		case "nohijab", "no-hijab":
			sel.Mode = NoHijab
			continue
		case "half", "half-body", "halfbody":
			sel.ShotType = HalfBody
			continue
		case "full", "full-body", "fullbody":
			sel.ShotType = FullBody
			continue
		case "9:16", "portrait", "vertical":
			sel.AspectRatio = Portrait
			continue
		case "16:9", "landscape", "horizontal":
			sel.AspectRatio = Landscape
			continue
		}

		if isModel(tok) {
			sel.Model = tok
			continue
		}

		key, value, ok := strings.Cut(orig, "=")
		if ok {
			value = strings.ReplaceAll(value, "_", " ")
			if applyKeyed(&sel, strings.ToLower(key), value) {
				continue
			}
		}

		details = append(details, orig)
	}

	if len(details) > 0 {
		sel.Details = strings.Join(details, " ")
	}
	return Normalize(sel)
}

func applyKeyed(sel *Selection, key, value string) bool {
	c := Catalog()
	switch key {
	case "model":
		if isModel(strings.ToLower(value)) {
			sel.Model = strings.ToLower(value)
			return true
		}
	case "eth", "ethnicity":
		if v, ok := matchOption(c.Ethnicities, value); ok {
			sel.Ethnicity = v
			return true
		}
	case "age":
		if v, ok := matchOption(c.AgeRanges, value); ok {
			sel.AgeRange = v
			return true
		}
	case "color", "hair":
		if v, ok := matchOption(c.HairColors, value); ok {
			sel.HairColor = v
			return true
		}
	case "style", "hairstyle":
		for _, hm := range c.HairModels {
			if strings.EqualFold(hm.Value, value) || strings.EqualFold(hm.Label, value) {
				sel.HairModel = hm.Value
				return true
			}
		}
	case "outfit":
		if v, ok := matchOption(c.Outfits, value); ok {
			sel.Outfit = v
			return true
		}
	case "bg", "background":
		if v, ok := matchOption(c.Backgrounds, value); ok {
			sel.Background = v
			return true
		}
	}
	return false
}

func matchOption(opts []NamedOption, value string) (string, bool) {
	value = strings.TrimSpace(value)
	for _, o := range opts {
		if strings.EqualFold(o.Value, value) || strings.EqualFold(o.Label, value) {
			return o.Value, true
		}
	}
	return "", false
}
