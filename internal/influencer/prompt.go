package influencer

import (
	"fmt"
	"strings"
)

// PromptTriple holds the three prompt registers built from one Selection.
// English is the one sent to image services; Indonesian is display only.
type PromptTriple struct {
	English    string `json:"promptEn"`
	Indonesian string `json:"promptId"`
	Long       string `json:"promptLong"`
}

type shotPhrases struct {
	English    string
	Indonesian string
	Long       string
	Pose       string
}

var shotTypes = map[ShotType]shotPhrases{
	HalfBody: {
		English:    "Half-body portrait",
		Indonesian: "Potret setengah badan",
		Long:       "Half-body portrait capturing head to waist",
		Pose:       "standing facing forward toward the camera in a relaxed symmetrical stance",
	},
	FullBody: {
		English:    "Full-body shot, wide angle, showing shoes and entire outfit",
		Indonesian: "Foto seluruh badan, terlihat sepatu",
		Long:       "Full-body shot showing the entire physique from head to toe",
		Pose:       "standing facing forward toward the camera in a relaxed symmetrical stance, full figure visible including shoes",
	},
}

const longTemplate = "%s of a photorealistic AI influencer %s, %s ethnicity, approximately %s. " +
	"Identity: distinct and naturally structured facial anatomy with realistic proportions, subtle asymmetry, and authentic ethnic characteristics. " +
	"Pose: %s, weight evenly distributed, shoulders relaxed, posture confident. Arms positioned naturally with relaxed hands. " +
	"Skin: natural skin texture with visible pores, micro-details, and realistic imperfections. Avoid over-smoothing. " +
	"Hair: %s. " +
	"Face: natural facial features appropriate to ethnicity, expressive eyes, authentic emotion, wearing %s. " +
	"Outfit: %s. " +
	"Lighting: soft professional studio lighting with realistic falloff and gentle shadows. " +
	"Background: clean %s backdrop with minimal distractions. " +
	"Camera: captured as real-world photography using a full-frame camera, 85mm lens, shallow depth of field, ultra-sharp focus, realistic color science. " +
	"Style: hyper-realistic, editorial photography, premium influencer aesthetic, extremely detailed, natural body proportions. %s"

// BuildPrompts never fails. The English register is a comma-joined keyword
// list because it travels inside a URL path; the Indonesian one mirrors it
// for display and the long one wraps it in a descriptive paragraph.
func BuildPrompts(sel Selection) PromptTriple {
	genderEn, genderID := "man", "Pria"
	if sel.Gender == Female {
		genderEn, genderID = "woman", "Wanita"
	}

	shot, ok := shotTypes[sel.ShotType]
	if !ok {
		shot = shotTypes[HalfBody]
	}

	details := strings.TrimSpace(sel.Details)
	hijab := sel.Mode == Hijab

	var hairEn, hairID []string
	var hairLong string
	if hijab {
		hairEn = []string{"wearing modest hijab, realistic fabric texture"}
		hairID = []string{"Berhijab sopan, tekstur kain realistis"}
		hairLong = "wearing a modest hijab with high-quality realistic fabric texture"
	} else {
		hairEn = []string{suffixed(sel.HairColor, " hair"), sel.HairModel}
		hairID = []string{prefixed("Rambut ", sel.HairColor), prefixed("gaya ", sel.HairModel)}
		hairLong = fmt.Sprintf("%s hair styled in a %s", strings.TrimSpace(sel.HairColor), strings.TrimSpace(sel.HairModel))
	}

	en := []string{
		shot.English,
		"photorealistic fashion model " + genderEn,
		suffixed(sel.Ethnicity, " ethnicity"),
		sel.AgeRange,
		"distinct facial features",
		"realistic skin texture",
		"natural pores",
	}
	en = append(en, hairEn...)
	en = append(en,
		"expressive eyes",
		"standing pose",
		"facing camera",
		prefixed("outfit ", sel.Outfit),
		"studio lighting",
		"soft shadows",
		suffixed(sel.Background, " background"),
		"85mm lens",
		"f/1.8",
		"sharp focus",
		"editorial photography",
		"raw style",
		details,
	)
	promptEn := joinFragments(en)

	id := []string{
		shot.Indonesian,
		"model fesyen fotorealistik " + genderID,
		prefixed("etnis ", sel.Ethnicity),
		prefixed("usia ", sel.AgeRange),
		"fitur wajah khas",
		"tekstur kulit realistis",
	}
	id = append(id, hairID...)
	id = append(id,
		"pose berdiri menghadap kamera",
		prefixed("pakaian ", sel.Outfit),
		"pencahayaan studio",
		prefixed("latar belakang ", sel.Background),
		"lensa 85mm",
		"fokus tajam",
		"fotografi editorial",
		details,
	)

	accessories := details
	if accessories == "" {
		accessories = "minimal accessories"
	}

	long := fmt.Sprintf(longTemplate,
		shot.Long,
		genderEn,
		strings.TrimSpace(sel.Ethnicity),
		strings.TrimSpace(sel.AgeRange),
		shot.Pose,
		hairLong,
		accessories,
		strings.TrimSpace(sel.Outfit),
		strings.TrimSpace(sel.Background),
		promptEn,
	)

	return PromptTriple{
		English:    promptEn,
		Indonesian: joinFragments(id),
		Long:       long,
	}
}

func joinFragments(parts []string) string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, p)
	}
	return strings.Join(out, ", ")
}

// prefixed and suffixed drop the fixed wording when the slot is blank so
// that an unset token disappears instead of leaving a dangling label.
func prefixed(prefix, value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	return prefix + value
}

func suffixed(value, suffix string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	return value + suffix
}
