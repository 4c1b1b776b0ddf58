package lexicon

import "github.com/poiesic/morphit/core"

// Default returns the built-in lexicon. Each call returns a fresh copy, so
// callers may adjust it before handing it to a mapper.
func Default() *Lexicon {
	return &Lexicon{
		DefaultCategory: "Caucasian",
		CategoryPrefix:  "L1_",
		DefaultValue:    0.7,

		Concepts: map[string]string{
			"caucasian":  "Caucasian",
			"european":   "Caucasian",
			"asian":      "Asian",
			"east-asian": "Asian",
			"african":    "African",
			"afro":       "African",
			"latin":      "Latin",
			"latino":     "Latin",
			"latina":     "Latin",
			"anime":      "Anime",
			"elf":        "Elf",
			"elven":      "Elf",
			"elvish":     "Elf",
			"dwarf":      "Dwarf",
			"dwarven":    "Dwarf",
		},

		// Mass-Tone keys are named <mass>-<tone>: muscular is low mass, high tone.
		Compounds: map[string][]CompoundEffect{
			"muscular": {{Template: "L2__{part}_Mass-Tone_min-max", Value: 1.0}},
			"toned":    {{Template: "L2__{part}_Mass-Tone_min-max", Value: 0.7}},
			"skinny":   {{Template: "L2__{part}_Mass-Tone_min-min", Value: 0.8}},
			"heavy":    {{Template: "L2__{part}_Mass-Tone_max-min", Value: 0.7}},
			"fat":      {{Template: "L2__{part}_Mass-Tone_max-min", Value: 1.0}},
			"bulky":    {{Template: "L2__{part}_Mass-Tone_max-max", Value: 0.8}},
		},
		CompoundParts: []string{
			"Abdomen", "Arms_Upperarm", "Arms_Forearm", "Chest", "Legs_Upperlegs",
			"Legs_Lowerlegs", "Pelvis_Gluteus", "Shoulders",
		},

		Features: map[string]map[string]Templates{
			// Face
			"chin": {
				"long":      {"L2_{ethnicity}_Chin_SizeZ_max"},
				"short":     {"L2_{ethnicity}_Chin_SizeZ_min"},
				"wide":      {"L2_{ethnicity}_Chin_SizeX_max"},
				"narrow":    {"L2_{ethnicity}_Chin_SizeX_min"},
				"prominent": {"L2_{ethnicity}_Chin_Prominence_max"},
				"defined":   {"L2_{ethnicity}_Chin_Prominence_max"},
				"strong":    {"L2_{ethnicity}_Chin_Prominence_max"},
				"cleft":     {"L2_{ethnicity}_Chin_Cleft_max"},
			},
			"lips": {
				"full": {"L2_{ethnicity}_Mouth_UpperlipVolume_max", "L2_{ethnicity}_Mouth_LowerlipVolume_max"},
				"thin": {"L2_{ethnicity}_Mouth_UpperlipVolume_min", "L2_{ethnicity}_Mouth_LowerlipVolume_min"},
			},
			"eyes": {
				"big":        {"L2__Eyes_Size_max"},
				"large":      {"L2__Eyes_Size_max"},
				"small":      {"L2__Eyes_Size_min"},
				"narrow":     {"L2__Eyes_Size_min"},
				"sharp":      {"L2__Eyes_Size_min"},
				"intense":    {"L2__Eyes_Size_min"},
				"wide-set":   {"L2_{ethnicity}_Eyes_PosX_max"},
				"narrow-set": {"L2_{ethnicity}_Eyes_PosX_min"},
				"close-set":  {"L2_{ethnicity}_Eyes_PosX_min"},
				"focused":    {"L2_{ethnicity}_Eyes_PosX_min"},
			},
			"nose": {
				"long":     {"L2_{ethnicity}_Nose_SizeY_max"},
				"short":    {"L2_{ethnicity}_Nose_SizeY_min"},
				"wide":     {"L2_{ethnicity}_Nose_BaseSizeX_max"},
				"thin":     {"L2_{ethnicity}_Nose_BridgeSizeX_min"},
				"refined":  {"L2_{ethnicity}_Nose_BridgeSizeX_min"},
				"sharp":    {"L2_{ethnicity}_Nose_TipSize_min"},
				"pointy":   {"L2_{ethnicity}_Nose_TipSize_min"},
				"upturned": {"L2_{ethnicity}_Nose_TipAngle_max"},
			},
			"jaw": {
				"strong":  {"L2_{ethnicity}_Jaw_Angle_min"},
				"defined": {"L2_{ethnicity}_Jaw_Angle_min"},
				"angular": {"L2_{ethnicity}_Jaw_Angle_min"},
				"soft":    {"L2_{ethnicity}_Jaw_Angle_max"},
				"wide":    {"L2_{ethnicity}_Jaw_ScaleX_max"},
				"narrow":  {"L2_{ethnicity}_Jaw_ScaleX_min"},
			},
			"ears": {
				"big":     {"L2_{ethnicity}_Ears_SizeX_max", "L2_{ethnicity}_Ears_SizeY_max"},
				"small":   {"L2_{ethnicity}_Ears_SizeX_min", "L2_{ethnicity}_Ears_SizeY_min"},
				"pointed": {"L2__Fantasy_EarsPointed_max"},
			},
			"forehead": {
				"high": {"L2_{ethnicity}_Forehead_SizeY_max"},
				"low":  {"L2_{ethnicity}_Forehead_SizeY_min"},
				"wide": {"L2_{ethnicity}_Forehead_SizeX_max"},
			},
			// Body
			"shoulders": {
				"broad":  {"L2__Shoulders_SizeX_max"},
				"narrow": {"L2__Shoulders_SizeX_min"},
			},
			"waist": {
				"wide":   {"L2__Waist_Size_max"},
				"thin":   {"L2__Waist_Size_min"},
				"narrow": {"L2__Waist_Size_min"},
			},
			"torso": {
				"long":  {"L2__Torso_Length_max"},
				"short": {"L2__Torso_Length_min"},
			},
			"arms": {
				"long":  {"L2__Arms_UpperarmLength_max", "L2__Arms_ForearmLength_max"},
				"short": {"L2__Arms_UpperarmLength_min", "L2__Arms_ForearmLength_min"},
			},
			"legs": {
				"long":  {"L2__Legs_UpperlegLength_max", "L2__Legs_LowerlegLength_max"},
				"short": {"L2__Legs_UpperlegLength_min", "L2__Legs_LowerlegLength_min"},
			},
		},

		Intensities: map[string]float64{
			"slightly":   0.3,
			"somewhat":   0.5,
			"moderately": 0.6,
			"very":       0.9,
			"extremely":  1.0,
			"incredibly": 1.0,
		},

		Antonyms: map[string]string{
			"long":       "short",
			"short":      "long",
			"wide":       "narrow",
			"narrow":     "wide",
			"big":        "small",
			"large":      "small",
			"small":      "big",
			"full":       "thin",
			"thin":       "full",
			"broad":      "narrow",
			"high":       "low",
			"low":        "high",
			"strong":     "soft",
			"soft":       "strong",
			"wide-set":   "narrow-set",
			"narrow-set": "wide-set",
			"close-set":  "wide-set",
			"pointed":    "",
			"cleft":      "",
			"prominent":  "",
		},
		Negations: []string{"no", "not", "without"},

		Genders: GenderTable{
			Default: core.GenderMale,
			Male:    []string{"man", "male", "boy", "gentleman", "guy", "dude", "he", "him", "his"},
			Female:  []string{"woman", "female", "girl", "lady", "gal", "she", "her", "hers"},
		},

		Traits: map[string][]TraitEffect{
			"intelligent": {
				{Feature: "forehead", Modifier: "high", Value: 0.7},
				{Feature: "eyes", Modifier: "focused", Value: 0.6},
				{Feature: "eyes", Modifier: "sharp", Value: 0.7},
				{Feature: "nose", Modifier: "refined", Value: 0.5},
				{Feature: "jaw", Modifier: "defined", Value: 0.6},
			},
			"wise": {
				{Feature: "forehead", Modifier: "high", Value: 0.8},
			},
			"strong": {
				{Feature: "jaw", Modifier: "strong", Value: 0.8},
				{Feature: "jaw", Modifier: "wide", Value: 0.6},
				{Feature: "chin", Modifier: "prominent", Value: 0.7},
			},
			"gentle": {
				{Feature: "eyes", Modifier: "large", Value: 0.5},
				{Feature: "lips", Modifier: "full", Value: 0.5},
				{Feature: "jaw", Modifier: "soft", Value: 0.3},
			},
			"fierce": {
				{Feature: "eyes", Modifier: "narrow", Value: 0.7},
				{Feature: "jaw", Modifier: "angular", Value: 0.7},
				{Feature: "nose", Modifier: "sharp", Value: 0.6},
			},
			"athlete": {
				{Feature: "jaw", Modifier: "strong", Value: 0.7},
			},
		},
		Synonyms: map[string]string{
			"smart":    "intelligent",
			"clever":   "intelligent",
			"bright":   "intelligent",
			"powerful": "strong",
			"robust":   "strong",
			"athletic": "athlete",
		},
	}
}
