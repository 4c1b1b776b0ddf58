package lexicon

import (
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/poiesic/morphit/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_IsValid(t *testing.T) {
	require.NoError(t, Default().Validate())
}

func TestDefault_ReturnsFreshCopy(t *testing.T) {
	a := Default()
	a.Concepts["nordic"] = "Caucasian"
	a.Features["chin"]["long"] = Templates{"changed"}

	b := Default()
	_, ok := b.Concepts["nordic"]
	assert.False(t, ok)
	assert.Equal(t, Templates{"L2_{ethnicity}_Chin_SizeZ_max"}, b.Features["chin"]["long"])
}

func TestLexicon_Lookups(t *testing.T) {
	lex := Default()

	category, ok := lex.Category("elvish")
	assert.True(t, ok)
	assert.Equal(t, "Elf", category)

	category, ok = lex.Category("east-asian")
	assert.True(t, ok)
	assert.Equal(t, "Asian", category)

	_, ok = lex.Category("tall")
	assert.False(t, ok)

	value, ok := lex.Intensity("very")
	assert.True(t, ok)
	assert.InDelta(t, 0.9, value, 1e-9)

	assert.True(t, lex.IsNegation("without"))
	assert.False(t, lex.IsNegation("with"))
	assert.True(t, lex.IsFeature("shoulders"))
	assert.False(t, lex.IsFeature("long"))

	templates, ok := lex.Modifier("lips", "full")
	assert.True(t, ok)
	assert.Len(t, templates, 2)

	_, ok = lex.Modifier("lips", "long")
	assert.False(t, ok)

	assert.Equal(t, "L1_Dwarf", lex.CategoryParameter("Dwarf"))
}

func TestLexicon_Antonym(t *testing.T) {
	lex := Default()

	tests := []struct {
		modifier string
		want     string
		wantOK   bool
	}{
		{"long", "short", true},
		{"wide-set", "narrow-set", true},
		{"broad", "narrow", true},
		{"pointed", "", false}, // explicitly no opposite
		{"upturned", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.modifier, func(t *testing.T) {
			got, ok := lex.Antonym(tt.modifier)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTemplates_Expand(t *testing.T) {
	templates := Templates{"L2_{ethnicity}_Chin_SizeZ_max", "L2__Eyes_Size_max"}
	assert.Equal(t,
		[]string{"L2_Asian_Chin_SizeZ_max", "L2__Eyes_Size_max"},
		templates.Expand("Asian"))
}

func TestLexicon_Categories(t *testing.T) {
	got := Default().Categories()
	assert.True(t, slices.IsSorted(got))
	assert.Equal(t, []string{"African", "Anime", "Asian", "Caucasian", "Dwarf", "Elf", "Latin"}, got)
}

func TestLexicon_ParameterNames(t *testing.T) {
	names := Default().ParameterNames()

	assert.True(t, slices.IsSorted(names))
	assert.Contains(t, names, "L1_Caucasian")
	assert.Contains(t, names, "L1_Elf")
	assert.Contains(t, names, "L2_Asian_Chin_SizeZ_max")
	assert.Contains(t, names, "L2_Caucasian_Chin_SizeZ_max")
	assert.Contains(t, names, "L2__Eyes_Size_max")
	assert.Contains(t, names, "L2__Chest_Mass-Tone_min-max")
	assert.Contains(t, names, "L2__Pelvis_Gluteus_Mass-Tone_max-min")
	for _, name := range names {
		assert.NotContains(t, name, "{")
	}
	assert.Len(t, slices.Compact(slices.Clone(names)), len(names))
}

func TestParse_Empty(t *testing.T) {
	lex, err := Parse(nil)
	require.NoError(t, err)
	assert.Equal(t, Default(), lex)
}

func TestParse_MergesOverDefaults(t *testing.T) {
	doc := `
default_value: 0.6
concepts:
  nordic: Caucasian
intensities:
  barely: 0.2
features:
  ears:
    big: L2_{ethnicity}_Ears_Scale_max
  brows:
    thick: L2_{ethnicity}_Brows_Volume_max
    thin: [L2_{ethnicity}_Brows_Volume_min, L2_{ethnicity}_Brows_Width_min]
genders:
  default: female
`
	lex, err := Parse([]byte(doc))
	require.NoError(t, err)

	assert.InDelta(t, 0.6, lex.DefaultValue, 1e-9)
	assert.Equal(t, core.GenderFemale, lex.Genders.Default)
	// Gender keyword lists were not overridden.
	assert.Contains(t, lex.Genders.Male, "man")

	category, ok := lex.Category("nordic")
	assert.True(t, ok)
	assert.Equal(t, "Caucasian", category)
	_, ok = lex.Category("elf")
	assert.True(t, ok, "built-in concepts survive")

	_, ok = lex.Intensity("very")
	assert.True(t, ok)

	// A feature entry replaces the built-in one.
	assert.Equal(t, Templates{"L2_{ethnicity}_Ears_Scale_max"}, lex.Features["ears"]["big"])
	_, ok = lex.Modifier("ears", "pointed")
	assert.False(t, ok)

	thin, ok := lex.Modifier("brows", "thin")
	assert.True(t, ok)
	assert.Len(t, thin, 2)

	_, ok = lex.Modifier("eyes", "big")
	assert.True(t, ok, "other features survive")
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"unknown field", "colours: [red]\n"},
		{"malformed yaml", "concepts: [\n"},
		{"templates as map", "features:\n  chin:\n    long: {a: b}\n"},
		{"value out of range", "default_value: 1.5\n"},
		{"zero default value", "default_value: 0\n"},
		{"intensity out of range", "intensities:\n  hugely: 2\n"},
		{"unknown placeholder", "features:\n  chin:\n    long: L2_{race}_Chin\n"},
		{"part placeholder in feature", "features:\n  chin:\n    long: L2__{part}_Chin\n"},
		{"empty template list", "features:\n  chin:\n    long: []\n"},
		{"antonym to nowhere", "antonyms:\n  long: endless\n"},
		{"trait to unknown modifier", "traits:\n  wise:\n    - {feature: chin, modifier: wise, value: 0.5}\n"},
		{"synonym to unknown trait", "synonyms:\n  sage: sagacious\n"},
		{"bad gender default", "genders:\n  default: robot\n"},
		{"empty prefix", "category_prefix: \"\"\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidLexicon)
		})
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "lexicon.yaml")
	require.NoError(t, os.WriteFile(path, []byte("concepts:\n  hobbit: Dwarf\n"), 0o644))

	lex, err := LoadFile(path)
	require.NoError(t, err)
	category, ok := lex.Category("hobbit")
	assert.True(t, ok)
	assert.Equal(t, "Dwarf", category)

	_, err = LoadFile(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}
