package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func TestParseCommand(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  CommandType
		args  []string
	}{
		{"/weight C-12 845", CommandWeight, []string{"C-12", "845"}},
		{"WEIGH c-12 845", CommandWeight, []string{"c-12", "845"}},
		{"/move C-12 North Meadow", CommandMove, []string{"C-12", "North", "Meadow"}},
		{"/treat C-12 illness LA-200", CommandTreat, []string{"C-12", "illness", "LA-200"}},
		{"/due", CommandDue, nil},
		{"?", CommandHelp, nil},
		{"/forecast Lancaster PA", CommandWeather, []string{"Lancaster", "PA"}},
		{"the red heifer calved last night", CommandUnknown, []string{"red", "heifer", "calved", "last", "night"}},
		{"   ", CommandUnknown, nil},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()
			cmd := ParseCommand(tt.input)
			assert.Equal(t, tt.want, cmd.Type)
			assert.Equal(t, tt.args, cmd.Args)
			assert.Equal(t, tt.input, cmd.Raw)
		})
	}
}

func TestDateEncoding(t *testing.T) {
	t.Parallel()

	type holder struct {
		Day  Date  `json:"day" bson:"day"`
		Opt  *Date `json:"opt,omitempty" bson:"opt,omitempty"`
		Zero Date  `json:"zero" bson:"zero"`
	}
	in := holder{Day: MustParseDate("2024-02-29"), Opt: NewDate(2025, 1, 3).Ptr()}

	raw, err := json.Marshal(in)
	require.NoError(t, err)
	assert.JSONEq(t, `{"day":"2024-02-29","opt":"2025-01-03","zero":null}`, string(raw))

	var fromJSON holder
	require.NoError(t, json.Unmarshal(raw, &fromJSON))
	assert.True(t, fromJSON.Day.Equal(in.Day))
	assert.True(t, fromJSON.Zero.IsZero())

	doc, err := bson.Marshal(in)
	require.NoError(t, err)
	var fromBSON holder
	require.NoError(t, bson.Unmarshal(doc, &fromBSON))
	assert.Equal(t, "2024-02-29", fromBSON.Day.String())
	assert.Equal(t, "2025-01-03", fromBSON.Opt.String())
	assert.True(t, fromBSON.Zero.IsZero())

	var bad Date
	assert.Error(t, json.Unmarshal([]byte(`"29/02/2024"`), &bad))

	withTime, err := ParseDate("2024-03-10T22:15:00Z")
	require.NoError(t, err)
	assert.Equal(t, "2024-03-10", withTime.String())
}

func TestSpeciesRegistry(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 283, GestationDays(SpeciesCattle))
	assert.Equal(t, 114, GestationDays(SpeciesPig))
	assert.Equal(t, DefaultGestationDays, GestationDays("Bison"))

	assert.True(t, IsValidSexTerm(SpeciesHorse, "Mare"))
	assert.False(t, IsValidSexTerm(SpeciesHorse, "Cow"))
	assert.Equal(t, []string{"Female", "Male"}, SexVocabulary("Bison"))

	assert.Equal(t, "Steer", CastratedTerm(SpeciesCattle))
	assert.True(t, IsInfertile(SpeciesMule))
	assert.False(t, IsKnownSpecies("Bison"))
	assert.Len(t, KnownSpecies(), 12)
}

func TestAnimalDerivedFields(t *testing.T) {
	t.Parallel()

	bull := Animal{ID: "a1", Species: SpeciesCattle, Sex: "Bull", Tag: "B-1"}
	assert.Equal(t, "Bull", bull.DisplaySex())
	bull.Castration = &Castration{Date: MustParseDate("2024-05-01")}
	assert.Equal(t, "Steer", bull.DisplaySex())
	assert.Equal(t, "B-1", bull.DisplayName())
	assert.False(t, bull.CanBreed())

	cow := Animal{ID: "a2", Species: SpeciesCattle, Sex: "Cow"}
	assert.True(t, cow.CanBreed())
	cow.Sale = &Sale{DateSold: MustParseDate("2024-06-01")}
	assert.False(t, cow.IsActive())
	assert.False(t, cow.CanBreed())
	assert.Equal(t, "a2", cow.DisplayName())
}

func TestWindowOverlap(t *testing.T) {
	t.Parallel()

	a := Window{Start: MustParseDate("2024-03-01"), End: MustParseDate("2024-03-10")}
	b := SingleDay(MustParseDate("2024-04-05"))

	assert.False(t, a.Overlaps(b, 0))
	assert.True(t, a.Overlaps(b, 30))
	assert.True(t, a.Contains(MustParseDate("2024-03-05"), 0))
	assert.False(t, a.Contains(MustParseDate("2024-03-12"), 0))
	assert.True(t, a.Contains(MustParseDate("2024-03-12"), 2))
	assert.Equal(t, "2024-03-11", a.Shift(10).Start.String())
}
