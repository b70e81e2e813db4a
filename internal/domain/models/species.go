package models

// Species names a kind of livestock known to the registry.
type Species string

const (
	SpeciesCattle Species = "Cattle"
	SpeciesHorse  Species = "Horse"
	SpeciesPig    Species = "Pig"
	SpeciesSheep  Species = "Sheep"
	SpeciesGoat   Species = "Goat"
	SpeciesLlama  Species = "Llama"
	SpeciesAlpaca Species = "Alpaca"
	SpeciesDonkey Species = "Donkey"
	SpeciesRabbit Species = "Rabbit"
	SpeciesDog    Species = "Dog"
	SpeciesCat    Species = "Cat"
	SpeciesMule   Species = "Mule"
)

// Gender is the biological sex behind a species-specific sex term.
type Gender string

const (
	GenderFemale Gender = "Female"
	GenderMale   Gender = "Male"
)

// DefaultGestationDays applies to species the registry does not know.
const DefaultGestationDays = 283

type sexTerm struct {
	term   string
	gender Gender
}

type speciesInfo struct {
	gestationDays int
	terms         []sexTerm
	castrated     string
	offspring     string
	infertile     bool
}

var fallbackSpecies = speciesInfo{
	gestationDays: DefaultGestationDays,
	terms:         []sexTerm{{"Female", GenderFemale}, {"Male", GenderMale}},
	offspring:     "Offspring",
}

var speciesRegistry = map[Species]speciesInfo{
	SpeciesCattle: {
		gestationDays: 283,
		terms:         []sexTerm{{"Heifer", GenderFemale}, {"Cow", GenderFemale}, {"Bull", GenderMale}, {"Steer", GenderMale}},
		castrated:     "Steer",
		offspring:     "Calf",
	},
	SpeciesHorse: {
		gestationDays: 340,
		terms:         []sexTerm{{"Filly", GenderFemale}, {"Mare", GenderFemale}, {"Colt", GenderMale}, {"Stallion", GenderMale}, {"Gelding", GenderMale}},
		castrated:     "Gelding",
		offspring:     "Foal",
	},
	SpeciesPig: {
		gestationDays: 114,
		terms:         []sexTerm{{"Gilt", GenderFemale}, {"Sow", GenderFemale}, {"Boar", GenderMale}, {"Barrow", GenderMale}},
		castrated:     "Barrow",
		offspring:     "Piglet",
	},
	SpeciesSheep: {
		gestationDays: 147,
		terms:         []sexTerm{{"Ewe", GenderFemale}, {"Ram", GenderMale}, {"Wether", GenderMale}},
		castrated:     "Wether",
		offspring:     "Lamb",
	},
	SpeciesGoat: {
		gestationDays: 150,
		terms:         []sexTerm{{"Doeling", GenderFemale}, {"Doe", GenderFemale}, {"Buckling", GenderMale}, {"Buck", GenderMale}, {"Wether", GenderMale}},
		castrated:     "Wether",
		offspring:     "Kid",
	},
	SpeciesLlama: {
		gestationDays: 350,
		terms:         []sexTerm{{"Female", GenderFemale}, {"Male", GenderMale}, {"Gelding", GenderMale}},
		castrated:     "Gelding",
		offspring:     "Cria",
	},
	SpeciesAlpaca: {
		gestationDays: 345,
		terms:         []sexTerm{{"Female", GenderFemale}, {"Male", GenderMale}, {"Gelding", GenderMale}},
		castrated:     "Gelding",
		offspring:     "Cria",
	},
	SpeciesDonkey: {
		gestationDays: 365,
		terms:         []sexTerm{{"Jenny", GenderFemale}, {"Jack", GenderMale}, {"Gelding", GenderMale}},
		castrated:     "Gelding",
		offspring:     "Foal",
	},
	SpeciesRabbit: {
		gestationDays: 31,
		terms:         []sexTerm{{"Doe", GenderFemale}, {"Buck", GenderMale}},
		offspring:     "Kit",
	},
	SpeciesDog: {
		gestationDays: 63,
		terms:         []sexTerm{{"Bitch", GenderFemale}, {"Dog", GenderMale}, {"Neutered Male", GenderMale}},
		castrated:     "Neutered Male",
		offspring:     "Puppy",
	},
	SpeciesCat: {
		gestationDays: 65,
		terms:         []sexTerm{{"Queen", GenderFemale}, {"Tom", GenderMale}, {"Neutered Male", GenderMale}},
		castrated:     "Neutered Male",
		offspring:     "Kitten",
	},
	// Mules are sterile; the registry keeps a nominal gestation only so date
	// math stays total.
	SpeciesMule: {
		gestationDays: DefaultGestationDays,
		terms:         []sexTerm{{"Molly", GenderFemale}, {"John", GenderMale}, {"Gelding", GenderMale}},
		castrated:     "Gelding",
		offspring:     "Foal",
		infertile:     true,
	},
}

// genderByTerm is built once from the registry; terms shared by several
// species always agree on gender.
var genderByTerm = func() map[string]Gender {
	out := map[string]Gender{}
	for _, t := range fallbackSpecies.terms {
		out[t.term] = t.gender
	}
	for _, info := range speciesRegistry {
		for _, t := range info.terms {
			out[t.term] = t.gender
		}
	}
	return out
}()

func lookupSpecies(species Species) speciesInfo {
	if info, ok := speciesRegistry[species]; ok {
		return info
	}
	return fallbackSpecies
}

// KnownSpecies lists the registry in display order.
func KnownSpecies() []Species {
	return []Species{
		SpeciesCattle, SpeciesHorse, SpeciesPig, SpeciesSheep, SpeciesGoat, SpeciesLlama,
		SpeciesAlpaca, SpeciesDonkey, SpeciesRabbit, SpeciesDog, SpeciesCat, SpeciesMule,
	}
}

// IsKnownSpecies reports whether species has a registry entry.
func IsKnownSpecies(species Species) bool {
	_, ok := speciesRegistry[species]
	return ok
}

// GestationDays returns the gestation length for species.
func GestationDays(species Species) int {
	return lookupSpecies(species).gestationDays
}

// SexVocabulary returns the ordered sex terms valid for species.
func SexVocabulary(species Species) []string {
	info := lookupSpecies(species)
	out := make([]string, 0, len(info.terms))
	for _, t := range info.terms {
		out = append(out, t.term)
	}
	return out
}

// IsValidSexTerm reports whether term belongs to the vocabulary of species.
func IsValidSexTerm(species Species, term string) bool {
	for _, t := range lookupSpecies(species).terms {
		if t.term == term {
			return true
		}
	}
	return false
}

// GenderOf maps a sex term to its gender. Unrecognised or empty terms count
// as female, matching how dams were picked before terms were enforced.
func GenderOf(term string) Gender {
	if g, ok := genderByTerm[term]; ok {
		return g
	}
	return GenderFemale
}

// CastratedTerm returns the castrated-male term for species, or "" when the
// species has none.
func CastratedTerm(species Species) string {
	return lookupSpecies(species).castrated
}

// OffspringTerm returns the word used for a newborn of species.
func OffspringTerm(species Species) string {
	return lookupSpecies(species).offspring
}

// IsInfertile reports whether species cannot be bred.
func IsInfertile(species Species) bool {
	return lookupSpecies(species).infertile
}
