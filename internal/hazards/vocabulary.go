package hazards

// Category is one canonical hazard label with its synonym phrases.
type Category struct {
	Name     string
	Synonyms []string
}

// Categories is the priority-ordered classification table. Specific compound
// hazards come before broad ones because synonym lists overlap: "storm" is a
// cyclone synonym and a substring of "storm surge". First match wins, so the
// table is a slice, never a map.
var Categories = []Category{
	{Name: "storm surge", Synonyms: []string{"storm surge", "coastal flooding", "surge"}},
	{Name: "swell surge", Synonyms: []string{"swell surge", "long period swell", "sea swell"}},
	{Name: "high waves", Synonyms: []string{"high waves", "rough seas", "wave height"}},
	{Name: "heavy rain", Synonyms: []string{"heavy rain", "downpour", "torrential", "rainfall"}},
	{Name: "tsunami", Synonyms: []string{"tsunami", "tidal wave", "seismic wave", "earthquake"}},
	{Name: "landslide", Synonyms: []string{"landslide", "mudslide", "rock fall", "slope failure"}},
	{Name: "flood", Synonyms: []string{"flood", "flooding", "flooded", "water level", "inundation"}},
	{Name: "cyclone", Synonyms: []string{"cyclone", "hurricane", "typhoon", "storm", "wind speed"}},
	{Name: "ocean hazard", Synonyms: []string{"ocean hazard", "marine hazard", "sea condition"}},
}

// Keywords is the canonical hazard vocabulary used for keyword extraction.
// Extraction results never contain a key outside this list.
var Keywords = []string{
	"ocean hazard", "tsunami", "cyclone", "flood", "storm surge",
	"landslide", "heavy rain", "high waves", "swell surge",
}

// NegativeContexts are idiomatic non-disaster uses of hazard words. A text
// containing any of these is dropped before the model is ever consulted.
var NegativeContexts = []string{
	"flooded with emails",
	"flood of emails",
	"flood of emotions",
	"flood of offers",
	"data flood",
	"flood of memories",
}

// FindCategory looks up a category by canonical name. The second return is
// false for names outside the vocabulary; callers treat that as "no hazard
// filter", never as an error.
func FindCategory(name string) (Category, bool) {
	for _, c := range Categories {
		if c.Name == name {
			return c, true
		}
	}
	return Category{}, false
}
