package store

// Fixture is a self-contained data set used to seed the memory driver, a
// fresh SQL database in tests, or a local demo database.
type Fixture struct {
	Translations []Translation `json:"translations"`
	Books        []Book        `json:"books"`
	Verses       []Verse       `json:"verses"`
}

// SampleFixture is a handful of public passages in two translations.
func SampleFixture() *Fixture {
	return &Fixture{
		Translations: []Translation{
			{ID: 1, Shortname: "BSB", Year: 2016, Type: "formal"},
			{ID: 2, Shortname: "KJV", Year: 1611, Type: "formal"},
		},
		Books: []Book{
			{ID: 1, Name: "Genesis", Testament: "OT"},
			{ID: 19, Name: "Psalms", Testament: "OT"},
			{ID: 43, Name: "John", Testament: "NT"},
		},
		Verses: []Verse{
			{ID: 1, TranslationID: 1, BookID: 1, Chapter: 1, Number: 1, Text: "In the beginning God created the heavens and the earth."},
			{ID: 2, TranslationID: 1, BookID: 1, Chapter: 1, Number: 2, Text: "Now the earth was formless and void, and darkness was over the surface of the deep. And the Spirit of God was hovering over the surface of the waters."},
			{ID: 3, TranslationID: 1, BookID: 1, Chapter: 1, Number: 3, Text: "And God said, \"Let there be light,\" and there was light."},
			{ID: 4, TranslationID: 1, BookID: 19, Chapter: 117, Number: 1, Text: "Praise the LORD, all you nations! Extol Him, all you peoples!"},
			{ID: 5, TranslationID: 1, BookID: 19, Chapter: 117, Number: 2, Text: "For great is His loving devotion toward us, and the faithfulness of the LORD endures forever. Hallelujah!"},
			{ID: 6, TranslationID: 1, BookID: 43, Chapter: 3, Number: 16, Text: "For God so loved the world that He gave His one and only Son, that everyone who believes in Him shall not perish but have eternal life."},
			{ID: 7, TranslationID: 1, BookID: 43, Chapter: 3, Number: 17, Text: "For God did not send His Son into the world to condemn the world, but to save the world through Him."},
			{ID: 8, TranslationID: 2, BookID: 1, Chapter: 1, Number: 1, Text: "In the beginning God created the heaven and the earth."},
			{ID: 9, TranslationID: 2, BookID: 19, Chapter: 117, Number: 2, Text: "For his merciful kindness is great toward us: and the truth of the LORD endureth for ever. Praise ye the LORD."},
			{ID: 10, TranslationID: 2, BookID: 19, Chapter: 117, Number: 1, Text: "O praise the LORD, all ye nations: praise him, all ye people."},
			{ID: 11, TranslationID: 2, BookID: 43, Chapter: 3, Number: 16, Text: "For God so loved the world, that he gave his only begotten Son, that whosoever believeth in him should not perish, but have everlasting life."},
		},
	}
}
