package translate

// Languages lists the selectable target languages in display order.
var Languages = []string{
	"English", "American English", "German", "Polish", "French", "Spanish",
	"Italian", "Dutch", "Portuguese", "Brazilian Portuguese", "Greek", "Swedish",
	"Danish", "Finnish", "Norwegian", "Czech", "Slovak", "Hungarian", "Romanian",
	"Bulgarian", "Croatian", "Serbian", "Slovenian", "Estonian", "Latvian",
	"Lithuanian", "Maltese", "Russian",
}

var deeplCodes = map[string]string{
	"Bulgarian":            "BG",
	"Czech":                "CS",
	"Danish":               "DA",
	"German":               "DE",
	"Greek":                "EL",
	"English":              "EN-GB",
	"American English":     "EN-US",
	"Spanish":              "ES",
	"Estonian":             "ET",
	"Finnish":              "FI",
	"French":               "FR",
	"Hungarian":            "HU",
	"Italian":              "IT",
	"Japanese":             "JA",
	"Lithuanian":           "LT",
	"Latvian":              "LV",
	"Dutch":                "NL",
	"Polish":               "PL",
	"Portuguese":           "PT-PT",
	"Brazilian Portuguese": "PT-BR",
	"Romanian":             "RO",
	"Russian":              "RU",
	"Slovak":               "SK",
	"Slovenian":            "SL",
	"Swedish":              "SV",
	"Chinese":              "ZH",
}

var isoCodes = map[string]string{
	"English":              "en",
	"American English":     "en",
	"German":               "de",
	"Polish":               "pl",
	"French":               "fr",
	"Spanish":              "es",
	"Italian":              "it",
	"Dutch":                "nl",
	"Portuguese":           "pt",
	"Brazilian Portuguese": "pt",
	"Greek":                "el",
	"Swedish":              "sv",
	"Danish":               "da",
	"Finnish":              "fi",
	"Norwegian":            "no",
	"Czech":                "cs",
	"Slovak":               "sk",
	"Hungarian":            "hu",
	"Romanian":             "ro",
	"Bulgarian":            "bg",
	"Croatian":             "hr",
	"Serbian":              "sr",
	"Slovenian":            "sl",
	"Estonian":             "et",
	"Latvian":              "lv",
	"Lithuanian":           "lt",
	"Maltese":              "mt",
	"Russian":              "ru",
	"Japanese":             "ja",
	"Chinese":              "zh-CN",
}

// DeepLCode returns the DeepL target_lang code for a language name.
func DeepLCode(language string) (string, bool) {
	code, ok := deeplCodes[language]
	return code, ok
}

// ISOCode returns the ISO 639-1 code web translators expect for a language name.
// Unknown names pass through unchanged so callers can supply raw codes.
func ISOCode(language string) string {
	if code, ok := isoCodes[language]; ok {
		return code
	}
	return language
}

// NextLanguage returns the language after current in display order.
func NextLanguage(current string) string {
	for i, lang := range Languages {
		if lang == current {
			return Languages[(i+1)%len(Languages)]
		}
	}
	return Languages[0]
}
