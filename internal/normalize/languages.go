package normalize

// languageNames maps ISO 639-2 codes to display names.
var languageNames = map[string]string{
	"ara": "Arabic",
	"chi": "Chinese",
	"cze": "Czech",
	"dan": "Danish",
	"dut": "Dutch",
	"eng": "English",
	"fin": "Finnish",
	"fre": "French",
	"ger": "German",
	"gre": "Greek, Modern (1453- )",
	"grc": "Greek, Ancient (to 1453)",
	"heb": "Hebrew",
	"hin": "Hindi",
	"hun": "Hungarian",
	"ita": "Italian",
	"jpn": "Japanese",
	"kor": "Korean",
	"lat": "Latin",
	"nor": "Norwegian",
	"per": "Persian",
	"pol": "Polish",
	"por": "Portuguese",
	"rus": "Russian",
	"spa": "Spanish",
	"swe": "Swedish",
	"tur": "Turkish",
	"ukr": "Ukrainian",
	"urd": "Urdu",
	"vie": "Vietnamese",
	"yid": "Yiddish",
	"zxx": "No linguistic content",
}
