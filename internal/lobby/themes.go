package lobby

// DefaultColorThemes is the full palette offered during THEME_VOTING (lobbies
// have no custom theme list), taken verbatim (in meaning) from
// original_source/minigame/models.py's COLOR_THEMES.
var DefaultColorThemes = []string{
	"Nature", "Animals", "Food", "Technology", "Fantasy", "Space", "Sports", "Music",
}

// DefaultPrompts is the built-in pool of drawing prompts, always drawn from
// together with any custom prompts the lobby has configured, taken from
// original_source/minigame/models.py's DEFAULT_PROMPTS.
var DefaultPrompts = []string{
	"A mythical creature having breakfast",
	"A dream you had last night",
	"Your favorite food as a monster",
	"A city floating in the clouds",
	"An alien exploring Earth",
	"A self-portrait as an animal",
	"A robot falling in love",
	"A secret garden",
	"Time travel gone wrong",
	"The world's worst superhero",
}
