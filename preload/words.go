// Package preload provides the preset word list a session starts from.
package preload

// UserCategory is the category given to words typed in by the user.
const UserCategory = "input"

// UserColor is the legend swatch for UserCategory. Points in that category
// are coloured by their position instead.
const UserColor = "#ffffff"

// FallbackColor is used for categories without a palette entry.
const FallbackColor = "#888888"

// Category is a named group of words drawn in one colour.
type Category struct {
	Name  string
	Color string
	Words []string
}

// Categories returns a curated list designed to form distinct semantic
// clusters, in legend order.
func Categories() []Category {
	return []Category{
		{Name: "fruit", Color: "#ef4444", Words: []string{
			"apple", "banana", "grape", "strawberry", "peach", "orange", "pear", "persimmon", "cherry", "melon",
		}},
		{Name: "animals", Color: "#f97316", Words: []string{
			"dog", "cat", "lion", "elephant", "rabbit", "panda", "giraffe", "zebra", "penguin", "dolphin",
		}},
		{Name: "vehicles", Color: "#eab308", Words: []string{
			"car", "train", "airplane", "ship", "bicycle", "bullet train", "rocket", "bus", "truck", "motorcycle",
		}},
		{Name: "emotions", Color: "#22c55e", Words: []string{
			"happy", "sad", "anger", "fun", "surprise", "despair", "excitement", "anxiety", "calm", "boredom",
		}},
		{Name: "nature", Color: "#06b6d4", Words: []string{
			"mountain", "sea", "sky", "sun", "moon", "star", "cloud", "thunder", "river", "forest",
		}},
		{Name: "professions", Color: "#3b82f6", Words: []string{
			"doctor", "teacher", "engineer", "police officer", "firefighter", "lawyer", "astronaut", "cook", "artist", "farmer",
		}},
		{Name: "stationery", Color: "#8b5cf6", Words: []string{
			"pencil", "eraser", "notebook", "ruler", "scissors", "pen", "glue", "paint", "crayon", "compass",
		}},
		{Name: "abstract", Color: "#ec4899", Words: []string{
			"love", "peace", "freedom", "time", "dream", "knowledge", "justice", "truth", "happiness", "courage",
		}},
	}
}

// Words returns every preset word with its category, flattened in legend
// order.
func Words() (words []string, categories []string) {
	for _, category := range Categories() {
		for _, word := range category.Words {
			words = append(words, word)
			categories = append(categories, category.Name)
		}
	}
	return words, categories
}

// Palette maps every preset category, plus UserCategory, to its colour.
func Palette() map[string]string {
	palette := map[string]string{UserCategory: UserColor}
	for _, category := range Categories() {
		palette[category.Name] = category.Color
	}
	return palette
}
