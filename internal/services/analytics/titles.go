package services

import "strconv"

var tutorialTitles = map[string]map[int]string{
	"javascript": {1: "Hello World", 2: "Variables", 3: "Math Operations", 4: "Functions"},
	"python":     {1: "Hello World", 2: "Variables", 3: "Math & Numbers", 4: "Functions"},
	"html":       {1: "Hello Web", 2: "Text & Paragraphs", 3: "Colors & Styling", 4: "Layout & Structure"},
}

// TutorialTitle возвращает название урока или "Tutorial {id}" для неизвестных.
func TutorialTitle(language string, tutorialID int) string {
	if title, ok := tutorialTitles[language][tutorialID]; ok {
		return title
	}
	return "Tutorial " + strconv.Itoa(tutorialID)
}
