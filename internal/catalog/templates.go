package catalog

// Language describes an editor language option with its starter template
type Language struct {
	ID       string `json:"id"`
	Label    string `json:"label"`
	Template string `json:"template"`
}

// Languages lists the supported editor languages in display order
var Languages = []Language{
	{
		ID:       "javascript",
		Label:    "JavaScript",
		Template: "// Write your solution here\nfunction solution() {\n    \n}",
	},
	{
		ID:       "typescript",
		Label:    "TypeScript",
		Template: "// Write your solution here\nfunction solution(): any {\n    \n}",
	},
	{
		ID:       "python",
		Label:    "Python",
		Template: "# Write your solution here\ndef solution():\n    pass",
	},
	{
		ID:       "cpp",
		Label:    "C++",
		Template: "// Write your solution here\n#include <iostream>\nusing namespace std;\n\nint main() {\n    return 0;\n}",
	},
	{
		ID:       "java",
		Label:    "Java",
		Template: "// Write your solution here\npublic class Solution {\n    public void solution() {\n        \n    }\n}",
	},
}

// TemplateFor returns the starter template for a language, or the empty
// string for an unknown language.
func TemplateFor(languageID string) string {
	for _, lang := range Languages {
		if lang.ID == languageID {
			return lang.Template
		}
	}
	return ""
}
