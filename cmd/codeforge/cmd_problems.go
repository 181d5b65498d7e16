package main

import (
	"fmt"
	"net/url"
	"strings"
)

// problemRow is the subset of problem fields the CLI renders
type problemRow struct {
	ID         string   `json:"id"`
	Title      string   `json:"title"`
	Difficulty string   `json:"difficulty"`
	Tags       []string `json:"tags"`
	Acceptance float64  `json:"acceptance"`
	Solved     bool     `json:"solved"`
	Attempted  bool     `json:"attempted"`
	Bookmarked bool     `json:"bookmarked"`

	Description string   `json:"description"`
	Constraints []string `json:"constraints"`
	Hints       []string `json:"hints"`
	Companies   []string `json:"companies"`
}

func cmdProblems(args []string) error {
	if len(args) == 0 {
		return cmdProblemsList(args)
	}
	switch args[0] {
	case "list":
		return cmdProblemsList(args[1:])
	case "info":
		if len(args) < 2 {
			return fmt.Errorf("usage: codeforge problems info <id>")
		}
		return cmdProblemsInfo(args[1])
	default:
		return fmt.Errorf("unknown problems command: %s", args[0])
	}
}

// cmdProblemsList renders the catalog, optionally filtered:
//
//	codeforge problems list [difficulty] [search terms...]
func cmdProblemsList(args []string) error {
	query := url.Values{}
	if len(args) > 0 {
		switch args[0] {
		case "Easy", "Medium", "Hard":
			query.Set("difficulty", args[0])
			args = args[1:]
		}
	}
	if len(args) > 0 {
		query.Set("search", strings.Join(args, " "))
	}

	var resp struct {
		Problems []problemRow `json:"problems"`
		Count    int          `json:"count"`
	}
	path := "/v1/problems"
	if encoded := query.Encode(); encoded != "" {
		path += "?" + encoded
	}
	if err := getJSON(path, &resp); err != nil {
		return fmt.Errorf("list problems (is the daemon running?): %w", err)
	}

	if resp.Count == 0 {
		fmt.Println("No problems match.")
		return nil
	}

	for _, p := range resp.Problems {
		fmt.Printf("%-8s %-35s %-8s %s\n",
			statusMark(p), p.Title, p.Difficulty, strings.Join(p.Tags, ", "))
	}
	fmt.Printf("\n%d problems\n", resp.Count)
	return nil
}

func cmdProblemsInfo(id string) error {
	var p problemRow
	if err := getJSON("/v1/problems/"+url.PathEscape(id), &p); err != nil {
		return fmt.Errorf("get problem: %w", err)
	}

	fmt.Printf("%s [%s] %s\n", p.Title, p.Difficulty, statusMark(p))
	fmt.Printf("Acceptance: %.1f%%\n", p.Acceptance)
	if len(p.Tags) > 0 {
		fmt.Printf("Tags: %s\n", strings.Join(p.Tags, ", "))
	}
	if len(p.Companies) > 0 {
		fmt.Printf("Asked by: %s\n", strings.Join(p.Companies, ", "))
	}
	fmt.Println()
	fmt.Println(p.Description)
	if len(p.Constraints) > 0 {
		fmt.Println("\nConstraints:")
		for _, c := range p.Constraints {
			fmt.Printf("  - %s\n", c)
		}
	}
	if len(p.Hints) > 0 {
		fmt.Printf("\n%d hints available (shown in the UI on request)\n", len(p.Hints))
	}
	return nil
}

func statusMark(p problemRow) string {
	mark := " "
	switch {
	case p.Solved:
		mark = "✓"
	case p.Attempted:
		mark = "…"
	}
	if p.Bookmarked {
		mark += " ★"
	}
	return mark
}
