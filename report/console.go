package report

import "fmt"

// DefaultTop is the number of entries Lines prints per section.
const DefaultTop = 5

// Lines renders a console summary with at most top entries per section.
// Values below 1 select DefaultTop. Empty sections are omitted.
func (r *Report) Lines(top int) []string {
	if top < 1 {
		top = DefaultTop
	}
	a := r.Analysis

	lines := []string{
		fmt.Sprintf("Parsed %d test cases", r.Summary.TotalTests),
		fmt.Sprintf("Found %d memory errors", r.Summary.TotalErrors),
		fmt.Sprintf("Backend: %s", r.Run.Backend),
	}

	section := func(title string, n int, line func(i int) string) {
		if n == 0 {
			return
		}
		lines = append(lines, "", title)
		for i := 0; i < min(n, top); i++ {
			lines = append(lines, "  "+line(i))
		}
	}

	section("Error Types:", len(a.ErrorTypes), func(i int) string {
		return fmt.Sprintf("%s: %d occurrences", a.ErrorTypes[i].ErrorType, a.ErrorTypes[i].Count)
	})
	section("Most Vulnerable Functions:", len(a.VulnerableFunctions), func(i int) string {
		return fmt.Sprintf("%s: %d errors", a.VulnerableFunctions[i].Function, a.VulnerableFunctions[i].ErrorCount)
	})
	section("Memory Error Patterns:", len(a.MemoryErrorPatterns), func(i int) string {
		return fmt.Sprintf("%s: %d times", a.MemoryErrorPatterns[i].Pattern, a.MemoryErrorPatterns[i].Count)
	})
	section("Most Problematic Test Cases:", len(a.ProblematicTests), func(i int) string {
		return fmt.Sprintf("%s: %d errors", a.ProblematicTests[i].TestCase, a.ProblematicTests[i].ErrorCount)
	})
	section("Error Execution Paths:", len(a.ErrorPaths), func(i int) string {
		p := a.ErrorPaths[i]
		return fmt.Sprintf("%s -> %s -> %s", p.TestCase, p.Function, p.ErrorType)
	})

	for _, f := range a.Failures {
		lines = append(lines, fmt.Sprintf("warning: %s unavailable: %s", f.Analysis, f.Error))
	}
	return lines
}
