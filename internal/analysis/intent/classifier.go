package intent

import (
	"regexp"
	"strings"
)

// Category steers backend choice and prompt augmentation. It is advisory
// only and never blocks a request.
type Category string

const (
	Code    Category = "code"
	General Category = "general"
)

// Substring vocabulary covering software engineering, web development,
// math and build/deploy terminology, including the Turkish web-building
// terms the product supports.
var codeKeywords = []string{
	"code", "coding", "programming", "function", "debug", "bug", "error", "fix",
	"refactor", "optimise", "optimize", "endpoint", "http", "rest", "graphql",
	"database", "query", "schema", "migration", "algorithm", "data structure",
	"class", "method", "variable", "loop", "array", "object", "component",
	"hook", "module", "package", "library", "framework", "react", "nextjs",
	"next.js", "vite", "tailwind", "shadcn", "design system", "javascript",
	"typescript", "python", "golang", "c++", "nodejs", "node.js", "express",
	"frontend", "backend", "devops", "docker", "kubernetes", "jest", "vitest",
	"eslint", "prettier", "landing page", "portfolio", "dashboard", "website",
	"web site", "sayfa", "tasarla", "tasarım", "oluştur", "geliştir", "navbar",
	"hero", "layout", "grid", "responsive", "a11y", "accessibility",
	"aritmetik", "matematik", "hesapla", "calculate", "equation", "integral",
	"derivative", "probability", "statistics",
}

// Short terms that would over-trigger as substrings are matched on word
// boundaries instead.
var codeWordPattern = regexp.MustCompile(`(?i)\b(?:api|sql|css|html|java|rust|go|ui|seo|test|blog|yap|kur)\b`)

// Classify maps message text to a category. Pure and deterministic; the
// same text always yields the same category.
func Classify(text string) Category {
	normalized := strings.ToLower(strings.TrimSpace(text))
	if normalized == "" {
		return General
	}

	for _, word := range codeKeywords {
		if strings.Contains(normalized, word) {
			return Code
		}
	}

	if codeWordPattern.MatchString(normalized) {
		return Code
	}

	return General
}
