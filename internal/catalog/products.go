package catalog

import "regexp"

// Product maps a canonical product name to the ways people type it in chat.
type Product struct {
	Name     string
	Patterns []*regexp.Regexp
}

func p(expr string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)` + expr)
}

// Products is ordered: the first product with any matching pattern wins.
var Products = []Product{
	{
		Name: "N 40 KG MAHADHAN CROPTEK 9:24:24",
		Patterns: []*regexp.Regexp{
			p(`\b(n|c)\s*-?\s*9\b`),
			p(`\b(croptek\s*)?n\s*9\b`),
			p(`\b9\s*[:\-.\s]\s*24\s*[:\-.\s]\s*24\b`),
			p(`\b92424\b`),
			p(`\bc\s*-?\s*9\s*-?\s*24\s*-?\s*24\b`),
		},
	},
	{
		Name: "N 50 KG MAHADHAN SMARTEK NPKS 20:20:0:13",
		Patterns: []*regexp.Regexp{
			p(`\b(smartek\s*)?s\s*-?\s*20\b`),
			p(`\b20\s*[:\-.\s]\s*20\s*[:\-.\s]\s*0\s*[:\-.\s]\s*13\b`),
			p(`\b2020013\b`),
			p(`\bs\s*-?\s*20\s*-?\s*20\s*-?\s*0\s*-?\s*13\b`),
		},
	},
	{
		Name: "N 50 KG MAHADHAN 24:24:0",
		Patterns: []*regexp.Regexp{
			p(`\b24\s*[:\-.\s]\s*24\s*[:\-.\s]\s*0\b`),
			p(`\b24240\b`),
		},
	},
	{
		Name: "N 40 KG MAHADHAN CROPTEK NPK 11:30:14",
		Patterns: []*regexp.Regexp{
			p(`\b(n|c)\s*-?\s*11\b`),
			p(`\b11\s*[:\-.\s]\s*30\s*[:\-.\s]\s*14\b`),
			p(`\b113014\b`),
		},
	},
	{
		Name: "N 40 KG MAHADHAN CROPTEK NPK 8:21:21",
		Patterns: []*regexp.Regexp{
			p(`\b(n|c)\s*-?\s*8\b`),
			p(`\b8\s*[:\-.\s]\s*21\s*[:\-.\s]\s*21\b`),
			p(`\b82121\b`),
			p(`\b(c|n)\s*-?\s*8\s*-?\s*21\s*-?\s*21\b`),
		},
	},
	{
		Name: "N 50 KG MAHADHAN SMARTEK NPK 10:26:26",
		Patterns: []*regexp.Regexp{
			p(`\b(smartek\s*)?s\s*-?\s*10\b`),
			p(`\b10\s*[:\-.\s]\s*26\s*[:\-.\s]\s*26\b`),
			p(`\b102626\b`),
			p(`\b1026\b`),
			p(`\b10\s*-?\s*26\b`),
		},
	},
	{
		Name: "N 50 KG MAHADHAN SMARTEK NPKS 16:20:0:13",
		Patterns: []*regexp.Regexp{
			p(`\b(smartek\s*)?s\s*-?\s*16\b`),
			p(`\b16\s*[:\-.\s]\s*20\s*[:\-.\s]\s*0\s*[:\-.\s]\s*13\b`),
			p(`\b1620013\b`),
		},
	},
}

// MatchProduct returns the canonical name of the first product whose patterns
// match line, or "" when none does.
func MatchProduct(line string) string {
	for _, prod := range Products {
		for _, re := range prod.Patterns {
			if re.MatchString(line) {
				return prod.Name
			}
		}
	}
	return ""
}
