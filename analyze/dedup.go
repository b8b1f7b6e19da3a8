package analyze

// Dedupe collapses the candidate text sequence into unique strings,
// keeping the first occurrence of each and preserving order otherwise.
// Comparison is exact: case or whitespace variants stay distinct.
func Dedupe(texts []string) []string {
	seen := make(map[string]struct{}, len(texts))
	unique := make([]string, 0, len(texts))
	for _, text := range texts {
		if _, ok := seen[text]; ok {
			continue
		}
		seen[text] = struct{}{}
		unique = append(unique, text)
	}
	return unique
}
