package utils

import "unicode"

// SplitText splits a long string into chunks of approximately 'chunkSize'
// characters with 'overlap' characters carried across boundaries. When a
// chunk boundary lands inside a word, the cut moves back to the nearest
// whitespace so retrieval does not see half words.
func SplitText(text string, chunkSize int, overlap int) []string {
	if len(text) <= chunkSize {
		return []string{text}
	}

	var chunks []string
	runes := []rune(text)
	totalLen := len(runes)

	step := chunkSize - overlap
	if step <= 0 {
		step = chunkSize // fallback if overlap >= chunkSize
	}

	for i := 0; i < totalLen; i += step {
		end := i + chunkSize
		if end > totalLen {
			end = totalLen
		} else if !unicode.IsSpace(runes[end-1]) && !unicode.IsSpace(runes[end]) {
			// Walk back a little to the nearest whitespace. Bounded by the
			// overlap so consecutive chunks still cover the full text, and
			// so a very long unbroken token still gets cut.
			maxBack := overlap
			if maxBack > chunkSize/4 {
				maxBack = chunkSize / 4
			}
			for back := 0; back < maxBack; back++ {
				if unicode.IsSpace(runes[end-1-back]) {
					end -= back
					break
				}
			}
		}

		chunks = append(chunks, string(runes[i:end]))

		if end == totalLen {
			break
		}
	}

	return chunks
}
