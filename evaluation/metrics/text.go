// Copyright 2025 The agentbench Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package metrics

import (
	"regexp"
	"strings"

	"github.com/kljensen/snowball/english"
)

var (
	wordPattern     = regexp.MustCompile(`[a-zA-Z0-9]+`)
	sentenceSplit   = regexp.MustCompile(`[.!?]+`)
	stopWords       = map[string]bool{}
	stopWordsSource = "the a an and or but in on at to for of with by is are was were be been have has had do does did will would could should"
)

func init() {
	for _, w := range strings.Fields(stopWordsSource) {
		stopWords[w] = true
	}
}

// preprocessText collapses whitespace and, unless caseSensitive, lowercases.
func preprocessText(text string, caseSensitive bool) string {
	text = strings.Join(strings.Fields(text), " ")
	if !caseSensitive {
		text = strings.ToLower(text)
	}
	return text
}

// tokenizeWords extracts alphanumeric tokens, optionally stemmed.
func tokenizeWords(text string, stem bool) []string {
	tokens := wordPattern.FindAllString(text, -1)
	if !stem {
		return tokens
	}
	stemmed := make([]string, 0, len(tokens))
	for _, token := range tokens {
		stemmed = append(stemmed, stemWord(token))
	}
	return stemmed
}

func stemWord(word string) string {
	return english.Stem(word, false)
}

// splitSentences breaks text on sentence punctuation, dropping empty parts.
func splitSentences(text string) []string {
	var sentences []string
	for _, part := range sentenceSplit.Split(text, -1) {
		part = strings.TrimSpace(part)
		if part != "" {
			sentences = append(sentences, part)
		}
	}
	return sentences
}

// chunkBySentences splits text into sentence-bounded chunks no longer than
// maxChunkSize characters. Text already within the limit is returned whole.
func chunkBySentences(text string, maxChunkSize int) []string {
	if len(text) <= maxChunkSize {
		return []string{text}
	}

	var chunks []string
	current := ""
	for _, sentence := range splitSentences(text) {
		if len(current)+len(sentence) <= maxChunkSize {
			current += sentence + ". "
		} else {
			if current != "" {
				chunks = append(chunks, strings.TrimSpace(current))
			}
			current = sentence + ". "
		}
	}
	if current != "" {
		chunks = append(chunks, strings.TrimSpace(current))
	}

	if len(chunks) == 0 {
		return []string{text}
	}
	return chunks
}

// chunkByParagraphs splits text on blank lines first, then falls back to
// sentence chunking for paragraphs longer than maxChunkSize.
func chunkByParagraphs(text string, maxChunkSize int) []string {
	if len(text) <= maxChunkSize {
		return []string{text}
	}

	var chunks []string
	for _, paragraph := range strings.Split(text, "\n\n") {
		if len(paragraph) <= maxChunkSize {
			chunks = append(chunks, paragraph)
			continue
		}
		chunks = append(chunks, chunkBySentences(paragraph, maxChunkSize)...)
	}

	if len(chunks) == 0 {
		return []string{text}
	}
	return chunks
}

// extractClaims returns the answer's claim sentences: sentence-split parts
// longer than ten characters.
func extractClaims(answer string) []string {
	var claims []string
	for _, sentence := range splitSentences(answer) {
		if len(sentence) > 10 {
			claims = append(claims, sentence)
		}
	}
	return claims
}
