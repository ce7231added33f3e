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
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestPreprocessText(t *testing.T) {
	got := preprocessText("  The   Quick\nBrown  Fox ", false)
	if want := "the quick brown fox"; got != want {
		t.Errorf("preprocessText = %q, want %q", got, want)
	}
	got = preprocessText("The  Quick", true)
	if want := "The Quick"; got != want {
		t.Errorf("case-sensitive preprocessText = %q, want %q", got, want)
	}
}

func TestTokenizeWords(t *testing.T) {
	got := tokenizeWords("running, jumped; swims!", true)
	want := []string{"run", "jump", "swim"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("tokenizeWords mismatch (-want +got):\n%s", diff)
	}

	got = tokenizeWords("running jumped", false)
	want = []string{"running", "jumped"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("unstemmed tokenizeWords mismatch (-want +got):\n%s", diff)
	}
}

func TestSplitSentences(t *testing.T) {
	got := splitSentences("First sentence. Second one! Third?  ")
	want := []string{"First sentence", "Second one", "Third"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("splitSentences mismatch (-want +got):\n%s", diff)
	}
	if got := splitSentences(""); got != nil {
		t.Errorf("splitSentences(\"\") = %v, want nil", got)
	}
}

func TestChunkBySentences(t *testing.T) {
	short := "Short text."
	if got := chunkBySentences(short, 100); len(got) != 1 || got[0] != short {
		t.Errorf("short text should be a single chunk, got %v", got)
	}

	long := strings.Repeat("This is a sentence about chunking. ", 10)
	chunks := chunkBySentences(long, 80)
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	for i, chunk := range chunks {
		if len(chunk) > 80+2 {
			t.Errorf("chunk %d exceeds limit: %d chars", i, len(chunk))
		}
	}
}

func TestChunkByParagraphs(t *testing.T) {
	text := strings.Repeat("x", 60) + "\n\n" + strings.Repeat("y", 60)
	chunks := chunkByParagraphs(text, 80)
	if len(chunks) != 2 {
		t.Fatalf("expected 2 paragraph chunks, got %d: %v", len(chunks), chunks)
	}
}

func TestExtractClaims(t *testing.T) {
	claims := extractClaims("Yes. The Eiffel Tower is in Paris. It was built in 1889!")
	want := []string{"The Eiffel Tower is in Paris", "It was built in 1889"}
	if diff := cmp.Diff(want, claims); diff != "" {
		t.Errorf("extractClaims mismatch (-want +got):\n%s", diff)
	}
}
