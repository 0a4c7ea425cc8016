package intent

import "testing"

func TestClassifyCodeQuestions(t *testing.T) {
	cases := []string{
		"Can you debug this function for me?",
		"build a modern BLOG with tailwind",
		"Why does my SQL query return duplicates?",
		"write an algorithm for merge sort",
		"hesapla: 15 * 37",
		"bana bir landing page tasarla",
		"how do I deploy with Docker and Kubernetes?",
	}

	for _, text := range cases {
		if got := Classify(text); got != Code {
			t.Fatalf("Classify(%q) = %s, want code", text, got)
		}
	}
}

func TestClassifyGeneralQuestions(t *testing.T) {
	cases := []string{
		"what's the weather like in Istanbul today?",
		"tell me about the history of coffee",
		"who won the world cup in 2022?",
		"",
		"   ",
	}

	for _, text := range cases {
		if got := Classify(text); got != General {
			t.Fatalf("Classify(%q) = %s, want general", text, got)
		}
	}
}

func TestClassifyShortTermsNeedWordBoundaries(t *testing.T) {
	// "go" inside an ordinary word must not trip the classifier.
	if got := Classify("that was a good movie"); got != General {
		t.Fatalf("Classify matched substring of unrelated word: %s", got)
	}
	if got := Classify("should I rewrite this in Go?"); got != Code {
		t.Fatalf("Classify missed standalone language name: %s", got)
	}
}

func TestClassifyIsDeterministic(t *testing.T) {
	text := "refactor my react component"
	first := Classify(text)
	for i := 0; i < 5; i++ {
		if got := Classify(text); got != first {
			t.Fatalf("Classify changed answer on repeat call: %s vs %s", got, first)
		}
	}
}
