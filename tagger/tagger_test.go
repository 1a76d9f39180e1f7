package tagger

import (
	"reflect"
	"testing"

	"github.com/happyhackingspace/postag/perceptron"
)

func sentence(pairs ...string) Sentence {
	s := make(Sentence, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		s = append(s, Token{Word: pairs[i], Tag: pairs[i+1]})
	}
	return s
}

func toyCorpus() []Sentence {
	return []Sentence{
		sentence("the", "DT", "dog", "NN", "runs", "VB"),
		sentence("a", "DT", "cat", "NN", "sleeps", "VB"),
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"1999", YearToken},
		{"1800", YearToken},
		{"2100", YearToken},
		{"1799", DigitToken},
		{"2200", DigitToken},
		{"0042", DigitToken},
		{"12a9", "12a9"},
		{"199", "199"},
		{"19999", "19999"},
		{"heimo", "heimo"},
		{"Heimo", "heimo"},
		{"PÄÄLLIKKÖ", "päällikkö"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := Normalize(tt.input); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestSingletons(t *testing.T) {
	s := NewStatistics()
	for range 25 {
		s.Add("ja", "C")
	}
	// 90% majority is below the 0.97 threshold.
	for i := range 25 {
		if i < 22 {
			s.Add("on", "V")
		} else {
			s.Add("on", "N")
		}
	}
	// Not seen often enough.
	for range 20 {
		s.Add("se", "PRON")
	}

	singles := s.Singletons(20, 0.97)
	if tag := singles["ja"]; tag != "C" {
		t.Errorf("singles[ja] = %q, want C", tag)
	}
	if _, ok := singles["on"]; ok {
		t.Error("word with a 90% majority tag should not be a singleton")
	}
	if _, ok := singles["se"]; ok {
		t.Error("word seen exactly minCount times should not be a singleton")
	}
	if len(singles) != 1 {
		t.Errorf("got %d singletons, want 1", len(singles))
	}
}

func TestMajorityTieBreak(t *testing.T) {
	s := NewStatistics()
	s.Add("kuusi", "Num")
	s.Add("kuusi", "N")
	tag, count, total := s.Majority("kuusi")
	if tag != "N" || count != 1 || total != 2 {
		t.Errorf("Majority = (%q, %d, %d), want (N, 1, 2)", tag, count, total)
	}

	// With a zero threshold the tie still resolves to the smallest tag.
	if got := s.Singletons(0, 0)["kuusi"]; got != "N" {
		t.Errorf("singleton tag = %q, want N", got)
	}
}

func TestStatistics(t *testing.T) {
	s := NewStatistics()
	s.AddCorpus(toyCorpus())
	if got, want := s.Words(), []string{"a", "cat", "dog", "runs", "sleeps", "the"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Words = %v, want %v", got, want)
	}
	if got, want := s.Tags(), []string{"DT", "NN", "VB"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Tags = %v, want %v", got, want)
	}
	if s.Total("dog") != 1 || s.Counts("dog")["NN"] != 1 {
		t.Errorf("unexpected counts for dog: %v", s.Counts("dog"))
	}
}

func TestTrainOneIteration(t *testing.T) {
	corpus := toyCorpus()
	tg := New()
	correct := 0
	for _, sent := range corpus {
		correct += tg.trainSentence(sent)
	}
	// Only the second sentence is guessed right on the first pass.
	if correct != 3 {
		t.Errorf("correct = %d, want 3", correct)
	}

	// Unaveraged weights recover the gold tags of the training sentences.
	for _, sent := range corpus {
		got := tg.Tag(sent.Words())
		if !reflect.DeepEqual(got.Tags(), sent.Tags()) {
			t.Errorf("Tag(%v) = %v, want %v", sent.Words(), got.Tags(), sent.Tags())
		}
	}
}

func TestTrainUsesGoldHistory(t *testing.T) {
	tg := New()
	tg.trainSentence(sentence("x", "A", "y", "B"))

	// "x" was guessed UNKNOWN, yet "y" was conditioned on the gold tag A.
	if w := tg.model.Weight("i-1 tag A", "B"); w != 1 {
		t.Errorf("weight(i-1 tag A, B) = %v, want 1", w)
	}
	if w := tg.model.Weight("i-1 tag "+perceptron.Unknown, "B"); w != 0 {
		t.Errorf("weight(i-1 tag UNKNOWN, B) = %v, want 0", w)
	}
}

func TestTagUsesPredictedHistory(t *testing.T) {
	tg := New()
	tg.model.Update("B", "Z", perceptron.Features{"i-1 tag A": 1})

	tg.singles["w1"] = "A"
	got := tg.Tag([]string{"w1", "w2"})
	if got[0].Tag != "A" || got[1].Tag != "B" {
		t.Errorf("Tag = %v, want [A B]", got.Tags())
	}

	// A different first tag changes the features of the second word.
	tg.singles["w1"] = "C"
	got = tg.Tag([]string{"w1", "w2"})
	if got[1].Tag != perceptron.Unknown {
		t.Errorf("second tag = %q, want %q", got[1].Tag, perceptron.Unknown)
	}
}

func TestTagSingletonBypassesModel(t *testing.T) {
	tg := New()
	tg.singles["heimo"] = "N"
	got := tg.TagText("Heimo  on")
	want := Sentence{{Word: "heimo", Tag: "N"}, {Word: "on", Tag: perceptron.Unknown}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("TagText = %v, want %v", got, want)
	}
}

func TestTagEmpty(t *testing.T) {
	if got := New().Tag(nil); len(got) != 0 {
		t.Errorf("Tag(nil) = %v, want empty", got)
	}
}

func TestTrain(t *testing.T) {
	corpus := toyCorpus()
	corpus = append(corpus, Sentence{}) // skipped

	config := DefaultConfig()
	config.Iterations = 1
	tg, epochs, err := Train(corpus, config)
	if err != nil {
		t.Fatal(err)
	}
	if len(epochs) != 1 {
		t.Fatalf("got %d epochs, want 1", len(epochs))
	}
	if epochs[0].Correct != 3 || epochs[0].Guesses != 6 {
		t.Errorf("epoch = %+v, want 3/6", epochs[0])
	}
	if got := epochs[0].Accuracy(); got != 0.5 {
		t.Errorf("accuracy = %v, want 0.5", got)
	}
	if tg.Model().Updates() != 6 {
		t.Errorf("updates = %d, want 6", tg.Model().Updates())
	}
	if len(tg.Singletons()) != 0 {
		t.Errorf("unexpected singletons %v", tg.Singletons())
	}
	// The caller's slice keeps its order.
	if corpus[0][0].Word != "the" {
		t.Error("training reordered the input")
	}
}

func TestTrainNormalizes(t *testing.T) {
	corpus := []Sentence{sentence("Vuonna", "Adv", "1999", "Num")}
	config := DefaultConfig()
	config.Iterations = 2
	config.MinCount = 0
	tg, _, err := Train(corpus, config)
	if err != nil {
		t.Fatal(err)
	}
	if tg.Statistics().Total(YearToken) != 1 {
		t.Errorf("year token not counted: %v", tg.Statistics().Words())
	}
	if tg.Singletons()["vuonna"] != "Adv" {
		t.Errorf("singletons = %v, want vuonna registered", tg.Singletons())
	}
	got := tg.Tag([]string{"VUONNA", "2001"})
	if got[0].Word != "vuonna" || got[1].Word != YearToken {
		t.Errorf("words = %v, want normalized", got.Words())
	}
}

func TestTrainShuffle(t *testing.T) {
	calls := 0
	config := DefaultConfig()
	config.Iterations = 3
	config.Shuffle = func(n int, swap func(i, j int)) {
		calls++
		if n != 2 {
			t.Errorf("shuffle over %d sentences, want 2", n)
		}
		swap(0, 1)
	}
	if _, _, err := Train(toyCorpus(), config); err != nil {
		t.Fatal(err)
	}
	if calls != 3 {
		t.Errorf("shuffle called %d times, want 3", calls)
	}
}

func TestTrainErrors(t *testing.T) {
	config := DefaultConfig()
	config.Iterations = 0
	if _, _, err := Train(toyCorpus(), config); err == nil {
		t.Error("expected error for zero iterations")
	}
	if _, _, err := Train([]Sentence{{}}, DefaultConfig()); err == nil {
		t.Error("expected error for empty corpus")
	}
}
