// Package partition splits aligned reference/proposed/baseline audio lists into
// fixed-size survey forms.
//
// Every form has exactly Layout.MaxQuestions slots. Layout.DummyQuestions of
// them are attention checks pairing a reference with a noised copy of itself;
// the rest are real comparisons. The final form is padded by repeating
// comparisons from the front of the lists, and padded slots are flagged so
// their answers can be excluded later.
//
// All randomness (slot shuffle, dummy reference pick, A/B coin toss) is drawn
// from a single caller supplied rand.Source so a seed reproduces a survey.
package partition
