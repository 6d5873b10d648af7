// Package cipher obfuscates asset filenames before they are uploaded.
//
// Workers can read the page source of a question, so uploaded audio must not
// carry names such as reference_01.wav or proposed_01.wav. The cipher is a
// fixed-shift alphabetic rotation applied to the filename stem; digits,
// punctuation and the extension are left untouched so the experimenter can
// always recover the original name with Decode.
package cipher
