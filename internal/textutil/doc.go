// Package textutil turns unreliable model output into filesystem names.
//
// Sanitize cleans a folder or filename candidate into lowercase underscore
// joined tokens bounded by word and length limits, dropping file-type nouns
// and prompt filler. ExtractKeyword is the fallback used when the model gave
// no usable folder: it returns the most frequent meaningful word of the
// description, breaking ties by first occurrence so repeated runs agree.
package textutil
