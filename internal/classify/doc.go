// Package classify turns a single input file into raw naming metadata by
// asking a language model for a description, a filename and a folder.
//
// Prompts are YAML templates. The embedded defaults can be overridden per
// template from a user file; any template left empty keeps its default.
package classify
