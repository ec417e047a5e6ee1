// Package extract pulls a bounded amount of plain text out of the documents
// fileorg classifies: plain text and markdown, PDF and DOCX.
//
// Limits keep prompts small. Text files are cut at a character budget, PDFs
// at a page budget, DOCX bodies at the same character budget as text.
package extract
