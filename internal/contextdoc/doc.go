// Package contextdoc assembles the grounding document for a review profile.
//
// A profile directory is laid out as:
//
//	<profile>/docs/handbook/*.md
//	<profile>/docs/rules/rules.json        (required)
//	<profile>/docs/rules/boundaries.json   (optional)
//	<profile>/docs/adr/*.md                (optional)
//
// Build normalizes every input (BOM, line endings, trailing whitespace, NFC),
// concatenates the sections between <!-- AI_REVIEW:SECTION:X --> markers and
// hashes the result. When the approximate token budget is exceeded the ADR
// section body is replaced by a placeholder; when the byte budget is still
// exceeded the handbook body is replaced too. Rules are never truncated.
// A checksum block with the pre- and post-truncation hashes is appended last.
package contextdoc
