// Package exporter renders annotated timelines into their output formats.
//
// This package contains two views over the same annotated rows:
//
// TextRenderer: Produces the plain-text report handed to reviewers, one line
// per surviving row with rule tags inline and global attributes on indented
// follow-up lines.
//
// DebugReport: Produces the rule-audit view listing suppressed rows, delayed
// rows, and rows that yielded extracted attributes.
//
// Example usage:
//
//	renderer := exporter.NewTextRenderer(engine.AttributeOrder())
//
//	text := renderer.Render(rows, headers)
//
//	report := renderer.DebugReport(rows, headers)
package exporter
