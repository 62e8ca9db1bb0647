// Package classify assigns problem types, subtypes, titles and explanations
// to source questions. Subtype selection is driven by the ordered Rules table.
package classify
