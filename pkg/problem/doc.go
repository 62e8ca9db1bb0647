/*
Package problem defines the data shared by every stage of the catalog
pipeline: the raw questions read from the source document, the enriched
problem records written to the catalog, and the catalog document itself.

Record ids are zero-padded to three digits, answers are letters A through H,
and each record names the page it renders to with ImageFileName.
*/
package problem
