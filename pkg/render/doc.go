/*
Package render turns problem records into static HTML pages.

Pages are produced by executing html/template files loaded from a filesystem
by a TemplateManager. Every full page template exposes a fixed set of named
slots (see Page); a template that omits a required slot is rejected when it is
loaded, so a mismatched template fails loudly instead of producing a page with
a missing section. The content slot is filled by a FragmentBuilder chosen from
the Layouts table by problem type and, within a type, by subtype.

A default template set is embedded in the package and can be written to disk
with InstallDefaults.
*/
package render
