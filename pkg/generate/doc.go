/*
Package generate turns catalog records into static HTML pages, one file per
problem, named by the record's image_file and written into an images
directory.

A Generator works through a Renderer, normally a *render.TemplateManager, and
can report every outcome to a Recorder such as *catalog.Store. Pages are
written atomically, so an interrupted run never leaves a truncated page.
*/
package generate
