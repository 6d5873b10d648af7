// Package render turns partitioned forms into marketplace survey documents.
//
// Each question slot is rendered from the question.html template into an
// HTML fragment; a form's fragments are then wrapped, together with the
// intro, outro and instructions pages, in an MTurk HTMLQuestion XML envelope.
// Template fields expose only opaque audio names and URLs so the page never
// reveals which clip is the proposed one.
package render
