// Package showfile loads show definitions written in CUE.
//
// A show file is a second bulk-import format next to CSV. It is checked
// against the embedded #Show schema before anything is converted, so a file
// either yields a complete import or a VALIDATION_ERROR listing every schema
// violation with its position:
//
//	name: "Spring Gala"
//	cues: [
//		{text: "Lights up", cameras: [{camera: 1, subject: "Host", shot_type: "WS"}]},
//		{text: "Welcome", notes: "wait for applause"},
//	]
package showfile
