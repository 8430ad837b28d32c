// Package server exposes the controller over HTTP and a /ws duplex channel.
//
// Routes and the page group that guards them (see package auth):
//
//	GET    /health                              open
//	GET    /api/version                         open
//	GET    /api/state                           open
//	GET    /api/cues?before=&after=             director
//	GET    /api/cues/all                        overview
//	GET    /api/cues/{cue_id}                   overview
//	POST   /api/cues                            operator
//	PUT    /api/cues/{cue_id}                   operator
//	DELETE /api/cues/{cue_id}                   operator
//	POST   /api/advance                         operator
//	POST   /api/previous                        operator
//	POST   /api/goto/{cue_number}               operator
//	POST   /api/reset-position                  operator
//	GET    /api/camera/{camera_number}          camera
//	GET    /api/cameras                         camera
//	PUT    /api/camera/{cue_id}/{camera_number} operator
//	DELETE /api/camera/{cue_id}/{camera_number} operator
//	POST   /api/camera/{cue_id}/{camera_number}/toggle-take  operator
//	GET    /api/settings/{key}                  open
//	POST   /api/settings/{key}                  admin
//	POST   /api/start-over                      admin
//	POST   /api/import/csv                      admin
//	POST   /api/import/show                     admin
//	GET    /api/export/csv                      admin
//	POST   /api/login                           open
//	POST   /api/logout                          open
//	POST   /api/password                        admin
//	GET    /ws                                  open
//
// Without an auth gate every route is open and the session routes are not
// registered.
//
// Failures are JSON {"success": false, "code", "message", "errors"} with the
// status chosen from the error code.
package server
