// Package auth implements the single shared password gate.
//
// One password protects the whole installation. Its bcrypt hash lives in the
// settings table under show.SettingPasswordHash. A successful login yields an
// HS256 session token signed with a key that exists only for the lifetime of
// the process, so a restart logs everyone out.
//
// Access is decided per page group:
//
//	admin                                 always requires a session
//	operator, director, camera, overview  require one only when the setting
//	                                      require_auth_<page> is "true"
package auth
