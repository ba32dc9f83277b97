// Package label parses and renders photo label templates.
//
// A template is plain text mixed with bracket groups. Inside a group any
// number of recognized tag tokens can appear, mixed with more plain text:
//
//	[YYYY-MM-DD hh:mm:ss]      -> 2020-08-20 16:33:53
//	[file_name]                -> HAPPY_SHOT
//	[Month YYYY, ][file_name]  -> August 2020, HAPPY_SHOT
//	[MONTH YYYY, ](C) Author   -> AUGUST 2020, (C) Author
//	[[square brackets]]        -> [square brackets]
//
// # Tags
//
//	YYYY MM DD hh mm ss  zero-padded capture date/time components
//	Month MONTH month    capture month name (title, upper, lower case)
//	file_name            source file base name without extension
//
// # Policy
//
// Two behaviors are deliberate policy, not accidents:
//
//   - Unrecognized bracket content is preserved literally, brackets
//     included. Parsing never fails.
//   - When a tag inside a group resolves to nothing (no timestamp, no file
//     name), the whole group renders as empty: "[Month DD, YYYY]" becomes
//     "" rather than " , ". A half-rendered label is worse than none.
//
// Groups are independent; the rendered template is the concatenation of
// rendered groups and untouched literal runs, in order.
package label
