// Package tag defines the severity tags used by [go.jacobcolvin.com/taglog/log]
// and the bitmasks built from them.
//
// Every [Tag] is a distinct power of two, so tags combine into a [Mask] with
// bitwise OR. [AtOrBelow] and [AtOrAbove] derive the common "this level and
// everything quieter" and "this level and everything louder" masks:
//
//	debugFile := tag.AtOrBelow(tag.Info)  // DEBUG | INFO
//	errorFile := tag.AtOrAbove(tag.Error) // ERROR | FATAL
//	console := tag.All
//
// Masks can also be parsed from text with [ParseMask], e.g. "error+" or
// "debug,warn".
package tag
