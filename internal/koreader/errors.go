package koreader

import "errors"

// ErrInvalidLua indicates the metadata file is not a parseable Lua chunk
var ErrInvalidLua = errors.New("failed to parse Lua")

// ErrMissingTitle indicates doc_props carries no title
var ErrMissingTitle = errors.New("book has no title in doc_props")
