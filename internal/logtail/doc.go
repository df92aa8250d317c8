// Package logtail reads growing log files.
//
// # Cursor
//
// A Cursor owns one open file and a byte offset. Open scans the existing
// content once, remembers the last few lines accepted by the filter (the
// "latest message" shown when a tab opens) and leaves the offset after the
// last newline-terminated line. Each Poll then:
//
//  1. Stats the file; a size below the offset yields ErrTruncated
//  2. Seeks to the offset and reads newline-terminated lines only
//  3. Advances the offset by exactly the bytes of those lines
//
// A line still being written (no trailing newline) is therefore never parsed
// half-way; it is picked up whole by the Poll after the newline lands. The
// offset never moves backwards.
//
// Lines have CR/LF stripped and invalid UTF-8 replaced before the filter
// sees them.
//
// # Read
//
// Read returns the last N lines of a file with a ring buffer, using memory
// proportional to N rather than file size.
//
//	lines, err := logtail.Read(path, 50)
//
// Missing files return no lines and no error.
package logtail
