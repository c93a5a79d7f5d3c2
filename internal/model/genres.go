package model

import "strings"

// GenreDelimiter separates genres in the stored column value.
const GenreDelimiter = ","

// JoinGenres encodes a genre list for storage.  Genres containing the
// delimiter cannot round-trip; the form validator only accepts values
// from Genres, none of which do.
func JoinGenres(genres []string) string {
    return strings.Join(genres, GenreDelimiter)
}

// SplitGenres decodes a stored genre column.  An empty column yields an
// empty, non-nil list.
func SplitGenres(s string) []string {
    if s == "" {
        return []string{}
    }
    return strings.Split(s, GenreDelimiter)
}
