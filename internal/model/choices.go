package model

// Genres lists the genres a venue or artist may declare.
var Genres = []string{
    "Alternative",
    "Blues",
    "Classical",
    "Country",
    "Electronic",
    "Folk",
    "Funk",
    "Hip-Hop",
    "Heavy Metal",
    "Instrumental",
    "Jazz",
    "Musical Theatre",
    "Pop",
    "Punk",
    "R&B",
    "Reggae",
    "Rock n Roll",
    "Soul",
    "Other",
}

// States lists the US state codes accepted for venue and artist
// locations.
var States = []string{
    "AL", "AK", "AZ", "AR", "CA", "CO", "CT", "DE", "DC", "FL",
    "GA", "HI", "ID", "IL", "IN", "IA", "KS", "KY", "LA", "ME",
    "MT", "NE", "NV", "NH", "NJ", "NM", "NY", "NC", "ND", "OH",
    "OK", "OR", "MD", "MA", "MI", "MN", "MS", "MO", "PA", "RI",
    "SC", "SD", "TN", "TX", "UT", "VT", "VA", "WA", "WV", "WI",
    "WY",
}

// IsGenre reports whether g is one of Genres.
func IsGenre(g string) bool {
    return contains(Genres, g)
}

// IsState reports whether s is one of States.
func IsState(s string) bool {
    return contains(States, s)
}

func contains(list []string, v string) bool {
    for _, item := range list {
        if item == v {
            return true
        }
    }
    return false
}
