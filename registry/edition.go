package registry

import "fmt"

// AvatarSize selects which rendition of a fighter image to link.
type AvatarSize string

const (
	AvatarSizeBig   AvatarSize = "big"
	AvatarSizeCards AvatarSize = "cards"
)

const avatarBaseURL = "https://www.infolavelada.com/images/fighters"

// AvatarURL builds the public URL of a fighter portrait.
func AvatarURL(p Participant, size AvatarSize) string {
	return fmt.Sprintf("%s/%s/%s.webp", avatarBaseURL, size, p)
}

// LaVelada2025 returns the card for the 2025 edition.
func LaVelada2025() *Registry {
	return New([]Combat{
		{ID: 1, Fighter1: "peereira", Fighter2: "rivaldios", Year: "2025"},
		{ID: 2, Fighter1: "perxitaa", Fighter2: "gaspi"},
		{ID: 3, Fighter1: "abby", Fighter2: "roro"},
		{ID: 4, Fighter1: "andoni", Fighter2: "carlos"},
		{ID: 5, Fighter1: "alana", Fighter2: "arigeli"},
		{ID: 6, Fighter1: "viruzz", Fighter2: "tomas"},
		{ID: 7, Fighter1: "grefg", Fighter2: "westcol"},
	})
}
