package card

import "strings"

type Icon string

const (
	IconTrending Icon = "trending-up"
	IconStar     Icon = "star"
	IconVerified Icon = "badge-check"
	IconZap      Icon = "zap"
	IconShield   Icon = "shield-check"
	IconFlame    Icon = "flame"
	IconClock    Icon = "clock"
	IconSearch   Icon = "search"
	IconTag      Icon = "tag"
)

type Style struct {
	Icon       Icon
	ColorClass string
}

// DefaultStyle is used for any tag missing from the table.
var DefaultStyle = Style{Icon: IconTag, ColorClass: "bg-gray-100 text-gray-700"}

var badgeStyles = map[string]Style{
	"trending":       {IconTrending, "bg-orange-100 text-orange-700"},
	"top rated":      {IconStar, "bg-yellow-100 text-yellow-700"},
	"verified":       {IconVerified, "bg-green-100 text-green-700"},
	"jd verified":    {IconVerified, "bg-green-100 text-green-700"},
	"responsive":     {IconZap, "bg-blue-100 text-blue-700"},
	"trust":          {IconShield, "bg-indigo-100 text-indigo-700"},
	"jd trust":       {IconShield, "bg-indigo-100 text-indigo-700"},
	"popular":        {IconFlame, "bg-red-100 text-red-700"},
	"quick response": {IconClock, "bg-teal-100 text-teal-700"},
	"top search":     {IconSearch, "bg-purple-100 text-purple-700"},
}

// Classify maps a tag to its icon and colors. Pure; unknown tags get DefaultStyle.
func Classify(tag string) Style {
	if s, ok := badgeStyles[strings.ToLower(strings.TrimSpace(tag))]; ok {
		return s
	}
	return DefaultStyle
}

type Badge struct {
	Label string
	Style
}

// Badges classifies every tag. Labels are kept verbatim and empty tags are
// the only ones skipped.
func Badges(tags []string) []Badge {
	out := make([]Badge, 0, len(tags))
	for _, t := range tags {
		if strings.TrimSpace(t) == "" {
			continue
		}
		out = append(out, Badge{Label: t, Style: Classify(t)})
	}
	return out
}
