package domain

import "strings"

// Icon is a closed set of symbol names the frontend knows how to render.
// Data rows store the name; anything outside the set decodes to IconNone and
// is replaced by a fallback when rows are read (ResolveCategoryIcons,
// ResolveProductIcons).
type Icon uint8

const (
	IconNone Icon = iota
	IconMonitor
	IconGraduationCap
	IconBriefcase
	IconZap
	IconGlobe
	IconCpu
	IconLayers
	IconCode
	IconDatabase
	IconLayout
	IconMessageSquare
	IconBarChart
	IconVideo
	IconSmartphone
	IconCloud
	IconShieldCheck
	IconTrophy
	IconUsers
	IconTarget
	IconCompass
	IconPenTool
	IconCoffee
	IconMusic
	IconServer
	IconHardDrive
	IconTerminal
	IconStar
	IconCheckCircle2
	IconAward
	IconClock
	IconHeart
	IconGem
	iconCount
)

var iconNames = [iconCount]string{
	IconNone:          "",
	IconMonitor:       "Monitor",
	IconGraduationCap: "GraduationCap",
	IconBriefcase:     "Briefcase",
	IconZap:           "Zap",
	IconGlobe:         "Globe",
	IconCpu:           "Cpu",
	IconLayers:        "Layers",
	IconCode:          "Code",
	IconDatabase:      "Database",
	IconLayout:        "Layout",
	IconMessageSquare: "MessageSquare",
	IconBarChart:      "BarChart",
	IconVideo:         "Video",
	IconSmartphone:    "Smartphone",
	IconCloud:         "Cloud",
	IconShieldCheck:   "ShieldCheck",
	IconTrophy:        "Trophy",
	IconUsers:         "Users",
	IconTarget:        "Target",
	IconCompass:       "Compass",
	IconPenTool:       "PenTool",
	IconCoffee:        "Coffee",
	IconMusic:         "Music",
	IconServer:        "Server",
	IconHardDrive:     "HardDrive",
	IconTerminal:      "Terminal",
	IconStar:          "Star",
	IconCheckCircle2:  "CheckCircle2",
	IconAward:         "Award",
	IconClock:         "Clock",
	IconHeart:         "Heart",
	IconGem:           "Gem",
}

// Fallbacks used when a stored name does not resolve.
const (
	DefaultCategoryIcon = IconMonitor
	DefaultFeatureIcon  = IconShieldCheck
)

// IconSet identifies one of the pickers offered by the console.
type IconSet string

const (
	IconSetCategory IconSet = "category"
	IconSetFeature  IconSet = "feature"
)

var iconSets = map[IconSet][]Icon{
	IconSetCategory: {
		IconMonitor, IconGraduationCap, IconBriefcase, IconZap, IconGlobe, IconCpu, IconLayers,
		IconCode, IconDatabase, IconLayout, IconMessageSquare, IconBarChart, IconVideo,
		IconSmartphone, IconCloud, IconShieldCheck, IconTrophy, IconUsers, IconTarget,
		IconCompass, IconPenTool, IconCoffee, IconMusic, IconServer, IconHardDrive, IconTerminal,
	},
	IconSetFeature: {
		IconShieldCheck, IconZap, IconGlobe, IconStar, IconCheckCircle2, IconAward, IconClock,
		IconSmartphone, IconCode, IconHeart, IconGem,
	},
}

func (i Icon) String() string {
	if i < iconCount {
		return iconNames[i]
	}
	return ""
}

// ParseIcon never fails: unknown or empty names yield IconNone.
func ParseIcon(name string) Icon {
	name = strings.TrimSpace(name)
	if name == "" {
		return IconNone
	}
	for i := IconNone + 1; i < iconCount; i++ {
		if iconNames[i] == name {
			return i
		}
	}
	return IconNone
}

// Or returns i, or fallback when i does not name a renderable icon.
func (i Icon) Or(fallback Icon) Icon {
	if i == IconNone || i >= iconCount {
		return fallback
	}
	return i
}

// MarshalText implements encoding.TextMarshaler.
func (i Icon) MarshalText() ([]byte, error) {
	return []byte(i.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (i *Icon) UnmarshalText(b []byte) error {
	*i = ParseIcon(string(b))
	return nil
}

// InSet reports whether i is offered by the given picker.
func (i Icon) InSet(set IconSet) bool {
	for _, candidate := range iconSets[set] {
		if candidate == i {
			return true
		}
	}
	return false
}

// SearchIcons filters a picker by case-insensitive substring, keeping picker order.
func SearchIcons(set IconSet, query string) []Icon {
	query = strings.ToLower(strings.TrimSpace(query))
	icons := iconSets[set]
	out := make([]Icon, 0, len(icons))
	for _, i := range icons {
		if query == "" || strings.Contains(strings.ToLower(i.String()), query) {
			out = append(out, i)
		}
	}
	return out
}

// ResolveCategoryIcons gives every category a renderable icon.
func ResolveCategoryIcons(categories []Category) {
	for i := range categories {
		categories[i].Icon = categories[i].DisplayIcon()
	}
}

// ResolveProductIcons gives every feature, and the joined category, a
// renderable icon.
func ResolveProductIcons(products []Product) {
	for i := range products {
		p := &products[i]
		for j := range p.Features {
			p.Features[j].Icon = p.Features[j].Icon.Or(DefaultFeatureIcon)
		}
		if p.Category != nil {
			p.Category.Icon = p.Category.DisplayIcon()
		}
	}
}
