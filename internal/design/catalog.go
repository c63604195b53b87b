// Package design holds the static catalog of selectable CSS libraries the
// agent can build slides with.
package design

// LibraryEntry describes one selectable CSS library.
type LibraryEntry struct {
	Key  string `json:"key"`
	Name string `json:"name"`
	// CDNTag is the HTML tag(s) to paste into <head>. Empty for "none".
	CDNTag        string   `json:"cdnTag"`
	Description   string   `json:"description"`
	Accessibility string   `json:"accessibility"`
	UseCases      []string `json:"useCases"`
}

// Catalog is the full table of selectable libraries. The "auto" sentinel is
// a config value, not a catalog entry: it means "let the agent choose".
var Catalog = []LibraryEntry{
	{
		Key:           "tailwind",
		Name:          "Tailwind CSS",
		CDNTag:        `<script src="https://cdn.tailwindcss.com"></script>`,
		Description:   "Utility-first CSS framework. Precise control over every spacing, color, and layout decision.",
		Accessibility: "Neutral — you control accessibility through your HTML markup and aria attributes.",
		UseCases:      []string{"Custom layouts", "Precise typography", "Complex multi-column designs", "Dark/light themes"},
	},
	{
		Key:           "bootstrap",
		Name:          "Bootstrap 5",
		CDNTag:        `<link rel="stylesheet" href="https://cdn.jsdelivr.net/npm/bootstrap@5.3/dist/css/bootstrap.min.css">`,
		Description:   "Full component library: grid, cards, badges, tables, alerts, and more.",
		Accessibility: "Excellent — all components include proper ARIA roles and keyboard navigation support.",
		UseCases:      []string{"Tables and data", "Cards and panels", "Badges and pills", "Structured content"},
	},
	{
		Key:           "bulma",
		Name:          "Bulma",
		CDNTag:        `<link rel="stylesheet" href="https://cdn.jsdelivr.net/npm/bulma@1.0/css/bulma.min.css">`,
		Description:   "Modern Flexbox-based framework. Clean and minimal look with helpful layout utilities.",
		Accessibility: "Good — semantic class names encourage proper HTML structure.",
		UseCases:      []string{"Professional slides", "Columns", "Notification boxes", "Tags and labels"},
	},
	{
		Key:           "pico",
		Name:          "Pico CSS",
		CDNTag:        `<link rel="stylesheet" href="https://cdn.jsdelivr.net/npm/@picocss/pico@2/css/pico.classless.min.css">`,
		Description:   "Minimal semantic CSS. Styles HTML elements directly — no class attributes needed.",
		Accessibility: "Accessibility-first by design. Best for readable, content-heavy slides.",
		UseCases:      []string{"Text-heavy slides", "Quote slides", "Readable content", "Minimal styling"},
	},
	{
		Key:           "none",
		Name:          "No framework (inline styles only)",
		CDNTag:        "",
		Description:   "Full creative freedom with raw CSS. Best combined with Three.js, Canvas, or heavy animations.",
		Accessibility: "You are fully responsible for accessibility in your markup.",
		UseCases:      []string{"Artistic slides", "Animations with anime.js", "3D with Three.js", "Canvas-based slides"},
	},
}

// Lookup returns the catalog entry for key, or nil.
func Lookup(key string) *LibraryEntry {
	for i := range Catalog {
		if Catalog[i].Key == key {
			return &Catalog[i]
		}
	}
	return nil
}

// Keys returns all catalog keys in table order.
func Keys() []string {
	keys := make([]string, 0, len(Catalog))
	for _, e := range Catalog {
		keys = append(keys, e.Key)
	}
	return keys
}

// Valid reports whether key is a settable preference. Updates must name a
// concrete catalog entry; the "auto" sentinel is only ever a default, and
// stored configs holding it fall back to it on read (see store).
func Valid(key string) bool {
	return Lookup(key) != nil
}
