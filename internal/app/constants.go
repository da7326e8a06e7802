package app

// Layout constants used before the first WindowSizeMsg arrives.
const (
	DefaultWidth  = 80
	DefaultHeight = 24
)

// Input limits define maximum sizes for user input
const (
	// InputCharLimit is the maximum number of characters allowed in text inputs
	InputCharLimit = 120
)

// RenderWidthBucket is the granularity for width-based renderer caching.
// Widths are rounded down to a multiple of this value.
const RenderWidthBucket = 20

// maxSettleSteps bounds how many prepare transitions may chain after a single
// event before the driver gives up.
const maxSettleSteps = 16

// zettelKeys are the single-key shortcuts of the zettel page. Link codes never
// use these letters.
const zettelKeys = "qecflsopy"

// welcomeText is shown to users that have not visited a zettel yet.
const welcomeText = `# Welcome to Zettelkasten

You can see the available controls at the bottom of the page.
If you are an admin, make sure to check out the [system config](sys:config).

- q: exit zettelkasten
- e: edit the current page
- c: open the system config
- f: follow a link on the current page
  - links are written as ` + "`[name]` or `[name](path)`" + `, only the name is shown
  - type the letters shown next to a link to open it
- l: list all zettels
- s: search in all zettels
- p: toggle the rendered markdown preview
- y: copy the page to the clipboard
- o: log out

Editing this page saves it as your [home] zettel.
`

// welcomePath is where the welcome page is stored once edited.
const welcomePath = "home"
