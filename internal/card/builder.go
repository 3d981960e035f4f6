package card

// Row is one "label ... value" line.
type Row struct {
	Label string
	Value string
	Wrap  bool
}

type memberBlock struct {
	name string
	rows []Row
}

// Builder assembles a report card from named slots. Slots may be set in any
// order; Build lays them out title, date range, overview, member blocks, footer.
type Builder struct {
	layout    Layout
	title     string
	dateRange string
	overview  []Row
	members   []memberBlock
	notes     []string
	footer    string
	buttons   []*Node
}

func NewBuilder(layout Layout) *Builder {
	return &Builder{layout: layout}
}

func (b *Builder) SetTitle(title string) *Builder {
	b.title = title
	return b
}

func (b *Builder) SetDateRange(text string) *Builder {
	b.dateRange = text
	return b
}

func (b *Builder) SetOverview(rows ...Row) *Builder {
	b.overview = rows
	return b
}

func (b *Builder) AddMemberBlock(name string, rows ...Row) *Builder {
	b.members = append(b.members, memberBlock{name: name, rows: rows})
	return b
}

// AddNote appends a free text line below the overview.
func (b *Builder) AddNote(text string) *Builder {
	b.notes = append(b.notes, text)
	return b
}

func (b *Builder) SetFooter(text string) *Builder {
	b.footer = text
	return b
}

func (b *Builder) AddButton(action Action, style string) *Builder {
	b.buttons = append(b.buttons, &Node{Type: "button", Style: style, Margin: "sm", Action: &action})
	return b
}

func (b *Builder) text(value, size string) *Node {
	return &Node{Type: "text", Text: value, Size: size, Color: b.layout.TextColor, Wrap: true}
}

func (b *Builder) row(r Row) *Node {
	return Box("horizontal",
		&Node{Type: "text", Text: r.Label, Size: "sm", Color: b.layout.TextColor, Flex: flex(0)},
		&Node{Type: "text", Text: r.Value, Size: "sm", Color: b.layout.TextColor, Align: "end", Wrap: r.Wrap},
	)
}

func (b *Builder) Build() Bubble {
	body := Box("vertical")
	if b.title != "" {
		title := b.text(b.title, "xl")
		title.Weight = "bold"
		title.Color = b.layout.AccentColor
		body.Contents = append(body.Contents, title)
	}
	if b.dateRange != "" {
		date := b.text(b.dateRange, "xs")
		date.Color = b.layout.MutedColor
		date.Margin = "md"
		body.Contents = append(body.Contents, date)
	}
	if len(b.overview) > 0 || len(b.notes) > 0 {
		body.Contents = append(body.Contents, Separator("lg"))
		overview := Box("vertical")
		overview.Margin = "lg"
		overview.Spacing = "sm"
		for _, r := range b.overview {
			overview.Contents = append(overview.Contents, b.row(r))
		}
		for _, note := range b.notes {
			overview.Contents = append(overview.Contents, b.text(note, "sm"))
		}
		body.Contents = append(body.Contents, overview)
	}
	for _, m := range b.members {
		body.Contents = append(body.Contents, Separator("lg"))
		block := Box("vertical", b.text(m.name, "md"))
		block.Margin = "lg"
		block.Spacing = "sm"
		for _, r := range m.rows {
			block.Contents = append(block.Contents, b.row(r))
		}
		body.Contents = append(body.Contents, block)
	}
	if b.footer != "" {
		body.Contents = append(body.Contents, Separator("lg"))
		footer := Box("horizontal", b.text(b.footer, "md"))
		footer.Margin = "md"
		body.Contents = append(body.Contents, footer)
	}

	bubble := Bubble{Type: "bubble", Body: body}
	if len(b.buttons) > 0 {
		footer := Box("vertical", b.buttons...)
		footer.Spacing = "sm"
		bubble.Footer = footer
	}
	return bubble
}
