// Package flexbox implements single-line flex container arithmetic over
// plain values. It knows nothing about the IR or CSS strings; the resolver
// translates styles into Containers and copies the results back out.
package flexbox

// Direction is the main axis of a container.
type Direction int

const (
	Row Direction = iota
	Column
)

// Justify distributes leftover main-axis space.
type Justify int

const (
	JustifyStart Justify = iota
	JustifyCenter
	JustifyEnd
	JustifySpaceBetween
	JustifySpaceAround
)

// Align positions items on the cross axis.
type Align int

const (
	AlignStart Align = iota
	AlignCenter
	AlignEnd
	AlignStretch
)

// Node is one flex item. Inputs are the explicit sizes and flex factors;
// Layout fills the output fields. A Node is reusable after Reset.
type Node struct {
	Width     float64
	HasWidth  bool
	Height    float64
	HasHeight bool
	Grow      float64
	AlignSelf Align
	HasSelf   bool

	// Outputs, relative to the container's origin.
	X              float64
	Y              float64
	ResolvedWidth  float64
	ResolvedHeight float64
	// GrewMain and Stretched report which output sizes the engine decided,
	// as opposed to echoing an explicit input.
	GrewMain  bool
	Stretched bool
}

// Reset clears a node for reuse.
func (n *Node) Reset() {
	*n = Node{}
}

// Container is one flex container with its resolved numeric style inputs.
type Container struct {
	Width     float64
	Height    float64
	Direction Direction
	Justify   Justify
	Align     Align
	// Gap is main-axis spacing between adjacent items.
	Gap           float64
	PaddingTop    float64
	PaddingRight  float64
	PaddingBottom float64
	PaddingLeft   float64
	Items         []*Node
}

func (c *Container) mainSize(n *Node) (float64, bool) {
	if c.Direction == Row {
		return n.Width, n.HasWidth
	}
	return n.Height, n.HasHeight
}

func (c *Container) crossSize(n *Node) (float64, bool) {
	if c.Direction == Row {
		return n.Height, n.HasHeight
	}
	return n.Width, n.HasWidth
}

// Layout computes positions and sizes for every item. The algorithm is the
// single-line subset: no wrapping, no shrink, no baseline alignment.
func (c *Container) Layout() {
	if len(c.Items) == 0 {
		return
	}
	var innerMain, innerCross, mainStart, crossStart float64
	if c.Direction == Row {
		innerMain = c.Width - c.PaddingLeft - c.PaddingRight
		innerCross = c.Height - c.PaddingTop - c.PaddingBottom
		mainStart = c.PaddingLeft
		crossStart = c.PaddingTop
	} else {
		innerMain = c.Height - c.PaddingTop - c.PaddingBottom
		innerCross = c.Width - c.PaddingLeft - c.PaddingRight
		mainStart = c.PaddingTop
		crossStart = c.PaddingLeft
	}

	gaps := c.Gap * float64(len(c.Items)-1)

	// Pass 1: fixed main sizes and the total grow weight.
	var used, totalGrow float64
	for _, item := range c.Items {
		size, _ := c.mainSize(item)
		used += size
		totalGrow += item.Grow
	}
	free := innerMain - used - gaps
	if free < 0 {
		free = 0
	}

	// Pass 2: final main sizes.
	var contentMain float64
	for _, item := range c.Items {
		size, _ := c.mainSize(item)
		if item.Grow > 0 && totalGrow > 0 {
			size += free * (item.Grow / totalGrow)
			item.GrewMain = true
		}
		c.setMain(item, size)
		contentMain += size
	}
	contentMain += gaps

	// Pass 3: main-axis distribution.
	leftover := innerMain - contentMain
	offset := mainStart
	spacing := c.Gap
	switch c.Justify {
	case JustifyCenter:
		offset += leftover / 2
	case JustifyEnd:
		offset += leftover
	case JustifySpaceBetween:
		if len(c.Items) > 1 && leftover > 0 {
			spacing += leftover / float64(len(c.Items)-1)
		}
	case JustifySpaceAround:
		if leftover > 0 {
			around := leftover / float64(len(c.Items))
			offset += around / 2
			spacing += around
		}
	}

	for _, item := range c.Items {
		c.setMainPos(item, offset)
		size, _ := c.finalMain(item)
		offset += size + spacing

		// Cross axis.
		align := c.Align
		if item.HasSelf {
			align = item.AlignSelf
		}
		cross, hasCross := c.crossSize(item)
		if align == AlignStretch && !hasCross {
			cross = innerCross
			item.Stretched = true
		}
		pos := crossStart
		switch align {
		case AlignCenter:
			pos += (innerCross - cross) / 2
		case AlignEnd:
			pos += innerCross - cross
		}
		c.setCross(item, cross)
		c.setCrossPos(item, pos)
	}
}

func (c *Container) setMain(n *Node, v float64) {
	if c.Direction == Row {
		n.ResolvedWidth = v
	} else {
		n.ResolvedHeight = v
	}
}

func (c *Container) finalMain(n *Node) (float64, bool) {
	if c.Direction == Row {
		return n.ResolvedWidth, true
	}
	return n.ResolvedHeight, true
}

func (c *Container) setCross(n *Node, v float64) {
	if c.Direction == Row {
		n.ResolvedHeight = v
	} else {
		n.ResolvedWidth = v
	}
}

func (c *Container) setMainPos(n *Node, v float64) {
	if c.Direction == Row {
		n.X = v
	} else {
		n.Y = v
	}
}

func (c *Container) setCrossPos(n *Node, v float64) {
	if c.Direction == Row {
		n.Y = v
	} else {
		n.X = v
	}
}
