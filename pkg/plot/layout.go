package plot

// Panel geometry for the stacked receiver-function figure.
//
// Absolute panel sizes are given in inches and converted into normalized
// figure-fraction rectangles: heights divide by the total figure height,
// widths by the figure width. The main trace panel sits at the bottom, the
// stack panel in a fixed-height band at the top, and the optional info
// column on the right, vertically aligned with the main panel.

// Fixed margins and spacings, in inches.
const (
	marginBottom = 0.5 // below the main panel
	marginTop    = 0.2 // above the stack panel
	panelGap     = 0.1 // between main and stack panel
	marginLeft   = 0.5
	marginRight  = 0.2
	infoWidth    = 0.8 // width of the info column
)

// Rect is a panel rectangle in normalized figure-fraction coordinates,
// origin at the bottom-left of the figure.
type Rect struct {
	X, Y          float64
	Width, Height float64
}

// Right returns the x coordinate of the right edge.
func (r Rect) Right() float64 { return r.X + r.Width }

// Top returns the y coordinate of the top edge.
func (r Rect) Top() float64 { return r.Y + r.Height }

// Geometry holds the absolute inputs of the layout computation.
type Geometry struct {
	FigWidth    float64 // total figure width, inches
	TraceHeight float64 // height of one trace row, inches
	StackHeight float64 // height of the stack band, inches
	Info        bool    // reserve the info column
}

// StackLayout is the computed panel placement for n traces.
type StackLayout struct {
	FigWidth  float64 // inches
	FigHeight float64 // inches

	Main  Rect // trace panel, bottom region of height H*(n+2)/FH
	Stack Rect // stack band at the top
	Info  Rect // right column; zero when Geometry.Info is false
}

// NewStackLayout computes the panel layout for n traces. The caller
// guarantees n >= 1; an empty stream never reaches layout.
//
// The figure height is H*(n+2) + HS + margins, so it grows linearly in n
// with slope H. The returned rectangles tile the vertical axis without
// overlap: main panel, gap, stack panel, and the two margins account for
// the full figure height.
func NewStackLayout(n int, g Geometry) StackLayout {
	h := g.TraceHeight
	fh := h*float64(n+2) + g.StackHeight + marginBottom + marginTop + panelGap

	mainWidth := g.FigWidth - marginLeft - marginRight
	if g.Info {
		mainWidth -= panelGap + infoWidth
	}

	l := StackLayout{
		FigWidth:  g.FigWidth,
		FigHeight: fh,
		Main: Rect{
			X:      marginLeft / g.FigWidth,
			Y:      marginBottom / fh,
			Width:  mainWidth / g.FigWidth,
			Height: h * float64(n+2) / fh,
		},
		Stack: Rect{
			X:      marginLeft / g.FigWidth,
			Y:      1 - (marginTop+g.StackHeight)/fh,
			Width:  mainWidth / g.FigWidth,
			Height: g.StackHeight / fh,
		},
	}
	if g.Info {
		l.Info = Rect{
			X:      1 - (marginRight+infoWidth)/g.FigWidth,
			Y:      l.Main.Y,
			Width:  infoWidth / g.FigWidth,
			Height: l.Main.Height,
		}
	}
	return l
}
