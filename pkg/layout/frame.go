package layout

// Frame is the plot area inside the chart margins, in surface coordinates
// (y grows downward, so Top < Bottom).
type Frame struct {
	Left, Right float64
	Top, Bottom float64
}

// NewFrame returns the plot area of a width x height surface with the given
// margins.
func NewFrame(width, height float64, m Margins) Frame {
	return Frame{
		Left:   m.Left,
		Right:  width - m.Right,
		Top:    m.Top,
		Bottom: height - m.Bottom,
	}
}

// Margins are the space reserved around the plot area for axes and legends.
type Margins struct {
	Top    float64 `json:"top" toml:"top" bson:"top"`
	Right  float64 `json:"right" toml:"right" bson:"right"`
	Bottom float64 `json:"bottom" toml:"bottom" bson:"bottom"`
	Left   float64 `json:"left" toml:"left" bson:"left"`
}

// Width returns the horizontal span of the frame.
func (f Frame) Width() float64 { return f.Right - f.Left }

// Height returns the vertical span of the frame.
func (f Frame) Height() float64 { return f.Bottom - f.Top }

// CenterX returns the horizontal center of the frame.
func (f Frame) CenterX() float64 { return (f.Left + f.Right) / 2 }

// CenterY returns the vertical center of the frame.
func (f Frame) CenterY() float64 { return (f.Top + f.Bottom) / 2 }

// Inset shrinks the frame by d on every side.
func (f Frame) Inset(d float64) Frame {
	return Frame{Left: f.Left + d, Right: f.Right - d, Top: f.Top + d, Bottom: f.Bottom - d}
}

// XRange returns the horizontal pixel range for x scales.
func (f Frame) XRange() [2]float64 { return [2]float64{f.Left, f.Right} }

// YRange returns the vertical pixel range for y scales, bottom first so
// larger values sit higher.
func (f Frame) YRange() [2]float64 { return [2]float64{f.Bottom, f.Top} }
